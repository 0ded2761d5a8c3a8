package influxdb

import (
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
)

// WriteProbeResult records the outcome of a single status-poller probe.
//
// Points are queued on the non-blocking write API; failures surface via
// the SetOnError callback.
func (c *Client) WriteProbeResult(hubID, probe string, ok bool, latency time.Duration) {
	point := influxdb2.NewPoint(
		"hub_probe",
		map[string]string{
			"hub_id": hubID,
			"probe":  probe,
		},
		map[string]interface{}{
			"ok":         ok,
			"latency_ms": latency.Milliseconds(),
		},
		time.Now().UTC(),
	)
	c.writeAPI.WritePoint(point)
}

// WriteDeviceCounts records device totals from a poll cycle.
func (c *Client) WriteDeviceCounts(hubID string, total, online int) {
	point := influxdb2.NewPoint(
		"hub_devices",
		map[string]string{
			"hub_id": hubID,
		},
		map[string]interface{}{
			"total":   total,
			"online":  online,
			"offline": total - online,
		},
		time.Now().UTC(),
	)
	c.writeAPI.WritePoint(point)
}
