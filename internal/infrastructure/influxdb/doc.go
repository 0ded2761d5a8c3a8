// Package influxdb records status-poller telemetry.
//
// Each poll cycle writes probe latency/outcome points and device
// counts, tagged by hub. The write path is non-blocking and batched;
// InfluxDB being down never affects polling.
package influxdb
