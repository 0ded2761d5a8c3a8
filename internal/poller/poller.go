package poller

import (
	"context"
	"sync"
	"time"

	"github.com/homedeck/homedeck/internal/hub"
	"github.com/homedeck/homedeck/internal/hubclient"
)

// Logger defines the logging interface used by the Poller.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Indicator is a traffic-light health state.
type Indicator string

const (
	IndicatorOnline  Indicator = "online"
	IndicatorPartial Indicator = "partial"
	IndicatorOffline Indicator = "offline"
)

// DeviceCounts tallies the devices probe.
type DeviceCounts struct {
	Total  int `json:"total"`
	Online int `json:"online"`
}

// Snapshot is the outcome of one poll cycle.
type Snapshot struct {
	HubID     string       `json:"hub_id"`
	System    Indicator    `json:"system"`
	Voice     Indicator    `json:"voice"`
	Devices   DeviceCounts `json:"devices"`
	CheckedAt time.Time    `json:"checked_at"`
}

// HubAPI is the slice of the hub client the poller needs.
type HubAPI interface {
	Health(ctx context.Context) error
	GetVoiceStatus(ctx context.Context) (*hubclient.VoiceStatus, error)
	Devices(ctx context.Context) ([]hubclient.Device, error)
}

// ClientProvider returns the client for the currently selected hub.
type ClientProvider func() HubAPI

// HubTracker is the slice of the hub registry the poller needs: which
// hub is current, and somewhere to record the observed status.
type HubTracker interface {
	Current() *hub.Hub
	SetStatus(ctx context.Context, id string, status hub.Status)
}

// MetricsWriter receives per-cycle measurements. Implemented by the
// InfluxDB client; nil disables metrics.
type MetricsWriter interface {
	WriteProbeResult(hubID, probe string, ok bool, latency time.Duration)
	WriteDeviceCounts(hubID string, total, online int)
}

// Poller probes the current hub on a fixed interval and keeps the
// latest snapshot readable and broadcast.
//
// Each cycle runs three probes against the hub: /health for the system
// indicator, /voice/status for the voice indicator, and /devices for
// the counts. The probes are isolated: a failure degrades only its own
// indicator. There is no backoff, retry, or jitter; the cadence stays
// fixed and a hub switch triggers one immediate extra cycle.
type Poller struct {
	client   ClientProvider
	hubs     HubTracker
	interval time.Duration
	metrics  MetricsWriter

	kick chan struct{}

	mu          sync.RWMutex
	snapshot    Snapshot
	subscribers map[int]chan Snapshot
	nextSub     int

	logger Logger
}

// New creates a status poller. metrics may be nil.
func New(client ClientProvider, hubs HubTracker, interval time.Duration, metrics MetricsWriter) *Poller {
	return &Poller{
		client:      client,
		hubs:        hubs,
		interval:    interval,
		metrics:     metrics,
		kick:        make(chan struct{}, 1),
		subscribers: make(map[int]chan Snapshot),
		logger:      noopLogger{},
	}
}

// SetLogger sets the logger for the poller.
func (p *Poller) SetLogger(logger Logger) {
	p.logger = logger
}

// Kick requests an immediate poll cycle. Wired to the registry's
// hub-switch event so a new hub's status appears without waiting out
// the interval.
func (p *Poller) Kick() {
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

// Status returns the latest snapshot.
func (p *Poller) Status() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshot
}

// Subscribe returns a channel receiving every future snapshot and a
// cancel function. Slow subscribers miss snapshots instead of stalling
// the poll loop.
func (p *Poller) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 4)

	p.mu.Lock()
	id := p.nextSub
	p.nextSub++
	p.subscribers[id] = ch
	p.mu.Unlock()

	cancel := func() {
		p.mu.Lock()
		if _, ok := p.subscribers[id]; ok {
			delete(p.subscribers, id)
			close(ch)
		}
		p.mu.Unlock()
	}
	return ch, cancel
}

// Run polls until ctx is cancelled. The first cycle runs immediately.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Poll(ctx)
		case <-p.kick:
			p.Poll(ctx)
		}
	}
}

// Poll runs one cycle against the current hub and publishes the
// resulting snapshot.
func (p *Poller) Poll(ctx context.Context) Snapshot {
	current := p.hubs.Current()
	if current == nil {
		return p.Status()
	}
	client := p.client()

	snap := Snapshot{HubID: current.ID, CheckedAt: time.Now().UTC()}
	snap.System = p.probeSystem(ctx, client, current.ID)
	snap.Voice = p.probeVoice(ctx, client, current.ID)
	snap.Devices = p.probeDevices(ctx, client, current.ID)

	p.mu.Lock()
	p.snapshot = snap
	subs := make([]chan Snapshot, 0, len(p.subscribers))
	for _, ch := range p.subscribers {
		subs = append(subs, ch)
	}
	p.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- snap:
		default:
		}
	}

	p.logger.Debug("poll cycle complete",
		"hub", snap.HubID, "system", snap.System, "voice", snap.Voice,
		"devices_total", snap.Devices.Total, "devices_online", snap.Devices.Online)
	return snap
}

func (p *Poller) probeSystem(ctx context.Context, client HubAPI, hubID string) Indicator {
	start := time.Now()
	err := client.Health(ctx)
	p.writeProbe(hubID, "health", err == nil, time.Since(start))

	if err != nil {
		p.hubs.SetStatus(ctx, hubID, hub.StatusDisconnected)
		return IndicatorOffline
	}
	p.hubs.SetStatus(ctx, hubID, hub.StatusConnected)
	return IndicatorOnline
}

func (p *Poller) probeVoice(ctx context.Context, client HubAPI, hubID string) Indicator {
	start := time.Now()
	status, err := client.GetVoiceStatus(ctx)
	p.writeProbe(hubID, "voice", err == nil, time.Since(start))

	switch {
	case err != nil || !status.Enabled:
		return IndicatorOffline
	case len(status.WakeWords) == 0 || !providerSet(status.STTProvider) || !providerSet(status.TTSProvider):
		return IndicatorPartial
	}
	return IndicatorOnline
}

// providerSet reports whether a voice provider is configured. The hub
// reports "none" for a disabled provider.
func providerSet(p string) bool {
	return p != "" && p != "none"
}

func (p *Poller) probeDevices(ctx context.Context, client HubAPI, hubID string) DeviceCounts {
	start := time.Now()
	devices, err := client.Devices(ctx)
	p.writeProbe(hubID, "devices", err == nil, time.Since(start))
	if err != nil {
		return DeviceCounts{}
	}

	counts := DeviceCounts{Total: len(devices)}
	for _, d := range devices {
		if d.IsOnline {
			counts.Online++
		}
	}
	if p.metrics != nil {
		p.metrics.WriteDeviceCounts(hubID, counts.Total, counts.Online)
	}
	return counts
}

func (p *Poller) writeProbe(hubID, probe string, ok bool, latency time.Duration) {
	if p.metrics != nil {
		p.metrics.WriteProbeResult(hubID, probe, ok, latency)
	}
}
