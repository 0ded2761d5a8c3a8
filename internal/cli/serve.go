package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	_ "github.com/homedeck/homedeck/migrations"

	"github.com/homedeck/homedeck/internal/api"
	"github.com/homedeck/homedeck/internal/command"
	"github.com/homedeck/homedeck/internal/directory"
	"github.com/homedeck/homedeck/internal/hub"
	"github.com/homedeck/homedeck/internal/hubclient"
	"github.com/homedeck/homedeck/internal/infrastructure/config"
	"github.com/homedeck/homedeck/internal/infrastructure/database"
	"github.com/homedeck/homedeck/internal/infrastructure/influxdb"
	"github.com/homedeck/homedeck/internal/infrastructure/logging"
	"github.com/homedeck/homedeck/internal/infrastructure/mqtt"
	"github.com/homedeck/homedeck/internal/infrastructure/secrets"
	"github.com/homedeck/homedeck/internal/notify"
	"github.com/homedeck/homedeck/internal/offline"
	"github.com/homedeck/homedeck/internal/poller"
	"github.com/homedeck/homedeck/internal/scenario"
	"github.com/homedeck/homedeck/internal/settings"
)

// defaultConfigPath is used when neither the flag nor HOMEDECK_CONFIG
// points anywhere else.
const defaultConfigPath = "configs/config.yaml"

const (
	// notificationTTL bounds how long an unread notification survives.
	notificationTTL = 5 * time.Minute

	// janitorInterval is how often expired notifications are swept.
	janitorInterval = time.Minute
)

// prewarmPaths are fetched into the static cache on startup so the
// dashboard shell renders even if the hub drops before the first visit.
var prewarmPaths = []string{"/", "/static/app.js", "/static/app.css", "/manifest.webmanifest"}

var serveConfigPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the gateway daemon",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		return runServe(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "config file path (default "+defaultConfigPath+")")
}

func configPath() string {
	if serveConfigPath != "" {
		return serveConfigPath
	}
	if path := os.Getenv("HOMEDECK_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// runServe wires every component together and blocks until the context
// is cancelled. Deferred Close calls unwind in reverse order.
func runServe(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting HomeDeck gateway",
		"version", buildVersion,
		"commit", buildCommit,
		"build_date", buildDate,
	)

	path := configPath()
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", path)

	log = logging.New(cfg.Logging, buildVersion)

	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("database ready", "path", cfg.Database.Path)

	box, err := secrets.New(cfg.Security.SecretsKey)
	if err != nil {
		return fmt.Errorf("initialising secrets: %w", err)
	}
	if !box.Enabled() {
		log.Warn("no secrets key configured; stored credentials are not encrypted")
	}

	// Hub registry: probe with a real health check, seed the local hub.
	probe := func(ctx context.Context, url string) error {
		return hubclient.New(url, cfg.HubRequestTimeout()).Health(ctx)
	}
	registry := hub.NewRegistry(hub.NewSQLiteRepository(db.DB), probe, cfg.Hubs.LocalURL, cfg.Hubs.LocalName)
	registry.SetLogger(log)
	if err := registry.Load(ctx); err != nil {
		return fmt.Errorf("loading hub registry: %w", err)
	}
	log.Info("hub registry loaded", "current", registry.Current().ID)

	currentHubURL := func() string {
		if h := registry.Current(); h != nil {
			return h.URL
		}
		return cfg.Hubs.LocalURL
	}
	client := func() *hubclient.Client {
		return hubclient.New(currentHubURL(), cfg.HubRequestTimeout())
	}

	// Device directory. A failed initial refresh is not fatal: the hub
	// may still be booting, and the poller will catch up.
	dir := directory.New(func() directory.HubAPI { return client() }, cfg.ScanGrace())
	dir.SetLogger(log)
	if err := dir.Refresh(ctx); err != nil {
		log.Warn("initial device refresh failed", "error", err)
	}

	notifier := notify.NewCenter(notificationTTL)
	go notifier.RunJanitor(ctx, janitorInterval)

	dispatcher := command.NewDispatcher(func() command.HubAPI { return client() }, dir, notifier)
	dispatcher.SetLogger(log)

	scenarios := scenario.NewStore(scenario.NewSQLiteRepository(db.DB), func() scenario.HubAPI { return client() }, notifier)
	scenarios.SetLogger(log)
	if err := scenarios.Load(ctx); err != nil {
		return fmt.Errorf("loading scenarios: %w", err)
	}

	settingsStore := settings.NewStore(db.DB, box)

	// Poll metrics go to InfluxDB when configured.
	var metrics poller.MetricsWriter
	if cfg.InfluxDB.Enabled {
		influxClient, err := influxdb.Connect(ctx, cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		metrics = influxClient
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	} else {
		log.Info("InfluxDB disabled")
	}

	pol := poller.New(func() poller.HubAPI { return client() }, registry, cfg.PollInterval(), metrics)
	pol.SetLogger(log)
	registry.OnSwitch(func(h *hub.Hub) {
		log.Info("hub switched", "hub", h.ID)
		pol.Kick()
	})
	go pol.Run(ctx)

	// Optional MQTT push channel: hubs that publish device state feed
	// the directory between poll cycles.
	if cfg.MQTT.Enabled {
		mqttClient, err := mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log)
		mqttClient.SetOnConnect(func() { log.Info("MQTT reconnected") })
		mqttClient.SetOnDisconnect(func(err error) { log.Warn("MQTT disconnected", "error", err) })

		if err := subscribeDeviceStates(mqttClient, registry, dir, byte(cfg.MQTT.QoS)); err != nil {
			return fmt.Errorf("subscribing to device states: %w", err)
		}
		if err := mqttClient.Publish(mqtt.TopicGatewayStatus(), []byte("online"), byte(cfg.MQTT.QoS), true); err != nil {
			log.Warn("publishing gateway status failed", "error", err)
		}
		log.Info("MQTT connected", "broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port))
	} else {
		log.Info("MQTT disabled")
	}

	// Offline cache layer in front of the hub surface.
	cache := offline.NewCache(cfg.Offline.Generation)
	cache.Activate()
	layer := offline.NewLayer(cache, currentHubURL, cfg.OfflineTTL(), cfg.HubRequestTimeout())
	layer.SetLogger(log)
	layer.Prewarm(ctx, prewarmPaths)

	server, err := api.New(api.Deps{
		Config:     cfg,
		Logger:     log,
		Hubs:       registry,
		Directory:  dir,
		Dispatcher: dispatcher,
		Scenarios:  scenarios,
		Poller:     pol,
		Notifier:   notifier,
		Settings:   settingsStore,
		Offline:    layer,
		Version:    buildVersion,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")
	return nil
}

// deviceStatePayload is the JSON body hubs publish on device state
// topics. Only the online flag matters to the directory.
type deviceStatePayload struct {
	IsOnline bool `json:"is_online"`
}

// subscribeDeviceStates wires the MQTT wildcard subscription into the
// device directory. Updates for hubs other than the current one are
// dropped.
func subscribeDeviceStates(client *mqtt.Client, registry *hub.Registry, dir *directory.Directory, qos byte) error {
	topic := mqtt.TopicAllDeviceStates("+")
	return client.Subscribe(topic, qos, func(topic string, payload []byte) error {
		hubID, deviceID, ok := mqtt.ParseDeviceStateTopic(topic)
		if !ok {
			return nil
		}
		current := registry.Current()
		if current == nil || current.ID != hubID {
			return nil
		}
		var state deviceStatePayload
		if err := json.Unmarshal(payload, &state); err != nil {
			return fmt.Errorf("decoding device state: %w", err)
		}
		dir.ApplyStateUpdate(deviceID, state.IsOnline)
		return nil
	})
}
