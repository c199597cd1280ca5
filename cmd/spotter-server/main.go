package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/bristlemouth/spotter-server/internal/api"
	"github.com/bristlemouth/spotter-server/internal/config"
	"github.com/bristlemouth/spotter-server/internal/integration"
	"github.com/bristlemouth/spotter-server/internal/sensors"
	"github.com/bristlemouth/spotter-server/internal/spotter"
	"github.com/bristlemouth/spotter-server/internal/storage"
)

func main() {
	// Command line flags
	var configFile string
	flag.StringVar(&configFile, "config", "config/spotter-server.yml", "Configuration file path")
	flag.Parse()

	// Setup logging
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	// Load configuration
	cfg, err := config.Load(configFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Set log level
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Build the buoy client
	client := buildClient(cfg)
	log.Info().
		Str("device_id", client.DeviceID()).
		Strs("sensors", client.SensorIDs()).
		Msg("Spotter client initialized")

	// Create context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional: connect to the archive database
	var store storage.Store
	if cfg.Database.DSN != "" {
		pgStore, err := storage.NewPostgresStore(cfg.Database.DSN, storage.PoolConfig{
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer pgStore.Close()

		if err := pgStore.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to ensure database schema")
		}

		store = pgStore
		log.Info().Msg("Connected to database")
	} else {
		log.Info().Msg("Database not configured, archiving disabled")
	}

	// Optional: connect to NATS for batch forwarding
	var forwarder *integration.Forwarder
	if cfg.NATS.URL != "" {
		log.Info().Str("url", cfg.NATS.URL).Msg("Connecting to NATS...")

		nc, err := nats.Connect(cfg.NATS.URL,
			nats.Name("spotter-server"),
			nats.UserInfo(cfg.NATS.Username, cfg.NATS.Password),
			nats.ReconnectWait(cfg.NATS.ReconnectInterval),
			nats.MaxReconnects(cfg.NATS.MaxReconnects),
			nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
				log.Warn().Err(err).Msg("Disconnected from NATS")
			}),
			nats.ReconnectHandler(func(nc *nats.Conn) {
				log.Info().Msg("Reconnected to NATS")
			}),
			nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
				log.Error().Err(err).Msg("NATS error")
			}),
		)

		if err != nil {
			log.Warn().Err(err).Msg("Failed to connect to NATS, continuing without forwarding")
		} else {
			defer nc.Close()
			forwarder = integration.NewForwarder(nc, cfg.NATS.SubjectPrefix)
			log.Info().Msg("Connected to NATS")
		}
	} else {
		log.Info().Msg("NATS not configured, running in standalone mode")
	}

	// Log device state transitions and transmissions
	client.OnStateChange(func(old, new spotter.ConnectionState) {
		log.Info().
			Str("from", string(old)).
			Str("to", string(new)).
			Msg("Device state changed")
	})
	client.OnTransmit(func(result spotter.TransmissionResult) {
		log.Info().
			Int("messages", result.MessageCount).
			Int("bytes", result.BytesTransmitted).
			Str("mode", string(result.Mode)).
			Msg("Transmission completed")
	})
	client.OnError(func(err error) {
		log.Error().Err(err).Msg("Transmission error")
	})

	client.SetState(spotter.StateConnected)

	// Start REST API server
	apiServer := api.NewRESTServer(cfg, client, store, forwarder)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		if err := apiServer.ListenAndServe(addr); err != nil {
			log.Fatal().Err(err).Msg("REST API server failed")
		}
	}()

	// Wait for signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received signal, shutting down")

	// Cancel context
	cancel()

	// Shutdown API server
	if err := apiServer.Shutdown(context.Background()); err != nil {
		log.Error().Err(err).Msg("Failed to shutdown API server gracefully")
	}

	wg.Wait()

	log.Info().Msg("Spotter server stopped")
}

// buildClient creates the buoy client and registers the configured sensors.
func buildClient(cfg *config.Config) *spotter.Client {
	client := spotter.NewClient(spotter.Config{
		DeviceID:         cfg.Device.DeviceID,
		TransmissionMode: spotter.TransmissionMode(cfg.Device.TransmissionMode),
		SampleInterval:   cfg.Device.SampleInterval,
		TransmitInterval: cfg.Device.TransmitInterval,
		MaxQueueSize:     cfg.Device.MaxQueueSize,
	})

	sc := cfg.Device.Sensors

	if !sc.Temperature.Disabled {
		min := sensors.DefaultMinTemperatureC
		max := sensors.DefaultMaxTemperatureC
		if sc.Temperature.Min != nil {
			min = *sc.Temperature.Min
		}
		if sc.Temperature.Max != nil {
			max = *sc.Temperature.Max
		}
		client.RegisterSensor(sensors.NewTemperatureSensor(sc.Temperature.ID, min, max))
	}

	if !sc.Pressure.Disabled {
		min := sensors.DefaultMinPressureDbar
		max := sensors.DefaultMaxPressureDbar
		if sc.Pressure.Min != nil {
			min = *sc.Pressure.Min
		}
		if sc.Pressure.Max != nil {
			max = *sc.Pressure.Max
		}
		client.RegisterSensor(sensors.NewPressureSensor(sc.Pressure.ID, min, max))
	}

	if !sc.Salinity.Disabled {
		min := sensors.DefaultMinSalinityPSU
		max := sensors.DefaultMaxSalinityPSU
		if sc.Salinity.Min != nil {
			min = *sc.Salinity.Min
		}
		if sc.Salinity.Max != nil {
			max = *sc.Salinity.Max
		}
		client.RegisterSensor(sensors.NewSalinitySensor(sc.Salinity.ID, min, max))
	}

	if !sc.Current.Disabled {
		max := sensors.DefaultMaxCurrentSpeedMS
		if sc.Current.Max != nil {
			max = *sc.Current.Max
		}
		client.RegisterSensor(sensors.NewCurrentMeterSensor(sc.Current.ID, max))
	}

	if !sc.Turbidity.Disabled {
		min := sensors.DefaultMinTurbidityNTU
		max := sensors.DefaultMaxTurbidityNTU
		if sc.Turbidity.Min != nil {
			min = *sc.Turbidity.Min
		}
		if sc.Turbidity.Max != nil {
			max = *sc.Turbidity.Max
		}
		client.RegisterSensor(sensors.NewTurbiditySensor(sc.Turbidity.ID, min, max))
	}

	return client
}
