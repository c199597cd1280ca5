package main

import (
	"flag"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/bristlemouth/spotter-server/internal/sensors"
	"github.com/bristlemouth/spotter-server/internal/spotter"
)

// spotter-sim drives a standalone buoy client: it samples synthetic values
// on every sensor at the sample interval and transmits the queue at the
// transmit interval.
func main() {
	var (
		deviceID         string
		sampleInterval   time.Duration
		transmitInterval time.Duration
		maxQueueSize     int
		mode             string
	)

	flag.StringVar(&deviceID, "device-id", "SPOT-SIM-0001", "Device identifier")
	flag.DurationVar(&sampleInterval, "sample-interval", 5*time.Second, "Sensor sampling interval")
	flag.DurationVar(&transmitInterval, "transmit-interval", 30*time.Second, "Transmission interval")
	flag.IntVar(&maxQueueSize, "max-queue-size", 1000, "Message queue capacity")
	flag.StringVar(&mode, "mode", "hybrid", "Transmission mode (satellite|cellular|hybrid|local)")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg := spotter.DefaultConfig(deviceID)
	cfg.SampleInterval = sampleInterval
	cfg.TransmitInterval = transmitInterval
	cfg.MaxQueueSize = maxQueueSize
	cfg.TransmissionMode = spotter.TransmissionMode(mode)

	client := spotter.NewClient(cfg)

	temperature := sensors.NewTemperatureSensor("", sensors.DefaultMinTemperatureC, sensors.DefaultMaxTemperatureC)
	pressure := sensors.NewPressureSensor("", sensors.DefaultMinPressureDbar, sensors.DefaultMaxPressureDbar)
	salinity := sensors.NewSalinitySensor("", sensors.DefaultMinSalinityPSU, sensors.DefaultMaxSalinityPSU)
	current := sensors.NewCurrentMeterSensor("", sensors.DefaultMaxCurrentSpeedMS)
	turbidity := sensors.NewTurbiditySensor("", sensors.DefaultMinTurbidityNTU, sensors.DefaultMaxTurbidityNTU)

	client.RegisterSensor(temperature)
	client.RegisterSensor(pressure)
	client.RegisterSensor(salinity)
	client.RegisterSensor(current)
	client.RegisterSensor(turbidity)

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
	client.OnStateChange(func(old, new spotter.ConnectionState) {
		log.Info().
			Str("from", string(old)).
			Str("to", string(new)).
			Msg("Device state changed")
	})

	client.SetState(spotter.StateConnecting)
	client.SetState(spotter.StateConnected)

	log.Info().
		Str("device_id", deviceID).
		Dur("sample_interval", sampleInterval).
		Dur("transmit_interval", transmitInterval).
		Msg("Simulation started")

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	sampleTicker := time.NewTicker(sampleInterval)
	defer sampleTicker.Stop()
	transmitTicker := time.NewTicker(transmitInterval)
	defer transmitTicker.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-sampleTicker.C:
			sample(client, rng, temperature, pressure, salinity, current, turbidity)

		case <-transmitTicker.C:
			if _, err := client.Transmit("", 0); err != nil {
				log.Error().Err(err).Msg("Transmit failed")
			}

		case sig := <-sigChan:
			log.Info().Str("signal", sig.String()).Msg("Received signal, shutting down")
			client.SetState(spotter.StateDisconnected)
			status := client.Status()
			log.Info().
				Int("queue_size", status.QueueSize).
				Msg("Simulation stopped")
			return
		}
	}
}

// sample takes one synthetic reading per sensor and queues the messages.
func sample(client *spotter.Client, rng *rand.Rand,
	temperature *sensors.TemperatureSensor,
	pressure *sensors.PressureSensor,
	salinity *sensors.SalinitySensor,
	current *sensors.CurrentMeterSensor,
	turbidity *sensors.TurbiditySensor,
) {
	queue := func(s sensors.Sensor, value float64) {
		reading, err := s.CreateReading(value)
		if err != nil {
			log.Warn().Err(err).Str("sensor", s.ID()).Msg("Reading rejected")
			return
		}
		if _, err := client.QueueReading(s, reading); err != nil {
			log.Error().Err(err).Str("sensor", s.ID()).Msg("Failed to queue reading")
		}
	}

	// Plausible open-ocean values
	queue(temperature, 8.0+rng.Float64()*14.0)
	queue(pressure, rng.Float64()*200.0)
	queue(salinity, 33.0+rng.Float64()*3.0)
	queue(turbidity, rng.Float64()*20.0)

	speed := rng.Float64() * 2.0
	direction := rng.Float64() * 360.0
	reading, err := current.CreateCurrentReading(speed, direction)
	if err != nil {
		log.Warn().Err(err).Msg("Current reading rejected")
		return
	}
	msg, err := current.WrapCurrentReading(reading, direction)
	if err != nil {
		log.Error().Err(err).Msg("Failed to wrap current reading")
		return
	}
	client.QueueMessage(msg)

	log.Debug().Int("queue_size", client.QueueSize()).Msg("Sampled all sensors")
}
