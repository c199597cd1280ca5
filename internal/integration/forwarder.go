package integration

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/bristlemouth/spotter-server/internal/spotter"
)

// Forwarder publishes transmitted batches and device events onto NATS for
// downstream consumers. The in-memory queue and transmit simulation live in
// the spotter client; the forwarder only hands off their results.
type Forwarder struct {
	nc            *nats.Conn
	subjectPrefix string
}

// NewForwarder creates a forwarder on an existing NATS connection
func NewForwarder(nc *nats.Conn, subjectPrefix string) *Forwarder {
	if subjectPrefix == "" {
		subjectPrefix = "spotter"
	}
	return &Forwarder{
		nc:            nc,
		subjectPrefix: subjectPrefix,
	}
}

// PublishBatch publishes a formatted message batch
func (f *Forwarder) PublishBatch(batch spotter.APIBatch) error {
	subject := fmt.Sprintf("%s.%s.batch", f.subjectPrefix, batch.DeviceID)

	data, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("marshal batch: %w", err)
	}

	if err := f.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("publish batch: %w", err)
	}

	log.Debug().
		Str("subject", subject).
		Int("messages", batch.MessageCount).
		Msg("Batch published")

	return nil
}

// PublishResult publishes a transmission result
func (f *Forwarder) PublishResult(deviceID string, result spotter.TransmissionResult) error {
	subject := fmt.Sprintf("%s.%s.transmission", f.subjectPrefix, deviceID)

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal transmission result: %w", err)
	}

	if err := f.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("publish transmission result: %w", err)
	}

	log.Debug().
		Str("subject", subject).
		Bool("success", result.Success).
		Int("messages", result.MessageCount).
		Msg("Transmission result published")

	return nil
}

// PublishStatus publishes a device status snapshot
func (f *Forwarder) PublishStatus(status spotter.Status) error {
	subject := fmt.Sprintf("%s.%s.status", f.subjectPrefix, status.DeviceID)

	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("marshal status: %w", err)
	}

	if err := f.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("publish status: %w", err)
	}

	log.Debug().
		Str("subject", subject).
		Str("state", status.State).
		Msg("Status published")

	return nil
}
