package models

import (
	"time"

	"github.com/google/uuid"
)

// ReadingRecord is an archived sensor reading. The live message queue is
// in-memory only; records exist for inspection after the fact.
type ReadingRecord struct {
	ID        uuid.UUID `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	DeviceID  string    `db:"device_id" json:"device_id"`
	SensorID  string    `db:"sensor_id" json:"sensor_id"`
	Topic     string    `db:"topic" json:"topic"`
	Value     float64   `db:"value" json:"value"`
	Unit      string    `db:"unit" json:"unit"`
	Quality   int       `db:"quality" json:"quality"`
	Depth     *float64  `db:"depth" json:"depth,omitempty"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
}

// TransmissionRecord is an archived transmission result.
type TransmissionRecord struct {
	ID        uuid.UUID `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	DeviceID         string    `db:"device_id" json:"device_id"`
	Success          bool      `db:"success" json:"success"`
	MessageCount     int       `db:"message_count" json:"message_count"`
	BytesTransmitted int       `db:"bytes_transmitted" json:"bytes_transmitted"`
	Mode             string    `db:"transmission_mode" json:"transmission_mode"`
	ErrorMessage     string    `db:"error_message" json:"error_message,omitempty"`
	Timestamp        time.Time `db:"timestamp" json:"timestamp"`
}
