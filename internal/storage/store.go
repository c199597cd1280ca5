package storage

import (
	"context"
	"errors"
	"time"

	"github.com/bristlemouth/spotter-server/internal/models"
)

// Common errors
var (
	ErrNotFound    = errors.New("not found")
	ErrInvalidData = errors.New("invalid data")
)

// Store defines the archive storage interface
type Store interface {
	// Transaction support
	BeginTx(ctx context.Context) (Store, error)
	Commit() error
	Rollback() error

	// Reading archive
	SaveReading(ctx context.Context, record *models.ReadingRecord) error
	ListReadings(ctx context.Context, filters ReadingFilters, limit, offset int) ([]*models.ReadingRecord, int64, error)

	// Transmission archive
	SaveTransmission(ctx context.Context, record *models.TransmissionRecord) error
	ListTransmissions(ctx context.Context, deviceID string, limit, offset int) ([]*models.TransmissionRecord, int64, error)

	// Close the store
	Close() error
}

// ReadingFilters represents filters for archived readings
type ReadingFilters struct {
	DeviceID  *string
	SensorID  *string
	Topic     *string
	StartTime *time.Time
	EndTime   *time.Time
}
