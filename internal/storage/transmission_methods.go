package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bristlemouth/spotter-server/internal/models"
)

// SaveTransmission archives a transmission result
func (s *PostgresStore) SaveTransmission(ctx context.Context, record *models.TransmissionRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	query := `
        INSERT INTO transmissions (
            id, created_at, device_id, success, message_count,
            bytes_transmitted, transmission_mode, error_message, timestamp
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := s.getDB().ExecContext(ctx, query,
		record.ID, record.CreatedAt, record.DeviceID, record.Success,
		record.MessageCount, record.BytesTransmitted, record.Mode,
		record.ErrorMessage, record.Timestamp,
	)

	return err
}

// ListTransmissions lists archived transmission results for a device
func (s *PostgresStore) ListTransmissions(ctx context.Context, deviceID string, limit, offset int) ([]*models.TransmissionRecord, int64, error) {
	var count int64
	err := s.getDB().QueryRowContext(ctx,
		"SELECT COUNT(*) FROM transmissions WHERE device_id = $1", deviceID,
	).Scan(&count)
	if err != nil {
		return nil, 0, err
	}

	query := `
        SELECT id, created_at, device_id, success, message_count,
               bytes_transmitted, transmission_mode, error_message, timestamp
        FROM transmissions
        WHERE device_id = $1
        ORDER BY timestamp DESC
        LIMIT $2 OFFSET $3`

	rows, err := s.getDB().QueryContext(ctx, query, deviceID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var records []*models.TransmissionRecord
	for rows.Next() {
		record := &models.TransmissionRecord{}

		err := rows.Scan(
			&record.ID, &record.CreatedAt, &record.DeviceID, &record.Success,
			&record.MessageCount, &record.BytesTransmitted, &record.Mode,
			&record.ErrorMessage, &record.Timestamp,
		)
		if err != nil {
			return nil, 0, err
		}

		records = append(records, record)
	}

	return records, count, rows.Err()
}
