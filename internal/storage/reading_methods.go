package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bristlemouth/spotter-server/internal/models"
)

// SaveReading archives a sensor reading
func (s *PostgresStore) SaveReading(ctx context.Context, record *models.ReadingRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	query := `
        INSERT INTO readings (
            id, created_at, device_id, sensor_id, topic,
            value, unit, quality, depth, timestamp
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := s.getDB().ExecContext(ctx, query,
		record.ID, record.CreatedAt, record.DeviceID, record.SensorID,
		record.Topic, record.Value, record.Unit, record.Quality,
		record.Depth, record.Timestamp,
	)

	return err
}

// ListReadings lists archived readings with filters
func (s *PostgresStore) ListReadings(ctx context.Context, filters ReadingFilters, limit, offset int) ([]*models.ReadingRecord, int64, error) {
	// Build query with filters
	query := "SELECT COUNT(*) FROM readings WHERE 1=1"
	args := []interface{}{}
	argCount := 0

	if filters.DeviceID != nil {
		argCount++
		query += fmt.Sprintf(" AND device_id = $%d", argCount)
		args = append(args, *filters.DeviceID)
	}

	if filters.SensorID != nil {
		argCount++
		query += fmt.Sprintf(" AND sensor_id = $%d", argCount)
		args = append(args, *filters.SensorID)
	}

	if filters.Topic != nil {
		argCount++
		query += fmt.Sprintf(" AND topic = $%d", argCount)
		args = append(args, *filters.Topic)
	}

	if filters.StartTime != nil {
		argCount++
		query += fmt.Sprintf(" AND timestamp >= $%d", argCount)
		args = append(args, *filters.StartTime)
	}

	if filters.EndTime != nil {
		argCount++
		query += fmt.Sprintf(" AND timestamp <= $%d", argCount)
		args = append(args, *filters.EndTime)
	}

	// Get count
	var count int64
	err := s.getDB().QueryRowContext(ctx, query, args...).Scan(&count)
	if err != nil {
		return nil, 0, err
	}

	// Get rows
	selectQuery := strings.Replace(query, "SELECT COUNT(*)",
		"SELECT id, created_at, device_id, sensor_id, topic, value, unit, quality, depth, timestamp", 1)

	argCount++
	selectQuery += fmt.Sprintf(" ORDER BY timestamp DESC LIMIT $%d", argCount)
	args = append(args, limit)

	argCount++
	selectQuery += fmt.Sprintf(" OFFSET $%d", argCount)
	args = append(args, offset)

	rows, err := s.getDB().QueryContext(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var records []*models.ReadingRecord
	for rows.Next() {
		record := &models.ReadingRecord{}

		err := rows.Scan(
			&record.ID, &record.CreatedAt, &record.DeviceID, &record.SensorID,
			&record.Topic, &record.Value, &record.Unit, &record.Quality,
			&record.Depth, &record.Timestamp,
		)
		if err != nil {
			return nil, 0, err
		}

		records = append(records, record)
	}

	return records, count, rows.Err()
}
