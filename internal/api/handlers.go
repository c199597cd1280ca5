package api

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/bristlemouth/spotter-server/internal/datasheet"
	"github.com/bristlemouth/spotter-server/internal/models"
	"github.com/bristlemouth/spotter-server/internal/sensors"
	"github.com/bristlemouth/spotter-server/internal/spotter"
	"github.com/bristlemouth/spotter-server/internal/storage"
	"github.com/bristlemouth/spotter-server/pkg/bcmp"
)

// ========== Auth handlers ==========

// HandleLogin handles operator login
func (s *RESTServer) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if s.config.API.Username == "" {
		s.respondError(w, http.StatusForbidden, "authentication is not configured")
		return
	}

	if req.Username != s.config.API.Username ||
		!s.auth.VerifyPassword(req.Password, s.config.API.PasswordHash) {
		s.respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	accessToken, refreshToken, err := s.auth.GenerateTokenPair(req.Username)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to generate tokens")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"expires_in":    int(s.config.JWT.AccessTokenTTL.Seconds()),
		"token_type":    "Bearer",
	})
}

// HandleRefresh handles token refresh
func (s *RESTServer) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	accessToken, refreshToken, err := s.auth.RefreshToken(req.RefreshToken)
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"expires_in":    int(s.config.JWT.AccessTokenTTL.Seconds()),
		"token_type":    "Bearer",
	})
}

// ========== Device handlers ==========

// HandleGetStatus returns the device status snapshot
func (s *RESTServer) HandleGetStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	status := s.client.Status()
	s.mu.Unlock()

	s.respondJSON(w, http.StatusOK, status)
}

// HandleSetState assigns the device connection state
func (s *RESTServer) HandleSetState(w http.ResponseWriter, r *http.Request) {
	var req struct {
		State string `json:"state" validate:"required"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	state := spotter.ConnectionState(req.State)
	switch state {
	case spotter.StateDisconnected, spotter.StateConnecting, spotter.StateConnected, spotter.StateError:
	default:
		s.respondError(w, http.StatusBadRequest, "invalid connection state")
		return
	}

	s.mu.Lock()
	s.client.SetState(state)
	status := s.client.Status()
	s.mu.Unlock()

	s.respondJSON(w, http.StatusOK, status)
}

// ========== Sensor handlers ==========

// HandleListSensors lists registered sensors
func (s *RESTServer) HandleListSensors(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := make([]map[string]interface{}, 0)
	for _, id := range s.client.SensorIDs() {
		sensor, _ := s.client.Sensor(id)
		list = append(list, sensorToMap(sensor))
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"sensors": list,
		"total":   len(list),
	})
}

// HandleGetSensor returns a single sensor
func (s *RESTServer) HandleGetSensor(w http.ResponseWriter, r *http.Request) {
	sensorID := chi.URLParam(r, "sensor_id")

	s.mu.Lock()
	sensor, ok := s.client.Sensor(sensorID)
	s.mu.Unlock()

	if !ok {
		s.respondError(w, http.StatusNotFound, "sensor not found")
		return
	}

	s.respondJSON(w, http.StatusOK, sensorToMap(sensor))
}

// HandleCreateReading records a reading on a sensor and queues the framed
// message. Current meter readings accept an optional direction.
func (s *RESTServer) HandleCreateReading(w http.ResponseWriter, r *http.Request) {
	sensorID := chi.URLParam(r, "sensor_id")

	var req struct {
		Value     float64  `json:"value"`
		Direction *float64 `json:"direction,omitempty"`
		Quality   *int     `json:"quality,omitempty"`
		Depth     *float64 `json:"depth,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	sensor, ok := s.client.Sensor(sensorID)
	if !ok {
		s.mu.Unlock()
		s.respondError(w, http.StatusNotFound, "sensor not found")
		return
	}

	var opts []sensors.ReadingOption
	if req.Quality != nil {
		opts = append(opts, sensors.WithQuality(*req.Quality))
	}
	if req.Depth != nil {
		opts = append(opts, sensors.WithDepth(*req.Depth))
	}

	var (
		reading *sensors.Reading
		msg     *bcmp.Message
		err     error
	)

	if meter, isMeter := sensor.(*sensors.CurrentMeterSensor); isMeter && req.Direction != nil {
		reading, err = meter.CreateCurrentReading(req.Value, *req.Direction, opts...)
		if err == nil {
			msg, err = meter.WrapCurrentReading(reading, *req.Direction)
		}
		if err == nil {
			s.client.QueueMessage(msg)
		}
	} else {
		reading, err = sensor.CreateReading(req.Value, opts...)
		if err == nil {
			msg, err = s.client.QueueReading(sensor, reading)
		}
	}
	s.mu.Unlock()

	if err != nil {
		var vErr *bcmp.ValidationError
		if errors.As(err, &vErr) {
			s.respondError(w, http.StatusBadRequest, vErr.Error())
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.archiveReading(r, sensor, reading)

	s.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"reading": reading.ToMap(),
		"message": msg.ToMap(),
	})
}

// archiveReading writes a reading to the archive store when configured.
func (s *RESTServer) archiveReading(r *http.Request, sensor sensors.Sensor, reading *sensors.Reading) {
	if s.store == nil {
		return
	}

	record := &models.ReadingRecord{
		DeviceID:  s.client.DeviceID(),
		SensorID:  reading.SensorID,
		Topic:     sensor.Topic().String(),
		Value:     reading.Value,
		Unit:      string(reading.Unit),
		Quality:   reading.Quality,
		Depth:     reading.Depth,
		Timestamp: reading.Timestamp,
	}

	if err := s.store.SaveReading(r.Context(), record); err != nil {
		log.Error().Err(err).Str("sensor_id", reading.SensorID).Msg("Failed to archive reading")
	}
}

// HandleListArchivedReadings lists archived readings for a sensor
func (s *RESTServer) HandleListArchivedReadings(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.respondError(w, http.StatusServiceUnavailable, "reading archive is not configured")
		return
	}

	sensorID := chi.URLParam(r, "sensor_id")

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit == 0 {
		limit = 20
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	records, total, err := s.store.ListReadings(r.Context(), storage.ReadingFilters{
		SensorID: &sensorID,
	}, limit, offset)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"readings": records,
		"total":    total,
	})
}

// HandleClearReadings clears a sensor's in-memory reading log
func (s *RESTServer) HandleClearReadings(w http.ResponseWriter, r *http.Request) {
	sensorID := chi.URLParam(r, "sensor_id")

	s.mu.Lock()
	sensor, ok := s.client.Sensor(sensorID)
	if ok {
		sensor.ClearReadings()
	}
	s.mu.Unlock()

	if !ok {
		s.respondError(w, http.StatusNotFound, "sensor not found")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"cleared": true,
	})
}

// ========== Queue handlers ==========

// HandleGetQueue returns queue depth and a peek at pending messages
func (s *RESTServer) HandleGetQueue(w http.ResponseWriter, r *http.Request) {
	count, _ := strconv.Atoi(r.URL.Query().Get("count"))
	if count == 0 {
		count = 10
	}

	s.mu.Lock()
	size := s.client.QueueSize()
	pending := s.client.PeekQueue(count)
	s.mu.Unlock()

	messages := make([]map[string]interface{}, 0, len(pending))
	for _, msg := range pending {
		messages = append(messages, msg.ToMap())
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"queue_size": size,
		"messages":   messages,
	})
}

// HandleClearQueue empties the message queue
func (s *RESTServer) HandleClearQueue(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	removed := s.client.ClearQueue()
	s.mu.Unlock()

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"removed": removed,
	})
}

// HandleQueueRaw frames raw payload bytes on an arbitrary topic
func (s *RESTServer) HandleQueueRaw(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Topic      string `json:"topic" validate:"required"`
		Version    uint8  `json:"version"`
		PayloadHex string `json:"payload_hex"`
		Type       uint16 `json:"type"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Version == 0 {
		req.Version = 1
	}

	topic, err := bcmp.NewTopicVersion(req.Topic, req.Version)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	payload, err := hex.DecodeString(req.PayloadHex)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "payload_hex is not valid hex")
		return
	}

	s.mu.Lock()
	msg, err := s.client.QueueRawData(topic, payload, bcmp.MessageType(req.Type))
	s.mu.Unlock()

	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.respondJSON(w, http.StatusCreated, msg.ToMap())
}

// HandleQueueStatus queues a status snapshot message
func (s *RESTServer) HandleQueueStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	msg, err := s.client.CreateStatusMessage()
	if err == nil {
		s.client.QueueMessage(msg)
	}
	s.mu.Unlock()

	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusCreated, msg.ToMap())
}

// ========== Transmission handlers ==========

// HandleTransmit drains queued messages through a simulated transmission,
// forwards the batch to NATS and archives the result.
func (s *RESTServer) HandleTransmit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode        string `json:"mode"`
		MaxMessages int    `json:"max_messages"`
	}

	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	mode := spotter.TransmissionMode(req.Mode)
	switch mode {
	case "", spotter.ModeSatellite, spotter.ModeCellular, spotter.ModeHybrid, spotter.ModeLocal:
	default:
		s.respondError(w, http.StatusBadRequest, "invalid transmission mode")
		return
	}

	s.mu.Lock()
	peekCount := s.client.QueueSize()
	if req.MaxMessages > 0 && req.MaxMessages < peekCount {
		peekCount = req.MaxMessages
	}
	pending := s.client.PeekQueue(peekCount)
	batch := s.client.FormatForAPI(pending)
	result, err := s.client.Transmit(mode, req.MaxMessages)
	s.mu.Unlock()

	if err != nil {
		s.archiveTransmission(r, result)
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if s.forwarder != nil && result.MessageCount > 0 {
		if err := s.forwarder.PublishBatch(batch); err != nil {
			log.Error().Err(err).Msg("Failed to forward batch")
		}
		if err := s.forwarder.PublishResult(s.client.DeviceID(), result); err != nil {
			log.Error().Err(err).Msg("Failed to forward transmission result")
		}
	}

	s.archiveTransmission(r, result)

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"result": result,
		"batch":  batch,
	})
}

// archiveTransmission writes a transmission result to the archive store.
func (s *RESTServer) archiveTransmission(r *http.Request, result spotter.TransmissionResult) {
	if s.store == nil {
		return
	}

	record := &models.TransmissionRecord{
		DeviceID:         s.client.DeviceID(),
		Success:          result.Success,
		MessageCount:     result.MessageCount,
		BytesTransmitted: result.BytesTransmitted,
		Mode:             string(result.Mode),
		ErrorMessage:     result.ErrorMessage,
		Timestamp:        result.Timestamp,
	}

	if err := s.store.SaveTransmission(r.Context(), record); err != nil {
		log.Error().Err(err).Msg("Failed to archive transmission result")
	}
}

// HandleListTransmissions lists the in-memory transmission history
func (s *RESTServer) HandleListTransmissions(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	s.mu.Lock()
	history := s.client.History(limit)
	s.mu.Unlock()

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"transmissions": history,
		"total":         len(history),
	})
}

// ========== Datasheet handlers ==========

// HandleValidateDatasheet validates a sensor datasheet submission
func (s *RESTServer) HandleValidateDatasheet(w http.ResponseWriter, r *http.Request) {
	var sheet datasheet.Datasheet

	if err := json.NewDecoder(r.Body).Decode(&sheet); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	valid, validationErrors := sheet.Validate()
	if validationErrors == nil {
		validationErrors = []string{}
	}

	response := map[string]interface{}{
		"valid":            valid,
		"errors":           validationErrors,
		"efficiency_score": sheet.EfficiencyScore(),
	}

	if accuracy, ok := sheet.OverallAccuracy(); ok {
		response["overall_accuracy"] = accuracy
	}

	s.respondJSON(w, http.StatusOK, response)
}

// ========== Misc handlers ==========

// HandleHealth handles health checks
func (s *RESTServer) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
	})
}

// HandleRoot returns server identification
func (s *RESTServer) HandleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"name":      s.config.Server.Name,
		"version":   s.config.Server.Version,
		"device_id": s.client.DeviceID(),
	})
}

// respondJSON responds with JSON
func (s *RESTServer) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

// respondError responds with error
func (s *RESTServer) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// sensorToMap renders the public view of a sensor.
func sensorToMap(sensor sensors.Sensor) map[string]interface{} {
	min, max := sensor.Bounds()
	return map[string]interface{}{
		"id":            sensor.ID(),
		"topic":         sensor.Topic().String(),
		"unit":          string(sensor.DefaultUnit()),
		"min":           min,
		"max":           max,
		"reading_count": len(sensor.Readings()),
	}
}
