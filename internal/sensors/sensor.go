package sensors

import (
	"time"

	"github.com/bristlemouth/spotter-server/pkg/bcmp"
)

// Sensor is a measurement source bound to a topic, with per-variant
// validation of produced values. Sensors are not safe for concurrent use;
// callers that share a sensor across goroutines must serialize access.
type Sensor interface {
	ID() string
	Topic() bcmp.Topic
	DefaultUnit() Unit
	Bounds() (min, max float64)

	// ValidateReading reports whether a value is acceptable and, when it is
	// not, a human-readable reason.
	ValidateReading(value float64) (bool, string)

	CreateReading(value float64, opts ...ReadingOption) (*Reading, error)
	WrapReading(r *Reading) (*bcmp.Message, error)
	CreateAndWrap(value float64, opts ...ReadingOption) (*bcmp.Message, error)

	Readings() []*Reading
	ClearReadings()
}

// ReadingOption overrides a default field of a created reading.
type ReadingOption func(*Reading)

// WithUnit overrides the sensor's default unit.
func WithUnit(u Unit) ReadingOption {
	return func(r *Reading) { r.Unit = u }
}

// WithTimestamp overrides the reading timestamp (defaults to now).
func WithTimestamp(t time.Time) ReadingOption {
	return func(r *Reading) { r.Timestamp = t }
}

// WithQuality sets the quality indicator (defaults to 100).
func WithQuality(q int) ReadingOption {
	return func(r *Reading) { r.Quality = q }
}

// WithDepth sets the measurement depth in meters.
func WithDepth(m float64) ReadingOption {
	return func(r *Reading) { r.Depth = &m }
}

// baseSensor carries the shared sensor behavior. The variant's validator is
// injected at construction so CreateReading dispatches to it without
// inheritance.
type baseSensor struct {
	id       string
	topic    bcmp.Topic
	unit     Unit
	min      float64
	max      float64
	sequence uint32
	readings []*Reading
	validate func(value float64) (bool, string)
}

func newBaseSensor(id string, topic bcmp.Topic, unit Unit, min, max float64) *baseSensor {
	return &baseSensor{
		id:    id,
		topic: topic,
		unit:  unit,
		min:   min,
		max:   max,
	}
}

func (s *baseSensor) ID() string                 { return s.id }
func (s *baseSensor) Topic() bcmp.Topic          { return s.topic }
func (s *baseSensor) DefaultUnit() Unit          { return s.unit }
func (s *baseSensor) Bounds() (float64, float64) { return s.min, s.max }

// CreateReading validates the value, appends the accepted reading to the
// in-memory log and returns it.
func (s *baseSensor) CreateReading(value float64, opts ...ReadingOption) (*Reading, error) {
	if ok, msg := s.validate(value); !ok {
		return nil, &bcmp.ValidationError{Reason: msg}
	}

	reading := &Reading{
		Value:     value,
		Unit:      s.unit,
		Timestamp: time.Now(),
		Quality:   100,
		SensorID:  s.id,
	}
	for _, opt := range opts {
		opt(reading)
	}

	if reading.Quality < 0 || reading.Quality > 100 {
		return nil, &bcmp.ValidationError{Reason: "quality must be between 0 and 100"}
	}

	s.readings = append(s.readings, reading)
	return reading, nil
}

// WrapReading wraps a reading in a SENSOR_DATA message addressed to the
// sensor's topic, stamping the sensor's next sequence number.
func (s *baseSensor) WrapReading(r *Reading) (*bcmp.Message, error) {
	payload, err := r.MarshalBinary()
	if err != nil {
		return nil, err
	}

	s.sequence++

	msg, err := bcmp.NewMessage(s.topic, payload, bcmp.TypeSensorData)
	if err != nil {
		return nil, err
	}
	msg.Sequence = s.sequence
	msg.Timestamp = r.Timestamp

	return msg, nil
}

// CreateAndWrap combines CreateReading and WrapReading.
func (s *baseSensor) CreateAndWrap(value float64, opts ...ReadingOption) (*bcmp.Message, error) {
	reading, err := s.CreateReading(value, opts...)
	if err != nil {
		return nil, err
	}
	return s.WrapReading(reading)
}

// Readings returns a copy of the stored readings.
func (s *baseSensor) Readings() []*Reading {
	out := make([]*Reading, len(s.readings))
	copy(out, s.readings)
	return out
}

// ClearReadings drops all stored readings.
func (s *baseSensor) ClearReadings() {
	s.readings = nil
}
