package sensors

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/bristlemouth/spotter-server/pkg/bcmp"
)

// DefaultMaxCurrentSpeedMS is the default upper bound for current speed.
const DefaultMaxCurrentSpeedMS = 5.0

// CurrentVector is a recorded (speed, direction) pair.
type CurrentVector struct {
	SpeedMS      float64
	DirectionDeg float64
}

// CurrentMeterSensor measures water current velocity. Current readings carry
// both a speed and a direction; the direction travels in the extended
// 25-byte payload.
type CurrentMeterSensor struct {
	*baseSensor

	vectors []CurrentVector
}

// NewCurrentMeterSensor creates a current meter bound to the current topic.
// Speed is valid in [0, maxSpeedMS].
func NewCurrentMeterSensor(id string, maxSpeedMS float64) *CurrentMeterSensor {
	if id == "" {
		id = "current_sensor_01"
	}
	s := &CurrentMeterSensor{
		baseSensor: newBaseSensor(id, bcmp.TopicCurrent, UnitMetersPerSecond, 0, maxSpeedMS),
	}
	s.validate = s.ValidateReading
	return s
}

// ValidateReading checks a current speed value against the sensor range.
func (s *CurrentMeterSensor) ValidateReading(value float64) (bool, string) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return false, "current speed must be a finite number"
	}
	if value < s.min {
		return false, fmt.Sprintf("current speed %g m/s cannot be negative", value)
	}
	if value > s.max {
		return false, fmt.Sprintf("current speed %g m/s above maximum %g m/s", value, s.max)
	}
	return true, "valid"
}

// CreateCurrentReading creates a speed reading with an associated direction
// in degrees (0 = North). The (speed, direction) pair is recorded.
func (s *CurrentMeterSensor) CreateCurrentReading(speedMS, directionDeg float64, opts ...ReadingOption) (*Reading, error) {
	if directionDeg < 0 || directionDeg > 360 {
		return nil, &bcmp.ValidationError{Reason: "direction must be between 0 and 360 degrees"}
	}

	reading, err := s.CreateReading(speedMS, opts...)
	if err != nil {
		return nil, err
	}

	s.vectors = append(s.vectors, CurrentVector{SpeedMS: speedMS, DirectionDeg: directionDeg})
	return reading, nil
}

// WrapCurrentReading wraps a speed reading and its direction in a message.
// The payload is the standard reading layout with the direction appended as
// a float32.
func (s *CurrentMeterSensor) WrapCurrentReading(r *Reading, directionDeg float64) (*bcmp.Message, error) {
	payload, err := r.MarshalBinary()
	if err != nil {
		return nil, err
	}

	var dir [4]byte
	binary.BigEndian.PutUint32(dir[:], math.Float32bits(float32(directionDeg)))
	payload = append(payload, dir[:]...)

	s.sequence++

	msg, err := bcmp.NewMessage(s.topic, payload, bcmp.TypeSensorData)
	if err != nil {
		return nil, err
	}
	msg.Sequence = s.sequence
	msg.Timestamp = r.Timestamp

	return msg, nil
}

// Vectors returns a copy of the recorded (speed, direction) pairs.
func (s *CurrentMeterSensor) Vectors() []CurrentVector {
	out := make([]CurrentVector, len(s.vectors))
	copy(out, s.vectors)
	return out
}
