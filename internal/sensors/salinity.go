package sensors

import (
	"fmt"
	"math"

	"github.com/bristlemouth/spotter-server/pkg/bcmp"
)

// Default salinity range in Practical Salinity Units.
const (
	DefaultMinSalinityPSU = 0.0
	DefaultMaxSalinityPSU = 45.0
)

// SalinitySensor measures water salinity in PSU.
type SalinitySensor struct {
	*baseSensor
}

// NewSalinitySensor creates a salinity sensor bound to the salinity topic.
func NewSalinitySensor(id string, minPSU, maxPSU float64) *SalinitySensor {
	if id == "" {
		id = "salinity_sensor_01"
	}
	s := &SalinitySensor{
		baseSensor: newBaseSensor(id, bcmp.TopicSalinity, UnitPSU, minPSU, maxPSU),
	}
	s.validate = s.ValidateReading
	return s
}

// ValidateReading checks a salinity value against the sensor range.
func (s *SalinitySensor) ValidateReading(value float64) (bool, string) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return false, "salinity must be a finite number"
	}
	if value < s.min {
		return false, fmt.Sprintf("salinity %g PSU below minimum %g PSU", value, s.min)
	}
	if value > s.max {
		return false, fmt.Sprintf("salinity %g PSU above maximum %g PSU", value, s.max)
	}
	return true, "valid"
}
