package sensors

import (
	"fmt"
	"math"

	"github.com/bristlemouth/spotter-server/pkg/bcmp"
)

// Default pressure range; 600 dbar corresponds to roughly 6000 m depth.
const (
	DefaultMinPressureDbar = 0.0
	DefaultMaxPressureDbar = 600.0
)

// PressureSensor measures water column pressure in decibars. Pressure
// readings can be converted to depth.
type PressureSensor struct {
	*baseSensor
}

// NewPressureSensor creates a pressure sensor bound to the pressure topic.
func NewPressureSensor(id string, minDbar, maxDbar float64) *PressureSensor {
	if id == "" {
		id = "pressure_sensor_01"
	}
	s := &PressureSensor{
		baseSensor: newBaseSensor(id, bcmp.TopicPressure, UnitDecibar, minDbar, maxDbar),
	}
	s.validate = s.ValidateReading
	return s
}

// ValidateReading checks a pressure value against the sensor range.
func (s *PressureSensor) ValidateReading(value float64) (bool, string) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return false, "pressure must be a finite number"
	}
	if value < s.min {
		return false, fmt.Sprintf("pressure %g dbar below minimum %g dbar", value, s.min)
	}
	if value > s.max {
		return false, fmt.Sprintf("pressure %g dbar above maximum %g dbar", value, s.max)
	}
	return true, "valid"
}

// PressureToDepth converts pressure in decibars to depth in meters using the
// simplified UNESCO formula. Latitude affects local gravity and therefore the
// derived depth.
func (s *PressureSensor) PressureToDepth(pressureDbar, latitude float64) float64 {
	rad := latitude / 57.29578
	g := 9.780318 * (1.0 + 5.2788e-3*rad*rad)
	return pressureDbar / (g / 10.0)
}
