package sensors

import (
	"fmt"
	"math"

	"github.com/bristlemouth/spotter-server/pkg/bcmp"
)

// Default turbidity range in Nephelometric Turbidity Units.
const (
	DefaultMinTurbidityNTU = 0.0
	DefaultMaxTurbidityNTU = 4000.0
)

// TurbiditySensor measures water clarity in NTU.
type TurbiditySensor struct {
	*baseSensor
}

// NewTurbiditySensor creates a turbidity sensor bound to the turbidity topic.
func NewTurbiditySensor(id string, minNTU, maxNTU float64) *TurbiditySensor {
	if id == "" {
		id = "turbidity_sensor_01"
	}
	s := &TurbiditySensor{
		baseSensor: newBaseSensor(id, bcmp.TopicTurbidity, UnitNTU, minNTU, maxNTU),
	}
	s.validate = s.ValidateReading
	return s
}

// ValidateReading checks a turbidity value against the sensor range.
func (s *TurbiditySensor) ValidateReading(value float64) (bool, string) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return false, "turbidity must be a finite number"
	}
	if value < s.min {
		return false, fmt.Sprintf("turbidity %g NTU cannot be negative", value)
	}
	if value > s.max {
		return false, fmt.Sprintf("turbidity %g NTU above maximum %g NTU", value, s.max)
	}
	return true, "valid"
}

// ClassifyTurbidity maps a turbidity value to a water quality class.
// Thresholds are left-closed; the first match wins.
func (s *TurbiditySensor) ClassifyTurbidity(value float64) string {
	switch {
	case value < 1:
		return "Excellent"
	case value < 5:
		return "Good"
	case value < 50:
		return "Fair"
	case value < 500:
		return "Poor"
	default:
		return "Very Poor"
	}
}
