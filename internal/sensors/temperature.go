package sensors

import (
	"fmt"
	"math"

	"github.com/bristlemouth/spotter-server/pkg/bcmp"
)

// Default operating range for oceanographic temperature sensors.
const (
	DefaultMinTemperatureC = -5.0
	DefaultMaxTemperatureC = 50.0
)

// TemperatureSensor measures water temperature in Celsius.
type TemperatureSensor struct {
	*baseSensor
}

// NewTemperatureSensor creates a temperature sensor bound to the temperature
// topic with the given valid range.
func NewTemperatureSensor(id string, minTempC, maxTempC float64) *TemperatureSensor {
	if id == "" {
		id = "temp_sensor_01"
	}
	s := &TemperatureSensor{
		baseSensor: newBaseSensor(id, bcmp.TopicTemperature, UnitCelsius, minTempC, maxTempC),
	}
	s.validate = s.ValidateReading
	return s
}

// ValidateReading checks a temperature value against the sensor range.
func (s *TemperatureSensor) ValidateReading(value float64) (bool, string) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return false, "temperature must be a finite number"
	}
	if value < s.min {
		return false, fmt.Sprintf("temperature %g°C below minimum %g°C", value, s.min)
	}
	if value > s.max {
		return false, fmt.Sprintf("temperature %g°C above maximum %g°C", value, s.max)
	}
	return true, "valid"
}
