package datasheet

import (
	"fmt"
)

// Datasheet captures the hardware and model specifications of a smart sensor.
type Datasheet struct {
	Name        string `json:"name" yaml:"name"`
	Version     string `json:"version" yaml:"version"`
	Description string `json:"description" yaml:"description"`

	PowerConsumptionMW float64            `json:"power_consumption_mw" yaml:"power_consumption_mw"`
	LatencyMS          float64            `json:"latency_ms" yaml:"latency_ms"`
	AccuracyMetrics    map[string]float64 `json:"accuracy_metrics" yaml:"accuracy_metrics"`
	MinTempC           float64            `json:"min_temp_c" yaml:"min_temp_c"`
	MaxTempC           float64            `json:"max_temp_c" yaml:"max_temp_c"`
	InputType          string             `json:"input_type" yaml:"input_type"`
	OutputClasses      []string           `json:"output_classes" yaml:"output_classes"`
}

// New creates a datasheet with default limits filled in.
func New(name string) *Datasheet {
	return &Datasheet{
		Name:      name,
		Version:   "1.0.0",
		MinTempC:  DefaultMinTempC,
		MaxTempC:  DefaultMaxTempC,
		InputType: "unknown",
	}
}

// Validate checks every specification and collects all violations rather
// than stopping at the first.
func (d *Datasheet) Validate() (bool, []string) {
	var errors []string

	if d.Name == "" {
		errors = append(errors, "sensor name is required")
	}

	if ok, msg := ValidatePowerConsumption(d.PowerConsumptionMW, DefaultMaxPowerMW); !ok {
		errors = append(errors, fmt.Sprintf("power consumption: %s", msg))
	}

	if ok, msg := ValidateLatency(d.LatencyMS, DefaultMaxLatencyMS); !ok {
		errors = append(errors, fmt.Sprintf("latency: %s", msg))
	}

	if len(d.AccuracyMetrics) > 0 {
		if ok, msg := ValidateAccuracyMetrics(d.AccuracyMetrics); !ok {
			errors = append(errors, fmt.Sprintf("accuracy metrics: %s", msg))
		}
	}

	if ok, msg := ValidateTemperatureRange(d.MinTempC, d.MaxTempC, DefaultMinTempC, DefaultMaxTempC); !ok {
		errors = append(errors, fmt.Sprintf("temperature range: %s", msg))
	}

	return len(errors) == 0, errors
}

// EfficiencyScore combines power and latency into a [0, 1] score. Lower
// power and latency score higher; missing values score zero.
func (d *Datasheet) EfficiencyScore() float64 {
	if d.PowerConsumptionMW <= 0 || d.LatencyMS <= 0 {
		return 0.0
	}

	powerScore := 1 - d.PowerConsumptionMW/DefaultMaxPowerMW
	if powerScore < 0 {
		powerScore = 0
	}

	latencyScore := 1 - d.LatencyMS/DefaultMaxLatencyMS
	if latencyScore < 0 {
		latencyScore = 0
	}

	return (powerScore + latencyScore) / 2
}

// OverallAccuracy returns the reported accuracy metric when present.
func (d *Datasheet) OverallAccuracy() (float64, bool) {
	value, ok := d.AccuracyMetrics["accuracy"]
	return value, ok
}
