package datasheet

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Default acceptance limits for sensor hardware specifications.
const (
	DefaultMaxPowerMW   = 1000.0
	DefaultMaxLatencyMS = 1000.0
	DefaultMinTempC     = -40.0
	DefaultMaxTempC     = 85.0
)

// requiredMetricKeys are the metrics every sensor model must report.
var requiredMetricKeys = []string{"accuracy", "precision", "recall"}

// ValidatePowerConsumption checks a power consumption value in milliwatts.
func ValidatePowerConsumption(powerMW, maxPowerMW float64) (bool, string) {
	if math.IsNaN(powerMW) || math.IsInf(powerMW, 0) {
		return false, "power consumption must be a numeric value"
	}
	if powerMW < 0 {
		return false, "power consumption cannot be negative"
	}
	if powerMW > maxPowerMW {
		return false, fmt.Sprintf("power consumption %gmW exceeds maximum %gmW", powerMW, maxPowerMW)
	}
	return true, "valid power consumption"
}

// ValidateAccuracyMetrics checks that all required metrics are present and
// every metric falls in [0, 1].
func ValidateAccuracyMetrics(metrics map[string]float64) (bool, string) {
	var missing []string
	for _, key := range requiredMetricKeys {
		if _, ok := metrics[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return false, fmt.Sprintf("missing required metrics: %s", strings.Join(missing, ", "))
	}

	keys := make([]string, 0, len(metrics))
	for key := range metrics {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := metrics[key]
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return false, fmt.Sprintf("metric %q must be a numeric value", key)
		}
		if value < 0.0 || value > 1.0 {
			return false, fmt.Sprintf("metric %q must be between 0.0 and 1.0", key)
		}
	}

	return true, "valid accuracy metrics"
}

// ValidateLatency checks an inference latency value in milliseconds.
func ValidateLatency(latencyMS, maxLatencyMS float64) (bool, string) {
	if math.IsNaN(latencyMS) || math.IsInf(latencyMS, 0) {
		return false, "latency must be a numeric value"
	}
	if latencyMS < 0 {
		return false, "latency cannot be negative"
	}
	if latencyMS > maxLatencyMS {
		return false, fmt.Sprintf("latency %gms exceeds maximum %gms", latencyMS, maxLatencyMS)
	}
	return true, "valid latency"
}

// ValidateTemperatureRange checks an operating temperature range against the
// acceptable envelope.
func ValidateTemperatureRange(minTempC, maxTempC, envelopeMinC, envelopeMaxC float64) (bool, string) {
	if math.IsNaN(minTempC) || math.IsNaN(maxTempC) {
		return false, "temperature values must be numeric"
	}
	if minTempC >= maxTempC {
		return false, "minimum temperature must be less than maximum temperature"
	}
	if minTempC < envelopeMinC {
		return false, fmt.Sprintf("minimum temperature %g°C is below acceptable range %g°C", minTempC, envelopeMinC)
	}
	if maxTempC > envelopeMaxC {
		return false, fmt.Sprintf("maximum temperature %g°C exceeds acceptable range %g°C", maxTempC, envelopeMaxC)
	}
	return true, "valid temperature range"
}
