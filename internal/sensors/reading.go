package sensors

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/bristlemouth/spotter-server/pkg/bcmp"
)

// Unit is a standard unit of measurement for sensor readings.
type Unit string

const (
	UnitCelsius              Unit = "°C"
	UnitFahrenheit           Unit = "°F"
	UnitKelvin               Unit = "K"
	UnitDecibar              Unit = "dbar"
	UnitPascal               Unit = "Pa"
	UnitBar                  Unit = "bar"
	UnitPSU                  Unit = "PSU"
	UnitPPT                  Unit = "ppt"
	UnitMetersPerSecond      Unit = "m/s"
	UnitCentimetersPerSecond Unit = "cm/s"
	UnitNTU                  Unit = "NTU"
	UnitFNU                  Unit = "FNU"
	UnitMeters               Unit = "m"
	UnitDegrees              Unit = "°"
	UnitHertz                Unit = "Hz"
	UnitMilligramsPerLiter   Unit = "mg/L"
	UnitPercent              Unit = "%"
)

// Wire sizes of the fixed reading layout.
const (
	// ReadingSize: value(8) + timestampMillis(8) + quality(1) + depth(4)
	ReadingSize = 21

	// CurrentReadingSize appends a direction float32.
	CurrentReadingSize = 25

	// depthSentinel encodes an absent depth on the wire.
	depthSentinel = float32(-1.0)
)

// Reading is a single sensor measurement with value, unit and metadata.
// Depth is nil for surface measurements.
type Reading struct {
	Value     float64
	Unit      Unit
	Timestamp time.Time
	Quality   int
	SensorID  string
	Depth     *float64
}

// NewReading creates a reading and enforces the quality bound.
func NewReading(value float64, unit Unit, timestamp time.Time, quality int) (*Reading, error) {
	if quality < 0 || quality > 100 {
		return nil, &bcmp.ValidationError{Reason: fmt.Sprintf("quality must be between 0 and 100, got %d", quality)}
	}
	return &Reading{
		Value:     value,
		Unit:      unit,
		Timestamp: timestamp,
		Quality:   quality,
	}, nil
}

// MarshalBinary encodes the reading in its fixed 21-byte layout:
// value(f64) | timestampMillis(u64) | quality(u8) | depth(f32).
func (r *Reading) MarshalBinary() ([]byte, error) {
	depth := depthSentinel
	if r.Depth != nil {
		depth = float32(*r.Depth)
	}

	data := make([]byte, ReadingSize)
	binary.BigEndian.PutUint64(data[0:8], math.Float64bits(r.Value))
	binary.BigEndian.PutUint64(data[8:16], uint64(r.Timestamp.UnixMilli()))
	data[16] = uint8(r.Quality)
	binary.BigEndian.PutUint32(data[17:21], math.Float32bits(depth))

	return data, nil
}

// DecodeReading decodes a reading from its fixed layout. The unit is supplied
// by the caller; it is not carried on the wire.
func DecodeReading(data []byte, unit Unit) (*Reading, error) {
	if len(data) < ReadingSize {
		return nil, &bcmp.FormatError{Reason: fmt.Sprintf("reading too short: %d bytes", len(data))}
	}

	r := &Reading{
		Value:     math.Float64frombits(binary.BigEndian.Uint64(data[0:8])),
		Unit:      unit,
		Timestamp: time.UnixMilli(int64(binary.BigEndian.Uint64(data[8:16]))).UTC(),
		Quality:   int(data[16]),
	}

	depth := math.Float32frombits(binary.BigEndian.Uint32(data[17:21]))
	if depth >= 0 {
		d := float64(depth)
		r.Depth = &d
	}

	return r, nil
}

// DecodeCurrentReading decodes the extended current-meter layout and returns
// the reading together with its direction in degrees.
func DecodeCurrentReading(data []byte, unit Unit) (*Reading, float64, error) {
	if len(data) < CurrentReadingSize {
		return nil, 0, &bcmp.FormatError{Reason: fmt.Sprintf("current reading too short: %d bytes", len(data))}
	}

	r, err := DecodeReading(data[:ReadingSize], unit)
	if err != nil {
		return nil, 0, err
	}

	direction := float64(math.Float32frombits(binary.BigEndian.Uint32(data[ReadingSize:CurrentReadingSize])))
	return r, direction, nil
}

// ToMap returns the reading as a map for logging and API responses.
func (r *Reading) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"value":     r.Value,
		"unit":      string(r.Unit),
		"timestamp": float64(r.Timestamp.UnixMilli()) / 1000.0,
		"quality":   r.Quality,
		"sensor_id": r.SensorID,
	}
	if r.Depth != nil {
		m["depth_m"] = *r.Depth
	}
	return m
}
