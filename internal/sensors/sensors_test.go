package sensors

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bristlemouth/spotter-server/pkg/bcmp"
)

func TestSensorValidationRanges(t *testing.T) {
	cases := []struct {
		desc   string
		sensor Sensor
		value  float64
		valid  bool
	}{
		{
			desc:   "temperature in range",
			sensor: NewTemperatureSensor("", DefaultMinTemperatureC, DefaultMaxTemperatureC),
			value:  18.5,
			valid:  true,
		},
		{
			desc:   "temperature at minimum",
			sensor: NewTemperatureSensor("", DefaultMinTemperatureC, DefaultMaxTemperatureC),
			value:  -5.0,
			valid:  true,
		},
		{
			desc:   "temperature below minimum",
			sensor: NewTemperatureSensor("", DefaultMinTemperatureC, DefaultMaxTemperatureC),
			value:  -5.1,
			valid:  false,
		},
		{
			desc:   "temperature above maximum",
			sensor: NewTemperatureSensor("", DefaultMinTemperatureC, DefaultMaxTemperatureC),
			value:  50.1,
			valid:  false,
		},
		{
			desc:   "temperature NaN",
			sensor: NewTemperatureSensor("", DefaultMinTemperatureC, DefaultMaxTemperatureC),
			value:  math.NaN(),
			valid:  false,
		},
		{
			desc:   "pressure in range",
			sensor: NewPressureSensor("", DefaultMinPressureDbar, DefaultMaxPressureDbar),
			value:  100.0,
			valid:  true,
		},
		{
			desc:   "pressure negative",
			sensor: NewPressureSensor("", DefaultMinPressureDbar, DefaultMaxPressureDbar),
			value:  -1.0,
			valid:  false,
		},
		{
			desc:   "pressure above maximum",
			sensor: NewPressureSensor("", DefaultMinPressureDbar, DefaultMaxPressureDbar),
			value:  600.5,
			valid:  false,
		},
		{
			desc:   "salinity in range",
			sensor: NewSalinitySensor("", DefaultMinSalinityPSU, DefaultMaxSalinityPSU),
			value:  35.0,
			valid:  true,
		},
		{
			desc:   "salinity above maximum",
			sensor: NewSalinitySensor("", DefaultMinSalinityPSU, DefaultMaxSalinityPSU),
			value:  45.5,
			valid:  false,
		},
		{
			desc:   "current speed in range",
			sensor: NewCurrentMeterSensor("", DefaultMaxCurrentSpeedMS),
			value:  2.5,
			valid:  true,
		},
		{
			desc:   "current speed negative",
			sensor: NewCurrentMeterSensor("", DefaultMaxCurrentSpeedMS),
			value:  -0.1,
			valid:  false,
		},
		{
			desc:   "turbidity in range",
			sensor: NewTurbiditySensor("", DefaultMinTurbidityNTU, DefaultMaxTurbidityNTU),
			value:  150.0,
			valid:  true,
		},
		{
			desc:   "turbidity above maximum",
			sensor: NewTurbiditySensor("", DefaultMinTurbidityNTU, DefaultMaxTurbidityNTU),
			value:  4000.5,
			valid:  false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			ok, msg := tc.sensor.ValidateReading(tc.value)
			assert.Equal(t, tc.valid, ok)
			assert.NotEmpty(t, msg)

			_, err := tc.sensor.CreateReading(tc.value)
			if tc.valid {
				assert.NoError(t, err)
			} else {
				var vErr *bcmp.ValidationError
				assert.ErrorAs(t, err, &vErr)
			}
		})
	}
}

func TestSensorDefaults(t *testing.T) {
	temperature := NewTemperatureSensor("", DefaultMinTemperatureC, DefaultMaxTemperatureC)
	assert.Equal(t, "temp_sensor_01", temperature.ID())
	assert.Equal(t, UnitCelsius, temperature.DefaultUnit())
	assert.Equal(t, bcmp.TopicTemperature, temperature.Topic())

	pressure := NewPressureSensor("", DefaultMinPressureDbar, DefaultMaxPressureDbar)
	assert.Equal(t, "pressure_sensor_01", pressure.ID())

	salinity := NewSalinitySensor("custom-id", DefaultMinSalinityPSU, DefaultMaxSalinityPSU)
	assert.Equal(t, "custom-id", salinity.ID())

	min, max := temperature.Bounds()
	assert.Equal(t, DefaultMinTemperatureC, min)
	assert.Equal(t, DefaultMaxTemperatureC, max)
}

func TestCreateReadingDefaultsAndOptions(t *testing.T) {
	s := NewTemperatureSensor("", DefaultMinTemperatureC, DefaultMaxTemperatureC)

	reading, err := s.CreateReading(12.0)
	require.NoError(t, err)
	assert.Equal(t, 100, reading.Quality)
	assert.Equal(t, UnitCelsius, reading.Unit)
	assert.Equal(t, "temp_sensor_01", reading.SensorID)
	assert.Nil(t, reading.Depth)

	ts := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	reading, err = s.CreateReading(12.0,
		WithQuality(55),
		WithDepth(4.5),
		WithTimestamp(ts),
		WithUnit(UnitKelvin),
	)
	require.NoError(t, err)
	assert.Equal(t, 55, reading.Quality)
	require.NotNil(t, reading.Depth)
	assert.Equal(t, 4.5, *reading.Depth)
	assert.True(t, ts.Equal(reading.Timestamp))
	assert.Equal(t, UnitKelvin, reading.Unit)

	_, err = s.CreateReading(12.0, WithQuality(150))
	var vErr *bcmp.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestSensorReadingLog(t *testing.T) {
	s := NewSalinitySensor("", DefaultMinSalinityPSU, DefaultMaxSalinityPSU)

	_, err := s.CreateReading(34.0)
	require.NoError(t, err)
	_, err = s.CreateReading(35.0)
	require.NoError(t, err)

	// Rejected values never reach the log.
	_, err = s.CreateReading(99.0)
	require.Error(t, err)

	readings := s.Readings()
	require.Len(t, readings, 2)
	assert.Equal(t, 34.0, readings[0].Value)
	assert.Equal(t, 35.0, readings[1].Value)

	s.ClearReadings()
	assert.Empty(t, s.Readings())
}

func TestWrapReadingSequence(t *testing.T) {
	s := NewTurbiditySensor("", DefaultMinTurbidityNTU, DefaultMaxTurbidityNTU)

	for i := 1; i <= 3; i++ {
		msg, err := s.CreateAndWrap(float64(i))
		require.NoError(t, err)
		assert.Equal(t, uint32(i), msg.Sequence)
		assert.Equal(t, bcmp.TypeSensorData, msg.Type)
		assert.Equal(t, bcmp.TopicTurbidity, msg.Topic)
		assert.Len(t, msg.Payload, ReadingSize)
	}
}

func TestPressureToDepth(t *testing.T) {
	s := NewPressureSensor("", DefaultMinPressureDbar, DefaultMaxPressureDbar)

	// 100 dbar is roughly 100 m in seawater.
	depth := s.PressureToDepth(100.0, 45.0)
	assert.InDelta(t, 100.0, depth, 10.0)

	// Gravity grows with latitude, so depth shrinks.
	equator := s.PressureToDepth(100.0, 0.0)
	pole := s.PressureToDepth(100.0, 90.0)
	assert.Greater(t, equator, pole)

	assert.Equal(t, 0.0, s.PressureToDepth(0.0, 45.0))
}

func TestCurrentDirectionValidation(t *testing.T) {
	meter := NewCurrentMeterSensor("", DefaultMaxCurrentSpeedMS)

	cases := []struct {
		desc      string
		direction float64
		err       bool
	}{
		{desc: "north", direction: 0.0},
		{desc: "full circle", direction: 360.0},
		{desc: "south west", direction: 225.0},
		{desc: "negative", direction: -1.0, err: true},
		{desc: "beyond full circle", direction: 360.5, err: true},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			_, err := meter.CreateCurrentReading(1.0, tc.direction)
			if tc.err {
				var vErr *bcmp.ValidationError
				require.ErrorAs(t, err, &vErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestCurrentVectors(t *testing.T) {
	meter := NewCurrentMeterSensor("", DefaultMaxCurrentSpeedMS)

	_, err := meter.CreateCurrentReading(1.0, 90.0)
	require.NoError(t, err)
	_, err = meter.CreateCurrentReading(2.0, 180.0)
	require.NoError(t, err)

	// Rejected pairs are not recorded.
	_, err = meter.CreateCurrentReading(10.0, 90.0)
	require.Error(t, err)

	vectors := meter.Vectors()
	require.Len(t, vectors, 2)
	assert.Equal(t, CurrentVector{SpeedMS: 1.0, DirectionDeg: 90.0}, vectors[0])
	assert.Equal(t, CurrentVector{SpeedMS: 2.0, DirectionDeg: 180.0}, vectors[1])
}

func TestClassifyTurbidity(t *testing.T) {
	s := NewTurbiditySensor("", DefaultMinTurbidityNTU, DefaultMaxTurbidityNTU)

	cases := []struct {
		value    float64
		expected string
	}{
		{0.0, "Excellent"},
		{0.9, "Excellent"},
		{1.0, "Good"},
		{4.99, "Good"},
		{5.0, "Fair"},
		{49.9, "Fair"},
		{50.0, "Poor"},
		{499.9, "Poor"},
		{500.0, "Very Poor"},
		{4000.0, "Very Poor"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.expected, s.ClassifyTurbidity(tc.value), "value %g", tc.value)
	}
}
