package spotter

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bristlemouth/spotter-server/internal/sensors"
	"github.com/bristlemouth/spotter-server/pkg/bcmp"
)

func testClient(t *testing.T) *Client {
	t.Helper()
	return NewClient(DefaultConfig("SPOT-TEST-0001"))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("SPOT-0001")
	assert.Equal(t, "SPOT-0001", cfg.DeviceID)
	assert.Equal(t, ModeHybrid, cfg.TransmissionMode)
	assert.Equal(t, 1000, cfg.MaxQueueSize)
	assert.Equal(t, "https://api.sofarocean.com/api", cfg.APIEndpoint)
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient(Config{DeviceID: "SPOT-X"})
	assert.Equal(t, "SPOT-X", client.DeviceID())
	assert.Equal(t, ModeHybrid, client.Config().TransmissionMode)
	assert.Equal(t, 1000, client.Config().MaxQueueSize)
	assert.Equal(t, StateDisconnected, client.State())
}

func TestSensorRegistry(t *testing.T) {
	client := testClient(t)

	temp := sensors.NewTemperatureSensor("", sensors.DefaultMinTemperatureC, sensors.DefaultMaxTemperatureC)
	sal := sensors.NewSalinitySensor("", sensors.DefaultMinSalinityPSU, sensors.DefaultMaxSalinityPSU)

	client.RegisterSensor(temp)
	client.RegisterSensor(sal)
	assert.Equal(t, []string{"salinity_sensor_01", "temp_sensor_01"}, client.SensorIDs())

	// Re-registering the same id overwrites the prior entry.
	replacement := sensors.NewTemperatureSensor("temp_sensor_01", -2.0, 30.0)
	client.RegisterSensor(replacement)
	got, ok := client.Sensor("temp_sensor_01")
	require.True(t, ok)
	min, max := got.Bounds()
	assert.Equal(t, -2.0, min)
	assert.Equal(t, 30.0, max)

	assert.True(t, client.UnregisterSensor("temp_sensor_01"))
	assert.False(t, client.UnregisterSensor("temp_sensor_01"))
	_, ok = client.Sensor("temp_sensor_01")
	assert.False(t, ok)
}

func TestStateChangeNotification(t *testing.T) {
	client := testClient(t)

	var transitions [][2]ConnectionState
	client.OnStateChange(func(old, new ConnectionState) {
		transitions = append(transitions, [2]ConnectionState{old, new})
	})

	client.SetState(StateConnecting)
	client.SetState(StateConnected)

	// Assigning the current state is a no-op.
	client.SetState(StateConnected)

	require.Len(t, transitions, 2)
	assert.Equal(t, [2]ConnectionState{StateDisconnected, StateConnecting}, transitions[0])
	assert.Equal(t, [2]ConnectionState{StateConnecting, StateConnected}, transitions[1])
}

func TestQueueReading(t *testing.T) {
	client := testClient(t)
	temp := sensors.NewTemperatureSensor("", sensors.DefaultMinTemperatureC, sensors.DefaultMaxTemperatureC)
	client.RegisterSensor(temp)

	reading, err := temp.CreateReading(15.0)
	require.NoError(t, err)

	msg, err := client.QueueReading(temp, reading)
	require.NoError(t, err)
	assert.Equal(t, bcmp.TopicTemperature, msg.Topic)
	assert.Equal(t, 1, client.QueueSize())
}

func TestQueueRawData(t *testing.T) {
	client := testClient(t)

	msg, err := client.QueueRawData(bcmp.TopicConfig, []byte(`{"rate":60}`), bcmp.TypeConfig)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), msg.Sequence)
	assert.Equal(t, 1, client.QueueSize())

	second, err := client.QueueRawData(bcmp.TopicConfig, nil, bcmp.TypeConfig)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), second.Sequence)
}

func TestTransmitDrainsHead(t *testing.T) {
	client := testClient(t)

	for i := 0; i < 5; i++ {
		_, err := client.QueueRawData(bcmp.TopicTransmitData, []byte{byte(i)}, bcmp.TypeSensorData)
		require.NoError(t, err)
	}

	result, err := client.Transmit(ModeSatellite, 3)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 3, result.MessageCount)
	assert.Greater(t, result.BytesTransmitted, 0)
	assert.Equal(t, ModeSatellite, result.Mode)
	assert.Equal(t, 2, client.QueueSize())

	// Remaining messages kept FIFO order.
	remaining := client.PeekQueue(2)
	require.Len(t, remaining, 2)
	assert.Equal(t, []byte{3}, remaining[0].Payload)
	assert.Equal(t, []byte{4}, remaining[1].Payload)
}

func TestTransmitEmptyQueue(t *testing.T) {
	client := testClient(t)

	result, err := client.Transmit("", 0)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 0, result.MessageCount)
	assert.Equal(t, 0, result.BytesTransmitted)
	assert.Equal(t, ModeHybrid, result.Mode)

	// The zero-count result still lands in history.
	assert.Len(t, client.History(0), 1)
}

func TestTransmitListeners(t *testing.T) {
	client := testClient(t)
	_, err := client.QueueRawData(bcmp.TopicTransmitData, []byte("data"), bcmp.TypeSensorData)
	require.NoError(t, err)

	var order []string
	client.OnTransmit(func(TransmissionResult) { order = append(order, "first") })
	client.OnTransmit(func(TransmissionResult) { order = append(order, "second") })

	_, err = client.Transmit("", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestTransmitModeFallsBackToConfig(t *testing.T) {
	cfg := DefaultConfig("SPOT-MODE")
	cfg.TransmissionMode = ModeCellular
	client := NewClient(cfg)

	result, err := client.Transmit("", 0)
	require.NoError(t, err)
	assert.Equal(t, ModeCellular, result.Mode)
}

func TestHistoryLimit(t *testing.T) {
	client := testClient(t)

	for i := 0; i < 5; i++ {
		_, err := client.Transmit(ModeLocal, 0)
		require.NoError(t, err)
	}

	assert.Len(t, client.History(0), 5)
	assert.Len(t, client.History(2), 2)
	assert.Len(t, client.History(10), 5)
}

func TestClearAndPeekQueue(t *testing.T) {
	client := testClient(t)

	for i := 0; i < 4; i++ {
		_, err := client.QueueRawData(bcmp.TopicStatus, nil, bcmp.TypeHeartbeat)
		require.NoError(t, err)
	}

	assert.Len(t, client.PeekQueue(2), 2)
	assert.Equal(t, 4, client.QueueSize())
	assert.Equal(t, 4, client.ClearQueue())
	assert.Equal(t, 0, client.QueueSize())
}

func TestQueueEvictsAtCapacity(t *testing.T) {
	cfg := DefaultConfig("SPOT-EVICT")
	cfg.MaxQueueSize = 3
	client := NewClient(cfg)

	for i := 0; i < 5; i++ {
		_, err := client.QueueRawData(bcmp.TopicStatus, []byte{byte(i)}, bcmp.TypeSensorData)
		require.NoError(t, err)
	}

	assert.Equal(t, 3, client.QueueSize())
	head := client.PeekQueue(1)
	require.Len(t, head, 1)
	assert.Equal(t, []byte{2}, head[0].Payload)
}

func TestStatus(t *testing.T) {
	client := testClient(t)
	client.RegisterSensor(sensors.NewTemperatureSensor("", sensors.DefaultMinTemperatureC, sensors.DefaultMaxTemperatureC))
	client.SetState(StateConnected)
	_, err := client.QueueRawData(bcmp.TopicStatus, nil, bcmp.TypeHeartbeat)
	require.NoError(t, err)

	status := client.Status()
	assert.Equal(t, "SPOT-TEST-0001", status.DeviceID)
	assert.Equal(t, "connected", status.State)
	assert.Equal(t, 1, status.QueueSize)
	assert.Equal(t, []string{"temp_sensor_01"}, status.RegisteredSensors)
	assert.Equal(t, "hybrid", status.TransmissionMode)
	assert.Greater(t, status.Timestamp, 0.0)
}

func TestCreateStatusMessage(t *testing.T) {
	client := testClient(t)
	client.SetState(StateConnected)

	msg, err := client.CreateStatusMessage()
	require.NoError(t, err)
	assert.Equal(t, bcmp.TopicStatus, msg.Topic)
	assert.Equal(t, uint32(1), msg.Sequence)

	var status Status
	require.NoError(t, json.Unmarshal(msg.Payload, &status))
	assert.Equal(t, "SPOT-TEST-0001", status.DeviceID)
	assert.Equal(t, "connected", status.State)
}

func TestFormatForAPI(t *testing.T) {
	client := testClient(t)

	msg1, err := client.QueueRawData(bcmp.TopicTemperature, []byte{0x01, 0x02}, bcmp.TypeSensorData)
	require.NoError(t, err)
	msg2, err := client.QueueRawData(bcmp.TopicSalinity, []byte{0x03}, bcmp.TypeSensorData)
	require.NoError(t, err)

	batch := client.FormatForAPI([]*bcmp.Message{msg1, msg2})
	assert.Equal(t, "SPOT-TEST-0001", batch.DeviceID)
	assert.Equal(t, 2, batch.MessageCount)
	require.Len(t, batch.Messages, 2)

	assert.Equal(t, "bm://*/spotter/sensor/temperature/v1", batch.Messages[0].Topic)
	assert.Equal(t, "SENSOR_DATA", batch.Messages[0].Type)
	assert.Equal(t, uint32(1), batch.Messages[0].Sequence)
	assert.Equal(t, "0102", batch.Messages[0].PayloadHex)
	assert.Equal(t, "03", batch.Messages[1].PayloadHex)
}
