package bcmp

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	msg, err := NewMessage(TopicTemperature, []byte{0x01, 0x02}, TypeSensorData)
	require.NoError(t, err)
	assert.Equal(t, uint8(ProtocolVersion), msg.Version)
	assert.Equal(t, TypeSensorData, msg.Type)
	assert.False(t, msg.Timestamp.IsZero())

	_, err = NewMessage(TopicTemperature, make([]byte, MaxPayloadSize+1), TypeSensorData)
	var fErr *FormatError
	assert.ErrorAs(t, err, &fErr)
}

func TestMessageRoundtrip(t *testing.T) {
	original, err := NewMessage(TopicPressure, []byte("payload"), TypeSensorData)
	require.NoError(t, err)
	original.Sequence = 42
	original.Timestamp = time.Date(2026, 3, 14, 9, 26, 53, 589_000_000, time.UTC)
	original.SourceNodeID = [6]byte{0xde, 0xad, 0xbe, 0xef, 0x00, 0x01}

	data, err := original.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, byte(HeaderMagic), data[0])

	var decoded Message
	require.NoError(t, decoded.UnmarshalBinary(data))

	assert.Equal(t, original.Topic.Name, decoded.Topic.Name)
	assert.Equal(t, original.Topic.Version, decoded.Topic.Version)
	assert.Equal(t, original.Payload, decoded.Payload)
	assert.Equal(t, original.Type, decoded.Type)
	assert.Equal(t, original.Version, decoded.Version)
	assert.Equal(t, original.Sequence, decoded.Sequence)
	assert.Equal(t, original.SourceNodeID, decoded.SourceNodeID)
	assert.True(t, original.Timestamp.Equal(decoded.Timestamp))
}

func TestMessageTimestampMillisecondPrecision(t *testing.T) {
	original, err := NewMessage(TopicStatus, nil, TypeHeartbeat)
	require.NoError(t, err)
	original.Timestamp = time.Date(2026, 1, 2, 3, 4, 5, 123_456_789, time.UTC)

	data, err := original.MarshalBinary()
	require.NoError(t, err)

	var decoded Message
	require.NoError(t, decoded.UnmarshalBinary(data))

	// Sub-millisecond precision is dropped on the wire.
	assert.Equal(t, original.Timestamp.Truncate(time.Millisecond), decoded.Timestamp)
}

func TestMessageChecksumMismatch(t *testing.T) {
	msg, err := NewMessage(TopicSalinity, []byte("abc"), TypeSensorData)
	require.NoError(t, err)

	data, err := msg.MarshalBinary()
	require.NoError(t, err)

	// Flip a payload bit so the trailer no longer matches.
	corrupted := bytes.Clone(data)
	corrupted[len(corrupted)-6] ^= 0x01

	var decoded Message
	err = decoded.UnmarshalBinary(corrupted)
	var iErr *IntegrityError
	require.ErrorAs(t, err, &iErr)
	assert.NotEqual(t, iErr.Expected, iErr.Got)
}

func TestMessageUnmarshalErrors(t *testing.T) {
	valid, err := NewMessage(TopicCurrent, []byte("x"), TypeSensorData)
	require.NoError(t, err)
	validData, err := valid.MarshalBinary()
	require.NoError(t, err)

	badMagic := bytes.Clone(validData)
	badMagic[0] = 0x00

	cases := []struct {
		desc string
		data []byte
	}{
		{
			desc: "too short",
			data: validData[:headerSize-1],
		},
		{
			desc: "invalid magic",
			data: badMagic,
		},
		{
			desc: "truncated after header",
			data: validData[:headerSize+1],
		},
		{
			desc: "truncated before checksum",
			data: validData[:len(validData)-2],
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			var decoded Message
			err := decoded.UnmarshalBinary(tc.data)
			var fErr *FormatError
			assert.ErrorAs(t, err, &fErr)
		})
	}
}

func TestMessageHexRoundtrip(t *testing.T) {
	original, err := NewMessage(TopicTransmitData, []byte{0xAA, 0xBB}, TypePublish)
	require.NoError(t, err)
	original.Sequence = 7

	encoded, err := original.MarshalHex()
	require.NoError(t, err)

	var decoded Message
	require.NoError(t, decoded.UnmarshalHex(encoded))
	assert.Equal(t, original.Payload, decoded.Payload)
	assert.Equal(t, original.Sequence, decoded.Sequence)

	var bad Message
	err = bad.UnmarshalHex("not hex")
	var fErr *FormatError
	assert.ErrorAs(t, err, &fErr)
}

func TestMessageTypeString(t *testing.T) {
	assert.Equal(t, "HEARTBEAT", TypeHeartbeat.String())
	assert.Equal(t, "SENSOR_DATA", TypeSensorData.String())
	assert.Equal(t, "RESPONSE", TypeResponse.String())
	assert.Equal(t, "UNKNOWN(99)", MessageType(99).String())
}

func TestMessageToMap(t *testing.T) {
	msg, err := NewMessage(TopicStatus, []byte{0x01}, TypeSensorData)
	require.NoError(t, err)
	msg.Sequence = 3

	m := msg.ToMap()
	assert.Equal(t, "bm://*/spotter/status/v1", m["topic"])
	assert.Equal(t, "SENSOR_DATA", m["message_type"])
	assert.Equal(t, uint32(3), m["sequence_number"])
	assert.Equal(t, "01", m["payload_hex"])
	assert.Equal(t, 1, m["payload_size"])
}
