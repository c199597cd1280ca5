package bcmp

import (
	"crypto/md5"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"time"
)

// Protocol constants.
const (
	ProtocolVersion = 0x01
	HeaderMagic     = 0xBC

	// MaxPayloadSize keeps a full frame under typical link MTUs.
	MaxPayloadSize = 1400

	// headerSize: magic(1) + version(1) + type(2) + sequence(4) +
	// timestamp(8) + sourceNodeID(6)
	headerSize = 22
)

// MessageType identifies the kind of a BCMP message.
type MessageType uint16

const (
	TypeHeartbeat   MessageType = 0x00
	TypeSensorData  MessageType = 0x01
	TypeConfig      MessageType = 0x02
	TypeAck         MessageType = 0x03
	TypeNack        MessageType = 0x04
	TypeDiscovery   MessageType = 0x05
	TypeSubscribe   MessageType = 0x06
	TypeUnsubscribe MessageType = 0x07
	TypePublish     MessageType = 0x08
	TypeRequest     MessageType = 0x09
	TypeResponse    MessageType = 0x0A
)

var messageTypeNames = map[MessageType]string{
	TypeHeartbeat:   "HEARTBEAT",
	TypeSensorData:  "SENSOR_DATA",
	TypeConfig:      "CONFIG",
	TypeAck:         "ACK",
	TypeNack:        "NACK",
	TypeDiscovery:   "DISCOVERY",
	TypeSubscribe:   "SUBSCRIBE",
	TypeUnsubscribe: "UNSUBSCRIBE",
	TypePublish:     "PUBLISH",
	TypeRequest:     "REQUEST",
	TypeResponse:    "RESPONSE",
}

// String returns the wire-name of the message type.
func (t MessageType) String() string {
	if name, ok := messageTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", uint16(t))
}

// Message is a complete BCMP message: header, topic, payload and a trailing
// 4-byte checksum. The checksum is the first 4 bytes of an MD5 digest over
// everything preceding it; it is an integrity check, not a CRC, so callers
// must not rely on burst-error detection guarantees.
type Message struct {
	Topic        Topic
	Payload      []byte
	Type         MessageType
	Version      uint8
	Sequence     uint32
	Timestamp    time.Time
	SourceNodeID [6]byte
}

// NewMessage creates a message stamped with the current time and the default
// protocol version. The payload size bound is enforced here.
func NewMessage(topic Topic, payload []byte, msgType MessageType) (*Message, error) {
	if len(payload) > MaxPayloadSize {
		return nil, newFormatError(fmt.Sprintf("payload size %d exceeds maximum %d", len(payload), MaxPayloadSize))
	}
	return &Message{
		Topic:     topic,
		Payload:   payload,
		Type:      msgType,
		Version:   ProtocolVersion,
		Timestamp: time.Now(),
	}, nil
}

// packWithoutChecksum serializes everything the checksum covers.
func (m *Message) packWithoutChecksum() ([]byte, error) {
	if len(m.Payload) > MaxPayloadSize {
		return nil, newFormatError(fmt.Sprintf("payload size %d exceeds maximum %d", len(m.Payload), MaxPayloadSize))
	}

	topicBytes, err := m.Topic.MarshalBinary()
	if err != nil {
		return nil, err
	}

	data := make([]byte, 0, headerSize+2+len(topicBytes)+2+len(m.Payload))

	header := make([]byte, headerSize)
	header[0] = HeaderMagic
	header[1] = m.Version
	binary.BigEndian.PutUint16(header[2:4], uint16(m.Type))
	binary.BigEndian.PutUint32(header[4:8], m.Sequence)
	binary.BigEndian.PutUint64(header[8:16], uint64(m.Timestamp.UnixMilli()))
	copy(header[16:22], m.SourceNodeID[:])
	data = append(data, header...)

	var block [2]byte
	binary.BigEndian.PutUint16(block[:], uint16(len(topicBytes)))
	data = append(data, block[:]...)
	data = append(data, topicBytes...)

	binary.BigEndian.PutUint16(block[:], uint16(len(m.Payload)))
	data = append(data, block[:]...)
	data = append(data, m.Payload...)

	return data, nil
}

// Checksum computes the 4-byte trailer over the current field values.
func (m *Message) Checksum() ([4]byte, error) {
	var sum [4]byte
	data, err := m.packWithoutChecksum()
	if err != nil {
		return sum, err
	}
	digest := md5.Sum(data)
	copy(sum[:], digest[:4])
	return sum, nil
}

// MarshalBinary encodes the message including the trailing checksum.
func (m *Message) MarshalBinary() ([]byte, error) {
	data, err := m.packWithoutChecksum()
	if err != nil {
		return nil, err
	}
	digest := md5.Sum(data)
	return append(data, digest[:4]...), nil
}

// UnmarshalBinary decodes a message and verifies its checksum. The timestamp
// round-trips at millisecond precision.
func (m *Message) UnmarshalBinary(data []byte) error {
	if len(data) < headerSize {
		return newFormatError(fmt.Sprintf("message too short: %d bytes", len(data)))
	}

	if data[0] != HeaderMagic {
		return newFormatError(fmt.Sprintf("invalid magic byte: %#x", data[0]))
	}

	decoded := Message{
		Version:   data[1],
		Type:      MessageType(binary.BigEndian.Uint16(data[2:4])),
		Sequence:  binary.BigEndian.Uint32(data[4:8]),
		Timestamp: time.UnixMilli(int64(binary.BigEndian.Uint64(data[8:16]))).UTC(),
	}
	copy(decoded.SourceNodeID[:], data[16:22])

	offset := headerSize
	if len(data) < offset+2 {
		return newFormatError("message truncated")
	}
	topicLen := int(binary.BigEndian.Uint16(data[offset : offset+2]))
	offset += 2

	if len(data) < offset+topicLen {
		return newFormatError("message truncated")
	}
	if err := decoded.Topic.UnmarshalBinary(data[offset : offset+topicLen]); err != nil {
		return err
	}
	offset += topicLen

	if len(data) < offset+2 {
		return newFormatError("message truncated")
	}
	payloadLen := int(binary.BigEndian.Uint16(data[offset : offset+2]))
	offset += 2

	if payloadLen > MaxPayloadSize {
		return newFormatError(fmt.Sprintf("payload size %d exceeds maximum %d", payloadLen, MaxPayloadSize))
	}
	if len(data) < offset+payloadLen {
		return newFormatError("message truncated")
	}
	decoded.Payload = make([]byte, payloadLen)
	copy(decoded.Payload, data[offset:offset+payloadLen])
	offset += payloadLen

	if len(data) < offset+4 {
		return newFormatError("message truncated")
	}
	var received [4]byte
	copy(received[:], data[offset:offset+4])

	expected, err := decoded.Checksum()
	if err != nil {
		return err
	}
	if received != expected {
		return &IntegrityError{Expected: expected, Got: received}
	}

	*m = decoded
	return nil
}

// MarshalHex returns the message as a lowercase hexadecimal string.
func (m *Message) MarshalHex() (string, error) {
	data, err := m.MarshalBinary()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(data), nil
}

// UnmarshalHex decodes a message from its hexadecimal string form.
func (m *Message) UnmarshalHex(s string) error {
	data, err := hex.DecodeString(s)
	if err != nil {
		return newFormatError("invalid hex string: " + err.Error())
	}
	return m.UnmarshalBinary(data)
}

// ToMap returns a diagnostic view of the message for logging and inspection.
// It is not part of the wire contract.
func (m *Message) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"topic":           m.Topic.String(),
		"message_type":    m.Type.String(),
		"version":         m.Version,
		"sequence_number": m.Sequence,
		"timestamp":       float64(m.Timestamp.UnixMilli()) / 1000.0,
		"payload_hex":     hex.EncodeToString(m.Payload),
		"payload_size":    len(m.Payload),
	}
}
