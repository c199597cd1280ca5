package bcmp

import (
	"encoding/binary"
	"fmt"
)

// MaxTopicNameLen is the maximum length of a topic name in bytes.
const MaxTopicNameLen = 64

// Topic represents a pub/sub topic used for routing messages between nodes on
// a Bristlemouth network. The node identifier is advisory and never
// serialized.
type Topic struct {
	Name    string
	Version uint8
	NodeID  string
}

// NewTopic creates a topic with the default version.
func NewTopic(name string) (Topic, error) {
	return NewTopicVersion(name, 1)
}

// NewTopicVersion creates a topic with an explicit version.
func NewTopicVersion(name string, version uint8) (Topic, error) {
	if name == "" {
		return Topic{}, newFormatError("empty topic name")
	}
	if len(name) > MaxTopicNameLen {
		return Topic{}, newFormatError(fmt.Sprintf("topic name too long: %d bytes", len(name)))
	}
	return Topic{Name: name, Version: version}, nil
}

// mustTopic builds the predefined topics; name lengths are known valid.
func mustTopic(name string) Topic {
	t, err := NewTopic(name)
	if err != nil {
		panic(err)
	}
	return t
}

// MarshalBinary encodes the topic as version(1) | nameLen(2) | name.
func (t Topic) MarshalBinary() ([]byte, error) {
	if t.Name == "" {
		return nil, newFormatError("empty topic name")
	}
	if len(t.Name) > MaxTopicNameLen {
		return nil, newFormatError(fmt.Sprintf("topic name too long: %d bytes", len(t.Name)))
	}

	data := make([]byte, 3+len(t.Name))
	data[0] = t.Version
	binary.BigEndian.PutUint16(data[1:3], uint16(len(t.Name)))
	copy(data[3:], t.Name)

	return data, nil
}

// UnmarshalBinary decodes a topic from binary.
func (t *Topic) UnmarshalBinary(data []byte) error {
	if len(data) < 3 {
		return newFormatError(fmt.Sprintf("topic too short: %d bytes", len(data)))
	}

	nameLen := int(binary.BigEndian.Uint16(data[1:3]))
	if len(data) < 3+nameLen {
		return newFormatError("topic name truncated")
	}

	decoded, err := NewTopicVersion(string(data[3:3+nameLen]), data[0])
	if err != nil {
		return err
	}

	*t = decoded
	return nil
}

// EncodedLen returns the size of the encoded topic in bytes.
func (t Topic) EncodedLen() int {
	return 3 + len(t.Name)
}

// String renders the topic as a bm:// URI for logging.
func (t Topic) String() string {
	node := t.NodeID
	if node == "" {
		node = "*"
	}
	return fmt.Sprintf("bm://%s/%s/v%d", node, t.Name, t.Version)
}

// Predefined topics for the Spotter buoy.
var (
	TopicTemperature  = mustTopic("spotter/sensor/temperature")
	TopicPressure     = mustTopic("spotter/sensor/pressure")
	TopicSalinity     = mustTopic("spotter/sensor/salinity")
	TopicCurrent      = mustTopic("spotter/sensor/current")
	TopicTurbidity    = mustTopic("spotter/sensor/turbidity")
	TopicWaves        = mustTopic("spotter/sensor/waves")
	TopicGPS          = mustTopic("spotter/sensor/gps")
	TopicTransmitData = mustTopic("spotter/transmit-data")
	TopicConfig       = mustTopic("spotter/config")
	TopicStatus       = mustTopic("spotter/status")
)
