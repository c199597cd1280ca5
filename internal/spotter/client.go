package spotter

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/bristlemouth/spotter-server/internal/sensors"
	"github.com/bristlemouth/spotter-server/pkg/bcmp"
)

// TransmissionMode is the advisory channel a simulated transmission reports
// as used.
type TransmissionMode string

const (
	ModeSatellite TransmissionMode = "satellite"
	ModeCellular  TransmissionMode = "cellular"
	ModeHybrid    TransmissionMode = "hybrid"
	ModeLocal     TransmissionMode = "local"
)

// ConnectionState is the buoy's connection state. Transitions are driven
// entirely by SetState; the client performs no autonomous transitions.
type ConnectionState string

const (
	StateDisconnected ConnectionState = "disconnected"
	StateConnecting   ConnectionState = "connecting"
	StateConnected    ConnectionState = "connected"
	StateError        ConnectionState = "error"
)

// Config holds the buoy client configuration. Sample and transmit intervals
// are advisory values for an external driver; the client does not run timers.
type Config struct {
	DeviceID          string
	TransmissionMode  TransmissionMode
	SampleInterval    time.Duration
	TransmitInterval  time.Duration
	MaxQueueSize      int
	EnableCompression bool
	APIEndpoint       string
}

// DefaultConfig returns the stock Spotter configuration for a device.
func DefaultConfig(deviceID string) Config {
	return Config{
		DeviceID:          deviceID,
		TransmissionMode:  ModeHybrid,
		SampleInterval:    60 * time.Second,
		TransmitInterval:  time.Hour,
		MaxQueueSize:      1000,
		EnableCompression: true,
		APIEndpoint:       "https://api.sofarocean.com/api",
	}
}

// TransmissionResult is the outcome of one transmit call. Results are
// immutable once produced and appended to the client history.
type TransmissionResult struct {
	Success          bool             `json:"success"`
	MessageCount     int              `json:"message_count"`
	BytesTransmitted int              `json:"bytes_transmitted"`
	Timestamp        time.Time        `json:"timestamp"`
	Mode             TransmissionMode `json:"transmission_mode"`
	ErrorMessage     string           `json:"error_message,omitempty"`
}

// Listener signatures. Listeners run synchronously in registration order; a
// panicking listener propagates to the triggering call.
type (
	TransmitListener    func(TransmissionResult)
	ErrorListener       func(error)
	StateChangeListener func(old, new ConnectionState)
)

// Client manages sensor registration, message queueing and simulated
// transmission for a Spotter buoy. Transmit never performs I/O; wiring a real
// modem or satellite transport is out of scope.
//
// The client is single-threaded by design and carries no internal locking;
// concurrent callers must serialize access externally.
type Client struct {
	cfg      Config
	deviceID string

	sensors  map[string]sensors.Sensor
	queue    *messageQueue
	history  []TransmissionResult
	state    ConnectionState
	sequence uint32

	onTransmit    []TransmitListener
	onError       []ErrorListener
	onStateChange []StateChangeListener
}

// NewClient creates a buoy client from a configuration.
func NewClient(cfg Config) *Client {
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 1000
	}
	if cfg.TransmissionMode == "" {
		cfg.TransmissionMode = ModeHybrid
	}
	return &Client{
		cfg:      cfg,
		deviceID: cfg.DeviceID,
		sensors:  make(map[string]sensors.Sensor),
		queue:    newMessageQueue(cfg.MaxQueueSize),
		state:    StateDisconnected,
	}
}

// DeviceID returns the device identifier.
func (c *Client) DeviceID() string { return c.deviceID }

// Config returns the client configuration.
func (c *Client) Config() Config { return c.cfg }

// State returns the current connection state.
func (c *Client) State() ConnectionState { return c.state }

// SetState assigns the connection state. Every transition that changes the
// value synchronously notifies state-change listeners with (old, new);
// assigning the same state is a no-op.
func (c *Client) SetState(state ConnectionState) {
	old := c.state
	c.state = state
	if old != state {
		for _, fn := range c.onStateChange {
			fn(old, state)
		}
	}
}

// RegisterSensor adds a sensor to the registry. Re-registering an id
// overwrites the prior entry.
func (c *Client) RegisterSensor(s sensors.Sensor) {
	c.sensors[s.ID()] = s
}

// UnregisterSensor removes a sensor and reports whether it was present.
func (c *Client) UnregisterSensor(sensorID string) bool {
	if _, ok := c.sensors[sensorID]; !ok {
		return false
	}
	delete(c.sensors, sensorID)
	return true
}

// Sensor returns a registered sensor by id.
func (c *Client) Sensor(sensorID string) (sensors.Sensor, bool) {
	s, ok := c.sensors[sensorID]
	return s, ok
}

// SensorIDs lists registered sensor ids in sorted order.
func (c *Client) SensorIDs() []string {
	ids := make([]string, 0, len(c.sensors))
	for id := range c.sensors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// QueueReading wraps a reading via its sensor and queues the resulting
// message. It returns the queued message.
func (c *Client) QueueReading(s sensors.Sensor, r *sensors.Reading) (*bcmp.Message, error) {
	msg, err := s.WrapReading(r)
	if err != nil {
		return nil, err
	}
	c.queue.PushWithEviction(msg)
	return msg, nil
}

// QueueMessage queues a pre-formatted message.
func (c *Client) QueueMessage(msg *bcmp.Message) {
	c.queue.PushWithEviction(msg)
}

// QueueRawData frames raw payload bytes as a message on the given topic and
// queues it, stamping the client's next sequence number.
func (c *Client) QueueRawData(topic bcmp.Topic, data []byte, msgType bcmp.MessageType) (*bcmp.Message, error) {
	msg, err := bcmp.NewMessage(topic, data, msgType)
	if err != nil {
		return nil, err
	}
	c.sequence++
	msg.Sequence = c.sequence
	c.queue.PushWithEviction(msg)
	return msg, nil
}

// QueueSize returns the number of messages awaiting transmission.
func (c *Client) QueueSize() int { return c.queue.Len() }

// ClearQueue empties the queue and returns the number of messages removed.
func (c *Client) ClearQueue() int { return c.queue.Clear() }

// PeekQueue returns up to count messages from the head of the queue without
// removing them.
func (c *Client) PeekQueue(count int) []*bcmp.Message {
	return c.queue.Peek(count)
}

// Transmit simulates transmission of queued messages. It drains up to
// maxMessages from the head of the queue (all of them when maxMessages <= 0),
// sums their encoded byte lengths, appends the result to history and notifies
// transmit listeners. An empty queue yields an immediate successful
// zero-count result. No network I/O is performed.
func (c *Client) Transmit(mode TransmissionMode, maxMessages int) (TransmissionResult, error) {
	if mode == "" {
		mode = c.cfg.TransmissionMode
	}

	toSend := c.queue.Len()
	if maxMessages > 0 && maxMessages < toSend {
		toSend = maxMessages
	}

	totalBytes := 0
	for i := 0; i < toSend; i++ {
		msg, ok := c.queue.Pop()
		if !ok {
			break
		}
		data, err := msg.MarshalBinary()
		if err != nil {
			result := TransmissionResult{
				Success:      false,
				MessageCount: i,
				Timestamp:    time.Now(),
				Mode:         mode,
				ErrorMessage: err.Error(),
			}
			c.history = append(c.history, result)
			for _, fn := range c.onError {
				fn(err)
			}
			return result, fmt.Errorf("encode queued message: %w", err)
		}
		totalBytes += len(data)
	}

	result := TransmissionResult{
		Success:          true,
		MessageCount:     toSend,
		BytesTransmitted: totalBytes,
		Timestamp:        time.Now(),
		Mode:             mode,
	}
	c.history = append(c.history, result)

	for _, fn := range c.onTransmit {
		fn(result)
	}

	return result, nil
}

// History returns transmission results, oldest first. A positive limit
// returns only the last limit entries.
func (c *Client) History(limit int) []TransmissionResult {
	results := c.history
	if limit > 0 && limit < len(results) {
		results = results[len(results)-limit:]
	}
	out := make([]TransmissionResult, len(results))
	copy(out, results)
	return out
}

// OnTransmit registers a listener invoked after every transmit call.
func (c *Client) OnTransmit(fn TransmitListener) {
	c.onTransmit = append(c.onTransmit, fn)
}

// OnError registers a listener for transmission errors.
func (c *Client) OnError(fn ErrorListener) {
	c.onError = append(c.onError, fn)
}

// OnStateChange registers a listener for connection state transitions.
func (c *Client) OnStateChange(fn StateChangeListener) {
	c.onStateChange = append(c.onStateChange, fn)
}

// Status is the structured snapshot carried by a status message.
type Status struct {
	DeviceID          string   `json:"device_id"`
	State             string   `json:"state"`
	QueueSize         int      `json:"queue_size"`
	RegisteredSensors []string `json:"registered_sensors"`
	TransmissionMode  string   `json:"transmission_mode"`
	Timestamp         float64  `json:"timestamp"`
}

// Status returns the current device status snapshot.
func (c *Client) Status() Status {
	return Status{
		DeviceID:          c.deviceID,
		State:             string(c.state),
		QueueSize:         c.queue.Len(),
		RegisteredSensors: c.SensorIDs(),
		TransmissionMode:  string(c.cfg.TransmissionMode),
		Timestamp:         float64(time.Now().UnixMilli()) / 1000.0,
	}
}

// CreateStatusMessage builds a status snapshot serialized as JSON inside a
// message addressed to the status topic.
func (c *Client) CreateStatusMessage() (*bcmp.Message, error) {
	payload, err := json.Marshal(c.Status())
	if err != nil {
		return nil, fmt.Errorf("marshal status: %w", err)
	}

	c.sequence++

	msg, err := bcmp.NewMessage(bcmp.TopicStatus, payload, bcmp.TypeSensorData)
	if err != nil {
		return nil, err
	}
	msg.Sequence = c.sequence

	return msg, nil
}

// APIMessage is the per-message record of an API batch.
type APIMessage struct {
	Topic      string  `json:"topic"`
	Type       string  `json:"type"`
	Sequence   uint32  `json:"sequence"`
	Timestamp  float64 `json:"timestamp"`
	PayloadHex string  `json:"payload_hex"`
}

// APIBatch is a batch of messages rendered for handoff to an external
// transport collaborator. The actual network submission is outside this core.
type APIBatch struct {
	DeviceID     string       `json:"device_id"`
	Timestamp    float64      `json:"timestamp"`
	MessageCount int          `json:"message_count"`
	Messages     []APIMessage `json:"messages"`
}

// FormatForAPI renders a batch of messages into a plain structured record.
func (c *Client) FormatForAPI(messages []*bcmp.Message) APIBatch {
	batch := APIBatch{
		DeviceID:     c.deviceID,
		Timestamp:    float64(time.Now().UnixMilli()) / 1000.0,
		MessageCount: len(messages),
		Messages:     make([]APIMessage, 0, len(messages)),
	}
	for _, msg := range messages {
		batch.Messages = append(batch.Messages, APIMessage{
			Topic:      msg.Topic.String(),
			Type:       msg.Type.String(),
			Sequence:   msg.Sequence,
			Timestamp:  float64(msg.Timestamp.UnixMilli()) / 1000.0,
			PayloadHex: hex.EncodeToString(msg.Payload),
		})
	}
	return batch
}
