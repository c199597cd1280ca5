package bcmp

import (
	"encoding/binary"
	"fmt"
	"math"
)

// DataType identifies the scalar kinds carried by a generic typed payload.
// This codec is independent of the fixed sensor reading layout; it exists so
// a message payload can carry arbitrary typed telemetry.
type DataType uint8

const (
	Float32 DataType = 0x01
	Float64 DataType = 0x02
	Int8    DataType = 0x03
	Int16   DataType = 0x04
	Int32   DataType = 0x05
	Int64   DataType = 0x06
	Uint8   DataType = 0x07
	Uint16  DataType = 0x08
	Uint32  DataType = 0x09
	Uint64  DataType = 0x0A
	String  DataType = 0x0B
	Bytes   DataType = 0x0C
	Bool    DataType = 0x0D
)

// EncodeValue encodes a scalar value for the given data type. Fixed-width
// kinds use network byte order; strings and byte blocks carry a 16-bit
// length prefix.
func EncodeValue(value interface{}, dataType DataType) ([]byte, error) {
	switch dataType {
	case Float32:
		f, err := toFloat64(value)
		if err != nil {
			return nil, err
		}
		data := make([]byte, 4)
		binary.BigEndian.PutUint32(data, math.Float32bits(float32(f)))
		return data, nil

	case Float64:
		f, err := toFloat64(value)
		if err != nil {
			return nil, err
		}
		data := make([]byte, 8)
		binary.BigEndian.PutUint64(data, math.Float64bits(f))
		return data, nil

	case Int8:
		n, err := toInt64(value)
		if err != nil {
			return nil, err
		}
		return []byte{byte(int8(n))}, nil

	case Int16:
		n, err := toInt64(value)
		if err != nil {
			return nil, err
		}
		data := make([]byte, 2)
		binary.BigEndian.PutUint16(data, uint16(int16(n)))
		return data, nil

	case Int32:
		n, err := toInt64(value)
		if err != nil {
			return nil, err
		}
		data := make([]byte, 4)
		binary.BigEndian.PutUint32(data, uint32(int32(n)))
		return data, nil

	case Int64:
		n, err := toInt64(value)
		if err != nil {
			return nil, err
		}
		data := make([]byte, 8)
		binary.BigEndian.PutUint64(data, uint64(n))
		return data, nil

	case Uint8:
		n, err := toUint64(value)
		if err != nil {
			return nil, err
		}
		return []byte{uint8(n)}, nil

	case Uint16:
		n, err := toUint64(value)
		if err != nil {
			return nil, err
		}
		data := make([]byte, 2)
		binary.BigEndian.PutUint16(data, uint16(n))
		return data, nil

	case Uint32:
		n, err := toUint64(value)
		if err != nil {
			return nil, err
		}
		data := make([]byte, 4)
		binary.BigEndian.PutUint32(data, uint32(n))
		return data, nil

	case Uint64:
		n, err := toUint64(value)
		if err != nil {
			return nil, err
		}
		data := make([]byte, 8)
		binary.BigEndian.PutUint64(data, n)
		return data, nil

	case String:
		s, ok := value.(string)
		if !ok {
			return nil, newFormatError(fmt.Sprintf("value must be a string for STRING data type, got %T", value))
		}
		data := make([]byte, 2+len(s))
		binary.BigEndian.PutUint16(data[:2], uint16(len(s)))
		copy(data[2:], s)
		return data, nil

	case Bytes:
		b, ok := value.([]byte)
		if !ok {
			return nil, newFormatError(fmt.Sprintf("value must be bytes for BYTES data type, got %T", value))
		}
		data := make([]byte, 2+len(b))
		binary.BigEndian.PutUint16(data[:2], uint16(len(b)))
		copy(data[2:], b)
		return data, nil

	case Bool:
		b, ok := value.(bool)
		if !ok {
			return nil, newFormatError(fmt.Sprintf("value must be a bool for BOOL data type, got %T", value))
		}
		if b {
			return []byte{0x01}, nil
		}
		return []byte{0x00}, nil

	default:
		return nil, newFormatError(fmt.Sprintf("unknown data type: %d", dataType))
	}
}

// DecodeValue decodes a scalar value from the front of data and returns the
// value and the number of bytes consumed.
func DecodeValue(data []byte, dataType DataType) (interface{}, int, error) {
	need := func(n int) error {
		if len(data) < n {
			return newFormatError(fmt.Sprintf("buffer too short for data type %d: need %d bytes, have %d", dataType, n, len(data)))
		}
		return nil
	}

	switch dataType {
	case Float32:
		if err := need(4); err != nil {
			return nil, 0, err
		}
		return math.Float32frombits(binary.BigEndian.Uint32(data[:4])), 4, nil

	case Float64:
		if err := need(8); err != nil {
			return nil, 0, err
		}
		return math.Float64frombits(binary.BigEndian.Uint64(data[:8])), 8, nil

	case Int8:
		if err := need(1); err != nil {
			return nil, 0, err
		}
		return int8(data[0]), 1, nil

	case Int16:
		if err := need(2); err != nil {
			return nil, 0, err
		}
		return int16(binary.BigEndian.Uint16(data[:2])), 2, nil

	case Int32:
		if err := need(4); err != nil {
			return nil, 0, err
		}
		return int32(binary.BigEndian.Uint32(data[:4])), 4, nil

	case Int64:
		if err := need(8); err != nil {
			return nil, 0, err
		}
		return int64(binary.BigEndian.Uint64(data[:8])), 8, nil

	case Uint8:
		if err := need(1); err != nil {
			return nil, 0, err
		}
		return data[0], 1, nil

	case Uint16:
		if err := need(2); err != nil {
			return nil, 0, err
		}
		return binary.BigEndian.Uint16(data[:2]), 2, nil

	case Uint32:
		if err := need(4); err != nil {
			return nil, 0, err
		}
		return binary.BigEndian.Uint32(data[:4]), 4, nil

	case Uint64:
		if err := need(8); err != nil {
			return nil, 0, err
		}
		return binary.BigEndian.Uint64(data[:8]), 8, nil

	case String:
		if err := need(2); err != nil {
			return nil, 0, err
		}
		length := int(binary.BigEndian.Uint16(data[:2]))
		if err := need(2 + length); err != nil {
			return nil, 0, err
		}
		return string(data[2 : 2+length]), 2 + length, nil

	case Bytes:
		if err := need(2); err != nil {
			return nil, 0, err
		}
		length := int(binary.BigEndian.Uint16(data[:2]))
		if err := need(2 + length); err != nil {
			return nil, 0, err
		}
		out := make([]byte, length)
		copy(out, data[2:2+length])
		return out, 2 + length, nil

	case Bool:
		if err := need(1); err != nil {
			return nil, 0, err
		}
		return data[0] != 0, 1, nil

	default:
		return nil, 0, newFormatError(fmt.Sprintf("unknown data type: %d", dataType))
	}
}

func toFloat64(value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	default:
		return 0, newFormatError(fmt.Sprintf("value must be numeric, got %T", value))
	}
}

func toInt64(value interface{}) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	default:
		return 0, newFormatError(fmt.Sprintf("value must be an integer, got %T", value))
	}
}

func toUint64(value interface{}) (uint64, error) {
	switch v := value.(type) {
	case uint:
		return uint64(v), nil
	case uint8:
		return uint64(v), nil
	case uint16:
		return uint64(v), nil
	case uint32:
		return uint64(v), nil
	case uint64:
		return v, nil
	case int:
		if v < 0 {
			return 0, newFormatError("value must be non-negative for unsigned data type")
		}
		return uint64(v), nil
	case int64:
		if v < 0 {
			return 0, newFormatError("value must be non-negative for unsigned data type")
		}
		return uint64(v), nil
	default:
		return 0, newFormatError(fmt.Sprintf("value must be an unsigned integer, got %T", value))
	}
}
