package bcmp

// FormatError reports malformed input: an empty or oversized topic name, an
// oversized payload, an undersized buffer, a bad magic byte, or an unknown
// scalar kind.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "bcmp: " + e.Reason
}

// IntegrityError reports a checksum mismatch on decode.
type IntegrityError struct {
	Expected [4]byte
	Got      [4]byte
}

func (e *IntegrityError) Error() string {
	return "bcmp: checksum mismatch"
}

// ValidationError reports a value outside its declared bounds, such as a
// reading quality outside [0,100] or a sensor value outside its range.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "bcmp: invalid value: " + e.Reason
}

func newFormatError(reason string) error {
	return &FormatError{Reason: reason}
}
