package model

import (
	"errors"
	"fmt"
)

// ErrUnknownOperation is returned when an operation name cannot be parsed.
var ErrUnknownOperation = errors.New("unknown operation")

// Operation selects which single-file transform a batch runs.
type Operation int

const (
	// RemoveWatermark inpaints and blurs a rectangular region.
	RemoveWatermark Operation = iota
	// DownSample shrinks images to a maximum side length.
	DownSample
)

// Operations lists every operation in display order.
var Operations = []Operation{RemoveWatermark, DownSample}

// Label returns the human-readable name of the operation.
func (o Operation) Label() string {
	switch o {
	case RemoveWatermark:
		return "Remove watermark"
	case DownSample:
		return "Downsample"
	default:
		return fmt.Sprintf("Operation(%d)", int(o))
	}
}

// String returns the machine name used in JSON payloads and config files.
func (o Operation) String() string {
	switch o {
	case RemoveWatermark:
		return "remove_watermark"
	case DownSample:
		return "downsample"
	default:
		return fmt.Sprintf("operation(%d)", int(o))
	}
}

// Valid reports whether o is one of the known operations.
func (o Operation) Valid() bool {
	switch o {
	case RemoveWatermark, DownSample:
		return true
	default:
		return false
	}
}

// ParseOperation converts a machine name into an Operation.
func ParseOperation(s string) (Operation, error) {
	for _, o := range Operations {
		if o.String() == s {
			return o, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownOperation, s)
}

// MarshalText implements encoding.TextMarshaler.
func (o Operation) MarshalText() ([]byte, error) {
	if !o.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownOperation, int(o))
	}

	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Operation) UnmarshalText(text []byte) error {
	op, err := ParseOperation(string(text))
	if err != nil {
		return err
	}

	*o = op
	return nil
}
