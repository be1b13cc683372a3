package protocol

import (
	"errors"
	"fmt"
)

// ErrOutOfBounds is matched by every *BoundsError via errors.Is.
var ErrOutOfBounds = errors.New("protocol: out of bounds")

// BoundsError reports a read or write that would fall outside the buffer,
// or a length field that cannot describe a valid frame.
type BoundsError struct {
	Op     string // "read", "write", "header", "subframe", "count"
	Offset int    // Offset the access started at
	Length int    // Number of bytes the access needed
	Size   int    // Size of the buffer
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("protocol: %s of %d bytes at offset %d exceeds buffer of %d bytes",
		e.Op, e.Length, e.Offset, e.Size)
}

// Is lets callers test with errors.Is(err, ErrOutOfBounds).
func (e *BoundsError) Is(target error) bool {
	return target == ErrOutOfBounds
}

// DecompressionError wraps a zlib failure for a single sub-frame of a
// message batch. Decode never returns it; it is logged and the sub-frame is
// skipped.
type DecompressionError struct {
	Offset int // Offset of the sub-frame inside the packet
	Length int // Declared sub-frame length
	Err    error
}

func (e *DecompressionError) Error() string {
	return fmt.Sprintf("protocol: decompress sub-frame at offset %d (length %d): %v",
		e.Offset, e.Length, e.Err)
}

func (e *DecompressionError) Unwrap() error {
	return e.Err
}
