package protocol

import (
	"fmt"
	"strings"
)

// Header layout constants. Every frame and every nested sub-frame starts with
// the same 16-byte header.
const (
	HeaderLength    = 16
	ProtocolVersion = 1
	SequenceID      = 1 // The protocol never varies sequence numbers
)

// Header field offsets and widths
const (
	offTotalLength  = 0
	offHeaderLength = 4
	offVersion      = 6
	offOperation    = 8
	offSequence     = 12
)

// Operation is the opcode carried in bytes 8-11 of the header.
type Operation uint32

// Operations observed on the wire
const (
	OpHeartbeat  Operation = 2 // client -> server, empty payload
	OpPopularity Operation = 3 // server -> client, u32 viewer count at offset 16
	OpMessage    Operation = 5 // server -> client, batch of zlib sub-frames
	OpJoinRoom   Operation = 7 // client -> server, {"roomid": N}
	OpJoinAck    Operation = 8 // server -> client, empty payload
)

// String returns a human-readable opcode name
func (op Operation) String() string {
	switch op {
	case OpHeartbeat:
		return "heartbeat"
	case OpPopularity:
		return "popularity"
	case OpMessage:
		return "message"
	case OpJoinRoom:
		return "join_room"
	case OpJoinAck:
		return "join_ack"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(op))
	}
}

// Header is the fixed 16-byte frame header
type Header struct {
	TotalLength  uint32 // Entire frame including header
	HeaderLength uint16 // Always 16
	Version      uint16 // Always 1
	Operation    Operation
	Sequence     uint32 // Always 1
}

// Packet is one decoded inbound frame.
//
// Body is non-empty only for OpPopularity (one synthesized {"count": N}
// fragment) and OpMessage (every fragment contains at least one '{').
type Packet struct {
	Header
	Body []string

	// Skipped counts OpMessage sub-frames that failed to decompress.
	Skipped int
}

// parseHeader reads the 16-byte header at the start of buf
func parseHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderLength {
		return Header{}, &BoundsError{Op: "header", Offset: 0, Length: HeaderLength, Size: len(buf)}
	}

	// Range is checked above; the reads below cannot fail.
	total, _ := ReadInt(buf, offTotalLength, 4)
	hlen, _ := ReadInt(buf, offHeaderLength, 2)
	ver, _ := ReadInt(buf, offVersion, 2)
	op, _ := ReadInt(buf, offOperation, 4)
	seq, _ := ReadInt(buf, offSequence, 4)

	return Header{
		TotalLength:  total,
		HeaderLength: uint16(hlen),
		Version:      uint16(ver),
		Operation:    Operation(op),
		Sequence:     seq,
	}, nil
}

// String returns a debug representation of the header
func (h Header) String() string {
	return fmt.Sprintf("Header{len=%d, hlen=%d, ver=%d, op=%s, seq=%d}",
		h.TotalLength, h.HeaderLength, h.Version, h.Operation, h.Sequence)
}

// String returns a debug representation of the packet
func (p *Packet) String() string {
	var sb strings.Builder
	sb.WriteString(p.Header.String())
	fmt.Fprintf(&sb, " body=%d", len(p.Body))
	if p.Skipped > 0 {
		fmt.Fprintf(&sb, " skipped=%d", p.Skipped)
	}
	return sb.String()
}
