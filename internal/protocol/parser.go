package protocol

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/klauspost/compress/zlib"
	"github.com/muurk/danmaku/internal/logging"
	"github.com/valyala/bytebufferpool"
	"go.uber.org/zap"
)

// Decode parses one inbound frame into a Packet, dispatching on the opcode:
//
//	OpMessage     every sub-frame is inflated and split into JSON fragments
//	OpPopularity  the u32 at offset 16 becomes {"count": N}
//	OpJoinAck     header only
//	other         header only
//
// The returned Packet is never nil. Sub-frames that fail to decompress are
// logged and skipped (see Packet.Skipped) without aborting the decode. A
// *BoundsError is returned when a header or length field points past the end
// of buf; the Packet then holds every fragment decoded before that point.
func Decode(buf []byte) (*Packet, error) {
	header, err := parseHeader(buf)
	pkt := &Packet{Header: header}
	if err != nil {
		return pkt, err
	}

	switch header.Operation {
	case OpMessage:
		err = decodeBatch(pkt, buf)
	case OpPopularity:
		err = decodePopularity(pkt, buf)
	}

	return pkt, err
}

// decodeBatch walks buf as a concatenation of sub-frames. The first
// sub-frame is the packet itself: its payload is the compressed batch.
func decodeBatch(pkt *Packet, buf []byte) error {
	for offset := 0; offset < len(buf); {
		subLen, err := ReadInt(buf, offset, 4)
		if err != nil {
			return err
		}

		// A length under one header would stall the loop or slice backwards
		if subLen < HeaderLength || uint64(offset)+uint64(subLen) > uint64(len(buf)) {
			return &BoundsError{Op: "subframe", Offset: offset, Length: int(subLen), Size: len(buf)}
		}
		end := offset + int(subLen)

		text, err := inflate(buf[offset+HeaderLength : end])
		if err != nil {
			derr := &DecompressionError{Offset: offset, Length: int(subLen), Err: err}
			logging.Warn("Skipping sub-frame that failed to decompress",
				zap.Int("offset", offset),
				zap.Int("length", int(subLen)),
				zap.Error(derr),
			)
			pkt.Skipped++
		} else {
			pkt.Body = append(pkt.Body, SplitMessages(text)...)
		}

		offset = end
	}

	return nil
}

// decodePopularity synthesizes the single count fragment
func decodePopularity(pkt *Packet, buf []byte) error {
	count, err := ReadInt(buf, HeaderLength, 4)
	if err != nil {
		return err
	}
	pkt.Body = append(pkt.Body, fmt.Sprintf(`{"count": %d}`, count))
	return nil
}

// inflate decompresses one zlib stream and returns it as text, replacing
// invalid UTF-8 sequences instead of failing. The scratch buffer goes back
// to the pool before returning; the result is an independent copy.
func inflate(data []byte) (string, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	defer func() { _ = r.Close() }()

	scratch := bytebufferpool.Get()
	defer bytebufferpool.Put(scratch)

	if _, err := scratch.ReadFrom(r); err != nil {
		return "", err
	}

	return lossyString(scratch.B), nil
}

// lossyString copies b into a string, replacing each maximal ill-formed
// subsequence with one U+FFFD
func lossyString(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}

	var sb strings.Builder
	sb.Grow(len(b) + 8)
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r != utf8.RuneError || size > 1 {
			sb.Write(b[:size])
			b = b[size:]
			continue
		}
		sb.WriteRune(utf8.RuneError)
		b = b[invalidPrefix(b):]
	}
	return sb.String()
}

// invalidPrefix returns the length of the ill-formed sequence at the start
// of b: a lead byte plus the continuation bytes that could still have
// completed it.
func invalidPrefix(b []byte) int {
	lo, hi := byte(0x80), byte(0xBF)
	need := 0
	switch c := b[0]; {
	case c >= 0xC2 && c <= 0xDF:
		need = 1
	case c == 0xE0:
		need, lo = 2, 0xA0
	case c == 0xED:
		need, hi = 2, 0x9F
	case c >= 0xE1 && c <= 0xEF:
		need = 2
	case c == 0xF0:
		need, lo = 3, 0x90
	case c == 0xF4:
		need, hi = 3, 0x8F
	case c >= 0xF1 && c <= 0xF3:
		need = 3
	default:
		return 1
	}

	n := 1
	for n <= need && n < len(b) && b[n] >= lo && b[n] <= hi {
		lo, hi = 0x80, 0xBF
		n++
	}
	return n
}
