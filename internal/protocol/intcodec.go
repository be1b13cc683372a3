package protocol

// MaxIntWidth is the widest integer field the wire format carries.
const MaxIntWidth = 4

// ReadInt interprets length bytes of buf starting at start as a big-endian
// unsigned integer.
//
// length must be between 1 and MaxIntWidth and the whole range must lie
// inside buf, otherwise a *BoundsError is returned.
func ReadInt(buf []byte, start, length int) (uint32, error) {
	if err := checkRange("read", buf, start, length); err != nil {
		return 0, err
	}

	var v uint32
	for _, b := range buf[start : start+length] {
		v = v<<8 | uint32(b)
	}
	return v, nil
}

// WriteInt writes the low length*8 bits of value into buf[start:start+length]
// in big-endian order and hands buf back to the caller.
//
// Values that do not fit are truncated, not rejected: only value mod
// 256^length reaches the wire. The caller must not share buf while it is
// being written. On a *BoundsError buf is left untouched.
func WriteInt(buf []byte, start, length int, value uint64) ([]byte, error) {
	if err := checkRange("write", buf, start, length); err != nil {
		return buf, err
	}

	for i := length - 1; i >= 0; i-- {
		buf[start+i] = byte(value)
		value >>= 8
	}
	return buf, nil
}

func checkRange(op string, buf []byte, start, length int) error {
	if length < 1 || length > MaxIntWidth || start < 0 || start > len(buf)-length {
		return &BoundsError{Op: op, Offset: start, Length: length, Size: len(buf)}
	}
	return nil
}
