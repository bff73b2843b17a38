// Package codec implements the subset of the SCALE wire codec used by the
// parachain validation payloads: compact integers, length-prefixed byte
// vectors, and fixed-width fields. Encoding is append-style; decoding is
// cursor-based over a single input buffer.
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedEOF is returned when the input ends inside a field.
	ErrUnexpectedEOF = errors.New("codec: unexpected end of input")

	// ErrCompactTooLarge is returned for compact integers above 2^64-1.
	// The big-integer compact mode exists on the wire but no field in the
	// validation payloads may use it.
	ErrCompactTooLarge = errors.New("codec: compact integer exceeds 64 bits")

	// ErrTrailingBytes is returned when a payload decodes successfully but
	// leaves bytes behind.
	ErrTrailingBytes = errors.New("codec: trailing bytes after payload")
)

// Compact mode tags live in the low two bits of the first byte.
const (
	modeSingleByte = 0b00
	modeTwoByte    = 0b01
	modeFourByte   = 0b10
	modeBigInt     = 0b11
)

// AppendCompact appends the SCALE compact encoding of v to dst.
func AppendCompact(dst []byte, v uint64) []byte {
	switch {
	case v < 1<<6:
		return append(dst, byte(v)<<2|modeSingleByte)
	case v < 1<<14:
		return append(dst, byte(v<<2)|modeTwoByte, byte(v>>6))
	case v < 1<<30:
		return append(dst,
			byte(v<<2)|modeFourByte, byte(v>>6), byte(v>>14), byte(v>>22))
	default:
		// Big-integer mode: length-4 in the tag means 4+len little-endian
		// payload bytes follow. Trim trailing zero bytes.
		n := 8
		for n > 4 && v>>(8*(n-1)) == 0 {
			n--
		}
		dst = append(dst, byte(n-4)<<2|modeBigInt)
		var le [8]byte
		binary.LittleEndian.PutUint64(le[:], v)
		return append(dst, le[:n]...)
	}
}

// AppendBytes appends a compact length prefix followed by the raw bytes.
func AppendBytes(dst, b []byte) []byte {
	dst = AppendCompact(dst, uint64(len(b)))
	return append(dst, b...)
}

// Decoder is a cursor over a SCALE-encoded buffer. Methods consume from the
// front; any error leaves the cursor position undefined.
type Decoder struct {
	buf []byte
	pos int
}

// NewDecoder creates a decoder over the given buffer. The buffer is not
// copied; callers must not mutate it while decoding.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// Remaining returns the number of unconsumed bytes.
func (d *Decoder) Remaining() int { return len(d.buf) - d.pos }

// Finish returns ErrTrailingBytes unless the input is fully consumed.
func (d *Decoder) Finish() error {
	if d.Remaining() != 0 {
		return fmt.Errorf("%w: %d left", ErrTrailingBytes, d.Remaining())
	}
	return nil
}

// ReadByte consumes a single byte.
func (d *Decoder) ReadByte() (byte, error) {
	if d.Remaining() < 1 {
		return 0, ErrUnexpectedEOF
	}
	b := d.buf[d.pos]
	d.pos++
	return b, nil
}

// ReadFixed consumes exactly n bytes and returns a copy.
func (d *Decoder) ReadFixed(n int) ([]byte, error) {
	if d.Remaining() < n {
		return nil, ErrUnexpectedEOF
	}
	out := make([]byte, n)
	copy(out, d.buf[d.pos:])
	d.pos += n
	return out, nil
}

// ReadCompact consumes a SCALE compact integer.
func (d *Decoder) ReadCompact() (uint64, error) {
	first, err := d.ReadByte()
	if err != nil {
		return 0, err
	}
	switch first & 0b11 {
	case modeSingleByte:
		return uint64(first >> 2), nil

	case modeTwoByte:
		second, err := d.ReadByte()
		if err != nil {
			return 0, err
		}
		return uint64(first)>>2 | uint64(second)<<6, nil

	case modeFourByte:
		rest, err := d.ReadFixed(3)
		if err != nil {
			return 0, err
		}
		return uint64(first)>>2 |
			uint64(rest[0])<<6 | uint64(rest[1])<<14 | uint64(rest[2])<<22, nil

	default: // modeBigInt
		n := int(first>>2) + 4
		if n > 8 {
			return 0, ErrCompactTooLarge
		}
		payload, err := d.ReadFixed(n)
		if err != nil {
			return 0, err
		}
		var le [8]byte
		copy(le[:], payload)
		return binary.LittleEndian.Uint64(le[:]), nil
	}
}

// ReadBytes consumes a compact length prefix followed by that many bytes.
func (d *Decoder) ReadBytes() ([]byte, error) {
	n, err := d.ReadCompact()
	if err != nil {
		return nil, err
	}
	if n > uint64(d.Remaining()) {
		return nil, ErrUnexpectedEOF
	}
	return d.ReadFixed(int(n))
}
