package codec

import (
	"bytes"
	"errors"
	"testing"
)

func TestCompact_RoundTrip(t *testing.T) {
	values := []uint64{
		0, 1, 42, 63,
		64, 255, 16383,
		16384, 65535, 1073741823,
		1073741824, 1 << 32, 1<<56 - 1, ^uint64(0),
	}
	for _, v := range values {
		enc := AppendCompact(nil, v)
		d := NewDecoder(enc)
		got, err := d.ReadCompact()
		if err != nil {
			t.Fatalf("ReadCompact(%d): %v", v, err)
		}
		if got != v {
			t.Fatalf("compact round trip: got %d, want %d", got, v)
		}
		if err := d.Finish(); err != nil {
			t.Fatalf("trailing bytes after %d: %v", v, err)
		}
	}
}

func TestCompact_ModeBoundaries(t *testing.T) {
	// Each mode change happens at a power-of-two boundary; the encoded
	// width must step up exactly there.
	cases := []struct {
		v    uint64
		size int
	}{
		{63, 1},
		{64, 2},
		{16383, 2},
		{16384, 4},
		{1073741823, 4},
		{1073741824, 5},
		{^uint64(0), 9},
	}
	for _, c := range cases {
		enc := AppendCompact(nil, c.v)
		if len(enc) != c.size {
			t.Fatalf("compact(%d): encoded %d bytes, want %d", c.v, len(enc), c.size)
		}
	}
}

func TestBytes_RoundTrip(t *testing.T) {
	inputs := [][]byte{
		nil,
		{},
		{0x00},
		[]byte("hello"),
		bytes.Repeat([]byte{0xAB}, 100),
	}
	for _, in := range inputs {
		enc := AppendBytes(nil, in)
		d := NewDecoder(enc)
		got, err := d.ReadBytes()
		if err != nil {
			t.Fatalf("ReadBytes(%x): %v", in, err)
		}
		if !bytes.Equal(got, in) {
			t.Fatalf("bytes round trip: got %x, want %x", got, in)
		}
		if err := d.Finish(); err != nil {
			t.Fatalf("trailing bytes: %v", err)
		}
	}
}

func TestDecoder_Truncated(t *testing.T) {
	enc := AppendBytes(nil, []byte("truncate me"))
	for i := 0; i < len(enc); i++ {
		d := NewDecoder(enc[:i])
		if _, err := d.ReadBytes(); err == nil {
			t.Fatalf("ReadBytes on %d of %d bytes: expected error", i, len(enc))
		}
	}
}

func TestDecoder_TrailingBytes(t *testing.T) {
	enc := AppendCompact(nil, 7)
	enc = append(enc, 0xFF)
	d := NewDecoder(enc)
	if _, err := d.ReadCompact(); err != nil {
		t.Fatalf("ReadCompact: %v", err)
	}
	if err := d.Finish(); !errors.Is(err, ErrTrailingBytes) {
		t.Fatalf("Finish: got %v, want ErrTrailingBytes", err)
	}
}

func TestDecoder_ReadFixed(t *testing.T) {
	d := NewDecoder([]byte{1, 2, 3, 4, 5})
	got, err := d.ReadFixed(3)
	if err != nil {
		t.Fatalf("ReadFixed: %v", err)
	}
	if !bytes.Equal(got, []byte{1, 2, 3}) {
		t.Fatalf("ReadFixed: got %x", got)
	}
	if d.Remaining() != 2 {
		t.Fatalf("Remaining: got %d, want 2", d.Remaining())
	}
	if _, err := d.ReadFixed(3); !errors.Is(err, ErrUnexpectedEOF) {
		t.Fatalf("ReadFixed past end: got %v, want ErrUnexpectedEOF", err)
	}
}
