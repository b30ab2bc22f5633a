package codec

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"waykshare/protoerr"
)

// NowString is a bounded, NUL-terminated, length-prefixed UTF-8 string.
// maxLen is the maximum number of content bytes (excluding the terminator);
// wide selects whether the length prefix is 1 or 2 bytes.
type NowString struct {
	inner  string
	maxLen int
	wide   bool
}

func newNowString(s string, maxLen int, wide bool) (*NowString, error) {
	if len(s) > maxLen {
		return nil, protoerr.New(protoerr.Encoding, fmt.Sprintf("string of %d bytes exceeds bound of %d", len(s), maxLen))
	}
	if !utf8.ValidString(s) {
		return nil, protoerr.New(protoerr.FromUtf8, "invalid utf8")
	}
	return &NowString{inner: s, maxLen: maxLen, wide: wide}, nil
}

func (s *NowString) String() string { return s.inner }

func (s *NowString) EncodedLen() int {
	prefixLen := 1
	if s.wide {
		prefixLen = 2
	}
	return prefixLen + len(s.inner) + 1
}

func (s *NowString) Encode(w Writer) error {
	if s.wide {
		if err := WriteU16(w, uint16(len(s.inner))); err != nil {
			return err
		}
	} else {
		if err := WriteU8(w, uint8(len(s.inner))); err != nil {
			return err
		}
	}
	if _, err := w.Write([]byte(s.inner)); err != nil {
		return err
	}
	return WriteU8(w, 0x00)
}

func decodeNowString(c *Cursor, maxLen int, wide bool) (*NowString, error) {
	var n int
	if wide {
		v, err := c.ReadU16()
		if err != nil {
			return nil, protoerr.Chain(protoerr.Decoding, err)
		}
		n = int(v)
	} else {
		v, err := c.ReadU8()
		if err != nil {
			return nil, protoerr.Chain(protoerr.Decoding, err)
		}
		n = int(v)
	}
	if n > maxLen {
		return nil, protoerr.New(protoerr.Decoding, fmt.Sprintf("string length prefix %d exceeds bound %d", n, maxLen))
	}
	raw, err := c.ReadN(n)
	if err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	term, err := c.ReadU8()
	if err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	if term != 0x00 {
		return nil, protoerr.New(protoerr.Decoding, "missing NUL terminator")
	}
	if !utf8.Valid(raw) {
		return nil, protoerr.New(protoerr.FromUtf8, "invalid utf8")
	}
	return &NowString{inner: string(raw), maxLen: maxLen, wide: wide}, nil
}

// the bound/width table backing each NowStringN constructor.
var stringBounds = map[int]struct {
	maxLen int
	wide   bool
}{
	16:    {16, false},
	32:    {32, false},
	64:    {64, false},
	128:   {128, false},
	256:   {256, false},
	65535: {65535, true},
}

type (
	NowString16    struct{ *NowString }
	NowString32    struct{ *NowString }
	NowString64    struct{ *NowString }
	NowString128   struct{ *NowString }
	NowString256   struct{ *NowString }
	NowString65535 struct{ *NowString }
)

func NewNowString16(s string) (NowString16, error) {
	b := stringBounds[16]
	ns, err := newNowString(s, b.maxLen, b.wide)
	return NowString16{ns}, err
}

func NewNowString32(s string) (NowString32, error) {
	b := stringBounds[32]
	ns, err := newNowString(s, b.maxLen, b.wide)
	return NowString32{ns}, err
}

func NewNowString64(s string) (NowString64, error) {
	b := stringBounds[64]
	ns, err := newNowString(s, b.maxLen, b.wide)
	return NowString64{ns}, err
}

func NewNowString128(s string) (NowString128, error) {
	b := stringBounds[128]
	ns, err := newNowString(s, b.maxLen, b.wide)
	return NowString128{ns}, err
}

func NewNowString256(s string) (NowString256, error) {
	b := stringBounds[256]
	ns, err := newNowString(s, b.maxLen, b.wide)
	return NowString256{ns}, err
}

func NewNowString65535(s string) (NowString65535, error) {
	b := stringBounds[65535]
	ns, err := newNowString(s, b.maxLen, b.wide)
	return NowString65535{ns}, err
}

func NewEmptyNowString16() NowString16       { v, _ := NewNowString16(""); return v }
func NewEmptyNowString32() NowString32       { v, _ := NewNowString32(""); return v }
func NewEmptyNowString64() NowString64       { v, _ := NewNowString64(""); return v }
func NewEmptyNowString128() NowString128     { v, _ := NewNowString128(""); return v }
func NewEmptyNowString256() NowString256     { v, _ := NewNowString256(""); return v }
func NewEmptyNowString65535() NowString65535 { v, _ := NewNowString65535(""); return v }

func DecodeNowString16(c *Cursor) (NowString16, error) {
	b := stringBounds[16]
	ns, err := decodeNowString(c, b.maxLen, b.wide)
	return NowString16{ns}, err
}

func DecodeNowString32(c *Cursor) (NowString32, error) {
	b := stringBounds[32]
	ns, err := decodeNowString(c, b.maxLen, b.wide)
	return NowString32{ns}, err
}

func DecodeNowString64(c *Cursor) (NowString64, error) {
	b := stringBounds[64]
	ns, err := decodeNowString(c, b.maxLen, b.wide)
	return NowString64{ns}, err
}

func DecodeNowString128(c *Cursor) (NowString128, error) {
	b := stringBounds[128]
	ns, err := decodeNowString(c, b.maxLen, b.wide)
	return NowString128{ns}, err
}

func DecodeNowString256(c *Cursor) (NowString256, error) {
	b := stringBounds[256]
	ns, err := decodeNowString(c, b.maxLen, b.wide)
	return NowString256{ns}, err
}

func DecodeNowString65535(c *Cursor) (NowString65535, error) {
	b := stringBounds[65535]
	ns, err := decodeNowString(c, b.maxLen, b.wide)
	return NowString65535{ns}, err
}

// EncodeNowString is a convenience for tests that need the raw bytes of a
// bounded string without wiring a bytes.Buffer themselves.
func EncodeNowString(s interface{ Encode(Writer) error }) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
