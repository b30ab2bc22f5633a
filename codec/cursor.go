// Package codec implements the WaykNow binary wire primitives: the read
// cursor, little-endian integer I/O, bounded strings, and length-prefixed
// containers. Every concrete message type in package message is built out
// of these primitives.
package codec

import (
	"encoding/binary"
	"fmt"

	"waykshare/protoerr"
)

// Cursor reads little-endian primitives out of a borrowed byte slice,
// tracking a read position. It never copies the backing slice; byte
// slices returned by ReadN/ReadRest alias it directly.
type Cursor struct {
	inner []byte
	pos   int
}

// NewCursor wraps buf for reading. buf is retained, not copied.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{inner: buf}
}

// Position returns the current read offset.
func (c *Cursor) Position() int { return c.pos }

// SetPosition moves the read offset directly. It does not bounds-check
// against the buffer length; the next read will fail if it is out of range.
func (c *Cursor) SetPosition(pos int) { c.pos = pos }

// Len returns the number of unread bytes remaining.
func (c *Cursor) Len() int { return len(c.inner) - c.pos }

func (c *Cursor) require(n int) error {
	if c.Len() < n {
		return protoerr.ErrUnexpectedEOF
	}
	return nil
}

// Rewind moves the cursor back n bytes. Used by meta-enum decoders that
// peek a subtype discriminant and must let the variant decoder read it again.
func (c *Cursor) Rewind(n int) error {
	if c.pos-n < 0 {
		return protoerr.New(protoerr.Decoding, fmt.Sprintf("cannot rewind %d bytes from position %d", n, c.pos))
	}
	c.pos -= n
	return nil
}

// Forward advances the cursor by n bytes without reading them.
func (c *Cursor) Forward(n int) error {
	if err := c.require(n); err != nil {
		return err
	}
	c.pos += n
	return nil
}

// ReadN returns the next n bytes as a slice aliasing the cursor's buffer.
func (c *Cursor) ReadN(n int) ([]byte, error) {
	if err := c.require(n); err != nil {
		return nil, err
	}
	b := c.inner[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// ReadRest returns every remaining byte, aliasing the cursor's buffer.
func (c *Cursor) ReadRest() []byte {
	b := c.inner[c.pos:]
	c.pos = len(c.inner)
	return b
}

// PeekU8 reads a byte without advancing the cursor.
func (c *Cursor) PeekU8() (uint8, error) {
	if err := c.require(1); err != nil {
		return 0, err
	}
	return c.inner[c.pos], nil
}

func (c *Cursor) ReadU8() (uint8, error) {
	v, err := c.PeekU8()
	if err != nil {
		return 0, err
	}
	c.pos++
	return v, nil
}

func (c *Cursor) ReadI8() (int8, error) {
	v, err := c.ReadU8()
	return int8(v), err
}

func (c *Cursor) PeekU16() (uint16, error) {
	if err := c.require(2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(c.inner[c.pos:]), nil
}

func (c *Cursor) ReadU16() (uint16, error) {
	v, err := c.PeekU16()
	if err != nil {
		return 0, err
	}
	c.pos += 2
	return v, nil
}

func (c *Cursor) ReadI16() (int16, error) {
	v, err := c.ReadU16()
	return int16(v), err
}

func (c *Cursor) PeekU32() (uint32, error) {
	if err := c.require(4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(c.inner[c.pos:]), nil
}

func (c *Cursor) ReadU32() (uint32, error) {
	v, err := c.PeekU32()
	if err != nil {
		return 0, err
	}
	c.pos += 4
	return v, nil
}

func (c *Cursor) ReadI32() (int32, error) {
	v, err := c.ReadU32()
	return int32(v), err
}

func (c *Cursor) PeekU64() (uint64, error) {
	if err := c.require(8); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(c.inner[c.pos:]), nil
}

func (c *Cursor) ReadU64() (uint64, error) {
	v, err := c.PeekU64()
	if err != nil {
		return 0, err
	}
	c.pos += 8
	return v, nil
}

func (c *Cursor) ReadI64() (int64, error) {
	v, err := c.ReadU64()
	return int64(v), err
}

// Writer accumulates encoded bytes. *bytes.Buffer satisfies it; it is kept
// narrow so Encode methods don't need to import bytes directly.
type Writer interface {
	Write(p []byte) (int, error)
}

func WriteU8(w Writer, v uint8) error {
	_, err := w.Write([]byte{v})
	return err
}

func WriteI8(w Writer, v int8) error { return WriteU8(w, uint8(v)) }

func WriteU16(w Writer, v uint16) error {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func WriteI16(w Writer, v int16) error { return WriteU16(w, uint16(v)) }

func WriteU32(w Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func WriteI32(w Writer, v int32) error { return WriteU32(w, uint32(v)) }

func WriteU64(w Writer, v uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func WriteI64(w Writer, v int64) error { return WriteU64(w, uint64(v)) }
