package codec

import (
	"waykshare/protoerr"
)

// Item is satisfied by any wire type usable inside a VecK container.
type Item interface {
	EncodedLen() int
	Encode(w Writer) error
}

// ItemDecoder decodes a single Item off the cursor.
type ItemDecoder[T Item] func(c *Cursor) (T, error)

// Vec is a length-prefixed homogeneous list; the prefix width (8/16/32/64
// bits) is tracked separately per constructor so a single generic type can
// back Vec8/Vec16/Vec32/Vec64.
type Vec[T Item] struct {
	Items     []T
	countBits int
}

func (v Vec[T]) EncodedLen() int {
	n := v.countBits / 8
	for _, it := range v.Items {
		n += it.EncodedLen()
	}
	return n
}

func (v Vec[T]) Encode(w Writer) error {
	if err := writeCount(w, v.countBits, uint64(len(v.Items))); err != nil {
		return err
	}
	for _, it := range v.Items {
		if err := it.Encode(w); err != nil {
			return err
		}
	}
	return nil
}

func writeCount(w Writer, bits int, n uint64) error {
	switch bits {
	case 8:
		return WriteU8(w, uint8(n))
	case 16:
		return WriteU16(w, uint16(n))
	case 32:
		return WriteU32(w, uint32(n))
	case 64:
		return WriteU64(w, n)
	default:
		return protoerr.New(protoerr.Encoding, "invalid vec count width")
	}
}

func readCount(c *Cursor, bits int) (uint64, error) {
	switch bits {
	case 8:
		v, err := c.ReadU8()
		return uint64(v), err
	case 16:
		v, err := c.ReadU16()
		return uint64(v), err
	case 32:
		v, err := c.ReadU32()
		return uint64(v), err
	case 64:
		return c.ReadU64()
	default:
		return 0, protoerr.New(protoerr.Decoding, "invalid vec count width")
	}
}

func decodeVec[T Item](c *Cursor, countBits int, decodeItem ItemDecoder[T]) (Vec[T], error) {
	n, err := readCount(c, countBits)
	if err != nil {
		return Vec[T]{}, protoerr.Chain(protoerr.Decoding, err)
	}
	items := make([]T, 0, n)
	for i := uint64(0); i < n; i++ {
		it, err := decodeItem(c)
		if err != nil {
			return Vec[T]{}, err
		}
		items = append(items, it)
	}
	return Vec[T]{Items: items, countBits: countBits}, nil
}

func NewVec8[T Item](items []T) Vec[T]  { return Vec[T]{Items: items, countBits: 8} }
func NewVec16[T Item](items []T) Vec[T] { return Vec[T]{Items: items, countBits: 16} }
func NewVec32[T Item](items []T) Vec[T] { return Vec[T]{Items: items, countBits: 32} }
func NewVec64[T Item](items []T) Vec[T] { return Vec[T]{Items: items, countBits: 64} }

func DecodeVec8[T Item](c *Cursor, decodeItem ItemDecoder[T]) (Vec[T], error) {
	return decodeVec(c, 8, decodeItem)
}
func DecodeVec16[T Item](c *Cursor, decodeItem ItemDecoder[T]) (Vec[T], error) {
	return decodeVec(c, 16, decodeItem)
}
func DecodeVec32[T Item](c *Cursor, decodeItem ItemDecoder[T]) (Vec[T], error) {
	return decodeVec(c, 32, decodeItem)
}
func DecodeVec64[T Item](c *Cursor, decodeItem ItemDecoder[T]) (Vec[T], error) {
	return decodeVec(c, 64, decodeItem)
}

// Bytes is the same shape as Vec but specialized to raw bytes, aliasing the
// decode buffer instead of allocating a []Item.
type Bytes struct {
	Data      []byte
	countBits int
}

func (b Bytes) EncodedLen() int { return b.countBits/8 + len(b.Data) }

func (b Bytes) Encode(w Writer) error {
	if err := writeCount(w, b.countBits, uint64(len(b.Data))); err != nil {
		return err
	}
	_, err := w.Write(b.Data)
	return err
}

func decodeBytes(c *Cursor, countBits int) (Bytes, error) {
	n, err := readCount(c, countBits)
	if err != nil {
		return Bytes{}, protoerr.Chain(protoerr.Decoding, err)
	}
	data, err := c.ReadN(int(n))
	if err != nil {
		return Bytes{}, protoerr.Chain(protoerr.Decoding, err)
	}
	return Bytes{Data: data, countBits: countBits}, nil
}

func NewBytes8(data []byte) Bytes  { return Bytes{Data: data, countBits: 8} }
func NewBytes16(data []byte) Bytes { return Bytes{Data: data, countBits: 16} }
func NewBytes32(data []byte) Bytes { return Bytes{Data: data, countBits: 32} }
func NewBytes64(data []byte) Bytes { return Bytes{Data: data, countBits: 64} }

func DecodeBytes8(c *Cursor) (Bytes, error)  { return decodeBytes(c, 8) }
func DecodeBytes16(c *Cursor) (Bytes, error) { return decodeBytes(c, 16) }
func DecodeBytes32(c *Cursor) (Bytes, error) { return decodeBytes(c, 32) }
func DecodeBytes64(c *Cursor) (Bytes, error) { return decodeBytes(c, 64) }
