// Package header implements the WaykNow packet header: a short 4-byte form
// used for bodies up to 65535 bytes, and a long 6-byte form for anything
// bigger.
package header

import (
	"waykshare/codec"
	"waykshare/protoerr"
)

const (
	shortFlag         uint8 = 0x80
	virtualChannelBit uint8 = 0x01

	ShortSize = 4
	LongSize  = 6
)

// BodyType tags whether body_type is a message-type code or a virtual
// channel id. Only one of the two fields is meaningful, selected by IsVirt.
type BodyType struct {
	IsVirt  bool
	Message uint8 // meaningful when !IsVirt
	Channel uint8 // meaningful when IsVirt
}

func MessageBodyType(t uint8) BodyType  { return BodyType{Message: t} }
func ChannelBodyType(id uint8) BodyType { return BodyType{IsVirt: true, Channel: id} }

func (t BodyType) raw() uint8 {
	if t.IsVirt {
		return t.Channel
	}
	return t.Message
}

// Header is either Short or Long; Long is picked by NewHeader whenever the
// body does not fit a short header's 16-bit length field.
type Header struct {
	long    bool
	bodyLen uint32
	bt      BodyType
	virt    bool
}

// NewHeader builds the minimal header that fits bodyLen.
func NewHeader(bt BodyType, bodyLen int) *Header {
	h := &Header{bodyLen: uint32(bodyLen), bt: bt, virt: bt.IsVirt}
	h.long = bodyLen > 65535
	return h
}

func (h *Header) IsLong() bool      { return h.long }
func (h *Header) BodyLen() int      { return int(h.bodyLen) }
func (h *Header) BodyType() BodyType { return h.bt }

// HeaderLen returns 4 for a short header, 6 for a long one.
func (h *Header) HeaderLen() int {
	if h.long {
		return LongSize
	}
	return ShortSize
}

func (h *Header) PacketLen() int { return h.BodyLen() + h.HeaderLen() }

// Flags returns the flags byte with the short-form marker bit cleared,
// leaving only semantically meaningful bits (currently just the
// virtual-channel bit).
func (h *Header) Flags() uint8 {
	var f uint8
	if h.virt {
		f |= virtualChannelBit
	}
	return f
}

func (h *Header) EncodedLen() int { return h.HeaderLen() }

func (h *Header) Encode(w codec.Writer) error {
	if h.long {
		if err := codec.WriteU32(w, h.bodyLen); err != nil {
			return err
		}
		flags := h.Flags() &^ shortFlag
		if err := codec.WriteU8(w, flags); err != nil {
			return err
		}
		return codec.WriteU8(w, h.bt.raw())
	}
	if err := codec.WriteU16(w, uint16(h.bodyLen)); err != nil {
		return err
	}
	if err := codec.WriteU8(w, h.bt.raw()); err != nil {
		return err
	}
	flags := h.Flags() | shortFlag
	return codec.WriteU8(w, flags)
}

// Decode reads a header from c. It first reads the 4 bytes common to both
// forms, inspects bit 7 of the 4th byte, and — only for a long header —
// rewinds and re-reads the full 6-byte layout (length and flags/body_type
// are laid out differently between the two forms).
func Decode(c *codec.Cursor) (*Header, error) {
	first4, err := c.ReadN(4)
	if err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}

	if first4[3]&shortFlag != 0 {
		bodyLen := uint16(first4[0]) | uint16(first4[1])<<8
		btRaw := first4[2]
		flags := first4[3]
		virt := flags&virtualChannelBit != 0
		bt := BodyType{IsVirt: virt}
		if virt {
			bt.Channel = btRaw
		} else {
			bt.Message = btRaw
		}
		return &Header{long: false, bodyLen: uint32(bodyLen), bt: bt, virt: virt}, nil
	}

	if err := c.Rewind(4); err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	bodyLen, err := c.ReadU32()
	if err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	flags, err := c.ReadU8()
	if err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	btRawLong, err := c.ReadU8()
	if err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	virt := flags&virtualChannelBit != 0
	bt := BodyType{IsVirt: virt}
	if virt {
		bt.Channel = btRawLong
	} else {
		bt.Message = btRawLong
	}
	return &Header{long: true, bodyLen: bodyLen, bt: bt, virt: virt}, nil
}

// MinPeekSize is the number of bytes that must be available before Decode
// can determine whether the header is short or long.
const MinPeekSize = ShortSize

// PeekIsShort inspects byte index 3 of buf (the flags byte for a short
// header) without consuming anything. buf must have at least MinPeekSize
// bytes.
func PeekIsShort(buf []byte) bool {
	return buf[3]&shortFlag != 0
}
