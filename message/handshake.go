package message

import (
	"waykshare/codec"
	"waykshare/protoerr"
)

// HandshakeFlags are the per-message flags carried in a Handshake body.
// Aliases for bits 0 and 1; bit 2 is reserved.
type HandshakeFlags struct {
	raw uint32
}

const (
	handshakeFlagFailure   uint32 = 0x1
	handshakeFlagReconnect uint32 = 0x2
)

func NewHandshakeFlags() HandshakeFlags { return HandshakeFlags{} }

func (f HandshakeFlags) Failure() bool   { return f.raw&handshakeFlagFailure != 0 }
func (f HandshakeFlags) Reconnect() bool { return f.raw&handshakeFlagReconnect != 0 }

func (f HandshakeFlags) WithFailure(v bool) HandshakeFlags   { return f.set(handshakeFlagFailure, v) }
func (f HandshakeFlags) WithReconnect(v bool) HandshakeFlags { return f.set(handshakeFlagReconnect, v) }

func (f HandshakeFlags) set(bit uint32, v bool) HandshakeFlags {
	if v {
		f.raw |= bit
	} else {
		f.raw &^= bit
	}
	return f
}

// HandshakeMsg is the 40-byte handshake body: a major/minor version pair,
// flags, a status word, and a 4-word cookie, the rest reserved.
type HandshakeMsg struct {
	Flags        HandshakeFlags
	MajorVersion uint32
	MinorVersion uint32
	Status       Status
	Cookie       [4]uint32
}

const HandshakeRequiredSize = 40

func NewSuccessHandshakeMsg() *HandshakeMsg {
	return &HandshakeMsg{
		Flags:        NewHandshakeFlags(),
		MajorVersion: 1,
		MinorVersion: 0,
		Status:       NewStatus(SeverityInfo, StatusTypeNone, uint16(DisconnectSuccess)),
	}
}

func (m *HandshakeMsg) MessageType() Type { return TypeHandshake }
func (m *HandshakeMsg) EncodedLen() int   { return HandshakeRequiredSize }

func (m *HandshakeMsg) Encode(w codec.Writer) error {
	if err := codec.WriteU32(w, m.Flags.raw); err != nil {
		return err
	}
	if err := codec.WriteU32(w, m.MajorVersion); err != nil {
		return err
	}
	if err := codec.WriteU32(w, m.MinorVersion); err != nil {
		return err
	}
	if err := m.Status.Encode(w); err != nil {
		return err
	}
	for _, c := range m.Cookie {
		if err := codec.WriteU32(w, c); err != nil {
			return err
		}
	}
	// Pad to the fixed required size with reserved zero bytes.
	written := 4 + 4 + 4 + 4 + 4*4
	for i := written; i < HandshakeRequiredSize; i++ {
		if err := codec.WriteU8(w, 0); err != nil {
			return err
		}
	}
	return nil
}

func DecodeHandshakeMsg(c *codec.Cursor) (Message, error) {
	if c.Len() < HandshakeRequiredSize {
		return nil, protoerr.New(protoerr.Decoding, "truncated handshake message")
	}
	flags, err := c.ReadU32()
	if err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	major, err := c.ReadU32()
	if err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	minor, err := c.ReadU32()
	if err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	status, err := DecodeStatus(c)
	if err != nil {
		return nil, err
	}
	var cookie [4]uint32
	for i := range cookie {
		cookie[i], err = c.ReadU32()
		if err != nil {
			return nil, protoerr.Chain(protoerr.Decoding, err)
		}
	}
	// consume reserved padding to the fixed size
	consumed := 4 + 4 + 4 + 4 + 4*4
	if _, err := c.ReadN(HandshakeRequiredSize - consumed); err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	return &HandshakeMsg{
		Flags:        HandshakeFlags{raw: flags},
		MajorVersion: major,
		MinorVersion: minor,
		Status:       status,
		Cookie:       cookie,
	}, nil
}
