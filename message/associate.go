package message

import (
	"waykshare/codec"
	"waykshare/protoerr"
)

type associateSubtype uint8

const (
	associateSubtypeInfo     associateSubtype = 0x01
	associateSubtypeRequest  associateSubtype = 0x02
	associateSubtypeResponse associateSubtype = 0x03
)

type AssociateInfoFlags struct{ raw uint16 }

const (
	associateInfoFlagActive  uint16 = 0x0001
	associateInfoFlagFailure uint16 = 0x8000
)

func NewAssociateInfoFlags() AssociateInfoFlags { return AssociateInfoFlags{} }
func (f AssociateInfoFlags) Active() bool       { return f.raw&associateInfoFlagActive != 0 }
func (f AssociateInfoFlags) Failure() bool      { return f.raw&associateInfoFlagFailure != 0 }

type AssociateRequestFlags struct{ raw uint16 }

const (
	associateRequestFlagForce   uint16 = 0x0001
	associateRequestFlagFailure uint16 = 0x8000
)

func NewAssociateRequestFlags() AssociateRequestFlags { return AssociateRequestFlags{} }
func (f AssociateRequestFlags) Force() bool           { return f.raw&associateRequestFlagForce != 0 }
func (f AssociateRequestFlags) Failure() bool         { return f.raw&associateRequestFlagFailure != 0 }

type AssociateResponseFlags struct{ raw uint16 }

const associateResponseFlagFailure uint16 = 0x8000

func NewAssociateResponseFlags() AssociateResponseFlags { return AssociateResponseFlags{} }
func (f AssociateResponseFlags) Failure() bool          { return f.raw&associateResponseFlagFailure != 0 }
func (f AssociateResponseFlags) WithFailure() AssociateResponseFlags {
	f.raw |= associateResponseFlagFailure
	return f
}

// AssociateMsg is the meta-enum over Info/Request/Response. Exactly one
// field is non-nil.
type AssociateMsg struct {
	Info     *AssociateInfoMsg
	Request  *AssociateRequestMsg
	Response *AssociateResponseMsg
}

func (m *AssociateMsg) MessageType() Type { return TypeAssociate }

func (m *AssociateMsg) EncodedLen() int {
	switch {
	case m.Info != nil:
		return m.Info.EncodedLen()
	case m.Request != nil:
		return m.Request.EncodedLen()
	case m.Response != nil:
		return m.Response.EncodedLen()
	default:
		return 0
	}
}

func (m *AssociateMsg) Encode(w codec.Writer) error {
	switch {
	case m.Info != nil:
		return m.Info.Encode(w)
	case m.Request != nil:
		return m.Request.Encode(w)
	case m.Response != nil:
		return m.Response.Encode(w)
	default:
		return protoerr.New(protoerr.Encoding, "empty associate message")
	}
}

func DecodeAssociateMsg(c *codec.Cursor) (Message, error) {
	sub, err := c.PeekU8()
	if err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	switch associateSubtype(sub) {
	case associateSubtypeInfo:
		v, err := decodeAssociateInfoMsg(c)
		if err != nil {
			return nil, err
		}
		return &AssociateMsg{Info: v}, nil
	case associateSubtypeRequest:
		v, err := decodeAssociateRequestMsg(c)
		if err != nil {
			return nil, err
		}
		return &AssociateMsg{Request: v}, nil
	case associateSubtypeResponse:
		v, err := decodeAssociateResponseMsg(c)
		if err != nil {
			return nil, err
		}
		return &AssociateMsg{Response: v}, nil
	default:
		return nil, protoerr.New(protoerr.Decoding, "unknown associate subtype")
	}
}

type AssociateInfoMsg struct {
	Flags     AssociateInfoFlags
	SessionID uint32
}

func NewAssociateInfoMsg(flags AssociateInfoFlags) *AssociateInfoMsg {
	return &AssociateInfoMsg{Flags: flags}
}

func (m *AssociateInfoMsg) MessageType() Type { return TypeAssociate }
func (m *AssociateInfoMsg) EncodedLen() int   { return 8 }

func (m *AssociateInfoMsg) Encode(w codec.Writer) error {
	if err := codec.WriteU8(w, uint8(associateSubtypeInfo)); err != nil {
		return err
	}
	if err := codec.WriteU8(w, 0); err != nil {
		return err
	}
	if err := codec.WriteU16(w, m.Flags.raw); err != nil {
		return err
	}
	return codec.WriteU32(w, m.SessionID)
}

func decodeAssociateInfoMsg(c *codec.Cursor) (*AssociateInfoMsg, error) {
	if _, err := c.ReadU8(); err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	if _, err := c.ReadU8(); err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	flags, err := c.ReadU16()
	if err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	sessionID, err := c.ReadU32()
	if err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	return &AssociateInfoMsg{Flags: AssociateInfoFlags{raw: flags}, SessionID: sessionID}, nil
}

type AssociateRequestMsg struct {
	Flags     AssociateRequestFlags
	SessionID uint32
}

func NewAssociateRequestMsg(flags AssociateRequestFlags) *AssociateRequestMsg {
	return &AssociateRequestMsg{Flags: flags}
}

func (m *AssociateRequestMsg) MessageType() Type { return TypeAssociate }
func (m *AssociateRequestMsg) EncodedLen() int   { return 8 }

func (m *AssociateRequestMsg) Encode(w codec.Writer) error {
	if err := codec.WriteU8(w, uint8(associateSubtypeRequest)); err != nil {
		return err
	}
	if err := codec.WriteU8(w, 0); err != nil {
		return err
	}
	if err := codec.WriteU16(w, m.Flags.raw); err != nil {
		return err
	}
	return codec.WriteU32(w, m.SessionID)
}

func decodeAssociateRequestMsg(c *codec.Cursor) (*AssociateRequestMsg, error) {
	if _, err := c.ReadU8(); err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	if _, err := c.ReadU8(); err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	flags, err := c.ReadU16()
	if err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	sessionID, err := c.ReadU32()
	if err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	return &AssociateRequestMsg{Flags: AssociateRequestFlags{raw: flags}, SessionID: sessionID}, nil
}

type AssociateResponseMsg struct {
	Flags     AssociateResponseFlags
	SessionID uint32
	Status    Status
}

func NewAssociateResponseMsg(flags AssociateResponseFlags, status Status) *AssociateResponseMsg {
	return &AssociateResponseMsg{Flags: flags, Status: status}
}

func (m *AssociateResponseMsg) MessageType() Type { return TypeAssociate }
func (m *AssociateResponseMsg) EncodedLen() int   { return 12 }

func (m *AssociateResponseMsg) Encode(w codec.Writer) error {
	if err := codec.WriteU8(w, uint8(associateSubtypeResponse)); err != nil {
		return err
	}
	if err := codec.WriteU8(w, 0); err != nil {
		return err
	}
	if err := codec.WriteU16(w, m.Flags.raw); err != nil {
		return err
	}
	if err := codec.WriteU32(w, m.SessionID); err != nil {
		return err
	}
	return m.Status.Encode(w)
}

func decodeAssociateResponseMsg(c *codec.Cursor) (*AssociateResponseMsg, error) {
	if _, err := c.ReadU8(); err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	if _, err := c.ReadU8(); err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	flags, err := c.ReadU16()
	if err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	sessionID, err := c.ReadU32()
	if err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	status, err := DecodeStatus(c)
	if err != nil {
		return nil, err
	}
	return &AssociateResponseMsg{Flags: AssociateResponseFlags{raw: flags}, SessionID: sessionID, Status: status}, nil
}
