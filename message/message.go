// Package message implements every NowMessage body defined by the
// connection sequence plus the opaque pass-through bodies (surface,
// update, input, ...) whose byte layout is framed but not interpreted here.
package message

import (
	"waykshare/codec"
)

// Type is the 1-byte message-class discriminant carried in the packet
// header's body_type field when the virtual-channel bit is clear.
type Type struct {
	known bool
	name  string
	value uint8
}

func namedType(name string, value uint8) Type { return Type{known: true, name: name, value: value} }

// OtherType wraps an unrecognized discriminant. It round-trips byte for
// byte: decoding an unknown code never fails at this layer.
func OtherType(raw uint8) Type { return Type{known: false, name: "Other", value: raw} }

func (t Type) Value() uint8 { return t.value }
func (t Type) IsKnown() bool { return t.known }
func (t Type) String() string {
	if t.known {
		return t.name
	}
	return "Other"
}

var (
	TypeStatus       = namedType("Status", 0x00)
	TypeHandshake    = namedType("Handshake", 0x01)
	TypeNegotiate    = namedType("Negotiate", 0x02)
	TypeAuthenticate = namedType("Authenticate", 0x03)
	TypeAssociate    = namedType("Associate", 0x04)
	TypeCapabilities = namedType("Capabilities", 0x05)
	TypeChannel      = namedType("Channel", 0x06)
	TypeActivate     = namedType("Activate", 0x07)
	TypeTerminate    = namedType("Terminate", 0x08)
	TypeSurface      = namedType("Surface", 0x10)
	TypeUpdate       = namedType("Update", 0x42)
	TypeInput        = namedType("Input", 0x20)
	TypeMouse        = namedType("Mouse", 0x21)
	TypeNetwork      = namedType("Network", 0x30)
	TypeAccess       = namedType("Access", 0x31)
	TypeDesktop      = namedType("Desktop", 0x40)
	TypeSystem       = namedType("System", 0x41)
	TypeSession      = namedType("Session", 0x43)
	TypeSharing      = namedType("Sharing", 0x50)
)

var typesByValue = func() map[uint8]Type {
	m := map[uint8]Type{}
	for _, t := range []Type{
		TypeStatus, TypeHandshake, TypeNegotiate, TypeAuthenticate, TypeAssociate,
		TypeCapabilities, TypeChannel, TypeActivate, TypeTerminate, TypeSurface,
		TypeUpdate, TypeInput, TypeMouse, TypeNetwork, TypeAccess, TypeDesktop,
		TypeSystem, TypeSession, TypeSharing,
	} {
		m[t.value] = t
	}
	return m
}()

// TypeFromRaw maps a wire byte to its named Type, or Other(raw) when unknown.
func TypeFromRaw(raw uint8) Type {
	if t, ok := typesByValue[raw]; ok {
		return t
	}
	return OtherType(raw)
}

// opaqueTypes carries bodies this core frames but does not interpret.
var opaqueTypes = map[uint8]bool{
	TypeSurface.value: true, TypeUpdate.value: true, TypeInput.value: true,
	TypeMouse.value: true, TypeNetwork.value: true, TypeAccess.value: true,
	TypeDesktop.value: true, TypeSystem.value: true, TypeSession.value: true,
	TypeSharing.value: true,
}

// Message is any concrete NowMessage body.
type Message interface {
	MessageType() Type
	EncodedLen() int
	Encode(w codec.Writer) error
}

// Decode dispatches on bt (the header's body_type byte) to the concrete
// message decoder. Unknown/opaque types and unrecognized discriminants both
// decode to an OpaqueMessage carrying the raw bytes.
func Decode(bt uint8, c *codec.Cursor) (Message, error) {
	t := TypeFromRaw(bt)
	switch t {
	case TypeStatus:
		return decodeStatusMessage(c)
	case TypeHandshake:
		return DecodeHandshakeMsg(c)
	case TypeNegotiate:
		return DecodeNegotiateMsg(c)
	case TypeAuthenticate:
		return DecodeAuthenticateMsg(c)
	case TypeAssociate:
		return DecodeAssociateMsg(c)
	case TypeCapabilities:
		return DecodeCapabilitiesMsg(c)
	case TypeChannel:
		return DecodeChannelMsg(c)
	case TypeActivate:
		return DecodeActivateMsg(c)
	case TypeTerminate:
		return DecodeTerminateMsg(c)
	default:
		return decodeOpaque(t, c)
	}
}

// OpaqueMessage carries a fully-framed but semantically uninterpreted body:
// surface, update, input, mouse, network, access, desktop, system, session,
// sharing, and any unrecognized message type.
type OpaqueMessage struct {
	Typ Type
	Raw []byte
}

func (m *OpaqueMessage) MessageType() Type { return m.Typ }
func (m *OpaqueMessage) EncodedLen() int   { return len(m.Raw) }
func (m *OpaqueMessage) Encode(w codec.Writer) error {
	_, err := w.Write(m.Raw)
	return err
}

func decodeOpaque(t Type, c *codec.Cursor) (Message, error) {
	raw := c.ReadRest()
	return &OpaqueMessage{Typ: t, Raw: raw}, nil
}
