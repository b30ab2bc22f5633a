// Package clipboard implements the wire messages for the clipboard virtual
// channel: capability negotiation, ownership control, and format
// advertisement/data exchange.
package clipboard

import (
	"waykshare/codec"
	"waykshare/protoerr"
)

// MessageType is the 1-byte clipboard subtype discriminant.
type MessageType uint8

const (
	CapabilitiesReq MessageType = 0x01
	CapabilitiesRsp MessageType = 0x02
	ControlReq      MessageType = 0x03
	ControlRsp      MessageType = 0x04
	SuspendReq      MessageType = 0x05
	SuspendRsp      MessageType = 0x06
	ResumeReq       MessageType = 0x07
	ResumeRsp       MessageType = 0x08
	FormatListReq   MessageType = 0x09
	FormatListRsp   MessageType = 0x0A
	FormatDataReq   MessageType = 0x0B
	FormatDataRsp   MessageType = 0x0C
)

// ControlState selects manual vs automatic clipboard ownership handling.
type ControlState uint16

const (
	ControlNone   ControlState = 0x0000
	ControlAuto   ControlState = 0x0001
	ControlManual ControlState = 0x0002
)

// ResponseFlags carries the single failure bit shared by every *Rsp message.
type ResponseFlags struct{ raw uint8 }

const responseFlagFailure uint8 = 0x80

func NewResponseFlags() ResponseFlags          { return ResponseFlags{} }
func FailureResponseFlags() ResponseFlags      { return ResponseFlags{raw: responseFlagFailure} }
func (f ResponseFlags) Failure() bool          { return f.raw&responseFlagFailure != 0 }
func (f ResponseFlags) WithFailure() ResponseFlags { f.raw |= responseFlagFailure; return f }

// FormatDef advertises one clipboard data format by numeric id and name.
type FormatDef struct {
	ID   uint32
	Name codec.NowString256
}

func (d FormatDef) EncodedLen() int { return 4 + d.Name.EncodedLen() }
func (d FormatDef) Encode(w codec.Writer) error {
	if err := codec.WriteU32(w, d.ID); err != nil {
		return err
	}
	return d.Name.Encode(w)
}

func decodeFormatDef(c *codec.Cursor) (FormatDef, error) {
	id, err := c.ReadU32()
	if err != nil {
		return FormatDef{}, protoerr.Chain(protoerr.Decoding, err)
	}
	name, err := codec.DecodeNowString256(c)
	if err != nil {
		return FormatDef{}, err
	}
	return FormatDef{ID: id, Name: name}, nil
}

// Msg is the meta-enum over every clipboard message shape. Exactly one
// field is non-nil after a successful Decode.
type Msg struct {
	CapabilitiesReq *CapabilitiesReqMsg
	CapabilitiesRsp *CapabilitiesRspMsg
	ControlReq      *ControlReqMsg
	ControlRsp      *ControlRspMsg
	SuspendReq      *SuspendReqMsg
	SuspendRsp      *SuspendRspMsg
	ResumeReq       *ResumeReqMsg
	ResumeRsp       *ResumeRspMsg
	FormatListReq   *FormatListReqMsg
	FormatListRsp   *FormatListRspMsg
	FormatDataReq   *FormatDataReqMsg
	FormatDataRsp   *FormatDataRspMsg
}

func (m *Msg) EncodedLen() int {
	if v, ok := m.variant().(interface{ EncodedLen() int }); ok {
		return v.EncodedLen()
	}
	return 0
}

func (m *Msg) Encode(w codec.Writer) error {
	v := m.variant()
	if v == nil {
		return protoerr.New(protoerr.Encoding, "empty clipboard message")
	}
	return v.(interface{ Encode(codec.Writer) error }).Encode(w)
}

func (m *Msg) variant() interface{} {
	switch {
	case m.CapabilitiesReq != nil:
		return m.CapabilitiesReq
	case m.CapabilitiesRsp != nil:
		return m.CapabilitiesRsp
	case m.ControlReq != nil:
		return m.ControlReq
	case m.ControlRsp != nil:
		return m.ControlRsp
	case m.SuspendReq != nil:
		return m.SuspendReq
	case m.SuspendRsp != nil:
		return m.SuspendRsp
	case m.ResumeReq != nil:
		return m.ResumeReq
	case m.ResumeRsp != nil:
		return m.ResumeRsp
	case m.FormatListReq != nil:
		return m.FormatListReq
	case m.FormatListRsp != nil:
		return m.FormatListRsp
	case m.FormatDataReq != nil:
		return m.FormatDataReq
	case m.FormatDataRsp != nil:
		return m.FormatDataRsp
	default:
		return nil
	}
}

func Decode(c *codec.Cursor) (*Msg, error) {
	sub, err := c.PeekU8()
	if err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	switch MessageType(sub) {
	case CapabilitiesReq:
		v, err := decodeCapabilitiesReq(c)
		return &Msg{CapabilitiesReq: v}, err
	case CapabilitiesRsp:
		v, err := decodeCapabilitiesRsp(c)
		return &Msg{CapabilitiesRsp: v}, err
	case ControlReq:
		v, err := decodeControlReq(c)
		return &Msg{ControlReq: v}, err
	case ControlRsp:
		v, err := decodeControlRsp(c)
		return &Msg{ControlRsp: v}, err
	case SuspendReq:
		v, err := decodeSuspendReq(c)
		return &Msg{SuspendReq: v}, err
	case SuspendRsp:
		v, err := decodeSuspendRsp(c)
		return &Msg{SuspendRsp: v}, err
	case ResumeReq:
		v, err := decodeResumeReq(c)
		return &Msg{ResumeReq: v}, err
	case ResumeRsp:
		v, err := decodeResumeRsp(c)
		return &Msg{ResumeRsp: v}, err
	case FormatListReq:
		v, err := decodeFormatListReq(c)
		return &Msg{FormatListReq: v}, err
	case FormatListRsp:
		v, err := decodeFormatListRsp(c)
		return &Msg{FormatListRsp: v}, err
	case FormatDataReq:
		v, err := decodeFormatDataReq(c)
		return &Msg{FormatDataReq: v}, err
	case FormatDataRsp:
		v, err := decodeFormatDataRsp(c)
		return &Msg{FormatDataRsp: v}, err
	default:
		return nil, protoerr.New(protoerr.Decoding, "unknown clipboard subtype")
	}
}

// CapabilitiesReqMsg advertises no capability bits today; the field is
// carried for forward compatibility.
type CapabilitiesReqMsg struct{ Capabilities uint16 }

func NewCapabilitiesReqMsg() *CapabilitiesReqMsg { return &CapabilitiesReqMsg{} }
func (m *CapabilitiesReqMsg) EncodedLen() int    { return 4 }
func (m *CapabilitiesReqMsg) Encode(w codec.Writer) error {
	if err := codec.WriteU8(w, uint8(CapabilitiesReq)); err != nil {
		return err
	}
	if err := codec.WriteU8(w, 0); err != nil {
		return err
	}
	return codec.WriteU16(w, m.Capabilities)
}
func decodeCapabilitiesReq(c *codec.Cursor) (*CapabilitiesReqMsg, error) {
	if _, err := c.ReadN(2); err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	caps, err := c.ReadU16()
	if err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	return &CapabilitiesReqMsg{Capabilities: caps}, nil
}

type CapabilitiesRspMsg struct {
	Flags        ResponseFlags
	Capabilities uint16
}

func NewCapabilitiesRspMsg(flags ResponseFlags) *CapabilitiesRspMsg {
	return &CapabilitiesRspMsg{Flags: flags}
}
func (m *CapabilitiesRspMsg) EncodedLen() int { return 4 }
func (m *CapabilitiesRspMsg) Encode(w codec.Writer) error {
	if err := codec.WriteU8(w, uint8(CapabilitiesRsp)); err != nil {
		return err
	}
	if err := codec.WriteU8(w, m.Flags.raw); err != nil {
		return err
	}
	return codec.WriteU16(w, m.Capabilities)
}
func decodeCapabilitiesRsp(c *codec.Cursor) (*CapabilitiesRspMsg, error) {
	if _, err := c.ReadU8(); err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	flags, err := c.ReadU8()
	if err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	caps, err := c.ReadU16()
	if err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	return &CapabilitiesRspMsg{Flags: ResponseFlags{raw: flags}, Capabilities: caps}, nil
}

type ControlReqMsg struct{ State ControlState }

func NewControlReqMsg(state ControlState) *ControlReqMsg { return &ControlReqMsg{State: state} }
func (m *ControlReqMsg) EncodedLen() int                 { return 4 }
func (m *ControlReqMsg) Encode(w codec.Writer) error {
	if err := codec.WriteU8(w, uint8(ControlReq)); err != nil {
		return err
	}
	if err := codec.WriteU8(w, 0); err != nil {
		return err
	}
	return codec.WriteU16(w, uint16(m.State))
}
func decodeControlReq(c *codec.Cursor) (*ControlReqMsg, error) {
	if _, err := c.ReadN(2); err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	state, err := c.ReadU16()
	if err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	return &ControlReqMsg{State: ControlState(state)}, nil
}

type ControlRspMsg struct {
	Flags ResponseFlags
	State ControlState
}

func NewControlRspMsg(state ControlState) *ControlRspMsg {
	return &ControlRspMsg{State: state}
}
func NewControlRspMsgWithFlags(state ControlState, flags ResponseFlags) *ControlRspMsg {
	return &ControlRspMsg{Flags: flags, State: state}
}
func (m *ControlRspMsg) EncodedLen() int { return 4 }
func (m *ControlRspMsg) Encode(w codec.Writer) error {
	if err := codec.WriteU8(w, uint8(ControlRsp)); err != nil {
		return err
	}
	if err := codec.WriteU8(w, m.Flags.raw); err != nil {
		return err
	}
	return codec.WriteU16(w, uint16(m.State))
}
func decodeControlRsp(c *codec.Cursor) (*ControlRspMsg, error) {
	if _, err := c.ReadU8(); err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	flags, err := c.ReadU8()
	if err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	state, err := c.ReadU16()
	if err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	return &ControlRspMsg{Flags: ResponseFlags{raw: flags}, State: ControlState(state)}, nil
}

// SuspendReqMsg and ResumeReqMsg carry no extra fields beyond the shared
// subtype+flags+reserved prefix.
type SuspendReqMsg struct{}

func NewSuspendReqMsg() *SuspendReqMsg   { return &SuspendReqMsg{} }
func (m *SuspendReqMsg) EncodedLen() int { return 4 }
func (m *SuspendReqMsg) Encode(w codec.Writer) error {
	return encodeEmptyReq(w, SuspendReq)
}
func decodeSuspendReq(c *codec.Cursor) (*SuspendReqMsg, error) {
	if err := decodeEmptyReq(c); err != nil {
		return nil, err
	}
	return &SuspendReqMsg{}, nil
}

type SuspendRspMsg struct{ Flags ResponseFlags }

func NewSuspendRspMsg() *SuspendRspMsg { return &SuspendRspMsg{} }
func NewSuspendRspMsgWithFlags(flags ResponseFlags) *SuspendRspMsg {
	return &SuspendRspMsg{Flags: flags}
}
func (m *SuspendRspMsg) EncodedLen() int { return 4 }
func (m *SuspendRspMsg) Encode(w codec.Writer) error {
	return encodeEmptyRsp(w, SuspendRsp, m.Flags)
}
func decodeSuspendRsp(c *codec.Cursor) (*SuspendRspMsg, error) {
	flags, err := decodeEmptyRsp(c)
	if err != nil {
		return nil, err
	}
	return &SuspendRspMsg{Flags: flags}, nil
}

type ResumeReqMsg struct{}

func NewResumeReqMsg() *ResumeReqMsg   { return &ResumeReqMsg{} }
func (m *ResumeReqMsg) EncodedLen() int { return 4 }
func (m *ResumeReqMsg) Encode(w codec.Writer) error {
	return encodeEmptyReq(w, ResumeReq)
}
func decodeResumeReq(c *codec.Cursor) (*ResumeReqMsg, error) {
	if err := decodeEmptyReq(c); err != nil {
		return nil, err
	}
	return &ResumeReqMsg{}, nil
}

type ResumeRspMsg struct{ Flags ResponseFlags }

func NewResumeRspMsg() *ResumeRspMsg { return &ResumeRspMsg{} }
func NewResumeRspMsgWithFlags(flags ResponseFlags) *ResumeRspMsg {
	return &ResumeRspMsg{Flags: flags}
}
func (m *ResumeRspMsg) EncodedLen() int { return 4 }
func (m *ResumeRspMsg) Encode(w codec.Writer) error {
	return encodeEmptyRsp(w, ResumeRsp, m.Flags)
}
func decodeResumeRsp(c *codec.Cursor) (*ResumeRspMsg, error) {
	flags, err := decodeEmptyRsp(c)
	if err != nil {
		return nil, err
	}
	return &ResumeRspMsg{Flags: flags}, nil
}

func encodeEmptyReq(w codec.Writer, subtype MessageType) error {
	if err := codec.WriteU8(w, uint8(subtype)); err != nil {
		return err
	}
	if err := codec.WriteU8(w, 0); err != nil {
		return err
	}
	return codec.WriteU16(w, 0)
}

func decodeEmptyReq(c *codec.Cursor) error {
	_, err := c.ReadN(4)
	if err != nil {
		return protoerr.Chain(protoerr.Decoding, err)
	}
	return nil
}

func encodeEmptyRsp(w codec.Writer, subtype MessageType, flags ResponseFlags) error {
	if err := codec.WriteU8(w, uint8(subtype)); err != nil {
		return err
	}
	if err := codec.WriteU8(w, flags.raw); err != nil {
		return err
	}
	return codec.WriteU16(w, 0)
}

func decodeEmptyRsp(c *codec.Cursor) (ResponseFlags, error) {
	if _, err := c.ReadU8(); err != nil {
		return ResponseFlags{}, protoerr.Chain(protoerr.Decoding, err)
	}
	flags, err := c.ReadU8()
	if err != nil {
		return ResponseFlags{}, protoerr.Chain(protoerr.Decoding, err)
	}
	if _, err := c.ReadN(2); err != nil {
		return ResponseFlags{}, protoerr.Chain(protoerr.Decoding, err)
	}
	return ResponseFlags{raw: flags}, nil
}

// FormatListReqMsg advertises the formats the sender can provide, tagged
// by SequenceID so the matching response/data exchange can be tracked.
type FormatListReqMsg struct {
	SequenceID uint16
	Formats    codec.Vec[FormatDef]
}

func NewFormatListReqMsg(sequenceID uint16, formats []FormatDef) *FormatListReqMsg {
	return &FormatListReqMsg{SequenceID: sequenceID, Formats: codec.NewVec8(formats)}
}
func (m *FormatListReqMsg) EncodedLen() int { return 4 + m.Formats.EncodedLen() }
func (m *FormatListReqMsg) Encode(w codec.Writer) error {
	if err := codec.WriteU8(w, uint8(FormatListReq)); err != nil {
		return err
	}
	if err := codec.WriteU8(w, 0); err != nil {
		return err
	}
	if err := codec.WriteU16(w, m.SequenceID); err != nil {
		return err
	}
	return m.Formats.Encode(w)
}
func decodeFormatListReq(c *codec.Cursor) (*FormatListReqMsg, error) {
	if _, err := c.ReadN(2); err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	seq, err := c.ReadU16()
	if err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	formats, err := codec.DecodeVec8(c, decodeFormatDef)
	if err != nil {
		return nil, err
	}
	return &FormatListReqMsg{SequenceID: seq, Formats: formats}, nil
}

// FormatListRspMsg answers a FormatListReqMsg, echoing its SequenceID.
type FormatListRspMsg struct {
	Flags      ResponseFlags
	SequenceID uint16
}

func NewFormatListRspMsg(sequenceID uint16) *FormatListRspMsg {
	return &FormatListRspMsg{SequenceID: sequenceID}
}
func NewFormatListRspMsgWithFlags(sequenceID uint16, flags ResponseFlags) *FormatListRspMsg {
	return &FormatListRspMsg{Flags: flags, SequenceID: sequenceID}
}
func (m *FormatListRspMsg) EncodedLen() int { return 4 }
func (m *FormatListRspMsg) Encode(w codec.Writer) error {
	if err := codec.WriteU8(w, uint8(FormatListRsp)); err != nil {
		return err
	}
	if err := codec.WriteU8(w, m.Flags.raw); err != nil {
		return err
	}
	return codec.WriteU16(w, m.SequenceID)
}
func decodeFormatListRsp(c *codec.Cursor) (*FormatListRspMsg, error) {
	if _, err := c.ReadU8(); err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	flags, err := c.ReadU8()
	if err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	seq, err := c.ReadU16()
	if err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	return &FormatListRspMsg{Flags: ResponseFlags{raw: flags}, SequenceID: seq}, nil
}

// FormatDataReqMsg requests the actual bytes for one advertised format.
type FormatDataReqMsg struct {
	SequenceID uint16
	FormatID   uint32
}

func NewFormatDataReqMsg(sequenceID uint16, formatID uint32) *FormatDataReqMsg {
	return &FormatDataReqMsg{SequenceID: sequenceID, FormatID: formatID}
}
func (m *FormatDataReqMsg) EncodedLen() int { return 8 }
func (m *FormatDataReqMsg) Encode(w codec.Writer) error {
	if err := codec.WriteU8(w, uint8(FormatDataReq)); err != nil {
		return err
	}
	if err := codec.WriteU8(w, 0); err != nil {
		return err
	}
	if err := codec.WriteU16(w, m.SequenceID); err != nil {
		return err
	}
	return codec.WriteU32(w, m.FormatID)
}
func decodeFormatDataReq(c *codec.Cursor) (*FormatDataReqMsg, error) {
	if _, err := c.ReadN(2); err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	seq, err := c.ReadU16()
	if err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	id, err := c.ReadU32()
	if err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	return &FormatDataReqMsg{SequenceID: seq, FormatID: id}, nil
}

// FormatDataRspMsg carries the actual clipboard payload. Data aliases the
// decode buffer for inbound messages; NewOwnedFormatDataRspMsg copies it
// for outbound construction that must outlive the source buffer.
type FormatDataRspMsg struct {
	Flags      ResponseFlags
	SequenceID uint16
	FormatID   uint32
	Data       []byte
}

func NewFormatDataRspMsg(sequenceID uint16, formatID uint32, data []byte) *FormatDataRspMsg {
	return &FormatDataRspMsg{SequenceID: sequenceID, FormatID: formatID, Data: data}
}

func NewOwnedFormatDataRspMsg(sequenceID uint16, formatID uint32, data []byte) *FormatDataRspMsg {
	owned := make([]byte, len(data))
	copy(owned, data)
	return &FormatDataRspMsg{SequenceID: sequenceID, FormatID: formatID, Data: owned}
}

func (m *FormatDataRspMsg) EncodedLen() int {
	return 8 + codec.NewBytes32(m.Data).EncodedLen()
}
func (m *FormatDataRspMsg) Encode(w codec.Writer) error {
	if err := codec.WriteU8(w, uint8(FormatDataRsp)); err != nil {
		return err
	}
	if err := codec.WriteU8(w, m.Flags.raw); err != nil {
		return err
	}
	if err := codec.WriteU16(w, m.SequenceID); err != nil {
		return err
	}
	if err := codec.WriteU32(w, m.FormatID); err != nil {
		return err
	}
	return codec.NewBytes32(m.Data).Encode(w)
}
func decodeFormatDataRsp(c *codec.Cursor) (*FormatDataRspMsg, error) {
	if _, err := c.ReadU8(); err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	flags, err := c.ReadU8()
	if err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	seq, err := c.ReadU16()
	if err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	formatID, err := c.ReadU32()
	if err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	data, err := codec.DecodeBytes32(c)
	if err != nil {
		return nil, err
	}
	return &FormatDataRspMsg{Flags: ResponseFlags{raw: flags}, SequenceID: seq, FormatID: formatID, Data: data.Data}, nil
}
