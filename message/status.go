package message

import (
	"fmt"

	"waykshare/codec"
	"waykshare/protoerr"
)

// Severity is the 2-bit severity tag packed into bits 30-31 of a status word.
type Severity uint8

const (
	SeverityInfo Severity = iota
	SeverityWarn
	SeverityError
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "Info"
	case SeverityWarn:
		return "Warn"
	case SeverityError:
		return "Error"
	case SeverityFatal:
		return "Fatal"
	default:
		return "Unknown"
	}
}

// StatusType is the 8-bit status-type tag packed into bits 16-23.
type StatusType uint8

const (
	StatusTypeNone StatusType = 0x00
	StatusTypeAuth StatusType = 0x17
	StatusTypeChannel StatusType = 0x1A
	StatusTypeClipboard  StatusType = 0x81
	StatusTypeFileTransfer StatusType = 0x82
	StatusTypeExec         StatusType = 0x83
)

// StatusCode is the 16-bit code packed into bits 0-15. DisconnectStatusCode
// below extends the same base values with named disconnect reasons.
type StatusCode uint16

const (
	StatusCodeSuccess StatusCode = 0x0000
	StatusCodeFailure StatusCode = 0xFFFF
)

// DisconnectStatusCode names the codes used on the Handshake/Terminate
// status words that report why a connection ended.
type DisconnectStatusCode uint16

const (
	DisconnectSuccess      DisconnectStatusCode = 0x0000
	DisconnectByLocalUser  DisconnectStatusCode = 0x0001
	DisconnectByPeer       DisconnectStatusCode = 0x0002
	DisconnectIncompatible DisconnectStatusCode = 0x0003
	DisconnectByServer     DisconnectStatusCode = 0x0004
	DisconnectReplaced     DisconnectStatusCode = 0x0005
	DisconnectOutOfMemory  DisconnectStatusCode = 0x0006
	DisconnectDenied       DisconnectStatusCode = 0x0007
	DisconnectFatal        DisconnectStatusCode = 0x0008
	DisconnectIdleTimeout  DisconnectStatusCode = 0x0009
	DisconnectLogonTimeout DisconnectStatusCode = 0x000A
	DisconnectReconnect    DisconnectStatusCode = 0x000B
	DisconnectUnreachable  DisconnectStatusCode = 0x000C
	DisconnectCanceled     DisconnectStatusCode = 0x000D
	DisconnectFailure      DisconnectStatusCode = 0xFFFF
)

const (
	severityShift   = 30
	severityMask    = 0x3
	statusTypeShift = 16
	statusTypeMask  = 0xFF
	codeMask        = 0xFFFF
)

// Status packs severity, status-type, and a 16-bit code into a single u32,
// with 6 reserved bits (24-29) that must stay zero on encode.
type Status struct {
	Severity   Severity
	StatusType StatusType
	Code       uint16
}

// NewStatus constructs a Status directly from its three fields.
func NewStatus(severity Severity, statusType StatusType, code uint16) Status {
	return Status{Severity: severity, StatusType: statusType, Code: code}
}

// Raw packs the status into its wire u32 representation.
func (s Status) Raw() uint32 {
	return uint32(s.Severity&severityMask)<<severityShift |
		uint32(s.StatusType)<<statusTypeShift |
		uint32(s.Code)&codeMask
}

// StatusFromRaw unpacks a wire u32 into its three fields. Reserved bits are
// ignored on decode per spec: do not assume they are zero.
func StatusFromRaw(raw uint32) Status {
	return Status{
		Severity:   Severity((raw >> severityShift) & severityMask),
		StatusType: StatusType((raw >> statusTypeShift) & statusTypeMask),
		Code:       uint16(raw & codeMask),
	}
}

func (s Status) EncodedLen() int { return 4 }

func (s Status) Encode(w codec.Writer) error {
	return codec.WriteU32(w, s.Raw())
}

func DecodeStatus(c *codec.Cursor) (Status, error) {
	raw, err := c.ReadU32()
	if err != nil {
		return Status{}, protoerr.Chain(protoerr.Decoding, err)
	}
	return StatusFromRaw(raw), nil
}

func (s Status) String() string {
	return fmt.Sprintf("Status{severity=%s, type=0x%02X, code=0x%04X}", s.Severity, uint8(s.StatusType), s.Code)
}

// StatusMessage is the standalone Status message body (message type 0x00),
// used outside the Handshake/Terminate envelopes that embed a Status field
// directly.
type StatusMessage struct {
	Value Status
}

func (m *StatusMessage) MessageType() Type     { return TypeStatus }
func (m *StatusMessage) EncodedLen() int       { return m.Value.EncodedLen() }
func (m *StatusMessage) Encode(w codec.Writer) error { return m.Value.Encode(w) }

func decodeStatusMessage(c *codec.Cursor) (Message, error) {
	s, err := DecodeStatus(c)
	if err != nil {
		return nil, err
	}
	return &StatusMessage{Value: s}, nil
}
