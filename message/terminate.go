package message

import (
	"waykshare/codec"
	"waykshare/protoerr"
)

// TerminateMsg closes a session cleanly; it is what the sharee emits from
// the Final state and what the peer may send at any time to end the
// session.
type TerminateMsg struct {
	Flags  uint32
	Status Status
}

func NewTerminateMsg(code DisconnectStatusCode) *TerminateMsg {
	return &TerminateMsg{Status: NewStatus(SeverityInfo, StatusTypeNone, uint16(code))}
}

func (m *TerminateMsg) MessageType() Type { return TypeTerminate }
func (m *TerminateMsg) EncodedLen() int   { return 8 }

func (m *TerminateMsg) Encode(w codec.Writer) error {
	if err := codec.WriteU32(w, m.Flags); err != nil {
		return err
	}
	return m.Status.Encode(w)
}

func DecodeTerminateMsg(c *codec.Cursor) (Message, error) {
	flags, err := c.ReadU32()
	if err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	status, err := DecodeStatus(c)
	if err != nil {
		return nil, err
	}
	return &TerminateMsg{Flags: flags, Status: status}, nil
}
