package message

import (
	"waykshare/codec"
	"waykshare/protoerr"
)

// ActivateMsg is the trivial 4-byte message that marks the transition from
// the connection sequence to the active phase; all flags are currently
// reserved and must be zero.
type ActivateMsg struct {
	Flags uint32
}

func NewActivateMsg() *ActivateMsg { return &ActivateMsg{} }

func (m *ActivateMsg) MessageType() Type             { return TypeActivate }
func (m *ActivateMsg) EncodedLen() int               { return 4 }
func (m *ActivateMsg) Encode(w codec.Writer) error   { return codec.WriteU32(w, m.Flags) }

func DecodeActivateMsg(c *codec.Cursor) (Message, error) {
	flags, err := c.ReadU32()
	if err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	return &ActivateMsg{Flags: flags}, nil
}
