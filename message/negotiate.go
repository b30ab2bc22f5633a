package message

import (
	"waykshare/codec"
	"waykshare/protoerr"
)

// NegotiateFlags carries the single srp_extended bit defined by the wire
// format; bits 1-31 are reserved.
type NegotiateFlags struct{ raw uint32 }

const negotiateFlagSRPExtended uint32 = 0x1

func NewNegotiateFlags() NegotiateFlags { return NegotiateFlags{} }

func (f NegotiateFlags) SRPExtended() bool { return f.raw&negotiateFlagSRPExtended != 0 }

func (f NegotiateFlags) WithSRPExtended(v bool) NegotiateFlags {
	if v {
		f.raw |= negotiateFlagSRPExtended
	} else {
		f.raw &^= negotiateFlagSRPExtended
	}
	return f
}

// NegotiateMsg advertises (or, from the peer, reports) the supported
// authentication methods for this session.
type NegotiateMsg struct {
	Flags    NegotiateFlags
	AuthList codec.Vec[AuthType]
}

func NewNegotiateMsg(flags NegotiateFlags, authList []AuthType) *NegotiateMsg {
	return &NegotiateMsg{Flags: flags, AuthList: codec.NewVec8(authList)}
}

func (m *NegotiateMsg) MessageType() Type { return TypeNegotiate }

func (m *NegotiateMsg) EncodedLen() int { return 4 + m.AuthList.EncodedLen() }

func (m *NegotiateMsg) Encode(w codec.Writer) error {
	if err := codec.WriteU32(w, m.Flags.raw); err != nil {
		return err
	}
	return m.AuthList.Encode(w)
}

func DecodeNegotiateMsg(c *codec.Cursor) (Message, error) {
	flags, err := c.ReadU32()
	if err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	authList, err := codec.DecodeVec8(c, DecodeAuthType)
	if err != nil {
		return nil, err
	}
	return &NegotiateMsg{Flags: NegotiateFlags{raw: flags}, AuthList: authList}, nil
}

// IntersectAuthTypes returns the auth types present in both lists, in the
// order they appear in local, matching the "intersect peer list with
// local" rule the negotiate sub-sequence applies to the peer's response.
func IntersectAuthTypes(local, peer []AuthType) []AuthType {
	peerSet := make(map[uint8]bool, len(peer))
	for _, a := range peer {
		peerSet[a.value] = true
	}
	var out []AuthType
	for _, a := range local {
		if peerSet[a.value] {
			out = append(out, a)
		}
	}
	return out
}
