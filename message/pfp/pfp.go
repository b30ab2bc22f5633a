// Package pfp implements the "pre-shared friendly passphrase" authenticate
// sub-protocol: a negotiate/challenge/response exchange carried as the
// payload of an authenticate token once AuthPFP has been selected.
package pfp

import (
	"waykshare/codec"
	"waykshare/protoerr"
)

// MessageType is the 2-byte PFP subtype discriminant.
type MessageType uint16

const (
	Negotiate MessageType = 0x01
	Challenge MessageType = 0x02
	Response  MessageType = 0x03
)

// Flags marks whether the negotiation requires a challenge/response round
// trip (Question) or accepts the passphrase outright (NoChallenge).
type Flags struct{ raw uint16 }

const (
	flagNoChallenge uint16 = 0x0000
	flagQuestion    uint16 = 0x0001
)

func NoChallenge() Flags       { return Flags{raw: flagNoChallenge} }
func WithQuestion() Flags      { return Flags{raw: flagQuestion} }
func (f Flags) Question() bool { return f.raw&flagQuestion != 0 }

// Msg is the meta-enum over the three PFP message shapes.
type Msg struct {
	Negotiate *NegotiateMsg
	Challenge *ChallengeMsg
	Response  *ResponseMsg
}

func (m *Msg) variant() interface{} {
	switch {
	case m.Negotiate != nil:
		return m.Negotiate
	case m.Challenge != nil:
		return m.Challenge
	case m.Response != nil:
		return m.Response
	default:
		return nil
	}
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
		return protoerr.New(protoerr.Encoding, "empty pfp message")
	}
	return v.(interface{ Encode(codec.Writer) error }).Encode(w)
}

func Decode(c *codec.Cursor) (*Msg, error) {
	sub, err := c.PeekU16()
	if err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	switch MessageType(sub) {
	case Negotiate:
		v, err := decodeNegotiate(c)
		return &Msg{Negotiate: v}, err
	case Challenge:
		v, err := decodeChallenge(c)
		return &Msg{Challenge: v}, err
	case Response:
		v, err := decodeResponse(c)
		return &Msg{Response: v}, err
	default:
		return nil, protoerr.New(protoerr.Decoding, "unknown pfp subtype")
	}
}

// NegotiateMsg opens the exchange, announcing the sharer's display name and
// an explanatory text shown alongside the passphrase prompt.
type NegotiateMsg struct {
	Flags        Flags
	FriendlyName codec.NowString64
	FriendlyText codec.NowString256
}

func NewNegotiateMsg(friendlyName, friendlyText string) (*NegotiateMsg, error) {
	name, err := codec.NewNowString64(friendlyName)
	if err != nil {
		return nil, protoerr.Chain(protoerr.Encoding, err)
	}
	text, err := codec.NewNowString256(friendlyText)
	if err != nil {
		return nil, protoerr.Chain(protoerr.Encoding, err)
	}
	return &NegotiateMsg{Flags: WithQuestion(), FriendlyName: name, FriendlyText: text}, nil
}

func (m *NegotiateMsg) EncodedLen() int {
	return 4 + m.FriendlyName.EncodedLen() + m.FriendlyText.EncodedLen()
}
func (m *NegotiateMsg) Encode(w codec.Writer) error {
	if err := codec.WriteU16(w, uint16(Negotiate)); err != nil {
		return err
	}
	if err := codec.WriteU16(w, m.Flags.raw); err != nil {
		return err
	}
	if err := m.FriendlyName.Encode(w); err != nil {
		return err
	}
	return m.FriendlyText.Encode(w)
}
func decodeNegotiate(c *codec.Cursor) (*NegotiateMsg, error) {
	if _, err := c.ReadN(2); err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	flags, err := c.ReadU16()
	if err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	name, err := codec.DecodeNowString64(c)
	if err != nil {
		return nil, err
	}
	text, err := codec.DecodeNowString256(c)
	if err != nil {
		return nil, err
	}
	return &NegotiateMsg{Flags: Flags{raw: flags}, FriendlyName: name, FriendlyText: text}, nil
}

// ChallengeMsg is sent only when Flags.Question() was set during negotiate;
// it carries the question shown to the user alongside the passphrase box.
type ChallengeMsg struct {
	Flags    Flags
	Question codec.NowString256
}

func NewChallengeWithoutQuestion() *ChallengeMsg {
	return &ChallengeMsg{Flags: NoChallenge(), Question: codec.NewEmptyNowString256()}
}

func NewChallengeWithQuestion(question string) (*ChallengeMsg, error) {
	q, err := codec.NewNowString256(question)
	if err != nil {
		return nil, protoerr.Chain(protoerr.Encoding, err)
	}
	return &ChallengeMsg{Flags: WithQuestion(), Question: q}, nil
}
func (m *ChallengeMsg) EncodedLen() int { return 4 + m.Question.EncodedLen() }
func (m *ChallengeMsg) Encode(w codec.Writer) error {
	if err := codec.WriteU16(w, uint16(Challenge)); err != nil {
		return err
	}
	if err := codec.WriteU16(w, m.Flags.raw); err != nil {
		return err
	}
	return m.Question.Encode(w)
}
func decodeChallenge(c *codec.Cursor) (*ChallengeMsg, error) {
	if _, err := c.ReadN(2); err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	flags, err := c.ReadU16()
	if err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	question, err := codec.DecodeNowString256(c)
	if err != nil {
		return nil, err
	}
	return &ChallengeMsg{Flags: Flags{raw: flags}, Question: question}, nil
}

// ResponseMsg answers either the bare negotiate (NoChallenge) or a
// preceding ChallengeMsg (Question) with the passphrase the user typed.
type ResponseMsg struct {
	Flags  Flags
	Answer codec.NowString256
}

func NewResponseMsg(answer string) (*ResponseMsg, error) {
	a, err := codec.NewNowString256(answer)
	if err != nil {
		return nil, protoerr.Chain(protoerr.Encoding, err)
	}
	return &ResponseMsg{Flags: WithQuestion(), Answer: a}, nil
}
func (m *ResponseMsg) EncodedLen() int { return 4 + m.Answer.EncodedLen() }
func (m *ResponseMsg) Encode(w codec.Writer) error {
	if err := codec.WriteU16(w, uint16(Response)); err != nil {
		return err
	}
	if err := codec.WriteU16(w, m.Flags.raw); err != nil {
		return err
	}
	return m.Answer.Encode(w)
}
func decodeResponse(c *codec.Cursor) (*ResponseMsg, error) {
	if _, err := c.ReadN(2); err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	flags, err := c.ReadU16()
	if err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	answer, err := codec.DecodeNowString256(c)
	if err != nil {
		return nil, err
	}
	return &ResponseMsg{Flags: Flags{raw: flags}, Answer: answer}, nil
}
