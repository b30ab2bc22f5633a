// Package chat implements the wire messages for the text chat virtual
// channel: capability/session sync, message delivery, read receipts,
// typing indicators, display name changes, presence, and pokes.
package chat

import (
	"waykshare/codec"
	"waykshare/protoerr"
)

// MessageType is the 1-byte chat subtype discriminant.
type MessageType uint8

const (
	Sync   MessageType = 0x00
	Text   MessageType = 0x01
	Read   MessageType = 0x02
	Typing MessageType = 0x03
	Name   MessageType = 0x04
	Status MessageType = 0x05
	Poke   MessageType = 0x06
)

// PresenceStatus is the availability state advertised alongside a sync.
type PresenceStatus uint8

const (
	PresenceUnknown      PresenceStatus = 0x00
	PresenceAvailable    PresenceStatus = 0x01
	PresenceAway         PresenceStatus = 0x02
	PresenceIdle         PresenceStatus = 0x03
	PresenceBusy         PresenceStatus = 0x04
	PresenceDoNotDisturb PresenceStatus = 0x05
	PresenceInvisible    PresenceStatus = 0x06
	PresenceOffline      PresenceStatus = 0x07
)

// CapabilitiesFlags advertises which chat features this peer supports.
type CapabilitiesFlags struct{ raw uint32 }

const (
	capFlagEmoji uint32 = 0x0000_0001
	capFlagPoke  uint32 = 0x0000_0002
	capFlagRead  uint32 = 0x0000_0004
)

func NewCapabilitiesFlags() CapabilitiesFlags { return CapabilitiesFlags{} }
func (f CapabilitiesFlags) Emoji() bool       { return f.raw&capFlagEmoji != 0 }
func (f CapabilitiesFlags) Poke() bool        { return f.raw&capFlagPoke != 0 }
func (f CapabilitiesFlags) Read() bool        { return f.raw&capFlagRead != 0 }
func (f CapabilitiesFlags) WithEmoji() CapabilitiesFlags { f.raw |= capFlagEmoji; return f }
func (f CapabilitiesFlags) WithPoke() CapabilitiesFlags  { f.raw |= capFlagPoke; return f }
func (f CapabilitiesFlags) WithRead() CapabilitiesFlags  { f.raw |= capFlagRead; return f }

// Intersect narrows two capability sets down to the features both sides
// advertise, the way the sync handler reconciles local and peer flags.
func (f CapabilitiesFlags) Intersect(o CapabilitiesFlags) CapabilitiesFlags {
	return CapabilitiesFlags{raw: f.raw & o.raw}
}

// TextFlags marks a Text message as a monospace/code snippet.
type TextFlags struct{ raw uint8 }

const textFlagSnippet uint8 = 0x01

func NewTextFlags() TextFlags               { return TextFlags{} }
func (f TextFlags) Snippet() bool           { return f.raw&textFlagSnippet != 0 }
func (f TextFlags) WithSnippet() TextFlags  { f.raw |= textFlagSnippet; return f }

// Msg is the meta-enum over every chat message shape. Exactly one field
// is non-nil after a successful Decode.
type Msg struct {
	Sync   *SyncMsg
	Text   *TextMsg
	Read   *ReadMsg
	Typing *TypingMsg
	Name   *NameMsg
	Status *StatusMsg
	Poke   *PokeMsg
}

func (m *Msg) variant() interface{} {
	switch {
	case m.Sync != nil:
		return m.Sync
	case m.Text != nil:
		return m.Text
	case m.Read != nil:
		return m.Read
	case m.Typing != nil:
		return m.Typing
	case m.Name != nil:
		return m.Name
	case m.Status != nil:
		return m.Status
	case m.Poke != nil:
		return m.Poke
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
		return protoerr.New(protoerr.Encoding, "empty chat message")
	}
	return v.(interface{ Encode(codec.Writer) error }).Encode(w)
}

func Decode(c *codec.Cursor) (*Msg, error) {
	sub, err := c.PeekU8()
	if err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	switch MessageType(sub) {
	case Sync:
		v, err := decodeSync(c)
		return &Msg{Sync: v}, err
	case Text:
		v, err := decodeText(c)
		return &Msg{Text: v}, err
	case Read:
		v, err := decodeRead(c)
		return &Msg{Read: v}, err
	case Typing:
		v, err := decodeTyping(c)
		return &Msg{Typing: v}, err
	case Name:
		v, err := decodeName(c)
		return &Msg{Name: v}, err
	case Status:
		v, err := decodeStatus(c)
		return &Msg{Status: v}, err
	case Poke:
		v, err := decodePoke(c)
		return &Msg{Poke: v}, err
	default:
		return nil, protoerr.New(protoerr.Decoding, "unknown chat subtype")
	}
}

// SyncMsg opens the chat session: capabilities, timestamp, the sender's
// display name and presence, and an optional status text.
type SyncMsg struct {
	Timestamp    uint32
	Capabilities CapabilitiesFlags
	FriendlyName codec.NowString65535
	Presence     PresenceStatus
	StatusText   codec.NowString65535
}

func NewSyncMsg(timestamp uint32, capabilities CapabilitiesFlags, friendlyName string) (*SyncMsg, error) {
	name, err := codec.NewNowString65535(friendlyName)
	if err != nil {
		return nil, protoerr.Chain(protoerr.Encoding, err)
	}
	return &SyncMsg{
		Timestamp:    timestamp,
		Capabilities: capabilities,
		FriendlyName: name,
		Presence:     PresenceUnknown,
		StatusText:   codec.NewEmptyNowString65535(),
	}, nil
}

func (m *SyncMsg) WithStatusText(statusText string) (*SyncMsg, error) {
	st, err := codec.NewNowString65535(statusText)
	if err != nil {
		return nil, protoerr.Chain(protoerr.Encoding, err)
	}
	m.StatusText = st
	return m, nil
}

func (m *SyncMsg) WithPresence(presence PresenceStatus) *SyncMsg {
	m.Presence = presence
	return m
}

func (m *SyncMsg) EncodedLen() int {
	return 1 + 1 + 2 + 4 + 4 + m.FriendlyName.EncodedLen() + 1 + m.StatusText.EncodedLen()
}

func (m *SyncMsg) Encode(w codec.Writer) error {
	if err := codec.WriteU8(w, uint8(Sync)); err != nil {
		return err
	}
	if err := codec.WriteU8(w, 0); err != nil {
		return err
	}
	if err := codec.WriteU16(w, 0); err != nil {
		return err
	}
	if err := codec.WriteU32(w, m.Timestamp); err != nil {
		return err
	}
	if err := codec.WriteU32(w, m.Capabilities.raw); err != nil {
		return err
	}
	if err := m.FriendlyName.Encode(w); err != nil {
		return err
	}
	if err := codec.WriteU8(w, uint8(m.Presence)); err != nil {
		return err
	}
	return m.StatusText.Encode(w)
}

func decodeSync(c *codec.Cursor) (*SyncMsg, error) {
	if _, err := c.ReadN(4); err != nil { // subtype, flags, reserved
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	timestamp, err := c.ReadU32()
	if err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	capsRaw, err := c.ReadU32()
	if err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	name, err := codec.DecodeNowString65535(c)
	if err != nil {
		return nil, err
	}
	presence, err := c.ReadU8()
	if err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	statusText, err := codec.DecodeNowString65535(c)
	if err != nil {
		return nil, err
	}
	return &SyncMsg{
		Timestamp:    timestamp,
		Capabilities: CapabilitiesFlags{raw: capsRaw},
		FriendlyName: name,
		Presence:     PresenceStatus(presence),
		StatusText:   statusText,
	}, nil
}

// TextMsg carries one chat message body.
type TextMsg struct {
	Flags     TextFlags
	Timestamp uint32
	MessageID uint32
	Text      codec.NowString65535
}

func NewTextMsg(timestamp, messageID uint32, text string) (*TextMsg, error) {
	body, err := codec.NewNowString65535(text)
	if err != nil {
		return nil, protoerr.Chain(protoerr.Encoding, err)
	}
	return &TextMsg{Timestamp: timestamp, MessageID: messageID, Text: body}, nil
}

func (m *TextMsg) EncodedLen() int {
	return 1 + 1 + 2 + 4 + 4 + 4 + m.Text.EncodedLen()
}

func (m *TextMsg) Encode(w codec.Writer) error {
	if err := codec.WriteU8(w, uint8(Text)); err != nil {
		return err
	}
	if err := codec.WriteU8(w, m.Flags.raw); err != nil {
		return err
	}
	if err := codec.WriteU16(w, 0); err != nil {
		return err
	}
	if err := codec.WriteU32(w, m.Timestamp); err != nil {
		return err
	}
	if err := codec.WriteU32(w, 0); err != nil { // session_id, always zero on the wire
		return err
	}
	if err := codec.WriteU32(w, m.MessageID); err != nil {
		return err
	}
	return m.Text.Encode(w)
}

func decodeText(c *codec.Cursor) (*TextMsg, error) {
	if _, err := c.ReadU8(); err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	flags, err := c.ReadU8()
	if err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	if _, err := c.ReadN(2); err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	timestamp, err := c.ReadU32()
	if err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	if _, err := c.ReadU32(); err != nil { // session_id, ignored
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	messageID, err := c.ReadU32()
	if err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	text, err := codec.DecodeNowString65535(c)
	if err != nil {
		return nil, err
	}
	return &TextMsg{Flags: TextFlags{raw: flags}, Timestamp: timestamp, MessageID: messageID, Text: text}, nil
}

// ReadMsg is a read receipt timestamped at the moment of reading.
type ReadMsg struct{ Timestamp uint32 }

func NewReadMsg(timestamp uint32) *ReadMsg { return &ReadMsg{Timestamp: timestamp} }
func (m *ReadMsg) EncodedLen() int         { return 8 }
func (m *ReadMsg) Encode(w codec.Writer) error {
	return encodeTimestampOnly(w, Read, m.Timestamp)
}
func decodeRead(c *codec.Cursor) (*ReadMsg, error) {
	ts, err := decodeTimestampOnly(c)
	if err != nil {
		return nil, err
	}
	return &ReadMsg{Timestamp: ts}, nil
}

// TypingMsg signals that the peer is composing a message.
type TypingMsg struct {
	Timestamp uint32
	MessageID uint32
}

func NewTypingMsg(timestamp, messageID uint32) *TypingMsg {
	return &TypingMsg{Timestamp: timestamp, MessageID: messageID}
}
func (m *TypingMsg) EncodedLen() int { return 16 }
func (m *TypingMsg) Encode(w codec.Writer) error {
	if err := codec.WriteU8(w, uint8(Typing)); err != nil {
		return err
	}
	if err := codec.WriteU8(w, 0); err != nil {
		return err
	}
	if err := codec.WriteU16(w, 0); err != nil {
		return err
	}
	if err := codec.WriteU32(w, m.Timestamp); err != nil {
		return err
	}
	if err := codec.WriteU32(w, 0); err != nil { // session_id
		return err
	}
	return codec.WriteU32(w, m.MessageID)
}
func decodeTyping(c *codec.Cursor) (*TypingMsg, error) {
	if _, err := c.ReadN(4); err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	timestamp, err := c.ReadU32()
	if err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	if _, err := c.ReadU32(); err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	messageID, err := c.ReadU32()
	if err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	return &TypingMsg{Timestamp: timestamp, MessageID: messageID}, nil
}

// NameMsg announces a display-name change took effect at Timestamp.
type NameMsg struct{ Timestamp uint32 }

func NewNameMsg(timestamp uint32) *NameMsg { return &NameMsg{Timestamp: timestamp} }
func (m *NameMsg) EncodedLen() int         { return 8 }
func (m *NameMsg) Encode(w codec.Writer) error {
	return encodeTimestampOnly(w, Name, m.Timestamp)
}
func decodeName(c *codec.Cursor) (*NameMsg, error) {
	ts, err := decodeTimestampOnly(c)
	if err != nil {
		return nil, err
	}
	return &NameMsg{Timestamp: ts}, nil
}

// StatusMsg announces a presence/status-text change took effect at Timestamp.
type StatusMsg struct{ Timestamp uint32 }

func NewStatusMsg(timestamp uint32) *StatusMsg { return &StatusMsg{Timestamp: timestamp} }
func (m *StatusMsg) EncodedLen() int           { return 8 }
func (m *StatusMsg) Encode(w codec.Writer) error {
	return encodeTimestampOnly(w, Status, m.Timestamp)
}
func decodeStatus(c *codec.Cursor) (*StatusMsg, error) {
	ts, err := decodeTimestampOnly(c)
	if err != nil {
		return nil, err
	}
	return &StatusMsg{Timestamp: ts}, nil
}

// PokeMsg is an attention-grabbing nudge timestamped at the moment sent.
type PokeMsg struct{ Timestamp uint32 }

func NewPokeMsg(timestamp uint32) *PokeMsg { return &PokeMsg{Timestamp: timestamp} }
func (m *PokeMsg) EncodedLen() int         { return 8 }
func (m *PokeMsg) Encode(w codec.Writer) error {
	return encodeTimestampOnly(w, Poke, m.Timestamp)
}
func decodePoke(c *codec.Cursor) (*PokeMsg, error) {
	ts, err := decodeTimestampOnly(c)
	if err != nil {
		return nil, err
	}
	return &PokeMsg{Timestamp: ts}, nil
}

// encodeTimestampOnly/decodeTimestampOnly factor out the shared
// subtype+flags+reserved+timestamp layout of Read/Name/Status/Poke.
func encodeTimestampOnly(w codec.Writer, subtype MessageType, timestamp uint32) error {
	if err := codec.WriteU8(w, uint8(subtype)); err != nil {
		return err
	}
	if err := codec.WriteU8(w, 0); err != nil {
		return err
	}
	if err := codec.WriteU16(w, 0); err != nil {
		return err
	}
	return codec.WriteU32(w, timestamp)
}

func decodeTimestampOnly(c *codec.Cursor) (uint32, error) {
	if _, err := c.ReadN(4); err != nil {
		return 0, protoerr.Chain(protoerr.Decoding, err)
	}
	timestamp, err := c.ReadU32()
	if err != nil {
		return 0, protoerr.Chain(protoerr.Decoding, err)
	}
	return timestamp, nil
}
