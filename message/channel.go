package message

import (
	"waykshare/codec"
	"waykshare/protoerr"
)

// ChannelMessageType names the ten channel-lifecycle request/response
// shapes; unrecognized codes decode to Other(raw).
type ChannelMessageType struct {
	known bool
	name  string
	value uint8
}

func namedChanMsg(name string, value uint8) ChannelMessageType {
	return ChannelMessageType{known: true, name: name, value: value}
}
func OtherChannelMessageType(raw uint8) ChannelMessageType {
	return ChannelMessageType{known: false, name: "Other", value: raw}
}

func (t ChannelMessageType) Value() uint8 { return t.value }
func (t ChannelMessageType) String() string {
	if t.known {
		return t.name
	}
	return "Other"
}

var (
	ChannelListRequest   = namedChanMsg("ChannelListRequest", 0x01)
	ChannelListResponse  = namedChanMsg("ChannelListResponse", 0x02)
	ChannelOpenRequest   = namedChanMsg("ChannelOpenRequest", 0x03)
	ChannelOpenResponse  = namedChanMsg("ChannelOpenResponse", 0x04)
	ChannelCloseRequest  = namedChanMsg("ChannelCloseRequest", 0x05)
	ChannelCloseResponse = namedChanMsg("ChannelCloseResponse", 0x06)
	ChannelStartRequest  = namedChanMsg("ChannelStartRequest", 0x07)
	ChannelStartResponse = namedChanMsg("ChannelStartResponse", 0x08)
	ChannelStopRequest   = namedChanMsg("ChannelStopRequest", 0x09)
	ChannelStopResponse  = namedChanMsg("ChannelStopResponse", 0x0a)
)

var channelMsgByValue = func() map[uint8]ChannelMessageType {
	m := map[uint8]ChannelMessageType{}
	for _, t := range []ChannelMessageType{
		ChannelListRequest, ChannelListResponse, ChannelOpenRequest, ChannelOpenResponse,
		ChannelCloseRequest, ChannelCloseResponse, ChannelStartRequest, ChannelStartResponse,
		ChannelStopRequest, ChannelStopResponse,
	} {
		m[t.value] = t
	}
	return m
}()

func ChannelMessageTypeFromRaw(raw uint8) ChannelMessageType {
	if t, ok := channelMsgByValue[raw]; ok {
		return t
	}
	return OtherChannelMessageType(raw)
}

// ChannelDefFlags packs the lifecycle/role bits for a channel definition.
// status and status_success intentionally alias the same bit (0x8000_0000);
// callers disambiguate by context, as the wire format does.
type ChannelDefFlags struct{ raw uint32 }

const (
	channelDefFlagDynamic       uint32 = 0x0000_0001
	channelDefFlagMultiple      uint32 = 0x0000_0002
	channelDefFlagStopped       uint32 = 0x0000_0004
	channelDefFlagServer        uint32 = 0x0001_0000
	channelDefFlagAsync         uint32 = 0x0002_0000
	channelDefFlagIrp           uint32 = 0x0004_0000
	channelDefFlagLocal         uint32 = 0x0008_0000
	channelDefFlagProxy         uint32 = 0x0010_0000
	channelDefFlagStatus        uint32 = 0x8000_0000
	channelDefFlagStatusSuccess uint32 = 0x8000_0000
	channelDefFlagStatusFailure uint32 = 0x8000_0001
)

func NewChannelDefFlags() ChannelDefFlags { return ChannelDefFlags{} }

func (f ChannelDefFlags) Dynamic() bool  { return f.raw&channelDefFlagDynamic != 0 }
func (f ChannelDefFlags) Multiple() bool { return f.raw&channelDefFlagMultiple != 0 }
func (f ChannelDefFlags) Stopped() bool  { return f.raw&channelDefFlagStopped != 0 }
func (f ChannelDefFlags) Server() bool   { return f.raw&channelDefFlagServer != 0 }
func (f ChannelDefFlags) Async() bool    { return f.raw&channelDefFlagAsync != 0 }
func (f ChannelDefFlags) Irp() bool      { return f.raw&channelDefFlagIrp != 0 }
func (f ChannelDefFlags) Local() bool    { return f.raw&channelDefFlagLocal != 0 }
func (f ChannelDefFlags) Proxy() bool    { return f.raw&channelDefFlagProxy != 0 }
func (f ChannelDefFlags) Status() bool   { return f.raw&channelDefFlagStatus != 0 }
func (f ChannelDefFlags) StatusSuccess() bool { return f.raw&channelDefFlagStatusSuccess != 0 }
func (f ChannelDefFlags) StatusFailure() bool { return f.raw == channelDefFlagStatusFailure }

// Value returns the low byte of the flags word, which the channels
// sub-sequence's open response repurposes to carry the assigned channel id.
// The Dynamic, Multiple and Stopped bits lie inside that byte.
func (f ChannelDefFlags) Value() uint8 { return uint8(f.raw) }

func WithChannelID(f ChannelDefFlags, id uint8) ChannelDefFlags {
	f.raw = (f.raw &^ 0xFF) | uint32(id)
	return f
}

// ChannelName identifies one of the known virtual channels, or an
// Unknown(name) for anything else. On the wire it is a NowString64.
type ChannelName struct {
	known bool
	tag   string
	raw   string
}

const (
	clipboardStr    = "NowClipboard"
	fileTransferStr = "NowFileTransfer"
	execStr         = "NowExec"
	chatStr         = "NowChat"
	tunnelStr       = "NowTunnel"
)

var (
	ChannelNameClipboard    = ChannelName{known: true, tag: "Clipboard", raw: clipboardStr}
	ChannelNameFileTransfer = ChannelName{known: true, tag: "FileTransfer", raw: fileTransferStr}
	ChannelNameExec         = ChannelName{known: true, tag: "Exec", raw: execStr}
	ChannelNameChat         = ChannelName{known: true, tag: "Chat", raw: chatStr}
	ChannelNameTunnel       = ChannelName{known: true, tag: "Tunnel", raw: tunnelStr}
)

func UnknownChannelName(name string) ChannelName {
	return ChannelName{known: false, tag: "Unknown", raw: name}
}

func (n ChannelName) String() string { return n.raw }
func (n ChannelName) Tag() string    { return n.tag }
func (n ChannelName) Equal(o ChannelName) bool { return n.raw == o.raw }

var channelNameByString = map[string]ChannelName{
	clipboardStr:    ChannelNameClipboard,
	fileTransferStr: ChannelNameFileTransfer,
	execStr:         ChannelNameExec,
	chatStr:         ChannelNameChat,
	tunnelStr:       ChannelNameTunnel,
}

func (n ChannelName) EncodedLen() int {
	ns, _ := codec.NewNowString64(n.raw)
	return ns.EncodedLen()
}

func (n ChannelName) Encode(w codec.Writer) error {
	ns, err := codec.NewNowString64(n.raw)
	if err != nil {
		return protoerr.Chain(protoerr.Encoding, err)
	}
	return ns.Encode(w)
}

func DecodeChannelName(c *codec.Cursor) (ChannelName, error) {
	ns, err := codec.DecodeNowString64(c)
	if err != nil {
		return ChannelName{}, err
	}
	if n, ok := channelNameByString[ns.String()]; ok {
		return n, nil
	}
	return UnknownChannelName(ns.String()), nil
}

// ChannelDef pairs a channel's lifecycle flags with its name. It appears in
// both the channel list request/response and the open request/response.
type ChannelDef struct {
	Flags ChannelDefFlags
	Name  ChannelName
}

func NewChannelDef(name ChannelName) ChannelDef {
	return ChannelDef{Flags: NewChannelDefFlags(), Name: name}
}

func (d ChannelDef) EncodedLen() int { return 4 + d.Name.EncodedLen() }

func (d ChannelDef) Encode(w codec.Writer) error {
	if err := codec.WriteU32(w, d.Flags.raw); err != nil {
		return err
	}
	return d.Name.Encode(w)
}

func DecodeChannelDef(c *codec.Cursor) (ChannelDef, error) {
	flags, err := c.ReadU32()
	if err != nil {
		return ChannelDef{}, protoerr.Chain(protoerr.Decoding, err)
	}
	name, err := DecodeChannelName(c)
	if err != nil {
		return ChannelDef{}, err
	}
	return ChannelDef{Flags: ChannelDefFlags{raw: flags}, Name: name}, nil
}

// ChannelMsg is the body for all ten channel-lifecycle messages; they share
// one layout (subtype + flags + a list of channel definitions).
type ChannelMsg struct {
	Subtype     ChannelMessageType
	ChannelList codec.Vec[ChannelDef]
}

func NewChannelMsg(subtype ChannelMessageType, channelList []ChannelDef) *ChannelMsg {
	return &ChannelMsg{Subtype: subtype, ChannelList: codec.NewVec8(channelList)}
}

func (m *ChannelMsg) MessageType() Type { return TypeChannel }
func (m *ChannelMsg) EncodedLen() int   { return 1 + 1 + m.ChannelList.EncodedLen() }

func (m *ChannelMsg) Encode(w codec.Writer) error {
	if err := codec.WriteU8(w, m.Subtype.value); err != nil {
		return err
	}
	if err := codec.WriteU8(w, 0); err != nil { // flags, currently unused
		return err
	}
	return m.ChannelList.Encode(w)
}

func DecodeChannelMsg(c *codec.Cursor) (Message, error) {
	sub, err := c.ReadU8()
	if err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	if _, err := c.ReadU8(); err != nil { // flags
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	list, err := codec.DecodeVec8(c, DecodeChannelDef)
	if err != nil {
		return nil, err
	}
	return &ChannelMsg{Subtype: ChannelMessageTypeFromRaw(sub), ChannelList: list}, nil
}
