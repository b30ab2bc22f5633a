package message

import (
	"waykshare/codec"
	"waykshare/message/chat"
	"waykshare/message/clipboard"
	"waykshare/protoerr"
)

// VirtualChannel is the payload carried by a packet addressed to a
// channel id rather than the connection-sequence message space: a known
// Clipboard or Chat payload, or an opaque Custom fallback for any other
// channel name the sharee has opened.
type VirtualChannel struct {
	Clipboard *clipboard.Msg
	Chat      *chat.Msg
	Custom    *CustomVirtualChannel
}

// CustomVirtualChannel is the raw-bytes fallback for channels this module
// does not interpret; Data is handed to the channel owner unparsed.
type CustomVirtualChannel struct {
	Name ChannelName
	Data []byte
}

func (c *CustomVirtualChannel) EncodedLen() int { return len(c.Data) }
func (c *CustomVirtualChannel) Encode(w codec.Writer) error {
	_, err := w.Write(c.Data)
	return err
}

func (v *VirtualChannel) GetName() ChannelName {
	switch {
	case v.Clipboard != nil:
		return ChannelNameClipboard
	case v.Chat != nil:
		return ChannelNameChat
	case v.Custom != nil:
		return v.Custom.Name
	default:
		return UnknownChannelName("")
	}
}

func (v *VirtualChannel) EncodedLen() int {
	switch {
	case v.Clipboard != nil:
		return v.Clipboard.EncodedLen()
	case v.Chat != nil:
		return v.Chat.EncodedLen()
	case v.Custom != nil:
		return v.Custom.EncodedLen()
	default:
		return 0
	}
}

func (v *VirtualChannel) Encode(w codec.Writer) error {
	switch {
	case v.Clipboard != nil:
		return v.Clipboard.Encode(w)
	case v.Chat != nil:
		return v.Chat.Encode(w)
	case v.Custom != nil:
		return v.Custom.Encode(w)
	default:
		return protoerr.New(protoerr.Encoding, "empty virtual channel payload")
	}
}

// DecodeVirtualChannel dispatches on the channel name (resolved by the
// caller from the packet header's channel id) to pick the right concrete
// payload decoder. An unknown
// name decodes to Custom, aliasing the remainder of the cursor's buffer.
func DecodeVirtualChannel(name ChannelName, c *codec.Cursor) (*VirtualChannel, error) {
	switch {
	case name.Equal(ChannelNameClipboard):
		m, err := clipboard.Decode(c)
		if err != nil {
			return nil, err
		}
		return &VirtualChannel{Clipboard: m}, nil
	case name.Equal(ChannelNameChat):
		m, err := chat.Decode(c)
		if err != nil {
			return nil, err
		}
		return &VirtualChannel{Chat: m}, nil
	default:
		return &VirtualChannel{Custom: &CustomVirtualChannel{Name: name, Data: c.ReadRest()}}, nil
	}
}

func NewClipboardVirtualChannel(m *clipboard.Msg) *VirtualChannel { return &VirtualChannel{Clipboard: m} }
func NewChatVirtualChannel(m *chat.Msg) *VirtualChannel           { return &VirtualChannel{Chat: m} }
func NewCustomVirtualChannel(name ChannelName, data []byte) *VirtualChannel {
	return &VirtualChannel{Custom: &CustomVirtualChannel{Name: name, Data: data}}
}
