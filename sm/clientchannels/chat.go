package clientchannels

import (
	"waykshare/message"
	"waykshare/message/chat"
	"waykshare/protoerr"
	"waykshare/sm"
)

// ChatCallback receives chat events and may answer with a message of its
// own to send right back down the same channel (e.g. a canned greeting
// sent as soon as sync settles); DummyChatCallback never replies.
type ChatCallback interface {
	OnMessage(msg *chat.TextMsg) (*chat.Msg, error)
	OnSynced() (*chat.Msg, error)
}

type DummyChatCallback struct{}

func (DummyChatCallback) OnMessage(*chat.TextMsg) (*chat.Msg, error) { return nil, nil }
func (DummyChatCallback) OnSynced() (*chat.Msg, error)               { return nil, nil }

// ChatData is the sync state shared between the local application and its
// peer: the local identity advertised on sync, and what the peer reported
// back.
type ChatData struct {
	FriendlyName string
	StatusText   string

	DistantFriendlyName string
	DistantStatusText   string

	Capabilities chat.CapabilitiesFlags
}

func NewChatData() *ChatData {
	return &ChatData{
		FriendlyName:         "Anonymous",
		StatusText:           "None",
		DistantFriendlyName:  "Unknown",
		DistantStatusText:    "None",
	}
}

type chatState int

const (
	chatInitial chatState = iota
	chatSyncing
	chatActive
	chatTerminated
)

// ChatSM drives the chat virtual channel: an initial capability/identity
// sync, then free-form text delivery once both sides have settled.
type ChatSM struct {
	state       chatState
	data        *ChatData
	timestampFn func() uint32
	callback    ChatCallback
}

func NewChatSM(data *ChatData, timestampFn func() uint32, callback ChatCallback) *ChatSM {
	return &ChatSM{data: data, timestampFn: timestampFn, callback: callback}
}

func (s *ChatSM) ChannelName() message.ChannelName { return message.ChannelNameChat }
func (s *ChatSM) IsTerminated() bool                { return s.state == chatTerminated }
func (s *ChatSM) WaitingForPacket() bool {
	return s.state == chatSyncing || s.state == chatActive
}

func (s *ChatSM) UpdateWithoutChanMsg(_ *sm.Data, events *sm.Events, toSend *sm.ChannelResponses) {
	if s.state != chatInitial {
		events.Push(sm.ErrorEvent(protoerr.VirtualChannel, "unexpected call to ChatSM.UpdateWithoutChanMsg"))
		return
	}
	s.state = chatSyncing
	syncMsg, err := chat.NewSyncMsg(s.timestampFn(), s.data.Capabilities, s.data.FriendlyName)
	if err != nil {
		events.Push(sm.ErrorEvent(protoerr.Encoding, err.Error()))
		return
	}
	if _, err := syncMsg.WithStatusText(s.data.StatusText); err != nil {
		events.Push(sm.ErrorEvent(protoerr.Encoding, err.Error()))
		return
	}
	toSend.Push(message.NewChatVirtualChannel(&chat.Msg{Sync: syncMsg}))
}

func (s *ChatSM) UpdateWithChanMsg(_ *sm.Data, events *sm.Events, toSend *sm.ChannelResponses, vc *message.VirtualChannel) {
	if vc.Chat == nil {
		events.Push(sm.ErrorEvent(protoerr.UnexpectedMessage, "ChatSM received an unexpected message"))
		return
	}
	msg := vc.Chat
	switch s.state {
	case chatSyncing:
		if msg.Sync == nil {
			events.Push(sm.ErrorEvent(protoerr.UnexpectedMessage, "ChatSM expected a sync message"))
			return
		}
		s.data.Capabilities = s.data.Capabilities.Intersect(msg.Sync.Capabilities)
		s.data.DistantFriendlyName = msg.Sync.FriendlyName.String()
		s.data.DistantStatusText = msg.Sync.StatusText.String()
		s.state = chatActive
		reply, err := s.callback.OnSynced()
		s.pushReply(events, toSend, reply, err)
	case chatActive:
		if msg.Text == nil {
			events.Push(sm.ErrorEvent(protoerr.UnexpectedMessage, "ChatSM received an unexpected message"))
			return
		}
		reply, err := s.callback.OnMessage(msg.Text)
		s.pushReply(events, toSend, reply, err)
	default:
		events.Push(sm.ErrorEvent(protoerr.VirtualChannel, "unexpected call to ChatSM.UpdateWithChanMsg"))
	}
}

func (s *ChatSM) pushReply(events *sm.Events, toSend *sm.ChannelResponses, reply *chat.Msg, err error) {
	if err != nil {
		events.Push(sm.ErrorEvent(protoerr.VirtualChannel, err.Error()))
		return
	}
	if reply != nil {
		toSend.Push(message.NewChatVirtualChannel(reply))
	}
}

var _ sm.VirtualChannelSM = (*ChatSM)(nil)
