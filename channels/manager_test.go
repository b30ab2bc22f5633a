package channels

import (
	"testing"

	"waykshare/message"
	"waykshare/sm"
)

// stubChannelSM is a minimal VirtualChannelSM used to exercise Manager's
// routing without dragging in a real chat/clipboard machine.
type stubChannelSM struct {
	name       message.ChannelName
	waiting    bool
	received   []*message.VirtualChannel
	ticked     int
	terminated bool
}

func (s *stubChannelSM) ChannelName() message.ChannelName { return s.name }
func (s *stubChannelSM) IsTerminated() bool               { return s.terminated }
func (s *stubChannelSM) WaitingForPacket() bool           { return s.waiting }
func (s *stubChannelSM) UpdateWithoutChanMsg(_ *sm.Data, _ *sm.Events, _ *sm.ChannelResponses) {
	s.ticked++
}
func (s *stubChannelSM) UpdateWithChanMsg(_ *sm.Data, _ *sm.Events, _ *sm.ChannelResponses, vc *message.VirtualChannel) {
	s.received = append(s.received, vc)
}

var _ sm.VirtualChannelSM = (*stubChannelSM)(nil)

func TestManagerRoutesMessageOnlyToMatchingChannel(t *testing.T) {
	chat := &stubChannelSM{name: message.ChannelNameChat, waiting: true}
	clip := &stubChannelSM{name: message.ChannelNameClipboard, waiting: true}
	m := NewManager()
	m.AddChannelSM(chat)
	m.AddChannelSM(clip)

	vc := message.NewCustomVirtualChannel(message.ChannelNameChat, []byte("hi"))
	events := &sm.Events{}
	toSend := sm.NewChannelResponses()
	m.UpdateWithVirtMsg(&sm.Data{}, events, toSend, vc)

	if len(chat.received) != 1 {
		t.Fatalf("expected the chat machine to receive the message, got %d", len(chat.received))
	}
	if len(clip.received) != 0 {
		t.Errorf("expected the clipboard machine to receive nothing, got %d", len(clip.received))
	}
}

func TestManagerUnroutableMessagePushesWarning(t *testing.T) {
	m := NewManager()
	m.AddChannelSM(&stubChannelSM{name: message.ChannelNameChat, waiting: true})

	vc := message.NewCustomVirtualChannel(message.ChannelNameClipboard, nil)
	events := &sm.Events{}
	toSend := sm.NewChannelResponses()
	m.UpdateWithVirtMsg(&sm.Data{}, events, toSend, vc)

	found := false
	for _, ev := range events.Peek() {
		if ev.Kind == sm.EventWarn {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a warning event when no machine is registered for the channel")
	}
}

func TestManagerAddChannelSMReplacesByName(t *testing.T) {
	m := NewManager()
	first := &stubChannelSM{name: message.ChannelNameChat, waiting: true}
	second := &stubChannelSM{name: message.ChannelNameChat, waiting: true}
	m.AddChannelSM(first)
	m.AddChannelSM(second)

	if len(m.entries) != 1 {
		t.Fatalf("expected one entry after re-registering the same channel name, got %d", len(m.entries))
	}
	if m.entries[0].machine != sm.VirtualChannelSM(second) {
		t.Error("expected the second registration to replace the first")
	}
}

func TestManagerUpdateWithoutVirtMsgTicksFirstNonWaitingMachine(t *testing.T) {
	chat := &stubChannelSM{name: message.ChannelNameChat, waiting: true}
	clip := &stubChannelSM{name: message.ChannelNameClipboard, waiting: false}
	m := NewManager()
	m.AddChannelSM(chat)
	m.AddChannelSM(clip)

	events := &sm.Events{}
	toSend := sm.NewChannelResponses()
	m.UpdateWithoutVirtMsg(&sm.Data{}, events, toSend)

	if clip.ticked != 1 {
		t.Errorf("expected the clipboard machine to be ticked, got %d", clip.ticked)
	}
	if chat.ticked != 0 {
		t.Errorf("expected the waiting chat machine not to be ticked, got %d", chat.ticked)
	}
}

func TestManagerUpdateWithoutVirtMsgWarnsWhenAllWaiting(t *testing.T) {
	m := NewManager()
	m.AddChannelSM(&stubChannelSM{name: message.ChannelNameChat, waiting: true})
	m.AddChannelSM(&stubChannelSM{name: message.ChannelNameClipboard, waiting: true})

	events := &sm.Events{}
	toSend := sm.NewChannelResponses()
	m.UpdateWithoutVirtMsg(&sm.Data{}, events, toSend)

	found := false
	for _, ev := range events.Peek() {
		if ev.Kind == sm.EventWarn {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a warn event when every channel machine is waiting")
	}
}

func TestManagerWaitingForPacketRequiresAllMachinesWaiting(t *testing.T) {
	m := NewManager()
	m.AddChannelSM(&stubChannelSM{name: message.ChannelNameChat, waiting: true})
	if !m.WaitingForPacket() {
		t.Fatal("expected WaitingForPacket to be true with a single waiting machine")
	}
	m.AddChannelSM(&stubChannelSM{name: message.ChannelNameClipboard, waiting: false})
	if m.WaitingForPacket() {
		t.Error("expected WaitingForPacket to be false once one machine is not waiting")
	}
}
