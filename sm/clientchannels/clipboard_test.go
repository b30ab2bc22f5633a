package clientchannels

import (
	"testing"

	"waykshare/message"
	"waykshare/message/clipboard"
	"waykshare/sm"
)

func sendCap() *ClipboardSM {
	return NewClipboardSM(NewClipboardData(), DummyClipboardCallback{})
}

func TestClipboardSMStartsCapabilitiesExchange(t *testing.T) {
	s := sendCap()
	events := &sm.Events{}
	toSend := sm.NewChannelResponses()
	s.UpdateWithoutChanMsg(&sm.Data{}, events, toSend)

	if len(toSend.Peek()) != 1 || toSend.Peek()[0].Payload.Clipboard.CapabilitiesReq == nil {
		t.Fatalf("expected a capabilities request, got %+v", toSend.Peek())
	}
}

func advanceToEnabled(t *testing.T, s *ClipboardSM) {
	t.Helper()
	s.UpdateWithoutChanMsg(&sm.Data{}, &sm.Events{}, sm.NewChannelResponses()) // -> capabilities

	events := &sm.Events{}
	toSend := sm.NewChannelResponses()
	s.UpdateWithChanMsg(&sm.Data{}, events, toSend, message.NewClipboardVirtualChannel(&clipboard.Msg{
		CapabilitiesRsp: clipboard.NewCapabilitiesRspMsg(clipboard.NewResponseFlags()),
	})) // -> disabled, sends control req

	events2 := &sm.Events{}
	toSend2 := sm.NewChannelResponses()
	s.UpdateWithChanMsg(&sm.Data{}, events2, toSend2, message.NewClipboardVirtualChannel(&clipboard.Msg{
		ControlRsp: clipboard.NewControlRspMsg(clipboard.ControlAuto),
	})) // -> enabled

	if s.state != clipboardEnabled {
		t.Fatalf("state = %v, want clipboardEnabled", s.state)
	}
}

func TestClipboardSMCapabilitiesFailureIsError(t *testing.T) {
	s := sendCap()
	s.UpdateWithoutChanMsg(&sm.Data{}, &sm.Events{}, sm.NewChannelResponses())

	events := &sm.Events{}
	toSend := sm.NewChannelResponses()
	s.UpdateWithChanMsg(&sm.Data{}, events, toSend, message.NewClipboardVirtualChannel(&clipboard.Msg{
		CapabilitiesRsp: clipboard.NewCapabilitiesRspMsg(clipboard.FailureResponseFlags()),
	}))

	found := false
	for _, ev := range events.Peek() {
		if ev.Kind == sm.EventError {
			found = true
		}
	}
	if !found {
		t.Fatal("expected an error event on capabilities failure")
	}
}

func TestClipboardSMFormatListReqGrantsOwnershipToPeer(t *testing.T) {
	s := sendCap()
	advanceToEnabled(t, s)

	events := &sm.Events{}
	toSend := sm.NewChannelResponses()
	s.UpdateWithChanMsg(&sm.Data{}, events, toSend, message.NewClipboardVirtualChannel(&clipboard.Msg{
		FormatListReq: clipboard.NewFormatListReqMsg(1, nil),
	}))

	if s.data.IsOwner() {
		t.Error("expected ownership to transfer to the peer")
	}
	if len(toSend.Peek()) != 1 || toSend.Peek()[0].Payload.Clipboard.FormatListRsp == nil {
		t.Fatalf("expected a format list response, got %+v", toSend.Peek())
	}
	if s.state != clipboardAutoFetch {
		t.Errorf("state = %v, want clipboardAutoFetch (auto-fetch enabled by default)", s.state)
	}
}

func TestClipboardSMFormatDataRspWhileOwnerIsWarning(t *testing.T) {
	s := sendCap()
	advanceToEnabled(t, s)
	s.data.isOwner = true

	events := &sm.Events{}
	toSend := sm.NewChannelResponses()
	s.UpdateWithChanMsg(&sm.Data{}, events, toSend, message.NewClipboardVirtualChannel(&clipboard.Msg{
		FormatDataRsp: clipboard.NewFormatDataRspMsg(1, 1, []byte("x")),
	}))

	found := false
	for _, ev := range events.Peek() {
		if ev.Kind == sm.EventWarn {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a warning event: the owner should never receive a format data response")
	}
	if events.HasFatal() {
		t.Error("an out-of-phase format data response should not be fatal")
	}
}

func TestClipboardSMFormatDataReqDeniedWhenNotOwnerAndNotAutoFetch(t *testing.T) {
	s := sendCap()
	advanceToEnabled(t, s)
	s.data.isOwner = false
	s.data.autoFetch = false

	events := &sm.Events{}
	toSend := sm.NewChannelResponses()
	s.UpdateWithChanMsg(&sm.Data{}, events, toSend, message.NewClipboardVirtualChannel(&clipboard.Msg{
		FormatDataReq: clipboard.NewFormatDataReqMsg(1, 1),
	}))

	found := false
	for _, ev := range events.Peek() {
		if ev.Kind == sm.EventWarn {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a warning event when refusing a format data request")
	}
	if events.HasFatal() {
		t.Error("refusing a format data request should not be fatal")
	}
}

func TestClipboardSMAutoFetchPullsDataOnNextTick(t *testing.T) {
	reply := &clipboard.Msg{FormatDataReq: clipboard.NewFormatDataReqMsg(1, 7)}
	s := NewClipboardSM(NewClipboardData(), cannedClipboardCallback{autoFetch: reply})
	advanceToEnabled(t, s)

	events := &sm.Events{}
	toSend := sm.NewChannelResponses()
	s.UpdateWithChanMsg(&sm.Data{}, events, toSend, message.NewClipboardVirtualChannel(&clipboard.Msg{
		FormatListReq: clipboard.NewFormatListReqMsg(1, nil),
	})) // -> clipboardAutoFetch

	events2 := &sm.Events{}
	toSend2 := sm.NewChannelResponses()
	s.UpdateWithoutChanMsg(&sm.Data{}, events2, toSend2)

	if s.state != clipboardEnabled {
		t.Errorf("state = %v, want clipboardEnabled after the auto-fetch tick", s.state)
	}
	if len(toSend2.Peek()) != 1 || toSend2.Peek()[0].Payload.Clipboard.FormatDataReq == nil {
		t.Fatalf("expected the auto-fetch request to be sent, got %+v", toSend2.Peek())
	}
}

type cannedClipboardCallback struct {
	DummyClipboardCallback
	autoFetch *clipboard.Msg
}

func (c cannedClipboardCallback) AutoFetchData() (*clipboard.Msg, error) { return c.autoFetch, nil }
