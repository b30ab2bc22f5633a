package clientconnection

import (
	"testing"

	"waykshare/message"
	"waykshare/sm"
)

// stubAuthSM stands in for the real PFP machine: it terminates on its
// first UpdateWithMessage call, the way SeqSM expects any authenticate
// sub-machine to eventually do.
type stubAuthSM struct{ done bool }

func (s *stubAuthSM) IsTerminated() bool     { return s.done }
func (s *stubAuthSM) WaitingForPacket() bool { return !s.done }
func (s *stubAuthSM) UpdateWithoutMessage(_ *sm.Data, _ *sm.Events) {}
func (s *stubAuthSM) UpdateWithMessage(_ *sm.Data, _ *sm.Events, _ message.Message) {
	s.done = true
}

var _ sm.ConnectionSM = (*stubAuthSM)(nil)

// TestSeqSMAdvancesThroughEveryState drives the coordinator end to end:
// Handshake -> Negotiate -> Authenticate -> Associate -> Capabilities ->
// Channels -> Final, in that order, ending terminated.
func TestSeqSMAdvancesThroughEveryState(t *testing.T) {
	auth := &stubAuthSM{}
	s := NewSeqSM(auth)
	data := sm.NewData([]message.AuthType{message.AuthPFP}, nil, []message.ChannelDef{
		message.NewChannelDef(message.ChannelNameChat),
	})

	if s.State() != StateHandshake {
		t.Fatalf("initial state = %v, want Handshake", s.State())
	}

	// Handshake: send success, then settle on the peer's reply.
	s.UpdateWithoutMessage(data, &sm.Events{})
	s.UpdateWithMessage(data, &sm.Events{}, message.NewSuccessHandshakeMsg())
	if s.State() != StateNegotiate {
		t.Fatalf("state after handshake = %v, want Negotiate", s.State())
	}

	// Negotiate: send local auths, settle on the peer's reply.
	s.UpdateWithoutMessage(data, &sm.Events{})
	s.UpdateWithMessage(data, &sm.Events{}, message.NewNegotiateMsg(message.NegotiateFlags{}, []message.AuthType{message.AuthPFP}))
	if s.State() != StateAuthenticate {
		t.Fatalf("state after negotiate = %v, want Authenticate", s.State())
	}

	// Authenticate: the supplied stub terminates on its first message.
	s.UpdateWithMessage(data, &sm.Events{}, &message.AuthenticateMsg{})
	if s.State() != StateAssociate {
		t.Fatalf("state after authenticate = %v, want Associate", s.State())
	}

	// Associate: fresh session, request then success response.
	s.UpdateWithMessage(data, &sm.Events{}, &message.AssociateMsg{
		Info: message.NewAssociateInfoMsg(message.NewAssociateInfoFlags()),
	})
	s.UpdateWithMessage(data, &sm.Events{}, &message.AssociateMsg{
		Response: message.NewAssociateResponseMsg(message.NewAssociateResponseFlags(),
			message.NewStatus(message.SeverityInfo, message.StatusTypeNone, uint16(message.StatusCodeSuccess))),
	})
	if s.State() != StateCapabilities {
		t.Fatalf("state after associate = %v, want Capabilities", s.State())
	}

	// Capabilities: one exchange.
	s.UpdateWithMessage(data, &sm.Events{}, message.NewCapabilitiesMsg(nil))
	if s.State() != StateChannels {
		t.Fatalf("state after capabilities = %v, want Channels", s.State())
	}

	// Channels: list round trip, then open round trip.
	s.UpdateWithoutMessage(data, &sm.Events{})
	s.UpdateWithMessage(data, &sm.Events{}, message.NewChannelMsg(message.ChannelListResponse, []message.ChannelDef{
		message.NewChannelDef(message.ChannelNameChat),
	}))
	s.UpdateWithoutMessage(data, &sm.Events{})
	s.UpdateWithMessage(data, &sm.Events{}, message.NewChannelMsg(message.ChannelOpenResponse, []message.ChannelDef{
		message.NewChannelDef(message.ChannelNameChat),
	}))

	if s.State() != StateFinal {
		t.Fatalf("final state = %v, want Final", s.State())
	}
	if !s.IsTerminated() {
		t.Error("expected SeqSM to report terminated once it reaches Final")
	}
}

// TestSeqSMIncompatibleHandshakeForcesFinal exercises the testable property
// that an Incompatible handshake status emits exactly one Fatal event and
// forces the coordinator straight to Final.
func TestSeqSMIncompatibleHandshakeForcesFinal(t *testing.T) {
	s := NewSeqSM(&stubAuthSM{})
	data := sm.NewData(nil, nil, nil)

	s.UpdateWithoutMessage(data, &sm.Events{})
	events := &sm.Events{}
	s.UpdateWithMessage(data, events, &message.HandshakeMsg{
		Status: message.NewStatus(message.SeverityFatal, message.StatusTypeNone, uint16(message.DisconnectIncompatible)),
	})

	fatalCount := 0
	for _, ev := range events.Peek() {
		if ev.Kind == sm.EventFatal {
			fatalCount++
		}
	}
	if fatalCount != 1 {
		t.Fatalf("fatal event count = %d, want exactly 1", fatalCount)
	}
	if s.State() != StateFinal {
		t.Fatalf("state = %v, want Final", s.State())
	}
	if !s.IsTerminated() {
		t.Error("expected SeqSM to be terminated after an incompatible handshake")
	}
}

// stubFatalSM reports a fatal event without terminating itself, exercising
// the property that a fatal outcome forces the coordinator to Final even
// while the active sub-machine is still mid-sequence.
type stubFatalSM struct{}

func (stubFatalSM) IsTerminated() bool     { return false }
func (stubFatalSM) WaitingForPacket() bool { return true }
func (stubFatalSM) UpdateWithoutMessage(_ *sm.Data, events *sm.Events) {
	events.Push(sm.FatalEvent(0, "incompatible status"))
}
func (stubFatalSM) UpdateWithMessage(_ *sm.Data, events *sm.Events, _ message.Message) {
	events.Push(sm.FatalEvent(0, "incompatible status"))
}

var _ sm.ConnectionSM = stubFatalSM{}

func TestSeqSMFatalEventForcesFinal(t *testing.T) {
	s := &SeqSM{state: StateAssociate, current: stubFatalSM{}, authenticateSM: &stubAuthSM{}}
	events := &sm.Events{}
	s.UpdateWithMessage(sm.NewData(nil, nil, nil), events, &message.AssociateMsg{})

	if s.State() != StateFinal {
		t.Fatalf("state = %v, want Final after a fatal event", s.State())
	}
	if !s.IsTerminated() {
		t.Error("expected SeqSM to be terminated once forced to Final")
	}
}
