package clientconnection

import (
	"waykshare/message"
	"waykshare/protoerr"
	"waykshare/sm"
)

// SeqSM coordinates the six connection-sequence sub-machines behind a
// single sm.ConnectionSM. The authenticate sub-machine is supplied by the
// caller (e.g. auth.PFPAuthenticateSM) and swapped in once negotiate
// settles on a common auth method; its slot is then replaced with a
// DummyConnectionSM so a stray call after the swap surfaces loudly.
type SeqSM struct {
	state          State
	current        sm.ConnectionSM
	authenticateSM sm.ConnectionSM
}

// NewSeqSM builds a coordinator starting in the Handshake state, with
// authenticateSM queued up to take over once negotiate finishes.
func NewSeqSM(authenticateSM sm.ConnectionSM) *SeqSM {
	return &SeqSM{
		state:          StateHandshake,
		current:        NewHandshakeSM(),
		authenticateSM: authenticateSM,
	}
}

func (s *SeqSM) State() State { return s.state }

func (s *SeqSM) IsTerminated() bool { return s.state == StateFinal }
func (s *SeqSM) WaitingForPacket() bool {
	return s.state != StateFinal && s.current.WaitingForPacket()
}

func (s *SeqSM) UpdateWithoutMessage(data *sm.Data, events *sm.Events) {
	if s.state == StateFinal {
		events.Push(sm.WarnEvent(protoerr.ConnectionSequence, "update called in the final state"))
		return
	}
	s.current.UpdateWithoutMessage(data, events)
	s.advance(events)
}

func (s *SeqSM) UpdateWithMessage(data *sm.Data, events *sm.Events, msg message.Message) {
	if s.state == StateFinal {
		events.Push(sm.WarnEvent(protoerr.ConnectionSequence, "update called in the final state"))
		return
	}
	s.current.UpdateWithMessage(data, events, msg)
	s.advance(events)
}

func (s *SeqSM) advance(events *sm.Events) {
	if events.HasFatal() {
		s.state = StateFinal
		return
	}
	if !s.current.IsTerminated() {
		return
	}
	switch s.state {
	case StateHandshake:
		s.current = NewNegotiateSM()
		s.state = StateNegotiate
	case StateNegotiate:
		s.current, s.authenticateSM = s.authenticateSM, sm.DummyConnectionSM{}
		s.state = StateAuthenticate
	case StateAuthenticate:
		s.current = NewAssociateSM()
		s.state = StateAssociate
	case StateAssociate:
		s.current = NewCapabilitiesSM()
		s.state = StateCapabilities
	case StateCapabilities:
		s.current = NewChannelsSM()
		s.state = StateChannels
	case StateChannels:
		s.state = StateFinal
	case StateFinal:
		events.Push(sm.WarnEvent(protoerr.ConnectionSequence, "attempted to advance past the final state"))
		return
	}
	events.Push(sm.TransitionEvent(s.state))
}
