// Package auth implements the client-side authenticate sub-machines that
// plug into the connection sequence's authenticate slot. PFPAuthenticateSM
// drives the pre-shared friendly passphrase method: a negotiate token
// announces the sharer's display name, an optional challenge/response round
// lets the server ask a question back, and the exchange settles on the
// connection sequence's own Success/Failure messages.
package auth

import (
	"bytes"

	"waykshare/codec"
	"waykshare/message"
	"waykshare/message/pfp"
	"waykshare/protoerr"
	"waykshare/sm"
)

// Credentials is the identity a PFP authenticate attempt advertises: the
// friendly name and explanatory text shown to whoever is confirming the
// connection on the other end.
type Credentials struct {
	FriendlyName string
	FriendlyText string
}

// Callback answers a challenge question with the passphrase the local user
// provides. It is consulted only when the challenge carries a question.
type Callback interface {
	Answer(question string) (string, error)
}

// DummyCallback answers every challenge with a fixed string, useful for
// tests and unattended connections.
type DummyCallback struct{ Answer_ string }

func (d DummyCallback) Answer(string) (string, error) { return d.Answer_, nil }

type pfpState int

const (
	pfpInitial pfpState = iota
	pfpNegotiating
	pfpAwaitingChallenge
	pfpAwaitingResult
	pfpTerminated
)

func (pfpState) ProtoState() {}

// PFPAuthenticateSM implements sm.ConnectionSM for the PFP method. It is
// supplied to sm/clientconnection.NewSeqSM and swapped into the sequence
// once negotiate settles on AuthPFP.
type PFPAuthenticateSM struct {
	state    pfpState
	creds    Credentials
	callback Callback
}

func NewPFPAuthenticateSM(creds Credentials, callback Callback) *PFPAuthenticateSM {
	return &PFPAuthenticateSM{creds: creds, callback: callback}
}

func (s *PFPAuthenticateSM) IsTerminated() bool { return s.state == pfpTerminated }

func (s *PFPAuthenticateSM) WaitingForPacket() bool {
	return s.state == pfpAwaitingChallenge || s.state == pfpAwaitingResult
}

func (s *PFPAuthenticateSM) transition(events *sm.Events, state pfpState) {
	s.state = state
	events.Push(sm.TransitionEvent(state))
}

func (s *PFPAuthenticateSM) UpdateWithoutMessage(data *sm.Data, events *sm.Events) {
	switch s.state {
	case pfpInitial:
		if !hasAuthType(data.SupportedAuths, message.AuthPFP) {
			events.Push(sm.ErrorEvent(protoerr.ConnectionSequence, "authentication method PFP not available on server"))
			return
		}
		s.transition(events, pfpNegotiating)
	case pfpNegotiating:
		negotiate, err := pfp.NewNegotiateMsg(s.creds.FriendlyName, s.creds.FriendlyText)
		if err != nil {
			events.Push(sm.ErrorEvent(protoerr.Encoding, err.Error()))
			return
		}
		tokenData, err := encodePFP(&pfp.Msg{Negotiate: negotiate})
		if err != nil {
			events.Push(sm.ErrorEvent(protoerr.Encoding, err.Error()))
			return
		}
		token := message.NewOwnedAuthenticateTokenMsg(message.AuthPFP, tokenData)
		events.Push(sm.PacketEvent(&message.AuthenticateMsg{Token: token}))
		s.transition(events, pfpAwaitingChallenge)
	default:
		events.Push(sm.ErrorEvent(protoerr.ConnectionSequence, "unexpected call to PFPAuthenticateSM.UpdateWithoutMessage"))
	}
}

func (s *PFPAuthenticateSM) UpdateWithMessage(data *sm.Data, events *sm.Events, msg message.Message) {
	am, ok := msg.(*message.AuthenticateMsg)
	if !ok {
		events.Push(sm.ErrorEvent(protoerr.UnexpectedMessage, "PFPAuthenticateSM received an unexpected message"))
		return
	}
	switch s.state {
	case pfpAwaitingChallenge:
		s.handleChallengeOrResult(events, am)
	case pfpAwaitingResult:
		s.handleResult(events, am)
	default:
		events.Push(sm.WarnEvent(protoerr.ConnectionSequence, "unexpected call to PFPAuthenticateSM.UpdateWithMessage"))
	}
}

func (s *PFPAuthenticateSM) handleChallengeOrResult(events *sm.Events, am *message.AuthenticateMsg) {
	switch {
	case am.Token != nil:
		s.handleToken(events, am.Token)
	case am.Success != nil, am.Failure != nil:
		s.handleResult(events, am)
	default:
		events.Push(sm.ErrorEvent(protoerr.UnexpectedMessage, "PFPAuthenticateSM expected a token, success or failure message"))
	}
}

func (s *PFPAuthenticateSM) handleToken(events *sm.Events, token *message.AuthenticateTokenMsg) {
	if token.AuthType.Value() != message.AuthPFP.Value() {
		events.Push(sm.ErrorEvent(protoerr.UnexpectedMessage, "PFPAuthenticateSM received a token for a different auth method"))
		return
	}
	pfpMsg, err := pfp.Decode(codec.NewCursor(token.TokenData))
	if err != nil {
		events.Push(sm.ErrorEvent(protoerr.Decoding, err.Error()))
		return
	}
	if pfpMsg.Challenge == nil {
		events.Push(sm.ErrorEvent(protoerr.UnexpectedMessage, "PFPAuthenticateSM expected a challenge token"))
		return
	}
	if !pfpMsg.Challenge.Flags.Question() {
		// Silent accept: the server asks nothing back, so no response
		// token is sent; just keep waiting for success or failure.
		s.transition(events, pfpAwaitingResult)
		return
	}
	answer, err := s.callback.Answer(pfpMsg.Challenge.Question.String())
	if err != nil {
		events.Push(sm.ErrorEvent(protoerr.ConnectionSequence, err.Error()))
		return
	}
	response, err := pfp.NewResponseMsg(answer)
	if err != nil {
		events.Push(sm.ErrorEvent(protoerr.Encoding, err.Error()))
		return
	}
	tokenData, err := encodePFP(&pfp.Msg{Response: response})
	if err != nil {
		events.Push(sm.ErrorEvent(protoerr.Encoding, err.Error()))
		return
	}
	reply := message.NewOwnedAuthenticateTokenMsg(message.AuthPFP, tokenData)
	events.Push(sm.PacketEvent(&message.AuthenticateMsg{Token: reply}))
	s.transition(events, pfpAwaitingResult)
}

func (s *PFPAuthenticateSM) handleResult(events *sm.Events, am *message.AuthenticateMsg) {
	switch {
	case am.Success != nil:
		s.transition(events, pfpTerminated)
	case am.Failure != nil:
		s.transition(events, pfpTerminated)
		events.Push(sm.DataEvent(RetryData{Retry: am.Failure.Flags.Retry()}))
		events.Push(sm.FatalEvent(protoerr.ConnectionSequence, "PFP authentication failed"))
	default:
		events.Push(sm.WarnEvent(protoerr.ConnectionSequence, "PFPAuthenticateSM received an unexpected message"))
	}
}

// RetryData surfaces AuthenticateFailureMsg's retry bit to the host when a
// PFP attempt is rejected, so it can decide whether to prompt again.
type RetryData struct{ Retry bool }

func (RetryData) ProtoData() {}

func hasAuthType(list []message.AuthType, want message.AuthType) bool {
	for _, a := range list {
		if a.Value() == want.Value() {
			return true
		}
	}
	return false
}

func encodePFP(m *pfp.Msg) ([]byte, error) {
	var buf bytes.Buffer
	if err := m.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var _ sm.ConnectionSM = (*PFPAuthenticateSM)(nil)
