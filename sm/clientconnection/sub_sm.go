package clientconnection

import (
	"waykshare/message"
	"waykshare/protoerr"
	"waykshare/sm"
)

type basicState int

const (
	basicInitial basicState = iota
	basicReady
	basicTerminated
)

// HandshakeSM exchanges the initial success handshake and checks the
// peer's reply before handing control to negotiate.
type HandshakeSM struct{ state basicState }

func NewHandshakeSM() *HandshakeSM { return &HandshakeSM{} }

func (s *HandshakeSM) IsTerminated() bool     { return s.state == basicTerminated }
func (s *HandshakeSM) WaitingForPacket() bool { return s.state == basicReady }

func (s *HandshakeSM) UpdateWithoutMessage(_ *sm.Data, events *sm.Events) {
	if s.state != basicInitial {
		events.Push(sm.ErrorEvent(protoerr.ConnectionSequence, "unexpected call to HandshakeSM.UpdateWithoutMessage"))
		return
	}
	s.state = basicReady
	events.Push(sm.PacketEvent(message.NewSuccessHandshakeMsg()))
}

func (s *HandshakeSM) UpdateWithMessage(_ *sm.Data, events *sm.Events, msg message.Message) {
	if s.state != basicReady {
		events.Push(sm.ErrorEvent(protoerr.ConnectionSequence, "unexpected call to HandshakeSM.UpdateWithMessage"))
		return
	}
	hs, ok := msg.(*message.HandshakeMsg)
	if !ok {
		events.Push(sm.ErrorEvent(protoerr.UnexpectedMessage, "HandshakeSM received an unexpected message"))
		return
	}
	if hs.Status.Code == uint16(message.StatusCodeSuccess) {
		s.state = basicTerminated
		return
	}
	switch message.DisconnectStatusCode(hs.Status.Code) {
	case message.DisconnectFailure, message.DisconnectIncompatible:
		events.Push(sm.FatalEvent(protoerr.ConnectionSequence, "handshake failed"))
	default:
		events.Push(sm.ErrorEvent(protoerr.ConnectionSequence, "handshake failed"))
	}
}

// NegotiateSM advertises the locally supported auth methods and narrows
// data.SupportedAuths down to whatever the peer also supports.
type NegotiateSM struct{ state basicState }

func NewNegotiateSM() *NegotiateSM { return &NegotiateSM{} }

func (s *NegotiateSM) IsTerminated() bool     { return s.state == basicTerminated }
func (s *NegotiateSM) WaitingForPacket() bool { return s.state == basicReady }

func (s *NegotiateSM) UpdateWithoutMessage(data *sm.Data, events *sm.Events) {
	if s.state != basicInitial {
		events.Push(sm.ErrorEvent(protoerr.ConnectionSequence, "unexpected call to NegotiateSM.UpdateWithoutMessage"))
		return
	}
	s.state = basicReady
	flags := message.NegotiateFlags{}
	flags = flags.WithSRPExtended(true)
	events.Push(sm.PacketEvent(message.NewNegotiateMsg(flags, data.SupportedAuths)))
}

func (s *NegotiateSM) UpdateWithMessage(data *sm.Data, events *sm.Events, msg message.Message) {
	if s.state != basicReady {
		events.Push(sm.ErrorEvent(protoerr.ConnectionSequence, "unexpected call to NegotiateSM.UpdateWithMessage"))
		return
	}
	neg, ok := msg.(*message.NegotiateMsg)
	if !ok {
		events.Push(sm.ErrorEvent(protoerr.UnexpectedMessage, "NegotiateSM received an unexpected message"))
		return
	}
	data.SupportedAuths = message.IntersectAuthTypes(data.SupportedAuths, neg.AuthList.Items)
	s.state = basicTerminated
}

// AssociateSM binds the connection to a (possibly pre-existing) session.
type associateState int

const (
	associateWaitInfo associateState = iota
	associateWaitResponse
	associateTerminated
)

type AssociateSM struct{ state associateState }

func NewAssociateSM() *AssociateSM { return &AssociateSM{} }

func (s *AssociateSM) IsTerminated() bool     { return s.state == associateTerminated }
func (s *AssociateSM) WaitingForPacket() bool { return !s.IsTerminated() }

func (s *AssociateSM) UpdateWithoutMessage(_ *sm.Data, events *sm.Events) {
	events.Push(sm.ErrorEvent(protoerr.ConnectionSequence, "unexpected call to AssociateSM.UpdateWithoutMessage"))
}

func (s *AssociateSM) UpdateWithMessage(_ *sm.Data, events *sm.Events, msg message.Message) {
	as, ok := msg.(*message.AssociateMsg)
	if !ok {
		events.Push(sm.ErrorEvent(protoerr.UnexpectedMessage, "AssociateSM received an unexpected message"))
		return
	}
	switch s.state {
	case associateWaitInfo:
		if as.Info == nil {
			events.Push(sm.ErrorEvent(protoerr.UnexpectedMessage, "AssociateSM expected an Info message"))
			return
		}
		s.state = associateWaitResponse
		if as.Info.Flags.Active() {
			return
		}
		events.Push(sm.PacketEvent(&message.AssociateMsg{Request: message.NewAssociateRequestMsg(message.AssociateRequestFlags{})}))
	case associateWaitResponse:
		if as.Response == nil {
			events.Push(sm.ErrorEvent(protoerr.UnexpectedMessage, "AssociateSM expected a Response message"))
			return
		}
		if as.Response.Status.Code == uint16(message.StatusCodeSuccess) {
			s.state = associateTerminated
			return
		}
		events.Push(sm.FatalEvent(protoerr.ConnectionSequence, "association failed"))
	default:
		events.Push(sm.ErrorEvent(protoerr.ConnectionSequence, "unexpected call to AssociateSM.UpdateWithMessage in terminated state"))
	}
}

// CapabilitiesSM exchanges capability sets once, replying with the
// locally advertised set as soon as the peer's arrives.
type CapabilitiesSM struct{ terminated bool }

func NewCapabilitiesSM() *CapabilitiesSM { return &CapabilitiesSM{} }

func (s *CapabilitiesSM) IsTerminated() bool     { return s.terminated }
func (s *CapabilitiesSM) WaitingForPacket() bool { return !s.terminated }

func (s *CapabilitiesSM) UpdateWithoutMessage(_ *sm.Data, events *sm.Events) {
	events.Push(sm.ErrorEvent(protoerr.ConnectionSequence, "unexpected call to CapabilitiesSM.UpdateWithoutMessage"))
}

func (s *CapabilitiesSM) UpdateWithMessage(data *sm.Data, events *sm.Events, msg message.Message) {
	if s.terminated {
		events.Push(sm.ErrorEvent(protoerr.ConnectionSequence, "unexpected call to CapabilitiesSM.UpdateWithMessage in terminated state"))
		return
	}
	if _, ok := msg.(*message.CapabilitiesMsg); !ok {
		events.Push(sm.ErrorEvent(protoerr.UnexpectedMessage, "CapabilitiesSM received an unexpected message"))
		return
	}
	s.terminated = true
	events.Push(sm.PacketEvent(message.NewCapabilitiesMsg(data.Capabilities)))
}

// ChannelsSM requests the server's channel list, prunes locally wanted
// channels the server doesn't have, opens what remains, then activates.
type channelPairingState int

const (
	channelSendListRequest channelPairingState = iota
	channelWaitListResponse
	channelSendOpenRequest
	channelWaitOpenResponse
	channelTerminated
)

type ChannelsSM struct{ state channelPairingState }

func NewChannelsSM() *ChannelsSM { return &ChannelsSM{} }

func (s *ChannelsSM) IsTerminated() bool { return s.state == channelTerminated }
func (s *ChannelsSM) WaitingForPacket() bool {
	return s.state == channelWaitListResponse || s.state == channelWaitOpenResponse
}

func (s *ChannelsSM) UpdateWithoutMessage(data *sm.Data, events *sm.Events) {
	switch s.state {
	case channelSendListRequest:
		s.state = channelWaitListResponse
		events.Push(sm.PacketEvent(message.NewChannelMsg(message.ChannelListRequest, data.ChannelDefs)))
	case channelSendOpenRequest:
		s.state = channelWaitOpenResponse
		events.Push(sm.PacketEvent(message.NewChannelMsg(message.ChannelOpenRequest, data.ChannelDefs)))
	default:
		events.Push(sm.ErrorEvent(protoerr.ConnectionSequence, "unexpected call to ChannelsSM.UpdateWithoutMessage"))
	}
}

func (s *ChannelsSM) UpdateWithMessage(data *sm.Data, events *sm.Events, msg message.Message) {
	ch, ok := msg.(*message.ChannelMsg)
	if !ok {
		events.Push(sm.ErrorEvent(protoerr.UnexpectedMessage, "ChannelsSM received an unexpected message"))
		return
	}
	switch s.state {
	case channelWaitListResponse:
		available := make(map[string]bool, len(ch.ChannelList.Items))
		for _, def := range ch.ChannelList.Items {
			available[def.Name.String()] = true
		}
		kept := data.ChannelDefs[:0:0]
		for _, def := range data.ChannelDefs {
			if available[def.Name.String()] {
				kept = append(kept, def)
			} else {
				events.Push(sm.WarnEvent(protoerr.ChannelsManager, "unavailable channel on server ignored: "+def.Name.String()))
			}
		}
		data.ChannelDefs = kept
		s.state = channelSendOpenRequest
	case channelWaitOpenResponse:
		data.ChannelDefs = ch.ChannelList.Items
		s.state = channelTerminated
		events.Push(sm.PacketEvent(message.NewActivateMsg()))
	default:
		events.Push(sm.ErrorEvent(protoerr.ConnectionSequence, "unexpected call to ChannelsSM.UpdateWithMessage"))
	}
}
