// Package sharee hosts the top-level coordinator of one connection: it
// runs the connection sequence until it settles, then hands every
// subsequent packet to the virtual channel manager while resolving
// channel names to wire ids from the negotiated channel list.
package sharee

import (
	"waykshare/channels"
	"waykshare/message"
	"waykshare/packet"
	"waykshare/protoerr"
	"waykshare/sm"
)

// Callback receives sharee-level events the coordinator itself doesn't
// need to act on.
type Callback interface {
	// OnEnterActiveState fires once, when the connection sequence settles
	// and virtual channel traffic becomes possible.
	OnEnterActiveState(data *sm.Data)
	// OnAnyMessage fires for every connection-sequence message, processed
	// or not.
	OnAnyMessage(msg message.Message)
	// OnUnprocessedMessage fires for Active-state messages the sharee
	// doesn't itself understand; an optional reply can be returned.
	OnUnprocessedMessage(msg message.Message) (message.Message, error)
}

type DummyCallback struct{}

func (DummyCallback) OnEnterActiveState(*sm.Data)                         {}
func (DummyCallback) OnAnyMessage(message.Message)                       {}
func (DummyCallback) OnUnprocessedMessage(message.Message) (message.Message, error) {
	return nil, nil
}

// State names where the coordinator is in its lifecycle.
type State int

const (
	StateConnection State = iota
	StateActive
	StateFinal
)

// Sharee coordinates the connection sequence, then the set of active
// virtual channels, producing outgoing packets and surfacing events as it
// goes.
type Sharee struct {
	state           State
	connectionSeq   sm.ConnectionSM
	channelsManager *channels.Manager
	callback        Callback
	data            *sm.Data
	channelsByID    map[uint8]message.ChannelName
}

func New(connectionSeq sm.ConnectionSM, manager *channels.Manager, data *sm.Data, callback Callback) *Sharee {
	return &Sharee{
		state:           StateConnection,
		connectionSeq:   connectionSeq,
		channelsManager: manager,
		callback:        callback,
		data:            data,
		channelsByID:    make(map[uint8]message.ChannelName),
	}
}

func (s *Sharee) State() State       { return s.state }
func (s *Sharee) IsTerminated() bool { return s.state == StateFinal }
func (s *Sharee) IsRunning() bool    { return !s.IsTerminated() }

func (s *Sharee) WaitingForPacket() bool {
	switch s.state {
	case StateConnection:
		return s.connectionSeq.WaitingForPacket()
	case StateActive:
		return s.channelsManager.WaitingForPacket()
	default:
		return false
	}
}

// UpdateWithoutBody advances whichever sub-coordinator is active on an
// idle tick and returns the packets it wants sent.
func (s *Sharee) UpdateWithoutBody() ([]*packet.Packet, error) {
	switch s.state {
	case StateConnection:
		events := &sm.Events{}
		s.connectionSeq.UpdateWithoutMessage(s.data, events)
		if s.connectionSeq.IsTerminated() {
			s.enterActiveState()
		}
		return s.resolveConnectionEvents(events)
	case StateActive:
		events := &sm.Events{}
		toSend := sm.NewChannelResponses()
		s.channelsManager.UpdateWithoutVirtMsg(s.data, events, toSend)
		return s.resolveChannelEvents(events, toSend)
	default:
		return []*packet.Packet{mustFromMessage(message.NewTerminateMsg(message.DisconnectSuccess))}, nil
	}
}

// UpdateWithBody feeds one decoded packet body to the active coordinator.
func (s *Sharee) UpdateWithBody(p *packet.Packet) ([]*packet.Packet, error) {
	if p.Virt != nil {
		return s.updateWithVirtChannel(p.Virt)
	}
	return s.updateWithMessage(p.Message)
}

func (s *Sharee) updateWithMessage(msg message.Message) ([]*packet.Packet, error) {
	switch s.state {
	case StateConnection:
		events := &sm.Events{}
		s.connectionSeq.UpdateWithMessage(s.data, events, msg)
		if s.connectionSeq.IsTerminated() {
			s.enterActiveState()
		}
		s.callback.OnAnyMessage(msg)
		return s.resolveConnectionEvents(events)
	case StateActive:
		if _, ok := msg.(*message.TerminateMsg); ok {
			s.state = StateFinal
			s.callback.OnAnyMessage(msg)
			return nil, nil
		}
		reply, err := s.callback.OnUnprocessedMessage(msg)
		s.callback.OnAnyMessage(msg)
		if err != nil || reply == nil {
			return nil, err
		}
		p, err := packet.FromMessage(reply)
		if err != nil {
			return nil, err
		}
		return []*packet.Packet{p}, nil
	default:
		return nil, protoerr.New(protoerr.Sharee, "unexpected message in final state")
	}
}

func (s *Sharee) updateWithVirtChannel(vc *message.VirtualChannel) ([]*packet.Packet, error) {
	switch s.state {
	case StateConnection:
		return nil, protoerr.New(protoerr.Sharee, "unexpected virtual channel message before the connection sequence settles")
	case StateActive:
		events := &sm.Events{}
		toSend := sm.NewChannelResponses()
		s.channelsManager.UpdateWithVirtMsg(s.data, events, toSend, vc)
		return s.resolveChannelEvents(events, toSend)
	default:
		return nil, protoerr.New(protoerr.Sharee, "unexpected virtual channel message in final state")
	}
}

func (s *Sharee) enterActiveState() {
	s.state = StateActive
	for _, def := range s.data.ChannelDefs {
		s.channelsByID[def.Flags.Value()] = def.Name
	}
	s.callback.OnEnterActiveState(s.data)
}

func (s *Sharee) resolveConnectionEvents(events *sm.Events) ([]*packet.Packet, error) {
	var packets []*packet.Packet
	for _, ev := range events.Peek() {
		switch ev.Kind {
		case sm.EventFatal, sm.EventError:
			s.state = StateFinal
			return packets, protoerr.Chain(protoerr.Sharee, ev.Err)
		case sm.EventPacketToSend:
			if ev.Message == nil {
				continue
			}
			p, err := packet.FromMessage(ev.Message)
			if err != nil {
				return packets, err
			}
			packets = append(packets, p)
		}
	}
	return packets, nil
}

func (s *Sharee) resolveChannelEvents(events *sm.Events, toSend *sm.ChannelResponses) ([]*packet.Packet, error) {
	var packets []*packet.Packet
	for _, ev := range events.Peek() {
		if ev.Kind == sm.EventFatal || ev.Kind == sm.EventError {
			s.state = StateFinal
			return packets, protoerr.Chain(protoerr.Sharee, ev.Err)
		}
	}
	for _, cr := range toSend.Peek() {
		channelID, found := s.findChannelID(cr.Name)
		if !found {
			events.Push(sm.WarnEvent(protoerr.Sharee, "channel id for "+cr.Name.String()+" not found in channels context"))
			continue
		}
		p, err := packet.FromVirtChannel(channelID, cr.Payload)
		if err != nil {
			return packets, err
		}
		packets = append(packets, p)
	}
	return packets, nil
}

// ResolveChannelName maps an open channel id back to the name it was
// opened with, satisfying packet.ChannelNameResolver so the host pump can
// decode inbound virtual-channel bodies with the right sub-decoder.
func (s *Sharee) ResolveChannelName(channelID uint8) (message.ChannelName, bool) {
	name, ok := s.channelsByID[channelID]
	return name, ok
}

func (s *Sharee) findChannelID(name message.ChannelName) (uint8, bool) {
	for id, n := range s.channelsByID {
		if n.Equal(name) {
			return id, true
		}
	}
	return 0, false
}

func mustFromMessage(m message.Message) *packet.Packet {
	p, err := packet.FromMessage(m)
	if err != nil {
		panic(err)
	}
	return p
}
