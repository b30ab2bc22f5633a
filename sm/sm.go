// Package sm defines the event-driven state machine contracts shared by
// the connection sequence and the virtual channel machines: the events a
// machine emits in response to a packet or a tick, and the mutable data
// machines exchange information through as the connection progresses.
package sm

import (
	"waykshare/message"
	"waykshare/protoerr"
)

// EventKind tags which field of Event is meaningful.
type EventKind int

const (
	EventStateTransition EventKind = iota
	EventPacketToSend
	EventData
	EventWarn
	EventError
	EventFatal
)

func (k EventKind) String() string {
	switch k {
	case EventStateTransition:
		return "state-transition"
	case EventPacketToSend:
		return "packet-to-send"
	case EventData:
		return "data"
	case EventWarn:
		return "warn"
	case EventError:
		return "error"
	case EventFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// ProtoState is implemented by a machine's state marker so it can travel
// inside a StateTransition event without the event package needing to
// know every concrete state type.
type ProtoState interface{ ProtoState() }

// ProtoData is implemented by auxiliary values machines want to hand to
// their caller without going through a typed return value, e.g.
// auth.RetryData, the retry bit of a rejected authentication attempt.
type ProtoData interface{ ProtoData() }

// Event is one outcome of a single Update call. Exactly the field named
// by Kind is meaningful.
type Event struct {
	Kind       EventKind
	State      ProtoState
	Message    message.Message
	ChannelMsg *message.VirtualChannel
	ChannelID  uint8
	Data       ProtoData
	Err        *protoerr.ProtoError
}

// String renders an event for logging: the kind, plus whatever detail
// the kind carries (the error chain for Warn/Error/Fatal, the message
// type for PacketToSend).
func (e Event) String() string {
	switch e.Kind {
	case EventWarn, EventError, EventFatal:
		if e.Err != nil {
			return e.Kind.String() + ": " + e.Err.Error()
		}
		return e.Kind.String()
	case EventPacketToSend:
		if e.Message != nil {
			return e.Kind.String() + ": " + e.Message.MessageType().String()
		}
		if e.ChannelMsg != nil {
			return e.Kind.String() + ": channel"
		}
		return e.Kind.String()
	default:
		return e.Kind.String()
	}
}

func TransitionEvent(s ProtoState) Event { return Event{Kind: EventStateTransition, State: s} }
func PacketEvent(m message.Message) Event {
	return Event{Kind: EventPacketToSend, Message: m}
}
func ChannelPacketEvent(channelID uint8, vc *message.VirtualChannel) Event {
	return Event{Kind: EventPacketToSend, ChannelID: channelID, ChannelMsg: vc}
}
func DataEvent(d ProtoData) Event { return Event{Kind: EventData, Data: d} }
func WarnEvent(kind protoerr.Kind, desc string) Event {
	return Event{Kind: EventWarn, Err: protoerr.New(kind, desc)}
}
func ErrorEvent(kind protoerr.Kind, desc string) Event {
	return Event{Kind: EventError, Err: protoerr.New(kind, desc)}
}
func FatalEvent(kind protoerr.Kind, desc string) Event {
	return Event{Kind: EventFatal, Err: protoerr.New(kind, desc)}
}

// Events accumulates the outcomes of one Update call in emission order.
type Events struct{ items []Event }

func (e *Events) Push(ev Event)   { e.items = append(e.items, ev) }
func (e *Events) Peek() []Event   { return e.items }
func (e *Events) HasFatal() bool {
	for _, ev := range e.items {
		if ev.Kind == EventFatal {
			return true
		}
	}
	return false
}

// Data is the mutable context the connection sequence and its sub-machines
// read and write as they negotiate: the locally supported auth methods,
// the capability set this side advertises, and the channel list this side
// wants to open. Extra carries machine-specific scratch data keyed by a
// caller-chosen string so machines don't need to agree on a shared struct
// for every ad hoc value they want to pass along.
type Data struct {
	SupportedAuths []message.AuthType
	Capabilities   []message.CapabilityEntry
	ChannelDefs    []message.ChannelDef
	extra          map[string]interface{}
}

func NewData(auths []message.AuthType, caps []message.CapabilityEntry, channels []message.ChannelDef) *Data {
	return &Data{SupportedAuths: auths, Capabilities: caps, ChannelDefs: channels}
}

func (d *Data) ExtraSet(key string, val interface{}) {
	if d.extra == nil {
		d.extra = make(map[string]interface{})
	}
	d.extra[key] = val
}

func (d *Data) ExtraGet(key string) (interface{}, bool) {
	v, ok := d.extra[key]
	return v, ok
}

func (d *Data) ExtraRemove(key string) {
	delete(d.extra, key)
}

func (d *Data) ExtraClear() {
	d.extra = nil
}

// ConnectionSM is a state machine participating in the client connection
// sequence: handshake, negotiate, authenticate, associate, capabilities,
// and channels each implement it, and clientconnection.SeqSM coordinates
// them behind the same interface.
type ConnectionSM interface {
	IsTerminated() bool
	WaitingForPacket() bool
	UpdateWithoutMessage(data *Data, events *Events)
	UpdateWithMessage(data *Data, events *Events, msg message.Message)
}

// DummyConnectionSM is the placeholder installed where the negotiated
// authenticate machine has already been swapped out into active duty;
// any call into it indicates a coordinator bug, so it only ever warns.
type DummyConnectionSM struct{}

func (DummyConnectionSM) IsTerminated() bool     { return true }
func (DummyConnectionSM) WaitingForPacket() bool { return false }
func (DummyConnectionSM) UpdateWithoutMessage(_ *Data, events *Events) {
	events.Push(WarnEvent(protoerr.Sharee, "call to DummyConnectionSM.UpdateWithoutMessage"))
}
func (DummyConnectionSM) UpdateWithMessage(_ *Data, events *Events, _ message.Message) {
	events.Push(WarnEvent(protoerr.Sharee, "call to DummyConnectionSM.UpdateWithMessage"))
}

// ChannelResponses collects the virtual channel payloads a channel
// machine wants to send back during one Update call, tagged with the
// channel name they belong to.
type ChannelResponses struct {
	inner              []channelResponse
	currentChannelName message.ChannelName
}

type channelResponse struct {
	Name    message.ChannelName
	Payload *message.VirtualChannel
}

func NewChannelResponses() *ChannelResponses {
	return &ChannelResponses{currentChannelName: message.UnknownChannelName("unbound")}
}

func (r *ChannelResponses) SetCurrentChannelName(name message.ChannelName) { r.currentChannelName = name }
func (r *ChannelResponses) Push(vc *message.VirtualChannel) {
	r.inner = append(r.inner, channelResponse{Name: r.currentChannelName, Payload: vc})
}
func (r *ChannelResponses) Peek() []channelResponse { return r.inner }

// VirtualChannelSM is a state machine owning one named virtual channel
// (clipboard, chat, ...), managed by channels.Manager.
type VirtualChannelSM interface {
	ChannelName() message.ChannelName
	IsTerminated() bool
	WaitingForPacket() bool
	UpdateWithoutChanMsg(data *Data, events *Events, toSend *ChannelResponses)
	UpdateWithChanMsg(data *Data, events *Events, toSend *ChannelResponses, msg *message.VirtualChannel)
}
