// Package channels hosts the virtual channel state machines active on a
// connection (clipboard, chat, ...) behind a single dispatch point keyed
// by channel name.
package channels

import (
	"waykshare/message"
	"waykshare/protoerr"
	"waykshare/sm"
)

type entry struct {
	name    message.ChannelName
	machine sm.VirtualChannelSM
}

// Manager owns every active virtual channel machine and routes inbound
// messages and idle ticks to them. Machines are kept in an insertion-
// ordered slice, not a map: UpdateWithoutVirtMsg must try machines in a
// stable, caller-controlled order so the first one ready to act always
// wins the tick, the same way the upstream implementation's ordered map
// does.
type Manager struct {
	entries []entry
}

func NewManager() *Manager { return &Manager{} }

// AddChannelSM registers a machine under its own ChannelName, replacing
// any machine already registered for that name.
func (m *Manager) AddChannelSM(machine sm.VirtualChannelSM) {
	name := machine.ChannelName()
	for i, e := range m.entries {
		if e.name.Equal(name) {
			m.entries[i].machine = machine
			return
		}
	}
	m.entries = append(m.entries, entry{name: name, machine: machine})
}

// UpdateWithVirtMsg routes an inbound virtual channel payload to the
// machine registered for its channel name. A name with no registered
// machine is reported as a warning.
func (m *Manager) UpdateWithVirtMsg(data *sm.Data, events *sm.Events, toSend *sm.ChannelResponses, vc *message.VirtualChannel) {
	name := vc.GetName()
	for _, e := range m.entries {
		if e.name.Equal(name) {
			toSend.SetCurrentChannelName(name)
			e.machine.UpdateWithChanMsg(data, events, toSend, vc)
			return
		}
	}
	events.Push(sm.WarnEvent(protoerr.ChannelsManager, "state machine for channel "+name.String()+" not found"))
}

// UpdateWithoutVirtMsg advances the first managed machine that isn't
// currently waiting for a packet. It is a no-op warn, not a fatal error,
// when every machine is idle-waiting: callers poll this opportunistically
// on every tick of the connection.
func (m *Manager) UpdateWithoutVirtMsg(data *sm.Data, events *sm.Events, toSend *sm.ChannelResponses) {
	for _, e := range m.entries {
		if !e.machine.WaitingForPacket() {
			toSend.SetCurrentChannelName(e.name)
			e.machine.UpdateWithoutChanMsg(data, events, toSend)
			return
		}
	}
	events.Push(sm.WarnEvent(protoerr.ChannelsManager, "no channel state machine is ready to update without message"))
}

// WaitingForPacket reports whether every managed machine is currently
// waiting for a packet, i.e. none of them has idle work to do.
func (m *Manager) WaitingForPacket() bool {
	for _, e := range m.entries {
		if !e.machine.WaitingForPacket() {
			return false
		}
	}
	return true
}
