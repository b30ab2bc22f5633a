package clientchannels

import (
	"waykshare/message"
	"waykshare/message/clipboard"
	"waykshare/protoerr"
	"waykshare/sm"
)

// ClipboardCallback receives clipboard channel events and may answer with
// a message of its own to send right back down the channel (e.g.
// requesting ownership as soon as control settles, or supplying the data
// for a format once a request for it arrives). DummyClipboardCallback
// accepts every request and never replies.
type ClipboardCallback interface {
	OnControlRsp(msg *clipboard.ControlRspMsg) (*clipboard.Msg, error)
	// OnResumeReq returns true to accept the peer's resume request.
	OnResumeReq(msg *clipboard.ResumeReqMsg) bool
	OnResumeRsp(msg *clipboard.ResumeRspMsg) (*clipboard.Msg, error)
	// OnFormatListReq returns true to transfer ownership to the peer.
	OnFormatListReq(msg *clipboard.FormatListReqMsg) bool
	OnFormatListRsp(msg *clipboard.FormatListRspMsg) (*clipboard.Msg, error)
	OnFormatDataReq(msg *clipboard.FormatDataReqMsg) (*clipboard.Msg, error)
	OnFormatDataRsp(msg *clipboard.FormatDataRspMsg) (*clipboard.Msg, error)
	AutoFetchData() (*clipboard.Msg, error)
}

type DummyClipboardCallback struct{}

func (DummyClipboardCallback) OnControlRsp(*clipboard.ControlRspMsg) (*clipboard.Msg, error) {
	return nil, nil
}
func (DummyClipboardCallback) OnResumeReq(*clipboard.ResumeReqMsg) bool { return true }
func (DummyClipboardCallback) OnResumeRsp(*clipboard.ResumeRspMsg) (*clipboard.Msg, error) {
	return nil, nil
}
func (DummyClipboardCallback) OnFormatListReq(*clipboard.FormatListReqMsg) bool { return true }
func (DummyClipboardCallback) OnFormatListRsp(*clipboard.FormatListRspMsg) (*clipboard.Msg, error) {
	return nil, nil
}
func (DummyClipboardCallback) OnFormatDataReq(*clipboard.FormatDataReqMsg) (*clipboard.Msg, error) {
	return nil, nil
}
func (DummyClipboardCallback) OnFormatDataRsp(*clipboard.FormatDataRspMsg) (*clipboard.Msg, error) {
	return nil, nil
}
func (DummyClipboardCallback) AutoFetchData() (*clipboard.Msg, error) { return nil, nil }

// ClipboardData is the shared ownership/auto-fetch state the clipboard
// machine and its host application both consult.
type ClipboardData struct {
	isOwner    bool
	autoFetch  bool
	sequenceID uint16
}

func NewClipboardData() *ClipboardData { return &ClipboardData{autoFetch: true} }

func (d *ClipboardData) IsOwner() bool           { return d.isOwner }
func (d *ClipboardData) IsAutoFetchMode() bool   { return d.autoFetch }
func (d *ClipboardData) SetAutoFetch(v bool)     { d.autoFetch = v }
func (d *ClipboardData) CurrentSequenceID() uint16 { return d.sequenceID }
func (d *ClipboardData) nextSequenceID() uint16 {
	id := d.sequenceID
	d.sequenceID++
	return id
}

type clipboardState int

const (
	clipboardInitial clipboardState = iota
	clipboardCapabilities
	clipboardDisabled
	clipboardEnabled
	clipboardAutoFetch
	clipboardTerminated
)

// ClipboardSM drives the clipboard virtual channel: a capability handshake,
// then ownership control where exactly one side advertises formats and the
// other pulls data for the one it wants.
type ClipboardSM struct {
	state    clipboardState
	data     *ClipboardData
	callback ClipboardCallback
}

func NewClipboardSM(data *ClipboardData, callback ClipboardCallback) *ClipboardSM {
	return &ClipboardSM{data: data, callback: callback}
}

func (s *ClipboardSM) ChannelName() message.ChannelName { return message.ChannelNameClipboard }
func (s *ClipboardSM) IsTerminated() bool                { return s.state == clipboardTerminated }

func (s *ClipboardSM) WaitingForPacket() bool {
	switch s.state {
	case clipboardCapabilities, clipboardDisabled, clipboardEnabled:
		return true
	default:
		return false
	}
}

func (s *ClipboardSM) UpdateWithoutChanMsg(_ *sm.Data, events *sm.Events, toSend *sm.ChannelResponses) {
	switch s.state {
	case clipboardInitial:
		s.state = clipboardCapabilities
		toSend.Push(message.NewClipboardVirtualChannel(&clipboard.Msg{CapabilitiesReq: clipboard.NewCapabilitiesReqMsg()}))
	case clipboardAutoFetch:
		s.state = clipboardEnabled
		reply, err := s.callback.AutoFetchData()
		s.pushReply(events, toSend, reply, err)
	default:
		s.unexpectedWithoutCall(events)
	}
}

func (s *ClipboardSM) UpdateWithChanMsg(_ *sm.Data, events *sm.Events, toSend *sm.ChannelResponses, vc *message.VirtualChannel) {
	if vc.Clipboard == nil {
		s.unexpectedMessage(events)
		return
	}
	msg := vc.Clipboard
	switch s.state {
	case clipboardCapabilities:
		if msg.CapabilitiesRsp == nil {
			s.unexpectedMessage(events)
			return
		}
		if msg.CapabilitiesRsp.Flags.Failure() {
			events.Push(sm.ErrorEvent(protoerr.VirtualChannel, "clipboard capabilities exchange failed"))
			return
		}
		s.state = clipboardDisabled
		toSend.Push(message.NewClipboardVirtualChannel(&clipboard.Msg{
			ControlReq: clipboard.NewControlReqMsg(clipboard.ControlAuto),
		}))
	case clipboardDisabled:
		s.updateDisabled(events, toSend, msg)
	case clipboardEnabled:
		s.updateEnabled(events, toSend, msg)
	default:
		s.unexpectedWithCall(events)
	}
}

func (s *ClipboardSM) updateDisabled(events *sm.Events, toSend *sm.ChannelResponses, msg *clipboard.Msg) {
	switch {
	case msg.ControlRsp != nil:
		if msg.ControlRsp.Flags.Failure() {
			events.Push(sm.ErrorEvent(protoerr.VirtualChannel, "clipboard control setting failed"))
			return
		}
		s.state = clipboardEnabled
		reply, err := s.callback.OnControlRsp(msg.ControlRsp)
		s.pushReply(events, toSend, reply, err)
	case msg.ResumeReq != nil:
		if s.callback.OnResumeReq(msg.ResumeReq) {
			s.state = clipboardEnabled
			toSend.Push(message.NewClipboardVirtualChannel(&clipboard.Msg{ResumeRsp: clipboard.NewResumeRspMsg()}))
		} else {
			toSend.Push(message.NewClipboardVirtualChannel(&clipboard.Msg{
				ResumeRsp: clipboard.NewResumeRspMsgWithFlags(clipboard.FailureResponseFlags()),
			}))
		}
	case msg.ResumeRsp != nil:
		if msg.ResumeRsp.Flags.Failure() {
			events.Push(sm.ErrorEvent(protoerr.VirtualChannel, "clipboard resume failed"))
			return
		}
		s.state = clipboardEnabled
		reply, err := s.callback.OnResumeRsp(msg.ResumeRsp)
		s.pushReply(events, toSend, reply, err)
	default:
		s.unexpectedMessage(events)
	}
}

func (s *ClipboardSM) updateEnabled(events *sm.Events, toSend *sm.ChannelResponses, msg *clipboard.Msg) {
	switch {
	case msg.SuspendRsp != nil:
		if msg.SuspendRsp.Flags.Failure() {
			events.Push(sm.ErrorEvent(protoerr.VirtualChannel, "clipboard suspend failed"))
			return
		}
		s.state = clipboardDisabled
	case msg.FormatListReq != nil:
		if s.callback.OnFormatListReq(msg.FormatListReq) {
			s.data.isOwner = false
			if s.data.autoFetch {
				s.state = clipboardAutoFetch
			}
			toSend.Push(message.NewClipboardVirtualChannel(&clipboard.Msg{
				FormatListRsp: clipboard.NewFormatListRspMsg(s.data.nextSequenceID()),
			}))
		} else {
			toSend.Push(message.NewClipboardVirtualChannel(&clipboard.Msg{
				FormatListRsp: clipboard.NewFormatListRspMsgWithFlags(s.data.nextSequenceID(), clipboard.FailureResponseFlags()),
			}))
		}
	case msg.FormatListRsp != nil:
		if msg.FormatListRsp.Flags.Failure() {
			events.Push(sm.ErrorEvent(protoerr.VirtualChannel, "clipboard ownership transfer refused by peer"))
			return
		}
		s.data.isOwner = true
		reply, err := s.callback.OnFormatListRsp(msg.FormatListRsp)
		s.pushReply(events, toSend, reply, err)
	case msg.FormatDataReq != nil:
		if s.data.isOwner || s.data.autoFetch {
			reply, err := s.callback.OnFormatDataReq(msg.FormatDataReq)
			s.pushReply(events, toSend, reply, err)
		} else {
			events.Push(sm.WarnEvent(protoerr.VirtualChannel, "received format data request while not owner and auto fetch disabled"))
		}
	case msg.FormatDataRsp != nil:
		if s.data.isOwner {
			events.Push(sm.WarnEvent(protoerr.VirtualChannel, "received format data response while owner"))
		} else {
			reply, err := s.callback.OnFormatDataRsp(msg.FormatDataRsp)
			s.pushReply(events, toSend, reply, err)
		}
	default:
		s.unexpectedMessage(events)
	}
}

func (s *ClipboardSM) pushReply(events *sm.Events, toSend *sm.ChannelResponses, reply *clipboard.Msg, err error) {
	if err != nil {
		events.Push(sm.ErrorEvent(protoerr.VirtualChannel, err.Error()))
		return
	}
	if reply != nil {
		toSend.Push(message.NewClipboardVirtualChannel(reply))
	}
}

func (s *ClipboardSM) unexpectedWithCall(events *sm.Events) {
	events.Push(sm.ErrorEvent(protoerr.VirtualChannel, "unexpected call to ClipboardSM.UpdateWithChanMsg"))
}
func (s *ClipboardSM) unexpectedWithoutCall(events *sm.Events) {
	events.Push(sm.ErrorEvent(protoerr.VirtualChannel, "unexpected call to ClipboardSM.UpdateWithoutChanMsg"))
}
func (s *ClipboardSM) unexpectedMessage(events *sm.Events) {
	events.Push(sm.ErrorEvent(protoerr.UnexpectedMessage, "ClipboardSM received an unexpected message"))
}

var _ sm.VirtualChannelSM = (*ClipboardSM)(nil)
