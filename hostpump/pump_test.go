package hostpump

import (
	"bytes"
	"context"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"waykshare/channels"
	"waykshare/message"
	"waykshare/message/chat"
	"waykshare/message/clipboard"
	"waykshare/packet"
	"waykshare/sharee"
	"waykshare/sm"
)

// loopbackRW is a minimal io.ReadWriter around two independent buffers,
// enough to exercise Pump without a real transport.
type loopbackRW struct {
	in  *bytes.Buffer
	out *bytes.Buffer
}

func (l *loopbackRW) Read(p []byte) (int, error)  { return l.in.Read(p) }
func (l *loopbackRW) Write(p []byte) (int, error) { return l.out.Write(p) }

// stubConnSM terminates immediately, optionally reporting a fatal event so
// a Sharee built around it reaches its Final state without needing a real
// connection sequence.
type stubConnSM struct{ fatal bool }

func (s *stubConnSM) IsTerminated() bool     { return true }
func (s *stubConnSM) WaitingForPacket() bool { return false }
func (s *stubConnSM) UpdateWithoutMessage(_ *sm.Data, events *sm.Events) {
	if s.fatal {
		events.Push(sm.FatalEvent(0, "boom"))
	}
}
func (s *stubConnSM) UpdateWithMessage(_ *sm.Data, events *sm.Events, _ message.Message) {
	s.UpdateWithoutMessage(nil, events)
}

var _ sm.ConnectionSM = (*stubConnSM)(nil)

// pendingConnSM never terminates and always waits for a packet, so a Sharee
// built around it keeps Run's read loop busy until the context is
// cancelled.
type pendingConnSM struct{}

func (pendingConnSM) IsTerminated() bool     { return false }
func (pendingConnSM) WaitingForPacket() bool { return true }
func (pendingConnSM) UpdateWithoutMessage(_ *sm.Data, _ *sm.Events)                 {}
func (pendingConnSM) UpdateWithMessage(_ *sm.Data, _ *sm.Events, _ message.Message) {}

var _ sm.ConnectionSM = pendingConnSM{}

func newTerminatedSharee(t *testing.T) *sharee.Sharee {
	t.Helper()
	conn := &stubConnSM{fatal: true}
	mgr := channels.NewManager()
	data := sm.NewData(nil, nil, nil)
	s := sharee.New(conn, mgr, data, sharee.DummyCallback{})
	if _, err := s.UpdateWithoutBody(); err == nil {
		t.Fatal("expected the fatal stub to surface an error")
	}
	if !s.IsTerminated() {
		t.Fatal("expected the sharee to be terminated")
	}
	return s
}

func TestRunReturnsImmediatelyOnceShareeIsTerminated(t *testing.T) {
	sh := newTerminatedSharee(t)
	rw := &loopbackRW{in: &bytes.Buffer{}, out: &bytes.Buffer{}}
	p := New(rw, sh, nil)

	done := make(chan error, 1)
	go func() { done <- p.Run(context.Background()) }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() = %v, want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return promptly for a terminated sharee")
	}
}

func TestRunRespectsContextCancellation(t *testing.T) {
	mgr := channels.NewManager()
	data := sm.NewData(nil, nil, nil)
	sh := sharee.New(pendingConnSM{}, mgr, data, sharee.DummyCallback{})

	rw := &loopbackRW{in: &bytes.Buffer{}, out: &bytes.Buffer{}}
	p := New(rw, sh, nil, WithReadBufferSize(16))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Error("expected Run to report the cancellation error")
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}

func TestOptionsOverrideDefaults(t *testing.T) {
	p := New(&loopbackRW{in: &bytes.Buffer{}, out: &bytes.Buffer{}}, nil, nil,
		WithPurgeSchedule("@every 5m"),
		WithReadBufferSize(99),
	)
	if p.purgeCron != "@every 5m" {
		t.Errorf("purgeCron = %q, want @every 5m", p.purgeCron)
	}
	if p.readBufSize != 99 {
		t.Errorf("readBufSize = %d, want 99", p.readBufSize)
	}
}

func chatTextVirt(t *testing.T) *message.VirtualChannel {
	t.Helper()
	m, err := chat.NewTextMsg(0, 1, "hi")
	if err != nil {
		t.Fatalf("NewTextMsg: %v", err)
	}
	return message.NewChatVirtualChannel(&chat.Msg{Text: m})
}

func clipboardFormatDataVirt() *message.VirtualChannel {
	rsp := clipboard.NewOwnedFormatDataRspMsg(1, 1, []byte("data"))
	return message.NewClipboardVirtualChannel(&clipboard.Msg{FormatDataRsp: rsp})
}

func mustFromVirtChannel(t *testing.T, channelID uint8, vc *message.VirtualChannel) *packet.Packet {
	t.Helper()
	pkt, err := packet.FromVirtChannel(channelID, vc)
	if err != nil {
		t.Fatalf("FromVirtChannel: %v", err)
	}
	return pkt
}

func mustFromMessage(t *testing.T, m message.Message) *packet.Packet {
	t.Helper()
	pkt, err := packet.FromMessage(m)
	if err != nil {
		t.Fatalf("FromMessage: %v", err)
	}
	return pkt
}

func TestAllowPassesNonVirtualChannelPackets(t *testing.T) {
	p := &Pump{}
	pkt := mustFromMessage(t, message.NewTerminateMsg(message.DisconnectByPeer))
	if !p.allow(pkt) {
		t.Error("expected a non-virtual-channel packet to always be allowed")
	}
}

func TestAllowThrottlesChatTextWhenLimiterDenies(t *testing.T) {
	limiter := rate.NewLimiter(0, 0) // never allows
	p := &Pump{limits: Limits{ChatText: limiter}}

	pkt := mustFromVirtChannel(t, 1, chatTextVirt(t))
	if p.allow(pkt) {
		t.Error("expected a zero-rate limiter to throttle the chat text send")
	}
}

func TestAllowLetsClipboardFormatDataThroughWithoutLimiter(t *testing.T) {
	p := &Pump{}
	pkt := mustFromVirtChannel(t, 1, clipboardFormatDataVirt())
	if !p.allow(pkt) {
		t.Error("expected no limiter configured to mean unthrottled")
	}
}

func TestIsChatTextAndIsClipboardFormatDataClassifyCorrectly(t *testing.T) {
	if !isChatText(chatTextVirt(t)) {
		t.Error("expected a chat Text virtual channel to be classified as chat text")
	}
	if isClipboardFormatData(chatTextVirt(t)) {
		t.Error("did not expect a chat virtual channel to be classified as clipboard format data")
	}
	if !isClipboardFormatData(clipboardFormatDataVirt()) {
		t.Error("expected a clipboard FormatDataRsp to be classified as clipboard format data")
	}
}

func TestWritePacketsDropsThrottledPacketsButWritesTheRest(t *testing.T) {
	rw := &loopbackRW{in: &bytes.Buffer{}, out: &bytes.Buffer{}}
	p := New(rw, nil, nil, WithLimits(Limits{ChatText: rate.NewLimiter(0, 0)}))

	throttled := mustFromVirtChannel(t, 1, chatTextVirt(t))
	allowed := mustFromMessage(t, message.NewTerminateMsg(message.DisconnectByPeer))

	if err := p.writePackets([]*packet.Packet{throttled, allowed}); err != nil {
		t.Fatalf("writePackets: %v", err)
	}
	if rw.out.Len() == 0 {
		t.Error("expected the allowed packet to be written even though the other was throttled")
	}
}
