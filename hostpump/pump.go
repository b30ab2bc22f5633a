// Package hostpump drives one sharee connection end to end: it owns the
// transport boundary, decodes bytes into packets through an accumulator,
// feeds them to a sharee, writes back whatever packets the sharee wants
// sent, and paces the maintenance work (accumulator purges, outbound
// chat/clipboard flood control) the core state machines don't do
// themselves.
package hostpump

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"

	"waykshare/codec"
	"waykshare/header"
	"waykshare/message"
	"waykshare/packet"
	"waykshare/sharee"
)

// defaultPurgeCron sweeps the accumulator every minute; a session that
// never completes a packet still gets its stale bytes reclaimed.
const defaultPurgeCron = "@every 1m"

// idlePollInterval is how often Run checks for outbound work (timer
// ticks, idle state-machine updates) while no bytes are available to
// read.
const idlePollInterval = 20 * time.Millisecond

// Limits configures the outbound flood guards. A nil limiter disables
// throttling for that channel.
type Limits struct {
	ChatText        *rate.Limiter
	ClipboardFormat *rate.Limiter
}

// Pump wires a Sharee to a byte transport. One Pump serves one
// connection and is not safe for concurrent use.
type Pump struct {
	rw          io.ReadWriter
	sh          *sharee.Sharee
	acc         *packet.Accumulator
	logger      *log.Logger
	limits      Limits
	purgeCron   string
	readBufSize int
}

// Option adjusts a Pump at construction time.
type Option func(*Pump)

// WithLogger overrides the default logger (log.Default()).
func WithLogger(l *log.Logger) Option {
	return func(p *Pump) { p.logger = l }
}

// WithLimits installs outbound flood guards for chat text and clipboard
// format-data sends.
func WithLimits(l Limits) Option {
	return func(p *Pump) { p.limits = l }
}

// WithPurgeSchedule overrides the default "@every 1m" accumulator purge
// cadence with a cron expression, robfig/cron/v3 syntax.
func WithPurgeSchedule(expr string) Option {
	return func(p *Pump) { p.purgeCron = expr }
}

// WithReadBufferSize overrides the default per-read buffer size.
func WithReadBufferSize(n int) Option {
	return func(p *Pump) { p.readBufSize = n }
}

// New builds a Pump over rw, driving sh. now feeds the accumulator's
// staleness clock; pass nil to use time.Now.
func New(rw io.ReadWriter, sh *sharee.Sharee, now func() time.Time, opts ...Option) *Pump {
	p := &Pump{
		rw:          rw,
		sh:          sh,
		acc:         packet.NewAccumulator(now),
		logger:      log.Default(),
		purgeCron:   defaultPurgeCron,
		readBufSize: 4096,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run drives the connection until it terminates, the context is
// cancelled, or a read/write error occurs. It starts the periodic purge
// job, stops it on return, and logs purge sweeps and throttled drops; the
// sharee's events themselves are not logged, since it returns only
// packets and errors.
func (p *Pump) Run(ctx context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(p.purgeCron, func() {
		if p.acc.PurgeOldPackets() {
			p.logger.Printf("hostpump: purged stale accumulator bytes")
		}
	}); err != nil {
		return fmt.Errorf("hostpump: scheduling purge job: %w", err)
	}
	c.Start()
	defer c.Stop()

	buf := make([]byte, p.readBufSize)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if p.sh.IsTerminated() {
			return nil
		}

		if p.sh.WaitingForPacket() {
			h, body, decoded, err := p.tryDecode()
			if err != nil {
				return fmt.Errorf("hostpump: decoding packet: %w", err)
			}
			if !decoded {
				if _, err := p.readSome(ctx, buf); err != nil {
					return err
				}
				continue
			}
			pkt, err := packet.DecodeBody(h, codec.NewCursor(body), p.sh.ResolveChannelName)
			if err != nil {
				return fmt.Errorf("hostpump: decoding packet body: %w", err)
			}
			if p.acc.PurgeOldPackets() {
				p.logger.Printf("hostpump: purged stale accumulator bytes")
			}
			packets, err := p.sh.UpdateWithBody(pkt)
			if err != nil {
				return fmt.Errorf("hostpump: %w", err)
			}
			if err := p.writePackets(packets); err != nil {
				return err
			}
			continue
		}

		packets, err := p.sh.UpdateWithoutBody()
		if err != nil {
			return fmt.Errorf("hostpump: %w", err)
		}
		if err := p.writePackets(packets); err != nil {
			return err
		}
		if len(packets) == 0 {
			time.Sleep(idlePollInterval)
		}
	}
}

// tryDecode pulls one raw header+body off the accumulator, if a full
// packet is already buffered. decoded is false (with nil error) when
// more bytes are needed, mirroring Accumulator.NextPacket's contract.
func (p *Pump) tryDecode() (h *header.Header, body []byte, decoded bool, err error) {
	h, body, err = p.acc.NextPacket()
	if err != nil {
		return nil, nil, false, err
	}
	if h == nil {
		return nil, nil, false, nil
	}
	return h, body, true, nil
}

func (p *Pump) readSome(ctx context.Context, buf []byte) (int, error) {
	type readResult struct {
		n   int
		err error
	}
	done := make(chan readResult, 1)
	go func() {
		n, err := p.rw.Read(buf)
		done <- readResult{n, err}
	}()

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case r := <-done:
		if r.err != nil {
			if errors.Is(r.err, io.EOF) {
				return 0, io.EOF
			}
			return 0, fmt.Errorf("hostpump: reading transport: %w", r.err)
		}
		if r.n > 0 {
			p.acc.Accumulate(buf[:r.n])
		}
		return r.n, nil
	}
}

// writePackets writes every packet to the transport in order, applying
// the flood guards to host-initiated chat text and clipboard format-data
// sends; a throttled packet is dropped and logged instead of written.
func (p *Pump) writePackets(packets []*packet.Packet) error {
	for _, pkt := range packets {
		if !p.allow(pkt) {
			p.logger.Printf("hostpump: outbound message throttled, dropping")
			continue
		}
		data, err := pkt.EncodeToBytes()
		if err != nil {
			return fmt.Errorf("hostpump: encoding outbound packet: %w", err)
		}
		if _, err := p.rw.Write(data); err != nil {
			return fmt.Errorf("hostpump: writing transport: %w", err)
		}
	}
	return nil
}

func (p *Pump) allow(pkt *packet.Packet) bool {
	if pkt.Virt == nil {
		return true
	}
	if p.limits.ChatText != nil && isChatText(pkt.Virt) {
		return p.limits.ChatText.Allow()
	}
	if p.limits.ClipboardFormat != nil && isClipboardFormatData(pkt.Virt) {
		return p.limits.ClipboardFormat.Allow()
	}
	return true
}

func isChatText(vc *message.VirtualChannel) bool {
	return vc.Chat != nil && vc.Chat.Text != nil
}

func isClipboardFormatData(vc *message.VirtualChannel) bool {
	return vc.Clipboard != nil && vc.Clipboard.FormatDataRsp != nil
}
