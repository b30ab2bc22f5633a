package packet

import (
	"time"

	"waykshare/codec"
	headerpkg "waykshare/header"
)

// staleAfter bounds how long a partially buffered packet is kept before
// PurgeOldPackets discards it, guarding against a peer that opens a long
// header and then stalls mid-body.
const staleAfter = 30 * time.Second

// Accumulator buffers bytes read off the transport and yields complete
// packets as enough data arrives. It is not safe for concurrent use; the
// host pump owns one per connection.
type Accumulator struct {
	buf        []byte
	firstByte  time.Time
	hasPending bool
	now        func() time.Time
}

// NewAccumulator builds an empty accumulator. now lets callers inject a
// deterministic clock in tests; it defaults to time.Now.
func NewAccumulator(now func() time.Time) *Accumulator {
	if now == nil {
		now = time.Now
	}
	return &Accumulator{now: now}
}

// Accumulate appends newly read bytes to the internal buffer.
func (a *Accumulator) Accumulate(data []byte) {
	if len(a.buf) == 0 {
		a.firstByte = a.now()
		a.hasPending = true
	}
	a.buf = append(a.buf, data...)
}

// NextPacket extracts and removes the next complete raw packet (header
// plus body bytes) from the buffer. It returns (nil, nil) when the
// buffer does not yet hold a full packet — this is the normal "read
// more" signal, distinct from a decode error.
func (a *Accumulator) NextPacket() (h *headerpkg.Header, body []byte, err error) {
	if len(a.buf) < headerpkg.MinPeekSize {
		return nil, nil, nil
	}
	if !headerpkg.PeekIsShort(a.buf) && len(a.buf) < headerpkg.LongSize {
		return nil, nil, nil
	}

	c := codec.NewCursor(a.buf)
	h, decErr := headerpkg.Decode(c)
	if decErr != nil {
		return nil, nil, decErr
	}

	total := h.PacketLen()
	if len(a.buf) < total {
		return nil, nil, nil
	}

	bodyStart := h.HeaderLen()
	bodyBytes := make([]byte, h.BodyLen())
	copy(bodyBytes, a.buf[bodyStart:total])

	remaining := make([]byte, len(a.buf)-total)
	copy(remaining, a.buf[total:])
	a.buf = remaining
	if len(a.buf) == 0 {
		a.hasPending = false
	} else {
		a.firstByte = a.now()
	}

	return h, bodyBytes, nil
}

// PurgeOldPackets drops the buffered bytes if a partial packet has been
// sitting for longer than staleAfter. It returns true if it purged
// anything, so callers can log or count the event.
func (a *Accumulator) PurgeOldPackets() bool {
	if !a.hasPending {
		return false
	}
	if a.now().Sub(a.firstByte) < staleAfter {
		return false
	}
	a.buf = nil
	a.hasPending = false
	return true
}

// Pending reports how many bytes are currently buffered.
func (a *Accumulator) Pending() int { return len(a.buf) }
