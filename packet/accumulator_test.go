package packet

import (
	"testing"
	"time"
)

// shortPacketBytes builds a minimal short-header packet (Handshake type
// 0x01) carrying bodyLen bytes of arbitrary payload.
func shortPacketBytes(bodyLen int) []byte {
	body := make([]byte, bodyLen)
	for i := range body {
		body[i] = byte(i)
	}
	header := []byte{byte(bodyLen), byte(bodyLen >> 8), 0x01, 0x80}
	return append(header, body...)
}

func TestAccumulatorNeedsMoreBytesIsNilNotError(t *testing.T) {
	a := NewAccumulator(nil)
	a.Accumulate([]byte{0x28, 0x00, 0x01}) // 3 bytes, short header needs 4
	h, body, err := a.NextPacket()
	if err != nil {
		t.Fatalf("expected nil error while waiting for more bytes, got %v", err)
	}
	if h != nil || body != nil {
		t.Fatalf("expected (nil, nil) while waiting for more bytes, got (%v, %v)", h, body)
	}
}

func TestAccumulatorYieldsCompletePacket(t *testing.T) {
	a := NewAccumulator(nil)
	a.Accumulate(shortPacketBytes(8))
	h, body, err := a.NextPacket()
	if err != nil {
		t.Fatalf("NextPacket: %v", err)
	}
	if h == nil {
		t.Fatal("expected a decoded header")
	}
	if len(body) != 8 {
		t.Fatalf("body length = %d, want 8", len(body))
	}
	if a.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0 after consuming the only packet", a.Pending())
	}
}

func TestAccumulatorChunkingIsOrderIndependent(t *testing.T) {
	var all []byte
	all = append(all, shortPacketBytes(5)...)
	all = append(all, shortPacketBytes(10)...)
	all = append(all, shortPacketBytes(0)...)

	wholeAcc := NewAccumulator(nil)
	wholeAcc.Accumulate(all)
	wholeLens := drainBodyLens(t, wholeAcc)

	chunkedAcc := NewAccumulator(nil)
	for i := 0; i < len(all); i += 3 {
		end := i + 3
		if end > len(all) {
			end = len(all)
		}
		chunkedAcc.Accumulate(all[i:end])
	}
	chunkedLens := drainBodyLens(t, chunkedAcc)

	if len(wholeLens) != len(chunkedLens) {
		t.Fatalf("packet count mismatch: whole=%d chunked=%d", len(wholeLens), len(chunkedLens))
	}
	for i := range wholeLens {
		if wholeLens[i] != chunkedLens[i] {
			t.Errorf("packet %d body length mismatch: whole=%d chunked=%d", i, wholeLens[i], chunkedLens[i])
		}
	}
}

func drainBodyLens(t *testing.T, a *Accumulator) []int {
	t.Helper()
	var lens []int
	for {
		h, body, err := a.NextPacket()
		if err != nil {
			t.Fatalf("NextPacket: %v", err)
		}
		if h == nil {
			return lens
		}
		lens = append(lens, len(body))
	}
}

func TestAccumulatorPurgesStalePartialPacket(t *testing.T) {
	now := time.Unix(0, 0)
	a := NewAccumulator(func() time.Time { return now })

	a.Accumulate([]byte{0x28, 0x00, 0x01, 0x80}[:2]) // partial header only
	if a.PurgeOldPackets() {
		t.Fatal("should not purge immediately")
	}

	now = now.Add(31 * time.Second)
	if !a.PurgeOldPackets() {
		t.Fatal("expected stale partial packet to be purged after 30s")
	}
	if a.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0 after purge", a.Pending())
	}
}

func TestAccumulatorDoesNotPurgeFreshData(t *testing.T) {
	now := time.Unix(0, 0)
	a := NewAccumulator(func() time.Time { return now })
	a.Accumulate([]byte{0x01, 0x02})
	now = now.Add(5 * time.Second)
	if a.PurgeOldPackets() {
		t.Fatal("should not purge data younger than the stale threshold")
	}
}
