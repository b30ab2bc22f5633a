package chat

import (
	"bytes"
	"testing"

	"waykshare/codec"
)

func TestSyncMsgEncodeDecodeRoundTrip(t *testing.T) {
	m, err := NewSyncMsg(12345, NewCapabilitiesFlags().WithEmoji().WithPoke(), "Johnny")
	if err != nil {
		t.Fatalf("NewSyncMsg: %v", err)
	}
	if _, err := m.WithStatusText("away"); err != nil {
		t.Fatalf("WithStatusText: %v", err)
	}
	m.WithPresence(PresenceAway)

	var buf bytes.Buffer
	if err := m.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if buf.Len() != m.EncodedLen() {
		t.Errorf("EncodedLen() = %d, actual encoded length = %d", m.EncodedLen(), buf.Len())
	}

	decoded, err := Decode(codec.NewCursor(buf.Bytes()))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Sync == nil {
		t.Fatalf("expected a Sync variant, got %+v", decoded)
	}
	got := decoded.Sync
	if got.Timestamp != 12345 {
		t.Errorf("Timestamp = %d, want 12345", got.Timestamp)
	}
	if !got.Capabilities.Emoji() || !got.Capabilities.Poke() || got.Capabilities.Read() {
		t.Errorf("Capabilities = %+v, want emoji+poke only", got.Capabilities)
	}
	if got.FriendlyName.String() != "Johnny" {
		t.Errorf("FriendlyName = %q, want Johnny", got.FriendlyName.String())
	}
	if got.Presence != PresenceAway {
		t.Errorf("Presence = %v, want PresenceAway", got.Presence)
	}
	if got.StatusText.String() != "away" {
		t.Errorf("StatusText = %q, want away", got.StatusText.String())
	}
}

func TestCapabilitiesIntersectNarrowsToSharedFeatures(t *testing.T) {
	local := NewCapabilitiesFlags().WithEmoji().WithPoke()
	peer := NewCapabilitiesFlags().WithEmoji().WithRead()
	got := local.Intersect(peer)
	if !got.Emoji() {
		t.Error("expected emoji to survive the intersection")
	}
	if got.Poke() || got.Read() {
		t.Errorf("expected poke/read to be dropped, got %+v", got)
	}
}

func TestTextMsgEncodeDecodeRoundTrip(t *testing.T) {
	m, err := NewTextMsg(999, 42, "hello world")
	if err != nil {
		t.Fatalf("NewTextMsg: %v", err)
	}
	m.Flags = m.Flags.WithSnippet()

	var buf bytes.Buffer
	if err := m.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(codec.NewCursor(buf.Bytes()))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Text == nil {
		t.Fatalf("expected a Text variant, got %+v", decoded)
	}
	if decoded.Text.Timestamp != 999 || decoded.Text.MessageID != 42 {
		t.Errorf("Text = %+v, want timestamp=999 messageID=42", decoded.Text)
	}
	if decoded.Text.Text.String() != "hello world" {
		t.Errorf("Text.Text = %q, want %q", decoded.Text.Text.String(), "hello world")
	}
	if !decoded.Text.Flags.Snippet() {
		t.Error("expected the snippet flag to round-trip")
	}
}

func TestReadMsgRoundTrip(t *testing.T) {
	m := NewReadMsg(555)
	var buf bytes.Buffer
	if err := m.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(codec.NewCursor(buf.Bytes()))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Read == nil || decoded.Read.Timestamp != 555 {
		t.Errorf("Read = %+v, want timestamp 555", decoded.Read)
	}
}

func TestTypingMsgRoundTrip(t *testing.T) {
	m := NewTypingMsg(111, 222)
	var buf bytes.Buffer
	if err := m.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(codec.NewCursor(buf.Bytes()))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Typing == nil || decoded.Typing.Timestamp != 111 || decoded.Typing.MessageID != 222 {
		t.Errorf("Typing = %+v, want {111 222}", decoded.Typing)
	}
}

func TestDecodeUnknownSubtypeErrors(t *testing.T) {
	raw := []byte{0xFF, 0, 0, 0}
	if _, err := Decode(codec.NewCursor(raw)); err == nil {
		t.Fatal("expected an error decoding an unknown chat subtype")
	}
}
