package message

import (
	"bytes"
	"testing"

	"waykshare/codec"
)

func TestCapabilityTypeFromRawResolvesKnownAndUnknown(t *testing.T) {
	if got := CapabilityTypeFromRaw(0x0002); got.Value() != CapabilityAudio.Value() || got.String() != "Audio" {
		t.Errorf("CapabilityTypeFromRaw(0x0002) = %+v, want Audio", got)
	}
	if got := CapabilityTypeFromRaw(0xBEEF); got.String() != "Other" || got.Value() != 0xBEEF {
		t.Errorf("CapabilityTypeFromRaw(0xBEEF) = %+v, want Other(0xBEEF)", got)
	}
}

func TestCapabilitiesMsgEncodeDecodeRoundTrip(t *testing.T) {
	entries := []CapabilityEntry{
		{Type: CapabilityVideo, Data: []byte{1, 2, 3}},
		{Type: CapabilityTypeFromRaw(0x00F0), Data: nil},
	}
	m := NewCapabilitiesMsg(entries)

	var buf bytes.Buffer
	if err := m.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if buf.Len() != m.EncodedLen() {
		t.Errorf("EncodedLen() = %d, actual = %d", m.EncodedLen(), buf.Len())
	}

	decoded, err := DecodeCapabilitiesMsg(codec.NewCursor(buf.Bytes()))
	if err != nil {
		t.Fatalf("DecodeCapabilitiesMsg: %v", err)
	}
	got := decoded.(*CapabilitiesMsg)
	if len(got.Entries.Items) != 2 {
		t.Fatalf("Entries = %+v, want 2 entries", got.Entries.Items)
	}
	if got.Entries.Items[0].Type.Value() != CapabilityVideo.Value() {
		t.Errorf("entry[0].Type = %+v, want Video", got.Entries.Items[0].Type)
	}
	if string(got.Entries.Items[0].Data) != "\x01\x02\x03" {
		t.Errorf("entry[0].Data = %v, want [1 2 3]", got.Entries.Items[0].Data)
	}
	if got.Entries.Items[1].Type.String() != "Other" || got.Entries.Items[1].Type.Value() != 0x00F0 {
		t.Errorf("entry[1].Type = %+v, want Other(0x00F0)", got.Entries.Items[1].Type)
	}
}

func TestCapabilitiesMsgEmptyRoundTrip(t *testing.T) {
	m := NewCapabilitiesMsg(nil)
	var buf bytes.Buffer
	if err := m.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := DecodeCapabilitiesMsg(codec.NewCursor(buf.Bytes()))
	if err != nil {
		t.Fatalf("DecodeCapabilitiesMsg: %v", err)
	}
	if len(decoded.(*CapabilitiesMsg).Entries.Items) != 0 {
		t.Errorf("expected no entries, got %+v", decoded.(*CapabilitiesMsg).Entries.Items)
	}
}
