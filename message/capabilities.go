package message

import (
	"waykshare/codec"
	"waykshare/protoerr"
)

// CapabilityType tags the concrete capability carried by a CapabilityEntry;
// unrecognized codes round-trip as Other(raw), the same way every other
// wire enum in this module does.
type CapabilityType struct {
	known bool
	name  string
	value uint16
}

func namedCap(name string, value uint16) CapabilityType {
	return CapabilityType{known: true, name: name, value: value}
}
func OtherCapabilityType(raw uint16) CapabilityType {
	return CapabilityType{known: false, name: "Other", value: raw}
}

func (c CapabilityType) Value() uint16 { return c.value }
func (c CapabilityType) String() string {
	if c.known {
		return c.name
	}
	return "Other"
}

var (
	CapabilityVideo   = namedCap("Video", 0x0001)
	CapabilityAudio   = namedCap("Audio", 0x0002)
	CapabilityInput   = namedCap("Input", 0x0003)
	CapabilityMouse   = namedCap("Mouse", 0x0004)
	CapabilityCursor  = namedCap("Cursor", 0x0005)
	CapabilityFile    = namedCap("FileTransfer", 0x0006)
)

var capabilitiesByValue = func() map[uint16]CapabilityType {
	m := map[uint16]CapabilityType{}
	for _, c := range []CapabilityType{CapabilityVideo, CapabilityAudio, CapabilityInput, CapabilityMouse, CapabilityCursor, CapabilityFile} {
		m[c.value] = c
	}
	return m
}()

func CapabilityTypeFromRaw(raw uint16) CapabilityType {
	if c, ok := capabilitiesByValue[raw]; ok {
		return c
	}
	return OtherCapabilityType(raw)
}

// CapabilityEntry is one capability advertisement: a type tag plus an
// opaque, type-specific payload framed with its own length prefix. Per-type
// payload semantics (resolutions, codecs, ...) are outside this module's
// scope; they round-trip as raw bytes.
type CapabilityEntry struct {
	Type CapabilityType
	Data []byte
}

func (e CapabilityEntry) EncodedLen() int { return 2 + 2 + len(e.Data) }

func (e CapabilityEntry) Encode(w codec.Writer) error {
	if err := codec.WriteU16(w, e.Type.value); err != nil {
		return err
	}
	return codec.NewBytes16(e.Data).Encode(w)
}

func DecodeCapabilityEntry(c *codec.Cursor) (CapabilityEntry, error) {
	t, err := c.ReadU16()
	if err != nil {
		return CapabilityEntry{}, protoerr.Chain(protoerr.Decoding, err)
	}
	data, err := codec.DecodeBytes16(c)
	if err != nil {
		return CapabilityEntry{}, err
	}
	return CapabilityEntry{Type: CapabilityTypeFromRaw(t), Data: data.Data}, nil
}

// CapabilitiesMsg advertises (or echoes) the capability set for this
// session, exchanged once during the capabilities sub-sequence.
type CapabilitiesMsg struct {
	Entries codec.Vec[CapabilityEntry]
}

func NewCapabilitiesMsg(entries []CapabilityEntry) *CapabilitiesMsg {
	return &CapabilitiesMsg{Entries: codec.NewVec16(entries)}
}

func (m *CapabilitiesMsg) MessageType() Type { return TypeCapabilities }
func (m *CapabilitiesMsg) EncodedLen() int   { return m.Entries.EncodedLen() }
func (m *CapabilitiesMsg) Encode(w codec.Writer) error { return m.Entries.Encode(w) }

func DecodeCapabilitiesMsg(c *codec.Cursor) (Message, error) {
	entries, err := codec.DecodeVec16(c, DecodeCapabilityEntry)
	if err != nil {
		return nil, err
	}
	return &CapabilitiesMsg{Entries: entries}, nil
}
