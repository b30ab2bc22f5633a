// Package packet implements the on-wire framing unit: a header plus a
// body that is either a connection-sequence message or a virtual-channel
// payload, along with the byte-stream accumulator that turns a raw
// transport read into a sequence of complete packets.
package packet

import (
	"bytes"

	"waykshare/codec"
	"waykshare/header"
	"waykshare/message"
	"waykshare/protoerr"
)

// ChannelNameResolver maps an open channel id to the name it was opened
// with, so a virtual-channel packet body can be decoded with the right
// sub-decoder. Sharee.ResolveChannelName satisfies this signature.
type ChannelNameResolver func(channelID uint8) (message.ChannelName, bool)

// Packet is a fully decoded header plus its interpreted body.
type Packet struct {
	Header  *header.Header
	Message message.Message         // set when Header.BodyType().IsVirt is false
	Virt    *message.VirtualChannel // set when Header.BodyType().IsVirt is true
}

// FromMessage frames a connection-sequence message for sending.
func FromMessage(m message.Message) (*Packet, error) {
	h := header.NewHeader(header.MessageBodyType(m.MessageType().Value()), m.EncodedLen())
	return &Packet{Header: h, Message: m}, nil
}

// FromVirtChannel frames a virtual-channel payload addressed to channelID.
func FromVirtChannel(channelID uint8, vc *message.VirtualChannel) (*Packet, error) {
	h := header.NewHeader(header.ChannelBodyType(channelID), vc.EncodedLen())
	return &Packet{Header: h, Virt: vc}, nil
}

// Encode writes the packet's header followed by its body.
func (p *Packet) Encode(w codec.Writer) error {
	if err := p.Header.Encode(w); err != nil {
		return err
	}
	if p.Message != nil {
		return p.Message.Encode(w)
	}
	if p.Virt != nil {
		return p.Virt.Encode(w)
	}
	return protoerr.New(protoerr.Encoding, "empty packet body")
}

// EncodeToBytes is a convenience wrapper for callers that just want the
// wire bytes rather than a streaming Writer.
func (p *Packet) EncodeToBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := p.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeBody interprets a header already read from c, consuming exactly
// Header.BodyLen() further bytes from c. resolve is consulted only for
// virtual-channel packets; an id it does not recognize still decodes to
// a Custom payload carrying the raw bytes (the sharee reports the
// unresolved id separately as a warning rather than failing the decode).
func DecodeBody(h *header.Header, c *codec.Cursor, resolve ChannelNameResolver) (*Packet, error) {
	bodyBytes, err := c.ReadN(h.BodyLen())
	if err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	body := codec.NewCursor(bodyBytes)

	bt := h.BodyType()
	if !bt.IsVirt {
		m, err := message.Decode(bt.Message, body)
		if err != nil {
			return nil, err
		}
		return &Packet{Header: h, Message: m}, nil
	}

	name, ok := resolve(bt.Channel)
	if !ok {
		name = message.UnknownChannelName("")
	}
	vc, err := message.DecodeVirtualChannel(name, body)
	if err != nil {
		return nil, err
	}
	return &Packet{Header: h, Virt: vc}, nil
}
