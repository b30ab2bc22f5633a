// Package clientconnection implements the client side of the connection
// sequence: handshake, negotiate, authenticate, associate, capabilities,
// and channel pairing, coordinated by SeqSM.
package clientconnection

import "waykshare/sm"

// State names the current step of the connection sequence.
type State int

const (
	StateHandshake State = iota
	StateNegotiate
	StateAuthenticate
	StateAssociate
	StateCapabilities
	StateChannels
	StateFinal
)

func (s State) String() string {
	switch s {
	case StateHandshake:
		return "Handshake"
	case StateNegotiate:
		return "Negotiate"
	case StateAuthenticate:
		return "Authenticate"
	case StateAssociate:
		return "Associate"
	case StateCapabilities:
		return "Capabilities"
	case StateChannels:
		return "Channels"
	case StateFinal:
		return "Final"
	default:
		return "Unknown"
	}
}

func (s State) ProtoState() {}

var _ sm.ProtoState = State(0)
