package message

import (
	"waykshare/codec"
	"waykshare/protoerr"
)

// AuthType names the authentication methods negotiated during the
// connection sequence. Unknown wire values decode to Other(raw) rather
// than failing, per the open-extension sum-type convention.
type AuthType struct {
	known bool
	name  string
	value uint8
}

func namedAuth(name string, value uint8) AuthType { return AuthType{known: true, name: name, value: value} }
func OtherAuthType(raw uint8) AuthType            { return AuthType{known: false, name: "Other", value: raw} }

func (a AuthType) Value() uint8  { return a.value }
func (a AuthType) IsKnown() bool { return a.known }
func (a AuthType) String() string {
	if a.known {
		return a.name
	}
	return "Other"
}

var (
	AuthNone     = namedAuth("None", 0)
	AuthPFP      = namedAuth("PFP", 1)
	AuthSRP      = namedAuth("SRP", 2)
	AuthIgnored1 = namedAuth("IGNORED1", 3)
	AuthNTLM     = namedAuth("NTLM", 4)
	AuthSPNEGO   = namedAuth("SPNEGO", 5)
	AuthKerberos = namedAuth("Kerberos", 6)
	AuthCredSSP  = namedAuth("CredSSP", 7)
	AuthSRD      = namedAuth("SRD", 8)
)

var authByValue = func() map[uint8]AuthType {
	m := map[uint8]AuthType{}
	for _, a := range []AuthType{AuthNone, AuthPFP, AuthSRP, AuthIgnored1, AuthNTLM, AuthSPNEGO, AuthKerberos, AuthCredSSP, AuthSRD} {
		m[a.value] = a
	}
	return m
}()

func AuthTypeFromRaw(raw uint8) AuthType {
	if a, ok := authByValue[raw]; ok {
		return a
	}
	return OtherAuthType(raw)
}

func (a AuthType) EncodedLen() int { return 1 }

func (a AuthType) Encode(w codec.Writer) error { return codec.WriteU8(w, a.value) }

func DecodeAuthType(c *codec.Cursor) (AuthType, error) {
	v, err := c.ReadU8()
	if err != nil {
		return AuthType{}, protoerr.Chain(protoerr.Decoding, err)
	}
	return AuthTypeFromRaw(v), nil
}
