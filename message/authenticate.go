package message

import (
	"waykshare/codec"
	"waykshare/protoerr"
)

// authSubtype is the meta-enum discriminant for NowAuthenticateMsg variants.
type authSubtype uint8

const (
	authSubtypeToken   authSubtype = 0x01
	authSubtypeSuccess authSubtype = 0x02
	authSubtypeFailure authSubtype = 0x03
)

// AuthenticateFailureFlags carries the single retry bit.
type AuthenticateFailureFlags struct{ raw uint8 }

const authFailureFlagRetry uint8 = 0x01

func (f AuthenticateFailureFlags) Retry() bool { return f.raw&authFailureFlagRetry != 0 }
func NewAuthenticateFailureFlags(retry bool) AuthenticateFailureFlags {
	f := AuthenticateFailureFlags{}
	if retry {
		f.raw = authFailureFlagRetry
	}
	return f
}

// AuthenticateMsg is the meta-enum over the three on-wire authenticate
// shapes. Exactly one of Token, Success, Failure is non-nil.
type AuthenticateMsg struct {
	Token   *AuthenticateTokenMsg
	Success *AuthenticateSuccessMsg
	Failure *AuthenticateFailureMsg
}

func (m *AuthenticateMsg) MessageType() Type { return TypeAuthenticate }

func (m *AuthenticateMsg) EncodedLen() int {
	switch {
	case m.Token != nil:
		return m.Token.EncodedLen()
	case m.Success != nil:
		return m.Success.EncodedLen()
	case m.Failure != nil:
		return m.Failure.EncodedLen()
	default:
		return 0
	}
}

func (m *AuthenticateMsg) Encode(w codec.Writer) error {
	switch {
	case m.Token != nil:
		return m.Token.Encode(w)
	case m.Success != nil:
		return m.Success.Encode(w)
	case m.Failure != nil:
		return m.Failure.Encode(w)
	default:
		return protoerr.New(protoerr.Encoding, "empty authenticate message")
	}
}

func DecodeAuthenticateMsg(c *codec.Cursor) (Message, error) {
	sub, err := c.PeekU8()
	if err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	switch authSubtype(sub) {
	case authSubtypeToken:
		t, err := decodeAuthenticateTokenMsg(c)
		if err != nil {
			return nil, err
		}
		return &AuthenticateMsg{Token: t}, nil
	case authSubtypeSuccess:
		s, err := decodeAuthenticateSuccessMsg(c)
		if err != nil {
			return nil, err
		}
		return &AuthenticateMsg{Success: s}, nil
	case authSubtypeFailure:
		f, err := decodeAuthenticateFailureMsg(c)
		if err != nil {
			return nil, err
		}
		return &AuthenticateMsg{Failure: f}, nil
	default:
		return nil, protoerr.New(protoerr.Decoding, "unknown authenticate subtype")
	}
}

// AuthenticateTokenMsg carries an opaque authentication token (PFP, SRP,
// NTLM, ...) keyed by AuthType. TokenData aliases the decode buffer; use
// NewOwnedAuthenticateTokenMsg to build one that must outlive it.
type AuthenticateTokenMsg struct {
	AuthType  AuthType
	TokenData []byte
	owned     bool
}

func NewAuthenticateTokenMsg(authType AuthType, tokenData []byte) *AuthenticateTokenMsg {
	return &AuthenticateTokenMsg{AuthType: authType, TokenData: tokenData}
}

// NewOwnedAuthenticateTokenMsg is the constructor used for locally built
// outbound tokens (e.g. the PFP negotiate token) whose bytes must survive
// past the lifetime of any inbound decode buffer.
func NewOwnedAuthenticateTokenMsg(authType AuthType, tokenData []byte) *AuthenticateTokenMsg {
	owned := make([]byte, len(tokenData))
	copy(owned, tokenData)
	return &AuthenticateTokenMsg{AuthType: authType, TokenData: owned, owned: true}
}

func (m *AuthenticateTokenMsg) MessageType() Type { return TypeAuthenticate }

func (m *AuthenticateTokenMsg) EncodedLen() int { return 4 + 2 + len(m.TokenData) }

func (m *AuthenticateTokenMsg) Encode(w codec.Writer) error {
	if err := codec.WriteU8(w, uint8(authSubtypeToken)); err != nil {
		return err
	}
	if err := codec.WriteU8(w, 0); err != nil { // flags, reserved
		return err
	}
	if err := m.AuthType.Encode(w); err != nil {
		return err
	}
	if err := codec.WriteU8(w, 0); err != nil { // auth_flags, reserved
		return err
	}
	return codec.NewBytes16(m.TokenData).Encode(w)
}

func decodeAuthenticateTokenMsg(c *codec.Cursor) (*AuthenticateTokenMsg, error) {
	if _, err := c.ReadU8(); err != nil { // subtype
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	if _, err := c.ReadU8(); err != nil { // flags
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	authType, err := DecodeAuthType(c)
	if err != nil {
		return nil, err
	}
	if _, err := c.ReadU8(); err != nil { // auth_flags
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	data, err := codec.DecodeBytes16(c)
	if err != nil {
		return nil, err
	}
	return &AuthenticateTokenMsg{AuthType: authType, TokenData: data.Data}, nil
}

// AuthenticateSuccessMsg closes the authenticate sub-sequence successfully.
type AuthenticateSuccessMsg struct {
	SessionID uint32
	Cookie    [4]uint32
}

const AuthenticateSuccessRequiredSize = 24

func NewAuthenticateSuccessMsg(sessionID uint32, cookie [4]uint32) *AuthenticateSuccessMsg {
	return &AuthenticateSuccessMsg{SessionID: sessionID, Cookie: cookie}
}

func (m *AuthenticateSuccessMsg) MessageType() Type { return TypeAuthenticate }
func (m *AuthenticateSuccessMsg) EncodedLen() int   { return AuthenticateSuccessRequiredSize }

func (m *AuthenticateSuccessMsg) Encode(w codec.Writer) error {
	if err := codec.WriteU8(w, uint8(authSubtypeSuccess)); err != nil {
		return err
	}
	if err := codec.WriteU8(w, 0); err != nil {
		return err
	}
	if err := codec.WriteU16(w, 0); err != nil { // reserved
		return err
	}
	if err := codec.WriteU32(w, m.SessionID); err != nil {
		return err
	}
	for _, c := range m.Cookie {
		if err := codec.WriteU32(w, c); err != nil {
			return err
		}
	}
	return nil
}

func decodeAuthenticateSuccessMsg(c *codec.Cursor) (*AuthenticateSuccessMsg, error) {
	if c.Len() < AuthenticateSuccessRequiredSize {
		return nil, protoerr.New(protoerr.Decoding, "truncated authenticate success message")
	}
	if _, err := c.ReadU8(); err != nil { // subtype
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	if _, err := c.ReadU8(); err != nil { // flags
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	if _, err := c.ReadU16(); err != nil { // reserved
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	sessionID, err := c.ReadU32()
	if err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	var cookie [4]uint32
	for i := range cookie {
		cookie[i], err = c.ReadU32()
		if err != nil {
			return nil, protoerr.Chain(protoerr.Decoding, err)
		}
	}
	return &AuthenticateSuccessMsg{SessionID: sessionID, Cookie: cookie}, nil
}

// AuthenticateFailureMsg aborts the authenticate sub-sequence, carrying an
// auth-specific status word alongside the retry flag.
type AuthenticateFailureMsg struct {
	Flags  AuthenticateFailureFlags
	Status Status
}

const AuthenticateFailureRequiredSize = 8

func NewAuthenticateFailureMsg(retry bool, status Status) *AuthenticateFailureMsg {
	return &AuthenticateFailureMsg{Flags: NewAuthenticateFailureFlags(retry), Status: status}
}

func (m *AuthenticateFailureMsg) MessageType() Type { return TypeAuthenticate }
func (m *AuthenticateFailureMsg) EncodedLen() int   { return AuthenticateFailureRequiredSize }

func (m *AuthenticateFailureMsg) Encode(w codec.Writer) error {
	if err := codec.WriteU8(w, uint8(authSubtypeFailure)); err != nil {
		return err
	}
	if err := codec.WriteU8(w, m.Flags.raw); err != nil {
		return err
	}
	if err := codec.WriteU16(w, 0); err != nil { // reserved
		return err
	}
	return m.Status.Encode(w)
}

func decodeAuthenticateFailureMsg(c *codec.Cursor) (*AuthenticateFailureMsg, error) {
	if _, err := c.ReadU8(); err != nil { // subtype
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	flags, err := c.ReadU8()
	if err != nil {
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	if _, err := c.ReadU16(); err != nil { // reserved
		return nil, protoerr.Chain(protoerr.Decoding, err)
	}
	status, err := DecodeStatus(c)
	if err != nil {
		return nil, err
	}
	return &AuthenticateFailureMsg{Flags: AuthenticateFailureFlags{raw: flags}, Status: status}, nil
}
