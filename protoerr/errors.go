// Package protoerr implements the chained error taxonomy used across the
// wire codec, the packet framer, and the state machines.
//
// Every error produced by this module carries a Kind, an optional
// human-readable description, and an optional source error. Chains are
// built bottom-up with Chain/OrDesc, and unwrap the normal way so
// errors.Is/errors.As keep working against the wrapped source.
package protoerr

import (
	"errors"
	"fmt"
)

// Kind classifies where in the stack an error originated.
type Kind int

const (
	Decoding Kind = iota
	Encoding
	ConnectionSequence
	VirtualChannel
	ChannelsManager
	UnexpectedMessage
	Sharee
	Io
	FromUtf8
	IntConversion
)

func (k Kind) String() string {
	switch k {
	case Decoding:
		return "decoding"
	case Encoding:
		return "encoding"
	case ConnectionSequence:
		return "connection sequence"
	case VirtualChannel:
		return "virtual channel"
	case ChannelsManager:
		return "channels manager"
	case UnexpectedMessage:
		return "unexpected message"
	case Sharee:
		return "sharee"
	case Io:
		return "io"
	case FromUtf8:
		return "utf8 conversion"
	case IntConversion:
		return "integer conversion"
	default:
		return "unknown"
	}
}

// ProtoError is the chain node: a Kind, a description, and an optional
// wrapped source.
type ProtoError struct {
	Kind        Kind
	Description string
	Source      error
}

func New(kind Kind, description string) *ProtoError {
	return &ProtoError{Kind: kind, Description: description}
}

// Chain wraps an existing error under a new Kind, keeping err as the source.
func Chain(kind Kind, err error) *ProtoError {
	return &ProtoError{Kind: kind, Source: err}
}

// OrDesc returns a new error of e's Kind carrying description, with e as
// its source, used to attach call-site context without discarding the
// source chain.
func (e *ProtoError) OrDesc(description string) *ProtoError {
	return &ProtoError{Kind: e.Kind, Description: description, Source: e}
}

// OrElseDesc is like OrDesc but the description is produced lazily.
func (e *ProtoError) OrElseDesc(f func() string) *ProtoError {
	return e.OrDesc(f())
}

func (e *ProtoError) Error() string {
	msg := e.Kind.String()
	if e.Description != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Description)
	}
	if e.Source != nil {
		msg = fmt.Sprintf("%s [source: %s]", msg, e.Source.Error())
	}
	return msg
}

func (e *ProtoError) Unwrap() error {
	return e.Source
}

// Is reports whether err's chain contains a ProtoError of the given kind.
func Is(err error, kind Kind) bool {
	var pe *ProtoError
	for errors.As(err, &pe) {
		if pe.Kind == kind {
			return true
		}
		err = pe.Source
		if err == nil {
			return false
		}
	}
	return false
}

// ErrUnexpectedEOF is the sentinel codec readers return when the cursor
// does not hold enough bytes to satisfy a read.
var ErrUnexpectedEOF = New(Decoding, "unexpected end of buffer")
