package types

import (
	"errors"
)

// ErrorKind classifies why an operation was rejected. It doubles as the
// abci result code of a failed transaction.
type ErrorKind uint32

const (
	KindNone ErrorKind = iota
	Authorization
	InvalidState
	InvalidReference
	InvalidParameter
	PreconditionUnmet
	ExecutionFailure
)

const Codespace = "assembly"

func (k ErrorKind) String() string {
	switch k {
	case Authorization:
		return "authorization"
	case InvalidState:
		return "invalid state"
	case InvalidReference:
		return "invalid reference"
	case InvalidParameter:
		return "invalid parameter"
	case PreconditionUnmet:
		return "precondition unmet"
	case ExecutionFailure:
		return "execution failure"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind  ErrorKind
	Msg   string
	cause error
}

func NewError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Msg + ": " + e.cause.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches on kind and message so wrapped sentinels compare equal.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Msg == e.Msg
}

// Wrap keeps the kind and message of e and records cause behind it.
func (e *Error) Wrap(cause error) *Error {
	return &Error{Kind: e.Kind, Msg: e.Msg, cause: cause}
}

// KindOf returns the kind carried by err, or KindNone for errors that are
// not engine errors (store failures, codec failures).
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindNone
}

var (
	ErrNotCreator   = NewError(Authorization, "caller is not the creator")
	ErrNotOwner     = NewError(Authorization, "caller is not the owner")
	ErrNotAuthority = NewError(Authorization, "only the assembly can execute")
	ErrNotTrusted   = NewError(Authorization, "caller is not a citizen or delegate")
	ErrNotUpdater   = NewError(Authorization, "caller is not the oracle updater")
	ErrNotGovernor  = NewError(Authorization, "caller is not the governor")
)

const (
	// CodeInvalidEnvelope rejects a transaction whose envelope could not be
	// decoded or verified.
	CodeInvalidEnvelope uint32 = 100
	CodeInternal        uint32 = 101
)

// Code maps err to an abci result code.
func Code(err error) uint32 {
	if err == nil {
		return 0
	}
	if k := KindOf(err); k != KindNone {
		return uint32(k)
	}
	return CodeInternal
}
