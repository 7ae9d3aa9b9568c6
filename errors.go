package fxindex

import (
	"errors"
	"fmt"
)

// errFxindex is the base error every fxindex error wraps, following the
// go-dictzip convention of a single sentinel that errors.Is can match
// regardless of which concrete kind was returned.
var errFxindex = errors.New("fxindex")

// ErrorKind identifies which of the error conditions in the package
// occurred, independent of the detail carried alongside it.
type ErrorKind int

const (
	KindFileNotFound ErrorKind = iota
	KindPermissionDenied
	KindCorruptStream
	KindMalformedRecord
	KindDuplicateName
	KindEmptyName
	KindOutOfRange
	KindUnknownName
	KindInvalidInterval
	KindInvalidArgument
	KindWrongTypeArgument
	KindStreamingOnly
	KindUseAfterClose
	KindIndexVersionMismatch
)

var kindText = map[ErrorKind]string{
	KindFileNotFound:         "file not found",
	KindPermissionDenied:     "permission denied",
	KindCorruptStream:        "corrupt stream",
	KindMalformedRecord:      "malformed record",
	KindDuplicateName:        "duplicate name",
	KindEmptyName:            "empty name",
	KindOutOfRange:           "out of range",
	KindUnknownName:          "unknown name",
	KindInvalidInterval:      "invalid interval",
	KindInvalidArgument:      "invalid argument",
	KindWrongTypeArgument:    "wrong type argument",
	KindStreamingOnly:        "streaming only",
	KindUseAfterClose:        "use after close",
	KindIndexVersionMismatch: "index version mismatch",
}

// Error is the concrete error type returned by every exported operation in
// this package that can fail for a reason described in §7 of the design.
// Detail carries the offending name/value/ordinal for diagnostics; it is
// empty when there is nothing useful to add beyond the kind.
type Error struct {
	Kind   ErrorKind
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("fxindex: %s", kindText[e.Kind])
	}
	return fmt.Sprintf("fxindex: %s: %s", kindText[e.Kind], e.Detail)
}

func (e *Error) Unwrap() error { return errFxindex }

// Is reports whether target is an *Error of the same Kind, so callers can
// write errors.Is(err, fxindex.ErrOutOfRange) without caring about Detail.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newErr(kind ErrorKind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// Sentinel zero-detail values for errors.Is comparisons, e.g.:
//
//	if errors.Is(err, fxindex.ErrOutOfRange) { ... }
var (
	ErrFileNotFound         = &Error{Kind: KindFileNotFound}
	ErrPermissionDenied     = &Error{Kind: KindPermissionDenied}
	ErrCorruptStream        = &Error{Kind: KindCorruptStream}
	ErrMalformedRecord      = &Error{Kind: KindMalformedRecord}
	ErrDuplicateName        = &Error{Kind: KindDuplicateName}
	ErrEmptyName            = &Error{Kind: KindEmptyName}
	ErrOutOfRange           = &Error{Kind: KindOutOfRange}
	ErrUnknownName          = &Error{Kind: KindUnknownName}
	ErrInvalidInterval      = &Error{Kind: KindInvalidInterval}
	ErrInvalidArgument      = &Error{Kind: KindInvalidArgument}
	ErrWrongTypeArgument    = &Error{Kind: KindWrongTypeArgument}
	ErrStreamingOnly        = &Error{Kind: KindStreamingOnly}
	ErrUseAfterClose        = &Error{Kind: KindUseAfterClose}
	ErrIndexVersionMismatch = &Error{Kind: KindIndexVersionMismatch}
)
