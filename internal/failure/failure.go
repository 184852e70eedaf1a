// Package failure classifies errors produced by the acquisition pipeline into
// the four kinds surfaced to users: input, transport, state conflict and IO.
package failure

import (
	"github.com/jmgilman/go/errors"
)

// Domain error codes layered on top of the platform codes.
const (
	CodeInvalidURL          errors.ErrorCode = "INVALID_URL"
	CodeUnsafePath          errors.ErrorCode = "UNSAFE_PATH"
	CodeInvalidTemplateName errors.ErrorCode = "INVALID_TEMPLATE_NAME"
	CodeHistoryRequiresGit  errors.ErrorCode = "HISTORY_REQUIRES_GIT"

	CodeRefListFailed    errors.ErrorCode = "REF_LIST_FAILED"
	CodeMalformedArchive errors.ErrorCode = "MALFORMED_ARCHIVE"
	CodeUnsupportedHost  errors.ErrorCode = "UNSUPPORTED_HOST"

	CodeDestinationNotEmpty errors.ErrorCode = "DESTINATION_NOT_EMPTY"
	CodeRefNotFound         errors.ErrorCode = "REF_NOT_FOUND"
	CodeTemplateNotFound    errors.ErrorCode = "TEMPLATE_NOT_FOUND"

	CodeIO errors.ErrorCode = "IO_ERROR"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindInput
	KindTransport
	KindStateConflict
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindTransport:
		return "transport"
	case KindStateConflict:
		return "state conflict"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

var kinds = map[errors.ErrorCode]Kind{
	errors.CodeInvalidInput: KindInput,
	CodeInvalidURL:          KindInput,
	CodeUnsafePath:          KindInput,
	CodeInvalidTemplateName: KindInput,
	CodeHistoryRequiresGit:  KindInput,

	errors.CodeExecutionFailed: KindTransport,
	errors.CodeNetwork:         KindTransport,
	CodeRefListFailed:          KindTransport,
	CodeMalformedArchive:       KindTransport,
	CodeUnsupportedHost:        KindTransport,

	errors.CodeConflict:     KindStateConflict,
	errors.CodeNotFound:     KindStateConflict,
	CodeDestinationNotEmpty: KindStateConflict,
	CodeRefNotFound:         KindStateConflict,
	CodeTemplateNotFound:    KindStateConflict,

	CodeIO: KindIO,
}

// KindOf returns the kind of the outermost coded error in err's chain.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	return kinds[errors.GetCode(err)]
}

// Is reports whether err carries the given code.
func Is(err error, code errors.ErrorCode) bool {
	return err != nil && errors.GetCode(err) == code
}

func Input(code errors.ErrorCode, format string, args ...any) error {
	return errors.Newf(code, format, args...)
}

func Conflict(code errors.ErrorCode, format string, args ...any) error {
	return errors.Newf(code, format, args...)
}

// Transport wraps a lower level failure, keeping its diagnostic text.
func Transport(err error, code errors.ErrorCode, format string, args ...any) error {
	if err == nil {
		return errors.Newf(code, format, args...)
	}
	return errors.Wrapf(err, code, format, args...)
}

// IO wraps a filesystem failure.
func IO(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, CodeIO, format, args...)
}
