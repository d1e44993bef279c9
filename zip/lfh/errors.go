package lfh

import (
	"errors"
)

// Kind classifies every error returned by this package.
type Kind int

const (
	// KindIO is an underlying read or seek failure.
	KindIO Kind = iota
	// KindInvalidSignature means a 4-byte magic did not match the expected record type, or fewer than 4 bytes were
	// available.
	KindInvalidSignature
	// KindLocalFileHeaderParse means fewer than HeaderSize bytes were available where a full header was expected.
	KindLocalFileHeaderParse
	// KindNameDecode means the file name is not valid UTF-8.
	KindNameDecode
	// KindEntryNotFound means the scan ran out of local file headers without matching the requested name.
	KindEntryNotFound
	// KindDecompress means the payload could not be decompressed to exactly the declared size.
	KindDecompress
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io error"
	case KindInvalidSignature:
		return "invalid signature"
	case KindLocalFileHeaderParse:
		return "local file header parse error"
	case KindNameDecode:
		return "file name decode error"
	case KindEntryNotFound:
		return "entry not found"
	case KindDecompress:
		return "decompress error"
	default:
		return "unknown error"
	}
}

// Error is the error type returned by all functions and methods in this package.
//
// Use errors.Is with one of the Err sentinels to test for a specific Kind, or KindOf to retrieve it. The underlying
// cause (if any) is available via errors.Unwrap.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}

	return e.Kind.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches target if it is an *Error of the same Kind with no cause, i.e. one of the Err sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Err == nil && t.Kind == e.Kind
}

var (
	ErrIO                   error = &Error{Kind: KindIO}
	ErrInvalidSignature     error = &Error{Kind: KindInvalidSignature}
	ErrLocalFileHeaderParse error = &Error{Kind: KindLocalFileHeaderParse}
	ErrNameDecode           error = &Error{Kind: KindNameDecode}
	ErrEntryNotFound        error = &Error{Kind: KindEntryNotFound}
	ErrDecompress           error = &Error{Kind: KindDecompress}

	// ErrConsumed is the cause of the KindIO error returned when a LocalFile is used again after one of its
	// consuming methods has handed the stream back to the caller.
	ErrConsumed = errors.New("local file already consumed")

	// ErrUnsupportedMethod is the cause of the KindDecompress error returned for compression methods that have no
	// registered decompressor.
	ErrUnsupportedMethod = errors.New("unsupported compression method")
)

// KindOf returns the Kind of the first *Error in err's chain.
//
// The boolean return value is false if err does not contain an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}

	return 0, false
}

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}
