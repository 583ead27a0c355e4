package mcap

import (
	"errors"
	"fmt"
)

// Sentinel errors returned (wrapped in a *FormatError) by the walker and decoders.
var (
	// ErrUnexpectedEOF is returned when a mandatory field is cut short by the end of input.
	ErrUnexpectedEOF = errors.New("unexpected end of input")

	// ErrInvalidMagic is returned when the file does not start with the MCAP signature.
	ErrInvalidMagic = errors.New("invalid magic")

	// ErrUnexpectedFooterMagic is returned when 0x89 appears in place of an opcode
	// but is not followed by the footer magic tail.
	ErrUnexpectedFooterMagic = errors.New("unexpected 0x89, not footer magic")

	// ErrTruncatedRecord is returned when a record preamble or body ends early.
	ErrTruncatedRecord = errors.New("truncated record")

	// ErrMalformedHeader is returned when a header string overdraws the record body.
	ErrMalformedHeader = errors.New("malformed header")

	// ErrInvalidUTF8 is returned when a header string is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("string contains invalid UTF-8")

	// ErrNotHeader is returned by ReadHeader for a record that is not a header.
	ErrNotHeader = errors.New("record is not a header")

	// ErrRecordNotInFlight is returned when a record other than the current one is skipped.
	ErrRecordNotInFlight = errors.New("record is not in flight")
)

// FormatError describes a failure at a given logical offset of the record stream.
type FormatError struct {
	Op       string // operation that failed, e.g. "next" or "skip"
	Offset   uint64 // walker offset when the failure was detected
	Observed []byte // offending bytes, when there are any
	Err      error
}

func (e *FormatError) Error() string {
	if len(e.Observed) > 0 {
		return fmt.Sprintf("mcap %s at offset %d: %v: got % x", e.Op, e.Offset, e.Err, e.Observed)
	}
	return fmt.Sprintf("mcap %s at offset %d: %v", e.Op, e.Offset, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}
