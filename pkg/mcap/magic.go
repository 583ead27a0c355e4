package mcap

import (
	"bytes"
	"errors"
	"io"
)

// Magic is the 8-byte signature at the start (and, as the footer marker, the
// end) of every MCAP file: 0x89 'M' 'C' 'A' 'P' '0' '\r' '\n'.
var Magic = [8]byte{0x89, 'M', 'C', 'A', 'P', '0', 0x0D, 0x0A}

// MagicSize is the length of Magic in bytes.
const MagicSize = len(Magic)

// ReadMagic consumes the first MagicSize bytes of r and checks them against
// Magic. The bytes are consumed whether or not they match.
func ReadMagic(r io.Reader) error {
	var buf [MagicSize]byte
	n, err := io.ReadFull(r, buf[:])
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return &FormatError{Op: "magic", Offset: uint64(n), Observed: append([]byte(nil), buf[:n]...), Err: ErrUnexpectedEOF}
		}
		return &FormatError{Op: "magic", Offset: uint64(n), Err: err}
	}

	if !bytes.Equal(buf[:], Magic[:]) {
		return &FormatError{Op: "magic", Offset: 0, Observed: append([]byte(nil), buf[:]...), Err: ErrInvalidMagic}
	}
	return nil
}
