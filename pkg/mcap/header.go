package mcap

import (
	"encoding/binary"
	"errors"
	"io"
	"unicode/utf8"
)

// Header is the decoded body of the file header record.
type Header struct {
	Profile string `json:"profile"`
	Library string `json:"library"`
}

// DecodeHeader reads a header record body of bodyLen bytes from r: the
// profile and library strings, each a uint32 little-endian length followed by
// UTF-8 bytes. Any bytes left in the body after the two strings are vendor
// fields and are discarded. Offsets in returned errors are relative to the
// start of the body.
func DecodeHeader(r io.Reader, bodyLen uint64) (*Header, error) {
	d := headerDecoder{r: r, remaining: bodyLen}

	profile, err := d.readString()
	if err != nil {
		return nil, err
	}
	library, err := d.readString()
	if err != nil {
		return nil, err
	}
	if err := d.skipRest(); err != nil {
		return nil, err
	}

	return &Header{Profile: profile, Library: library}, nil
}

type headerDecoder struct {
	r         io.Reader
	pos       uint64
	remaining uint64
}

func (d *headerDecoder) readString() (string, error) {
	if d.remaining < 4 {
		return "", d.fail(nil, ErrMalformedHeader)
	}
	var lenBuf [4]byte
	if err := d.readFull(lenBuf[:]); err != nil {
		return "", err
	}
	d.remaining -= 4

	n := uint64(binary.LittleEndian.Uint32(lenBuf[:]))
	if n > d.remaining {
		return "", d.fail(lenBuf[:], ErrMalformedHeader)
	}

	buf := make([]byte, n)
	if err := d.readFull(buf); err != nil {
		return "", err
	}
	d.remaining -= n

	if !utf8.Valid(buf) {
		return "", d.fail(nil, ErrInvalidUTF8)
	}
	return string(buf), nil
}

func (d *headerDecoder) skipRest() error {
	for d.remaining > 0 {
		chunk := min(d.remaining, 1<<30)
		n, err := io.CopyN(io.Discard, d.r, int64(chunk))
		d.pos += uint64(n)
		d.remaining -= uint64(n)
		if err != nil {
			return d.wrap(err)
		}
	}
	return nil
}

func (d *headerDecoder) readFull(p []byte) error {
	n, err := io.ReadFull(d.r, p)
	d.pos += uint64(n)
	if err != nil {
		return d.wrap(err)
	}
	return nil
}

func (d *headerDecoder) wrap(err error) error {
	var fe *FormatError
	if errors.As(err, &fe) {
		return err
	}
	if isShortRead(err) {
		return d.fail(nil, ErrUnexpectedEOF)
	}
	return d.fail(nil, err)
}

func (d *headerDecoder) fail(seen []byte, err error) error {
	if seen != nil {
		seen = append([]byte(nil), seen...)
	}
	return &FormatError{Op: "header", Offset: d.pos, Observed: seen, Err: err}
}
