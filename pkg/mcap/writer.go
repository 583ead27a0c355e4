package mcap

import (
	"encoding/binary"
	"errors"
	"io"
)

// ErrReservedOpcode is returned when writing a record with the footer magic's leading byte.
var ErrReservedOpcode = errors.New("opcode 0x89 is reserved for the footer magic")

// Writer encodes an MCAP record stream. It does no validation of record
// bodies; it exists to produce fixtures the Walker can read back.
type Writer struct {
	w      io.Writer
	offset uint64
}

// NewWriter creates a writer on w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteMagic writes the file signature. It does not count toward Offset.
func (w *Writer) WriteMagic() error {
	_, err := w.w.Write(Magic[:])
	return err
}

// WriteRecord writes one record and returns its offset.
func (w *Writer) WriteRecord(op OpCode, body []byte) (uint64, error) {
	if byte(op) == Magic[0] {
		return 0, ErrReservedOpcode
	}

	var preamble [PreambleSize]byte
	preamble[0] = byte(op)
	binary.LittleEndian.PutUint64(preamble[1:], uint64(len(body)))

	start := w.offset
	n, err := w.w.Write(preamble[:])
	w.offset += uint64(n)
	if err != nil {
		return start, err
	}
	n, err = w.w.Write(body)
	w.offset += uint64(n)
	return start, err
}

// WriteHeader writes the header record. vendor is appended after the two
// strings as uninterpreted trailing bytes.
func (w *Writer) WriteHeader(h Header, vendor []byte) (uint64, error) {
	body := make([]byte, 0, 8+len(h.Profile)+len(h.Library)+len(vendor))
	body = AppendString(body, h.Profile)
	body = AppendString(body, h.Library)
	body = append(body, vendor...)
	return w.WriteRecord(OpHeader, body)
}

// WriteFooter writes the footer magic that ends the record stream.
func (w *Writer) WriteFooter() error {
	n, err := w.w.Write(Magic[:])
	w.offset += uint64(n)
	return err
}

// Offset returns the number of bytes written after the file magic.
func (w *Writer) Offset() uint64 {
	return w.offset
}

// AppendString appends s to dst as a uint32 little-endian length prefix
// followed by its bytes.
func AppendString(dst []byte, s string) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(s)))
	return append(dst, s...)
}
