package mcap

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	// PreambleSize is the size of a record preamble: opcode(1) + body length(8).
	PreambleSize = 9

	scratchSize = 64 * 1024
)

// State is the position of a Walker in its record state machine.
type State int

// Walker states.
const (
	StateReady   State = iota // no record in flight
	StateBody                 // preamble read, body not yet fully consumed
	StateEnded                // end of records observed
	StateFaulted              // a read or decode error occurred
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateBody:
		return "body"
	case StateEnded:
		return "ended"
	case StateFaulted:
		return "faulted"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Terminator tells how a walk reached its end.
type Terminator int

// Terminator values.
const (
	TerminatorNone   Terminator = iota // the walk has not ended
	TerminatorFooter                   // the footer magic was observed
	TerminatorEOF                      // input ended cleanly where a record was expected
)

func (t Terminator) String() string {
	switch t {
	case TerminatorNone:
		return "none"
	case TerminatorFooter:
		return "footer"
	case TerminatorEOF:
		return "eof"
	}
	return fmt.Sprintf("Terminator(%d)", int(t))
}

// Record describes one record of the stream.
type Record struct {
	Op      OpCode `json:"opcode"`
	BodyLen uint64 `json:"body_len"`
	Offset  uint64 `json:"offset"` // position of the opcode byte, relative to the end of the file magic
}

// End returns the offset just past the record body.
func (r Record) End() uint64 {
	return r.Offset + PreambleSize + r.BodyLen
}

// Walker reads records one at a time from a stream positioned right after
// the file magic. It owns the reader and the logical offset; all body reads
// go through it so the offset stays exact.
//
// A Walker is not safe for concurrent use.
type Walker struct {
	r       io.Reader
	offset  uint64
	state   State
	term    Terminator
	footer  uint64
	err     error
	cur     Record
	pending uint64 // body bytes of cur not consumed yet
	buf     [8]byte
	scratch []byte
}

// NewWalker creates a walker over r. The file magic must already have been
// consumed, see ReadMagic.
func NewWalker(r io.Reader) *Walker {
	return &Walker{r: r}
}

// Next returns the next record descriptor. It returns io.EOF once the footer
// magic has been read or the input ends cleanly before an opcode byte; use
// Terminator to tell the two apart. Body bytes of the previous record that
// were not consumed are discarded first.
func (w *Walker) Next() (Record, error) {
	switch w.state {
	case StateFaulted:
		return Record{}, w.err
	case StateEnded:
		return Record{}, io.EOF
	case StateBody:
		if err := w.discard("next"); err != nil {
			return Record{}, err
		}
	}

	start := w.offset
	if _, err := w.read(w.buf[:1]); err != nil {
		if err == io.EOF {
			w.state = StateEnded
			w.term = TerminatorEOF
			return Record{}, io.EOF
		}
		return Record{}, w.fail("next", start, nil, err)
	}
	opcode := w.buf[0]

	// 0x89 can only start the footer magic; it is never a record opcode.
	if opcode == Magic[0] {
		n, err := w.read(w.buf[:MagicSize-1])
		if err != nil {
			if isShortRead(err) {
				return Record{}, w.fail("footer", start, observed(opcode, w.buf[:n]), ErrUnexpectedEOF)
			}
			return Record{}, w.fail("footer", start, nil, err)
		}
		if !bytes.Equal(w.buf[:MagicSize-1], Magic[1:]) {
			return Record{}, w.fail("footer", start, observed(opcode, w.buf[:MagicSize-1]), ErrUnexpectedFooterMagic)
		}
		w.state = StateEnded
		w.term = TerminatorFooter
		w.footer = start
		return Record{}, io.EOF
	}

	n, err := w.read(w.buf[:8])
	if err != nil {
		if isShortRead(err) {
			return Record{}, w.fail("next", start, observed(opcode, w.buf[:n]), ErrTruncatedRecord)
		}
		return Record{}, w.fail("next", start, nil, err)
	}

	w.cur = Record{
		Op:      OpCode(opcode),
		BodyLen: binary.LittleEndian.Uint64(w.buf[:8]),
		Offset:  start,
	}
	w.pending = w.cur.BodyLen
	w.state = StateBody
	return w.cur, nil
}

// SkipBody consumes whatever is left of rec's body. rec must be the record
// most recently returned by Next.
func (w *Walker) SkipBody(rec Record) error {
	if w.state == StateFaulted {
		return w.err
	}
	if w.state != StateBody || rec != w.cur {
		return &FormatError{Op: "skip", Offset: w.offset, Err: ErrRecordNotInFlight}
	}
	return w.discard("skip")
}

// Body returns a reader over the unread part of the current record body.
// Bytes read through it advance the walker offset. The reader reports
// io.EOF at the end of the body and is only valid until the next call to
// Next or SkipBody.
func (w *Walker) Body() io.Reader {
	return bodyReader{w: w}
}

// ReadHeader decodes rec's body as the file header. rec must be the record
// in flight and must carry the header opcode.
func (w *Walker) ReadHeader(rec Record) (*Header, error) {
	if w.state == StateFaulted {
		return nil, w.err
	}
	if rec.Op != OpHeader {
		return nil, &FormatError{Op: "header", Offset: rec.Offset, Observed: []byte{byte(rec.Op)}, Err: ErrNotHeader}
	}
	if w.state != StateBody || rec != w.cur {
		return nil, &FormatError{Op: "header", Offset: w.offset, Err: ErrRecordNotInFlight}
	}

	h, err := DecodeHeader(w.Body(), rec.BodyLen)
	if err != nil {
		if w.state == StateFaulted {
			return nil, w.err
		}
		var fe *FormatError
		if errors.As(err, &fe) {
			return nil, w.fail(fe.Op, w.offset, fe.Observed, fe.Err)
		}
		return nil, w.fail("header", w.offset, nil, err)
	}
	if err := w.discard("header"); err != nil {
		return nil, err
	}
	return h, nil
}

// Offset returns the number of bytes consumed since the file magic.
func (w *Walker) Offset() uint64 {
	return w.offset
}

// State returns the current walker state.
func (w *Walker) State() State {
	return w.state
}

// Terminator reports how the walk ended, or TerminatorNone if it has not.
func (w *Walker) Terminator() Terminator {
	return w.term
}

// FooterOffset returns the offset of the footer magic. It is only
// meaningful when Terminator returns TerminatorFooter.
func (w *Walker) FooterOffset() uint64 {
	return w.footer
}

// Err returns the error that faulted the walker, if any.
func (w *Walker) Err() error {
	return w.err
}

func (w *Walker) read(p []byte) (int, error) {
	n, err := io.ReadFull(w.r, p)
	w.offset += uint64(n)
	return n, err
}

// discard drops the pending body bytes in bounded chunks.
func (w *Walker) discard(op string) error {
	if w.pending > 0 && w.scratch == nil {
		w.scratch = make([]byte, scratchSize)
	}
	for w.pending > 0 {
		chunk := w.scratch
		if w.pending < uint64(len(chunk)) {
			chunk = chunk[:w.pending]
		}
		n, err := w.r.Read(chunk)
		w.offset += uint64(n)
		w.pending -= uint64(n)
		if w.pending == 0 {
			break
		}
		if err != nil && err != io.EOF {
			return w.fail(op, w.offset, nil, err)
		}
		if n == 0 {
			return w.fail(op, w.offset, nil, ErrTruncatedRecord)
		}
	}
	w.state = StateReady
	return nil
}

func (w *Walker) fail(op string, at uint64, seen []byte, err error) error {
	w.state = StateFaulted
	w.pending = 0
	w.err = &FormatError{Op: op, Offset: at, Observed: seen, Err: err}
	return w.err
}

type bodyReader struct {
	w *Walker
}

func (b bodyReader) Read(p []byte) (int, error) {
	w := b.w
	if w.state == StateFaulted {
		return 0, w.err
	}
	if w.state != StateBody || w.pending == 0 {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}
	if uint64(len(p)) > w.pending {
		p = p[:w.pending]
	}

	n, err := w.r.Read(p)
	w.offset += uint64(n)
	w.pending -= uint64(n)
	switch {
	case err == io.EOF && w.pending > 0:
		return n, w.fail("body", w.offset, nil, ErrTruncatedRecord)
	case err != nil && err != io.EOF:
		return n, w.fail("body", w.offset, nil, err)
	case n == 0 && err == nil:
		return 0, w.fail("body", w.offset, nil, ErrTruncatedRecord)
	}
	return n, nil
}

func isShortRead(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

func observed(first byte, rest []byte) []byte {
	out := make([]byte, 0, 1+len(rest))
	out = append(out, first)
	return append(out, rest...)
}
