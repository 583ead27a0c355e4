// Package mcap walks the record stream of an MCAP file without loading it
// into memory.
//
// # File Layout
//
// An MCAP file is a signature, a sequence of records and a closing signature:
//
//	[Magic(8)][Record]...[Record][Magic(8)]
//
// The magic is 0x89 'M' 'C' 'A' 'P' '0' '\r' '\n'. Every record starts with
// a 9-byte preamble followed by its body:
//
//	[Opcode(1)][BodyLen(8)][Body(BodyLen)]
//
// BodyLen is an unsigned little-endian integer. The first record is always the
// header, whose body holds two length-prefixed strings:
//
//	[ProfileLen(4)][Profile][LibraryLen(4)][Library][vendor fields...]
//
// # Usage
//
//	if err := mcap.ReadMagic(r); err != nil {
//	    return err
//	}
//	w := mcap.NewWalker(r)
//	rec, err := w.Next()
//	if err != nil {
//	    return err
//	}
//	header, err := w.ReadHeader(rec)
//	if err != nil {
//	    return err
//	}
//	for {
//	    rec, err := w.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    if err := w.SkipBody(rec); err != nil {
//	        return err
//	    }
//	}
//
// # Offsets
//
// Record offsets are relative to the first byte after the file magic. The
// Walker is the only owner of the offset: bodies are consumed through
// SkipBody, ReadHeader or the reader returned by Body, and any body bytes left
// unread are discarded by the next call to Next, so offsets never drift.
//
// # End Of Records
//
// The opcode byte 0x89 is never a record: it must begin the closing magic,
// and anything else following it is ErrUnexpectedFooterMagic. Input that ends
// cleanly where an opcode byte was expected also ends the walk. Both cases
// return io.EOF from Next; Walker.Terminator reports which one happened so
// callers can decide whether a missing footer is acceptable.
//
// # Errors
//
// All failures are *FormatError values wrapping one of the package's sentinel
// errors (or the underlying I/O error) and carrying the offset where they were
// detected. Errors are terminal: a faulted Walker returns the same error from
// every later call.
//
// Record payloads are never interpreted; chunk decompression, summary
// indexes and CRC checks are left to other layers.
package mcap
