package scan

import (
	"errors"
	"time"

	"github.com/ssargent/mcapidx/pkg/mcap"
)

// DefaultBufferSize is the read buffer size used when none is configured
const DefaultBufferSize = 64 * 1024

// Options controls a single scan
type Options struct {
	Strict      bool // a file ending without the footer magic is an error
	KeepRecords bool // collect every record descriptor in Result.Records
	BufferSize  int  // read buffer size for ScanFile (0 = DefaultBufferSize)
}

// ReaderConfig holds configuration for the file reader
type ReaderConfig struct {
	FilePath   string // Path to the MCAP file
	BufferSize int    // Read buffer size (0 = DefaultBufferSize)
	Strict     bool   // Report a missing footer magic as an error
}

// OpStats aggregates the records of one opcode
type OpStats struct {
	Count     uint64 `json:"count"`
	BodyBytes uint64 `json:"body_bytes"`
}

// Result is the outcome of a complete scan
type Result struct {
	Path        string                   `json:"path,omitempty"`
	Header      mcap.Header              `json:"header"`
	HeaderLen   uint64                   `json:"header_len"`
	Records     []mcap.Record            `json:"records,omitempty"`
	RecordCount uint64                   `json:"record_count"`
	Stats       map[mcap.OpCode]*OpStats `json:"stats"`
	Terminator  mcap.Terminator          `json:"terminator"`
	EndOffset   uint64                   `json:"end_offset"`
	Duration    time.Duration            `json:"duration"`
}

// Visitor is called for every record after the header. Returning an error
// stops the scan.
type Visitor func(rec mcap.Record) error

// RecordIterator provides streaming access to records
type RecordIterator interface {
	Next() bool
	Record() mcap.Record
	Err() error
	Close() error
}

// Errors
var (
	ErrMissingHeader    = errors.New("missing header record")
	ErrUnexpectedOpcode = errors.New("first record is not a header")
	ErrMissingFooter    = errors.New("input ended without footer magic")
)
