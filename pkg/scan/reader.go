package scan

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ssargent/mcapidx/pkg/mcap"
)

// FileReader provides sequential access to the records of an MCAP file
type FileReader struct {
	file      *os.File
	walker    *mcap.Walker
	header    *mcap.Header
	headerRec mcap.Record
	config    ReaderConfig
}

// NewFileReader opens the file, validates the magic and decodes the header
func NewFileReader(config ReaderConfig) (*FileReader, error) {
	if config.FilePath == "" {
		return nil, errors.New("file path is required")
	}

	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, err
	}

	size := config.BufferSize
	if size <= 0 {
		size = DefaultBufferSize
	}
	br := bufio.NewReaderSize(file, size)

	if err := mcap.ReadMagic(br); err != nil {
		file.Close()
		return nil, err
	}

	walker := mcap.NewWalker(br)
	rec, header, err := readHeader(walker)
	if err != nil {
		file.Close()
		return nil, err
	}

	return &FileReader{
		file:      file,
		walker:    walker,
		header:    header,
		headerRec: rec,
		config:    config,
	}, nil
}

// Header returns the decoded file header
func (r *FileReader) Header() mcap.Header {
	return *r.header
}

// HeaderRecord returns the descriptor of the header record
func (r *FileReader) HeaderRecord() mcap.Record {
	return r.headerRec
}

// ReadNext returns the next record, skipping whatever is left of the
// previous record's body. It returns io.EOF after the last record.
func (r *FileReader) ReadNext() (mcap.Record, error) {
	rec, err := r.walker.Next()
	if err == io.EOF && r.config.Strict && r.walker.Terminator() == mcap.TerminatorEOF {
		return mcap.Record{}, fmt.Errorf("%w at offset %d", ErrMissingFooter, r.walker.Offset())
	}
	return rec, err
}

// Body returns a reader over the body of the record last returned by ReadNext
func (r *FileReader) Body() io.Reader {
	return r.walker.Body()
}

// Offset returns the current offset in the record stream
func (r *FileReader) Offset() uint64 {
	return r.walker.Offset()
}

// Terminator reports how the record stream ended
func (r *FileReader) Terminator() mcap.Terminator {
	return r.walker.Terminator()
}

// Iterator returns a streaming iterator for records
func (r *FileReader) Iterator() RecordIterator {
	return &fileRecordIterator{reader: r}
}

// Close closes the file reader
func (r *FileReader) Close() error {
	return r.file.Close()
}

// fileRecordIterator implements RecordIterator for streaming access
type fileRecordIterator struct {
	reader *FileReader
	record mcap.Record
	err    error
}

func (it *fileRecordIterator) Next() bool {
	if it.err != nil {
		return false
	}
	it.record, it.err = it.reader.ReadNext()
	return it.err == nil
}

func (it *fileRecordIterator) Record() mcap.Record {
	return it.record
}

// Err returns the error that stopped the iteration, nil at a normal end
func (it *fileRecordIterator) Err() error {
	if it.err == io.EOF {
		return nil
	}
	return it.err
}

func (it *fileRecordIterator) Close() error {
	// Don't close the underlying reader as it's owned by the caller
	return nil
}
