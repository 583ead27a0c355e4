package scan

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/mcapidx/pkg/mcap"
)

func TestNewFileReader(t *testing.T) {
	path := writeFile(t, buildFile(t, mcap.Header{Profile: "p", Library: "lib"}, sampleRecords, true))

	reader, err := NewFileReader(ReaderConfig{FilePath: path})
	require.NoError(t, err)
	defer reader.Close()

	assert.Equal(t, mcap.Header{Profile: "p", Library: "lib"}, reader.Header())
	assert.Equal(t, mcap.OpHeader, reader.HeaderRecord().Op)
	assert.Equal(t, reader.HeaderRecord().End(), reader.Offset())
}

func TestNewFileReader_Errors(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		reader, err := NewFileReader(ReaderConfig{})
		assert.Error(t, err)
		assert.Nil(t, reader)
	})

	t.Run("non-existent file", func(t *testing.T) {
		reader, err := NewFileReader(ReaderConfig{FilePath: filepath.Join(t.TempDir(), "nope.mcap")})
		assert.Error(t, err)
		assert.Nil(t, reader)
	})

	t.Run("not an mcap file", func(t *testing.T) {
		reader, err := NewFileReader(ReaderConfig{FilePath: writeFile(t, []byte("0123456789abcdef"))})
		assert.ErrorIs(t, err, mcap.ErrInvalidMagic)
		assert.Nil(t, reader)
	})
}

func TestFileReader_ReadNext(t *testing.T) {
	path := writeFile(t, buildFile(t, mcap.Header{}, sampleRecords, true))

	reader, err := NewFileReader(ReaderConfig{FilePath: path, BufferSize: 8})
	require.NoError(t, err)
	defer reader.Close()

	// Read part of one body, leave the rest for the reader to discard.
	rec, err := reader.ReadNext()
	require.NoError(t, err)
	assert.Equal(t, mcap.OpSchema, rec.Op)
	buf := make([]byte, 3)
	_, err = io.ReadFull(reader.Body(), buf)
	require.NoError(t, err)
	assert.Equal(t, []byte("sch"), buf)

	count := 1
	for {
		next, err := reader.ReadNext()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		assert.Equal(t, rec.End(), next.Offset)
		rec = next
		count++
	}
	assert.Equal(t, len(sampleRecords), count)
	assert.Equal(t, mcap.TerminatorFooter, reader.Terminator())
}

func TestFileReader_Iterator(t *testing.T) {
	path := writeFile(t, buildFile(t, mcap.Header{}, sampleRecords, false))

	t.Run("lenient", func(t *testing.T) {
		reader, err := NewFileReader(ReaderConfig{FilePath: path})
		require.NoError(t, err)
		defer reader.Close()

		it := reader.Iterator()
		var ops []mcap.OpCode
		for it.Next() {
			ops = append(ops, it.Record().Op)
		}
		assert.NoError(t, it.Err())
		assert.Len(t, ops, len(sampleRecords))
		assert.NoError(t, it.Close())
		assert.False(t, it.Next())
	})

	t.Run("strict", func(t *testing.T) {
		reader, err := NewFileReader(ReaderConfig{FilePath: path, Strict: true})
		require.NoError(t, err)
		defer reader.Close()

		it := reader.Iterator()
		for it.Next() {
		}
		assert.ErrorIs(t, it.Err(), ErrMissingFooter)
	})
}
