package scan

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ssargent/mcapidx/pkg/mcap"
	"github.com/ssargent/mcapidx/pkg/metrics"
)

type fixtureRecord struct {
	op   mcap.OpCode
	body []byte
}

func buildFile(t testing.TB, h mcap.Header, records []fixtureRecord, footer bool) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := mcap.NewWriter(&buf)
	require.NoError(t, w.WriteMagic())
	_, err := w.WriteHeader(h, nil)
	require.NoError(t, err)
	for _, rec := range records {
		_, err := w.WriteRecord(rec.op, rec.body)
		require.NoError(t, err)
	}
	if footer {
		require.NoError(t, w.WriteFooter())
	}
	return buf.Bytes()
}

func writeFile(t testing.TB, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.mcap")
	require.NoError(t, os.WriteFile(path, data, 0600))
	return path
}

var sampleRecords = []fixtureRecord{
	{mcap.OpSchema, []byte("schema")},
	{mcap.OpChannel, []byte("channel")},
	{mcap.OpMessage, bytes.Repeat([]byte("m"), 100)},
	{mcap.OpMessage, bytes.Repeat([]byte("n"), 200)},
	{0x77, []byte("vendor")},
	{mcap.OpFooter, make([]byte, 20)},
}

func TestScanner_Scan(t *testing.T) {
	data := buildFile(t, mcap.Header{Profile: "ros2", Library: "mcapidx-test"}, sampleRecords, true)
	s := NewScanner(nil, metrics.NewMetrics(prometheus.NewRegistry()))

	res, err := s.Scan(context.Background(), bytes.NewReader(data), Options{KeepRecords: true}, nil)
	require.NoError(t, err)

	assert.Equal(t, mcap.Header{Profile: "ros2", Library: "mcapidx-test"}, res.Header)
	assert.Equal(t, uint64(len(sampleRecords)), res.RecordCount)
	assert.Equal(t, mcap.TerminatorFooter, res.Terminator)
	assert.Equal(t, uint64(len(data)-mcap.MagicSize), res.EndOffset)

	require.Len(t, res.Records, len(sampleRecords))
	expected := mcap.PreambleSize + res.HeaderLen
	for i, rec := range res.Records {
		assert.Equal(t, sampleRecords[i].op, rec.Op)
		assert.Equal(t, expected, rec.Offset)
		expected = rec.End()
	}

	assert.Equal(t, &OpStats{Count: 2, BodyBytes: 300}, res.Stats[mcap.OpMessage])
	assert.Equal(t, &OpStats{Count: 1, BodyBytes: 6}, res.Stats[0x77])
	assert.Nil(t, res.Stats[mcap.OpHeader])
}

func TestScanner_HeaderOnlyFile(t *testing.T) {
	data := buildFile(t, mcap.Header{Profile: "p", Library: "lib"}, nil, true)

	var visited int
	res, err := NewScanner(nil, nil).Scan(context.Background(), bytes.NewReader(data), Options{}, func(mcap.Record) error {
		visited++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, mcap.Header{Profile: "p", Library: "lib"}, res.Header)
	assert.Zero(t, visited)
	assert.Zero(t, res.RecordCount)
	assert.Empty(t, res.Records)
}

func TestScanner_KeepRecordsOff(t *testing.T) {
	data := buildFile(t, mcap.Header{}, sampleRecords, true)

	res, err := NewScanner(nil, nil).Scan(context.Background(), bytes.NewReader(data), Options{}, nil)
	require.NoError(t, err)
	assert.Nil(t, res.Records)
	assert.Equal(t, uint64(len(sampleRecords)), res.RecordCount)
}

func TestScanner_MissingFooter(t *testing.T) {
	data := buildFile(t, mcap.Header{}, sampleRecords, false)

	t.Run("lenient", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		s := NewScanner(zap.New(core), nil)

		res, err := s.Scan(context.Background(), bytes.NewReader(data), Options{}, nil)
		require.NoError(t, err)
		assert.Equal(t, mcap.TerminatorEOF, res.Terminator)
		assert.Equal(t, 1, logs.FilterMessage("input ended without footer magic").Len())
	})

	t.Run("strict", func(t *testing.T) {
		_, err := NewScanner(nil, nil).Scan(context.Background(), bytes.NewReader(data), Options{Strict: true}, nil)
		assert.ErrorIs(t, err, ErrMissingFooter)
	})
}

func TestScanner_Errors(t *testing.T) {
	valid := buildFile(t, mcap.Header{Profile: "p", Library: "l"}, sampleRecords, true)

	notHeader := buildFile(t, mcap.Header{}, nil, true)
	notHeader[mcap.MagicSize] = byte(mcap.OpMessage)

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"bad magic", append([]byte("NOTMCAP!"), valid[mcap.MagicSize:]...), mcap.ErrInvalidMagic},
		{"empty", nil, mcap.ErrUnexpectedEOF},
		{"magic only", mcap.Magic[:], ErrMissingHeader},
		{"magic and footer", append(mcap.Magic[:], mcap.Magic[:]...), ErrMissingHeader},
		{"first record not header", notHeader, ErrUnexpectedOpcode},
		{"truncated body", valid[:len(valid)-30], mcap.ErrTruncatedRecord},
		{"corrupt footer", append(valid[:len(valid)-1:len(valid)-1], 0x00), mcap.ErrUnexpectedFooterMagic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := prometheus.NewRegistry()
			s := NewScanner(nil, metrics.NewMetrics(reg))

			res, err := s.Scan(context.Background(), bytes.NewReader(tt.data), Options{}, nil)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, res)
		})
	}
}

func TestScanner_VisitorErrorStopsScan(t *testing.T) {
	data := buildFile(t, mcap.Header{}, sampleRecords, true)
	stop := errors.New("stop")

	var seen []mcap.OpCode
	_, err := NewScanner(nil, nil).Scan(context.Background(), bytes.NewReader(data), Options{}, func(rec mcap.Record) error {
		seen = append(seen, rec.Op)
		if rec.Op == mcap.OpMessage {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, []mcap.OpCode{mcap.OpSchema, mcap.OpChannel, mcap.OpMessage}, seen)
}

func TestScanner_ContextCanceled(t *testing.T) {
	data := buildFile(t, mcap.Header{}, sampleRecords, true)
	ctx, cancel := context.WithCancel(context.Background())

	_, err := NewScanner(nil, nil).Scan(ctx, bytes.NewReader(data), Options{}, func(rec mcap.Record) error {
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScanner_ScanFile(t *testing.T) {
	data := buildFile(t, mcap.Header{Profile: "p", Library: "l"}, sampleRecords, true)
	path := writeFile(t, data)

	res, err := NewScanner(zap.NewNop(), nil).ScanFile(context.Background(), path, Options{BufferSize: 16, KeepRecords: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, path, res.Path)
	assert.Len(t, res.Records, len(sampleRecords))

	_, err = NewScanner(nil, nil).ScanFile(context.Background(), filepath.Join(t.TempDir(), "missing.mcap"), Options{}, nil)
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := writeFile(t, data[:len(data)-50])
	_, err = NewScanner(nil, nil).ScanFile(context.Background(), bad, Options{}, nil)
	assert.ErrorIs(t, err, mcap.ErrTruncatedRecord)
	assert.Contains(t, err.Error(), bad)
}
