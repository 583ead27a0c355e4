package scan

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/ssargent/mcapidx/pkg/mcap"
	"github.com/ssargent/mcapidx/pkg/metrics"
)

// Scanner validates MCAP files and summarizes their records
type Scanner struct {
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewScanner creates a scanner. Both arguments may be nil.
func NewScanner(logger *zap.Logger, m *metrics.Metrics) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{logger: logger, metrics: m}
}

// Scan reads a whole MCAP stream from r: the file magic, the header record
// and every following record up to the footer magic. Record bodies are
// skipped. The context is checked between records.
func (s *Scanner) Scan(ctx context.Context, r io.Reader, opts Options, visit Visitor) (*Result, error) {
	start := time.Now()
	res, err := s.scan(ctx, r, opts, visit)
	duration := time.Since(start)

	term := mcap.TerminatorNone
	if res != nil {
		res.Duration = duration
		term = res.Terminator
	}
	s.metrics.RecordScan(err == nil, term, duration)

	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Scanner) scan(ctx context.Context, r io.Reader, opts Options, visit Visitor) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := mcap.ReadMagic(r); err != nil {
		return nil, err
	}

	w := mcap.NewWalker(r)
	first, header, err := readHeader(w)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("decoded header",
		zap.String("profile", header.Profile),
		zap.String("library", header.Library),
		zap.Uint64("body_len", first.BodyLen))

	res := &Result{
		Header:    *header,
		HeaderLen: first.BodyLen,
		Stats:     make(map[mcap.OpCode]*OpStats),
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec, err := w.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if ce := s.logger.Check(zap.DebugLevel, "record"); ce != nil {
			ce.Write(
				zap.Stringer("opcode", rec.Op),
				zap.Uint64("offset", rec.Offset),
				zap.Uint64("body_len", rec.BodyLen))
		}
		s.metrics.RecordWalked(rec)

		st, ok := res.Stats[rec.Op]
		if !ok {
			st = &OpStats{}
			res.Stats[rec.Op] = st
		}
		st.Count++
		st.BodyBytes += rec.BodyLen
		res.RecordCount++
		if opts.KeepRecords {
			res.Records = append(res.Records, rec)
		}

		if visit != nil {
			if err := visit(rec); err != nil {
				return nil, err
			}
		}
		if err := w.SkipBody(rec); err != nil {
			return nil, err
		}
	}

	res.Terminator = w.Terminator()
	res.EndOffset = w.Offset()
	if res.Terminator == mcap.TerminatorEOF {
		if opts.Strict {
			return nil, fmt.Errorf("%w at offset %d", ErrMissingFooter, res.EndOffset)
		}
		s.logger.Warn("input ended without footer magic", zap.Uint64("offset", res.EndOffset))
	}

	return res, nil
}

// ScanFile opens path and scans it with a buffered reader.
func (s *Scanner) ScanFile(ctx context.Context, path string, opts Options, visit Visitor) (*Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	size := opts.BufferSize
	if size <= 0 {
		size = DefaultBufferSize
	}

	res, err := s.Scan(ctx, bufio.NewReaderSize(file, size), opts, visit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	res.Path = path

	s.logger.Info("scanned file",
		zap.String("path", path),
		zap.Uint64("records", res.RecordCount),
		zap.Stringer("terminator", res.Terminator),
		zap.Duration("duration", res.Duration))
	return res, nil
}

// readHeader reads the first record and decodes it as the file header.
func readHeader(w *mcap.Walker) (mcap.Record, *mcap.Header, error) {
	first, err := w.Next()
	if err == io.EOF {
		return mcap.Record{}, nil, ErrMissingHeader
	}
	if err != nil {
		return mcap.Record{}, nil, err
	}
	if first.Op != mcap.OpHeader {
		return mcap.Record{}, nil, fmt.Errorf("%w: got %s at offset %d", ErrUnexpectedOpcode, first.Op, first.Offset)
	}

	header, err := w.ReadHeader(first)
	if err != nil {
		return mcap.Record{}, nil, err
	}
	return first, header, nil
}
