// Package catalog persists scan results in a pebble database, keyed by ksuid.
package catalog

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/mcapidx/pkg/mcap"
	"github.com/ssargent/mcapidx/pkg/scan"
)

// ErrNotFound is returned when a scan ID is not in the catalog
var ErrNotFound = errors.New("scan not found")

const (
	scanPrefix   = "scan/"
	recordPrefix = "rec/"

	// opcode(1) + body_len(8) + offset(8)
	recordValueSize = 17
)

// Entry is the stored summary of one scan
type Entry struct {
	ID          ksuid.KSUID                   `json:"id"`
	Path        string                        `json:"path"`
	Header      mcap.Header                   `json:"header"`
	HeaderLen   uint64                        `json:"header_len"`
	RecordCount uint64                        `json:"record_count"`
	Stats       map[mcap.OpCode]*scan.OpStats `json:"stats"`
	Terminator  mcap.Terminator               `json:"terminator"`
	EndOffset   uint64                        `json:"end_offset"`
	Duration    time.Duration                 `json:"duration"`
	CreatedAt   time.Time                     `json:"created_at"`
	HasRecords  bool                          `json:"has_records"`
}

// Catalog stores scan results
type Catalog struct {
	db *pebble.DB
}

// Open opens (or creates) a catalog in dir
func Open(dir string) (*Catalog, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	return &Catalog{db: db}, nil
}

// Save stores res and its record descriptors under a new scan ID
func (c *Catalog) Save(res *scan.Result) (ksuid.KSUID, error) {
	id := ksuid.New()
	entry := Entry{
		ID:          id,
		Path:        res.Path,
		Header:      res.Header,
		HeaderLen:   res.HeaderLen,
		RecordCount: res.RecordCount,
		Stats:       res.Stats,
		Terminator:  res.Terminator,
		EndOffset:   res.EndOffset,
		Duration:    res.Duration,
		CreatedAt:   id.Time(),
		HasRecords:  len(res.Records) > 0,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return ksuid.Nil, fmt.Errorf("failed to marshal scan entry: %w", err)
	}

	batch := c.db.NewBatch()
	defer batch.Close()

	if err := batch.Set(scanKey(id), data, nil); err != nil {
		return ksuid.Nil, err
	}
	for _, rec := range res.Records {
		if err := batch.Set(recordKey(id, rec.Offset), encodeRecord(rec), nil); err != nil {
			return ksuid.Nil, err
		}
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return ksuid.Nil, fmt.Errorf("failed to commit scan: %w", err)
	}

	return id, nil
}

// Get returns the summary of a stored scan
func (c *Catalog) Get(id ksuid.KSUID) (*Entry, error) {
	data, closer, err := c.db.Get(scanKey(id))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer closer.Close()

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to decode scan entry %s: %w", id, err)
	}
	return &entry, nil
}

// List returns every stored scan, oldest first
func (c *Catalog) List() ([]*Entry, error) {
	iter, err := c.db.NewIter(prefixOptions([]byte(scanPrefix)))
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var entries []*Entry
	for iter.First(); iter.Valid(); iter.Next() {
		var entry Entry
		if err := json.Unmarshal(iter.Value(), &entry); err != nil {
			return nil, fmt.Errorf("failed to decode scan entry %q: %w", iter.Key(), err)
		}
		entries = append(entries, &entry)
	}
	return entries, iter.Error()
}

// Records returns the stored record descriptors of a scan in offset order
func (c *Catalog) Records(id ksuid.KSUID) ([]mcap.Record, error) {
	if _, err := c.Get(id); err != nil {
		return nil, err
	}

	iter, err := c.db.NewIter(prefixOptions(recordPrefixFor(id)))
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var records []mcap.Record
	for iter.First(); iter.Valid(); iter.Next() {
		rec, err := decodeRecord(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", id, err)
		}
		records = append(records, rec)
	}
	return records, iter.Error()
}

// Delete removes a scan and its records
func (c *Catalog) Delete(id ksuid.KSUID) error {
	if _, err := c.Get(id); err != nil {
		return err
	}

	batch := c.db.NewBatch()
	defer batch.Close()

	prefix := recordPrefixFor(id)
	if err := batch.DeleteRange(prefix, prefixEnd(prefix), nil); err != nil {
		return err
	}
	if err := batch.Delete(scanKey(id), nil); err != nil {
		return err
	}
	return batch.Commit(pebble.Sync)
}

// Close closes the catalog
func (c *Catalog) Close() error {
	return c.db.Close()
}

func scanKey(id ksuid.KSUID) []byte {
	return []byte(scanPrefix + id.String())
}

func recordPrefixFor(id ksuid.KSUID) []byte {
	return []byte(recordPrefix + id.String() + "/")
}

// recordKey sorts records of a scan by offset.
func recordKey(id ksuid.KSUID, offset uint64) []byte {
	return binary.BigEndian.AppendUint64(recordPrefixFor(id), offset)
}

func encodeRecord(rec mcap.Record) []byte {
	buf := make([]byte, recordValueSize)
	buf[0] = byte(rec.Op)
	binary.LittleEndian.PutUint64(buf[1:], rec.BodyLen)
	binary.LittleEndian.PutUint64(buf[9:], rec.Offset)
	return buf
}

func decodeRecord(data []byte) (mcap.Record, error) {
	if len(data) != recordValueSize {
		return mcap.Record{}, fmt.Errorf("corrupt record descriptor: %d bytes", len(data))
	}
	return mcap.Record{
		Op:      mcap.OpCode(data[0]),
		BodyLen: binary.LittleEndian.Uint64(data[1:]),
		Offset:  binary.LittleEndian.Uint64(data[9:]),
	}, nil
}

func prefixOptions(prefix []byte) *pebble.IterOptions {
	return &pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixEnd(prefix),
	}
}

// prefixEnd returns the smallest key greater than every key with prefix.
func prefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
