package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/ssargent/mcapidx/pkg/catalog"
	"github.com/ssargent/mcapidx/pkg/mcap"
	"github.com/ssargent/mcapidx/pkg/scan"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

func checkFormat(format string) error {
	switch format {
	case formatTable, formatJSON:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want table or json)", format)
	}
}

func outputJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputResult displays the summary of a scan
func outputResult(out io.Writer, res *scan.Result, format string) error {
	if format == formatJSON {
		return outputJSON(out, res)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "File:\t%s\n", res.Path)
	fmt.Fprintf(w, "Profile:\t%s\n", res.Header.Profile)
	fmt.Fprintf(w, "Library:\t%s\n", res.Header.Library)
	fmt.Fprintf(w, "Records:\t%d\n", res.RecordCount)
	fmt.Fprintf(w, "Terminator:\t%s\n", res.Terminator)
	fmt.Fprintf(w, "End offset:\t%d\n", res.EndOffset)
	fmt.Fprintf(w, "Duration:\t%s\n", res.Duration)
	if err := w.Flush(); err != nil {
		return err
	}

	if err := outputStats(out, res.Stats); err != nil {
		return err
	}
	if len(res.Records) > 0 {
		fmt.Fprintln(out)
		return outputRecords(out, res.Records)
	}
	return nil
}

// outputStats displays per-opcode counts ordered by opcode
func outputStats(out io.Writer, stats map[mcap.OpCode]*scan.OpStats) error {
	if len(stats) == 0 {
		return nil
	}

	ops := make([]mcap.OpCode, 0, len(stats))
	for op := range stats {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })

	fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "OPCODE\tCOUNT\tBODY BYTES")
	for _, op := range ops {
		fmt.Fprintf(w, "%s\t%d\t%d\n", op, stats[op].Count, stats[op].BodyBytes)
	}
	return w.Flush()
}

// outputRecords displays record descriptors in stream order
func outputRecords(out io.Writer, records []mcap.Record) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "OFFSET\tOPCODE\tBODY LEN")
	for _, rec := range records {
		fmt.Fprintf(w, "%d\t%s\t%d\n", rec.Offset, rec.Op, rec.BodyLen)
	}
	return w.Flush()
}

// outputHeader displays a decoded header record
func outputHeader(out io.Writer, path string, rec mcap.Record, h mcap.Header, format string) error {
	if format == formatJSON {
		return outputJSON(out, struct {
			Path    string `json:"path"`
			BodyLen uint64 `json:"body_len"`
			mcap.Header
		}{path, rec.BodyLen, h})
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "File:\t%s\n", path)
	fmt.Fprintf(w, "Profile:\t%s\n", h.Profile)
	fmt.Fprintf(w, "Library:\t%s\n", h.Library)
	fmt.Fprintf(w, "Body length:\t%d\n", rec.BodyLen)
	return w.Flush()
}

// outputEntries displays catalog entries
func outputEntries(out io.Writer, entries []*catalog.Entry, format string) error {
	if format == formatJSON {
		return outputJSON(out, entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(out, "No scans found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPATH\tPROFILE\tRECORDS\tTERMINATOR\tCREATED")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			e.ID, e.Path, e.Header.Profile, e.RecordCount, e.Terminator,
			e.CreatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}

// outputEntry displays a single catalog entry and optionally its records
func outputEntry(out io.Writer, e *catalog.Entry, records []mcap.Record, format string) error {
	if format == formatJSON {
		return outputJSON(out, struct {
			*catalog.Entry
			Records []mcap.Record `json:"records,omitempty"`
		}{e, records})
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID:\t%s\n", e.ID)
	fmt.Fprintf(w, "File:\t%s\n", e.Path)
	fmt.Fprintf(w, "Profile:\t%s\n", e.Header.Profile)
	fmt.Fprintf(w, "Library:\t%s\n", e.Header.Library)
	fmt.Fprintf(w, "Records:\t%d\n", e.RecordCount)
	fmt.Fprintf(w, "Terminator:\t%s\n", e.Terminator)
	fmt.Fprintf(w, "End offset:\t%d\n", e.EndOffset)
	fmt.Fprintf(w, "Created:\t%s\n", e.CreatedAt.Format(time.RFC3339))
	if err := w.Flush(); err != nil {
		return err
	}

	if err := outputStats(out, e.Stats); err != nil {
		return err
	}
	if len(records) > 0 {
		fmt.Fprintln(out)
		return outputRecords(out, records)
	}
	return nil
}
