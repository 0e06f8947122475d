package export

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"mercator-hq/rdl/pkg/history"
)

var csvHeader = []string{
	"id", "checked_at", "document", "source", "schema",
	"document_hash", "document_size", "valid",
	"error_kind", "error_message", "error_path", "offset", "line", "column",
	"duration_us",
}

// CSVExporter writes one row per record.
type CSVExporter struct {
	IncludeHeader bool
}

// NewCSVExporter creates a CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{IncludeHeader: includeHeader}
}

// Export writes records as CSV. Document content is not exported.
func (e *CSVExporter) Export(ctx context.Context, records []*history.Record, w io.Writer) error {
	cw := csv.NewWriter(w)

	if e.IncludeHeader {
		if err := cw.Write(csvHeader); err != nil {
			return &history.ExportError{Format: "csv", Count: len(records), Cause: err}
		}
	}

	for i, r := range records {
		if err := ctx.Err(); err != nil {
			return &history.ExportError{Format: "csv", Count: i, Cause: err}
		}
		if err := cw.Write(row(r)); err != nil {
			return &history.ExportError{Format: "csv", Count: i, Cause: err}
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return &history.ExportError{Format: "csv", Count: len(records), Cause: err}
	}
	return nil
}

func row(r *history.Record) []string {
	return []string{
		r.ID,
		r.CheckedAt.UTC().Format(time.RFC3339Nano),
		r.Document,
		r.Source,
		r.Schema,
		r.DocumentHash,
		strconv.Itoa(r.DocumentSize),
		strconv.FormatBool(r.Valid),
		r.ErrorKind,
		r.ErrorMessage,
		r.ErrorPath,
		strconv.Itoa(r.Offset),
		strconv.Itoa(r.Line),
		strconv.Itoa(r.Column),
		strconv.FormatInt(r.DurationMicros, 10),
	}
}
