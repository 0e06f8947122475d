package export

import (
	"context"
	"encoding/json"
	"io"

	"mercator-hq/rdl/pkg/history"
)

// JSONExporter writes records as a JSON array.
type JSONExporter struct {
	Pretty bool
}

// NewJSONExporter creates a JSON exporter.
func NewJSONExporter(pretty bool) *JSONExporter {
	return &JSONExporter{Pretty: pretty}
}

// Export writes records as one JSON array followed by a newline.
func (e *JSONExporter) Export(ctx context.Context, records []*history.Record, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return &history.ExportError{Format: "json", Count: len(records), Cause: err}
	}
	if records == nil {
		records = []*history.Record{}
	}

	enc := json.NewEncoder(w)
	if e.Pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(records); err != nil {
		return &history.ExportError{Format: "json", Count: len(records), Cause: err}
	}
	return nil
}
