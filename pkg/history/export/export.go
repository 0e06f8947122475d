package export

import (
	"fmt"

	"mercator-hq/rdl/pkg/history"
)

// New returns the exporter for format ("json" or "csv").
func New(format string, pretty bool) (history.Exporter, error) {
	switch format {
	case "json":
		return NewJSONExporter(pretty), nil
	case "csv":
		return NewCSVExporter(true), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q (must be json or csv)", format)
	}
}
