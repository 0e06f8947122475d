package history

import (
	"context"
	"io"
	"time"
)

// ErrorKind values stored in Record.ErrorKind besides the parse error kinds
// (lexical, syntax, semantic, io).
const (
	KindValidation = "validation"
)

// Record is the stored outcome of a single document check.
type Record struct {
	ID        string    `json:"id"`
	CheckedAt time.Time `json:"checked_at"`

	// Document is the path or name the input was checked under.
	Document string `json:"document"`
	// Source names the caller: cli, http, watch or git.
	Source string `json:"source,omitempty"`
	// Schema is empty when the document was only parsed.
	Schema string `json:"schema,omitempty"`

	DocumentHash string `json:"document_hash"`
	DocumentSize int    `json:"document_size"`
	// Content is kept only when history.store_documents is set.
	Content string `json:"content,omitempty"`

	Valid        bool   `json:"valid"`
	ErrorKind    string `json:"error_kind,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
	ErrorPath    string `json:"error_path,omitempty"`
	Offset       int    `json:"offset,omitempty"`
	Line         int    `json:"line,omitempty"`
	Column       int    `json:"column,omitempty"`

	DurationMicros int64 `json:"duration_us"`
}

// Duration returns the check duration.
func (r *Record) Duration() time.Duration {
	return time.Duration(r.DurationMicros) * time.Microsecond
}

// Query selects records. Zero-valued filters match everything.
type Query struct {
	StartTime *time.Time
	EndTime   *time.Time // Inclusive

	IDs       []string
	Document  string
	Schema    string
	Source    string
	ErrorKind string
	Valid     *bool

	Limit     int
	Offset    int
	SortBy    string // checked_at, document, schema, duration
	SortOrder string // asc or desc
}

// Bool returns a pointer to b, for Query.Valid.
func Bool(b bool) *bool {
	return &b
}

// Storage persists and retrieves check records.
type Storage interface {
	// Store persists a record. Storing an existing ID replaces it.
	Store(ctx context.Context, record *Record) error

	// Query returns the records matching q, sorted and paginated.
	Query(ctx context.Context, q *Query) ([]*Record, error)

	// Count returns the number of records matching q, ignoring pagination.
	Count(ctx context.Context, q *Query) (int64, error)

	// Delete removes the records matching q, ignoring pagination, and
	// returns how many were removed.
	Delete(ctx context.Context, q *Query) (int64, error)

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error

	Close() error
}

// Exporter writes records in an external format.
type Exporter interface {
	Export(ctx context.Context, records []*Record, w io.Writer) error
}
