package history

import (
	"cmp"
	"fmt"
	"slices"
)

// Sort fields accepted in Query.SortBy.
const (
	SortCheckedAt = "checked_at"
	SortDocument  = "document"
	SortSchema    = "schema"
	SortDuration  = "duration"
)

var sortFields = []string{SortCheckedAt, SortDocument, SortSchema, SortDuration}

var errorKinds = []string{"lexical", "syntax", "semantic", "io", KindValidation}

// Validate checks q against the limits and vocabularies the backends accept.
func (q *Query) Validate(maxLimit int) error {
	if q.Limit < 0 {
		return NewQueryError(q, fmt.Errorf("limit must be >= 0, got %d", q.Limit))
	}
	if maxLimit > 0 && q.Limit > maxLimit {
		return NewQueryError(q, fmt.Errorf("limit must be <= %d, got %d", maxLimit, q.Limit))
	}
	if q.Offset < 0 {
		return NewQueryError(q, fmt.Errorf("offset must be >= 0, got %d", q.Offset))
	}
	if q.SortBy != "" && !slices.Contains(sortFields, q.SortBy) {
		return NewQueryError(q, fmt.Errorf("invalid sort field %q (must be one of %v)", q.SortBy, sortFields))
	}
	if q.SortOrder != "" && q.SortOrder != "asc" && q.SortOrder != "desc" {
		return NewQueryError(q, fmt.Errorf("invalid sort order %q (must be 'asc' or 'desc')", q.SortOrder))
	}
	if q.StartTime != nil && q.EndTime != nil && q.StartTime.After(*q.EndTime) {
		return NewQueryError(q, fmt.Errorf("start time must not be after end time"))
	}
	if q.ErrorKind != "" && !slices.Contains(errorKinds, q.ErrorKind) {
		return NewQueryError(q, fmt.Errorf("invalid error kind %q (must be one of %v)", q.ErrorKind, errorKinds))
	}
	return nil
}

// ApplyDefaults fills in the limit and newest-first ordering.
func (q *Query) ApplyDefaults(defaultLimit int) {
	if q.Limit == 0 {
		q.Limit = defaultLimit
	}
	if q.SortBy == "" {
		q.SortBy = SortCheckedAt
	}
	if q.SortOrder == "" {
		q.SortOrder = "desc"
	}
}

// Matches reports whether r passes every filter in q.
func (q *Query) Matches(r *Record) bool {
	if q.StartTime != nil && r.CheckedAt.Before(*q.StartTime) {
		return false
	}
	if q.EndTime != nil && r.CheckedAt.After(*q.EndTime) {
		return false
	}
	if len(q.IDs) > 0 && !slices.Contains(q.IDs, r.ID) {
		return false
	}
	if q.Document != "" && r.Document != q.Document {
		return false
	}
	if q.Schema != "" && r.Schema != q.Schema {
		return false
	}
	if q.Source != "" && r.Source != q.Source {
		return false
	}
	if q.ErrorKind != "" && r.ErrorKind != q.ErrorKind {
		return false
	}
	if q.Valid != nil && r.Valid != *q.Valid {
		return false
	}
	return true
}

// Compare orders two records by q.SortBy and q.SortOrder, breaking ties by ID.
func (q *Query) Compare(a, b *Record) int {
	var c int
	switch q.SortBy {
	case SortDocument:
		c = cmp.Compare(a.Document, b.Document)
	case SortSchema:
		c = cmp.Compare(a.Schema, b.Schema)
	case SortDuration:
		c = cmp.Compare(a.DurationMicros, b.DurationMicros)
	default:
		c = a.CheckedAt.Compare(b.CheckedAt)
	}
	if c == 0 {
		c = cmp.Compare(a.ID, b.ID)
	}
	if q.SortOrder == "desc" {
		return -c
	}
	return c
}
