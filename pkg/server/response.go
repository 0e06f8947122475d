package server

import (
	"encoding/json"
	"net/http"
	"time"

	"mercator-hq/rdl/pkg/checker"
	"mercator-hq/rdl/pkg/rdl/value"
)

// ErrorBody describes a failure in a response.
type ErrorBody struct {
	Kind       string `json:"kind"`
	Message    string `json:"message"`
	Offset     *int   `json:"offset,omitempty"`
	Line       int    `json:"line,omitempty"`
	Column     int    `json:"column,omitempty"`
	Path       string `json:"path,omitempty"`
	Expected   string `json:"expected,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// CheckResponse is the body of /v1/parse and /v1/check responses.
type CheckResponse struct {
	ID         string     `json:"id"`
	Document   string     `json:"document,omitempty"`
	Schema     string     `json:"schema,omitempty"`
	Valid      bool       `json:"valid"`
	Value      any        `json:"value,omitempty"`
	Canonical  string     `json:"canonical,omitempty"`
	DurationUS int64      `json:"duration_us"`
	Error      *ErrorBody `json:"error,omitempty"`
}

// SchemaInfo describes one registered schema.
type SchemaInfo struct {
	Name     string    `json:"name"`
	Rule     string    `json:"rule"`
	Path     string    `json:"path,omitempty"`
	Hash     string    `json:"hash"`
	LoadedAt time.Time `json:"loaded_at"`
}

// SchemasResponse is the body of GET /v1/schemas.
type SchemasResponse struct {
	Version string       `json:"version"`
	Schemas []SchemaInfo `json:"schemas"`
}

type errorResponse struct {
	Error ErrorBody `json:"error"`
}

// NewCheckResponse renders a check result for API and CLI output.
func NewCheckResponse(res *checker.Result) *CheckResponse {
	resp := &CheckResponse{
		ID:         res.ID,
		Document:   res.Document,
		Schema:     res.Schema,
		Valid:      res.Valid,
		DurationUS: res.Duration.Microseconds(),
	}
	switch {
	case res.ParseError != nil:
		pe := res.ParseError
		offset := pe.Location.Offset
		resp.Error = &ErrorBody{
			Kind:       string(pe.Kind),
			Message:    pe.Message,
			Offset:     &offset,
			Line:       pe.Location.Line,
			Column:     pe.Location.Column,
			Suggestion: pe.Suggestion,
		}
	case res.ValidationError != nil:
		ve := res.ValidationError
		resp.Error = &ErrorBody{
			Kind:       checker.ValidationKind(ve),
			Message:    ve.Message,
			Path:       ve.Path.String(),
			Expected:   ve.Expected,
			Suggestion: ve.Suggestion,
		}
	default:
		resp.Value = value.ToNative(res.Value)
		if s, err := value.Format(res.Value); err == nil {
			resp.Canonical = s
		}
	}
	return resp
}

// ListSchemas describes every schema in reg, sorted by name.
func ListSchemas(reg *checker.Registry) SchemasResponse {
	resp := SchemasResponse{Version: reg.Version(), Schemas: []SchemaInfo{}}
	for _, s := range reg.List() {
		resp.Schemas = append(resp.Schemas, SchemaInfo{
			Name:     s.Name,
			Rule:     s.Rule.String(),
			Path:     s.Path,
			Hash:     s.Hash,
			LoadedAt: s.LoadedAt,
		})
	}
	return resp
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, code int, kind, message string) {
	writeJSON(w, code, errorResponse{Error: ErrorBody{Kind: kind, Message: message}})
}
