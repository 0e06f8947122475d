package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for rdl spans.
const (
	AttrDocument     = attribute.Key("rdl.document")
	AttrSchema       = attribute.Key("rdl.schema")
	AttrSize         = attribute.Key("rdl.document.size")
	AttrValid        = attribute.Key("rdl.valid")
	AttrErrorKind    = attribute.Key("rdl.error.kind")
	AttrErrorOffset  = attribute.Key("rdl.error.offset")
	AttrErrorPath    = attribute.Key("rdl.error.path")
	AttrRunID        = attribute.Key("rdl.run_id")
	AttrSource       = attribute.Key("rdl.source")
	AttrGitRevision  = attribute.Key("rdl.git.revision")
	AttrHistoryCount = attribute.Key("rdl.history.count")
)

// DocumentAttributes describes the document being checked.
func DocumentAttributes(document, schema string, size int) []attribute.KeyValue {
	attrs := []attribute.KeyValue{AttrSize.Int(size)}
	if document != "" {
		attrs = append(attrs, AttrDocument.String(document))
	}
	if schema != "" {
		attrs = append(attrs, AttrSchema.String(schema))
	}
	return attrs
}

// SetParseFailure records a parse error location on the span.
func SetParseFailure(span trace.Span, kind string, offset int) {
	span.SetAttributes(
		AttrValid.Bool(false),
		AttrErrorKind.String(kind),
		AttrErrorOffset.Int(offset),
	)
}

// SetValidationFailure records a validation error on the span.
func SetValidationFailure(span trace.Span, kind, path string) {
	span.SetAttributes(
		AttrValid.Bool(false),
		AttrErrorKind.String(kind),
		AttrErrorPath.String(path),
	)
}

// AddEvent adds an event to the span.
func AddEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
