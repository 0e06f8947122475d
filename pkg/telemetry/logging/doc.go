// Package logging provides structured logging with secret redaction.
//
// The package wraps log/slog with:
//   - JSON, text, and console output formats
//   - masking of Git tokens, URL credentials, and custom patterns
//   - context fields (run_id, document, schema, trace_id, span_id)
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:         "info",
//	    Format:        "json",
//	    RedactSecrets: true,
//	})
//
//	ctx = logging.WithRunID(ctx, id)
//	logger.InfoContext(ctx, "document checked", "valid", true)
//
// Libraries that accept *slog.Logger can be handed Logger.Slog, at the
// cost of bypassing redaction for fields added there.
package logging
