// Package server exposes the checker over HTTP.
//
// # Routes
//
//	POST /v1/parse              parse the body, return the value as JSON
//	POST /v1/check/{schema}     parse and validate the body against a schema
//	GET  /v1/schemas            list registered schemas
//	GET  /v1/history            query recorded checks (when history is enabled)
//	GET  /health, /ready        liveness and readiness
//	GET  /version               build information
//	GET  /metrics               Prometheus metrics (path configurable)
//
// Request bodies are RDL documents. An optional ?name= query parameter
// names the document in errors, logs and history.
//
// A document that fails to parse or validate is answered with 422 and a
// JSON error carrying its kind and location:
//
//	{
//	  "id": "5f0c...",
//	  "valid": false,
//	  "error": {"kind": "syntax", "message": "expected ')'", "offset": 12, "line": 1, "column": 13}
//	}
//
// # Usage
//
//	srv := server.New(server.Options{
//	    Config:  cfg.Server,
//	    Checker: chk,
//	    Health:  health.New(5 * time.Second),
//	    Metrics: collector,
//	})
//	err := srv.Start(ctx) // blocks until ctx is cancelled
//
// Every route is wrapped in a server span, a request counter, access
// logging, request IDs and panic recovery.
package server
