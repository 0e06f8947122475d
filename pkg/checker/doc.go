// Package checker runs documents through the RDL parser and rule engine
// and reports the outcome to the rest of the system.
//
// A Registry holds the named schemas a deployment knows about. A Checker
// resolves which schema applies to a document, parses and validates it,
// and for every check emits a trace span, metrics, a log line and, when a
// recorder is configured, a history record.
//
//	reg := checker.NewRegistry()
//	if err := reg.Load(cfg.Schemas); err != nil { ... }
//	c := checker.New(reg, checker.Options{Parser: cfg.Parser, Resolve: cfg.SchemaFor})
//	res, err := c.Check(ctx, checker.Request{Document: "prices.rdl"})
//
// Parsing and validation are pure, so a Checker is safe for concurrent use.
package checker
