// Package history keeps a record of every document check.
//
// A Record captures the outcome of one parse-and-validate run: which
// document, which schema, a hash of the input, and where it failed if it
// did. Records are written by recorder.Recorder, kept in a Storage backend
// (see the storage subpackage for SQLite and in-memory implementations),
// trimmed by retention.Pruner and exported by the export subpackage.
//
// Basic usage:
//
//	store, err := storage.New(&cfg.History)
//	rec := recorder.New(store, &cfg.History, logger, collector)
//	defer rec.Close()
//
//	records, err := store.Query(ctx, &history.Query{Schema: "stock", Valid: history.Bool(false)})
package history
