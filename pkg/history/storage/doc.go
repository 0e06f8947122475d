// Package storage provides history.Storage backends.
//
// SQLiteStorage is the production backend. It runs on either the pure-Go
// modernc.org/sqlite driver (driver name "sqlite", the default) or the cgo
// github.com/mattn/go-sqlite3 driver ("sqlite3"). MemoryStorage keeps
// records in a map and suits tests and short-lived CLI runs.
package storage
