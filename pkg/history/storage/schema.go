package storage

// SchemaVersion is bumped whenever Schema changes incompatibly.
const SchemaVersion = 1

// Schema creates the history tables. Times are Unix nanoseconds so range
// filters and ordering stay numeric.
const Schema = `
CREATE TABLE IF NOT EXISTS check_records (
    id             TEXT PRIMARY KEY,
    checked_at     INTEGER NOT NULL,
    document       TEXT NOT NULL,
    source         TEXT NOT NULL DEFAULT '',
    schema_name    TEXT NOT NULL DEFAULT '',
    document_hash  TEXT NOT NULL DEFAULT '',
    document_size  INTEGER NOT NULL DEFAULT 0,
    content        TEXT NOT NULL DEFAULT '',
    valid          INTEGER NOT NULL,
    error_kind     TEXT NOT NULL DEFAULT '',
    error_message  TEXT NOT NULL DEFAULT '',
    error_path     TEXT NOT NULL DEFAULT '',
    error_offset   INTEGER NOT NULL DEFAULT 0,
    error_line     INTEGER NOT NULL DEFAULT 0,
    error_column   INTEGER NOT NULL DEFAULT 0,
    duration_us    INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_check_records_checked_at ON check_records(checked_at);
CREATE INDEX IF NOT EXISTS idx_check_records_document ON check_records(document);
CREATE INDEX IF NOT EXISTS idx_check_records_schema ON check_records(schema_name);
CREATE INDEX IF NOT EXISTS idx_check_records_valid ON check_records(valid, checked_at);

CREATE TABLE IF NOT EXISTS schema_version (
    version    INTEGER PRIMARY KEY,
    applied_at INTEGER NOT NULL
);
`

const insertSchemaVersion = `INSERT OR IGNORE INTO schema_version (version, applied_at) VALUES (?, ?)`

const getSchemaVersion = `SELECT COALESCE(MAX(version), 0) FROM schema_version`

const recordColumns = `id, checked_at, document, source, schema_name, document_hash, document_size,
    content, valid, error_kind, error_message, error_path, error_offset, error_line, error_column, duration_us`

const insertRecord = `INSERT OR REPLACE INTO check_records (` + recordColumns + `)
    VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// sortColumns maps Query.SortBy to a column. Only these names reach SQL.
var sortColumns = map[string]string{
	"checked_at": "checked_at",
	"document":   "document",
	"schema":     "schema_name",
	"duration":   "duration_us",
}
