package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"mercator-hq/rdl/pkg/config"
	"mercator-hq/rdl/pkg/history"
)

const memoryPath = ":memory:"

// SQLiteStorage implements history.Storage on a SQLite database.
type SQLiteStorage struct {
	db     *sql.DB
	config config.SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage opens (creating if needed) the database at cfg.Path and
// brings its schema up to date.
func NewSQLiteStorage(cfg *config.SQLiteConfig) (*SQLiteStorage, error) {
	c := *cfg
	if c.Path == "" {
		c.Path = config.DefaultHistorySQLitePath
	}
	if c.Driver == "" {
		c.Driver = config.DefaultHistorySQLiteDriver
	}

	logger := slog.Default().With("component", "history.storage.sqlite")

	if c.Path != memoryPath {
		if dir := filepath.Dir(c.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, history.NewStorageError("sqlite", "mkdir", err)
			}
		}
	}

	db, err := sql.Open(c.Driver, dsn(c))
	if err != nil {
		return nil, history.NewStorageError("sqlite", "open", err)
	}

	// Every connection to ":memory:" is its own database.
	if c.Path == memoryPath {
		db.SetMaxOpenConns(1)
	} else {
		if c.MaxOpenConns > 0 {
			db.SetMaxOpenConns(c.MaxOpenConns)
		}
		if c.MaxIdleConns > 0 {
			db.SetMaxIdleConns(c.MaxIdleConns)
		}
	}

	s := &SQLiteStorage{db: db, config: c, logger: logger}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("history storage initialized",
		"path", c.Path,
		"driver", c.Driver,
		"wal_mode", c.WALMode,
	)
	return s, nil
}

// dsn builds the connection string. Both drivers accept a file: URI but
// spell the busy timeout differently.
func dsn(c config.SQLiteConfig) string {
	if c.Path == memoryPath {
		return memoryPath
	}
	ms := c.BusyTimeout.Milliseconds()
	if c.Driver == "sqlite3" {
		return fmt.Sprintf("file:%s?_busy_timeout=%d", c.Path, ms)
	}
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)", c.Path, ms)
}

func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode && s.config.Path != memoryPath {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return history.NewStorageError("sqlite", "enable_wal", err)
		}
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return history.NewStorageError("sqlite", "create_schema", err)
	}
	if _, err := s.db.Exec(insertSchemaVersion, SchemaVersion, time.Now().Unix()); err != nil {
		return history.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	if err := s.db.QueryRow(getSchemaVersion).Scan(&version); err != nil {
		return history.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return history.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}
	return nil
}

// Store inserts or replaces a record.
func (s *SQLiteStorage) Store(ctx context.Context, r *history.Record) error {
	if r.ID == "" {
		return history.NewStorageError("sqlite", "store", errors.New("record has no id"))
	}
	_, err := s.db.ExecContext(ctx, insertRecord,
		r.ID,
		r.CheckedAt.UnixNano(),
		r.Document,
		r.Source,
		r.Schema,
		r.DocumentHash,
		r.DocumentSize,
		r.Content,
		r.Valid,
		r.ErrorKind,
		r.ErrorMessage,
		r.ErrorPath,
		r.Offset,
		r.Line,
		r.Column,
		r.DurationMicros,
	)
	if err != nil {
		return history.NewStorageError("sqlite", "store", err)
	}
	return nil
}

// Query returns matching records in the requested order.
func (s *SQLiteStorage) Query(ctx context.Context, q *history.Query) ([]*history.Record, error) {
	where, args := buildWhereClause(q)

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(recordColumns)
	sb.WriteString(" FROM check_records")
	sb.WriteString(where)

	col, ok := sortColumns[q.SortBy]
	if !ok {
		col = "checked_at"
	}
	order := "ASC"
	if q.SortOrder == "desc" {
		order = "DESC"
	}
	fmt.Fprintf(&sb, " ORDER BY %s %s, id %s", col, order, order)

	if q.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
		if q.Offset > 0 {
			sb.WriteString(" OFFSET ?")
			args = append(args, q.Offset)
		}
	} else if q.Offset > 0 {
		sb.WriteString(" LIMIT -1 OFFSET ?")
		args = append(args, q.Offset)
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, history.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	var records []*history.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, history.NewStorageError("sqlite", "scan", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, history.NewStorageError("sqlite", "query", err)
	}
	return records, nil
}

// Count returns the number of matching records.
func (s *SQLiteStorage) Count(ctx context.Context, q *history.Query) (int64, error) {
	where, args := buildWhereClause(q)
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM check_records"+where, args...).Scan(&n); err != nil {
		return 0, history.NewStorageError("sqlite", "count", err)
	}
	return n, nil
}

// Delete removes matching records.
func (s *SQLiteStorage) Delete(ctx context.Context, q *history.Query) (int64, error) {
	where, args := buildWhereClause(q)
	res, err := s.db.ExecContext(ctx, "DELETE FROM check_records"+where, args...)
	if err != nil {
		return 0, history.NewStorageError("sqlite", "delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, history.NewStorageError("sqlite", "delete", err)
	}
	s.logger.Debug("history records deleted", "count", n)
	return n, nil
}

// Ping checks the database connection.
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return history.NewStorageError("sqlite", "ping", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return history.NewStorageError("sqlite", "close", err)
	}
	s.logger.Info("history storage closed")
	return nil
}

func buildWhereClause(q *history.Query) (string, []any) {
	var conds []string
	var args []any

	if q.StartTime != nil {
		conds = append(conds, "checked_at >= ?")
		args = append(args, q.StartTime.UnixNano())
	}
	if q.EndTime != nil {
		conds = append(conds, "checked_at <= ?")
		args = append(args, q.EndTime.UnixNano())
	}
	if len(q.IDs) > 0 {
		conds = append(conds, "id IN (?"+strings.Repeat(", ?", len(q.IDs)-1)+")")
		for _, id := range q.IDs {
			args = append(args, id)
		}
	}
	if q.Document != "" {
		conds = append(conds, "document = ?")
		args = append(args, q.Document)
	}
	if q.Schema != "" {
		conds = append(conds, "schema_name = ?")
		args = append(args, q.Schema)
	}
	if q.Source != "" {
		conds = append(conds, "source = ?")
		args = append(args, q.Source)
	}
	if q.ErrorKind != "" {
		conds = append(conds, "error_kind = ?")
		args = append(args, q.ErrorKind)
	}
	if q.Valid != nil {
		conds = append(conds, "valid = ?")
		args = append(args, *q.Valid)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanRecord(rows *sql.Rows) (*history.Record, error) {
	var (
		r         history.Record
		checkedAt int64
	)
	err := rows.Scan(
		&r.ID,
		&checkedAt,
		&r.Document,
		&r.Source,
		&r.Schema,
		&r.DocumentHash,
		&r.DocumentSize,
		&r.Content,
		&r.Valid,
		&r.ErrorKind,
		&r.ErrorMessage,
		&r.ErrorPath,
		&r.Offset,
		&r.Line,
		&r.Column,
		&r.DurationMicros,
	)
	if err != nil {
		return nil, err
	}
	r.CheckedAt = time.Unix(0, checkedAt).UTC()
	return &r, nil
}
