package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/venlin/kern/internal/kernel"
)

const schema = `
CREATE TABLE IF NOT EXISTS task_runs (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	task          TEXT NOT NULL,
	invocation_id TEXT NOT NULL,
	trigger_kind  TEXT NOT NULL,
	started_at    TIMESTAMP NOT NULL,
	finished_at   TIMESTAMP NOT NULL,
	status        TEXT NOT NULL,
	result        TEXT,
	error         TEXT,
	logs          TEXT
);
CREATE INDEX IF NOT EXISTS idx_task_runs_task ON task_runs (task, id);
`

var _ Store = (*SQLiteStore)(nil)

// SQLiteStore persists run records to a local sqlite database so the run
// history survives process restarts.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	// sqlite handles one writer at a time
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Append(rec kernel.RunRecord) error {
	resultJSON, err := marshalNullable(rec.Result)
	if err != nil {
		return fmt.Errorf("encoding run result: %w", err)
	}
	logsJSON, err := marshalNullable(rec.Logs)
	if err != nil {
		return fmt.Errorf("encoding run logs: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO task_runs
			(task, invocation_id, trigger_kind, started_at, finished_at, status, result, error, logs)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Task, rec.InvocationID, rec.Trigger,
		rec.StartedAt.UTC(), rec.FinishedAt.UTC(),
		rec.Status, resultJSON, rec.Error, logsJSON,
	)
	if err != nil {
		return fmt.Errorf("inserting run record: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Recent(limit int) ([]kernel.RunRecord, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := s.db.Query(`
		SELECT task, invocation_id, trigger_kind, started_at, finished_at, status, result, error, logs
		FROM task_runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying run records: %w", err)
	}
	return scanRecords(rows)
}

func (s *SQLiteStore) ForTask(task string, limit int) ([]kernel.RunRecord, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := s.db.Query(`
		SELECT task, invocation_id, trigger_kind, started_at, finished_at, status, result, error, logs
		FROM task_runs WHERE task = ? ORDER BY id DESC LIMIT ?`, task, limit)
	if err != nil {
		return nil, fmt.Errorf("querying run records: %w", err)
	}
	return scanRecords(rows)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanRecords(rows *sql.Rows) ([]kernel.RunRecord, error) {
	defer func() {
		_ = rows.Close()
	}()

	var records []kernel.RunRecord
	for rows.Next() {
		var (
			rec                  kernel.RunRecord
			started, finished    time.Time
			resultJSON, logsJSON sql.NullString
		)
		if err := rows.Scan(
			&rec.Task, &rec.InvocationID, &rec.Trigger,
			&started, &finished,
			&rec.Status, &resultJSON, &rec.Error, &logsJSON,
		); err != nil {
			return nil, fmt.Errorf("scanning run record: %w", err)
		}
		rec.StartedAt = started
		rec.FinishedAt = finished

		if resultJSON.Valid && resultJSON.String != "" {
			if err := json.Unmarshal([]byte(resultJSON.String), &rec.Result); err != nil {
				return nil, fmt.Errorf("decoding run result: %w", err)
			}
		}
		if logsJSON.Valid && logsJSON.String != "" {
			if err := json.Unmarshal([]byte(logsJSON.String), &rec.Logs); err != nil {
				return nil, fmt.Errorf("decoding run logs: %w", err)
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func marshalNullable(v any) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}
