package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/paperpoint/invoice-extractor/constants"
	"github.com/paperpoint/invoice-extractor/internal/entity"
)

// One statement per entry: pgx's extended protocol rejects multi-statement
// Exec.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	root        TEXT NOT NULL,
	mode        TEXT NOT NULL,
	found       INTEGER NOT NULL DEFAULT 0,
	processed   INTEGER NOT NULL DEFAULT 0,
	partial     INTEGER NOT NULL DEFAULT 0,
	skipped     INTEGER NOT NULL DEFAULT 0,
	started_at  TEXT NOT NULL,
	finished_at TEXT
)`,
	`CREATE TABLE IF NOT EXISTS records (
	id           TEXT PRIMARY KEY,
	run_id       TEXT NOT NULL REFERENCES runs(id),
	seq          INTEGER NOT NULL,
	file_name    TEXT NOT NULL,
	path         TEXT NOT NULL,
	doc_type     TEXT,
	method       TEXT,
	status       TEXT NOT NULL,
	fields       TEXT NOT NULL,
	warnings     TEXT,
	duration_ms  INTEGER NOT NULL DEFAULT 0,
	created_at   TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_records_run ON records(run_id)`,
}

// Migrate creates the schema when missing.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// CreateRun opens a run row and returns its ID.
func (s *Store) CreateRun(ctx context.Context, root, mode string, found int) (string, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		s.q(`INSERT INTO runs (id, root, mode, found, started_at) VALUES ($1, $2, $3, $4, $5)`),
		id, root, mode, found, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("create run: %w", err)
	}
	s.logger.Info("store.run.created", "run_id", id, "root", root, "mode", mode, "found", found)
	return id, nil
}

// SaveRecords inserts the batch's records under runID in one transaction.
func (s *Store) SaveRecords(ctx context.Context, runID string, recs []*entity.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Appends within a run (watch mode) continue the sequence.
	var base int
	if err := tx.QueryRowContext(ctx,
		s.q(`SELECT COALESCE(MAX(seq), -1) + 1 FROM records WHERE run_id = $1`), runID).Scan(&base); err != nil {
		return fmt.Errorf("next seq: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for i, rec := range recs {
		seq := base + i
		fields, err := json.Marshal(rec.Fields)
		if err != nil {
			return fmt.Errorf("marshal fields for %s: %w", rec.FileName, err)
		}
		warnings, err := json.Marshal(rec.Warnings)
		if err != nil {
			return fmt.Errorf("marshal warnings for %s: %w", rec.FileName, err)
		}
		_, err = tx.ExecContext(ctx,
			s.q(`INSERT INTO records (id, run_id, seq, file_name, path, doc_type, method, status, fields, warnings, duration_ms, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`),
			uuid.New().String(), runID, seq, rec.FileName, rec.Path, rec.DocType, rec.Method,
			string(rec.Status), string(fields), string(warnings), rec.Duration.Milliseconds(), now)
		if err != nil {
			return fmt.Errorf("insert record %s: %w", rec.FileName, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.logger.Debug("store.records.saved", "run_id", runID, "count", len(recs))
	return nil
}

// FinishRun closes the run row with final counters.
func (s *Store) FinishRun(ctx context.Context, runID string, sum entity.RunSummary) error {
	_, err := s.db.ExecContext(ctx,
		s.q(`UPDATE runs SET processed = $1, partial = $2, skipped = $3, finished_at = $4 WHERE id = $5`),
		sum.Processed, sum.Partial, sum.Skipped, time.Now().UTC().Format(time.RFC3339), runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// ListRecords loads a run's records in insertion order.
func (s *Store) ListRecords(ctx context.Context, runID string) ([]*entity.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		s.q(`SELECT file_name, path, doc_type, method, status, fields, warnings, duration_ms
		 FROM records WHERE run_id = $1 ORDER BY seq`),
		runID)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*entity.Record
	for rows.Next() {
		var rec entity.Record
		var status, fields, warnings string
		var durationMS int64
		if err := rows.Scan(&rec.FileName, &rec.Path, &rec.DocType, &rec.Method,
			&status, &fields, &warnings, &durationMS); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.Status = constants.RecordStatus(status)
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		if err := json.Unmarshal([]byte(fields), &rec.Fields); err != nil {
			return nil, fmt.Errorf("decode fields for %s: %w", rec.FileName, err)
		}
		if warnings != "" {
			if err := json.Unmarshal([]byte(warnings), &rec.Warnings); err != nil {
				return nil, fmt.Errorf("decode warnings for %s: %w", rec.FileName, err)
			}
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}
