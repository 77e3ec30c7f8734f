package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/mdcrawl/internal/model"
)

// ErrJournalNotFound is returned when opening a journal that does not exist
// without CreateIfNotExists.
var ErrJournalNotFound = errors.New("journal not found")

// Journal stores runs and page records in SQLite.
// It is safe for concurrent use; writes are serialized on one connection.
type Journal struct {
	db   *sql.DB
	path string
}

// Options configures Open.
type Options struct {
	// CreateIfNotExists creates the file and its directory when missing.
	CreateIfNotExists bool

	// EnableWAL switches the journal to write-ahead logging.
	EnableWAL bool
}

// DefaultOptions returns the options used by the scrape command.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens the journal file at path.
func Open(path string, opts Options) (*Journal, error) {
	if opts.CreateIfNotExists {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create journal directory: %w", err)
		}
	} else {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s", ErrJournalNotFound, path)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check journal path: %w", err)
		}
	}

	mode := "rw"
	if opts.CreateIfNotExists {
		mode = "rwc"
	}
	db, err := sql.Open("sqlite", path+"?mode="+mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	j := &Journal{db: db, path: path}

	ctx := context.Background()
	if opts.EnableWAL {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if err := j.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return j, nil
}

// Path returns the journal file path.
func (j *Journal) Path() string {
	return j.path
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) createTables(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		seed TEXT NOT NULL,
		output_path TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		written INTEGER DEFAULT 0,
		duplicates INTEGER DEFAULT 0,
		failed INTEGER DEFAULT 0,
		error_count INTEGER DEFAULT 0,
		canceled INTEGER DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_seed ON runs(seed);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id),
		url TEXT NOT NULL,
		depth INTEGER NOT NULL,
		strategy TEXT,
		status TEXT NOT NULL,
		fingerprint TEXT,
		bytes INTEGER DEFAULT 0,
		links INTEGER DEFAULT 0,
		error TEXT,
		recorded_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_pages_run ON pages(run_id);
	CREATE INDEX IF NOT EXISTS idx_pages_fingerprint ON pages(fingerprint);
	`
	_, err := j.db.ExecContext(ctx, schema)
	return err
}

// StartRun inserts a run row and returns its id.
func (j *Journal) StartRun(ctx context.Context, seed, outputPath string, startedAt time.Time) (int64, error) {
	res, err := j.db.ExecContext(ctx,
		`INSERT INTO runs (seed, output_path, started_at) VALUES (?, ?, ?)`,
		seed, outputPath, formatTimestamp(startedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}
	return id, nil
}

// SavePage records one processed URL of a run.
func (j *Journal) SavePage(ctx context.Context, runID int64, rec model.PageRecord) error {
	_, err := j.db.ExecContext(ctx, `
	INSERT INTO pages (run_id, url, depth, strategy, status, fingerprint, bytes, links, error, recorded_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, rec.URL, rec.Depth, rec.Strategy, string(rec.Status), rec.Fingerprint,
		rec.Bytes, rec.Links, rec.Error, formatTimestamp(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("failed to insert page %s: %w", rec.URL, err)
	}
	return nil
}

// FinishRun stores the totals of a finished run.
func (j *Journal) FinishRun(ctx context.Context, runID int64, report *model.RunReport) error {
	failed := report.Count(model.StatusFetchFailed) + report.Count(model.StatusWriteFailed)
	_, err := j.db.ExecContext(ctx, `
	UPDATE runs SET finished_at = ?, written = ?, duplicates = ?, failed = ?, error_count = ?, canceled = ?
	WHERE id = ?`,
		formatTimestamp(report.FinishedAt),
		report.Count(model.StatusWritten),
		report.Count(model.StatusDuplicate),
		failed,
		len(report.Errors),
		boolToInt(report.Canceled),
		runID,
	)
	if err != nil {
		return fmt.Errorf("failed to update run %d: %w", runID, err)
	}
	return nil
}

// Observer returns a page callback that saves each record under runID.
// Save failures are logged and otherwise ignored so the crawl keeps going.
func (j *Journal) Observer(ctx context.Context, runID int64, logger *slog.Logger) func(model.PageRecord) {
	if logger == nil {
		logger = slog.Default()
	}
	return func(rec model.PageRecord) {
		// The run context may already be canceled while the last pages are
		// recorded; the journal write itself should still land.
		if err := j.SavePage(context.WithoutCancel(ctx), runID, rec); err != nil {
			logger.Warn("journal write failed", "url", rec.URL, "error", err)
		}
	}
}

// RunSummary is one row of the run history.
type RunSummary struct {
	ID         int64
	Seed       string
	OutputPath string
	StartedAt  time.Time
	FinishedAt time.Time
	Written    int
	Duplicates int
	Failed     int
	Errors     int
	Canceled   bool
}

// ListRuns returns runs newest first. An empty seed lists every seed.
// limit <= 0 means no limit.
func (j *Journal) ListRuns(ctx context.Context, seed string, limit int) ([]RunSummary, error) {
	query := `
	SELECT id, seed, output_path, started_at, COALESCE(finished_at, ''),
	       written, duplicates, failed, error_count, canceled
	FROM runs`
	var args []any
	if seed != "" {
		query += " WHERE seed = ?"
		args = append(args, seed)
	}
	query += " ORDER BY id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var (
			r                 RunSummary
			started, finished string
			canceled          int
		)
		if err := rows.Scan(&r.ID, &r.Seed, &r.OutputPath, &started, &finished,
			&r.Written, &r.Duplicates, &r.Failed, &r.Errors, &canceled); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.StartedAt = parseTimestamp(started)
		r.FinishedAt = parseTimestamp(finished)
		r.Canceled = canceled != 0
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Pages returns the page records of a run in the order they were processed.
func (j *Journal) Pages(ctx context.Context, runID int64) ([]model.PageRecord, error) {
	rows, err := j.db.QueryContext(ctx, `
	SELECT url, depth, COALESCE(strategy, ''), status, COALESCE(fingerprint, ''),
	       bytes, links, COALESCE(error, '')
	FROM pages WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pages: %w", err)
	}
	defer rows.Close()

	var pages []model.PageRecord
	for rows.Next() {
		var (
			p      model.PageRecord
			status string
		)
		if err := rows.Scan(&p.URL, &p.Depth, &p.Strategy, &status, &p.Fingerprint,
			&p.Bytes, &p.Links, &p.Error); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		p.Status = model.PageStatus(status)
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// parseTimestamp returns the zero time for empty or unparsable input.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
