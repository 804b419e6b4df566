package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/dirscrape/internal/model"
)

// FileName is the name of the archive file inside the data directory.
const FileName = "dirscrape.db"

// ErrRunNotFound is returned when no run has the requested ID.
var ErrRunNotFound = errors.New("run not found")

// Archive stores finished crawl runs in SQLite.
type Archive struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures Archive behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the archive in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*Archive, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (run a crawl with --save first)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	// Foreign keys are set per connection so deletes cascade.
	mode := "rw"
	if opts.CreateIfNotExists {
		mode = "rwc"
	}
	dsn := dbPath + "?mode=" + mode + "&_pragma=foreign_keys(1)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	a := &Archive{
		db:     db,
		dbPath: dbPath,
	}

	ctx := context.Background()
	if opts.EnableWAL {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close() //nolint:errcheck
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := a.createTables(ctx); err != nil {
		_ = db.Close() //nolint:errcheck
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return a, nil
}

// Path returns the database file path.
func (a *Archive) Path() string {
	return a.dbPath
}

// Close closes the database connection.
func (a *Archive) Close() error {
	return a.db.Close()
}

func (a *Archive) createTables(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		seed TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		outcome TEXT NOT NULL,
		visited_count INTEGER NOT NULL,
		pending_count INTEGER NOT NULL,
		record_count INTEGER NOT NULL,
		failure_count INTEGER NOT NULL,
		visited_json TEXT NOT NULL,
		pending_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_seed ON runs(seed);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	CREATE TABLE IF NOT EXISTS records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		fingerprint TEXT NOT NULL,
		name TEXT NOT NULL,
		address TEXT NOT NULL,
		phone TEXT NOT NULL,
		email TEXT NOT NULL,
		contact_person TEXT NOT NULL,
		UNIQUE(run_id, position)
	);

	CREATE INDEX IF NOT EXISTS idx_records_fingerprint ON records(fingerprint);

	CREATE TABLE IF NOT EXISTS failures (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		url TEXT NOT NULL,
		error TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_failures_run ON failures(run_id);
	`

	_, err := a.db.ExecContext(ctx, schema)
	return err
}

// RunSummary describes a stored run without its records.
type RunSummary struct {
	// ID is the run ID in the archive.
	ID int64

	// Seed is the starting URL.
	Seed string

	// StartedAt and FinishedAt bound the crawl loop.
	StartedAt  time.Time
	FinishedAt time.Time

	// Outcome tells why the loop stopped.
	Outcome model.Outcome

	// Counters as collected by the crawl.
	Visited  int
	Pending  int
	Records  int
	Failures int
}

// Duration returns how long the run took.
func (s RunSummary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

// SaveRun stores result in one transaction and returns the new run ID.
// Every record is kept, repeated ones included, so a run reads back with
// exactly the rows the crawl wrote.
func (a *Archive) SaveRun(ctx context.Context, result *model.CrawlResult) (id int64, err error) {
	visitedJSON, err := json.Marshal(result.Visited)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize visited URLs: %w", err)
	}
	pendingJSON, err := json.Marshal(result.Pending)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize pending URLs: %w", err)
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback() //nolint:errcheck
		}
	}()

	res, err := tx.ExecContext(ctx, `
	INSERT INTO runs (seed, started_at, finished_at, outcome,
		visited_count, pending_count, record_count, failure_count,
		visited_json, pending_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		result.Seed,
		formatTimestamp(result.StartedAt),
		formatTimestamp(result.FinishedAt),
		string(result.Outcome),
		len(result.Visited),
		len(result.Pending),
		len(result.Records),
		len(result.Failures),
		string(visitedJSON),
		string(pendingJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}

	recStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO records (run_id, position, fingerprint, name, address, phone, email, contact_person)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare record insert: %w", err)
	}
	defer recStmt.Close()

	for i, rec := range result.Records {
		if _, err = recStmt.ExecContext(ctx, id, i, rec.Fingerprint(),
			rec.Name, rec.Address, rec.Phone, rec.Email, rec.ContactPerson); err != nil {
			return 0, fmt.Errorf("failed to insert record: %w", err)
		}
	}

	for _, f := range result.Failures {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO failures (run_id, url, error) VALUES (?, ?, ?)`,
			id, f.URL, f.Error); err != nil {
			return 0, fmt.Errorf("failed to insert failure: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return id, nil
}

const summaryColumns = `id, seed, started_at, finished_at, outcome,
	visited_count, pending_count, record_count, failure_count`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSummary(row rowScanner) (RunSummary, error) {
	var (
		s                 RunSummary
		started, finished string
		outcome           string
	)
	err := row.Scan(&s.ID, &s.Seed, &started, &finished, &outcome,
		&s.Visited, &s.Pending, &s.Records, &s.Failures)
	if err != nil {
		return RunSummary{}, err
	}
	s.StartedAt = parseTimestamp(started)
	s.FinishedAt = parseTimestamp(finished)
	s.Outcome = model.Outcome(outcome)
	return s, nil
}

// ListRuns returns stored runs, newest first. An empty seed lists every
// seed; limit <= 0 lists all runs.
func (a *Archive) ListRuns(ctx context.Context, seed string, limit int) ([]RunSummary, error) {
	query := `SELECT ` + summaryColumns + ` FROM runs WHERE 1=1`
	args := make([]any, 0, 2)

	if seed != "" {
		query += " AND seed = ?"
		args = append(args, seed)
	}
	query += " ORDER BY started_at DESC, id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]RunSummary, 0)
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, s)
	}
	return runs, rows.Err()
}

// GetRun loads a run with its records and failures.
// It returns ErrRunNotFound if id does not exist.
func (a *Archive) GetRun(ctx context.Context, id int64) (*RunSummary, *model.CrawlResult, error) {
	row := a.db.QueryRowContext(ctx,
		`SELECT `+summaryColumns+`, visited_json, pending_json FROM runs WHERE id = ?`, id)

	var (
		s                        RunSummary
		started, finished        string
		outcome                  string
		visitedJSON, pendingJSON string
	)
	err := row.Scan(&s.ID, &s.Seed, &started, &finished, &outcome,
		&s.Visited, &s.Pending, &s.Records, &s.Failures, &visitedJSON, &pendingJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("%w: %d", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get run: %w", err)
	}
	s.StartedAt = parseTimestamp(started)
	s.FinishedAt = parseTimestamp(finished)
	s.Outcome = model.Outcome(outcome)

	result := model.NewCrawlResult(s.Seed)
	result.StartedAt = s.StartedAt
	result.FinishedAt = s.FinishedAt
	result.Outcome = s.Outcome
	if err := json.Unmarshal([]byte(visitedJSON), &result.Visited); err != nil {
		return nil, nil, fmt.Errorf("failed to parse visited URLs: %w", err)
	}
	if err := json.Unmarshal([]byte(pendingJSON), &result.Pending); err != nil {
		return nil, nil, fmt.Errorf("failed to parse pending URLs: %w", err)
	}

	if result.Records, err = a.records(ctx, id); err != nil {
		return nil, nil, err
	}
	if result.Failures, err = a.failures(ctx, id); err != nil {
		return nil, nil, err
	}

	return &s, result, nil
}

func (a *Archive) records(ctx context.Context, runID int64) ([]model.Record, error) {
	rows, err := a.db.QueryContext(ctx, `
	SELECT name, address, phone, email, contact_person
	FROM records WHERE run_id = ? ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	records := make([]model.Record, 0)
	for rows.Next() {
		var r model.Record
		if err := rows.Scan(&r.Name, &r.Address, &r.Phone, &r.Email, &r.ContactPerson); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (a *Archive) failures(ctx context.Context, runID int64) ([]model.Failure, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT url, error FROM failures WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query failures: %w", err)
	}
	defer rows.Close()

	failures := make([]model.Failure, 0)
	for rows.Next() {
		var f model.Failure
		if err := rows.Scan(&f.URL, &f.Error); err != nil {
			return nil, fmt.Errorf("failed to scan failure: %w", err)
		}
		failures = append(failures, f)
	}
	return failures, rows.Err()
}

// DeleteRun removes a run and everything stored with it.
func (a *Archive) DeleteRun(ctx context.Context, id int64) error {
	res, err := a.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrRunNotFound, id)
	}
	return nil
}

// timestampLayout is RFC 3339 with a fixed nine digit fraction, so stored
// UTC times sort lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// timestampFormats contains the timestamp formats the archive may hold.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp parses s with the known formats, returning the zero time
// if none matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
