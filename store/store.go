package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Run statuses.
const (
	StatusPending = "pending"
	StatusRunning = "running"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

// Run is one equalization job: an RFP plus a set of proposals processed
// into the consolidated report.
type Run struct {
	ID            string    `json:"id"`
	Status        string    `json:"status"`
	RFPName       string    `json:"rfp_name"`
	ProposalCount int       `json:"proposal_count"`
	OutputDir     string    `json:"output_dir"`
	CSVPath       string    `json:"csv_path,omitempty"`
	XLSXPath      string    `json:"xlsx_path,omitempty"`
	Error         string    `json:"error,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Store persists runs and the extraction cache in SQLite.
type Store struct {
	conn *sql.DB
}

func Open(path string) (*Store, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		rfp_name TEXT NOT NULL,
		proposal_count INTEGER NOT NULL DEFAULT 0,
		output_dir TEXT NOT NULL DEFAULT '',
		csv_path TEXT NOT NULL DEFAULT '',
		xlsx_path TEXT NOT NULL DEFAULT '',
		error TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	CREATE TABLE IF NOT EXISTS extraction_cache (
		payload_hash TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		payload TEXT NOT NULL,
		hit_count INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
	`
	if _, err := s.conn.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// CreateRun registers a new pending run. An empty id gets a fresh UUID.
func (s *Store) CreateRun(id, rfpName string, proposalCount int, outputDir string) (*Run, error) {
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now().UTC()
	run := &Run{
		ID:            id,
		Status:        StatusPending,
		RFPName:       rfpName,
		ProposalCount: proposalCount,
		OutputDir:     outputDir,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	_, err := s.conn.Exec(`
		INSERT INTO runs (id, status, rfp_name, proposal_count, output_dir, csv_path, xlsx_path, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, '', '', '', ?, ?)`,
		run.ID, run.Status, run.RFPName, run.ProposalCount, run.OutputDir, run.CreatedAt, run.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// SetRunning marks a run as in progress.
func (s *Store) SetRunning(id string) error {
	return s.updateStatus(id, StatusRunning, "", "", "")
}

// SetDone records the output paths of a finished run.
func (s *Store) SetDone(id, csvPath, xlsxPath string) error {
	return s.updateStatus(id, StatusDone, csvPath, xlsxPath, "")
}

// SetFailed records the failure reason.
func (s *Store) SetFailed(id string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return s.updateStatus(id, StatusFailed, "", "", msg)
}

func (s *Store) updateStatus(id, status, csvPath, xlsxPath, errMsg string) error {
	res, err := s.conn.Exec(`
		UPDATE runs SET status = ?, csv_path = ?, xlsx_path = ?, error = ?, updated_at = ?
		WHERE id = ?`,
		status, csvPath, xlsxPath, errMsg, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update run %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("run %s not found", id)
	}
	return nil
}

// GetRun fetches one run by id, nil when absent.
func (s *Store) GetRun(id string) (*Run, error) {
	row := s.conn.QueryRow(`
		SELECT id, status, rfp_name, proposal_count, output_dir, csv_path, xlsx_path, error, created_at, updated_at
		FROM runs WHERE id = ?`, id)
	run := &Run{}
	err := row.Scan(&run.ID, &run.Status, &run.RFPName, &run.ProposalCount, &run.OutputDir,
		&run.CSVPath, &run.XLSXPath, &run.Error, &run.CreatedAt, &run.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	return run, nil
}

// ListRuns returns runs newest first, up to limit.
func (s *Store) ListRuns(limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.conn.Query(`
		SELECT id, status, rfp_name, proposal_count, output_dir, csv_path, xlsx_path, error, created_at, updated_at
		FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run := &Run{}
		if err := rows.Scan(&run.ID, &run.Status, &run.RFPName, &run.ProposalCount, &run.OutputDir,
			&run.CSVPath, &run.XLSXPath, &run.Error, &run.CreatedAt, &run.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// PayloadHash keys an extraction cache entry by the document bytes plus
// the prompt kind, so prompt changes invalidate old entries.
func PayloadHash(kind string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(kind))
	h.Write([]byte{0})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// GetCached returns the cached extraction payload for hash, if any.
// Hits bump the entry's counter.
func (s *Store) GetCached(hash string) (string, bool, error) {
	row := s.conn.QueryRow(`SELECT payload FROM extraction_cache WHERE payload_hash = ?`, hash)
	var payload string
	err := row.Scan(&payload)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get cache entry: %w", err)
	}
	if _, err := s.conn.Exec(`UPDATE extraction_cache SET hit_count = hit_count + 1 WHERE payload_hash = ?`, hash); err != nil {
		return "", false, fmt.Errorf("bump cache hit: %w", err)
	}
	return payload, true, nil
}

// PutCached stores an extraction payload, replacing any previous entry.
func (s *Store) PutCached(hash, kind, payload string) error {
	_, err := s.conn.Exec(`
		INSERT INTO extraction_cache (payload_hash, kind, payload, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(payload_hash) DO UPDATE SET payload = excluded.payload, hit_count = 0, created_at = excluded.created_at`,
		hash, kind, payload, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("put cache entry: %w", err)
	}
	return nil
}
