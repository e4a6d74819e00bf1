package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/n0roo/mdhelper/internal/db"
)

// Status of a generation run
type Status string

const (
	StatusSuccess Status = "success" // every report written
	StatusPartial Status = "partial" // some reports skipped
	StatusFailed  Status = "failed"  // pass aborted, nothing written
)

// Run is one recorded generation pass
type Run struct {
	ID         string    `json:"id"`
	Vault      string    `json:"vault"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Documents  int       `json:"documents"`
	Tags       int       `json:"tags"`
	Reports    int       `json:"reports"`
	Failed     int       `json:"failed"`
	Entries    int       `json:"entries"`
	Status     Status    `json:"status"`
	Error      string    `json:"error,omitempty"`
}

// Duration returns how long the run took
func (r *Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Report is the outcome of one report within a run
type Report struct {
	RunID    string `json:"run_id"`
	Position int    `json:"position"`
	Title    string `json:"title"`
	Target   string `json:"target"`
	Entries  int    `json:"entries"`
	Bytes    int    `json:"bytes"`
	Error    string `json:"error,omitempty"`
}

// Stats summarizes the recorded runs
type Stats struct {
	Runs      int       `json:"runs"`
	Failed    int       `json:"failed"`
	LastRunAt time.Time `json:"last_run_at,omitempty"`
}

// Store records generation runs
type Store struct {
	db db.Database
}

// NewStore creates a store over an open database
func NewStore(database db.Database) *Store {
	return &Store{db: database}
}

// Open opens the history database at path, SQLite unless MDH_DB_TYPE
// selects DuckDB.
func Open(path string) (*Store, db.DBType, error) {
	database, dbType, err := db.OpenAuto(path)
	if err != nil {
		return nil, "", err
	}
	return NewStore(database), dbType, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores a run and its reports in one transaction. A missing run ID
// is generated.
func (s *Store) Record(run *Run, reports []Report) (string, error) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("트랜잭션 시작 실패: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (id, vault, started_at, finished_at, documents, tags, reports, failed, entries, status, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Vault, run.StartedAt.UTC(), run.FinishedAt.UTC(), run.Documents, run.Tags,
		run.Reports, run.Failed, run.Entries, string(run.Status), run.Error)
	if err != nil {
		return "", fmt.Errorf("실행 기록 저장 실패: %w", err)
	}

	for i, r := range reports {
		_, err = tx.Exec(`
			INSERT INTO run_reports (run_id, position, title, target, entries, bytes, error)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, run.ID, i, r.Title, r.Target, r.Entries, r.Bytes, r.Error)
		if err != nil {
			return "", fmt.Errorf("리포트 기록 저장 실패: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("커밋 실패: %w", err)
	}
	return run.ID, nil
}

// Recent returns the latest runs, newest first
func (s *Store) Recent(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
		SELECT id, vault, started_at, finished_at, documents, tags, reports, failed, entries,
			COALESCE(status, ''), COALESCE(error, '')
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("실행 기록 조회 실패: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// Get returns one run
func (s *Store) Get(id string) (*Run, error) {
	row := s.db.QueryRow(`
		SELECT id, vault, started_at, finished_at, documents, tags, reports, failed, entries,
			COALESCE(status, ''), COALESCE(error, '')
		FROM runs
		WHERE id = ?
	`, id)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("실행 기록을 찾을 수 없습니다: %s", id)
	}
	return run, err
}

// Reports returns the reports of a run in generation order
func (s *Store) Reports(runID string) ([]Report, error) {
	rows, err := s.db.Query(`
		SELECT run_id, position, COALESCE(title, ''), COALESCE(target, ''), entries, bytes, COALESCE(error, '')
		FROM run_reports
		WHERE run_id = ?
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("리포트 기록 조회 실패: %w", err)
	}
	defer rows.Close()

	var reports []Report
	for rows.Next() {
		var r Report
		if err := rows.Scan(&r.RunID, &r.Position, &r.Title, &r.Target, &r.Entries, &r.Bytes, &r.Error); err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// Stats returns run statistics
func (s *Store) Stats() (*Stats, error) {
	stats := &Stats{}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&stats.Runs); err != nil {
		return nil, fmt.Errorf("통계 조회 실패: %w", err)
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM runs WHERE status = ?`, string(StatusFailed)).Scan(&stats.Failed); err != nil {
		return nil, fmt.Errorf("통계 조회 실패: %w", err)
	}

	err := s.db.QueryRow(`SELECT started_at FROM runs ORDER BY started_at DESC LIMIT 1`).Scan(&stats.LastRunAt)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("통계 조회 실패: %w", err)
	}
	return stats, nil
}

// ExportJSON exports recent runs as JSON
func (s *Store) ExportJSON(limit int) ([]byte, error) {
	runs, err := s.Recent(limit)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(runs, "", "  ")
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (*Run, error) {
	var run Run
	var status string
	var finished sql.NullTime
	err := row.Scan(&run.ID, &run.Vault, &run.StartedAt, &finished, &run.Documents, &run.Tags,
		&run.Reports, &run.Failed, &run.Entries, &status, &run.Error)
	if err != nil {
		return nil, err
	}
	run.Status = Status(status)
	if finished.Valid {
		run.FinishedAt = finished.Time
	}
	return &run, nil
}
