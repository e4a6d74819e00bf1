package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

const schemaVersion = 1

const schemaSQLite = `
-- 생성 실행 기록
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    vault TEXT NOT NULL,
    started_at DATETIME NOT NULL,
    finished_at DATETIME,
    documents INTEGER DEFAULT 0,
    tags INTEGER DEFAULT 0,
    reports INTEGER DEFAULT 0,
    failed INTEGER DEFAULT 0,
    entries INTEGER DEFAULT 0,
    status TEXT DEFAULT 'running',
    error TEXT
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

-- 리포트별 결과
CREATE TABLE IF NOT EXISTS run_reports (
    run_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    title TEXT,
    target TEXT,
    entries INTEGER DEFAULT 0,
    bytes INTEGER DEFAULT 0,
    error TEXT,
    PRIMARY KEY (run_id, position)
);

-- vault 쓰기 잠금
CREATE TABLE IF NOT EXISTS locks (
    resource TEXT PRIMARY KEY,
    owner TEXT NOT NULL,
    acquired_at DATETIME NOT NULL
);

-- 메타데이터
CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// DB wraps sql.DB with helper methods
type DB struct {
	*sql.DB
	path string
}

// Open opens or creates the SQLite database
func Open(path string) (*DB, error) {
	// 디렉토리 생성
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("디렉토리 생성 실패: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("DB 열기 실패: %w", err)
	}

	// 연결 테스트
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("DB 연결 실패: %w", err)
	}

	d := &DB{DB: db, path: path}

	// 스키마 자동 초기화
	if err := d.Init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("스키마 초기화 실패: %w", err)
	}

	return d, nil
}

// Init initializes the database schema
func (d *DB) Init() error {
	if _, err := d.Exec(schemaSQLite); err != nil {
		return fmt.Errorf("스키마 적용 실패: %w", err)
	}

	_, err := d.Exec(`INSERT OR REPLACE INTO metadata (key, value, updated_at) VALUES ('schema_version', ?, CURRENT_TIMESTAMP)`, schemaVersion)
	if err != nil {
		return fmt.Errorf("버전 저장 실패: %w", err)
	}

	return nil
}

// GetVersion returns current schema version
func (d *DB) GetVersion() (int, error) {
	return readVersion(d.DB)
}

// Path returns the database file path
func (d *DB) Path() string {
	return d.path
}

func readVersion(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow(`SELECT CAST(value AS INTEGER) FROM metadata WHERE key = 'schema_version'`).Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return version, nil
}
