package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/marcboeker/go-duckdb/v2"
)

// DuckDB 스키마 (SQLite 스키마와 같은 컬럼)
const schemaDuckDB = `
CREATE TABLE IF NOT EXISTS runs (
    id VARCHAR PRIMARY KEY,
    vault VARCHAR NOT NULL,
    started_at TIMESTAMP NOT NULL,
    finished_at TIMESTAMP,
    documents INTEGER DEFAULT 0,
    tags INTEGER DEFAULT 0,
    reports INTEGER DEFAULT 0,
    failed INTEGER DEFAULT 0,
    entries BIGINT DEFAULT 0,
    status VARCHAR DEFAULT 'running',
    error VARCHAR
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

CREATE TABLE IF NOT EXISTS run_reports (
    run_id VARCHAR NOT NULL,
    position INTEGER NOT NULL,
    title VARCHAR,
    target VARCHAR,
    entries BIGINT DEFAULT 0,
    bytes BIGINT DEFAULT 0,
    error VARCHAR,
    PRIMARY KEY (run_id, position)
);

CREATE TABLE IF NOT EXISTS locks (
    resource VARCHAR PRIMARY KEY,
    owner VARCHAR NOT NULL,
    acquired_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS metadata (
    key VARCHAR PRIMARY KEY,
    value VARCHAR,
    updated_at TIMESTAMP DEFAULT now()
);
`

// DuckDB wraps sql.DB for DuckDB
type DuckDB struct {
	*sql.DB
	path string
}

// OpenDuckDB opens or creates a DuckDB database
func OpenDuckDB(path string) (*DuckDB, error) {
	// 디렉토리 생성
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("디렉토리 생성 실패: %w", err)
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("DuckDB 열기 실패: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("DuckDB 연결 실패: %w", err)
	}

	d := &DuckDB{DB: db, path: path}

	if err := d.Init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("스키마 초기화 실패: %w", err)
	}

	return d, nil
}

// Init initializes the DuckDB schema
func (d *DuckDB) Init() error {
	if _, err := d.Exec(schemaDuckDB); err != nil {
		return fmt.Errorf("스키마 적용 실패: %w", err)
	}

	// 버전 저장 (DuckDB는 now() 사용)
	_, err := d.Exec(`
		INSERT INTO metadata (key, value, updated_at)
		VALUES ('schema_version', ?, now())
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = now()
	`, fmt.Sprint(schemaVersion))
	if err != nil {
		return fmt.Errorf("버전 저장 실패: %w", err)
	}

	return nil
}

// Path returns the database file path
func (d *DuckDB) Path() string {
	return d.path
}

// GetVersion returns current schema version
func (d *DuckDB) GetVersion() (int, error) {
	return readVersion(d.DB)
}

// GetDuckDBPath returns the DuckDB file path next to a SQLite path
func GetDuckDBPath(sqlitePath string) string {
	return strings.TrimSuffix(sqlitePath, filepath.Ext(sqlitePath)) + ".duckdb"
}

// IsDuckDB checks if path is a DuckDB file
func IsDuckDB(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	// DuckDB 매직 바이트는 8번째 바이트부터 "DUCK"
	header := make([]byte, 12)
	if _, err := f.Read(header); err != nil {
		return false
	}
	return string(header[8:12]) == "DUCK"
}
