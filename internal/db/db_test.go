package db

import (
	"os"
	"path/filepath"
	"testing"
)

// 임시 DB 생성 헬퍼
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("DB 열기 실패: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func TestOpen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("DB 열기 실패: %v", err)
	}
	defer db.Close()

	// 파일이 생성되었는지 확인
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("DB 파일이 생성되지 않음")
	}
	if db.Path() != dbPath {
		t.Errorf("Path() = %s, want %s", db.Path(), dbPath)
	}
}

func TestInit(t *testing.T) {
	db := setupTestDB(t)

	for _, table := range []string{"runs", "run_reports", "locks", "metadata"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		if err != nil {
			t.Errorf("테이블 %s가 존재하지 않음: %v", table, err)
		}
	}

	// 두 번 초기화해도 실패하지 않아야 함
	if err := db.Init(); err != nil {
		t.Errorf("재초기화 실패: %v", err)
	}
}

func TestGetVersion(t *testing.T) {
	db := setupTestDB(t)

	version, err := db.GetVersion()
	if err != nil {
		t.Fatalf("버전 조회 실패: %v", err)
	}
	if version != schemaVersion {
		t.Errorf("version = %d, want %d", version, schemaVersion)
	}
}

func TestOpenAuto_DefaultsToSQLite(t *testing.T) {
	t.Setenv(EnvDBType, "")
	path := filepath.Join(t.TempDir(), "history.db")

	database, dbType, err := OpenAuto(path)
	if err != nil {
		t.Fatalf("OpenAuto 실패: %v", err)
	}
	defer database.Close()

	if dbType != TypeSQLite {
		t.Errorf("dbType = %s, want %s", dbType, TypeSQLite)
	}
	if database.GetDB() == nil {
		t.Error("GetDB()가 nil")
	}
}

func TestGetDuckDBPath(t *testing.T) {
	if got := GetDuckDBPath("/tmp/history.db"); got != "/tmp/history.duckdb" {
		t.Errorf("GetDuckDBPath = %s", got)
	}
}

func TestIsDuckDB(t *testing.T) {
	db := setupTestDB(t)
	if IsDuckDB(db.Path()) {
		t.Error("SQLite 파일을 DuckDB로 인식함")
	}
	if IsDuckDB(filepath.Join(t.TempDir(), "missing.duckdb")) {
		t.Error("없는 파일을 DuckDB로 인식함")
	}
}
