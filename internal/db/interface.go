package db

import (
	"database/sql"
	"os"
)

// Database is the common interface for SQLite and DuckDB
type Database interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
	Begin() (*sql.Tx, error)
	Close() error
	Path() string
	GetVersion() (int, error)
	GetDB() *sql.DB
}

// Ensure both types implement Database interface
var _ Database = (*DB)(nil)
var _ Database = (*DuckDB)(nil)

// GetDB returns the underlying sql.DB for DB (SQLite)
func (d *DB) GetDB() *sql.DB {
	return d.DB
}

// GetDB returns the underlying sql.DB for DuckDB
func (d *DuckDB) GetDB() *sql.DB {
	return d.DB
}

// DBType represents the database type
type DBType string

const (
	TypeSQLite DBType = "sqlite"
	TypeDuckDB DBType = "duckdb"
)

// EnvDBType selects the database type
const EnvDBType = "MDH_DB_TYPE"

// OpenAuto opens the appropriate database based on environment or the files
// already present.
func OpenAuto(basePath string) (Database, DBType, error) {
	duckdbPath := GetDuckDBPath(basePath)

	// 환경변수로 DuckDB 지정된 경우
	if DBType(os.Getenv(EnvDBType)) == TypeDuckDB {
		db, err := OpenDuckDB(duckdbPath)
		if err != nil {
			// DuckDB 실패 시 SQLite 폴백
			sqliteDB, sqliteErr := Open(basePath)
			if sqliteErr != nil {
				return nil, "", err // 원래 DuckDB 에러 반환
			}
			return sqliteDB, TypeSQLite, nil
		}
		return db, TypeDuckDB, nil
	}

	// DuckDB 파일만 있으면 DuckDB 사용
	if IsDuckDB(duckdbPath) {
		if _, err := os.Stat(basePath); os.IsNotExist(err) {
			if db, err := OpenDuckDB(duckdbPath); err == nil {
				return db, TypeDuckDB, nil
			}
		}
	}

	// 기본: SQLite
	db, err := Open(basePath)
	if err != nil {
		return nil, "", err
	}
	return db, TypeSQLite, nil
}
