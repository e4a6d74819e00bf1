package lock

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/n0roo/mdhelper/internal/db"
)

// DefaultStaleAfter is how old a lock may get before another owner takes it
// over
const DefaultStaleAfter = 10 * time.Minute

// ErrLocked is returned when a resource is held by another owner
var ErrLocked = errors.New("이미 잠겨 있습니다")

// Lock represents a resource lock
type Lock struct {
	Resource   string    `json:"resource"`
	Owner      string    `json:"owner"`
	AcquiredAt time.Time `json:"acquired_at"`
}

// Service handles lock operations
type Service struct {
	db         db.Database
	staleAfter time.Duration
	now        func() time.Time
}

// NewService creates a new lock service
func NewService(database db.Database) *Service {
	return &Service{db: database, staleAfter: DefaultStaleAfter, now: time.Now}
}

// WithStaleAfter changes the stale lock threshold
func (s *Service) WithStaleAfter(d time.Duration) *Service {
	s.staleAfter = d
	return s
}

// Acquire locks resource for owner. A lock held by the same owner is
// refreshed; a stale lock of another owner is taken over.
func (s *Service) Acquire(resource, owner string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("Lock 확인 실패: %w", err)
	}
	defer tx.Rollback()

	now := s.now().UTC()

	var existing string
	var acquired time.Time
	err = tx.QueryRow(`SELECT owner, acquired_at FROM locks WHERE resource = ?`, resource).Scan(&existing, &acquired)
	switch {
	case err == sql.ErrNoRows:
		_, err = tx.Exec(`INSERT INTO locks (resource, owner, acquired_at) VALUES (?, ?, ?)`, resource, owner, now)
	case err != nil:
		return fmt.Errorf("Lock 확인 실패: %w", err)
	case existing != owner && now.Sub(acquired) < s.staleAfter:
		return fmt.Errorf("'%s' (%s): %w", resource, existing, ErrLocked)
	default:
		// 같은 소유자이거나 오래된 잠금
		_, err = tx.Exec(`UPDATE locks SET owner = ?, acquired_at = ? WHERE resource = ?`, owner, now, resource)
	}
	if err != nil {
		return fmt.Errorf("Lock 획득 실패: %w", err)
	}

	return tx.Commit()
}

// Release releases a lock on a resource
func (s *Service) Release(resource string) error {
	result, err := s.db.Exec(`DELETE FROM locks WHERE resource = ?`, resource)
	if err != nil {
		return fmt.Errorf("Lock 해제 실패: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("'%s'에 대한 Lock이 없습니다", resource)
	}

	return nil
}

// List returns all active locks
func (s *Service) List() ([]Lock, error) {
	rows, err := s.db.Query(`SELECT resource, owner, acquired_at FROM locks ORDER BY acquired_at`)
	if err != nil {
		return nil, fmt.Errorf("Lock 목록 조회 실패: %w", err)
	}
	defer rows.Close()

	var locks []Lock
	for rows.Next() {
		var l Lock
		if err := rows.Scan(&l.Resource, &l.Owner, &l.AcquiredAt); err != nil {
			return nil, err
		}
		locks = append(locks, l)
	}

	return locks, rows.Err()
}

// Clear removes all locks (force cleanup)
func (s *Service) Clear() (int64, error) {
	result, err := s.db.Exec(`DELETE FROM locks`)
	if err != nil {
		return 0, fmt.Errorf("Lock 정리 실패: %w", err)
	}
	return result.RowsAffected()
}

// IsLocked checks if a resource is locked
func (s *Service) IsLocked(resource string) (bool, string, error) {
	var owner string
	err := s.db.QueryRow(`SELECT owner FROM locks WHERE resource = ?`, resource).Scan(&owner)

	if err == sql.ErrNoRows {
		return false, "", nil
	}
	if err != nil {
		return false, "", err
	}

	return true, owner, nil
}
