package lock

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/n0roo/mdhelper/internal/db"
)

func setupTestDB(t *testing.T) *db.DB {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("DB 열기 실패: %v", err)
	}
	if err := database.Init(); err != nil {
		database.Close()
		t.Fatalf("DB 초기화 실패: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func TestAcquire(t *testing.T) {
	svc := NewService(setupTestDB(t))

	if err := svc.Acquire("/vault", "pid-1"); err != nil {
		t.Fatalf("Lock 획득 실패: %v", err)
	}

	// 다른 소유자의 재획득 시도
	err := svc.Acquire("/vault", "pid-2")
	if !errors.Is(err, ErrLocked) {
		t.Errorf("ErrLocked 기대, got %v", err)
	}

	// 같은 소유자는 갱신
	if err := svc.Acquire("/vault", "pid-1"); err != nil {
		t.Errorf("같은 소유자 재획득 실패: %v", err)
	}
}

func TestAcquire_StaleTakeover(t *testing.T) {
	svc := NewService(setupTestDB(t)).WithStaleAfter(time.Minute)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }
	if err := svc.Acquire("/vault", "pid-1"); err != nil {
		t.Fatalf("Lock 획득 실패: %v", err)
	}

	svc.now = func() time.Time { return base.Add(30 * time.Second) }
	if err := svc.Acquire("/vault", "pid-2"); err == nil {
		t.Error("만료 전 다른 소유자가 획득함")
	}

	svc.now = func() time.Time { return base.Add(2 * time.Minute) }
	if err := svc.Acquire("/vault", "pid-2"); err != nil {
		t.Fatalf("오래된 Lock 인수 실패: %v", err)
	}

	locked, owner, err := svc.IsLocked("/vault")
	if err != nil || !locked || owner != "pid-2" {
		t.Errorf("IsLocked = %v %s %v, want true pid-2", locked, owner, err)
	}
}

func TestRelease(t *testing.T) {
	svc := NewService(setupTestDB(t))

	svc.Acquire("/vault", "pid-1")
	if err := svc.Release("/vault"); err != nil {
		t.Fatalf("Lock 해제 실패: %v", err)
	}

	// 해제 후 다른 프로세스가 획득 가능
	if err := svc.Acquire("/vault", "pid-2"); err != nil {
		t.Error("Lock 해제 후 획득 실패")
	}

	if err := svc.Release("/nonexistent"); err == nil {
		t.Error("존재하지 않는 Lock 해제가 성공함")
	}
}

func TestListAndClear(t *testing.T) {
	svc := NewService(setupTestDB(t))

	svc.Acquire("/vault-a", "pid-1")
	svc.Acquire("/vault-b", "pid-2")

	locks, err := svc.List()
	if err != nil {
		t.Fatalf("목록 조회 실패: %v", err)
	}
	if len(locks) != 2 {
		t.Fatalf("Lock 수 = %d, want 2", len(locks))
	}
	if locks[0].Resource != "/vault-a" || locks[0].Owner != "pid-1" || locks[0].AcquiredAt.IsZero() {
		t.Errorf("Lock = %+v", locks[0])
	}

	n, err := svc.Clear()
	if err != nil || n != 2 {
		t.Errorf("Clear = %d %v, want 2", n, err)
	}
	if locked, _, _ := svc.IsLocked("/vault-a"); locked {
		t.Error("Clear 후에도 잠겨 있음")
	}
}
