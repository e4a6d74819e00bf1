package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func newWatcher(t *testing.T, root string, exclude ...string) *Watcher {
	t.Helper()
	w, err := New(Options{
		Root:     root,
		Ignored:  func(name string) bool { return name == ".obsidian" || name == "Templates" },
		Exclude:  exclude,
		Debounce: 50 * time.Millisecond,
	})
	require.NoError(t, err)
	return w
}

func waitEvent(t *testing.T, w *Watcher) Event {
	t.Helper()
	select {
	case ev, ok := <-w.Events():
		require.True(t, ok, "events 채널이 닫힘")
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("이벤트를 받지 못함")
		return Event{}
	}
}

func TestRelevant(t *testing.T) {
	root := t.TempDir()
	report := filepath.Join(root, "Reports", "Games.md")
	w := newWatcher(t, root, report)
	defer w.Stop()

	tests := []struct {
		path string
		want bool
	}{
		{filepath.Join(root, "A.md"), true},
		{filepath.Join(root, "sub", "B.md"), true},
		{report, false},
		{filepath.Join(root, "A.txt"), false},
		{filepath.Join(root, ".A.md.123.tmp"), false},
		{filepath.Join(root, ".hidden.md"), false},
		{filepath.Join(root, "Templates", "T.md"), false},
		{filepath.Join(filepath.Dir(root), "outside.md"), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, w.Relevant(tt.path), tt.path)
	}
}

func TestWatcher_DebouncedBatch(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	w := newWatcher(t, root)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	require.NoError(t, os.WriteFile(filepath.Join(root, "A.md"), []byte("#X\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "B.md"), []byte("#Y\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0644))

	seen := map[string]bool{}
	for len(seen) < 2 {
		for _, p := range waitEvent(t, w).Paths {
			seen[filepath.Base(p)] = true
		}
	}
	assert.True(t, seen["A.md"])
	assert.True(t, seen["B.md"])
	assert.False(t, seen["notes.txt"])

	w.Stop()
	_, ok := <-w.Events()
	assert.False(t, ok, "Stop 후 채널이 닫혀야 함")
}

func TestWatcher_NewFolder(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	w := newWatcher(t, root)
	w.Start(context.Background())
	defer w.Stop()

	sub := filepath.Join(root, "sub")
	require.NoError(t, os.Mkdir(sub, 0755))
	// 새 폴더가 감시 목록에 추가될 때까지 재시도
	deadline := time.Now().Add(5 * time.Second)
	for {
		require.NoError(t, os.WriteFile(filepath.Join(sub, "C.md"), []byte("#Z\n"), 0644))
		select {
		case ev := <-w.Events():
			require.NotEmpty(t, ev.Paths)
			assert.Equal(t, filepath.Join(sub, "C.md"), ev.Paths[len(ev.Paths)-1])
			return
		case <-time.After(200 * time.Millisecond):
		}
		if time.Now().After(deadline) {
			t.Fatal("새 폴더 이벤트를 받지 못함")
		}
	}
}

func TestWatcher_StopWithoutStart(t *testing.T) {
	defer goleak.VerifyNone(t)

	w := newWatcher(t, t.TempDir())
	w.Stop()
	w.Stop()
	_, ok := <-w.Events()
	assert.False(t, ok)
}

func TestWatcher_ConcurrentStartStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	for i := 0; i < 20; i++ {
		w := newWatcher(t, t.TempDir())
		ctx, cancel := context.WithCancel(context.Background())

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			w.Start(ctx)
		}()
		go func() {
			defer wg.Done()
			w.Stop()
		}()
		wg.Wait()

		w.Stop()
		w.Start(ctx)
		_, ok := <-w.Events()
		assert.False(t, ok)
		cancel()
	}
}

func TestNew_MissingRoot(t *testing.T) {
	_, err := New(Options{Root: filepath.Join(t.TempDir(), "none")})
	assert.Error(t, err)
}
