package vault

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSheet(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func setupVault(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeSheet(t, root, "A.md", "#TYPE/RPG #PLAY/INPROGRESS\n")
	writeSheet(t, root, "B.md", "#TYPE/FPS #PLAY/DONE\n")
	writeSheet(t, root, "Games/C.md", "#TYPE/Puzzle #PLAY/INPROGRESS #PLATFORM/PC\n")
	writeSheet(t, root, "Games/notes.txt", "#TYPE/Ignored\n")
	writeSheet(t, root, ".obsidian/D.md", "#TYPE/Hidden\n")
	writeSheet(t, root, "Templates.md", "#TYPE/Template\n")
	return root
}

func TestParse(t *testing.T) {
	root := setupVault(t)

	p, err := NewParser(Options{Root: root, Ignore: []string{".obsidian", "Templates.md"}})
	require.NoError(t, err)

	idx, err := p.Parse()
	require.NoError(t, err)

	require.Len(t, idx.Sorted, 3)
	assert.Equal(t, "A", idx.Sorted[0].Key)
	assert.Equal(t, "B", idx.Sorted[1].Key)
	assert.Equal(t, "C", idx.Sorted[2].Key)
	assert.Equal(t, "Games/C.md", idx.Documents["C"].LocalPath)

	assert.Equal(t, []string{
		"#PLATFORM/PC", "#PLAY/DONE", "#PLAY/INPROGRESS",
		"#TYPE/FPS", "#TYPE/Puzzle", "#TYPE/RPG",
	}, idx.Tags)
	assert.True(t, idx.HasTag("#TYPE/FPS"))
	assert.False(t, idx.HasTag("#TYPE/Hidden"))

	// type values only come from in-progress sheets
	assert.Equal(t, []string{"Puzzle", "RPG"}, idx.TypeValues)
	assert.Equal(t, []string{"DONE", "INPROGRESS"}, idx.PlayValues)

	require.Len(t, idx.InProgress, 2)
	assert.Equal(t, "A", idx.InProgress[0].Key)
	assert.Equal(t, "C", idx.InProgress[1].Key)
}

func TestParse_TagsAreUnionOfDocuments(t *testing.T) {
	root := setupVault(t)
	// 같은 키: sub/A.md가 나중에 처리되어 A.md를 대체
	writeSheet(t, root, "sub/A.md", "#GAME/Real\n")
	p, err := NewParser(Options{Root: root})
	require.NoError(t, err)

	idx, err := p.Parse()
	require.NoError(t, err)

	union := make(map[string]bool)
	for _, doc := range idx.Sorted {
		for _, tag := range doc.Tags {
			union[tag] = true
		}
	}
	assert.Len(t, idx.Tags, len(union))
	for _, tag := range idx.Tags {
		assert.True(t, union[tag], tag)
	}

	assert.Equal(t, "sub/A.md", idx.Documents["A"].LocalPath)
	assert.True(t, idx.HasTag("#GAME/Real"))
	assert.False(t, idx.HasTag("#TYPE/RPG"), "대체된 문서의 태그가 남으면 안 됨")
}

func TestParse_MissingRoot(t *testing.T) {
	p, err := NewParser(Options{Root: filepath.Join(t.TempDir(), "missing")})
	require.NoError(t, err)

	_, err = p.Parse()
	assert.Error(t, err)
}

func TestParse_UnreadableFileFailsPass(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("root ignores file permissions")
	}
	root := setupVault(t)
	path := writeSheet(t, root, "Locked.md", "#TYPE/Secret\n")
	require.NoError(t, os.Chmod(path, 0000))
	t.Cleanup(func() { os.Chmod(path, 0644) })

	p, err := NewParser(Options{Root: root})
	require.NoError(t, err)

	idx, err := p.Parse()
	assert.Error(t, err)
	assert.Nil(t, idx)
}

func TestParse_CacheRefreshesChangedFiles(t *testing.T) {
	root := t.TempDir()
	path := writeSheet(t, root, "A.md", "#TYPE/RPG\n")

	p, err := NewParser(Options{Root: root})
	require.NoError(t, err)

	idx, err := p.Parse()
	require.NoError(t, err)
	assert.Equal(t, []string{"#TYPE/RPG"}, idx.Documents["A"].Tags)
	assert.Equal(t, 1, p.CacheLen())

	require.NoError(t, os.WriteFile(path, []byte("#TYPE/Action #PLAY/DONE\n"), 0644))
	later := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, later, later))

	idx2, err := p.Parse()
	require.NoError(t, err)
	assert.Equal(t, []string{"#TYPE/Action", "#PLAY/DONE"}, idx2.Documents["A"].Tags)
	// the first index is untouched
	assert.Equal(t, []string{"#TYPE/RPG"}, idx.Documents["A"].Tags)
}

func TestNewParser_RequiresRoot(t *testing.T) {
	_, err := NewParser(Options{})
	assert.Error(t, err)
}
