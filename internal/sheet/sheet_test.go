package sheet

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `#TYPE/RPG #PLAY/INPROGRESS
Some text with an inline #PLATFORM/PC tag and a link [[Other#section]].
#Review   great story, weak ending
#Review second thought
#Review
## Heading is not a tag
#Note/Old
tail #LastTag`

func TestExtract(t *testing.T) {
	tags, comments, err := Extract(strings.NewReader(sample))
	require.NoError(t, err)

	wantTags := []string{"#TYPE/RPG", "#PLAY/INPROGRESS", "#PLATFORM/PC", "#Review", "#Review", "#Review", "#Note/Old", "#LastTag"}
	if diff := cmp.Diff(wantTags, tags); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}

	wantComments := map[string][]string{
		"#TYPE/RPG": {"#PLAY/INPROGRESS"},
		"#Review":   {"great story, weak ending", "second thought"},
	}
	if diff := cmp.Diff(wantComments, comments); diff != "" {
		t.Errorf("comments mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract_Deterministic(t *testing.T) {
	tags1, comments1, err := Extract(strings.NewReader(sample))
	require.NoError(t, err)
	tags2, comments2, err := Extract(strings.NewReader(sample))
	require.NoError(t, err)

	assert.Equal(t, tags1, tags2)
	assert.Equal(t, comments1, comments2)
}

func TestExtract_Terminator(t *testing.T) {
	tags, _, err := Extract(strings.NewReader("#ok, #fine\t#end\r\n#été/2024"))
	require.NoError(t, err)
	assert.Equal(t, []string{"#fine", "#end", "#été/2024"}, tags)
}

func TestExtract_Empty(t *testing.T) {
	tags, comments, err := Extract(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, tags)
	assert.Empty(t, comments)
}

func TestLoad(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "Games")
	require.NoError(t, os.MkdirAll(dir, 0755))
	path := filepath.Join(dir, "Zelda.md")
	require.NoError(t, os.WriteFile(path, []byte("#TYPE/Adventure #PLAY/DONE #PLATFORM/Switch\n"), 0644))

	doc, err := Load(root, path)
	require.NoError(t, err)

	assert.Equal(t, "Zelda", doc.Key)
	assert.Equal(t, "Games/Zelda.md", doc.LocalPath)
	assert.Equal(t, []string{"Adventure"}, doc.Types)
	assert.Equal(t, []string{"DONE"}, doc.Plays)
	assert.Equal(t, []string{"Switch"}, doc.Platforms)
	assert.True(t, doc.PathContains("Games"))
	assert.False(t, doc.PathContains("Books"))
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(t.TempDir(), filepath.Join(t.TempDir(), "nope.md"))
	assert.Error(t, err)
}

func TestDocumentTagQueries(t *testing.T) {
	doc, err := New("/vault", "/vault/a.md", time.Time{}, 0,
		[]string{"#TYPE/RPG", "#TYPE/Action", "#PLAY/INPROGRESS"},
		map[string][]string{"#Review": {"nice"}})
	require.NoError(t, err)

	assert.True(t, doc.HasTagPrefix("TYPE"))
	assert.True(t, doc.HasTagPrefix("TYPE/R"))
	assert.False(t, doc.HasTagPrefix("PLATFORM"))
	assert.Equal(t, []string{"#TYPE/RPG", "#TYPE/Action"}, doc.TagsWithPrefix("TYPE/"))
	assert.True(t, doc.HasTag("#PLAY/INPROGRESS"))
	assert.Equal(t, []string{"nice"}, doc.Comments("Review"))
	assert.Nil(t, doc.Comments("Missing"))
}
