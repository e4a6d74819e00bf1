package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/n0roo/mdhelper/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T) (string, string) {
	t.Helper()
	t.Setenv(config.EnvVault, "")
	t.Setenv(config.EnvDB, "")

	vault := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(vault, "A.md"), []byte("#TYPE/RPG #PLAY/INPROGRESS\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(vault, "B.md"), []byte("#TYPE/FPS\n"), 0644))

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
global:
  base_folder: `+vault+`
  reports:
    - title: Current
      target: Current.md
      tag_condition: [PLAY/INPROGRESS]
history:
  path: `+filepath.Join(t.TempDir(), "history.db")+`
`), 0644))
	return vault, cfgPath
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	configPath, vaultPath, jsonOut = "", "", false
	generateDryRun, generateReport, generateDisk = false, "", false
	tagsType, tagsPlay = false, false
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func TestGenerateCommand(t *testing.T) {
	vault, cfgPath := writeFixture(t)

	require.NoError(t, execute(t, "generate", "--config", cfgPath))

	out, err := os.ReadFile(filepath.Join(vault, "Current.md"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "[[A]]")
	assert.NotContains(t, string(out), "[[B]]")

	_, err = os.Stat(filepath.Join(vault, "Reports description.md"))
	assert.NoError(t, err)

	require.NoError(t, execute(t, "history", "--config", cfgPath))
}

func TestGenerateCommand_DryRun(t *testing.T) {
	vault, cfgPath := writeFixture(t)

	require.NoError(t, execute(t, "generate", "--config", cfgPath, "--dry-run", "--json"))

	_, err := os.Stat(filepath.Join(vault, "Current.md"))
	assert.True(t, os.IsNotExist(err))
}

func TestVaultFlagOverride(t *testing.T) {
	_, cfgPath := writeFixture(t)
	other := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(other, "C.md"), []byte("#PLAY/INPROGRESS\n"), 0644))

	require.NoError(t, execute(t, "generate", "--config", cfgPath, "--vault", other))

	out, err := os.ReadFile(filepath.Join(other, "Current.md"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "[[C]]")
}

func TestCommands_MissingConfig(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "none.json")
	for _, cmd := range []string{"generate", "parse", "tags", "reports", "disk"} {
		assert.Error(t, execute(t, cmd, "--config", missing), cmd)
	}
}

func TestReportsAndTagsCommands(t *testing.T) {
	_, cfgPath := writeFixture(t)
	assert.NoError(t, execute(t, "reports", "--config", cfgPath))
	assert.NoError(t, execute(t, "tags", "--config", cfgPath, "--type"))
	assert.NoError(t, execute(t, "parse", "--config", cfgPath, "--json"))
	assert.NoError(t, execute(t, "version"))
}
