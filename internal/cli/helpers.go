package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/n0roo/mdhelper/internal/config"
	"github.com/n0roo/mdhelper/internal/db"
	"github.com/n0roo/mdhelper/internal/generator"
	"github.com/n0roo/mdhelper/internal/history"
	"github.com/n0roo/mdhelper/internal/lock"
	"github.com/n0roo/mdhelper/internal/vcs"
	"go.uber.org/zap"
)

var (
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	boldStyle  = lipgloss.NewStyle().Bold(true)
)

// loadConfig reads the configuration and applies --vault
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if vaultPath != "" {
		cfg.Global.BaseFolder = vaultPath
	}
	return cfg, nil
}

// openDatabase opens the history database, nil when disabled. A database
// that cannot be opened is logged and skipped.
func openDatabase(cfg *config.Config) db.Database {
	if !cfg.History.IsEnabled() {
		return nil
	}
	database, dbType, err := db.OpenAuto(cfg.History.DBPath())
	if err != nil {
		logger.Warn("history disabled", zap.Error(err))
		return nil
	}
	logger.Debug("history opened", zap.String("path", database.Path()), zap.String("type", string(dbType)))
	return database
}

// openCommitter returns a committer when git.auto_commit is set
func openCommitter(cfg *config.Config) generator.Committer {
	if !cfg.Git.AutoCommit {
		return nil
	}
	c, err := vcs.Open(cfg.Global.BaseFolder, cfg.Git.AuthorName, cfg.Git.AuthorEmail)
	if err != nil {
		if errors.Is(err, vcs.ErrNotRepository) {
			logger.Warn("auto commit skipped", zap.Error(err))
		} else {
			logger.Error("auto commit unavailable", zap.Error(err))
		}
		return nil
	}
	return c
}

type session struct {
	cfg   *config.Config
	gen   *generator.Generator
	db    db.Database
	store *history.Store
}

func (s *session) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

// newSession wires configuration, history, locking and git into a generator
func newSession(dryRun bool, only string) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg}
	opts := generator.Options{
		Config: cfg,
		Logger: logger,
		DryRun: dryRun,
		Only:   only,
	}
	if !dryRun {
		if s.db = openDatabase(cfg); s.db != nil {
			s.store = history.NewStore(s.db)
			opts.Recorder = s.store
			opts.Locker = lock.NewService(s.db)
		}
		opts.Committer = openCommitter(cfg)
	}

	s.gen, err = generator.New(opts)
	if err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printSummary(sum *generator.Summary) {
	for _, r := range sum.Reports {
		if r.Err != nil {
			fmt.Printf("  %s %s %s\n", errStyle.Render("✗"), boldStyle.Render(r.Title), errStyle.Render(r.Error))
			continue
		}
		fmt.Printf("  %s %s → %s %s\n", okStyle.Render("✓"), boldStyle.Render(r.Title), r.Target,
			mutedStyle.Render(fmt.Sprintf("(%d entries, %d bytes)", r.Entries, r.Bytes)))
	}

	fmt.Println()
	status := okStyle.Render(string(sum.Status()))
	if sum.Failed() > 0 {
		status = warnStyle.Render(string(sum.Status()))
	}
	fmt.Printf("  %s  documents: %d  tags: %d  reports: %d  failed: %d  (%s)\n",
		status, sum.Documents, sum.Tags, len(sum.Reports), sum.Failed(),
		sum.FinishedAt.Sub(sum.StartedAt).Round(time.Millisecond))
	if sum.SheetPath != "" {
		fmt.Printf("  %s %s\n", mutedStyle.Render("description:"), sum.SheetPath)
	}
	if sum.Commit != "" {
		fmt.Printf("  %s %s\n", mutedStyle.Render("commit:"), sum.Commit)
	}
	if sum.RunID != "" {
		fmt.Printf("  %s %s\n", mutedStyle.Render("run:"), sum.RunID)
	}
}
