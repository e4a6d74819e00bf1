package generator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/n0roo/mdhelper/internal/bloc"
	"github.com/n0roo/mdhelper/internal/config"
	"github.com/n0roo/mdhelper/internal/diskscan"
	"github.com/n0roo/mdhelper/internal/history"
	"github.com/n0roo/mdhelper/internal/report"
	"github.com/n0roo/mdhelper/internal/vault"
	"github.com/n0roo/mdhelper/internal/vcs"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Committer commits generated files
type Committer interface {
	Commit(paths []string, message string) (string, error)
}

// Recorder stores run outcomes
type Recorder interface {
	Record(run *history.Run, reports []history.Report) (string, error)
}

// Locker guards a vault against concurrent passes from other processes
type Locker interface {
	Acquire(resource, owner string) error
	Release(resource string) error
}

// Options configures a Generator
type Options struct {
	Config    *config.Config
	Logger    *zap.Logger
	Recorder  Recorder  // nil: no history
	Committer Committer // nil: no commit
	Locker    Locker    // nil: no locking
	Owner     string    // lock owner, defaults to the process id
	DryRun    bool
	Only      string // generate only the report with this title
}

// Outcome is the result of one report of a pass
type Outcome struct {
	Title   string `json:"title"`
	Target  string `json:"target"`
	Path    string `json:"path,omitempty"`
	Entries int    `json:"entries"`
	Bytes   int    `json:"bytes"`
	Error   string `json:"error,omitempty"`

	Err    error  `json:"-"`
	Output []byte `json:"-"` // dry run only
}

// Summary is the result of a generation pass
type Summary struct {
	RunID      string    `json:"run_id,omitempty"`
	Vault      string    `json:"vault"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Documents  int       `json:"documents"`
	Tags       int       `json:"tags"`
	Reports    []Outcome `json:"reports"`
	SheetPath  string    `json:"sheet_path,omitempty"`
	Sheet      []byte    `json:"-"`
	Commit     string    `json:"commit,omitempty"`
	DryRun     bool      `json:"dry_run"`
}

// Failed returns the number of skipped reports
func (s *Summary) Failed() int {
	n := 0
	for _, r := range s.Reports {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// Entries returns the total number of entries written
func (s *Summary) Entries() int {
	n := 0
	for _, r := range s.Reports {
		n += r.Entries
	}
	return n
}

// Status classifies the pass
func (s *Summary) Status() history.Status {
	if s.Failed() > 0 {
		return history.StatusPartial
	}
	return history.StatusSuccess
}

// Written returns the paths of every file written by the pass
func (s *Summary) Written() []string {
	var paths []string
	for _, r := range s.Reports {
		if r.Path != "" {
			paths = append(paths, r.Path)
		}
	}
	if s.SheetPath != "" {
		paths = append(paths, s.SheetPath)
	}
	return paths
}

// Generator runs generation passes over one vault. The parser is kept
// between passes so unchanged documents are served from its cache.
type Generator struct {
	cfg       *config.Config
	log       *zap.Logger
	parser    *vault.Parser
	recorder  Recorder
	committer Committer
	locker    Locker
	owner     string
	dryRun    bool
	only      string
}

// New creates a generator
func New(opts Options) (*Generator, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("설정이 지정되지 않았습니다")
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Owner == "" {
		opts.Owner = fmt.Sprintf("pid-%d", os.Getpid())
	}

	g := opts.Config.Global
	parser, err := vault.NewParser(vault.Options{
		Root:          g.BaseFolder,
		Ignore:        g.Ignore,
		Extension:     g.Extension,
		InProgressTag: g.InProgressTag,
		Logger:        opts.Logger.Named("vault"),
	})
	if err != nil {
		return nil, err
	}

	return &Generator{
		cfg:       opts.Config,
		log:       opts.Logger,
		parser:    parser,
		recorder:  opts.Recorder,
		committer: opts.Committer,
		locker:    opts.Locker,
		owner:     opts.Owner,
		dryRun:    opts.DryRun,
		only:      opts.Only,
	}, nil
}

// Parser returns the vault parser
func (g *Generator) Parser() *vault.Parser {
	return g.parser
}

// Parse runs a parse-only pass
func (g *Generator) Parse() (*vault.Index, error) {
	return g.parser.Parse()
}

// Run executes one generation pass. A vault or library failure aborts the
// pass before anything is written; a report that fails to load is recorded
// and skipped.
func (g *Generator) Run(ctx context.Context) (*Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sum := &Summary{
		Vault:     g.parser.Root(),
		StartedAt: time.Now(),
		DryRun:    g.dryRun,
	}

	if g.locker != nil && !g.dryRun {
		if err := g.locker.Acquire(sum.Vault, g.owner); err != nil {
			return nil, err
		}
		defer func() {
			if err := g.locker.Release(sum.Vault); err != nil {
				g.log.Warn("lock release failed", zap.Error(err))
			}
		}()
	}

	err := g.run(sum)
	sum.FinishedAt = time.Now()
	g.record(sum, err)
	if err != nil {
		return nil, err
	}

	g.log.Info("generation finished",
		zap.Int("reports", len(sum.Reports)),
		zap.Int("failed", sum.Failed()),
		zap.Int("entries", sum.Entries()),
		zap.Duration("took", sum.FinishedAt.Sub(sum.StartedAt)))
	return sum, nil
}

func (g *Generator) run(sum *Summary) error {
	idx, err := g.parser.Parse()
	if err != nil {
		return fmt.Errorf("vault 파싱 실패: %w", err)
	}
	sum.Documents = len(idx.Sorted)
	sum.Tags = len(idx.Tags)

	lib, err := bloc.NewLibrary(g.cfg.SharedContents())
	if err != nil {
		return fmt.Errorf("shared_contents: %w", err)
	}

	nodes, err := g.cfg.ReportNodes()
	if err != nil {
		return err
	}

	ds := g.cfg.Global.DescriptionSheet
	sheet := report.NewDescriptionSheet(ds.Title, ds.Target)
	writer := report.NewWriter(idx, sheet, g.log.Named("report"))

	for _, node := range nodes {
		title := config.ReportTitle(node)
		if g.only != "" && title != g.only {
			continue
		}

		out := Outcome{Title: title, Target: config.ReportTarget(node)}
		r, err := bloc.LoadReport(node, lib)
		if err != nil {
			out.Err = err
			out.Error = err.Error()
			if errors.Is(err, bloc.ErrInvalidReport) {
				g.log.Warn("report skipped", zap.String("title", title), zap.Error(err))
			} else {
				g.log.Error("report configuration error", zap.String("title", title), zap.Error(err))
			}
			sum.Reports = append(sum.Reports, out)
			continue
		}

		if g.dryRun {
			data, res := writer.Render(r)
			out.Entries, out.Bytes, out.Output = res.Entries, res.Bytes, data
		} else {
			res, err := writer.Write(r)
			if err != nil {
				return err
			}
			out.Path, out.Entries, out.Bytes = res.Path, res.Entries, res.Bytes
		}
		sum.Reports = append(sum.Reports, out)
	}

	if g.only != "" && len(sum.Reports) == 0 {
		return fmt.Errorf("리포트를 찾을 수 없습니다: %s", g.only)
	}

	if g.dryRun {
		sum.Sheet = []byte(sheet.String())
		return nil
	}

	sum.SheetPath, err = sheet.WriteTo(idx.Root)
	if err != nil {
		return err
	}

	g.commit(sum)
	return nil
}

func (g *Generator) commit(sum *Summary) {
	if g.committer == nil {
		return
	}
	hash, err := g.committer.Commit(sum.Written(), g.cfg.Git.Message)
	switch {
	case err == nil:
		sum.Commit = hash
		g.log.Info("reports committed", zap.String("commit", hash))
	case errors.Is(err, vcs.ErrNoChanges):
		g.log.Debug("nothing to commit")
	default:
		g.log.Warn("commit failed", zap.Error(err))
	}
}

func (g *Generator) record(sum *Summary, runErr error) {
	if g.recorder == nil || g.dryRun {
		return
	}

	run := &history.Run{
		Vault:      sum.Vault,
		StartedAt:  sum.StartedAt,
		FinishedAt: sum.FinishedAt,
		Documents:  sum.Documents,
		Tags:       sum.Tags,
		Reports:    len(sum.Reports),
		Failed:     sum.Failed(),
		Entries:    sum.Entries(),
		Status:     sum.Status(),
	}
	if runErr != nil {
		run.Status = history.StatusFailed
		run.Error = runErr.Error()
	}

	reports := make([]history.Report, 0, len(sum.Reports))
	for _, r := range sum.Reports {
		reports = append(reports, history.Report{
			Title:   r.Title,
			Target:  r.Target,
			Entries: r.Entries,
			Bytes:   r.Bytes,
			Error:   r.Error,
		})
	}

	id, err := g.recorder.Record(run, reports)
	if err != nil {
		g.log.Warn("history record failed", zap.Error(err))
		return
	}
	sum.RunID = id
}

// ScanDisk runs the disk duplicate scan and writes its two reports
func (g *Generator) ScanDisk(ctx context.Context) (*diskscan.Result, error) {
	d := g.cfg.Disk
	if !d.Enabled() {
		return nil, fmt.Errorf("disk 설정이 없습니다 (folders, targetAll, targetErrors)")
	}

	res, err := diskscan.NewScanner(diskscan.Options{
		Folders:           d.Folders,
		IgnoreDuplicateOn: d.IgnoreDuplicateOn,
		SuffixToCheck:     d.SuffixToCheck,
		Logger:            g.log.Named("disk"),
	}).Scan(ctx)
	if err != nil {
		return nil, err
	}

	if g.dryRun {
		return res, nil
	}
	if _, err := res.Write(g.parser.Root(), d.TargetAll, d.TargetErrors); err != nil {
		return nil, err
	}
	return res, nil
}

// RunAll runs the generation pass and, when withDisk is set, the disk scan
// concurrently. The two passes share no state.
func (g *Generator) RunAll(ctx context.Context, withDisk bool) (*Summary, *diskscan.Result, error) {
	var (
		sum  *Summary
		disk *diskscan.Result
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		sum, err = g.Run(egCtx)
		return err
	})
	if withDisk {
		eg.Go(func() error {
			var err error
			disk, err = g.ScanDisk(egCtx)
			return err
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}
	return sum, disk, nil
}

// Targets returns the absolute paths of every file a pass writes
func (g *Generator) Targets() []string {
	root := g.parser.Root()
	var targets []string

	if nodes, err := g.cfg.ReportNodes(); err == nil {
		for _, node := range nodes {
			if target := config.ReportTarget(node); target != "" {
				targets = append(targets, filepath.Join(root, target))
			}
		}
	}

	sheetTarget := g.cfg.Global.DescriptionSheet.Target
	if sheetTarget == "" {
		sheetTarget = report.DefaultSheetTarget
	}
	targets = append(targets, filepath.Join(root, sheetTarget))

	if d := g.cfg.Disk; d.Enabled() {
		targets = append(targets, filepath.Join(root, d.TargetAll), filepath.Join(root, d.TargetErrors))
	}
	return targets
}
