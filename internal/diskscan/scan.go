package diskscan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Options configures a disk scan
type Options struct {
	Folders           []string
	IgnoreDuplicateOn []string
	SuffixToCheck     []string
	Logger            *zap.Logger
}

// Stat counts folders and files below one scanned folder
type Stat struct {
	Name    string `json:"name"`
	Folders int    `json:"folders"`
	Files   int    `json:"files"`
}

// Duplicate is a name found at more than one location
type Duplicate struct {
	Name      string   `json:"name"`
	Locations []string `json:"locations"`
}

// Variant groups distinct names that collapse to the same key
type Variant struct {
	Key   string   `json:"key"`
	Names []string `json:"names"`
}

// Leaf is a folder without subfolders or without files
type Leaf struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Unsorted lists files lying directly in a scanned folder
type Unsorted struct {
	Folder string   `json:"folder"`
	Files  []string `json:"files"`
}

// Entries indexes file or folder names by location
type Entries struct {
	Kind string

	locations map[string][]string
	byCase    map[string][]string
	byAlnum   map[string][]string
	leaves    map[string][]string
}

func newEntries(kind string) *Entries {
	return &Entries{
		Kind:      kind,
		locations: make(map[string][]string),
		byCase:    make(map[string][]string),
		byAlnum:   make(map[string][]string),
		leaves:    make(map[string][]string),
	}
}

func (e *Entries) add(dir, name string, ignore map[string]struct{}) {
	if _, skip := ignore[name]; skip {
		return
	}
	e.locations[name] = append(e.locations[name], dir)
	e.byCase[strings.ToLower(name)] = appendDistinct(e.byCase[strings.ToLower(name)], name)
	e.byAlnum[alnum(name)] = appendDistinct(e.byAlnum[alnum(name)], name)
}

func (e *Entries) addFolder(root, path string, leaf bool, ignore map[string]struct{}) {
	e.add(filepath.Dir(path), filepath.Base(path), ignore)
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return
	}
	if leaf {
		e.leaves[rel] = append(e.leaves[rel], path)
	}
}

// Unique returns the number of distinct names
func (e *Entries) Unique() int {
	return len(e.locations)
}

// Duplicates returns names found at more than one location, sorted by name
func (e *Entries) Duplicates() []Duplicate {
	var dups []Duplicate
	for _, name := range sortedKeys(e.locations) {
		if locs := e.locations[name]; len(locs) > 1 {
			dups = append(dups, Duplicate{Name: name, Locations: locs})
		}
	}
	return dups
}

// CaseVariants returns names that differ only by case
func (e *Entries) CaseVariants() []Variant {
	return variants(e.byCase)
}

// AlnumVariants returns names that are equal once reduced to letters and digits
func (e *Entries) AlnumVariants() []Variant {
	return variants(e.byAlnum)
}

// Leaves returns leaf folders by relative name, skipping ignored names
func (e *Entries) Leaves(ignore []string) []Leaf {
	var leaves []Leaf
	for _, name := range sortedKeys(e.leaves) {
		if contains(ignore, name) {
			continue
		}
		for _, path := range e.leaves[name] {
			leaves = append(leaves, Leaf{Name: name, Path: path})
		}
	}
	return leaves
}

// Suspicious returns names ending with one of suffixes
func (e *Entries) Suspicious(suffixes []string) []Duplicate {
	var found []Duplicate
	for _, name := range sortedKeys(e.locations) {
		for _, suffix := range suffixes {
			if suffix != "" && strings.HasSuffix(name, suffix) {
				found = append(found, Duplicate{Name: name, Locations: e.locations[name]})
				break
			}
		}
	}
	return found
}

// First returns the first location of name
func (e *Entries) First(name string) string {
	if locs := e.locations[name]; len(locs) > 0 {
		return locs[0]
	}
	return ""
}

// Result is the outcome of a disk scan
type Result struct {
	Global     Stat        `json:"global"`
	Stats      []Stat      `json:"stats"`
	Files      *Entries    `json:"-"`
	Folders    *Entries    `json:"-"`
	Unsorted   []Unsorted  `json:"unsorted"`
	Suspicious []Duplicate `json:"suspicious"`

	ignore []string
}

type dirRecord struct {
	path  string
	leaf  bool
	files []string
}

type folderScan struct {
	stat Stat
	dirs []dirRecord
}

// Scanner walks the configured folders
type Scanner struct {
	opts   Options
	ignore map[string]struct{}
	log    *zap.Logger
}

// NewScanner creates a scanner
func NewScanner(opts Options) *Scanner {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	ignore := make(map[string]struct{}, len(opts.IgnoreDuplicateOn))
	for _, name := range opts.IgnoreDuplicateOn {
		ignore[name] = struct{}{}
	}
	return &Scanner{opts: opts, ignore: ignore, log: opts.Logger}
}

// Scan walks every folder concurrently and merges the results in configured
// order. A missing folder fails the scan; unreadable subfolders are skipped.
func (s *Scanner) Scan(ctx context.Context) (*Result, error) {
	scans := make([]*folderScan, len(s.opts.Folders))

	g, gctx := errgroup.WithContext(ctx)
	for i, folder := range s.opts.Folders {
		g.Go(func() error {
			fs, err := s.scanFolder(gctx, folder)
			if err != nil {
				return err
			}
			scans[i] = fs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{
		Global:  Stat{Name: "global"},
		Files:   newEntries("files"),
		Folders: newEntries("folders"),
		ignore:  s.opts.IgnoreDuplicateOn,
	}
	for i, fs := range scans {
		folder := s.opts.Folders[i]
		res.Stats = append(res.Stats, fs.stat)
		res.Global.Folders += fs.stat.Folders
		res.Global.Files += fs.stat.Files

		unsorted := Unsorted{Folder: folder}
		for _, d := range fs.dirs {
			res.Folders.addFolder(folder, d.path, d.leaf, s.ignore)
			for _, name := range d.files {
				res.Files.add(d.path, name, s.ignore)
			}
			if d.path == folder {
				unsorted.Files = append(unsorted.Files, d.files...)
			}
		}
		res.Unsorted = append(res.Unsorted, unsorted)
	}
	res.Suspicious = res.Files.Suspicious(s.opts.SuffixToCheck)

	s.log.Info("disk scan finished",
		zap.Int("folders", res.Global.Folders),
		zap.Int("files", res.Global.Files),
		zap.Int("unique_folders", res.Folders.Unique()),
		zap.Int("unique_files", res.Files.Unique()))
	return res, nil
}

func (s *Scanner) scanFolder(ctx context.Context, folder string) (*folderScan, error) {
	info, err := os.Stat(folder)
	if err != nil {
		return nil, fmt.Errorf("스캔 폴더 접근 실패: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("폴더가 아닙니다: %s", folder)
	}

	fs := &folderScan{stat: Stat{Name: folder}}
	if err := s.walk(ctx, fs, filepath.Clean(folder)); err != nil {
		return nil, err
	}
	return fs, nil
}

func (s *Scanner) walk(ctx context.Context, fs *folderScan, dir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		s.log.Warn("folder skipped", zap.String("path", dir), zap.Error(err))
		return nil
	}

	rec := dirRecord{path: dir}
	var subdirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			subdirs = append(subdirs, filepath.Join(dir, entry.Name()))
		} else {
			rec.files = append(rec.files, entry.Name())
		}
	}
	rec.leaf = len(subdirs) == 0 || len(rec.files) == 0

	fs.stat.Folders++
	fs.stat.Files += len(rec.files)
	fs.dirs = append(fs.dirs, rec)
	s.log.Debug("folder scanned", zap.String("path", dir), zap.Int("files", len(rec.files)))

	for _, sub := range subdirs {
		if err := s.walk(ctx, fs, sub); err != nil {
			return err
		}
	}
	return nil
}

func variants(groups map[string][]string) []Variant {
	var out []Variant
	for _, key := range sortedKeys(groups) {
		if names := groups[key]; len(names) > 1 {
			out = append(out, Variant{Key: key, Names: names})
		}
	}
	return out
}

func alnum(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func appendDistinct(list []string, s string) []string {
	if contains(list, s) {
		return list
	}
	return append(list, s)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
