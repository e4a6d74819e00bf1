package vault

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/n0roo/mdhelper/internal/sheet"
	"go.uber.org/zap"
)

const (
	// DefaultExtension is the sheet file extension
	DefaultExtension = ".md"
	// DefaultInProgressTag marks sheets currently being consumed (without "#")
	DefaultInProgressTag = "PLAY/INPROGRESS"

	defaultCacheSize = 4096
)

// Index is the in-memory view of a vault built by one parse pass.
type Index struct {
	Root       string                     `json:"root"`
	Documents  map[string]*sheet.Document `json:"-"`
	Sorted     []*sheet.Document          `json:"documents"`
	Tags       []string                   `json:"tags"`
	TypeValues []string                   `json:"type_values"`
	PlayValues []string                   `json:"play_values"`
	InProgress []*sheet.Document          `json:"-"`
	ParsedAt   time.Time                  `json:"parsed_at"`

	tagSet map[string]struct{}
}

// HasTag reports whether tag (with "#") appears in any document.
func (idx *Index) HasTag(tag string) bool {
	_, ok := idx.tagSet[tag]
	return ok
}

// Options configures a Parser
type Options struct {
	Root          string
	Ignore        []string
	Extension     string
	InProgressTag string
	CacheSize     int
	Logger        *zap.Logger
}

// Parser walks a vault and builds an Index. A Parser may be reused across
// passes; extracted tags of unchanged files are served from its cache.
type Parser struct {
	root          string
	ignore        map[string]struct{}
	extension     string
	inProgressTag string
	log           *zap.Logger
	cache         *lru.Cache[string, cachedSheet]
}

type cachedSheet struct {
	modTime  time.Time
	size     int64
	tags     []string
	comments map[string][]string
}

// NewParser creates a parser
func NewParser(opts Options) (*Parser, error) {
	if opts.Root == "" {
		return nil, fmt.Errorf("vault 경로가 지정되지 않았습니다")
	}
	if opts.Extension == "" {
		opts.Extension = DefaultExtension
	}
	if opts.InProgressTag == "" {
		opts.InProgressTag = DefaultInProgressTag
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = defaultCacheSize
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	cache, err := lru.New[string, cachedSheet](opts.CacheSize)
	if err != nil {
		return nil, err
	}

	ignore := make(map[string]struct{}, len(opts.Ignore))
	for _, name := range opts.Ignore {
		ignore[name] = struct{}{}
	}

	return &Parser{
		root:          opts.Root,
		ignore:        ignore,
		extension:     opts.Extension,
		inProgressTag: "#" + strings.TrimPrefix(opts.InProgressTag, "#"),
		log:           opts.Logger,
		cache:         cache,
	}, nil
}

// Root returns the vault root
func (p *Parser) Root() string {
	return p.root
}

// Ignored reports whether a file or folder name is in the ignore list
func (p *Parser) Ignored(name string) bool {
	_, ok := p.ignore[name]
	return ok
}

// Extension returns the sheet extension
func (p *Parser) Extension() string {
	return p.extension
}

// Parse scans the whole vault. Any unreadable file fails the pass and no
// index is returned.
func (p *Parser) Parse() (*Index, error) {
	info, err := os.Stat(p.root)
	if err != nil {
		return nil, fmt.Errorf("vault 접근 실패: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault 경로가 디렉토리가 아닙니다: %s", p.root)
	}

	idx := &Index{
		Root:      p.root,
		Documents: make(map[string]*sheet.Document),
		ParsedAt:  time.Now(),
		tagSet:    make(map[string]struct{}),
	}

	count, err := p.processFolder(idx, p.root, "")
	if err != nil {
		return nil, err
	}

	p.finish(idx)

	p.log.Info("vault parsed",
		zap.String("root", p.root),
		zap.Int("files", count),
		zap.Int("documents", len(idx.Documents)),
		zap.Int("tags", len(idx.Tags)))

	return idx, nil
}

// processFolder handles files of dir first, then its sub folders.
func (p *Parser) processFolder(idx *Index, dir, shift string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("%s 읽기 실패: %w", dir, err)
	}

	count := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || p.Ignored(name) || !strings.HasSuffix(name, p.extension) {
			continue
		}

		doc, err := p.load(filepath.Join(dir, name))
		if err != nil {
			return count, err
		}
		count++

		if prev, ok := idx.Documents[doc.Key]; ok {
			p.log.Warn("duplicate sheet key",
				zap.String("key", doc.Key),
				zap.String("kept", doc.LocalPath),
				zap.String("dropped", prev.LocalPath))
		}
		idx.Documents[doc.Key] = doc

		p.log.Debug(shift+"> "+doc.Key, zap.Strings("tags", doc.Tags))
	}

	for _, entry := range entries {
		if !entry.IsDir() || p.Ignored(entry.Name()) {
			continue
		}
		n, err := p.processFolder(idx, filepath.Join(dir, entry.Name()), shift+" ")
		count += n
		if err != nil {
			return count, err
		}
	}

	return count, nil
}

func (p *Parser) load(path string) (*sheet.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%s 접근 실패: %w", path, err)
	}

	if cached, ok := p.cache.Get(path); ok && cached.modTime.Equal(info.ModTime()) && cached.size == info.Size() {
		return sheet.New(p.root, path, info.ModTime(), info.Size(), cached.tags, cached.comments)
	}

	doc, err := sheet.Load(p.root, path)
	if err != nil {
		return nil, err
	}
	p.cache.Add(path, cachedSheet{
		modTime:  doc.LastModified,
		size:     doc.Size,
		tags:     doc.Tags,
		comments: doc.TagComments,
	})
	return doc, nil
}

// finish computes the sorted views and derived tag sets.
func (p *Parser) finish(idx *Index) {
	keys := make([]string, 0, len(idx.Documents))
	for key := range idx.Documents {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	typeValues := make(map[string]struct{})
	playValues := make(map[string]struct{})

	for _, key := range keys {
		doc := idx.Documents[key]
		idx.Sorted = append(idx.Sorted, doc)

		// 중복 키로 밀려난 문서의 태그는 포함하지 않음
		for _, tag := range doc.Tags {
			idx.tagSet[tag] = struct{}{}
		}

		for _, v := range doc.Plays {
			playValues[v] = struct{}{}
		}

		if doc.HasTag(p.inProgressTag) {
			idx.InProgress = append(idx.InProgress, doc)
			for _, v := range doc.Types {
				typeValues[v] = struct{}{}
			}
		}
	}

	idx.Tags = sortedKeys(idx.tagSet)
	idx.TypeValues = sortedKeys(typeValues)
	idx.PlayValues = sortedKeys(playValues)
}

func sortedKeys(set map[string]struct{}) []string {
	result := make([]string, 0, len(set))
	for k := range set {
		result = append(result, k)
	}
	sort.Strings(result)
	return result
}

// CacheLen returns the number of cached sheets
func (p *Parser) CacheLen() int {
	return p.cache.Len()
}
