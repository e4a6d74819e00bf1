package sheet

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Derived tag prefixes
const (
	PlatformPrefix = "#PLATFORM"
	TypePrefix     = "#TYPE"
	PlayPrefix     = "#PLAY"
)

var tagPattern = regexp.MustCompile(`#[\p{L}\p{N}_/-]+`)

// Document is one sheet of the vault. It is never modified after Load.
type Document struct {
	Key          string              `json:"key"`
	LocalPath    string              `json:"local_path"`
	AbsPath      string              `json:"-"`
	LastModified time.Time           `json:"last_modified"`
	Size         int64               `json:"-"`
	Tags         []string            `json:"tags,omitempty"`
	TagComments  map[string][]string `json:"tag_comments,omitempty"`
	Platforms    []string            `json:"platforms,omitempty"`
	Types        []string            `json:"types,omitempty"`
	Plays        []string            `json:"plays,omitempty"`
}

// Extract reads document text line by line and returns every tag in order of
// appearance together with the tag comments.
func Extract(r io.Reader) ([]string, map[string][]string, error) {
	var tags []string
	comments := make(map[string][]string)

	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			line = strings.TrimRight(line, "\r\n")
			lineTags := lineTags(line)
			tags = append(tags, lineTags...)

			if first, rest, ok := leadingTag(line); ok {
				if comment := strings.TrimSpace(rest); comment != "" {
					comments[first] = append(comments[first], comment)
				}
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
	}

	return tags, comments, nil
}

// lineTags returns the tag tokens of one line. A token counts only when it is
// followed by whitespace or the end of the line.
func lineTags(line string) []string {
	var result []string
	for _, loc := range tagPattern.FindAllStringIndex(line, -1) {
		if terminated(line, loc[1]) {
			result = append(result, line[loc[0]:loc[1]])
		}
	}
	return result
}

func leadingTag(line string) (string, string, bool) {
	if !strings.HasPrefix(line, "#") {
		return "", "", false
	}
	loc := tagPattern.FindStringIndex(line)
	if loc == nil || loc[0] != 0 || !terminated(line, loc[1]) {
		return "", "", false
	}
	return line[:loc[1]], line[loc[1]:], true
}

func terminated(line string, end int) bool {
	if end >= len(line) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(line[end:])
	return unicode.IsSpace(r)
}

// Load reads the file at path and builds its Document. root is the vault
// root used to compute the local path.
func Load(root, path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tags, comments, err := Extract(f)
	if err != nil {
		return nil, fmt.Errorf("%s 읽기 실패: %w", path, err)
	}

	return New(root, path, info.ModTime(), info.Size(), tags, comments)
}

// New builds a Document from already extracted tags.
func New(root, path string, modTime time.Time, size int64, tags []string, comments map[string][]string) (*Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	local := abs
	if absRoot, err := filepath.Abs(root); err == nil {
		if rel, err := filepath.Rel(absRoot, abs); err == nil {
			local = rel
		}
	}

	name := filepath.Base(path)
	doc := &Document{
		Key:          strings.TrimSuffix(name, filepath.Ext(name)),
		LocalPath:    filepath.ToSlash(local),
		AbsPath:      abs,
		LastModified: modTime,
		Size:         size,
		Tags:         tags,
		TagComments:  comments,
	}
	if doc.TagComments == nil {
		doc.TagComments = make(map[string][]string)
	}

	for _, tag := range tags {
		if v, ok := derived(tag, PlatformPrefix); ok {
			doc.Platforms = append(doc.Platforms, v)
		}
		if v, ok := derived(tag, TypePrefix); ok {
			doc.Types = append(doc.Types, v)
		}
		if v, ok := derived(tag, PlayPrefix); ok {
			doc.Plays = append(doc.Plays, v)
		}
	}

	return doc, nil
}

// derived strips prefix and the separator that follows it.
func derived(tag, prefix string) (string, bool) {
	if !strings.HasPrefix(tag, prefix) {
		return "", false
	}
	if len(tag) <= len(prefix)+1 {
		return "", true
	}
	return tag[len(prefix)+1:], true
}

// HasTagPrefix reports whether any tag starts with "#" + prefix.
func (d *Document) HasTagPrefix(prefix string) bool {
	token := "#" + prefix
	for _, tag := range d.Tags {
		if strings.HasPrefix(tag, token) {
			return true
		}
	}
	return false
}

// TagsWithPrefix returns the tags starting with "#" + prefix, in file order.
func (d *Document) TagsWithPrefix(prefix string) []string {
	token := "#" + prefix
	var result []string
	for _, tag := range d.Tags {
		if strings.HasPrefix(tag, token) {
			result = append(result, tag)
		}
	}
	return result
}

// HasTag reports whether the document carries exactly tag (with its "#").
func (d *Document) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Comments returns the comments registered for tag, given without "#".
func (d *Document) Comments(tag string) []string {
	return d.TagComments["#"+tag]
}

// PathContains reports whether the absolute path of the document contains sub.
// Both native and slash separated forms are checked.
func (d *Document) PathContains(sub string) bool {
	if strings.Contains(d.AbsPath, sub) {
		return true
	}
	return strings.Contains(filepath.ToSlash(d.AbsPath), filepath.ToSlash(sub))
}
