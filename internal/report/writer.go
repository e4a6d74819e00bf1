package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/n0roo/mdhelper/internal/bloc"
	"github.com/n0roo/mdhelper/internal/vault"
	"go.uber.org/zap"
)

// Header links back to the project and to the description sheet.
const headerFormat = "> *Markdown generated report by [mdhelper](https://github.com/n0roo/mdhelper) - do not edit* - see [[%s]] for description\n\n"

// Result describes one rendered report
type Result struct {
	Title   string `json:"title"`
	Target  string `json:"target"`
	Path    string `json:"path,omitempty"`
	Entries int    `json:"entries"`
	Bytes   int    `json:"bytes"`
}

// Writer renders reports against one vault index. A Writer is used by a
// single generation pass and is not safe for concurrent use.
type Writer struct {
	index *vault.Index
	sheet *DescriptionSheet
	log   *zap.Logger
}

// NewWriter creates a writer. sheet may be nil, in which case no description
// rows are recorded and the header links the default sheet.
func NewWriter(index *vault.Index, sheet *DescriptionSheet, log *zap.Logger) *Writer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Writer{index: index, sheet: sheet, log: log}
}

// Render produces the full report text without touching the file system.
func (w *Writer) Render(r *bloc.Report) ([]byte, *Result) {
	link := LinkName(DefaultSheetTarget)
	if w.sheet != nil {
		link = w.sheet.Link()
		w.sheet.AddTarget(r.Title, LinkName(r.Target), r.CommentTagOf())
	}

	in := &interpreter{
		tags:   w.index.Tags,
		labels: r.Labels,
		log:    w.log.With(zap.String("report", r.Title)),
	}

	in.out.WriteString(fmt.Sprintf(headerFormat, link))
	if r.About != "" {
		in.out.WriteString("*CONTENT*\n```" + r.About + "```\n")
	}

	entries := 0
	if r.Root != nil {
		entries, _ = in.render(r.Root, w.index.Sorted, frame{
			level: "#",
			sheet: w.sheet,
			root:  true,
		})
	}

	in.out.WriteString("\n----\n# Entries: " + strconv.Itoa(entries) + "\n")

	out := []byte(in.out.String())
	return out, &Result{
		Title:   r.Title,
		Target:  r.Target,
		Entries: entries,
		Bytes:   len(out),
	}
}

// Write renders the report and replaces its target under the vault root.
// The previous file is left untouched if writing fails.
func (w *Writer) Write(r *bloc.Report) (*Result, error) {
	out, res := w.Render(r)

	res.Path = filepath.Join(w.index.Root, r.Target)
	if err := WriteFile(res.Path, out); err != nil {
		return nil, err
	}

	w.log.Info("report generated",
		zap.String("title", r.Title),
		zap.String("target", res.Path),
		zap.Int("entries", res.Entries))
	return res, nil
}

// WriteFile writes data to a temporary file next to path and renames it over
// path, so readers never see a partial file.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("디렉토리 생성 실패: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%s 임시 파일 생성 실패: %w", path, err)
	}
	name := tmp.Name()
	defer os.Remove(name)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%s 쓰기 실패: %w", path, err)
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return fmt.Errorf("%s 권한 설정 실패: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%s 쓰기 실패: %w", path, err)
	}
	if err := os.Rename(name, path); err != nil {
		return fmt.Errorf("%s 교체 실패: %w", path, err)
	}
	return nil
}
