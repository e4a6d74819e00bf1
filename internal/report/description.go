package report

import (
	"path/filepath"
	"strings"

	"github.com/n0roo/mdhelper/internal/bloc"
)

// Description sheet defaults
const (
	DefaultSheetTitle  = "# Reports description"
	DefaultSheetTarget = "Reports description.md"
)

// DescriptionSheet accumulates, across all reports of a pass, which report
// lives where and which filters produced it. It is regenerated in full on
// every pass.
type DescriptionSheet struct {
	Title  string
	Target string
	lines  []string
}

// NewDescriptionSheet creates an empty sheet; empty arguments take defaults.
func NewDescriptionSheet(title, target string) *DescriptionSheet {
	if title == "" {
		title = DefaultSheetTitle
	}
	if target == "" {
		target = DefaultSheetTarget
	}
	return &DescriptionSheet{
		Title:  title,
		Target: target,
		lines:  []string{title, "\n| Sheet | Filtering |\n", "|-|-|\n"},
	}
}

// Link returns the wiki link name of the sheet
func (s *DescriptionSheet) Link() string {
	return LinkName(s.Target)
}

// AddTarget records one report row.
func (s *DescriptionSheet) AddTarget(title, name, commentTag string) {
	s.lines = append(s.lines, "| "+title+" : [["+name+"]] | comment tag: "+commentTag+" |\n")
}

// AddFiltering records the condition of a bloc that matched documents.
// Nothing is recorded for a non-filtering bloc.
func (s *DescriptionSheet) AddFiltering(f bloc.Filter) {
	op := " **OR** "
	if f.Mode == bloc.ModeAnd {
		op = " **AND** "
	}

	var condition string
	if len(f.Tags) > 0 {
		condition = "*tags* ( " + conditionValues(op, f.Tags) + " )"
	}
	if len(f.Paths) > 0 {
		paths := "*Paths* ( " + conditionValues(op, f.Paths) + " )"
		if condition != "" {
			condition += op + paths
		} else {
			condition = paths
		}
	}
	if condition == "" {
		return
	}

	not := ""
	if f.Not {
		not = " **NOT** "
	}
	s.lines = append(s.lines, "| | "+not+condition+" |\n")
}

// AddExpandBy records a virtual bloc expansion.
func (s *DescriptionSheet) AddExpandBy(tags []string) {
	s.lines = append(s.lines, "| | > Expand by tag"+conditionValues(" **OR** ", tags)+" |\n")
}

// String renders the sheet
func (s *DescriptionSheet) String() string {
	return strings.Join(s.lines, "")
}

// WriteTo writes the sheet atomically under root and returns its path.
func (s *DescriptionSheet) WriteTo(root string) (string, error) {
	path := filepath.Join(root, s.Target)
	if err := WriteFile(path, []byte(s.String())); err != nil {
		return "", err
	}
	return path, nil
}

// conditionValues renders values as " ``a``{sep}``b``".
func conditionValues(sep string, values []string) string {
	var sb strings.Builder
	for i, v := range values {
		if i == 0 {
			sb.WriteString(" ")
		} else {
			sb.WriteString(sep)
		}
		sb.WriteString("``" + v + "``")
	}
	return sb.String()
}

// LinkName returns the wiki link of a target file: its path without the
// extension.
func LinkName(target string) string {
	return strings.TrimSuffix(filepath.ToSlash(target), filepath.Ext(target))
}
