package report

import (
	"github.com/n0roo/mdhelper/internal/bloc"
	"github.com/n0roo/mdhelper/internal/sheet"
)

// Matches evaluates a filter against one document, ignoring Not.
//
// In "or" mode the result is false until the first tag prefix or path
// substring that matches; in "and" mode it is true until the first one that
// does not. Evaluation stops as soon as the result is decided.
func Matches(doc *sheet.Document, f bloc.Filter) bool {
	and := f.Mode == bloc.ModeAnd

	for _, tag := range f.Tags {
		ok := doc.HasTagPrefix(tag)
		if ok && !and {
			return true
		}
		if !ok && and {
			return false
		}
	}
	for _, path := range f.Paths {
		ok := doc.PathContains(path)
		if ok && !and {
			return true
		}
		if !ok && and {
			return false
		}
	}

	return and
}

// Partition splits docs into the documents selected by the filter and the
// rest, preserving order. An empty filter selects everything. Not swaps both
// sets after the split.
func Partition(docs []*sheet.Document, f bloc.Filter) (matched, rest []*sheet.Document) {
	if f.Empty() {
		matched = append(matched, docs...)
	} else {
		for _, doc := range docs {
			if Matches(doc, f) {
				matched = append(matched, doc)
			} else {
				rest = append(rest, doc)
			}
		}
	}

	if f.Not {
		matched, rest = rest, matched
	}
	return matched, rest
}

// Count returns how many documents a count row selects.
func Count(docs []*sheet.Document, f bloc.Filter) int {
	matched, _ := Partition(docs, f)
	return len(matched)
}
