package report

import (
	"sort"
	"strconv"
	"strings"

	"github.com/n0roo/mdhelper/internal/bloc"
	"github.com/n0roo/mdhelper/internal/sheet"
	"go.uber.org/zap"
)

// interpreter renders one report tree into memory.
type interpreter struct {
	out    strings.Builder
	tags   []string // sorted tag set of the index
	labels bloc.Labels
	log    *zap.Logger
}

// frame is the context inherited from the parent bloc.
type frame struct {
	commentTag *string
	showTags   []string
	parent     string // breadcrumb of the parent
	level      string // heading marker, "#" repeated
	sheet      *DescriptionSheet
	root       bool
}

// child returns the frame for a bloc rendered under b.
func (f frame) child(b *bloc.Bloc) frame {
	if b.CommentTag != nil {
		f.commentTag = b.CommentTag
	}
	if b.HasShowTags {
		f.showTags = b.ShowTags
	}
	return f
}

// breadcrumb is the title shown in headings: every ancestor title joined by
// " - ". Virtual blocs add nothing.
func breadcrumb(b *bloc.Bloc, f frame) string {
	switch {
	case f.root:
		return ""
	case b.Kind == bloc.KindVirtual:
		return f.parent
	case f.parent != "":
		return f.parent + " - " + b.Title
	default:
		return b.Title
	}
}

// render evaluates b against input and returns the number of emitted entry
// lines and the documents b did not select, which the next sibling receives.
func (in *interpreter) render(b *bloc.Bloc, input []*sheet.Document, f frame) (int, []*sheet.Document) {
	f = f.child(b)
	title := breadcrumb(b, f)

	matched, rest := Partition(input, b.Filter)

	in.log.Debug(strings.Repeat("  ", len(f.level))+title,
		zap.String("kind", b.Kind.String()),
		zap.Int("in", len(input)),
		zap.Int("match", len(matched)),
		zap.Int("else", len(rest)),
		zap.Bool("not", b.Filter.Not),
		zap.String("mode", string(b.Filter.Mode)),
		zap.Strings("tags", b.Filter.Tags),
		zap.Strings("paths", b.Filter.Paths))

	if b.Kind == bloc.KindVirtual {
		return in.renderVirtual(b, matched, rest, title, f), rest
	}

	lines := 0
	next := f.level
	if len(matched) > 0 {
		if f.sheet != nil {
			f.sheet.AddFiltering(b.Filter)
		}
		heading := f.level + " " + title + " (" + strconv.Itoa(len(matched)) + ")\n"

		scope := f
		scope.parent = title
		scope.root = false

		switch b.Kind {
		case bloc.KindGroup:
			// 루트 그룹의 자식은 최상위 레벨에서 시작
			if !f.root {
				in.out.WriteString(heading)
				scope.level = f.level + "#"
			}
			next = f.level + "#"
			docs := matched
			for _, c := range b.Contents {
				n, left := in.render(c, docs, scope)
				lines += n
				docs = left
			}
		case bloc.KindCount:
			if !f.root {
				in.out.WriteString(heading)
			}
			next = f.level + "#"
			in.out.WriteString("|What|Count|\n|-|-|\n")
			for _, row := range b.Counts {
				in.out.WriteString("| " + row.Label + " | " + strconv.Itoa(Count(matched, row.Filter)) + " |\n")
				lines++
			}
		default:
			lines += in.renderLeaf(matched, heading, f)
			next = f.level + "#"
		}
	}

	if len(rest) > 0 && b.Else != nil {
		elseFrame := f
		elseFrame.parent = ""
		elseFrame.level = next
		elseFrame.root = false
		n, _ := in.render(b.Else, rest, elseFrame)
		lines += n
	}

	return lines, rest
}

// renderLeaf lists the matched documents, as plain link lines or as a comment
// table when a comment tag is active. The heading and the table header are
// written before the first row.
func (in *interpreter) renderLeaf(docs []*sheet.Document, heading string, f frame) int {
	table := f.commentTag != nil

	for i, doc := range docs {
		if i == 0 {
			if !f.root {
				in.out.WriteString(heading)
			}
			if table {
				in.out.WriteString("|" + in.labels.About + "|" + in.labels.Tags + "|" + in.labels.Comment + "|\n")
				in.out.WriteString("|----|----|-------|\n")
			}
		}

		ctags := inlineTags(doc, f.showTags)
		if table {
			in.out.WriteString("| [[" + doc.Key + "]] | " + ctags + " | " + comments(doc, *f.commentTag) + " |\n")
		} else {
			in.out.WriteString("[[" + doc.Key + "]]  " + ctags + " \n")
		}
	}
	return len(docs)
}

// renderVirtual renders one synthesized bloc per concrete tag extending the
// virtual bloc's prefixes, in tag order, then the else bloc with the
// documents the virtual bloc did not select.
func (in *interpreter) renderVirtual(b *bloc.Bloc, matched, rest []*sheet.Document, title string, f frame) int {
	lines := 0

	if len(matched) > 0 {
		if f.sheet != nil {
			f.sheet.AddExpandBy(b.Filter.Tags)
		}

		expanded := f
		expanded.parent = title
		expanded.sheet = nil
		expanded.root = false

		for _, t := range in.expansions(b.Filter.Tags) {
			if t.title == "" {
				continue
			}
			n, _ := in.render(b.Expand(t.title, t.tag[1:]), matched, expanded)
			lines += n
		}
	}

	if len(rest) > 0 && b.Else != nil {
		elseFrame := f
		elseFrame.parent = title
		elseFrame.root = false
		n, _ := in.render(b.Else, rest, elseFrame)
		lines += n
	}

	return lines
}

type expansion struct {
	tag   string
	title string
}

// expansions returns the concrete tags of the index extending one of the
// prefixes, sorted, skipping tags ending with "/".
func (in *interpreter) expansions(prefixes []string) []expansion {
	seen := make(map[string]bool)
	var result []expansion
	for _, prefix := range prefixes {
		token := "#" + prefix
		for _, tag := range in.tags {
			if seen[tag] || !strings.HasPrefix(tag, token) || strings.HasSuffix(tag, "/") {
				continue
			}
			seen[tag] = true
			result = append(result, expansion{tag: tag, title: Humanize(tag[len(token):])})
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].tag < result[j].tag
	})
	return result
}

// inlineTags renders the values of the tags starting with any show tag as
// " ``value``" each.
func inlineTags(doc *sheet.Document, showTags []string) string {
	var sb strings.Builder
	for _, show := range showTags {
		for _, tag := range doc.TagsWithPrefix(show) {
			if len(tag) <= len(show)+2 {
				continue
			}
			sb.WriteString(" ``" + tag[len(show)+2:] + "``")
		}
	}
	return sb.String()
}

// comments renders the comment lines of a document for tag.
func comments(doc *sheet.Document, tag string) string {
	var sb strings.Builder
	for _, c := range doc.Comments(tag) {
		sb.WriteString(" <font size=-1>" + strings.TrimSpace(c) + "</font><br>")
	}
	return sb.String()
}
