package bloc

// VirtualTitle marks a bloc expanded into one child per discovered tag.
const VirtualTitle = "%TAGNAME%"

// Kind is the variant of a resolved bloc.
type Kind int

const (
	// KindLeaf lists the matched sheets
	KindLeaf Kind = iota
	// KindGroup renders its contents, chaining unmatched sheets between siblings
	KindGroup
	// KindCount renders a What/Count table
	KindCount
	// KindVirtual expands into one synthesized bloc per concrete tag
	KindVirtual
)

func (k Kind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindCount:
		return "count"
	case KindVirtual:
		return "virtual"
	default:
		return "leaf"
	}
}

// Mode combines the entries of a filter.
type Mode string

const (
	ModeOr  Mode = "or"
	ModeAnd Mode = "and"
)

// Filter is the effective condition of a bloc, references already resolved.
type Filter struct {
	Tags  []string
	Paths []string
	Not   bool
	Mode  Mode
}

// Empty reports whether the filter selects nothing, making the bloc
// non-filtering.
func (f Filter) Empty() bool {
	return len(f.Tags) == 0 && len(f.Paths) == 0
}

// CountRow is one row of a count bloc.
type CountRow struct {
	Label  string
	Filter Filter
	Raw    string
}

// Bloc is one resolved node of a report tree. Blocs are never modified once
// loaded; Expand builds new values.
type Bloc struct {
	Kind   Kind
	Title  string
	Group  string
	Filter Filter

	Contents []*Bloc
	Counts   []CountRow
	Else     *Bloc

	// CommentTag overrides the inherited comment tag when set.
	CommentTag *string
	// ShowTags overrides the inherited show tags when HasShowTags is set.
	ShowTags    []string
	HasShowTags bool

	// Template is the per-tag shape of a virtual bloc, without else.
	Template *Bloc

	Raw string
}

// Expand returns the bloc synthesized for one concrete tag of a virtual
// bloc: the template with a new title and a single tag condition.
func (b *Bloc) Expand(title, tag string) *Bloc {
	tmpl := b
	if b.Template != nil {
		tmpl = b.Template
	}
	child := *tmpl
	child.Title = title
	child.Filter.Tags = []string{tag}
	child.Else = nil
	child.Template = nil
	return &child
}

// Labels are the column titles of comment tables.
type Labels struct {
	About   string
	Tags    string
	Comment string
}

// DefaultLabels returns the default table labels
func DefaultLabels() Labels {
	return Labels{About: "About", Tags: "Tags", Comment: "Comment"}
}

// Report is one top-level report definition.
type Report struct {
	Title  string
	Target string
	About  string
	Group  string
	Labels Labels
	Root   *Bloc
	Raw    string
}

// CommentTagOf returns the comment tag of the root bloc, or "".
func (r *Report) CommentTagOf() string {
	if r.Root != nil && r.Root.CommentTag != nil {
		return *r.Root.CommentTag
	}
	return ""
}
