package bloc

import (
	"gopkg.in/yaml.v3"
)

// Allowed attributes, checked when a bloc is loaded.
var (
	filterKeys = []string{
		"title",
		"group",
		"tag_condition",   // tag prefixes
		"tag_refs",        // names in shared tags
		"path_condition",  // path substrings
		"path_ref",        // name in shared paths
		"condition_type",  // "not" swaps matched and unmatched sheets
		"multi_condition", // "or" (default) or "and"
	}

	blocKeys = append(append([]string{}, filterKeys...),
		"contents",    // child blocs
		"count",       // statistic rows
		"content_ref", // name of a shared bloc list
		"else",        // bloc for the sheets not matched
		"commentTag",  // tag whose line comments are shown in a table
		"showTags",    // info_tags reference or prefixes shown inline
	)

	rootKeys = append(append([]string{}, blocKeys...),
		"target",
		"about",
		"labelAbout",
		"labelTags",
		"labelComment",
	)
)

// LoadReport resolves one report definition against the shared library.
// Unknown attributes, invalid values and unknown references fail the whole
// report.
func LoadReport(node *yaml.Node, lib *Library) (*Report, error) {
	node = unwrap(node)
	raw := Raw(node)
	if node == nil || node.Kind != yaml.MappingNode {
		return nil, &TypeError{Attribute: "report", Expected: "a mapping", Raw: raw}
	}

	f, err := fieldsOf(node, rootKeys, raw)
	if err != nil {
		return nil, err
	}

	r := &Report{Labels: DefaultLabels(), Raw: raw}
	for _, s := range []struct {
		key string
		dst *string
	}{
		{"title", &r.Title},
		{"target", &r.Target},
		{"about", &r.About},
		{"group", &r.Group},
		{"labelAbout", &r.Labels.About},
		{"labelTags", &r.Labels.Tags},
		{"labelComment", &r.Labels.Comment},
	} {
		if n := f[s.key]; n != nil {
			v, ok := scalar(n)
			if !ok {
				return nil, &TypeError{Attribute: s.key, Expected: "a string", Raw: raw}
			}
			*s.dst = v
		}
	}

	if r.Title == "" {
		return nil, &MissingFieldError{Field: "title", Raw: raw}
	}
	if r.Target == "" {
		return nil, &MissingFieldError{Field: "target", Raw: raw}
	}

	root, err := newLoader(lib).load(node, rootKeys, false)
	if err != nil {
		return nil, err
	}
	r.Root = root

	return r, nil
}

// Load resolves a single bloc tree. The top bloc may omit its title.
func Load(node *yaml.Node, lib *Library) (*Bloc, error) {
	return newLoader(lib).load(node, blocKeys, false)
}

type loader struct {
	lib      *Library
	refs     []string
	resolved map[string][]*Bloc
}

func newLoader(lib *Library) *loader {
	if lib == nil {
		lib, _ = NewLibrary(nil)
	}
	return &loader{lib: lib, resolved: make(map[string][]*Bloc)}
}

func (l *loader) load(node *yaml.Node, allowed []string, requireTitle bool) (*Bloc, error) {
	node = unwrap(node)
	raw := Raw(node)
	if node == nil || node.Kind != yaml.MappingNode {
		return nil, &TypeError{Attribute: "bloc", Expected: "a mapping", Raw: raw}
	}

	f, err := fieldsOf(node, allowed, raw)
	if err != nil {
		return nil, err
	}

	b := &Bloc{Raw: raw}
	if n := f["title"]; n != nil {
		if b.Title, err = scalarField(n, "title", raw); err != nil {
			return nil, err
		}
	}
	if requireTitle && b.Title == "" {
		return nil, &MissingFieldError{Field: "title", Raw: raw}
	}
	if n := f["group"]; n != nil {
		if b.Group, err = scalarField(n, "group", raw); err != nil {
			return nil, err
		}
	}

	if b.Filter, err = l.filter(f, raw); err != nil {
		return nil, err
	}

	if n := f["commentTag"]; n != nil {
		tag, err := scalarField(n, "commentTag", raw)
		if err != nil {
			return nil, err
		}
		b.CommentTag = &tag
	}
	if n := f["showTags"]; n != nil {
		if b.ShowTags, err = l.lib.ResolveShowTags(n, raw); err != nil {
			return nil, err
		}
		b.HasShowTags = true
	}

	var body []string
	for _, key := range []string{"contents", "content_ref", "count"} {
		if f[key] != nil {
			body = append(body, key)
		}
	}
	if len(body) > 1 {
		return nil, &ConflictError{Keys: body, Raw: raw}
	}

	switch {
	case f["contents"] != nil:
		b.Kind = KindGroup
		if b.Contents, err = l.list(f["contents"], raw); err != nil {
			return nil, err
		}
	case f["content_ref"] != nil:
		name, err := scalarField(f["content_ref"], "content_ref", raw)
		if err != nil {
			return nil, err
		}
		b.Kind = KindGroup
		if b.Contents, err = l.contentRef(name, raw); err != nil {
			return nil, err
		}
	case f["count"] != nil:
		b.Kind = KindCount
		if b.Counts, err = l.counts(f["count"], raw); err != nil {
			return nil, err
		}
	default:
		b.Kind = KindLeaf
	}

	if n := f["else"]; n != nil {
		if b.Else, err = l.load(n, blocKeys, true); err != nil {
			return nil, err
		}
	}

	if b.Title == VirtualTitle {
		tmpl := *b
		tmpl.Else = nil
		b.Template = &tmpl
		b.Kind = KindVirtual
	}

	return b, nil
}

func (l *loader) filter(f map[string]*yaml.Node, raw string) (Filter, error) {
	var (
		filter = Filter{Mode: ModeOr}
		err    error
	)

	if filter.Tags, err = l.lib.ResolveTags(f["tag_condition"], f["tag_refs"], raw); err != nil {
		return filter, err
	}
	if filter.Paths, err = l.lib.ResolvePaths(f["path_condition"], f["path_ref"], raw); err != nil {
		return filter, err
	}

	if n := f["condition_type"]; n != nil {
		v, err := scalarField(n, "condition_type", raw)
		if err != nil {
			return filter, err
		}
		switch v {
		case "":
		case "not":
			filter.Not = true
		default:
			return filter, &InvalidValueError{Attribute: "condition_type", Value: v, Allowed: []string{"not"}, Raw: raw}
		}
	}

	if n := f["multi_condition"]; n != nil {
		v, err := scalarField(n, "multi_condition", raw)
		if err != nil {
			return filter, err
		}
		switch Mode(v) {
		case ModeOr, ModeAnd:
			filter.Mode = Mode(v)
		default:
			return filter, &InvalidValueError{Attribute: "multi_condition", Value: v, Allowed: []string{string(ModeOr), string(ModeAnd)}, Raw: raw}
		}
	}

	return filter, nil
}

func (l *loader) list(node *yaml.Node, raw string) ([]*Bloc, error) {
	node = unwrap(node)
	if node == nil || node.Kind != yaml.SequenceNode {
		return nil, &TypeError{Attribute: "contents", Expected: "a list of blocs", Raw: raw}
	}
	blocs := make([]*Bloc, 0, len(node.Content))
	for _, item := range node.Content {
		child, err := l.load(item, blocKeys, true)
		if err != nil {
			return nil, err
		}
		blocs = append(blocs, child)
	}
	return blocs, nil
}

func (l *loader) contentRef(name, raw string) ([]*Bloc, error) {
	if blocs, ok := l.resolved[name]; ok {
		return blocs, nil
	}
	for _, ref := range l.refs {
		if ref == name {
			chain := append(append([]string{}, l.refs...), name)
			return nil, &ReferenceCycleError{Chain: chain}
		}
	}

	node, err := l.lib.content(name, raw)
	if err != nil {
		return nil, err
	}

	l.refs = append(l.refs, name)
	blocs, err := l.list(node, raw)
	l.refs = l.refs[:len(l.refs)-1]
	if err != nil {
		return nil, err
	}

	l.resolved[name] = blocs
	return blocs, nil
}

func (l *loader) counts(node *yaml.Node, raw string) ([]CountRow, error) {
	node = unwrap(node)
	if node == nil || node.Kind != yaml.MappingNode {
		return nil, &TypeError{Attribute: "count", Expected: "a mapping of label to filter", Raw: raw}
	}

	rows := make([]CountRow, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		label := node.Content[i].Value
		value := unwrap(node.Content[i+1])
		rowRaw := Raw(value)
		if value == nil || value.Kind != yaml.MappingNode {
			return nil, &TypeError{Attribute: "count." + label, Expected: "a mapping", Raw: rowRaw}
		}

		f, err := fieldsOf(value, filterKeys, rowRaw)
		if err != nil {
			return nil, err
		}
		filter, err := l.filter(f, rowRaw)
		if err != nil {
			return nil, err
		}
		rows = append(rows, CountRow{Label: label, Filter: filter, Raw: rowRaw})
	}
	return rows, nil
}

// fieldsOf indexes the attributes of a mapping node, rejecting keys outside
// allowed.
func fieldsOf(node *yaml.Node, allowed []string, raw string) (map[string]*yaml.Node, error) {
	f := make(map[string]*yaml.Node, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		if !contains(allowed, key) {
			return nil, &UnknownAttributeError{Key: key, Allowed: allowed, Raw: raw}
		}
		f[key] = node.Content[i+1]
	}
	return f, nil
}

func scalar(node *yaml.Node) (string, bool) {
	node = unwrap(node)
	if node == nil || node.Kind != yaml.ScalarNode {
		return "", false
	}
	if isNull(node) {
		return "", true
	}
	return node.Value, true
}

func scalarField(node *yaml.Node, attr, raw string) (string, error) {
	v, ok := scalar(node)
	if !ok {
		return "", &TypeError{Attribute: attr, Expected: "a string", Raw: raw}
	}
	return v, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
