package bloc

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Fixed sections of the shared library
const (
	sectionPaths    = "paths"
	sectionTags     = "tags"
	sectionInfoTags = "info_tags"
)

// Library is the shared filter library ("shared_contents"): named path
// lists, tag lists, info tag lists and reusable content bloc lists.
// It is read-only once built.
type Library struct {
	Paths    map[string][]string
	Tags     map[string][]string
	InfoTags map[string][]string

	contents map[string]*yaml.Node
}

// NewLibrary builds the library from the shared_contents node. A nil or
// empty node gives an empty library.
func NewLibrary(node *yaml.Node) (*Library, error) {
	lib := &Library{
		Paths:    make(map[string][]string),
		Tags:     make(map[string][]string),
		InfoTags: make(map[string][]string),
		contents: make(map[string]*yaml.Node),
	}

	node = unwrap(node)
	if node == nil || node.Kind == 0 || isNull(node) {
		return lib, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, &TypeError{Attribute: "shared_contents", Expected: "a mapping", Raw: Raw(node)}
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		value := node.Content[i+1]

		switch name {
		case sectionPaths:
			if err := readLists(value, name, lib.Paths); err != nil {
				return nil, err
			}
		case sectionTags:
			if err := readLists(value, name, lib.Tags); err != nil {
				return nil, err
			}
		case sectionInfoTags:
			if err := readLists(value, name, lib.InfoTags); err != nil {
				return nil, err
			}
		default:
			if value.Kind != yaml.SequenceNode {
				return nil, &TypeError{Attribute: name, Expected: "a list of blocs", Raw: Raw(value)}
			}
			lib.contents[name] = value
		}
	}

	return lib, nil
}

func readLists(node *yaml.Node, section string, dst map[string][]string) error {
	if node.Kind != yaml.MappingNode {
		return &TypeError{Attribute: section, Expected: "a mapping of named lists", Raw: Raw(node)}
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		values, ok := stringList(node.Content[i+1])
		if !ok {
			return &TypeError{Attribute: section + "." + name, Expected: "a list of strings", Raw: Raw(node.Content[i+1])}
		}
		dst[name] = values
	}
	return nil
}

// ContentNames returns the names of reusable content lists
func (l *Library) ContentNames() []string {
	names := make([]string, 0, len(l.contents))
	for name := range l.contents {
		names = append(names, name)
	}
	return names
}

// ResolveTags returns the effective tag list of a bloc. An inline
// tag_condition wins over tag_refs; every tag_refs name is resolved and
// concatenated in listed order.
func (l *Library) ResolveTags(inline, refs *yaml.Node, raw string) ([]string, error) {
	if inline != nil {
		tags, ok := stringList(inline)
		if !ok {
			return nil, &TypeError{Attribute: "tag_condition", Expected: "a list of strings", Raw: raw}
		}
		return tags, nil
	}
	if refs == nil {
		return nil, nil
	}

	names, ok := stringList(refs)
	if !ok {
		return nil, &TypeError{Attribute: "tag_refs", Expected: "a list of reference names", Raw: raw}
	}
	var result []string
	for _, name := range names {
		tags, ok := l.Tags[name]
		if !ok {
			return nil, &UnknownReferenceError{Kind: RefTags, Name: name, Raw: raw}
		}
		result = append(result, tags...)
	}
	return result, nil
}

// ResolvePaths returns the effective path list of a bloc. An inline
// path_condition wins over path_ref.
func (l *Library) ResolvePaths(inline, ref *yaml.Node, raw string) ([]string, error) {
	if inline != nil {
		paths, ok := stringList(inline)
		if !ok {
			return nil, &TypeError{Attribute: "path_condition", Expected: "a list of strings", Raw: raw}
		}
		return paths, nil
	}
	if ref == nil {
		return nil, nil
	}

	names, ok := stringList(ref)
	if !ok {
		return nil, &TypeError{Attribute: "path_ref", Expected: "a reference name", Raw: raw}
	}
	var result []string
	for _, name := range names {
		paths, ok := l.Paths[name]
		if !ok {
			return nil, &UnknownReferenceError{Kind: RefPaths, Name: name, Raw: raw}
		}
		result = append(result, paths...)
	}
	return result, nil
}

// ResolveShowTags returns the tag prefixes to display inline. The value is
// either a reference name into info_tags or a literal list.
func (l *Library) ResolveShowTags(node *yaml.Node, raw string) ([]string, error) {
	if node == nil {
		return nil, nil
	}
	if node.Kind == yaml.ScalarNode {
		tags, ok := l.InfoTags[node.Value]
		if !ok {
			return nil, &UnknownReferenceError{Kind: RefInfoTags, Name: node.Value, Raw: raw}
		}
		return tags, nil
	}
	tags, ok := stringList(node)
	if !ok {
		return nil, &TypeError{Attribute: "showTags", Expected: "an info_tags reference or a list of strings", Raw: raw}
	}
	return tags, nil
}

// content returns the named reusable bloc list
func (l *Library) content(name, raw string) (*yaml.Node, error) {
	node, ok := l.contents[name]
	if !ok {
		return nil, &UnknownReferenceError{Kind: RefContent, Name: name, Raw: raw}
	}
	return node, nil
}

// stringList accepts a scalar or a sequence of scalars.
func stringList(node *yaml.Node) ([]string, bool) {
	node = unwrap(node)
	if node == nil {
		return nil, false
	}
	switch node.Kind {
	case yaml.ScalarNode:
		if isNull(node) {
			return nil, true
		}
		return []string{node.Value}, true
	case yaml.SequenceNode:
		result := make([]string, 0, len(node.Content))
		for _, item := range node.Content {
			item = unwrap(item)
			if item.Kind != yaml.ScalarNode {
				return nil, false
			}
			result = append(result, item.Value)
		}
		return result, true
	}
	return nil, false
}

func unwrap(node *yaml.Node) *yaml.Node {
	for node != nil && (node.Kind == yaml.DocumentNode || node.Kind == yaml.AliasNode) {
		if node.Kind == yaml.DocumentNode {
			if len(node.Content) == 0 {
				return nil
			}
			node = node.Content[0]
		} else {
			node = node.Alias
		}
	}
	return node
}

func isNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.Tag == "!!null"
}

// Raw renders a configuration node on one line for diagnostics.
func Raw(node *yaml.Node) string {
	node = unwrap(node)
	if node == nil {
		return "<empty>"
	}
	flow := *node
	flow.Style |= yaml.FlowStyle
	out, err := yaml.Marshal(&flow)
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return strings.TrimSpace(string(out))
}
