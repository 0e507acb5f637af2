package manifest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// placeholderPattern matches ${dotted.path} placeholders.
var placeholderPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// mergeKey is the YAML merge key; lookups fall through to merged mappings.
const mergeKey = "<<"

// Resolve replaces every ${dotted.path} placeholder in string scalars with the
// value found at that path in the document. The input is not modified.
//
// A string that is exactly one placeholder pointing at a mapping or sequence
// is replaced by a copy of that subtree. Scalar references always produce
// strings. Resolving a tree without placeholders returns an equal tree.
func Resolve(root *yaml.Node) (*yaml.Node, error) {
	copied := copyNode(root, make(map[*yaml.Node]*yaml.Node))
	r := &resolver{
		root:   copied,
		active: make(map[*yaml.Node]bool),
		done:   make(map[*yaml.Node]bool),
	}
	if err := r.walk(copied); err != nil {
		return nil, err
	}
	return copied, nil
}

// Resolve returns a new document with all placeholders resolved.
func (d *Document) Resolve() (*Document, error) {
	root, err := Resolve(d.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", d.Path, err)
	}
	return &Document{Path: d.Path, Root: root}, nil
}

type resolver struct {
	root   *yaml.Node
	active map[*yaml.Node]bool
	done   map[*yaml.Node]bool
}

func (r *resolver) walk(n *yaml.Node) error {
	if r.done[n] {
		return nil
	}
	if r.active[n] {
		return fmt.Errorf("%w at line %d", ErrCyclicReference, n.Line)
	}

	switch n.Kind {
	case yaml.DocumentNode, yaml.SequenceNode:
		r.active[n] = true
		defer delete(r.active, n)
		for _, item := range n.Content {
			if err := r.walk(item); err != nil {
				return err
			}
		}
	case yaml.MappingNode:
		r.active[n] = true
		defer delete(r.active, n)
		for i := 1; i < len(n.Content); i += 2 {
			if err := r.walk(n.Content[i]); err != nil {
				return fmt.Errorf("%s: %w", n.Content[i-1].Value, err)
			}
		}
	case yaml.ScalarNode:
		return r.scalar(n)
	}

	r.done[n] = true
	return nil
}

// scalar resolves the placeholders of a single scalar in place.
func (r *resolver) scalar(n *yaml.Node) error {
	if r.done[n] {
		return nil
	}
	if n.ShortTag() != "!!str" || !strings.Contains(n.Value, "${") {
		r.done[n] = true
		return nil
	}

	matches := placeholderPattern.FindAllStringSubmatchIndex(n.Value, -1)
	if len(matches) == 0 {
		r.done[n] = true
		return nil
	}

	if r.active[n] {
		return fmt.Errorf("%w: %q at line %d", ErrCyclicReference, n.Value, n.Line)
	}
	r.active[n] = true
	defer delete(r.active, n)

	// A lone placeholder may stand for a whole subtree.
	if len(matches) == 1 && matches[0][0] == 0 && matches[0][1] == len(n.Value) {
		path := n.Value[matches[0][2]:matches[0][3]]
		target, err := r.lookup(path)
		if err != nil {
			return err
		}
		if target.Kind == yaml.MappingNode || target.Kind == yaml.SequenceNode {
			if err := r.walk(target); err != nil {
				return err
			}
			line, column := n.Line, n.Column
			*n = *copyNode(target, make(map[*yaml.Node]*yaml.Node))
			n.Line, n.Column = line, column
			r.done[n] = true
			return nil
		}
	}

	var sb strings.Builder
	last := 0
	for _, m := range matches {
		sb.WriteString(n.Value[last:m[0]])
		path := n.Value[m[2]:m[3]]

		target, err := r.lookup(path)
		if err != nil {
			return err
		}
		if target.Kind != yaml.ScalarNode {
			return &ReferenceError{Path: path, Err: ErrNonScalarReference}
		}
		if err := r.scalar(target); err != nil {
			return err
		}
		sb.WriteString(target.Value)
		last = m[1]
	}
	sb.WriteString(n.Value[last:])

	n.Value = sb.String()
	n.Tag = "!!str"
	r.done[n] = true
	return nil
}

// lookup indexes the document being resolved. Unresolved scalars met on the
// way are resolved first so that a placeholder standing for a subtree can be
// indexed into.
func (r *resolver) lookup(path string) (*yaml.Node, error) {
	cur := r.root
	if cur.Kind == yaml.DocumentNode && len(cur.Content) > 0 {
		cur = cur.Content[0]
	}

	for _, seg := range strings.Split(path, ".") {
		cur = deref(cur)
		if cur.Kind == yaml.ScalarNode {
			if err := r.scalar(cur); err != nil {
				return nil, err
			}
			cur = deref(cur)
		}
		next, err := child(cur, seg)
		if err != nil {
			return nil, &ReferenceError{Path: path, Segment: seg, Err: err}
		}
		cur = next
	}
	return deref(cur), nil
}

// Lookup returns the node at the given path segments of a resolved tree.
// Segments index mappings by key and sequences by zero-based position.
func Lookup(root *yaml.Node, segments []string) (*yaml.Node, error) {
	cur := root
	if cur.Kind == yaml.DocumentNode && len(cur.Content) > 0 {
		cur = cur.Content[0]
	}
	for _, seg := range segments {
		next, err := child(deref(cur), seg)
		if err != nil {
			return nil, &ReferenceError{Path: strings.Join(segments, "."), Segment: seg, Err: err}
		}
		cur = next
	}
	return deref(cur), nil
}

// child selects one segment below n.
func child(n *yaml.Node, seg string) (*yaml.Node, error) {
	switch n.Kind {
	case yaml.MappingNode:
		if v := mappingValue(n, seg, make(map[*yaml.Node]bool)); v != nil {
			return v, nil
		}
		return nil, ErrUnresolvedReference
	case yaml.SequenceNode:
		idx, err := strconv.Atoi(seg)
		if err != nil || idx < 0 {
			return nil, ErrInvalidPathSegment
		}
		if idx >= len(n.Content) {
			return nil, fmt.Errorf("%w: index %d out of range (length %d)", ErrUnresolvedReference, idx, len(n.Content))
		}
		return n.Content[idx], nil
	default:
		return nil, fmt.Errorf("%w: cannot index a scalar", ErrUnresolvedReference)
	}
}

// mappingValue finds key in a mapping, falling back to merged mappings.
func mappingValue(n *yaml.Node, key string, seen map[*yaml.Node]bool) *yaml.Node {
	if seen[n] {
		return nil
	}
	seen[n] = true

	var merges []*yaml.Node
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if isMergeKey(k) {
			merges = append(merges, v)
			continue
		}
		if k.Value == key {
			return v
		}
	}

	for _, m := range merges {
		m = deref(m)
		sources := []*yaml.Node{m}
		if m.Kind == yaml.SequenceNode {
			sources = m.Content
		}
		for _, src := range sources {
			src = deref(src)
			if src.Kind != yaml.MappingNode {
				continue
			}
			if v := mappingValue(src, key, seen); v != nil {
				return v
			}
		}
	}
	return nil
}

func isMergeKey(k *yaml.Node) bool {
	return k.Kind == yaml.ScalarNode && k.Value == mergeKey && k.ShortTag() == "!!merge"
}

// deref follows alias nodes to their anchor.
func deref(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

// copyNode deep-copies a node tree, keeping aliases pointed at the copied anchors.
func copyNode(n *yaml.Node, copies map[*yaml.Node]*yaml.Node) *yaml.Node {
	if n == nil {
		return nil
	}
	if c, ok := copies[n]; ok {
		return c
	}

	c := &yaml.Node{}
	*c = *n
	copies[n] = c

	if n.Content != nil {
		c.Content = make([]*yaml.Node, len(n.Content))
		for i, item := range n.Content {
			c.Content[i] = copyNode(item, copies)
		}
	}
	if n.Alias != nil {
		c.Alias = copyNode(n.Alias, copies)
	}
	return c
}
