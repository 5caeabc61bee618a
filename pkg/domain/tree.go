package domain

import "strings"

// Path is a sequence of display names from (but excluding) the root.
// An empty path addresses the root itself.
type Path []string

// String joins the path segments with " / " for logs and error messages.
func (p Path) String() string { return strings.Join(p, " / ") }

// Key returns a canonical string form usable as a map key, e.g. for
// tracking in-flight fetches per path.
func (p Path) Key() string { return strings.Join(p, "\x1f") }

// Find walks path from root, requiring an exact name match among each
// node's materialized children. It returns false if any step's children
// are unresolved or the name is absent.
//
// A failed resolve is not an error: it means "not yet loaded" and is the
// caller's cue to fetch. Find never modifies the tree.
func Find(root *Node, path Path) (*Node, bool) {
	if root == nil {
		return nil, false
	}
	cur := root
	for _, name := range path {
		next, ok := cur.Child(name)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// Clone produces a fully independent copy of the tree rooted at root.
// Every node record is copied, so no two tree values ever share mutable
// state; Position values are duplicated rather than aliased.
func Clone(root *Node) *Node {
	if root == nil {
		return nil
	}
	out := &Node{
		ID:     root.ID,
		Name:   root.Name,
		Source: root.Source,
	}
	if root.Position != nil {
		p := *root.Position
		out.Position = &p
	}
	if root.Children.Resolved() {
		kids := make([]*Node, len(root.Children.nodes))
		for i, c := range root.Children.nodes {
			kids[i] = Clone(c)
		}
		out.Children = Materialized(kids)
	} else {
		out.Children = Unresolved()
	}
	return out
}

// ReplaceChildren returns a new tree in which the node at path has its
// children set to newChildren (materialized). The input tree is never
// mutated.
//
// Cached positions are carried forward: a new child whose ID matches an
// existing child inherits that child's Position unless the new child
// already carries one. This keeps settled layouts visually stable across
// re-materialization.
//
// If path does not resolve (unresolved step or absent name) the cloned
// root is returned unchanged; the caller is expected to fetch first.
func ReplaceChildren(root *Node, path Path, newChildren []*Node) *Node {
	out := Clone(root)
	target, ok := Find(out, path)
	if !ok {
		return out
	}

	prev := make(map[string]*Position, target.Children.Len())
	for _, c := range target.Children.Nodes() {
		if c.Position != nil {
			prev[c.ID] = c.Position
		}
	}

	kids := make([]*Node, len(newChildren))
	for i, c := range newChildren {
		k := Clone(c)
		if k.Position == nil {
			if pos, ok := prev[k.ID]; ok {
				p := *pos
				k.Position = &p
			}
		}
		kids[i] = k
	}
	target.Children = Materialized(kids)
	return out
}

// AppendUnique filters candidate names against existing children and
// returns new unresolved nodes for the remainder, preserving candidate
// order. Name comparison is case-insensitive, and duplicates within the
// candidates themselves are also dropped.
func AppendUnique(existing []*Node, names []string, source Source) []*Node {
	seen := make(map[string]struct{}, len(existing)+len(names))
	for _, c := range existing {
		seen[strings.ToLower(c.Name)] = struct{}{}
	}

	var out []*Node
	for _, name := range names {
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, NewNode(name, source))
	}
	return out
}
