package domain

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Source tags where a node came from.
type Source string

const (
	// SourceGenerated marks nodes produced by the child-name resolver.
	SourceGenerated Source = "generated"
	// SourceUser marks nodes added manually by a user.
	SourceUser Source = "user"
)

// Position is a cached 2D coordinate in the normalized [0,100]×[0,100]
// layout space. A position is only meaningful in the context of the node
// being displayed as a child of its current parent.
type Position struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Node is one topic in the explorable hierarchy.
//
// Nodes are value-like: tree updates never mutate a node in place, they
// produce a new tree via Clone/ReplaceChildren. Holding a *Node from an
// older tree value is always safe.
type Node struct {
	ID       string    // stable identity, unique among siblings
	Name     string    // display label, also the key when diffing children
	Source   Source    // provenance, carried through but not behaviorally significant
	Position *Position // cached layout position, nil until first placement
	Children Children  // unresolved until fetched
}

// NewNode creates an unresolved node with a fresh ID.
func NewNode(name string, source Source) *Node {
	return &Node{
		ID:       uuid.NewString(),
		Name:     name,
		Source:   source,
		Children: Unresolved(),
	}
}

// Child returns the materialized child with the given display name.
// Matching is exact (case-sensitive). Returns false if the children are
// unresolved or the name is absent.
func (n *Node) Child(name string) (*Node, bool) {
	if n == nil || !n.Children.Resolved() {
		return nil, false
	}
	for _, c := range n.Children.Nodes() {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Children is the materialization state of a node's child list.
//
// It is an explicit two-state variant rather than a nullable slice:
// unresolved means "not yet fetched", materialized means the children
// are known (possibly empty). On the wire unresolved encodes as null and
// materialized as a JSON array, so the distinction survives round trips.
type Children struct {
	resolved bool
	nodes    []*Node
}

// Unresolved returns the not-yet-fetched children state.
func Unresolved() Children { return Children{} }

// Materialized returns a resolved children state holding nodes.
// A nil slice is normalized to an empty one so that "fetched, no
// children" is distinguishable from unresolved.
func Materialized(nodes []*Node) Children {
	if nodes == nil {
		nodes = []*Node{}
	}
	return Children{resolved: true, nodes: nodes}
}

// Resolved reports whether the children have been fetched.
func (c Children) Resolved() bool { return c.resolved }

// Nodes returns the materialized children, or nil if unresolved.
// The returned slice must be treated as read-only.
func (c Children) Nodes() []*Node { return c.nodes }

// Len returns the number of materialized children (0 if unresolved).
func (c Children) Len() int { return len(c.nodes) }

// nodeJSON is the wire form of Node. Children use the null-vs-array
// convention described on the Children type.
type nodeJSON struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Source   Source    `json:"source,omitempty"`
	Position *Position `json:"position,omitempty"`
	Children []*Node   `json:"children"`
}

// MarshalJSON encodes the node with unresolved children as null.
func (n *Node) MarshalJSON() ([]byte, error) {
	out := nodeJSON{
		ID:       n.ID,
		Name:     n.Name,
		Source:   n.Source,
		Position: n.Position,
	}
	if n.Children.Resolved() {
		out.Children = n.Children.nodes
		if out.Children == nil {
			out.Children = []*Node{}
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the node, mapping a null or absent children
// field to the unresolved state.
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID       string          `json:"id"`
		Name     string          `json:"name"`
		Source   Source          `json:"source"`
		Position *Position       `json:"position"`
		Children json.RawMessage `json:"children"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	n.ID = raw.ID
	n.Name = raw.Name
	n.Source = raw.Source
	n.Position = raw.Position

	if len(raw.Children) == 0 || string(raw.Children) == "null" {
		n.Children = Unresolved()
		return nil
	}
	var kids []*Node
	if err := json.Unmarshal(raw.Children, &kids); err != nil {
		return err
	}
	n.Children = Materialized(kids)
	return nil
}
