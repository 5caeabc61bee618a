// Package domain implements the partially-materialized topic tree that
// backs the explorer.
//
// # Overview
//
// A tree starts with a root and its first-level children already known.
// Any deeper node's children begin in the unresolved state and are
// materialized on first visit by an external resolver. The tree is a
// persistent data structure: every update (ReplaceChildren) produces a
// new tree value and leaves prior values untouched, so callers can hold
// snapshots freely.
//
// # Positions
//
// Nodes cache the 2D position last assigned by the layout engine.
// ReplaceChildren carries positions forward for identity-preserving
// updates, which is what keeps an already-settled constellation from
// jumping when more children arrive.
//
// # Usage
//
//	root := domain.NewNode("Music", domain.SourceUser)
//	kids := domain.AppendUnique(nil, []string{"Jazz", "Blues"}, domain.SourceGenerated)
//	root = domain.ReplaceChildren(root, nil, kids)
//
//	jazz, ok := domain.Find(root, domain.Path{"Jazz"})
package domain
