// Package pkg provides the core libraries for the Orbit domain explorer.
//
// # Overview
//
// Orbit models an explorable topic hierarchy as a lazily-materialized
// tree whose children are rendered as mutually-repelling bubbles around
// a focal node. The pkg directory is organized by concern:
//
//  1. [domain] - the persistent topic tree (identity, materialization, positions)
//  2. [layout] - positional relaxation for child constellations
//  3. [gesture] - pointer-event classification (pan / pinch / tap)
//  4. [explorer] - session orchestration (fetch dedup, stale discard, viewport)
//  5. [cache], [store], [config], [export] - supporting infrastructure
//
// # Data Flow
//
//	navigation request
//	         ↓
//	    [domain] resolve node at path (unresolved → fetch via explorer)
//	         ↓
//	    [layout] place materialized children, seeded by cached positions
//	         ↓
//	    [gesture] pan/zoom/tap events mutate the viewport or navigate
//
// # Quick Start
//
//	root := domain.NewNode("Everything", domain.SourceUser)
//	root = domain.ReplaceChildren(root, nil,
//	    domain.AppendUnique(nil, []string{"Art", "Music"}, domain.SourceGenerated))
//
//	sess := explorer.NewSession(root, resolver, explorer.Options{})
//	placed, _ := sess.LayoutChildren(ctx, domain.Path{"Music"})
//
// [domain]: https://pkg.go.dev/github.com/matzehuels/orbit/pkg/domain
// [layout]: https://pkg.go.dev/github.com/matzehuels/orbit/pkg/layout
// [gesture]: https://pkg.go.dev/github.com/matzehuels/orbit/pkg/gesture
// [explorer]: https://pkg.go.dev/github.com/matzehuels/orbit/pkg/explorer
// [cache]: https://pkg.go.dev/github.com/matzehuels/orbit/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/orbit/pkg/store
// [config]: https://pkg.go.dev/github.com/matzehuels/orbit/pkg/config
// [export]: https://pkg.go.dev/github.com/matzehuels/orbit/pkg/export
package pkg
