// Package explorer orchestrates a domain tree, a layout engine, and a
// gesture controller into an interactive exploration session.
//
// A Session owns the caller's state: the current tree value, the visited
// path, the viewport, and the set of in-flight child resolves. The tree
// itself is immutable; every update swaps in a new value produced by
// pkg/domain, so readers holding an old tree are never surprised.
//
// # Usage
//
//	resolver := explorer.NewStaticResolver(map[string][]string{
//	    "Music": {"Jazz", "Classical", "Electronic"},
//	})
//	sess := explorer.NewSession("Music", resolver, explorer.Options{})
//
//	if err := sess.Materialize(ctx, nil); err != nil {
//	    return err
//	}
//	placed := sess.LayoutChildren()
package explorer

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orbit/pkg/domain"
	"github.com/matzehuels/orbit/pkg/errors"
	"github.com/matzehuels/orbit/pkg/gesture"
	"github.com/matzehuels/orbit/pkg/layout"
	"github.com/matzehuels/orbit/pkg/observability"
)

// Resolver produces candidate child names for a topic.
// Implementations may block on network calls; they receive the topic's
// ancestor names (outermost first) as disambiguating context.
type Resolver interface {
	ResolveChildren(ctx context.Context, name string, ancestors []string) ([]string, error)
}

// Navigation is delivered to the caller's sink when a tap lands.
// Node is nil when the tap hit empty space; the caller decides whether
// that means "open detail view" or nothing at all.
type Navigation struct {
	Path domain.Path
	Node *domain.Node
	X, Y float64
}

// NavigateFunc receives tap classifications from the session.
type NavigateFunc func(Navigation)

// Options configures a Session.
type Options struct {
	// Logger receives structured session events. Defaults to a discard
	// logger so library consumers opt in explicitly.
	Logger *log.Logger

	// Layout tunes the relaxation run. Zero values take defaults.
	Layout layout.Options

	// Gesture tunes pointer classification. Zero values take defaults.
	Gesture gesture.Options

	// OnNavigate receives tap results. Nil drops them.
	OnNavigate NavigateFunc
}

// Session holds one caller's exploration state.
//
// Methods are safe for concurrent use; resolver calls run outside the
// session lock so a slow resolver never blocks navigation or layout.
type Session struct {
	logger     *log.Logger
	resolver   Resolver
	engine     *layout.Engine
	gestures   *gesture.Controller
	sizing     layout.SizeFunc
	onNavigate NavigateFunc

	mu           sync.Mutex
	tree         *domain.Node
	path         domain.Path
	viewport     Viewport
	placed       []layout.Placed
	placedCenter string
	inflight     map[string]struct{}
}

// NewSession creates a session rooted at an unresolved topic node.
func NewSession(rootName string, resolver Resolver, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	sizing := opts.Layout.Sizing
	if sizing == nil {
		sizing = layout.DefaultSizing
	}
	return &Session{
		logger:     logger,
		resolver:   resolver,
		engine:     layout.NewEngine(opts.Layout),
		gestures:   gesture.NewController(opts.Gesture),
		sizing:     sizing,
		onNavigate: opts.OnNavigate,
		tree:       domain.NewNode(rootName, domain.SourceUser),
		viewport:   DefaultViewport(),
		inflight:   make(map[string]struct{}),
	}
}

// Tree returns the latest tree value. The returned tree is immutable;
// it stays valid even as the session moves on.
func (s *Session) Tree() *domain.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree
}

// Path returns the currently visited path (empty at the root).
func (s *Session) Path() domain.Path {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(domain.Path(nil), s.path...)
}

// Node returns the currently visited node from the latest tree.
func (s *Session) Node() *domain.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	node, _ := domain.Find(s.tree, s.path)
	return node
}

// Visit moves the session to path. The target must resolve against the
// current tree. Visiting recenters the pan offset but keeps the zoom, so
// descending into a child does not lose the user's scale preference.
func (s *Session) Visit(path domain.Path) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := domain.Find(s.tree, path); !ok {
		return errors.New(errors.ErrCodeInvalidPath, "path %q does not resolve", path.String())
	}
	s.path = append(domain.Path(nil), path...)
	s.placed = nil
	s.placedCenter = ""
	s.viewport.PanX = 0
	s.viewport.PanY = 0
	s.logger.Debug("visit", "path", path.String())
	return nil
}

// Materialize resolves the children of the node at path and applies them
// to the tree. At most one resolve per exact path runs at a time; a call
// for a path already in flight returns immediately without error. Results
// are applied only if the path still resolves against the latest tree, so
// a root replacement while the resolve was outstanding discards them.
//
// On resolver failure the node stays unresolved and the error is
// reported; calling Materialize again retries.
func (s *Session) Materialize(ctx context.Context, path domain.Path) error {
	s.mu.Lock()
	key := path.Key()
	if _, busy := s.inflight[key]; busy {
		s.mu.Unlock()
		observability.Fetch().OnFetchDeduped(ctx, path.String())
		s.logger.Debug("fetch already in flight", "path", path.String())
		return nil
	}
	node, ok := domain.Find(s.tree, path)
	if !ok {
		s.mu.Unlock()
		return errors.New(errors.ErrCodeInvalidPath, "path %q does not resolve", path.String())
	}
	if node.Children.Resolved() {
		s.mu.Unlock()
		return nil
	}
	s.inflight[key] = struct{}{}
	issuedID := node.ID
	name, ancestors := s.resolveTarget(path)
	s.mu.Unlock()

	names, err := s.fetch(ctx, path, name, ancestors)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, key)
	if err != nil {
		return err
	}

	// The tree may have been replaced while the resolve was outstanding.
	// Node IDs survive cloning, so an ID mismatch means the target was
	// swapped out (e.g. a search replaced the root), not just updated.
	if target, ok := domain.Find(s.tree, path); !ok || target.ID != issuedID {
		observability.Fetch().OnFetchDiscarded(ctx, path.String())
		s.logger.Warn("discarding stale resolve", "path", path.String())
		return errors.New(errors.ErrCodeStaleResult, "tree changed while resolving %q", path.String())
	}

	children := domain.AppendUnique(nil, names, domain.SourceGenerated)
	s.tree = domain.ReplaceChildren(s.tree, path, children)
	s.logger.Info("materialized", "path", path.String(), "children", len(children))
	return nil
}

// LoadMore resolves additional children for an already-materialized node
// and appends the ones not already present (case-insensitive). The same
// dedup and stale-discard rules as Materialize apply.
func (s *Session) LoadMore(ctx context.Context, path domain.Path) error {
	s.mu.Lock()
	key := path.Key()
	if _, busy := s.inflight[key]; busy {
		s.mu.Unlock()
		observability.Fetch().OnFetchDeduped(ctx, path.String())
		return nil
	}
	node, ok := domain.Find(s.tree, path)
	if !ok {
		s.mu.Unlock()
		return errors.New(errors.ErrCodeInvalidPath, "path %q does not resolve", path.String())
	}
	if !node.Children.Resolved() {
		s.mu.Unlock()
		return errors.New(errors.ErrCodeInvalidTree, "node %q has no materialized children to extend", path.String())
	}
	s.inflight[key] = struct{}{}
	issuedID := node.ID
	name, ancestors := s.resolveTarget(path)
	s.mu.Unlock()

	names, err := s.fetch(ctx, path, name, ancestors)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, key)
	if err != nil {
		return err
	}

	target, ok := domain.Find(s.tree, path)
	if !ok || target.ID != issuedID || !target.Children.Resolved() {
		observability.Fetch().OnFetchDiscarded(ctx, path.String())
		s.logger.Warn("discarding stale resolve", "path", path.String())
		return errors.New(errors.ErrCodeStaleResult, "tree changed while resolving %q", path.String())
	}

	existing := target.Children.Nodes()
	fresh := domain.AppendUnique(existing, names, domain.SourceGenerated)
	if len(fresh) == 0 {
		s.logger.Debug("load more found nothing new", "path", path.String())
		return nil
	}
	merged := make([]*domain.Node, 0, len(existing)+len(fresh))
	merged = append(merged, existing...)
	merged = append(merged, fresh...)
	s.tree = domain.ReplaceChildren(s.tree, path, merged)
	s.logger.Info("extended", "path", path.String(), "added", len(fresh))
	return nil
}

// Search replaces the whole tree with a fresh root for name, discarding
// every cached position, then materializes the new root's children.
func (s *Session) Search(ctx context.Context, name string) error {
	s.mu.Lock()
	s.tree = domain.NewNode(name, domain.SourceUser)
	s.path = nil
	s.placed = nil
	s.placedCenter = ""
	s.viewport = DefaultViewport()
	s.engine.Invalidate()
	s.gestures.Reset()
	// Reset keeps the controller's zoom factor; the next pinch scales
	// from it, so it must match the viewport we just reset.
	s.gestures.SetZoom(s.viewport.Zoom)
	s.mu.Unlock()

	s.logger.Info("search", "root", name)
	return s.Materialize(ctx, nil)
}

// resolveTarget derives the resolver arguments for path. Callers hold s.mu.
func (s *Session) resolveTarget(path domain.Path) (name string, ancestors []string) {
	chain := append([]string{s.tree.Name}, path...)
	return chain[len(chain)-1], chain[:len(chain)-1]
}

// fetch runs the resolver outside the session lock and reports hooks.
func (s *Session) fetch(ctx context.Context, path domain.Path, name string, ancestors []string) ([]string, error) {
	observability.Fetch().OnFetchStart(ctx, path.String())
	start := time.Now()
	names, err := s.resolver.ResolveChildren(ctx, name, ancestors)
	observability.Fetch().OnFetchComplete(ctx, path.String(), len(names), time.Since(start), err)
	if err != nil {
		s.logger.Error("resolve failed", "path", path.String(), "err", err)
		return nil, errors.Wrap(errors.ErrCodeResolverFailed, err, "resolving children of %q", name)
	}
	return names, nil
}
