package explorer

import (
	"context"
	"encoding/json"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/orbit/pkg/domain"
	"github.com/matzehuels/orbit/pkg/errors"
	"github.com/matzehuels/orbit/pkg/gesture"
)

func musicResolver() *StaticResolver {
	return NewStaticResolver(map[string][]string{
		"Music": {"Jazz", "Classical", "Electronic"},
		"Jazz":  {"Bebop", "Swing", "Fusion"},
	})
}

func TestMaterializeRoot(t *testing.T) {
	ctx := context.Background()
	sess := NewSession("Music", musicResolver(), Options{})

	before := sess.Tree()
	if before.Children.Resolved() {
		t.Fatal("root should start unresolved")
	}

	if err := sess.Materialize(ctx, nil); err != nil {
		t.Fatalf("Materialize error: %v", err)
	}

	after := sess.Tree()
	if !after.Children.Resolved() {
		t.Fatal("root should be materialized")
	}
	if got := after.Children.Len(); got != 3 {
		t.Errorf("children count = %d, want 3", got)
	}

	// The prior tree value is untouched.
	if before.Children.Resolved() {
		t.Error("old tree value should remain unresolved")
	}

	// Already-materialized path is a no-op.
	if err := sess.Materialize(ctx, nil); err != nil {
		t.Errorf("re-materializing should be a no-op: %v", err)
	}
}

func TestMaterializeInvalidPath(t *testing.T) {
	sess := NewSession("Music", musicResolver(), Options{})
	err := sess.Materialize(context.Background(), domain.Path{"Nope"})
	if !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("expected INVALID_PATH, got %v", err)
	}
}

// blockingResolver lets tests hold a resolve for one topic open while
// the session changes underneath it. Other topics resolve immediately.
type blockingResolver struct {
	blockName string
	started   chan struct{}
	release   chan struct{}
	table     map[string][]string

	mu    sync.Mutex
	calls int
}

func newBlockingResolver(blockName string, table map[string][]string) *blockingResolver {
	return &blockingResolver{
		blockName: blockName,
		started:   make(chan struct{}),
		release:   make(chan struct{}),
		table:     table,
	}
}

func (r *blockingResolver) ResolveChildren(ctx context.Context, name string, ancestors []string) ([]string, error) {
	if name == r.blockName {
		r.mu.Lock()
		r.calls++
		first := r.calls == 1
		r.mu.Unlock()

		if first {
			close(r.started)
			<-r.release
		}
	}
	return r.table[name], nil
}

func (r *blockingResolver) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func TestMaterializeDedup(t *testing.T) {
	ctx := context.Background()
	resolver := newBlockingResolver("Music", map[string][]string{"Music": {"Jazz"}})
	sess := NewSession("Music", resolver, Options{})

	done := make(chan error, 1)
	go func() { done <- sess.Materialize(ctx, nil) }()
	<-resolver.started

	// Second call for the same path must not issue another resolve.
	if err := sess.Materialize(ctx, nil); err != nil {
		t.Fatalf("deduped Materialize error: %v", err)
	}
	if got := resolver.callCount(); got != 1 {
		t.Errorf("resolver called %d times, want 1", got)
	}

	close(resolver.release)
	if err := <-done; err != nil {
		t.Fatalf("Materialize error: %v", err)
	}
	if !sess.Tree().Children.Resolved() {
		t.Error("root should be materialized after release")
	}
}

func TestStaleResolveDiscarded(t *testing.T) {
	ctx := context.Background()
	resolver := newBlockingResolver("Music", map[string][]string{
		"Music": {"Jazz", "Classical"},
	})
	sess := NewSession("Music", resolver, Options{})

	done := make(chan error, 1)
	go func() { done <- sess.Materialize(ctx, nil) }()
	<-resolver.started

	// Replace the whole tree while the resolve is outstanding.
	if err := sess.Search(ctx, "Art"); err != nil {
		t.Fatalf("Search error: %v", err)
	}

	close(resolver.release)
	err := <-done
	if !errors.Is(err, errors.ErrCodeStaleResult) {
		t.Errorf("expected STALE_RESULT, got %v", err)
	}

	// The stale names never land on the new root.
	root := sess.Tree()
	if root.Name != "Art" {
		t.Fatalf("root = %q, want Art", root.Name)
	}
	if _, ok := root.Child("Jazz"); ok {
		t.Error("stale resolve result applied to replaced tree")
	}
}

type failingResolver struct{}

func (failingResolver) ResolveChildren(ctx context.Context, name string, ancestors []string) ([]string, error) {
	return nil, context.DeadlineExceeded
}

func TestResolverFailureLeavesNodeUnresolved(t *testing.T) {
	ctx := context.Background()
	sess := NewSession("Music", failingResolver{}, Options{})

	err := sess.Materialize(ctx, nil)
	if !errors.Is(err, errors.ErrCodeResolverFailed) {
		t.Fatalf("expected RESOLVER_FAILED, got %v", err)
	}
	if sess.Tree().Children.Resolved() {
		t.Error("failed resolve must leave the node unresolved")
	}

	// Retry is just calling again.
	if err := sess.Materialize(ctx, nil); !errors.Is(err, errors.ErrCodeResolverFailed) {
		t.Errorf("retry should hit the resolver again: %v", err)
	}
}

func TestLoadMoreAppendsUnique(t *testing.T) {
	ctx := context.Background()
	resolver := NewStaticResolver(map[string][]string{
		"Music": {"Jazz", "jazz", "Classical"},
	})
	sess := NewSession("Music", resolver, Options{})

	if err := sess.Materialize(ctx, nil); err != nil {
		t.Fatalf("Materialize error: %v", err)
	}
	if got := sess.Tree().Children.Len(); got != 2 {
		t.Fatalf("children = %d, want 2 (case-insensitive dedup)", got)
	}

	// Same names again: nothing new.
	if err := sess.LoadMore(ctx, nil); err != nil {
		t.Fatalf("LoadMore error: %v", err)
	}
	if got := sess.Tree().Children.Len(); got != 2 {
		t.Errorf("children after no-op LoadMore = %d, want 2", got)
	}
}

func TestLoadMoreRequiresMaterialized(t *testing.T) {
	sess := NewSession("Music", musicResolver(), Options{})
	err := sess.LoadMore(context.Background(), nil)
	if !errors.Is(err, errors.ErrCodeInvalidTree) {
		t.Errorf("expected INVALID_TREE, got %v", err)
	}
}

func TestVisitAndResolveContext(t *testing.T) {
	ctx := context.Background()
	recorder := &recordingResolver{inner: musicResolver()}
	sess := NewSession("Music", recorder, Options{})

	if err := sess.Materialize(ctx, nil); err != nil {
		t.Fatalf("Materialize error: %v", err)
	}
	if err := sess.Visit(domain.Path{"Jazz"}); err != nil {
		t.Fatalf("Visit error: %v", err)
	}
	if err := sess.Materialize(ctx, domain.Path{"Jazz"}); err != nil {
		t.Fatalf("Materialize error: %v", err)
	}

	// The resolver sees the topic name plus its ancestor chain.
	if recorder.lastName != "Jazz" {
		t.Errorf("resolved name = %q, want Jazz", recorder.lastName)
	}
	if len(recorder.lastAncestors) != 1 || recorder.lastAncestors[0] != "Music" {
		t.Errorf("ancestors = %v, want [Music]", recorder.lastAncestors)
	}

	node := sess.Node()
	if node == nil || node.Name != "Jazz" {
		t.Fatalf("current node = %v, want Jazz", node)
	}
	if node.Children.Len() != 3 {
		t.Errorf("Jazz children = %d, want 3", node.Children.Len())
	}

	// Visiting an unknown path fails without moving.
	if err := sess.Visit(domain.Path{"Polka"}); !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("expected INVALID_PATH, got %v", err)
	}
	if sess.Node().Name != "Jazz" {
		t.Error("failed Visit should not move the session")
	}
}

type recordingResolver struct {
	inner         Resolver
	lastName      string
	lastAncestors []string
}

func (r *recordingResolver) ResolveChildren(ctx context.Context, name string, ancestors []string) ([]string, error) {
	r.lastName = name
	r.lastAncestors = ancestors
	return r.inner.ResolveChildren(ctx, name, ancestors)
}

func TestSearchDiscardsPositions(t *testing.T) {
	ctx := context.Background()
	sess := NewSession("Music", musicResolver(), Options{})

	if err := sess.Materialize(ctx, nil); err != nil {
		t.Fatalf("Materialize error: %v", err)
	}
	if placed := sess.LayoutChildren(ctx); len(placed) != 3 {
		t.Fatalf("placed = %d, want 3", len(placed))
	}

	if err := sess.Search(ctx, "Jazz"); err != nil {
		t.Fatalf("Search error: %v", err)
	}
	root := sess.Tree()
	if root.Name != "Jazz" {
		t.Fatalf("root = %q, want Jazz", root.Name)
	}
	for _, c := range root.Children.Nodes() {
		if c.Position != nil {
			t.Errorf("child %q carries a position from before the search", c.Name)
		}
	}
	if vp := sess.Viewport(); vp != DefaultViewport() {
		t.Errorf("viewport not reset: %+v", vp)
	}
}

func TestSearchResetsControllerZoom(t *testing.T) {
	ctx := context.Background()
	sess := NewSession("Music", musicResolver(), Options{
		Gesture: gesture.Options{PinchEnabled: true},
	})
	if err := sess.Materialize(ctx, nil); err != nil {
		t.Fatalf("Materialize error: %v", err)
	}

	// Pinch out to double the separation: zoom 2.0.
	now := time.Now()
	pinch := func(p int, typ gesture.EventType, x float64) {
		sess.HandlePointer(gesture.Event{Type: typ, Pointer: p, Device: gesture.DeviceTouch, X: x, Y: 50, Time: now})
	}
	pinch(1, gesture.PointerDown, 10)
	pinch(2, gesture.PointerDown, 30)
	pinch(2, gesture.PointerMove, 50)
	pinch(2, gesture.PointerUp, 50)
	pinch(1, gesture.PointerUp, 10)
	if vp := sess.Viewport(); vp.Zoom != 2.0 {
		t.Fatalf("zoom after pinch = %v, want 2.0", vp.Zoom)
	}

	if err := sess.Search(ctx, "Art"); err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if vp := sess.Viewport(); vp.Zoom != 1.0 {
		t.Fatalf("zoom after search = %v, want 1.0", vp.Zoom)
	}

	// A fresh pinch with (nearly) unchanged separation must scale from
	// the reset zoom, not the pre-search factor.
	pinch(1, gesture.PointerDown, 10)
	pinch(2, gesture.PointerDown, 30)
	pinch(2, gesture.PointerMove, 30.01)
	if vp := sess.Viewport(); math.Abs(vp.Zoom-1.0) > 0.01 {
		t.Errorf("zoom after post-search pinch = %v, want ~1.0", vp.Zoom)
	}
}

func TestTreeImmutabilityThroughSession(t *testing.T) {
	ctx := context.Background()
	sess := NewSession("Music", musicResolver(), Options{})

	if err := sess.Materialize(ctx, nil); err != nil {
		t.Fatalf("Materialize error: %v", err)
	}
	snapshot := sess.Tree()
	wire, err := json.Marshal(snapshot)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}

	sess.LayoutChildren(ctx)
	if err := sess.Materialize(ctx, domain.Path{"Jazz"}); err != nil {
		t.Fatalf("Materialize error: %v", err)
	}

	after, err := json.Marshal(snapshot)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	if string(wire) != string(after) {
		t.Error("session updates mutated a previously returned tree value")
	}
}
