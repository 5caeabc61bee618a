package store

import (
	"context"
	"testing"
	"time"

	"github.com/matzehuels/orbit/pkg/domain"
	"github.com/matzehuels/orbit/pkg/explorer"
)

func testSnapshot(name string) *Snapshot {
	root := domain.NewNode(name, domain.SourceUser)
	children := domain.AppendUnique(nil, []string{"Jazz", "Classical"}, domain.SourceGenerated)
	children[0].Position = &domain.Position{X: 30, Y: 40}
	tree := domain.ReplaceChildren(root, nil, children)

	return &Snapshot{
		Name: name,
		Tree: tree,
		View: explorer.ViewState{
			Path:     domain.Path{"Jazz"},
			Viewport: explorer.Viewport{PanX: 5, PanY: -3, Zoom: 1.4},
		},
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close(ctx)

	snap := testSnapshot("Music")
	if err := s.Put(ctx, snap); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	if snap.ID == "" {
		t.Fatal("Put should mint an ID")
	}
	if snap.CreatedAt.IsZero() || snap.UpdatedAt.IsZero() {
		t.Fatal("Put should set timestamps")
	}

	got, err := s.Get(ctx, snap.ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.Name != "Music" {
		t.Errorf("Name = %q, want Music", got.Name)
	}
	if got.View.Viewport.Zoom != 1.4 {
		t.Errorf("Zoom = %v, want 1.4", got.View.Viewport.Zoom)
	}
	jazz, ok := got.Tree.Child("Jazz")
	if !ok {
		t.Fatal("tree lost the Jazz child")
	}
	if jazz.Position == nil || jazz.Position.X != 30 {
		t.Errorf("cached position lost: %+v", jazz.Position)
	}
}

func TestMemoryStoreGetMissing(t *testing.T) {
	s := NewMemoryStore()
	if _, err := s.Get(context.Background(), "nope"); err != ErrNotFound {
		t.Errorf("Get missing = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	snap := testSnapshot("Music")
	if err := s.Put(ctx, snap); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	if err := s.Delete(ctx, snap.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, err := s.Get(ctx, snap.ID); err != ErrNotFound {
		t.Errorf("Get after Delete = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, snap.ID); err != ErrNotFound {
		t.Errorf("Delete missing = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreList(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	first := testSnapshot("Music")
	if err := s.Put(ctx, first); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	second := testSnapshot("Art")
	second.UpdatedAt = time.Time{}
	if err := s.Put(ctx, second); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	// Touch the first one so it sorts newest.
	first.UpdatedAt = time.Now().Add(time.Minute)
	stored := *first
	s.snaps[first.ID] = &stored

	metas, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(metas) != 2 {
		t.Fatalf("List = %d entries, want 2", len(metas))
	}
	if metas[0].Name != "Music" {
		t.Errorf("newest first: got %q", metas[0].Name)
	}
}

func TestMemoryStorePutCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	snap := testSnapshot("Music")
	if err := s.Put(ctx, snap); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	// Mutating the caller's snapshot must not affect the stored one.
	snap.Name = "Changed"
	got, err := s.Get(ctx, snap.ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.Name != "Music" {
		t.Errorf("stored snapshot mutated: %q", got.Name)
	}
}

func TestMongoDocRoundTrip(t *testing.T) {
	snap := testSnapshot("Music")
	stamp(snap)

	doc, err := snapshotToDoc(snap)
	if err != nil {
		t.Fatalf("snapshotToDoc error: %v", err)
	}
	back, err := docToSnapshot(doc)
	if err != nil {
		t.Fatalf("docToSnapshot error: %v", err)
	}

	if back.ID != snap.ID || back.Name != snap.Name {
		t.Errorf("identity changed: %+v", back)
	}
	if back.View.Path.Key() != snap.View.Path.Key() || back.View.Viewport != snap.View.Viewport {
		t.Errorf("view changed: %+v", back.View)
	}
	jazz, ok := back.Tree.Child("Jazz")
	if !ok {
		t.Fatal("tree lost the Jazz child")
	}
	if jazz.Position == nil || jazz.Position.X != 30 || jazz.Position.Y != 40 {
		t.Errorf("cached position lost: %+v", jazz.Position)
	}
	// The unresolved sentinel survives the byte round trip.
	if jazz.Children.Resolved() {
		t.Error("unresolved child became resolved")
	}
}
