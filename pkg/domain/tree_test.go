package domain

import (
	"encoding/json"
	"testing"
)

// buildTree constructs root → [Art, Music → [Jazz]] with Jazz unresolved.
func buildTree() *Node {
	jazz := NewNode("Jazz", SourceGenerated)
	music := NewNode("Music", SourceGenerated)
	music.Children = Materialized([]*Node{jazz})
	art := NewNode("Art", SourceGenerated)
	art.Position = &Position{X: 30, Y: 40}
	root := NewNode("Everything", SourceUser)
	root.Children = Materialized([]*Node{art, music})
	return root
}

func TestFind(t *testing.T) {
	root := buildTree()

	tests := []struct {
		name string
		path Path
		want string
		ok   bool
	}{
		{name: "empty path is root", path: nil, want: "Everything", ok: true},
		{name: "first level", path: Path{"Music"}, want: "Music", ok: true},
		{name: "second level", path: Path{"Music", "Jazz"}, want: "Jazz", ok: true},
		{name: "absent name", path: Path{"Sports"}, ok: false},
		{name: "case sensitive", path: Path{"music"}, ok: false},
		{name: "through unresolved", path: Path{"Music", "Jazz", "Bebop"}, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ok := Find(root, tt.path)
			if ok != tt.ok {
				t.Fatalf("Find(%v) ok = %v, want %v", tt.path, ok, tt.ok)
			}
			if ok && n.Name != tt.want {
				t.Errorf("Find(%v) = %q, want %q", tt.path, n.Name, tt.want)
			}
		})
	}
}

func TestCloneIndependence(t *testing.T) {
	root := buildTree()
	dup := Clone(root)

	art, _ := Find(dup, Path{"Art"})
	art.Name = "Sculpture"
	art.Position.X = 99

	orig, ok := Find(root, Path{"Art"})
	if !ok {
		t.Fatal("original tree lost its Art child")
	}
	if orig.Name != "Art" {
		t.Errorf("original name = %q, want Art", orig.Name)
	}
	if orig.Position.X != 30 {
		t.Errorf("original position X = %v, want 30", orig.Position.X)
	}
}

func TestReplaceChildrenImmutable(t *testing.T) {
	root := buildTree()
	before, err := json.Marshal(root)
	if err != nil {
		t.Fatal(err)
	}

	kids := []*Node{NewNode("Bebop", SourceGenerated), NewNode("Swing", SourceGenerated)}
	updated := ReplaceChildren(root, Path{"Music", "Jazz"}, kids)

	after, err := json.Marshal(root)
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Error("ReplaceChildren mutated the original tree")
	}

	jazz, ok := Find(updated, Path{"Music", "Jazz"})
	if !ok {
		t.Fatal("Jazz not found in updated tree")
	}
	if jazz.Children.Len() != 2 {
		t.Errorf("Jazz children = %d, want 2", jazz.Children.Len())
	}
}

func TestReplaceChildrenCarriesPositions(t *testing.T) {
	a := NewNode("A", SourceGenerated)
	a.Position = &Position{X: 10, Y: 10}
	b := NewNode("B", SourceGenerated)

	root := NewNode("root", SourceUser)
	root.Children = Materialized([]*Node{a, b})

	// Re-materialize with the same A and B plus a newcomer C. The fresh
	// copies carry no position, so A must inherit (10,10).
	aAgain := &Node{ID: a.ID, Name: "A", Source: a.Source, Children: Unresolved()}
	bAgain := &Node{ID: b.ID, Name: "B", Source: b.Source, Children: Unresolved()}
	c := NewNode("C", SourceGenerated)

	updated := ReplaceChildren(root, nil, []*Node{aAgain, bAgain, c})

	got, ok := Find(updated, Path{"A"})
	if !ok {
		t.Fatal("A not found")
	}
	if got.Position == nil || got.Position.X != 10 || got.Position.Y != 10 {
		t.Errorf("A position = %+v, want (10,10)", got.Position)
	}

	gotB, _ := Find(updated, Path{"B"})
	if gotB.Position != nil {
		t.Errorf("B position = %+v, want nil (never placed)", gotB.Position)
	}
	gotC, _ := Find(updated, Path{"C"})
	if gotC.Position != nil {
		t.Errorf("C position = %+v, want nil (newcomer)", gotC.Position)
	}
}

func TestReplaceChildrenKeepsExplicitPositions(t *testing.T) {
	a := NewNode("A", SourceGenerated)
	a.Position = &Position{X: 10, Y: 10}
	root := NewNode("root", SourceUser)
	root.Children = Materialized([]*Node{a})

	// Layout write-back: the new child carries a freshly computed
	// position which must win over the stale cached one.
	placed := &Node{ID: a.ID, Name: "A", Position: &Position{X: 62, Y: 31}, Children: Unresolved()}
	updated := ReplaceChildren(root, nil, []*Node{placed})

	got, _ := Find(updated, Path{"A"})
	if got.Position.X != 62 || got.Position.Y != 31 {
		t.Errorf("A position = %+v, want (62,31)", got.Position)
	}
}

func TestReplaceChildrenUnresolvedPath(t *testing.T) {
	root := buildTree()
	updated := ReplaceChildren(root, Path{"Music", "Jazz", "Bebop"}, []*Node{NewNode("X", SourceGenerated)})

	// Path walks through unresolved Jazz: the update is a no-op clone.
	origJSON, _ := json.Marshal(root)
	updJSON, _ := json.Marshal(updated)
	if string(origJSON) != string(updJSON) {
		t.Error("unresolvable path should leave the tree unchanged")
	}
}

func TestAppendUnique(t *testing.T) {
	existing := []*Node{NewNode("Art", SourceGenerated)}

	got := AppendUnique(existing, []string{"art", "Music", "MUSIC", "Film"}, SourceGenerated)

	if len(got) != 2 {
		t.Fatalf("AppendUnique returned %d nodes, want 2", len(got))
	}
	if got[0].Name != "Music" || got[1].Name != "Film" {
		t.Errorf("AppendUnique order = [%s %s], want [Music Film]", got[0].Name, got[1].Name)
	}
	for _, n := range got {
		if n.Children.Resolved() {
			t.Errorf("new node %q should start unresolved", n.Name)
		}
		if n.ID == "" {
			t.Errorf("new node %q has no ID", n.Name)
		}
	}
}

func TestAppendUniqueAllDuplicates(t *testing.T) {
	existing := []*Node{NewNode("Art", SourceGenerated)}
	if got := AppendUnique(existing, []string{"ART", "art"}, SourceGenerated); len(got) != 0 {
		t.Errorf("AppendUnique = %d nodes, want 0", len(got))
	}
}
