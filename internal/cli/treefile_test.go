package cli

import (
	"path/filepath"
	"testing"

	"github.com/matzehuels/orbit/pkg/domain"
)

func TestTreeFileRoundTrip(t *testing.T) {
	root := domain.NewNode("Music", domain.SourceUser)
	jazz := domain.NewNode("Jazz", domain.SourceGenerated)
	jazz.Position = &domain.Position{X: 30, Y: 40}
	root.Children = domain.Materialized([]*domain.Node{jazz})

	path := filepath.Join(t.TempDir(), "tree.json")
	if err := writeTreeFile(root, path); err != nil {
		t.Fatalf("writeTreeFile() error: %v", err)
	}

	back, err := readTreeFile(path)
	if err != nil {
		t.Fatalf("readTreeFile() error: %v", err)
	}

	if back.Name != "Music" {
		t.Errorf("root name = %q, want %q", back.Name, "Music")
	}
	child, ok := domain.Find(back, domain.Path{"Jazz"})
	if !ok {
		t.Fatal("Jazz not found after round trip")
	}
	if child.Position == nil || child.Position.X != 30 || child.Position.Y != 40 {
		t.Errorf("position not preserved: %+v", child.Position)
	}
	if child.Children.Resolved() {
		t.Error("unresolved children should survive the round trip")
	}
}

func TestReadTreeFileMissing(t *testing.T) {
	if _, err := readTreeFile(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParsePath(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"  ", 0},
		{"Jazz", 1},
		{"Jazz/Bebop", 2},
		{" Jazz / Bebop ", 2},
		{"Jazz//Bebop", 2},
	}
	for _, tt := range tests {
		got := parsePath(tt.in)
		if len(got) != tt.want {
			t.Errorf("parsePath(%q) = %v, want %d segments", tt.in, got, tt.want)
		}
	}

	path := parsePath("Jazz/Bebop")
	if path[0] != "Jazz" || path[1] != "Bebop" {
		t.Errorf("parsePath segments = %v", path)
	}
}

func TestCountTopics(t *testing.T) {
	root := domain.NewNode("Music", domain.SourceUser)
	root.Children = domain.Materialized(domain.AppendUnique(nil, []string{"Jazz", "Classical"}, domain.SourceGenerated))

	if got := countTopics(root); got != 3 {
		t.Errorf("countTopics() = %d, want 3", got)
	}
	if got := countTopics(nil); got != 0 {
		t.Errorf("countTopics(nil) = %d, want 0", got)
	}
}
