package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/matzehuels/orbit/pkg/domain"
)

// readTreeFile loads a domain tree from a JSON file.
func readTreeFile(path string) (*domain.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tree %s: %w", path, err)
	}
	var root domain.Node
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse tree %s: %w", path, err)
	}
	return &root, nil
}

// writeTreeFile saves a domain tree as pretty-printed JSON.
func writeTreeFile(root *domain.Node, path string) error {
	data, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		return fmt.Errorf("encode tree: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// parsePath splits a slash-separated path argument into a domain path.
// Empty input addresses the root.
func parsePath(s string) domain.Path {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, "/")
	path := make(domain.Path, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			path = append(path, trimmed)
		}
	}
	return path
}

// countTopics reports the number of nodes reachable from root.
func countTopics(root *domain.Node) int {
	if root == nil {
		return 0
	}
	n := 1
	for _, c := range root.Children.Nodes() {
		n += countTopics(c)
	}
	return n
}
