package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orbit/pkg/cache"
	"github.com/matzehuels/orbit/pkg/domain"
	"github.com/matzehuels/orbit/pkg/layout"
)

// layoutCommand creates the layout command for computing bubble positions.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output   string
		pathFlag string
		noCache  bool
		seed     uint64
	)

	cmd := &cobra.Command{
		Use:   "layout [tree.json]",
		Short: "Compute bubble positions for a level of a domain tree",
		Long: `Compute bubble positions for a level of a domain tree.

The layout command takes a tree.json file, relaxes the children of the
addressed node into a non-overlapping arrangement, and writes the tree
back out with the computed positions cached on the nodes. Nodes that
already carry positions keep them as seeds, so stable levels stay put.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], parsePath(pathFlag), output, noCache, seed)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().StringVarP(&pathFlag, "path", "p", "", "slash-separated path to the node to lay out (default: root)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "PRNG seed override for fresh placements")

	return cmd
}

// runLayout loads the tree, relaxes one level, and writes the result.
func (c *CLI) runLayout(ctx context.Context, input string, path domain.Path, output string, noCache bool, seed uint64) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	opts := cfg.Layout.LayoutOptions()
	if seed != 0 {
		opts.Seed = seed
	}

	root, err := readTreeFile(input)
	if err != nil {
		return err
	}
	node, ok := domain.Find(root, path)
	if !ok {
		return fmt.Errorf("path %q does not resolve in %s", path.String(), input)
	}
	if !node.Children.Resolved() || node.Children.Len() == 0 {
		return fmt.Errorf("node %q has no materialized children to lay out", node.Name)
	}

	store, err := newCache(cfg.Cache, noCache)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	defer store.Close()

	children := node.Children.Nodes()
	items := make([]layout.Item, len(children))
	for i, ch := range children {
		items[i] = layout.Item{ID: ch.ID, Name: ch.Name}
		if ch.Position != nil {
			items[i].Seed = &layout.Point{X: ch.Position.X, Y: ch.Position.Y}
		}
	}

	prog := newProgress(c.Logger)
	placed, cacheHit, err := placeWithCache(ctx, store, node.Name, items, opts)
	if err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}
	prog.done(fmt.Sprintf("placed %d children of %q", len(placed), node.Name))

	updated := make([]*domain.Node, len(children))
	for i, ch := range children {
		clone := domain.Clone(ch)
		clone.Position = &domain.Position{X: placed[i].X, Y: placed[i].Y}
		updated[i] = clone
	}
	result := domain.ReplaceChildren(root, path, updated)

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".layout.json"
	}
	if err := writeTreeFile(result, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(countTopics(result), cacheHit)
	printNewline()
	printNextStep("Render", "orbit export "+outputPath)

	return nil
}

// placeWithCache runs the relaxation, keyed on the full input set so
// identical requests are served from the local cache.
func placeWithCache(ctx context.Context, store cache.Cache, center string, items []layout.Item, opts layout.Options) ([]layout.Placed, bool, error) {
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return nil, false, err
	}
	keyer := cache.NewDefaultKeyer()
	key := keyer.LayoutKey(center, cache.Hash(itemsJSON), cache.LayoutKeyOpts{
		Iterations:   opts.Iterations,
		PairMargin:   opts.PairMargin,
		CenterMargin: opts.CenterMargin,
		Pull:         opts.Pull,
		Seed:         opts.Seed,
	})

	if data, hit, err := store.Get(ctx, key); err == nil && hit {
		var placed []layout.Placed
		if err := json.Unmarshal(data, &placed); err == nil && len(placed) == len(items) {
			return placed, true, nil
		}
	}

	placed := layout.Place(center, items, opts)
	if data, err := json.Marshal(placed); err == nil {
		_ = store.Set(ctx, key, data, cache.TTLLayout)
	}
	return placed, false, nil
}
