package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orbit/pkg/export"
)

// exportCommand creates the export command for rendering trees.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		output   string
		dotOnly  bool
		detailed bool
		maxDepth int
	)

	cmd := &cobra.Command{
		Use:   "export [tree.json]",
		Short: "Render a domain tree as Graphviz DOT or SVG",
		Long: `Render a domain tree as Graphviz DOT or SVG.

Materialized nodes draw solid; unresolved frontier nodes draw dashed.
With --detailed, labels include the topic source and cached positions.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExport(args[0], output, dotOnly, detailed, maxDepth)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.svg or <input>.dot)")
	cmd.Flags().BoolVar(&dotOnly, "dot", false, "emit DOT source instead of rendering SVG")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include source and position details in labels")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "limit rendering depth (0 = unlimited)")

	return cmd
}

// runExport renders the tree file and writes the result.
func (c *CLI) runExport(input, output string, dotOnly, detailed bool, maxDepth int) error {
	root, err := readTreeFile(input)
	if err != nil {
		return err
	}

	dot := export.ToDOT(root, export.Options{Detailed: detailed, MaxDepth: maxDepth})

	ext := ".svg"
	data := []byte(dot)
	if !dotOnly {
		prog := newProgress(c.Logger)
		data, err = export.RenderSVG(dot)
		if err != nil {
			return fmt.Errorf("render SVG: %w", err)
		}
		prog.done("rendered SVG")
	} else {
		ext = ".dot"
	}

	outputPath := output
	if outputPath == "" {
		outputPath = strings.TrimSuffix(input, filepath.Ext(input)) + ext
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Export complete")
	printFile(outputPath)
	printDetail("%d topics", countTopics(root))

	return nil
}
