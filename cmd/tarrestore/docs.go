package main

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

// docGenerators render the command tree into dir, one file per command.
var docGenerators = map[string]func(root *cobra.Command, dir string) error{
	"man": func(root *cobra.Command, dir string) error {
		return doc.GenManTree(root, &doc.GenManHeader{
			Title:   "TARRESTORE",
			Section: "1",
			Source:  "tarrestore " + version,
			Manual:  "Backup restore tools",
		}, dir)
	},
	"markdown": doc.GenMarkdownTree,
	"rest":     doc.GenReSTTree,
	"yaml":     doc.GenYamlTree,
}

func newDocsCmd() *cobra.Command {
	var dir, format string
	formats := make([]string, 0, len(docGenerators))
	for name := range docGenerators {
		formats = append(formats, name)
	}
	slices.Sort(formats)

	cmd := &cobra.Command{
		Use:    "gen-docs",
		Short:  "Write reference pages for every tarrestore command",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gen, ok := docGenerators[format]
			if !ok {
				return fmt.Errorf("unknown format %q (one of %s)", format, strings.Join(formats, ", "))
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create %s: %w", dir, err)
			}
			root := cmd.Root()
			root.DisableAutoGenTag = true
			if err := gen(root, dir); err != nil {
				return fmt.Errorf("generate %s docs: %w", format, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s docs to %s\n", format, dir)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "docs", "output directory")
	cmd.Flags().StringVar(&format, "format", "man", "output format: "+strings.Join(formats, ", "))
	return cmd
}
