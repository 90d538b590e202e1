package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/typeofweb/qimport"
)

func rewriteCmd() *cobra.Command {
	var output string
	var stdout bool

	c := &cobra.Command{
		Use:   "rewrite [path]",
		Short: "Rewrite qualified imports in a file or tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			target := "."
			if len(args) == 1 {
				target = args[0]
			}

			var opts []qimport.Option
			if output != "" {
				opts = append(opts, qimport.WithOutputDir(output))
			}
			transformer, err := buildTransformer(opts...)
			if err != nil {
				return err
			}

			info, err := os.Stat(target)
			if err != nil {
				return err
			}

			if info.IsDir() {
				tree, err := transformer.TransformTree(target)
				if err != nil {
					return err
				}
				for _, finding := range tree.Findings() {
					fmt.Fprintln(os.Stderr, finding)
				}
				fmt.Printf("%d files processed, %d rewritten\n", len(tree.Results), tree.Rewritten)
				return nil
			}

			result, err := transformer.TransformFile(target)
			if err != nil {
				return err
			}
			for _, finding := range result.Findings {
				fmt.Fprintln(os.Stderr, finding)
			}
			if stdout {
				fmt.Print(string(result.Output))
				return nil
			}
			if output != "" {
				if err := os.MkdirAll(output, 0o755); err != nil {
					return err
				}
				return os.WriteFile(filepath.Join(output, filepath.Base(target)), result.Output, 0o644)
			}
			if !result.Changed {
				return nil
			}
			return os.WriteFile(target, result.Output, 0o644)
		},
	}

	c.Flags().StringVarP(&output, "output", "o", "", "Mirror rewritten files below this directory instead of writing in place")
	c.Flags().BoolVar(&stdout, "stdout", false, "Print the rewritten source instead of writing it (single file only)")
	return c
}
