package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-errors/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/typeofweb/qimport"
)

func checkCmd() *cobra.Command {
	var named bool

	c := &cobra.Command{
		Use:   "check [path]",
		Short: "Validate qualified imports without rewriting anything",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			target := "."
			if len(args) == 1 {
				target = args[0]
			}

			var opts []qimport.Option
			if named {
				opts = append(opts, qimport.WithNamedImportChecks())
			}
			transformer, err := buildTransformer(opts...)
			if err != nil {
				return err
			}

			files, err := collectFiles(target)
			if err != nil {
				return err
			}

			problems := 0
			for _, file := range files {
				source, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				result, err := transformer.TransformSource(file, source)
				if err != nil {
					if verr, ok := err.(*qimport.ValidationError); ok {
						for _, finding := range verr.Findings {
							fmt.Fprintln(os.Stderr, finding)
						}
						problems += len(verr.Findings)
						continue
					}
					return err
				}
				for _, finding := range result.Findings {
					fmt.Fprintln(os.Stderr, finding)
					if finding.Kind.Fatal() {
						problems++
					}
				}
			}

			if problems > 0 {
				return errors.Errorf("%d problems found in %d files", problems, len(files))
			}
			fmt.Printf("%d files checked\n", len(files))
			return nil
		},
	}

	c.Flags().BoolVar(&named, "named", false, "Also check standard named imports against export lists")
	return c
}

func collectFiles(target string) ([]string, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{target}, nil
	}

	extensions := viper.GetStringSlice("ext")
	var files []string
	err = filepath.Walk(target, func(file string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		for _, ext := range extensions {
			if filepath.Ext(file) == ext {
				files = append(files, file)
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
