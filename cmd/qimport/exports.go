package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/typeofweb/qimport"
)

func exportsCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "exports <file>",
		Short: "Print the resolved export list of a module",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			resolver := qimport.NewResolver(afero.NewOsFs())
			scanner := qimport.NewExportScanner(resolver)

			names, err := scanner.Exports(args[0])
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		},
	}
	return c
}
