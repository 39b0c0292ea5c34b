package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"librarysim/internal/catalog"
	"librarysim/internal/journal"
	"librarysim/internal/library"
	"librarysim/internal/membership"
	"librarysim/internal/wishlist"
)

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>...",
		Short: "Load book records and print the resulting catalog",
		Long: `Reads one or more record files into a fresh catalog and prints it.
The format is taken from the extension: .csv, .json, .xml, .yaml, .yml
or .parquet.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc := library.NewService(catalog.New(), wishlist.New(), membership.NewRegistry(), journal.NewMemory(), a.logger)

			for _, path := range args {
				rep, err := svc.ImportFile(ctx, path)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d new titles, %d extra copies\n", path, rep.Titles, rep.Copies)
			}
			for _, e := range svc.ShowCatalog(ctx) {
				fmt.Fprintln(cmd.OutOrStdout(), e.String())
			}
			return nil
		},
	}
}
