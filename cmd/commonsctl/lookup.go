package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"books-commons/internal/config"
	catalogModel "books-commons/internal/domains/catalog/model"
	"books-commons/internal/infrastructure/bookmeta"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <isbn>",
	Short: "Query the external metadata providers for an ISBN",
	Long: `Runs the same provider chain the catalog uses (openBD, Google Books,
Open Library) and prints the merged metadata as JSON. Nothing is written
to the database or the cache.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		isbn, err := catalogModel.NormalizeISBN(args[0])
		if err != nil {
			return err
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		md, err := bookmeta.NewDefaultChain(cfg.Catalog).Lookup(cmd.Context(), isbn)
		if errors.Is(err, bookmeta.ErrNotFound) {
			return fmt.Errorf("no provider knows ISBN %s", isbn)
		}
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(md)
	},
}
