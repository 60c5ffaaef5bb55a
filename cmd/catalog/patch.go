package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/zarr-catalog-etl/internal/catalog"
)

func newPatchCommand(app *appContext) *cobra.Command {
	var location, publicURL, name string

	cmd := &cobra.Command{
		Use:   "patch",
		Short: "Point an existing manifest's catalog_file key at its public CSV URL",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := app.logger

			store, err := app.newStore(ctx)
			if err != nil {
				return err
			}

			if location == "" || publicURL == "" || name == "" {
				def, err := app.definition(ctx, store)
				if err != nil {
					return err
				}
				location = firstNonEmpty(location, def.OutputLocation)
				publicURL = firstNonEmpty(publicURL, def.PublicURL)
				name = firstNonEmpty(name, def.Name)
			}
			if publicURL == "" {
				return fmt.Errorf("no public URL configured for %s (set CATALOG_PUBLIC_URL or --public-url)", name)
			}

			file, err := catalog.NewPatcher(store, logger).Patch(ctx, location, strings.TrimRight(publicURL, "/"), name)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), file)
			return nil
		},
	}

	cmd.Flags().StringVar(&location, "location", "", "Directory or prefix holding <name>.json (defaults to the catalog's output location)")
	cmd.Flags().StringVar(&publicURL, "public-url", "", "Public base URL for <name>.csv (defaults to the catalog's public URL)")
	cmd.Flags().StringVar(&name, "name", "", "Catalog file name without extension (defaults to the catalog's name)")

	return cmd
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
