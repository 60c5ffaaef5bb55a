package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/zarr-catalog-etl/internal/catalog"
)

func newDefinitionsCommand(app *appContext) *cobra.Command {
	var asTOML bool

	cmd := &cobra.Command{
		Use:   "definitions",
		Short: "List the catalogs that can be built",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := app.newStore(ctx)
			if err != nil {
				return err
			}
			defs, err := app.definitions(ctx, store)
			if err != nil {
				return err
			}

			if asTOML {
				data, err := catalog.EncodeDefinitions(defs)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderDefinitions(defs, app.config.Catalog))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asTOML, "toml", false, "Print definitions as a TOML document suitable for CATALOG_DEFINITIONS_FILE")

	return cmd
}

func renderDefinitions(defs map[string]catalog.Definition, selected string) string {
	rows := make([][]string, 0, len(defs))
	for _, key := range catalog.Keys(defs) {
		d := defs[key]
		marker := ""
		if key == selected {
			marker = "*"
		}
		rows = append(rows, []string{
			marker + key,
			d.Name,
			string(d.Family),
			strconv.Itoa(len(d.Paths)),
			strconv.Itoa(d.Depth),
			d.OutputLocation,
			firstNonEmpty(d.PublicURL, "-"),
		})
	}
	return renderTable(
		[]string{"Key", "Name", "Family", "Paths", "Depth", "Output", "Public URL"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight},
	) + "\n* selected by CATALOG or --catalog"
}
