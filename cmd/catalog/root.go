package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var catalogFlag string

	app := newAppContext(&catalogFlag)

	rootCmd := &cobra.Command{
		Use:           "catalog",
		Short:         "Build and publish Zarr data catalogs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := app.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&catalogFlag, "catalog", "c", "", "Catalog definition to use (overrides CATALOG)")

	rootCmd.AddCommand(newBuildCommand(app))
	rootCmd.AddCommand(newPatchCommand(app))
	rootCmd.AddCommand(newDefinitionsCommand(app))

	return rootCmd
}
