package main

import (
	"fmt"

	"github.com/eringen/folio"
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Render the site into a static directory",
	Args:  cobra.NoArgs,
	RunE:  runBuild,
}

func init() {
	buildCmd.Flags().String("out", "", "Output directory (default from config, \"_site\")")
	buildCmd.Flags().Bool("documents", false, "Also write each record's Markdown document next to its page")
}

func runBuild(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := cmd.Context()
	if err := app.Open(ctx); err != nil {
		return err
	}
	documents, _ := cmd.Flags().GetBool("documents")
	res, err := app.Build(ctx, folio.BuildOptions{Documents: documents})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Built %d pages and %d images into %s\n",
		res.Pages, res.Images, app.Config.OutputDir)
	return nil
}
