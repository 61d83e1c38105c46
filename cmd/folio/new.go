package main

import (
	"fmt"

	"github.com/eringen/folio/scaffold"
	"github.com/spf13/cobra"
)

var newCmd = &cobra.Command{
	Use:   "new <dir>",
	Short: "Create a new site content tree",
	Example: `  folio new jane-doe
  folio new ~/sites/jane-doe`,
	Args: cobra.ExactArgs(1),
	RunE: runNew,
}

func runNew(cmd *cobra.Command, args []string) error {
	dir := args[0]
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Creating new folio site: %s\n\n", dir)
	if _, err := scaffold.Create(dir, scaffold.DataFor(dir), out); err != nil {
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Done! Next steps:")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  cd %s\n", dir)
	fmt.Fprintln(out, "  folio check")
	fmt.Fprintln(out, "  folio serve --watch")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Edit _config.yml to set your name and site URL.")
	fmt.Fprintln(out, "Set FOLIO_PREVIEW_PASSWORD and FOLIO_SESSION_SECRET to preview drafts.")
	return nil
}
