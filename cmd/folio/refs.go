package main

import (
	"fmt"
	"path/filepath"

	"github.com/eringen/folio"
	"github.com/eringen/folio/bib"
	"github.com/spf13/cobra"
)

var refsCmd = &cobra.Command{
	Use:   "refs",
	Short: "Regenerate reference lists from BibTeX",
	Long: `For every Markdown file whose front matter names a bibfile and citekeys,
regenerates the reference list between the
<!-- BEGIN:references --> and <!-- END:references --> markers, appending it
when missing. A tmp-<name>.bak backup is written before each change.

Without --folder, every collection directory of the content tree is processed.`,
	Args: cobra.NoArgs,
	RunE: runRefs,
}

func init() {
	refsCmd.Flags().String("folder", "", "Folder containing Markdown files")
	refsCmd.Flags().Bool("style-inline", false, "Insert a <style> block above the Reference heading")
	refsCmd.Flags().Bool("dry-run", false, "Show planned changes without writing files")
}

func runRefs(cmd *cobra.Command, args []string) error {
	folder, _ := cmd.Flags().GetString("folder")
	inline, _ := cmd.Flags().GetBool("style-inline")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	dirs := []string{folder}
	if folder == "" {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		dirs = dirs[:0]
		for _, c := range folio.Collections {
			dirs = append(dirs, filepath.Join(cfg.ContentDir, "_"+string(c)))
		}
	}

	lib := bib.NewLibrary()
	out := cmd.OutOrStdout()
	for _, dir := range dirs {
		results, err := bib.UpdateDir(dir, bib.Options{
			InlineStyle: inline,
			DryRun:      dryRun,
			Library:     lib,
		})
		if err != nil {
			return err
		}
		if folder == "" && len(results) == 0 {
			continue
		}
		if folder == "" {
			fmt.Fprintf(out, "%s:\n", dir)
		}
		fmt.Fprint(out, bib.Summary(dir, results, dryRun))
	}
	return nil
}
