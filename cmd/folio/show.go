package main

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/eringen/folio"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <permalink>",
	Short: "Print a record in the terminal",
	Long: `Looks up a record by permalink, drafts included, and prints it
rendered for the terminal. With --raw the front matter document is printed
as is.

Example:
  folio show /publication/2023_AIAA_GPR`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().Bool("raw", false, "Print the Markdown document instead of rendering it")
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	records, err := folio.LoadDir(cfg.ContentDir)
	if err != nil {
		logger.Sugar().Warnf("content has problems, run 'folio check': %v", err)
	}
	rec, err := findRecord(records, args[0])
	if err != nil {
		return err
	}

	doc, err := folio.Document(rec)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if raw, _ := cmd.Flags().GetBool("raw"); raw {
		_, err := fmt.Fprint(out, doc)
		return err
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return err
	}
	rendered, err := r.Render(showMarkdown(rec))
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(out, rendered)
	return err
}

// findRecord matches a permalink with or without its trailing slash.
func findRecord(records []folio.ContentRecord, permalink string) (folio.ContentRecord, error) {
	want := folio.NormalizePermalink(permalink)
	for _, r := range records {
		if r.Permalink == want || r.Permalink+"/" == want || r.Permalink == want+"/" {
			return r, nil
		}
	}
	return folio.ContentRecord{}, fmt.Errorf("%s: %w", permalink, folio.ErrNotFound)
}

// showMarkdown puts the title and metadata line above the body.
func showMarkdown(r folio.ContentRecord) string {
	md := "# " + r.Title + "\n\n"
	meta := r.Date
	if r.Venue != "" {
		meta = joinMeta(meta, "*"+r.Venue+"*")
	}
	if len(r.Tags) > 0 {
		meta = joinMeta(meta, folio.JoinTags(r.Tags))
	}
	if meta != "" {
		md += meta + "\n\n"
	}
	return md + r.Body
}

func joinMeta(a, b string) string {
	if a == "" {
		return b
	}
	return a + " · " + b
}
