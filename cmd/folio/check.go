package main

import (
	"fmt"

	"github.com/eringen/folio"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate every content file",
	Long: `Parses every content file and reports all problems at once: malformed
front matter, unknown collections, bad dates and duplicate permalinks.
Exits non-zero if any are found.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	records, err := folio.LoadDir(cfg.ContentDir)
	out := cmd.OutOrStdout()
	if err != nil {
		problems := flatten(err)
		for _, p := range problems {
			fmt.Fprintf(out, "  %v\n", p)
		}
		return fmt.Errorf("%d problem(s) in %d record(s)", len(problems), len(records))
	}
	fmt.Fprintf(out, "%d records OK\n", len(records))
	return nil
}

// flatten expands errors.Join trees into their leaves.
func flatten(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, e := range j.Unwrap() {
			out = append(out, flatten(e)...)
		}
		return out
	}
	return []error{err}
}
