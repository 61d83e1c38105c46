package main

import (
	"fmt"
	"os"

	"github.com/eringen/folio"
	"github.com/eringen/folio/views"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	verbose    bool
	contentDir string

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "folio - a personal academic website engine",
	Long: `folio indexes publications, talks, teaching pages and reading notes
written as Markdown with YAML front matter, serves them over HTTP and builds
them into a static site.

Content lives in _publications, _talks, _teaching, _posts and _pages under the
content directory; site settings come from _config.yml and FOLIO_* variables.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		l, err := config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the folio version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "folio %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&contentDir, "content", "C", ".", "Content directory")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(refsCmd)
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the site configuration. The content directory comes from
// --content when given, else from FOLIO_CONTENT_DIR, else ".".
func loadConfig(cmd *cobra.Command) (folio.SiteConfig, error) {
	dir := ""
	if cmd.Flags().Changed("content") {
		dir = contentDir
	}
	return folio.LoadConfig(dir)
}

// newApp builds an App with the default views from the site configuration.
// Flags the user set override the config.
func newApp(cmd *cobra.Command) (*folio.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if f := cmd.Flags().Lookup("addr"); f != nil && f.Changed {
		cfg.Addr = f.Value.String()
	}
	if f := cmd.Flags().Lookup("out"); f != nil && f.Changed {
		cfg.OutputDir = f.Value.String()
	}
	return folio.New(cfg, views.Default(), folio.WithLogger(logger)), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
