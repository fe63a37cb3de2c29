package cli

import (
	"context"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/hongyanca/coding-plan-quota-query/internal/config"
	"github.com/hongyanca/coding-plan-quota-query/internal/logging"
)

// version is injected at build time via -ldflags.
var version = "dev"

var (
	jsonOutput bool
	yamlOutput bool
	noColor    bool
	verbose    bool
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:          "quotaquery",
	Short:        "Query Antigravity and Z.ai coding plan quotas",
	Long:         "Reports the remaining Gemini and Claude quota of an Antigravity (Google Cloud Code) account and the GLM coding plan quota of a Z.ai or ZHIPU account, from the command line or as an HTTP API.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose && quiet {
			verbose = false
		}
		l := newConfiguredLogger()
		cmd.SetContext(logging.WithLogger(cmd.Context(), l))

		loaded, err := config.LoadDotEnv(config.DotEnvPaths()...)
		if err != nil {
			l.Warn("could not load .env file", "err", err)
		}
		for _, p := range loaded {
			l.Debug("loaded environment", "path", p)
		}

		// Malformed files only warn; defaults plus environment still apply.
		if _, err := config.Reload(); err != nil {
			l.Warn("config file is malformed, using defaults", "err", err)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.Flags().GetBool("version"); v {
			out("quotaquery %s\n", version)
			return nil
		}
		return runView(cmd.Context(), allView())
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&yamlOutput, "yaml", false, "Output as YAML")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show detailed output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Minimal output")
	rootCmd.MarkFlagsMutuallyExclusive("json", "yaml")
	rootCmd.Flags().Bool("version", false, "Show version and exit")

	rootCmd.AddCommand(quotaCommands()...)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with the given context.
// Commands access it via cmd.Context().
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version",
	RunE: func(cmd *cobra.Command, args []string) error {
		if jsonOutput {
			return outputStructured(map[string]string{"version": version})
		}
		out("quotaquery %s\n", version)
		return nil
	},
}

func isTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

func structuredOutput() bool {
	return jsonOutput || yamlOutput
}
