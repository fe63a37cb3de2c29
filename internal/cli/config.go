package cli

import (
	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/hongyanca/coding-plan-quota-query/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current settings with secrets masked",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get().Redacted()
		cfgPath := config.ConfigFile()

		if structuredOutput() {
			return outputStructured(cfg)
		}

		if quiet {
			outln(cfgPath)
			return nil
		}

		out("Config: %s\n\n", cfgPath)
		return toml.NewEncoder(outWriter).Encode(cfg)
	},
}

type configPaths struct {
	ConfigDir   string `json:"config_dir" yaml:"config_dir"`
	ConfigFile  string `json:"config_file" yaml:"config_file"`
	EnvFile     string `json:"env_file" yaml:"env_file"`
	AccountFile string `json:"account_file" yaml:"account_file"`
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show config and account file paths",
	RunE: func(cmd *cobra.Command, args []string) error {
		paths := configPaths{
			ConfigDir:   config.ConfigDir(),
			ConfigFile:  config.ConfigFile(),
			EnvFile:     config.EnvFile(),
			AccountFile: config.Get().AccountPath(),
		}

		if structuredOutput() {
			return outputStructured(paths)
		}

		if quiet {
			outln(paths.ConfigDir)
			return nil
		}

		out("Config dir:    %s\n", paths.ConfigDir)
		out("Config file:   %s\n", paths.ConfigFile)
		out("Env file:      %s\n", paths.EnvFile)
		out("Account file:  %s\n", paths.AccountFile)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
}
