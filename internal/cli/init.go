package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hongyanca/coding-plan-quota-query/internal/config"
	"github.com/hongyanca/coding-plan-quota-query/internal/prompt"
)

const skipZai = "skip"

var zaiPlatforms = []prompt.SelectOption{
	{Label: "Z.ai (api.z.ai)", Value: "https://api.z.ai/api/anthropic"},
	{Label: "ZHIPU (open.bigmodel.cn)", Value: "https://open.bigmodel.cn/api/anthropic"},
	{Label: "Skip, I only use Antigravity", Value: skipZai},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Run first-time setup wizard",
	Long:  "Prompts for the Google OAuth client, the account file and the optional Z.ai credentials, then writes config.toml.",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		return runInit(config.ConfigFile(), force)
	},
}

func init() {
	initCmd.Flags().BoolP("force", "f", false, "Overwrite an existing config file without asking")
}

func runInit(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		ok, err := prompt.Default.Confirm(prompt.ConfirmConfig{
			Title:       "Overwrite existing config?",
			Description: path,
		})
		if err != nil {
			return err
		}
		if !ok {
			outln("Setup cancelled")
			return nil
		}
	}

	if !quiet {
		outln()
		outln("  Welcome to quotaquery!")
		outln()
		outln("  Antigravity credentials come from the OAuth client the IDE uses.")
		outln()
	}

	cfg := config.DefaultConfig()

	var err error
	if cfg.Google.ClientID, err = prompt.Default.Input(prompt.InputConfig{
		Title:    "Google OAuth client ID",
		Validate: prompt.ValidateNotEmpty,
	}); err != nil {
		return err
	}
	if cfg.Google.ClientSecret, err = prompt.Default.Input(prompt.InputConfig{
		Title:    "Google OAuth client secret",
		Secret:   true,
		Validate: prompt.ValidateNotEmpty,
	}); err != nil {
		return err
	}

	account, err := prompt.Default.Input(prompt.InputConfig{
		Title:       "Account file",
		Description: "Relative paths are resolved against the working directory, then " + config.ConfigDir(),
		Placeholder: cfg.Google.AccountFile,
	})
	if err != nil {
		return err
	}
	if account = strings.TrimSpace(account); account != "" {
		cfg.Google.AccountFile = account
	}

	platform, err := prompt.Default.Select(prompt.SelectConfig{
		Title:   "GLM coding plan",
		Options: zaiPlatforms,
	})
	if err != nil {
		return err
	}
	if platform != "" && platform != skipZai {
		cfg.Zai.BaseURL = platform
		if cfg.Zai.AuthToken, err = prompt.Default.Input(prompt.InputConfig{
			Title:    "Z.ai API key",
			Secret:   true,
			Validate: prompt.ValidateNotEmpty,
		}); err != nil {
			return err
		}
	}

	if err := config.Save(cfg, path); err != nil {
		return err
	}

	out("✓ Wrote %s\n", path)
	if !quiet {
		out("  Account file: %s\n", cfg.AccountPath())
		outln("  Run 'quotaquery all' to see your quota.")
	}
	return nil
}
