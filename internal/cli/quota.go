package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hongyanca/coding-plan-quota-query/internal/config"
	"github.com/hongyanca/coding-plan-quota-query/internal/display"
	"github.com/hongyanca/coding-plan-quota-query/internal/logging"
	"github.com/hongyanca/coding-plan-quota-query/internal/models"
	"github.com/hongyanca/coding-plan-quota-query/internal/quota"
	"github.com/hongyanca/coding-plan-quota-query/internal/server"
)

// newService builds the quota service for one command. plain turns off
// ANSI colors in the status line. Tests replace it with a fake.
var newService = func(cfg config.Config, plain bool) server.QuotaService {
	var opts []quota.Option
	if plain {
		opts = append(opts, quota.WithNoColor())
	}
	return quota.New(cfg, opts...)
}

var now = time.Now

// view is one listing of model entries.
type view struct {
	title string
	fetch func(ctx context.Context, svc server.QuotaService) (models.QuotaView, error)
}

func allView() view {
	return view{
		title: "Cloud Code quota",
		fetch: func(ctx context.Context, svc server.QuotaService) (models.QuotaView, error) {
			return svc.AllQuota(ctx)
		},
	}
}

func familyView(f models.Family) view {
	return view{
		title: familyTitles[f],
		fetch: func(ctx context.Context, svc server.QuotaService) (models.QuotaView, error) {
			return svc.FamilyQuota(ctx, f)
		},
	}
}

func glmView() view {
	return view{
		title: "GLM coding plan quota",
		fetch: func(ctx context.Context, svc server.QuotaService) (models.QuotaView, error) {
			return svc.GlmQuota(ctx)
		},
	}
}

var familyTitles = map[models.Family]string{
	models.FamilyPro:    "Gemini 3 Pro quota",
	models.FamilyFlash:  "Gemini 3 Flash quota",
	models.FamilyClaude: "Claude quota",
}

func quotaCommands() []*cobra.Command {
	cmds := []*cobra.Command{
		{
			Use:   "all",
			Short: "Show every Gemini and Claude model",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runView(cmd.Context(), allView())
			},
		},
		glmCmd,
		overviewCmd,
		statusCmd,
	}
	for _, f := range models.Families() {
		cmds = append(cmds, makeFamilyCmd(f))
	}
	return cmds
}

func makeFamilyCmd(f models.Family) *cobra.Command {
	return &cobra.Command{
		Use:   string(f),
		Short: "Show " + familyTitles[f],
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(cmd.Context(), familyView(f))
		},
	}
}

var glmCmd = &cobra.Command{
	Use:   "glm",
	Short: "Show GLM coding plan quota from Z.ai / ZHIPU",
	Long:  "Shows the GLM coding plan quota. With --usage, prints the raw model-usage or tool-usage report for the last 24 hours instead.",
	RunE: func(cmd *cobra.Command, args []string) error {
		usage, _ := cmd.Flags().GetString("usage")
		if usage == "" {
			return runView(cmd.Context(), glmView())
		}
		kind, err := quota.ParseUsageKind(usage)
		if err != nil {
			return err
		}
		return runUsage(cmd.Context(), kind)
	},
}

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "One-line summary such as 'Pro 95% | Flash 90% | Claude 80%'",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLine(cmd.Context(), true, func(ctx context.Context, svc server.QuotaService) (string, error) {
			return svc.Overview(ctx)
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Status line with nerdfont icons for shell prompts and tmux",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Prompts capture stdout, so color follows --no-color only.
		return runLine(cmd.Context(), false, func(ctx context.Context, svc server.QuotaService) (string, error) {
			return svc.StatusLine(ctx)
		})
	},
}

func init() {
	glmCmd.Flags().String("usage", "", "Print a usage report instead: model or tool")
}

func runView(ctx context.Context, v view) error {
	cfg := config.Get()
	svc := newService(cfg, noColor || !isTerminal())

	var result models.QuotaView
	err := withSpinner("Fetching "+v.title, true, func() error {
		var err error
		result, err = v.fetch(ctx, svc)
		return err
	})
	if err != nil {
		return err
	}
	logging.FromContext(ctx).Debug("fetch complete", "view", v.title, "models", len(result.Models))

	return renderView(cfg, result, v.title)
}

func renderView(cfg config.Config, v models.QuotaView, title string) error {
	if structuredOutput() {
		return outputStructured(v)
	}
	if quiet {
		for _, m := range v.Models {
			out("%s: %d%%\n", m.Name, m.Percentage)
		}
		return nil
	}
	if len(v.Models) == 0 {
		outln("No quota data available")
		return nil
	}

	p := display.NewPalette(quota.Thresholds(cfg), noColor || !isTerminal())
	outln(p.RenderTable(v.Models, now(), display.TableOptions{
		Title: title,
		Width: display.TerminalWidth(),
	}))
	return nil
}

func runLine(ctx context.Context, spin bool, fetch func(context.Context, server.QuotaService) (string, error)) error {
	svc := newService(config.Get(), noColor)

	var line string
	err := withSpinner("Fetching quota", spin, func() error {
		var err error
		line, err = fetch(ctx, svc)
		return err
	})
	if err != nil {
		return err
	}

	if structuredOutput() {
		return outputStructured(map[string]string{"overview": line})
	}
	outln(line)
	return nil
}

func runUsage(ctx context.Context, kind quota.UsageKind) error {
	svc := newService(config.Get(), true)

	var raw json.RawMessage
	err := withSpinner("Fetching GLM "+string(kind), true, func() error {
		var err error
		raw, err = svc.GlmUsage(ctx, kind)
		return err
	})
	if err != nil {
		return err
	}

	if yamlOutput {
		var data any
		if err := json.Unmarshal(raw, &data); err != nil {
			return fmt.Errorf("decoding %s report: %w", kind, err)
		}
		return display.OutputYAML(outWriter, data)
	}
	return display.OutputJSON(outWriter, raw)
}

// withSpinner runs fetch behind a spinner on stderr when output is an
// interactive terminal.
func withSpinner(label string, spin bool, fetch func() error) error {
	if spin && display.SpinnerShouldShow(quiet, structuredOutput(), !isTerminal()) {
		return display.SpinnerRun(os.Stderr, label, fetch)
	}
	return fetch()
}
