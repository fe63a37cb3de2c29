package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/hongyanca/coding-plan-quota-query/internal/config"
	"github.com/hongyanca/coding-plan-quota-query/internal/models"
	"github.com/hongyanca/coding-plan-quota-query/internal/quota"
	"github.com/hongyanca/coding-plan-quota-query/internal/server"
	"github.com/hongyanca/coding-plan-quota-query/internal/testenv"
)

// captureOutput redirects command output into a buffer for the test.
func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	outWriter = &buf
	t.Cleanup(func() { outWriter = os.Stdout })
	return &buf
}

// resetFlags restores the persistent flag globals after the test.
func resetFlags(t *testing.T) {
	t.Helper()
	j, y, nc, v, q := jsonOutput, yamlOutput, noColor, verbose, quiet
	t.Cleanup(func() {
		jsonOutput, yamlOutput, noColor, verbose, quiet = j, y, nc, v, q
	})
}

// isolateConfig points the config dir at a temp dir and installs cfg.
func isolateConfig(t *testing.T, cfg config.Config) string {
	t.Helper()
	dir := testenv.Apply(t.Setenv, t.TempDir())
	config.Override(t, cfg)
	return dir
}

type fakeService struct {
	view     models.QuotaView
	line     string
	raw      json.RawMessage
	err      error
	families []models.Family
	kinds    []quota.UsageKind
	calls    []string
}

func (f *fakeService) AllQuota(ctx context.Context) (models.QuotaView, error) {
	f.calls = append(f.calls, "all")
	return f.view, f.err
}

func (f *fakeService) FamilyQuota(ctx context.Context, fam models.Family) (models.QuotaView, error) {
	f.calls = append(f.calls, "family")
	f.families = append(f.families, fam)
	return f.view, f.err
}

func (f *fakeService) Overview(ctx context.Context) (string, error) {
	f.calls = append(f.calls, "overview")
	return f.line, f.err
}

func (f *fakeService) StatusLine(ctx context.Context) (string, error) {
	f.calls = append(f.calls, "status")
	return f.line, f.err
}

func (f *fakeService) GlmQuota(ctx context.Context) (models.QuotaView, error) {
	f.calls = append(f.calls, "glm")
	return f.view, f.err
}

func (f *fakeService) GlmUsage(ctx context.Context, kind quota.UsageKind) (json.RawMessage, error) {
	f.calls = append(f.calls, "glm-usage")
	f.kinds = append(f.kinds, kind)
	return f.raw, f.err
}

// useFakeService installs svc as the command service and records the plain
// argument of every construction.
func useFakeService(t *testing.T, svc *fakeService) *[]bool {
	t.Helper()
	var plains []bool
	prev := newService
	newService = func(cfg config.Config, plain bool) server.QuotaService {
		plains = append(plains, plain)
		return svc
	}
	t.Cleanup(func() { newService = prev })
	return &plains
}

// chdir changes the working directory for the duration of the test,
// mirroring testing.T.Chdir (Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PWD", dir)
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			panic("chdir: restoring working directory: " + err.Error())
		}
	})
}
