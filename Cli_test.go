package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/reaandrew/lintdetector/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReports(t *testing.T) {
	tests := []struct {
		name    string
		values  []string
		want    map[string]string
		wantErr bool
	}{
		{"none", nil, nil, false},
		{"file", []string{"sarif:out/report.sarif"}, map[string]string{"sarif": "out/report.sarif"}, false},
		{"url keeps colons", []string{"md:https://reports.example.com"}, map[string]string{"md": "https://reports.example.com"}, false},
		{"missing destination", []string{"sarif:"}, nil, true},
		{"missing separator", []string{"sarif"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseReports(tt.values)
			if tt.wantErr {
				assert.Equal(t, core.ExitInvalidConfig, core.ExitCodeFor(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cli := &Cli{out: out, args: args}
	err := cli.Execute(context.Background())
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")

	require.NoError(t, err)
	assert.Equal(t, core.ToolName+" "+core.Version+"\n", out)
}

func TestValidateConfigCommand(t *testing.T) {
	dir := t.TempDir()
	valid := filepath.Join(dir, "valid.yml")
	require.NoError(t, os.WriteFile(valid, []byte("build:\n  maxIssues: 3\n"), 0o644))
	invalid := filepath.Join(dir, "invalid.yml")
	require.NoError(t, os.WriteFile(invalid, []byte("styel:\n  active: true\n"), 0o644))

	out, err := execute(t, "validate-config", "--config", valid)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid.")

	_, err = execute(t, "validate-config", "--config", invalid)
	assert.Equal(t, core.ExitInvalidConfig, core.ExitCodeFor(err))
}

func TestRulesCommand(t *testing.T) {
	out, err := execute(t, "rules")

	require.NoError(t, err)
	assert.Contains(t, out, "ForbiddenComment")
	assert.Contains(t, strings.ToUpper(out), "TOTAL")
}

func TestAnalyzeCommandExitCodes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package a\n\n// TODO: one\nfunc A() {}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.go"), []byte("package a\n\n// TODO: two\nfunc B() {}\n"), 0o644))

	_, err := execute(t, "analyze", dir, "--base-path", dir, "--run-rule", "style:ForbiddenComment", "--max-issues", "1")
	assert.Equal(t, core.ExitPolicyViolation, core.ExitCodeFor(err))

	_, err = execute(t, "analyze", dir, "--base-path", dir, "--run-rule", "style:ForbiddenComment", "--max-issues", "2")
	assert.NoError(t, err)

	_, err = execute(t, "analyze", dir, "--run-rule", "style")
	assert.Equal(t, core.ExitInvalidConfig, core.ExitCodeFor(err))

	_, err = execute(t, "create-baseline", dir, "--run-rule", "style:ForbiddenComment")
	assert.Equal(t, core.ExitInvalidConfig, core.ExitCodeFor(err))

	baselinePath := filepath.Join(t.TempDir(), "baseline.xml")
	_, err = execute(t, "create-baseline", dir, "--base-path", dir, "--run-rule", "style:ForbiddenComment", "--max-issues", "0", "--baseline", baselinePath)
	require.NoError(t, err)
	assert.FileExists(t, baselinePath)
}
