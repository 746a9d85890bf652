package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pmerrors "github.com/Aman-CERP/pagemark/internal/errors"
	"github.com/Aman-CERP/pagemark/internal/render"
	"github.com/Aman-CERP/pagemark/pkg/version"
)

const reportJSON = `{
  "pages": [
    {"items": [{"str": "Invoice total", "hasEOL": true}, {"str": "paid in full", "hasEOL": false}]},
    {"error": "corrupt content stream"},
    {"items": [{"str": "Second invoice", "hasEOL": false}]}
  ]
}`

// isolate runs the test in an empty directory with no user config and no
// PAGEMARK_* overrides.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	for _, key := range []string{"PAGEMARK_KEYWORD", "PAGEMARK_CASE_SENSITIVE", "PAGEMARK_FORMAT",
		"PAGEMARK_SCALE", "PAGEMARK_PAGE_WORKERS", "PAGEMARK_LOG_LEVEL"} {
		t.Setenv(key, "")
	}
	t.Setenv("NO_COLOR", "1")
	return dir
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestHighlightCmd_JSONToStdout(t *testing.T) {
	// Given: a three-page document whose second page fails
	dir := isolate(t)
	doc := writeFile(t, dir, "report.json", reportJSON)

	// When: highlighting "invoice" case-insensitively as JSON
	stdout, stderr, err := execute(t, "highlight", doc, "-k", "invoice", "--ignore-case", "--format", "json")

	// Then: the run succeeds with partial results
	require.NoError(t, err)

	var report render.JSONReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, 2, report.TotalMatches)
	assert.Equal(t, 1, report.FailedPages)
	require.Len(t, report.Pages, 3)
	assert.NotEmpty(t, report.Pages[1].Error)

	assert.Contains(t, stderr, "page 2 skipped")
	assert.Contains(t, stderr, "2 matches on 3 pages")
}

func TestHighlightCmd_CaseSensitiveByDefault(t *testing.T) {
	dir := isolate(t)
	doc := writeFile(t, dir, "report.json", reportJSON)

	stdout, _, err := execute(t, "highlight", doc, "-k", "invoice", "--format", "json")
	require.NoError(t, err)

	var report render.JSONReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, 0, report.TotalMatches)
}

func TestHighlightCmd_HTMLToFile(t *testing.T) {
	dir := isolate(t)
	doc := writeFile(t, dir, "notes.txt", "alpha beta\nbeta\fgamma beta")
	out := filepath.Join(dir, "notes.html")

	stdout, stderr, err := execute(t, "highlight", doc, "-k", "beta", "-o", out, "--class", "hit")
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "3 matches on 2 pages")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	html := string(data)
	assert.Contains(t, html, `<span class="hit">beta</span>`)
	assert.Equal(t, 3, strings.Count(html, `<span class="hit">`))
}

func TestHighlightCmd_RangesOnly(t *testing.T) {
	dir := isolate(t)
	doc := writeFile(t, dir, "notes.txt", "hello world\fsecond page")
	ranges := writeFile(t, dir, "ranges.json", `[{"start_index": 6, "end_index": 11}, {"start_index": 11, "end_index": 17}]`)

	stdout, _, err := execute(t, "highlight", doc, "--ranges", ranges, "--format", "json")
	require.NoError(t, err)

	var report render.JSONReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, 0, report.TotalMatches)
	assert.Equal(t, 2, report.TotalAnnotations)
}

func TestHighlightCmd_ProjectConfigSuppliesKeyword(t *testing.T) {
	dir := isolate(t)
	doc := writeFile(t, dir, "notes.txt", "one two one")
	writeFile(t, dir, ".pagemark.yaml", "highlight:\n  keyword: one\nrender:\n  format: json\n")

	stdout, _, err := execute(t, "highlight", doc)
	require.NoError(t, err)

	var report render.JSONReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, 2, report.TotalMatches)
}

func TestHighlightCmd_Errors(t *testing.T) {
	tests := []struct {
		name string
		args func(t *testing.T, dir string) []string
		code string
	}{
		{
			name: "missing keyword and ranges",
			args: func(t *testing.T, dir string) []string {
				return []string{"highlight", writeFile(t, dir, "a.txt", "text")}
			},
			code: pmerrors.ErrCodeKeywordEmpty,
		},
		{
			name: "missing document",
			args: func(t *testing.T, dir string) []string {
				return []string{"highlight", filepath.Join(dir, "nope.json"), "-k", "x"}
			},
			code: pmerrors.ErrCodeDocumentLoad,
		},
		{
			name: "unknown input format",
			args: func(t *testing.T, dir string) []string {
				return []string{"highlight", writeFile(t, dir, "a.txt", "text"), "-k", "x", "--input-format", "pdf"}
			},
			code: pmerrors.ErrCodeUnknownFormat,
		},
		{
			name: "invalid scale",
			args: func(t *testing.T, dir string) []string {
				return []string{"highlight", writeFile(t, dir, "a.txt", "text"), "-k", "x", "--scale=-1"}
			},
			code: pmerrors.ErrCodeInvalidInput,
		},
		{
			name: "invalid range",
			args: func(t *testing.T, dir string) []string {
				r := writeFile(t, dir, "r.json", `[{"start_index": 5, "end_index": 2}]`)
				return []string{"highlight", writeFile(t, dir, "a.txt", "text"), "--ranges", r}
			},
			code: pmerrors.ErrCodeInvalidRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)

			_, _, err := execute(t, tt.args(t, dir)...)

			require.Error(t, err)
			assert.Equal(t, tt.code, pmerrors.GetCode(err))
		})
	}
}

func TestHighlightCmd_RequiresOneArg(t *testing.T) {
	isolate(t)
	_, _, err := execute(t, "highlight")
	assert.Error(t, err)
}

func TestVersionCmd_Outputs(t *testing.T) {
	isolate(t)

	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "pagemark")
	assert.Contains(t, stdout, version.Version)
	assert.Contains(t, stdout, "inputs:  auto, textcontent, text")
	assert.Contains(t, stdout, "outputs: html, text, json")
	assert.Contains(t, stdout, "project: (none)")

	stdout, _, err = execute(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, version.Version, strings.TrimSpace(stdout))
}

func TestVersionCmd_JSONIncludesFormatsAndConfig(t *testing.T) {
	// Given: a project config in the working directory
	dir := isolate(t)
	writeFile(t, dir, ".pagemark.yaml", "version: 1\n")

	// When
	stdout, _, err := execute(t, "version", "--json")
	require.NoError(t, err)

	// Then: build info and capabilities share one object
	var report struct {
		version.BuildInfo
		InputFormats  []string `json:"input_formats"`
		OutputFormats []string `json:"output_formats"`
		UserConfig    string   `json:"user_config"`
		ProjectConfig string   `json:"project_config"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, version.Version, report.Version)
	assert.NotEmpty(t, report.GoVersion)
	assert.Equal(t, []string{"auto", "textcontent", "text"}, report.InputFormats)
	assert.Equal(t, []string{"html", "text", "json"}, report.OutputFormats)
	assert.Equal(t, filepath.Join(dir, "xdg", "pagemark", "config.yaml"), report.UserConfig)
	assert.Equal(t, ".pagemark.yaml", filepath.Base(report.ProjectConfig))
}

func TestConfigCmd_InitAndShow(t *testing.T) {
	// Given: no configuration files
	dir := isolate(t)

	// When: creating the project config
	stdout, _, err := execute(t, "config", "init", "--project")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Created configuration")
	assert.FileExists(t, filepath.Join(dir, ".pagemark.yaml"))

	// Then: a second init without --force leaves it alone
	stdout, _, err = execute(t, "config", "init", "--project")
	require.NoError(t, err)
	assert.Contains(t, stdout, "already exists")

	// And: show --json reports the merged defaults
	stdout, _, err = execute(t, "config", "show", "--json")
	require.NoError(t, err)
	var cfg map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &cfg))
	assert.Contains(t, cfg, "highlight")
}

func TestConfigCmd_InitUser(t *testing.T) {
	dir := isolate(t)

	_, _, err := execute(t, "config", "init")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "xdg", "pagemark", "config.yaml"))

	stdout, _, err := execute(t, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "xdg", "pagemark", "config.yaml"), strings.TrimSpace(stdout))
}

func TestConfigCmd_ShowInvalidSource(t *testing.T) {
	isolate(t)
	_, _, err := execute(t, "config", "show", "--source", "bogus")
	assert.Error(t, err)
}

func TestWatchTargets(t *testing.T) {
	dir := isolate(t)

	targets := watchTargets("doc.json", "ranges.json")
	assert.Equal(t, []string{"doc.json", "ranges.json", filepath.Join(dir, ".pagemark.yaml")}, targets)

	writeFile(t, dir, ".pagemark.yml", "version: 1\n")
	targets = watchTargets("doc.json", "")
	assert.Equal(t, []string{"doc.json", filepath.Join(dir, ".pagemark.yml")}, targets)
}
