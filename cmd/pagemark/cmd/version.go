package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/pagemark/internal/config"
	"github.com/Aman-CERP/pagemark/internal/document"
	"github.com/Aman-CERP/pagemark/pkg/version"
)

// versionReport is the build info plus what this binary can read and write.
type versionReport struct {
	version.BuildInfo
	InputFormats  []string `json:"input_formats"`
	OutputFormats []string `json:"output_formats"`
	UserConfig    string   `json:"user_config"`
	ProjectConfig string   `json:"project_config,omitempty"`
}

func newVersionReport() versionReport {
	r := versionReport{
		BuildInfo:     version.GetInfo(),
		InputFormats:  []string{document.FormatAuto, document.FormatTextContent, document.FormatPlain},
		OutputFormats: []string{config.FormatHTML, config.FormatText, config.FormatJSON},
		UserConfig:    config.GetUserConfigPath(),
	}
	if cwd, err := os.Getwd(); err == nil {
		r.ProjectConfig = config.ProjectConfigPath(cwd)
	}
	return r
}

func newVersionCmd() *cobra.Command {
	var jsonOutput bool
	var shortOutput bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print the version, build details, supported input and output formats,
and the configuration files pagemark reads.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if shortOutput {
				_, err := fmt.Fprintln(out, version.Short())
				return err
			}

			report := newVersionReport()
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}

			project := report.ProjectConfig
			if project == "" {
				project = "(none)"
			}
			_, err := fmt.Fprintf(out, "%s\n  inputs:  %s\n  outputs: %s\n  config:  %s\n  project: %s\n",
				version.String(),
				strings.Join(report.InputFormats, ", "),
				strings.Join(report.OutputFormats, ", "),
				report.UserConfig,
				project,
			)
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version info as JSON")
	cmd.Flags().BoolVar(&shortOutput, "short", false, "Output only the version number")

	return cmd
}
