// Package cmd provides the CLI commands for pagemark.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	pmerrors "github.com/Aman-CERP/pagemark/internal/errors"
	"github.com/Aman-CERP/pagemark/internal/logging"
	"github.com/Aman-CERP/pagemark/pkg/version"
)

// Debug logging flag
var (
	debugMode      bool
	loggingCleanup func()
)

// NewRootCmd creates the root command for the pagemark CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pagemark",
		Short: "Highlight keywords in the text layer of paginated documents",
		Long: `pagemark rebuilds the selectable text layer of each page of a document
and marks every occurrence of a keyword, plus any annotation ranges you
supply, without disturbing the positioned text fragments.

Documents are read as text-content JSON (one item list per page) or as
plain text with form feeds between pages.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("pagemark version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.pagemark/logs/")

	cmd.PersistentPreRunE = startLogging
	cmd.PersistentPostRunE = stopLogging

	cmd.AddCommand(newHighlightCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// startLogging installs the process logger. With --debug, JSON logs go to a
// rotating file as well as stderr; otherwise warnings go to stderr until a
// command applies the configured level.
func startLogging(cmd *cobra.Command, _ []string) error {
	if debugMode {
		logger, cleanup, err := logging.Setup(logging.DebugConfig())
		if err != nil {
			return fmt.Errorf("failed to setup debug logging: %w", err)
		}
		loggingCleanup = cleanup
		slog.SetDefault(logger)
		slog.Debug("Debug logging enabled",
			slog.String("log_file", logging.DefaultLogPath()),
			slog.String("version", version.Version))
		return nil
	}

	slog.SetDefault(logging.NewStderrLogger("warn", cmd.ErrOrStderr()))
	return nil
}

func stopLogging(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		slog.Debug("Debug logging stopped")
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// Execute runs the root command and prints failures with their error code.
func Execute() error {
	root := NewRootCmd()
	err := root.Execute()
	if err != nil {
		fmt.Fprint(root.ErrOrStderr(), pmerrors.FormatForCLI(err))
	}
	return err
}
