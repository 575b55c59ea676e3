// Package cli provides the genui command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-genui/internal/config"
	"github.com/goliatone/go-genui/internal/logging"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

type configKey struct{}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "genui",
		Short: "Generative UI toolkit",
		Long: `genui turns model output containing JSON component descriptors into
rendered UI.

It extracts {"type": ...} objects from free text, validates their props
against a component catalogue, and renders the tree as HTML or a terminal
outline. Unknown components render as visible placeholders.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" || cmd.Name() == "version" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			logger, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			if cfg.File != "" {
				logger.Debug("genui: using config file", slog.String("path", cfg.File))
			}

			ctx := context.WithValue(cmd.Context(), configKey{}, cfg)
			ctx = logging.WithLogger(ctx, logger)
			cmd.SetContext(ctx)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./genui.yaml)")
	flags.String("log-level", "", "Log level (debug|info|warn|error)")
	flags.String("log-format", "", "Log format (text|json)")
	flags.String("renderer", "", "Output renderer (html|text)")
	flags.String("theme", "", "Theme name")
	flags.String("variant", "", "Theme variant")
	flags.String("themes-dir", "", "Directory of theme manifests (YAML)")
	flags.String("catalogue-dir", "", "Directory of catalogue overlays (YAML/JSON)")
	flags.String("templates-dir", "", "Directory overriding the HTML component templates")
	flags.String("preset-file", "", "JSON preset applied to extracted nodes")
	flags.Int("max-depth", 0, "Maximum render nesting depth")
	flags.Bool("enforce-child-policy", false, "Render disallowed children as placeholders")
	flags.Bool("color", false, "Colorize terminal output")
	flags.String("llm-provider", "", "Generator provider (static|gemini)")
	flags.String("llm-model", "", "Generator model name")
	flags.String("store-driver", "", "Grid store driver (memory|sqlite)")
	flags.String("store-dsn", "", "Grid store database path")

	_ = rootCmd.RegisterFlagCompletionFunc("renderer", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"html", "text"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(NewExtractCommand())
	rootCmd.AddCommand(NewRenderCommand())
	rootCmd.AddCommand(NewCatalogueCommand())
	rootCmd.AddCommand(NewPromptCommand())
	rootCmd.AddCommand(NewGenerateCommand())
	rootCmd.AddCommand(NewDesignerCommand())
	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// GetConfig retrieves the config from the command context.
func GetConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	cfg, err := config.Load("", nil)
	if err != nil {
		return &config.Config{Renderer: config.DefaultRenderer, Theme: config.DefaultTheme}
	}
	return cfg
}

// newCommandApp wires the pipeline for a subcommand run.
func newCommandApp(cmd *cobra.Command) (*App, error) {
	ctx := cmd.Context()
	return NewApp(ctx, GetConfig(ctx), logging.FromContext(ctx))
}

// readInput returns the named file, or stdin for "" and "-".
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read %s: %w", args[0], err)
	}
	return string(data), nil
}

// writeOutput writes data to path, or to the command output when path is
// empty. A trailing newline is added for terminals.
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path != "" {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		return nil
	}
	out := cmd.OutOrStdout()
	if _, err := out.Write(data); err != nil {
		return err
	}
	if len(data) > 0 && !strings.HasSuffix(string(data), "\n") {
		_, err := io.WriteString(out, "\n")
		return err
	}
	return nil
}
