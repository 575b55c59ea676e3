package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-genui/internal/logging"
	"github.com/goliatone/go-genui/pkg/designer"
)

// NewDesignerCommand creates the designer command.
func NewDesignerCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "designer",
		Short: "Design a chat widget theme interactively",
		Long: `Walk through the chat widget appearance settings and print the result as
a theme manifest. Save it under --themes-dir to use it with --theme.`,
		Example: `  genui designer -o themes/acme.yaml
  genui render nodes.json --themes-dir themes --theme acme`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDesigner(cmd, designer.NewSurveyDriver(), output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the manifest to file instead of stdout")
	return cmd
}

func runDesigner(cmd *cobra.Command, driver designer.PromptDriver, output string) error {
	ctx := cmd.Context()
	custom, err := designer.Interactive(ctx, driver, designer.Default())
	if errors.Is(err, designer.ErrAborted) {
		return errors.New("designer aborted")
	}
	if err != nil {
		return err
	}
	manifest, err := custom.Manifest()
	if err != nil {
		return err
	}
	data, err := designer.EncodeManifest(manifest)
	if err != nil {
		return err
	}
	if err := writeOutput(cmd, output, data); err != nil {
		return err
	}
	if output != "" {
		logging.FromContext(ctx).Info("genui: theme written",
			slog.String("theme", manifest.Name),
			slog.String("path", output),
		)
		fmt.Fprintf(cmd.ErrOrStderr(), "Use it with: genui --themes-dir <dir> --theme %s\n", manifest.Name)
	}
	return nil
}
