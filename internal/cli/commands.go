package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-genui/pkg/model"
	"github.com/goliatone/go-genui/pkg/orchestrator"
	"github.com/goliatone/go-genui/pkg/schema"
)

// NewExtractCommand creates the extract command.
func NewExtractCommand() *cobra.Command {
	var showReport bool

	cmd := &cobra.Command{
		Use:   "extract [file|-]",
		Short: "Extract component nodes from model output",
		Long: `Scan free text for JSON component descriptors and print them as a JSON
array. Malformed fragments are skipped.`,
		Example: `  # Extract from a saved model response
  genui extract response.txt

  # Extract from stdin
  cat response.txt | genui extract -`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			app, err := newCommandApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			nodes, report := app.Orchestrator.Extract(input)
			if nodes == nil {
				nodes = []model.Node{}
			}
			if showReport {
				app.Logger.Info("genui: extraction",
					slog.Int("candidates", report.Candidates),
					slog.Int("accepted", report.Accepted),
					slog.Int("malformed", report.Malformed),
					slog.Int("dropped", report.Dropped),
					slog.Int("unbalanced", report.Unbalanced),
				)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(nodes)
		},
	}
	cmd.Flags().BoolVar(&showReport, "report", false, "Log extraction counts")
	return cmd
}

// NewRenderCommand creates the render command.
func NewRenderCommand() *cobra.Command {
	var (
		output   string
		document bool
	)

	cmd := &cobra.Command{
		Use:   "render [file|-]",
		Short: "Render model output or a node array",
		Long: `Extract component nodes from the input and render them with the selected
renderer. The input may be raw model output or a JSON array of nodes.`,
		Example: `  # Preview in the terminal
  genui render response.txt --renderer text

  # Standalone themed HTML page
  genui render nodes.json --document --theme acme --variant dark -o page.html`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			app, err := newCommandApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			nodes, _ := app.Orchestrator.Extract(input)
			rendered, err := app.Orchestrator.Render(cmd.Context(), orchestrator.RenderRequest{
				Nodes:        nodes,
				ThemeName:    app.Config.Theme,
				ThemeVariant: app.Config.Variant,
				Document:     document,
			})
			if err != nil {
				return err
			}
			if rendered.Stats.Degraded() {
				app.Logger.Warn("genui: output contains placeholders",
					slog.Int("unknown", rendered.Stats.Unknown),
					slog.Int("truncated", rendered.Stats.Truncated),
					slog.Int("malformed", rendered.Stats.Malformed),
					slog.Int("failed", rendered.Stats.Failed),
				)
			}
			return writeOutput(cmd, output, rendered.Output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")
	cmd.Flags().BoolVar(&document, "document", false, "Wrap HTML output in a standalone page")
	return cmd
}

// NewCatalogueCommand creates the catalogue command.
func NewCatalogueCommand() *cobra.Command {
	var asTable bool

	cmd := &cobra.Command{
		Use:     "catalogue",
		Aliases: []string{"catalog"},
		Short:   "Print the component catalogue",
		Long: `Print the component vocabulary, including any overlays from
--catalogue-dir, as JSON or as a table.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newCommandApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			if asTable {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), catalogueTable(app.Catalogue))
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(app.Catalogue)
		},
	}
	cmd.Flags().BoolVar(&asTable, "table", false, "Print a table instead of JSON")
	return cmd
}

func catalogueTable(catalogue *schema.Catalogue) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Type", "Category", "Props", "Children"})
	for _, name := range catalogue.Types() {
		entry, _ := catalogue.Lookup(name)
		props := make([]string, 0, len(entry.Props))
		for _, prop := range entry.PropNames() {
			if entry.Props[prop].Required {
				prop += "*"
			}
			props = append(props, prop)
		}
		t.AppendRow(table.Row{name, string(entry.Category), strings.Join(props, ", "), childPolicyText(entry.Children)})
	}
	t.SetCaption("%d component types; * marks required props", catalogue.Len())
	return t.Render()
}

func childPolicyText(policy schema.ChildPolicy) string {
	switch policy.Mode {
	case schema.PolicyNone:
		return "none"
	case schema.PolicyList:
		return strings.Join(policy.Allowed, ", ")
	default:
		return "any"
	}
}

// NewPromptCommand creates the prompt command.
func NewPromptCommand() *cobra.Command {
	var contextFile string

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the system prompt sent to the generator",
		Example: `  # Prompt with the current grid as context
  genui prompt --context grid.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newCommandApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			var current []model.Node
			if contextFile != "" {
				if current, err = readNodes(contextFile); err != nil {
					return err
				}
			}
			system, err := app.Orchestrator.Prompts().System(current)
			if err != nil {
				return err
			}
			return writeOutput(cmd, "", []byte(system))
		},
	}
	cmd.Flags().StringVar(&contextFile, "context", "", "JSON file holding the current grid")
	return cmd
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand() *cobra.Command {
	var (
		session     string
		contextFile string
		output      string
		document    bool
		showRaw     bool
	)

	cmd := &cobra.Command{
		Use:   "generate [request...]",
		Short: "Ask the generator for UI and render it",
		Long: `Send a request to the configured generator, extract the component nodes
from its answer, and render them. With --session the result is merged into
the stored grid for that session.`,
		Example: `  # One-off dashboard in the terminal
  genui generate --llm-provider gemini --renderer text "sales overview for Q3"

  # Iterate on a stored grid
  genui generate --store-driver sqlite --session demo "add a revenue chart"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			request := strings.TrimSpace(strings.Join(args, " "))
			if request == "" {
				input, err := readInput(cmd, nil)
				if err != nil {
					return err
				}
				request = strings.TrimSpace(input)
			}
			if request == "" {
				return errors.New("a request is required")
			}

			app, err := newCommandApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			req := orchestrator.Request{
				Prompt:       request,
				Session:      session,
				ThemeName:    app.Config.Theme,
				ThemeVariant: app.Config.Variant,
				Document:     document,
			}
			if contextFile != "" {
				if req.Context, err = readNodes(contextFile); err != nil {
					return err
				}
				req.MergeContext = true
			}

			result, err := app.Orchestrator.Generate(cmd.Context(), req)
			if err != nil {
				return err
			}
			if showRaw {
				fmt.Fprintln(cmd.ErrOrStderr(), result.Raw)
			}
			return writeOutput(cmd, output, result.Output)
		},
	}
	cmd.Flags().StringVar(&session, "session", "", "Session whose stored grid is extended")
	cmd.Flags().StringVar(&contextFile, "context", "", "JSON file holding the current grid")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")
	cmd.Flags().BoolVar(&document, "document", false, "Wrap HTML output in a standalone page")
	cmd.Flags().BoolVar(&showRaw, "raw", false, "Echo the generator response to stderr")
	return cmd
}

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "genui %s (%s)\n", Version, GitCommit)
			return err
		},
	}
}

func readNodes(path string) ([]model.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var nodes []model.Node
	if err := json.Unmarshal(data, &nodes); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return nodes, nil
}
