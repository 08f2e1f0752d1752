package cli

import (
	"github.com/spf13/cobra"

	"github.com/lherron/habitus/internal/cli/appctx"
	"github.com/lherron/habitus/internal/render"
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// exitError returns an error that will cause the CLI to exit with the given code
func exitError(code int, err error) error {
	return &ExitError{Code: code, Err: err}
}

// addOutputFlags registers --json, --yaml and --porcelain on cmd.
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("json", false, "Output as JSON")
	cmd.Flags().Bool("yaml", false, "Output as YAML")
	cmd.Flags().Bool("porcelain", false, "Machine-readable output (tab-separated tables, compact JSON)")
}

// renderer picks the output format from --json/--yaml, falling back to the
// configured default.
func renderer(app *appctx.App, cmd *cobra.Command) (*render.Renderer, error) {
	format, err := render.ParseFormat(app.Config.Output)
	if err != nil {
		return nil, exitError(2, err)
	}
	if on, _ := cmd.Flags().GetBool("yaml"); on {
		format = render.FormatYAML
	}
	if on, _ := cmd.Flags().GetBool("json"); on {
		format = render.FormatJSON
	}
	porcelain, _ := cmd.Flags().GetBool("porcelain")
	return render.NewRenderer(cmd.OutOrStdout(), render.Options{Format: format, Porcelain: porcelain}), nil
}
