package cli

import (
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/alexanderramin/civic/internal/cli/formatter"
	"github.com/alexanderramin/civic/internal/domain"
	"github.com/alexanderramin/civic/internal/service"
)

// generateOutput is the --json shape of a recommendation.
type generateOutput struct {
	Context       domain.IntentContext `json:"context"`
	Actions       []domain.Action      `json:"actions"`
	CatalogCount  int                  `json:"catalogCount"`
	FallbackCount int                  `json:"fallbackCount"`
	PoolErrors    []string             `json:"poolErrors,omitempty"`
}

func newGenerateCmd(app *App) *cobra.Command {
	var cf contextFlags
	var ff filterFlags
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"gen"},
		Short:   "Recommend civic actions for an intent, topic and location",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireEngine(); err != nil {
				return err
			}
			state, err := ff.state()
			if err != nil {
				return err
			}
			ic, err := resolveContext(app, cf.context())
			if err != nil {
				return err
			}

			rec := generate(cmd, app, ic, !asJSON)
			actions := rec.Actions
			if !state.IsEmpty() {
				actions = app.Engine.FilterActions(state)
			}
			app.Engine.RecordView(cmd.Context(), actions)

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(generateOutput{
					Context:       rec.Context,
					Actions:       actions,
					CatalogCount:  rec.CatalogCount,
					FallbackCount: rec.FallbackCount,
					PoolErrors:    rec.PoolErrors,
				})
			}
			_, err = out.Write([]byte(formatter.FormatActions(actions, summaryOf(rec))))
			return err
		},
	}

	bindContextFlags(cmd.Flags(), &cf)
	bindFilterFlags(cmd.Flags(), &ff)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")

	return cmd
}

// generate runs one recommendation, showing a spinner on interactive sessions.
func generate(cmd *cobra.Command, app *App, ic domain.IntentContext, spin bool) *service.Recommendation {
	if spin && app.interactive() {
		stop := formatter.StartSpinner(cmd.ErrOrStderr(), "Finding actions...")
		defer stop()
	}
	return app.Engine.GenerateActions(cmd.Context(), ic)
}

func summaryOf(rec *service.Recommendation) formatter.ActionsSummary {
	return formatter.ActionsSummary{
		Context:       rec.Context,
		CatalogCount:  rec.CatalogCount,
		FallbackCount: rec.FallbackCount,
		PoolErrors:    rec.PoolErrors,
	}
}
