package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newBrowseCmd(app *App) *cobra.Command {
	var cf contextFlags
	var ff filterFlags

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Generate actions and browse them with live search",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireEngine(); err != nil {
				return err
			}
			if !app.interactive() {
				return fmt.Errorf("browse needs an interactive terminal; use generate instead")
			}
			state, err := ff.state()
			if err != nil {
				return err
			}
			ic, err := resolveContext(app, cf.context())
			if err != nil {
				return err
			}

			rec := generate(cmd, app, ic, true)
			app.Engine.RecordView(cmd.Context(), rec.Actions)

			m := newBrowseModel(cmd.Context(), app.Engine, state, app.now)
			_, err = tea.NewProgram(m, tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	bindContextFlags(cmd.Flags(), &cf)
	bindFilterFlags(cmd.Flags(), &ff)

	return cmd
}
