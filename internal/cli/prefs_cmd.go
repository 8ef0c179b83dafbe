package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/civic/internal/cli/formatter"
	"github.com/alexanderramin/civic/internal/preference"
)

func newPrefsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "prefs",
		Aliases: []string{"preferences"},
		Short:   "Inspect learned preferences",
	}

	cmd.AddCommand(
		newPrefsShowCmd(app),
		newPrefsExportCmd(app),
		newPrefsValidateCmd(),
	)

	return cmd
}

func newPrefsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show preferred intents, topics, locations and counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireEngine(); err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatPreferences(app.Engine.Preferences(), app.now()))
			return nil
		},
	}
}

func newPrefsExportCmd(app *App) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export preferences as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireEngine(); err != nil {
				return err
			}
			data, err := app.Engine.ExportPreferenceState()
			if err != nil {
				return err
			}
			if outPath == "" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}
			if err := os.WriteFile(outPath, append(data, '\n'), 0o600); err != nil {
				return fmt.Errorf("writing %s: %w", outPath, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported preferences to %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write to file instead of stdout")

	return cmd
}

func newPrefsValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check that a preference export is well formed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			p, err := preference.ValidateExport(data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s valid export for %s (%d ratings)\n",
				formatter.StyleGreen.Render("✔"), p.UserID, len(p.Ratings))
			return nil
		},
	}
}
