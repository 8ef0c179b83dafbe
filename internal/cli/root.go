package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the top-level "civic" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "civic",
		Short:         "Civic action recommender",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.persist(cmd.Context())
		},
	}

	// Read by main before the App is wired; declared here so cobra accepts it.
	root.PersistentFlags().String("config", "", "Config file (default $CIVIC_CONFIG or ./civic.yaml)")

	root.AddCommand(
		newGenerateCmd(app),
		newBrowseCmd(app),
		newSaveCmd(app),
		newStartCmd(app),
		newCompleteCmd(app),
		newRateCmd(app),
		newTimeCmd(app),
		newPrefsCmd(app),
		newSeedCmd(app),
		newServeCmd(app),
	)

	return root
}
