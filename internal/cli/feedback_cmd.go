package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/civic/internal/cli/formatter"
	"github.com/alexanderramin/civic/internal/domain"
)

func newSaveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "save <action-id>",
		Short: "Save an action for later",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireEngine(); err != nil {
				return err
			}
			app.Engine.RecordSave(cmd.Context(), args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", args[0])
			return nil
		},
	}
}

func newStartCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "start <action-id>",
		Short: "Tell the catalog you started an action",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireEngine(); err != nil {
				return err
			}
			app.Engine.StartAction(cmd.Context(), args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "Started %s\n", args[0])
			return nil
		},
	}
}

func newCompleteCmd(app *App) *cobra.Command {
	var impact int
	var feedback string

	cmd := &cobra.Command{
		Use:   "complete <action-id>",
		Short: "Mark an action as completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireEngine(); err != nil {
				return err
			}
			var reported *int
			if cmd.Flags().Changed("impact") {
				if impact < domain.MinLevel || impact > domain.MaxLevel {
					return fmt.Errorf("--impact must be between %d and %d", domain.MinLevel, domain.MaxLevel)
				}
				reported = &impact
			}
			app.Engine.RecordCompletion(cmd.Context(), args[0], reported, feedback)
			fmt.Fprintf(cmd.OutOrStdout(), "Completed %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().IntVar(&impact, "impact", 0, "Impact you observed (1-5)")
	cmd.Flags().StringVar(&feedback, "feedback", "", "Free-text feedback for the organizers")

	return cmd
}

func newRateCmd(app *App) *cobra.Command {
	var feedback string

	cmd := &cobra.Command{
		Use:   "rate <action-id> <1-5>",
		Short: "Rate an action",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireEngine(); err != nil {
				return err
			}
			rating, err := strconv.Atoi(args[1])
			if err != nil || rating < domain.MinLevel || rating > domain.MaxLevel {
				return fmt.Errorf("rating must be a number between %d and %d", domain.MinLevel, domain.MaxLevel)
			}
			app.Engine.RecordRating(cmd.Context(), args[0], rating, feedback)
			fmt.Fprintf(cmd.OutOrStdout(), "Rated %s %s\n", args[0], formatter.StyleYellow.Render(strings.Repeat("★", rating)))
			return nil
		},
	}

	cmd.Flags().StringVar(&feedback, "feedback", "", "Optional comment")

	return cmd
}

func newTimeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "time <duration>",
		Short: "Log time spent on civic actions (e.g. 45m, 1h30m)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireEngine(); err != nil {
				return err
			}
			d, err := time.ParseDuration(args[0])
			if err != nil {
				return fmt.Errorf("invalid duration %q: %w", args[0], err)
			}
			if d <= 0 {
				return fmt.Errorf("duration must be positive")
			}
			app.Engine.RecordTimeSpent(cmd.Context(), int64(d.Seconds()))
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %s\n", formatter.FormatSeconds(int64(d.Seconds())))
			return nil
		},
	}
}
