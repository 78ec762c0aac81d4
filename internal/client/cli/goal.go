package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/iudanet/cashbook/internal/client/notify"
	"github.com/iudanet/cashbook/internal/client/storage"
	"github.com/iudanet/cashbook/internal/models"
)

func newGoalCommand(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goal",
		Short: "Manage financial goals",
	}

	var id, name, target, targetDate string
	setCmd := &cobra.Command{
		Use:     "set",
		Short:   "Create a goal or update an existing one",
		Example: `  cashbook goal set --name "Emergency fund" --target 5000 --target-date 2027-06-30`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.withApp(cmd, func(ctx context.Context, app *App) error {
				goal := &models.Goal{ID: id}
				if id != "" {
					existing, err := app.data.GetGoal(ctx, id)
					switch {
					case err == nil:
						goal = existing
					case !errors.Is(err, storage.ErrEntityNotFound):
						return err
					}
				}

				changed := cmd.Flags().Changed
				if changed("name") {
					goal.Name = name
				}
				if changed("target-date") {
					goal.TargetDate = targetDate
				}
				if changed("target") {
					amount, err := ParseMoney(target)
					if err != nil {
						return err
					}
					goal.TargetAmount = amount
				}

				if err := app.data.SaveGoal(ctx, goal); err != nil {
					return err
				}
				app.io.Printf("Goal %s saved\n", goal.ID)
				return reportPending(ctx, app)
			})
		},
	}
	setCmd.Flags().StringVar(&id, "id", "", "goal ID (a new ID is generated when empty)")
	setCmd.Flags().StringVar(&name, "name", "", "goal name")
	setCmd.Flags().StringVar(&target, "target", "", "target amount")
	setCmd.Flags().StringVar(&targetDate, "target-date", "", "target date (YYYY-MM-DD)")

	var amount, date string
	contributeCmd := &cobra.Command{
		Use:   "contribute <id>",
		Short: "Add a contribution to a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cents, err := ParseMoney(amount)
			if err != nil {
				return err
			}
			if date == "" {
				date = time.Now().Format(time.DateOnly)
			}
			return st.withApp(cmd, func(ctx context.Context, app *App) error {
				goal, err := app.data.AddContribution(ctx, args[0], cents, date)
				if err != nil {
					return err
				}
				app.io.Printf("Goal %s: contributed %s\n", goal.ID, notify.FormatMoney(cents))
				return reportPending(ctx, app)
			})
		},
	}
	contributeCmd.Flags().StringVar(&amount, "amount", "", "contribution amount")
	contributeCmd.Flags().StringVar(&date, "date", "", "contribution date (default: today)")
	_ = contributeCmd.MarkFlagRequired("amount")

	cmd.AddCommand(
		setCmd,
		contributeCmd,
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a goal",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return st.withApp(cmd, func(ctx context.Context, app *App) error {
					if err := app.data.DeleteGoal(ctx, args[0]); err != nil {
						return err
					}
					app.io.Printf("Goal %s deleted\n", args[0])
					return reportPending(ctx, app)
				})
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List local goals",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return st.withApp(cmd, func(ctx context.Context, app *App) error {
					goals, err := app.data.ListGoals(ctx)
					if err != nil {
						return err
					}
					return render(app.io, "goals", goalsListTemplate, goals)
				})
			},
		},
	)
	return cmd
}
