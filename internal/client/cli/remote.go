package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/iudanet/cashbook/internal/client/notify"
	"github.com/iudanet/cashbook/internal/models"
)

// newRemoteCommand работает с авторитетным хранилищем напрямую,
// как это делал бы другой клиент
func newRemoteCommand(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Inspect or edit the authoritative store as another client would",
	}

	var amount, dueDate, description string
	editCmd := &cobra.Command{
		Use:   "edit-entry <id>",
		Short: "Change an entry on the server without going through the queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.withApp(cmd, func(ctx context.Context, app *App) error {
				snapshot, err := app.remote.FetchSnapshot(ctx, models.EntityEntry, args[0])
				if err != nil {
					return err
				}
				entry, err := snapshot.Entry()
				if err != nil {
					return err
				}

				changed := cmd.Flags().Changed
				if changed("amount") {
					if entry.Amount, err = ParseMoney(amount); err != nil {
						return err
					}
				}
				if changed("due-date") {
					entry.DueDate = dueDate
				}
				if changed("description") {
					entry.Description = description
				}

				updated, err := models.EntrySnapshot(entry)
				if err != nil {
					return err
				}
				if err := app.remote.PutSnapshot(ctx, &updated); err != nil {
					return err
				}
				app.io.Printf("remote: %s\n", notify.Describe(&updated))
				return nil
			})
		},
	}
	editCmd.Flags().StringVar(&amount, "amount", "", "new amount")
	editCmd.Flags().StringVar(&dueDate, "due-date", "", "new due date (YYYY-MM-DD)")
	editCmd.Flags().StringVar(&description, "description", "", "new description")

	cmd.AddCommand(
		editCmd,
		&cobra.Command{
			Use:   "delete <kind> <id>",
			Short: "Delete a record on the server without going through the queue",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				kind := models.EntityKind(args[0])
				return st.withApp(cmd, func(ctx context.Context, app *App) error {
					if err := app.remote.DeleteSnapshot(ctx, kind, args[1]); err != nil {
						return err
					}
					app.io.Printf("remote: %s deleted\n", models.EntityKey(kind, args[1]))
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "list <kind>",
			Short: "List records stored on the server",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				kind := models.EntityKind(args[0])
				return st.withApp(cmd, func(ctx context.Context, app *App) error {
					snapshots, err := app.remote.ListSnapshots(ctx, kind)
					if err != nil {
						return err
					}
					return render(app.io, "snapshots", snapshotsListTemplate, snapshots)
				})
			},
		},
	)
	return cmd
}
