package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iudanet/cashbook/internal/models"
)

// parseNamedKind принимает только справочные типы
func parseNamedKind(s string) (models.EntityKind, error) {
	kind := models.EntityKind(s)
	switch kind {
	case models.EntityCategory, models.EntitySupplier, models.EntityPaymentMethod:
		return kind, nil
	}
	return "", fmt.Errorf("unknown reference kind %q (want category, supplier or payment-method)", s)
}

func newRefCommand(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ref",
		Short: "Manage categories, suppliers and payment methods",
	}

	var id string
	setCmd := &cobra.Command{
		Use:     "set <kind> <name>",
		Short:   "Create or rename a reference record",
		Example: `  cashbook ref set supplier "ACME Ltd"`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseNamedKind(args[0])
			if err != nil {
				return err
			}
			return st.withApp(cmd, func(ctx context.Context, app *App) error {
				named := &models.Named{ID: id, Name: args[1]}
				if err := app.data.SaveNamed(ctx, kind, named); err != nil {
					return err
				}
				app.io.Printf("%s %s saved\n", kind, named.ID)
				return reportPending(ctx, app)
			})
		},
	}
	setCmd.Flags().StringVar(&id, "id", "", "record ID (a new ID is generated when empty)")

	cmd.AddCommand(
		setCmd,
		&cobra.Command{
			Use:   "delete <kind> <id>",
			Short: "Delete a reference record",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				kind, err := parseNamedKind(args[0])
				if err != nil {
					return err
				}
				return st.withApp(cmd, func(ctx context.Context, app *App) error {
					if err := app.data.DeleteNamed(ctx, kind, args[1]); err != nil {
						return err
					}
					app.io.Printf("%s %s deleted\n", kind, args[1])
					return reportPending(ctx, app)
				})
			},
		},
		&cobra.Command{
			Use:   "list <kind>",
			Short: "List reference records of a kind",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				kind, err := parseNamedKind(args[0])
				if err != nil {
					return err
				}
				return st.withApp(cmd, func(ctx context.Context, app *App) error {
					named, err := app.data.ListNamed(ctx, kind)
					if err != nil {
						return err
					}
					return render(app.io, "named", namedListTemplate, named)
				})
			},
		},
	)
	return cmd
}
