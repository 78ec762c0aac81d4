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

type entryFlags struct {
	id          string
	description string
	amount      string
	paid        string
	dueDate     string
	supplier    string
	category    string
	documentNo  string
	paymentType string
}

func newEntryCommand(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entry",
		Short: "Manage payable entries",
	}

	var f entryFlags
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Create an entry or update the given fields of an existing one",
		Example: `  cashbook entry set --description Rent --amount 1200 --due-date 2026-11-05
  cashbook entry set --id L1 --amount 1250.50`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.withApp(cmd, func(ctx context.Context, app *App) error {
				return runEntrySet(ctx, app, cmd, &f)
			})
		},
	}
	fl := setCmd.Flags()
	fl.StringVar(&f.id, "id", "", "entry ID (a new ID is generated when empty)")
	fl.StringVar(&f.description, "description", "", "description")
	fl.StringVar(&f.amount, "amount", "", "amount due, e.g. 120.50")
	fl.StringVar(&f.paid, "paid", "", "amount paid")
	fl.StringVar(&f.dueDate, "due-date", "", "due date (YYYY-MM-DD)")
	fl.StringVar(&f.supplier, "supplier", "", "supplier")
	fl.StringVar(&f.category, "category", "", "category")
	fl.StringVar(&f.documentNo, "document", "", "document number")
	fl.StringVar(&f.paymentType, "payment-type", "", "payment method")

	var payAmount string
	payCmd := &cobra.Command{
		Use:   "pay <id>",
		Short: "Record a payment of an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := ParseMoney(payAmount)
			if err != nil {
				return err
			}
			return st.withApp(cmd, func(ctx context.Context, app *App) error {
				entry, err := app.data.PayEntry(ctx, args[0], amount, time.Now())
				if err != nil {
					return err
				}
				app.io.Printf("Entry %s paid: %s\n", entry.ID, notify.FormatMoney(entry.PaidAmount))
				return reportPending(ctx, app)
			})
		},
	}
	payCmd.Flags().StringVar(&payAmount, "amount", "", "amount paid")
	_ = payCmd.MarkFlagRequired("amount")

	cmd.AddCommand(
		setCmd,
		payCmd,
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete an entry",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return st.withApp(cmd, func(ctx context.Context, app *App) error {
					if err := app.data.DeleteEntry(ctx, args[0]); err != nil {
						return err
					}
					app.io.Printf("Entry %s deleted\n", args[0])
					return reportPending(ctx, app)
				})
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List local entries",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return st.withApp(cmd, func(ctx context.Context, app *App) error {
					entries, err := app.data.ListEntries(ctx)
					if err != nil {
						return err
					}
					return render(app.io, "entries", entriesListTemplate, entries)
				})
			},
		},
	)
	return cmd
}

func runEntrySet(ctx context.Context, app *App, cmd *cobra.Command, f *entryFlags) error {
	entry := &models.Entry{ID: f.id}
	if f.id != "" {
		existing, err := app.data.GetEntry(ctx, f.id)
		switch {
		case err == nil:
			entry = existing
		case !errors.Is(err, storage.ErrEntityNotFound):
			return err
		}
	}

	changed := cmd.Flags().Changed
	if changed("description") {
		entry.Description = f.description
	}
	if changed("due-date") {
		entry.DueDate = f.dueDate
	}
	if changed("supplier") {
		entry.Supplier = f.supplier
	}
	if changed("category") {
		entry.Category = f.category
	}
	if changed("document") {
		entry.DocumentNo = f.documentNo
	}
	if changed("payment-type") {
		entry.PaymentType = f.paymentType
	}
	if changed("amount") {
		amount, err := ParseMoney(f.amount)
		if err != nil {
			return err
		}
		entry.Amount = amount
	}
	if changed("paid") {
		paid, err := ParseMoney(f.paid)
		if err != nil {
			return err
		}
		entry.PaidAmount = paid
	}

	if err := app.data.SaveEntry(ctx, entry); err != nil {
		return err
	}
	app.io.Printf("Entry %s saved\n", entry.ID)
	return reportPending(ctx, app)
}

// reportPending печатает размер очереди после локального изменения
func reportPending(ctx context.Context, app *App) error {
	pending, err := app.engine.Pending(ctx)
	if err != nil {
		return err
	}
	if !app.monitor.Online() {
		app.io.Printf("Offline: %d change(s) will sync when connectivity returns\n", pending)
		return nil
	}
	app.io.Printf("%d change(s) pending, run 'cashbook sync' to synchronize\n", pending)
	return nil
}
