package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/iudanet/cashbook/internal/client/notify"
	"github.com/iudanet/cashbook/internal/client/sync"
	"github.com/iudanet/cashbook/internal/models"
)

type statusView struct {
	LastSync time.Time
	Status   models.SyncStatus
	Pending  int
	Online   bool
}

func newStatusCommand(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show synchronization status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.withApp(cmd, runStatus)
		},
	}
}

func runStatus(ctx context.Context, app *App) error {
	pending, err := app.engine.Pending(ctx)
	if err != nil {
		return err
	}

	view := statusView{
		Status:   app.engine.Status(),
		Online:   app.monitor.Online(),
		Pending:  pending,
		LastSync: app.engine.LastSync(),
	}
	if err := render(app.io, "status", statusTemplate, view); err != nil {
		return err
	}

	// Открытый конфликт показываем так же, как при его обнаружении
	if conflict := app.engine.Conflict(); conflict != nil {
		app.io.Println()
		app.io.Printf("%s", notify.Render(models.StatusConflict, sync.Detail{Conflict: conflict}))
	}
	return nil
}
