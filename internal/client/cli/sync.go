package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iudanet/cashbook/internal/client/notify"
	"github.com/iudanet/cashbook/internal/client/sync"
	"github.com/iudanet/cashbook/internal/models"
)

// ErrOffline is returned by a manual sync while offline mode is forced
var ErrOffline = errors.New("offline mode is on")

func newSyncCommand(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Replay queued changes against the authoritative store",
		Long: `Replay queued changes in order. If a queued change targets a record that
was changed on the server, synchronization stops and the conflict is shown.
On a terminal you are asked which version to keep; otherwise run
'cashbook resolve local|remote'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.withApp(cmd, runSync)
		},
	}
}

func newResolveCommand(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve [local|remote]",
		Short: "Resolve the open conflict and resume synchronization",
		Long: `Resolve the open sync conflict.

  local   keep your version; it is re-submitted over the server version
  remote  keep the server version; your queued change is discarded`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(sync.ChoiceLocal), string(sync.ChoiceRemote)},
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.withApp(cmd, func(ctx context.Context, app *App) error {
				return runResolve(ctx, app, args)
			})
		},
	}
}

func runSync(ctx context.Context, app *App) error {
	if !app.monitor.Online() {
		return fmt.Errorf("%w: remove %s to synchronize", ErrOffline, app.cfg.OfflineMarker)
	}

	// Незакрытый конфликт сначала предлагаем разрешить
	if conflict := app.engine.Conflict(); conflict != nil {
		app.io.Printf("%s", notify.Render(models.StatusConflict, sync.Detail{Conflict: conflict}))
		return app.settle(ctx, sync.ErrConflict)
	}

	_, err := app.engine.Sync(ctx)
	return app.settle(ctx, err)
}

func runResolve(ctx context.Context, app *App, args []string) error {
	if app.engine.Conflict() == nil {
		return sync.ErrNoConflict
	}

	if len(args) == 0 {
		if !app.io.IsInteractive() {
			return fmt.Errorf("%w: specify local or remote", sync.ErrInvalidChoice)
		}
		app.io.Printf("%s", notify.Render(models.StatusConflict, sync.Detail{Conflict: app.engine.Conflict()}))
		return app.settle(ctx, sync.ErrConflict)
	}

	choice, err := sync.ParseChoice(args[0])
	if err != nil {
		return err
	}
	_, err = app.resolver.Resolve(ctx, choice)
	return app.settle(ctx, err)
}

// settle спрашивает пользователя, пока проход останавливается на конфликтах.
// Без терминала конфликт остаётся открытым и возвращается как ошибка.
func (a *App) settle(ctx context.Context, err error) error {
	for errors.Is(err, sync.ErrConflict) {
		if !a.io.IsInteractive() {
			return err
		}

		choice, perr := promptChoice(a)
		if perr != nil {
			return perr
		}
		if choice == "" {
			a.io.Println("Conflict left open; synchronization is paused.")
			return nil
		}
		_, err = a.resolver.Resolve(ctx, choice)
	}
	return err
}

// promptChoice возвращает пустой выбор, если пользователь отложил решение
func promptChoice(a *App) (sync.Choice, error) {
	for {
		answer, err := a.io.ReadInput("Keep which version? [local/remote/skip]: ")
		if err != nil {
			return "", err
		}
		if answer == "" || answer == "skip" {
			return "", nil
		}
		choice, err := sync.ParseChoice(answer)
		if err == nil {
			return choice, nil
		}
		a.io.Println("Please answer local, remote or skip.")
	}
}
