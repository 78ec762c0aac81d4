package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newQueueCommand(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect, prune or clear the offline queue",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List queued changes in replay order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.withApp(cmd, func(ctx context.Context, app *App) error {
				actions, err := app.engine.Actions(ctx)
				if err != nil {
					return err
				}
				return render(app.io, "queue", queueListTemplate, actions)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <position|id>",
		Short: "Drop one queued change, e.g. one the authoritative store rejected",
		Long: "Drop one queued change by its position in 'queue list' or by its id.\n" +
			"If no other queued change touches the same entity, the local copy is reverted.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.withApp(cmd, func(ctx context.Context, app *App) error {
				return runQueueRemove(ctx, app, args[0])
			})
		},
	})

	var yes bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Drop every queued change (abandons an open conflict)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.withApp(cmd, func(ctx context.Context, app *App) error {
				return runQueueClear(ctx, app, yes)
			})
		},
	}
	clearCmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	cmd.AddCommand(clearCmd)

	return cmd
}

func runQueueClear(ctx context.Context, app *App, yes bool) error {
	pending, err := app.engine.Pending(ctx)
	if err != nil {
		return err
	}
	if pending == 0 && app.engine.Conflict() == nil {
		app.io.Println("Offline queue is empty.")
		return nil
	}

	if !yes {
		ok, err := confirm(app.io, fmt.Sprintf("Discard %d unsynchronized change(s)?", pending))
		if errors.Is(err, ErrNotInteractive) {
			return errors.New("refusing to clear the queue without --yes")
		}
		if err != nil {
			return err
		}
		if !ok {
			app.io.Println("Aborted.")
			return nil
		}
	}

	if err := app.engine.ClearQueue(ctx); err != nil {
		return err
	}
	app.io.Printf("Discarded %d change(s).\n", pending)
	return nil
}

func runQueueRemove(ctx context.Context, app *App, ref string) error {
	id := ref
	if pos, err := strconv.Atoi(ref); err == nil {
		actions, err := app.engine.Actions(ctx)
		if err != nil {
			return err
		}
		if pos < 1 || pos > len(actions) {
			return fmt.Errorf("no queued change at position %d (queue has %d)", pos, len(actions))
		}
		id = actions[pos-1].ID
	}

	action, err := app.engine.Discard(ctx, id)
	if err != nil {
		return err
	}
	app.io.Printf("Discarded %s %s %s.\n", action.Kind, action.Payload.Kind, action.Payload.ID)
	return reportPending(ctx, app)
}
