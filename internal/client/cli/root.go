// Package cli implements the cashbook command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/iudanet/cashbook/internal/client/iocli"
	"github.com/iudanet/cashbook/internal/config"
	"github.com/iudanet/cashbook/internal/logging"
)

// BuildInfo is set by the main package from ldflags.
type BuildInfo struct {
	Version   string
	BuildDate string
	GitCommit string
}

// Options configures the root command.
type Options struct {
	IO     iocli.IO
	Getenv func(string) string
	// Logger overrides the logger built from the configuration
	Logger *slog.Logger
	Build  BuildInfo
}

// rootFlags holds global flags; they override the config file and environment.
type rootFlags struct {
	configPath    string
	dbPath        string
	remoteDBPath  string
	offlineMarker string
	logLevel      string
	logFile       string
}

// state общий для всех подкоманд
type state struct {
	opts   Options
	flags  rootFlags
	cfg    *config.Config
	logger *slog.Logger
	closer io.Closer
}

// NewRootCommand creates the root command of the cashbook CLI.
func NewRootCommand(opts Options) *cobra.Command {
	if opts.IO == nil {
		opts.IO = iocli.NewStdio()
	}
	if opts.Getenv == nil {
		opts.Getenv = os.Getenv
	}
	st := &state{opts: opts}

	cmd := &cobra.Command{
		Use:   "cashbook",
		Short: "Cashbook - offline-first bookkeeping",
		Long: `Cashbook records payables and financial goals locally and
synchronizes them with the authoritative store when it is reachable.

Changes made while offline are queued and replayed in order. When a queued
change targets a record that was modified on the server, synchronization
pauses until the conflict is resolved with 'cashbook resolve'.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return st.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return st.teardown()
		},
	}
	cmd.SetOut(opts.IO)
	cmd.SetErr(opts.IO)

	f := cmd.PersistentFlags()
	f.StringVar(&st.flags.configPath, "config", "", "path to YAML config file (default: $CASHBOOK_CONFIG or cashbook.yaml)")
	f.StringVar(&st.flags.dbPath, "db", "", "path to local database")
	f.StringVar(&st.flags.remoteDBPath, "remote-db", "", "path to the authoritative database")
	f.StringVar(&st.flags.offlineMarker, "offline-marker", "", "file whose presence forces offline mode")
	f.StringVar(&st.flags.logLevel, "log-level", "", "log level (debug|info|warn|error)")
	f.StringVar(&st.flags.logFile, "log-file", "", "write logs to a rotated file instead of stderr")

	cmd.AddCommand(
		newStatusCommand(st),
		newQueueCommand(st),
		newEntryCommand(st),
		newGoalCommand(st),
		newRefCommand(st),
		newRemoteCommand(st),
		newSyncCommand(st),
		newResolveCommand(st),
		newDaemonCommand(st),
		newVersionCommand(st),
	)

	return cmd
}

// setup загружает конфигурацию и создаёт логгер
func (st *state) setup(cmd *cobra.Command) error {
	path, required := st.flags.configPath, true
	if path == "" {
		path = st.opts.Getenv(config.EnvPrefix + "CONFIG")
	}
	if path == "" {
		path, required = "cashbook.yaml", false
	}

	cfg, err := config.Load(path, required, st.opts.Getenv)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Флаги имеют наивысший приоритет
	overrides := []struct {
		name string
		src  string
		dst  *string
	}{
		{"db", st.flags.dbPath, &cfg.DBPath},
		{"remote-db", st.flags.remoteDBPath, &cfg.RemoteDBPath},
		{"offline-marker", st.flags.offlineMarker, &cfg.OfflineMarker},
		{"log-level", st.flags.logLevel, &cfg.LogLevel},
		{"log-file", st.flags.logFile, &cfg.LogFile},
	}
	for _, o := range overrides {
		if cmd.Flags().Changed(o.name) {
			*o.dst = o.src
		}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	st.cfg = cfg

	if st.opts.Logger != nil {
		st.logger = st.opts.Logger
		return nil
	}
	logger, closer, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	st.logger, st.closer = logger, closer
	return nil
}

func (st *state) teardown() error {
	if st.closer == nil {
		return nil
	}
	err := st.closer.Close()
	st.closer = nil
	return err
}

// open собирает приложение для одной команды
func (st *state) open(ctx context.Context) (*App, error) {
	return openApp(ctx, st.cfg, st.opts.IO, st.logger)
}

// withApp открывает приложение, выполняет fn и закрывает его
func (st *state) withApp(cmd *cobra.Command, fn func(ctx context.Context, app *App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	app, err := st.open(ctx)
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(ctx, app)
}
