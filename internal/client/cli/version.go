package cli

import (
	"github.com/spf13/cobra"
)

func newVersionCommand(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		// Конфигурация не нужна
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			io := st.opts.IO
			io.Printf("Cashbook\n")
			io.Printf("Version:    %s\n", st.opts.Build.Version)
			io.Printf("Build Date: %s\n", st.opts.Build.BuildDate)
			io.Printf("Git Commit: %s\n", st.opts.Build.GitCommit)
			return nil
		},
	}
}
