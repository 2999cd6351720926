package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/turbolytics/hydrator/internal/cmd/fixtures"
	"github.com/turbolytics/hydrator/internal/cmd/run"
	"github.com/turbolytics/hydrator/internal/cmd/spec"
)

func NewRootCommand() *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "hydrator",
		Short: "Hydrates records from loosely typed payloads",
		Long: `hydrator fills declared record fields from external key/value payloads,
tolerating missing and unexpected keys and reporting every discrepancy.`,
		// The run function is called when the command is executed
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "Welcome to hydrator!")
		},
	}

	cmd.AddCommand(run.NewCommand())
	cmd.AddCommand(spec.NewCommand())
	cmd.AddCommand(fixtures.NewCommand())
	cmd.AddCommand(newServeCommand())

	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := NewRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Println(err)
		stop()
		os.Exit(1)
	}
}
