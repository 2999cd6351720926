package fixtures

import "github.com/spf13/cobra"

// NewCommand groups the commands that produce payload fixtures.
func NewCommand() *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "fixtures",
		Short: "Generates payload fixtures that drift from a configured record",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newGenerateCommand())
	return cmd
}
