package spec

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/turbolytics/hydrator/internal/config"
)

func newValidateCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Builds every record field table in a config file and reports configuration errors",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.NewHydratorFromFile(configPath)
			if err != nil {
				return err
			}

			logger, err := config.NewLogger(c)
			if err != nil {
				return err
			}
			defer logger.Sync()
			l := logger.Named("spec.validate")

			specs, err := c.Specs()
			if err != nil {
				l.Error("invalid config", zap.String("config", configPath), zap.Error(err))
				return err
			}

			names := make([]string, 0, len(specs))
			for name := range specs {
				names = append(names, name)
			}
			sort.Strings(names)

			for _, name := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d fields\n", name, specs[name].Len())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	cmd.MarkFlagRequired("config")

	return cmd
}
