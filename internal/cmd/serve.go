package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/turbolytics/hydrator/internal/config"
	"github.com/turbolytics/hydrator/internal/hydrate"
	"github.com/turbolytics/hydrator/internal/server"
)

func newServeCommand() *cobra.Command {
	var configPath string
	v := viper.New()

	var cmd = &cobra.Command{
		Use:   "serve",
		Short: "Serves hydration of the configured records over HTTP",
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
			l := logger.Named("hydrator.server")

			policy := c.ParsedPolicy()
			if p := v.GetString("policy"); p != "" {
				if policy, err = hydrate.ParsePolicy(p); err != nil {
					return err
				}
			}

			hydrators, err := config.InitializeHydrators(c, l)
			if err != nil {
				return err
			}

			s := server.NewServer(l, policy)
			for name, h := range hydrators {
				s.RegisterHydrator(name, h)
			}

			port := v.GetInt("port")
			l.Info("starting server",
				zap.Int("port", port),
				zap.String("policy", string(policy)),
			)

			return s.Start(cmd.Context(), fmt.Sprintf(":%d", port))
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	cmd.Flags().Int("port", 8080, "Port to listen on")
	cmd.Flags().StringP("policy", "p", "", "Policy overriding the config: lenient, require, strict")
	cmd.MarkFlagRequired("config")

	v.BindPFlag("port", cmd.Flags().Lookup("port"))
	v.BindPFlag("policy", cmd.Flags().Lookup("policy"))
	v.AutomaticEnv()
	v.SetEnvPrefix("HYDRATOR")

	return cmd
}
