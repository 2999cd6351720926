package spec

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/turbolytics/hydrator/internal/config"
	"github.com/turbolytics/hydrator/internal/ddl"
)

func newGenerateCommand() *cobra.Command {
	v := viper.New()

	var cmd = &cobra.Command{
		Use:   "generate",
		Short: "Generates a record field table from a CREATE TABLE statement",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, _ := zap.NewDevelopment()
			defer logger.Sync()
			l := logger.Named("spec.generate")
			l.Info(
				"hydrator spec generate!",
				zap.String("db", v.GetString("db")),
			)

			switch v.GetString("db") {
			case "mysql":
				r, err := ddl.ParseCreateTable(v.GetString("query"))
				if err != nil {
					return err
				}
				if name := v.GetString("name"); name != "" {
					r.Name = name
				}

				bs, err := yaml.Marshal(struct {
					Records []config.Record `yaml:"records"`
				}{
					Records: []config.Record{r},
				})
				if err != nil {
					return err
				}

				fmt.Fprint(cmd.OutOrStdout(), string(bs))
			default:
				return fmt.Errorf("unsupported db: %q", v.GetString("db"))
			}

			return nil
		},
	}

	cmd.PersistentFlags().StringP("db", "", "mysql", "The SQL dialect the create table statement is written in")
	cmd.PersistentFlags().StringP("query", "q", "", "The create table statement to generate the field table from")
	cmd.PersistentFlags().StringP("name", "n", "", "Record name, defaults to the table name")
	v.BindPFlag("db", cmd.PersistentFlags().Lookup("db"))
	v.BindPFlag("query", cmd.PersistentFlags().Lookup("query"))
	v.BindPFlag("name", cmd.PersistentFlags().Lookup("name"))
	v.AutomaticEnv()
	v.SetEnvPrefix("HYDRATOR")
	return cmd
}
