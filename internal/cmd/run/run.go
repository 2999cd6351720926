package run

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/turbolytics/hydrator/internal/catalog"
	"github.com/turbolytics/hydrator/internal/config"
	"github.com/turbolytics/hydrator/internal/hydrate"
	"github.com/turbolytics/hydrator/internal/payload"
)

type output struct {
	Index    int             `json:"index"`
	Accepted bool            `json:"accepted"`
	Error    string          `json:"error,omitempty"`
	Result   *hydrate.Result `json:"result"`
}

// NewCommand hydrates payloads read from a file (or stdin) against a
// configured record and prints one JSON result per payload.
func NewCommand() *cobra.Command {
	var configPath string
	var recordName string
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "run [file]",
		Short: "Hydrates payloads against a configured record. Payloads are read from file or stdin.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			start := time.Now().UTC()

			c, err := config.NewHydratorFromFile(configPath)
			if err != nil {
				return err
			}

			logger, err := config.NewLogger(c)
			if err != nil {
				return err
			}
			defer logger.Sync()

			rid := uuid.Must(uuid.NewUUID())
			l := logger.Named("hydrator.run").With(zap.String("run_id", rid.String()))

			policy := c.ParsedPolicy()
			if p := v.GetString("policy"); p != "" {
				policy, err = hydrate.ParsePolicy(p)
				if err != nil {
					return err
				}
			}

			format, err := payload.ParseFormat(v.GetString("format"))
			if err != nil {
				return err
			}

			record, err := c.Record(recordName)
			if err != nil {
				return err
			}
			spec, err := record.Spec()
			if err != nil {
				return err
			}

			var in io.Reader = cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			payloads, err := payload.DecodeAll(format, in)
			if err != nil {
				return err
			}

			l.Info("hydrating",
				zap.String("record", recordName),
				zap.String("policy", string(policy)),
				zap.String("format", string(format)),
				zap.Int("payloads", len(payloads)),
			)

			h := hydrate.New(spec,
				hydrate.WithLogger(l),
				hydrate.WithConcurrency(v.GetInt("concurrency")),
			)
			results, err := h.HydrateAll(ctx, payloads)
			if err != nil {
				return err
			}

			log := catalog.Catalog{
				RunID:       rid.String(),
				StartTime:   start,
				Record:      recordName,
				Policy:      string(policy),
				NumPayloads: len(results),
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			for i, r := range results {
				o := output{Index: i, Accepted: true, Result: r}
				if err := r.Err(policy); err != nil {
					o.Accepted = false
					o.Error = err.Error()
					log.NumRejected++
				} else {
					log.NumAccepted++
				}
				log.NumMissingFields += len(r.Missing)
				log.NumUnknownKeys += len(r.Unknown)
				log.NumMismatchedFields += len(r.Mismatched)

				if err := enc.Encode(o); err != nil {
					return err
				}
			}

			log.EndTime = time.Now().UTC()
			log.Completed = true

			l.Info("hydrated",
				zap.Int("payloads", log.NumPayloads),
				zap.Int("rejected", log.NumRejected),
			)

			if uri := v.GetString("catalog-uri"); uri != "" {
				repo, err := newCatalogRepository(uri, rid.String(), s3Options{
					endpoint: v.GetString("s3-endpoint"),
					region:   v.GetString("s3-region"),
				}, l)
				if err != nil {
					return err
				}
				if err := writeCatalog(ctx, repo, log); err != nil {
					return err
				}
			}

			if log.NumRejected > 0 {
				return fmt.Errorf("%d of %d payloads rejected by %s policy", log.NumRejected, log.NumPayloads, policy)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	cmd.Flags().StringVarP(&recordName, "record", "r", "", "Name of the record to hydrate")
	cmd.Flags().StringP("format", "f", "json", "Payload format: json, ndjson, yaml, bson, extjson")
	cmd.Flags().StringP("policy", "p", "", "Policy overriding the config: lenient, require, strict")
	cmd.Flags().Int("concurrency", 4, "Number of payloads hydrated at once")
	cmd.Flags().String("catalog-uri", "", "Where to write the run catalog, under the run ID: a directory or s3://bucket/prefix")
	cmd.Flags().String("s3-endpoint", "", "S3 compatible endpoint for s3:// catalog uris")
	cmd.Flags().String("s3-region", "us-east-1", "Region for s3:// catalog uris")
	cmd.MarkFlagRequired("config")
	cmd.MarkFlagRequired("record")

	v.BindPFlag("format", cmd.Flags().Lookup("format"))
	v.BindPFlag("policy", cmd.Flags().Lookup("policy"))
	v.BindPFlag("concurrency", cmd.Flags().Lookup("concurrency"))
	v.BindPFlag("catalog-uri", cmd.Flags().Lookup("catalog-uri"))
	v.BindPFlag("s3-endpoint", cmd.Flags().Lookup("s3-endpoint"))
	v.BindPFlag("s3-region", cmd.Flags().Lookup("s3-region"))
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.SetEnvPrefix("HYDRATOR")

	return cmd
}
