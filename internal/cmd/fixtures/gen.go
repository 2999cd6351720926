package fixtures

import (
	"encoding/json"
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/turbolytics/hydrator/internal/config"
	"github.com/turbolytics/hydrator/internal/hydrate"
)

// Generator produces payloads for a spec that drift from it the way real
// upstream data does: fields go missing and unexpected keys show up.
type Generator struct {
	Spec      *hydrate.Spec
	DropRate  float64
	ExtraRate float64

	rnd *rand.Rand
}

func NewGenerator(spec *hydrate.Spec, seed int64) *Generator {
	return &Generator{
		Spec: spec,
		rnd:  rand.New(rand.NewSource(seed)),
	}
}

func (g *Generator) Payload(i int) hydrate.Payload {
	p := make(hydrate.Payload, g.Spec.Len())
	for _, f := range g.Spec.Fields() {
		if g.rnd.Float64() < g.DropRate {
			continue
		}
		p[f.Name] = g.value(f, i)
	}
	if g.rnd.Float64() < g.ExtraRate {
		p[fmt.Sprintf("extra_%d", g.rnd.Intn(10))] = i
	}
	return p
}

func (g *Generator) value(f hydrate.FieldSpec, i int) any {
	switch f.Type {
	case hydrate.TypeString:
		return fmt.Sprintf("%d %s", i, f.Name)
	case hydrate.TypeInteger:
		return g.rnd.Intn(100)
	case hydrate.TypeNumber:
		return g.rnd.Float64() * 1000
	case hydrate.TypeBool:
		return g.rnd.Intn(2) == 1
	case hydrate.TypeObject:
		return map[string]any{"id": i}
	case hydrate.TypeArray:
		return []any{i}
	}
	return i
}

func newGenerateCommand() *cobra.Command {
	var configPath string
	var recordName string
	var records int
	var seed int64
	var dropRate float64
	var extraRate float64

	var cmd = &cobra.Command{
		Use:   "generate",
		Short: "Generates ndjson payload fixtures for a configured record",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.NewHydratorFromFile(configPath)
			if err != nil {
				return err
			}

			r, err := c.Record(recordName)
			if err != nil {
				return err
			}
			s, err := r.Spec()
			if err != nil {
				return err
			}

			g := NewGenerator(s, seed)
			g.DropRate = dropRate
			g.ExtraRate = extraRate

			enc := json.NewEncoder(cmd.OutOrStdout())
			for i := 0; i < records; i++ {
				if err := enc.Encode(g.Payload(i)); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	cmd.Flags().StringVarP(&recordName, "record", "r", "", "Record to generate payloads for")
	cmd.Flags().IntVarP(&records, "records", "n", 10, "Number of payloads to generate")
	cmd.Flags().Int64Var(&seed, "seed", 1, "Random seed")
	cmd.Flags().Float64Var(&dropRate, "drop-rate", 0.1, "Probability of leaving a field out")
	cmd.Flags().Float64Var(&extraRate, "extra-rate", 0.1, "Probability of adding an unknown key")
	cmd.MarkFlagRequired("config")
	cmd.MarkFlagRequired("record")
	return cmd
}
