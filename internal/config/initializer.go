package config

import (
	"go.uber.org/zap"

	"github.com/turbolytics/hydrator/internal/hydrate"
)

// InitializeHydrators builds one hydrator per configured record.
func InitializeHydrators(c *Hydrator, logger *zap.Logger) (map[string]*hydrate.Hydrator, error) {
	specs, err := c.Specs()
	if err != nil {
		return nil, err
	}

	hydrators := make(map[string]*hydrate.Hydrator, len(specs))
	for name, spec := range specs {
		hydrators[name] = hydrate.New(
			spec,
			hydrate.WithLogger(logger.Named(name)),
		)
	}

	return hydrators, nil
}

// NewLogger builds a development logger at the configured level.
func NewLogger(c *Hydrator) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if c != nil && c.Global.Logger.Level != "" {
		lvl, err := zap.ParseAtomicLevel(c.Global.Logger.Level)
		if err != nil {
			return nil, err
		}
		cfg.Level = lvl
	}
	return cfg.Build()
}
