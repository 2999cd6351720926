package hydrate

import (
	"context"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Option func(*Hydrator)

func WithLogger(logger *zap.Logger) Option {
	return func(h *Hydrator) {
		h.logger = logger
	}
}

// WithConcurrency bounds the number of payloads HydrateAll works on at once.
func WithConcurrency(n int) Option {
	return func(h *Hydrator) {
		h.concurrency = n
	}
}

// Hydrator binds a spec to a logger and hydrates payloads against it.
type Hydrator struct {
	spec        *Spec
	logger      *zap.Logger
	concurrency int
}

// New panics when spec is nil, the value NewSpec returns alongside an error.
func New(spec *Spec, opts ...Option) *Hydrator {
	if spec == nil {
		panic("hydrate: nil spec")
	}

	h := &Hydrator{
		spec:        spec,
		logger:      zap.NewNop(),
		concurrency: runtime.GOMAXPROCS(0),
	}

	for _, opt := range opts {
		opt(h)
	}

	if h.concurrency < 1 {
		h.concurrency = 1
	}
	return h
}

func (h *Hydrator) Spec() *Spec {
	return h.spec
}

func (h *Hydrator) Hydrate(payload Payload) *Result {
	r := Hydrate(h.spec, payload)

	if !r.OK() {
		h.logger.Debug("hydrated with discrepancies",
			zap.Strings("missing", r.Missing),
			zap.Strings("unknown", r.Unknown),
			zap.Strings("mismatched", r.Mismatched),
		)
	}
	return r
}

// HydrateAll hydrates every payload independently. Results are returned in
// input order. The only error is a cancelled context; field level
// discrepancies stay in each result.
func (h *Hydrator) HydrateAll(ctx context.Context, payloads []Payload) ([]*Result, error) {
	results := make([]*Result, len(payloads))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(h.concurrency)

	for i, p := range payloads {
		i, p := i, p
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = h.Hydrate(p)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	h.logger.Debug("hydrated batch", zap.Int("payloads", len(payloads)))
	return results, nil
}
