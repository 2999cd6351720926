package run

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/turbolytics/hydrator/internal"
	"github.com/turbolytics/hydrator/internal/catalog"
	"github.com/turbolytics/hydrator/internal/local"
	"github.com/turbolytics/hydrator/internal/s3"
)

type s3Options struct {
	endpoint string
	region   string
}

// newCatalogRepository resolves where the catalog of run runID is written.
// uri is either a local directory (optionally file://) or s3://bucket/prefix.
func newCatalogRepository(uri, runID string, o s3Options, l *zap.Logger) (internal.Repository, error) {
	if !strings.Contains(uri, "://") {
		return local.New(uri, local.WithPrefix(runID), local.WithLogger(l)), nil
	}

	u, err := url.Parse(uri)
	if err != nil {
		return nil, err
	}

	switch u.Scheme {
	case "file":
		return local.New(u.Path, local.WithPrefix(runID), local.WithLogger(l)), nil
	case "s3":
		if u.Host == "" {
			return nil, fmt.Errorf("catalog uri %q: missing bucket", uri)
		}
		opts := []s3.Option{
			s3.WithPrefix(path.Join(strings.TrimPrefix(u.Path, "/"), runID)),
			s3.WithLogger(l),
		}
		if o.region != "" {
			opts = append(opts, s3.WithRegion(o.region))
		}
		if o.endpoint != "" {
			opts = append(opts, s3.WithEndpoint(o.endpoint, true))
		}
		return s3.New(u.Host, opts...)
	default:
		return nil, fmt.Errorf("catalog uri %q: unsupported scheme %q", uri, u.Scheme)
	}
}

func writeCatalog(ctx context.Context, repo internal.Repository, log catalog.Catalog) error {
	bs, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return err
	}
	return repo.Write(ctx, "catalog.json", bytes.NewReader(bs))
}
