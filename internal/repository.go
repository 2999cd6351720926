package internal

import (
	"context"
	"io"
)

// Repository stores run artifacts such as catalogs.
type Repository interface {
	Write(ctx context.Context, path string, reader io.Reader) error
}
