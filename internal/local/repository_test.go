package local

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositoryWrite(t *testing.T) {
	dir := t.TempDir()
	r := New(dir, WithPrefix("run-1"))

	require.NoError(t, r.Write(context.Background(), "catalog.json", strings.NewReader(`{"completed":true}`)))

	bs, err := os.ReadFile(filepath.Join(dir, "run-1", "catalog.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"completed":true}`, string(bs))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, r.Write(ctx, "other.json", strings.NewReader("")), context.Canceled)
}
