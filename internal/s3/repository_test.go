package s3

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type object struct {
	method string
	path   string
	body   string
}

// fakeS3 accepts PutObject requests and remembers them.
func fakeS3(t *testing.T) (*httptest.Server, func() []object) {
	t.Helper()

	var mu sync.Mutex
	var objects []object
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bs, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		mu.Lock()
		objects = append(objects, object{method: r.Method, path: r.URL.Path, body: string(bs)})
		mu.Unlock()

		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	return srv, func() []object {
		mu.Lock()
		defer mu.Unlock()
		return append([]object(nil), objects...)
	}
}

func setCredentials(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
}

func TestRepositoryWrite(t *testing.T) {
	setCredentials(t)
	srv, objects := fakeS3(t)

	r, err := New("catalogs",
		WithPrefix("runs/run-1"),
		WithEndpoint(srv.URL, true),
	)
	require.NoError(t, err)

	require.NoError(t, r.Write(context.Background(), "catalog.json", strings.NewReader(`{"completed":true}`)))

	got := objects()
	require.Len(t, got, 1)
	assert.Equal(t, http.MethodPut, got[0].method)
	assert.Equal(t, "/catalogs/runs/run-1/catalog.json", got[0].path)
	assert.Equal(t, `{"completed":true}`, got[0].body)

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.Error(t, r.Write(ctx, "other.json", strings.NewReader("{}")))
	})
}
