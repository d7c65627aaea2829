package endpoint

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/fgo-harvest/internal/fetcher"
)

func TestResolve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"title":"Servant List","url":"https://example.com/servants.json"},
			{"title":"Servant Skills","url":"https://example.com/servant-skills.json"}
		]`))
	}))
	defer srv.Close()

	r := NewResolver(fetcher.NewHTTPFetcher(fetcher.HTTPOptions{}), srv.URL)
	got, err := r.Resolve(context.Background(), "Servant Skills")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/servant-skills.json", got)
}

func TestResolve_ExactMatchOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"title":"Servant List ","url":"https://example.com/a"}]`))
	}))
	defer srv.Close()

	r := NewResolver(fetcher.NewHTTPFetcher(fetcher.HTTPOptions{}), srv.URL)
	_, err := r.Resolve(context.Background(), "Servant List")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEndpointNotFound))
}

func TestResolve_DirectoryFailureNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := NewResolver(fetcher.NewHTTPFetcher(fetcher.HTTPOptions{}), srv.URL)
	_, err := r.Resolve(context.Background(), "Servant List")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrEndpointNotFound))
	assert.Equal(t, int32(1), hits.Load())
}
