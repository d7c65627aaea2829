// Package fetcher provides the HTTP transport used by every harvest stage.
package fetcher

import (
	"context"
)

// Fetcher defines the interface for downloading remote documents.
type Fetcher interface {
	// Get fetches the URL and returns the full response body. Non-2xx
	// responses are reported as *resilience.StatusError.
	Get(ctx context.Context, url string) ([]byte, error)
}
