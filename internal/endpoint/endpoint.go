// Package endpoint resolves human-readable keywords to list-endpoint URLs
// through the site's URL directory.
package endpoint

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"

	"github.com/sells-group/fgo-harvest/internal/fetcher"
)

// ErrEndpointNotFound is returned when no directory entry matches the keyword.
var ErrEndpointNotFound = errors.New("endpoint not found")

// Entry is one item of the site's URL directory.
type Entry struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Resolver maps keywords to URLs using a remote directory listing.
type Resolver struct {
	fetcher      fetcher.Fetcher
	directoryURL string
}

// NewResolver creates a Resolver reading the directory at directoryURL.
func NewResolver(f fetcher.Fetcher, directoryURL string) *Resolver {
	return &Resolver{fetcher: f, directoryURL: directoryURL}
}

// Resolve fetches the directory and returns the URL whose title equals
// keyword exactly. Directory fetch failures are returned as is; there is
// no retry since resolution runs once per process.
func (r *Resolver) Resolve(ctx context.Context, keyword string) (string, error) {
	entries, err := fetcher.GetJSON[[]Entry](ctx, r.fetcher, r.directoryURL)
	if err != nil {
		return "", eris.Wrap(err, "endpoint: fetch directory")
	}
	for _, e := range entries {
		if e.Title == keyword {
			return e.URL, nil
		}
	}
	return "", eris.Wrapf(ErrEndpointNotFound, "endpoint: keyword %q", keyword)
}
