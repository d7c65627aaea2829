package fetcher

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"
)

// GetJSON fetches the URL and decodes the body into T.
func GetJSON[T any](ctx context.Context, f Fetcher, url string) (T, error) {
	var out T
	body, err := f.Get(ctx, url)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, eris.Wrapf(err, "json: decode %s", url)
	}
	return out, nil
}
