package harvest

import (
	"go.uber.org/zap"

	"github.com/sells-group/fgo-harvest/internal/model"
	"github.com/sells-group/fgo-harvest/internal/resilience"
)

// failed converts a fetch error into a failed detail payload. url is the
// request that failed; ref is kept on retryable failures so the comb loop
// knows what to re-fetch.
func failed[T any](log *zap.Logger, name, url, ref string, err error) model.Detail[T] {
	kind, tag := resilience.Classify(err)
	status := resilience.StatusCode(err)

	log.Warn("detail fetch failed",
		zap.String("name", name),
		zap.Int("status", status),
		zap.String("url", url),
		zap.String("kind", string(kind)),
		zap.String("cause", resilience.Cause(err)),
		zap.Error(err),
	)

	if kind == resilience.KindTerminal {
		return model.Terminal[T](tag, status)
	}
	return model.Retryable[T](ref, status)
}
