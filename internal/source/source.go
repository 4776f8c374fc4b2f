package source

import (
	"context"

	"github.com/ailert/ailert/internal/model"
)

// Source abstracts one external listing source. Fetch returns the normalized
// records for one run. An empty result with a nil error means the source
// legitimately had nothing new; errors are reserved for fetches that cannot
// be trusted (see Error kinds).
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]model.Record, error)
}
