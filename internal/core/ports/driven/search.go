package driven

import (
	"context"

	"github.com/swe-arena/pr-miner/internal/core/domain"
)

// SearchPage is one page of provider search results.
type SearchPage struct {
	// TotalCount is the provider's reported total for the whole query,
	// not just this page. The provider caps retrievable results at 1000
	// regardless of TotalCount.
	TotalCount int

	Items []domain.RawMatch
}

// SearchClient issues one search query page against the provider.
// Implementations own retry, backoff and rate-limit handling; a returned
// error means the page is unrecoverable within the retry budget.
type SearchClient interface {
	SearchIssues(ctx context.Context, query string, page, perPage int) (*SearchPage, error)
}
