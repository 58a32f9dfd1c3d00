package github

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/swe-arena/pr-miner/internal/core/domain"
	"github.com/swe-arena/pr-miner/internal/core/ports/driven"
	"github.com/swe-arena/pr-miner/internal/logger"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxAttempts is the retry budget per search page.
	DefaultMaxAttempts = 10

	// initialBackoff is the first exponential backoff delay.
	initialBackoff = time.Second

	// maxBackoff caps the exponential backoff delay.
	maxBackoff = 60 * time.Second

	// maxJitter is the random slack added to computed backoff delays.
	maxJitter = 500 * time.Millisecond

	// resetSlack is added on top of the provider's reset timestamp.
	resetSlack = 2 * time.Second

	// minWait and maxRateLimitWait bound waits for rate-limited responses.
	minWait          = time.Second
	maxRateLimitWait = 120 * time.Second

	// maxTransportWait bounds waits after transport-level failures.
	maxTransportWait = 60 * time.Second
)

// Ensure Client implements the search port.
var _ driven.SearchClient = (*Client)(nil)

// Client wraps the go-github search API with bounded, adaptive backoff.
type Client struct {
	gh          *gh.Client
	limiter     *RateLimiter
	maxAttempts int

	// sleep and jitter are injectable for tests.
	sleep  func(ctx context.Context, d time.Duration) error
	jitter func() time.Duration
}

// NewClient creates a search client. The token is optional; without it the
// provider applies the much lower anonymous quota.
func NewClient(ctx context.Context, token string) *Client {
	var hc *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		hc = oauth2.NewClient(ctx, ts)
	} else {
		logger.Warn("github: no token configured, anonymous rate limits apply")
		hc = &http.Client{}
	}
	hc.Timeout = DefaultTimeout

	return &Client{
		gh:          gh.NewClient(hc),
		limiter:     NewRateLimiter(ProactiveRate),
		maxAttempts: DefaultMaxAttempts,
		sleep:       sleepCtx,
		jitter:      randomJitter,
	}
}

// NewClientWithHTTPClient creates a search client over a custom
// http.Client. Used by tests to point at a stub server.
func NewClientWithHTTPClient(hc *http.Client) *Client {
	return &Client{
		gh:          gh.NewClient(hc),
		limiter:     NewRateLimiter(ProactiveRate),
		maxAttempts: DefaultMaxAttempts,
		sleep:       sleepCtx,
		jitter:      randomJitter,
	}
}

// SearchIssues runs one page of an issue search, retrying rate-limited and
// transient failures with bounded backoff. Any other non-2xx status is
// surfaced immediately. After exhausting the budget it returns
// ErrRetriesExhausted, additionally wrapping a RateLimitError with the
// limiter's last known state when the final failure was rate-limited; the
// caller degrades to partial results either way.
func (c *Client) SearchIssues(ctx context.Context, query string, page, perPage int) (*driven.SearchPage, error) {
	opts := &gh.SearchOptions{
		Sort:        "created",
		Order:       "asc",
		ListOptions: gh.ListOptions{Page: page, PerPage: perPage},
	}

	backoff := initialBackoff
	rateLimited := false
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		result, resp, err := c.gh.Search.Issues(ctx, query, opts)
		if resp != nil {
			c.limiter.UpdateFromResponse(resp.Response)
		}
		if err == nil {
			return convertPage(result), nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		status := 0
		if resp != nil {
			status = resp.StatusCode
		}

		rateLimited = status == http.StatusForbidden || status == http.StatusTooManyRequests

		var wait time.Duration
		switch {
		case rateLimited || status >= 500:
			wait = c.retryWait(status, resp, err, backoff)
		case resp == nil:
			// Transport-level failure: no response to consult.
			wait = clampWait(backoff+c.jitter(), maxTransportWait)
		default:
			return nil, wrapError(err, status)
		}

		backoff = nextBackoff(backoff)
		logger.Warn("github: search attempt %d/%d failed (%v), backing off %.1fs",
			attempt, c.maxAttempts, err, wait.Seconds())
		if sleepErr := c.sleep(ctx, wait); sleepErr != nil {
			return nil, sleepErr
		}
	}

	if rateLimited {
		return nil, fmt.Errorf("search %q: %w: %w", query, ErrRetriesExhausted, &RateLimitError{
			ResetAt:   c.limiter.ResetTime(),
			Remaining: c.limiter.Remaining(),
			Limit:     c.limiter.Limit(),
		})
	}
	return nil, fmt.Errorf("search %q: %w", query, ErrRetriesExhausted)
}

// retryWait computes the wait before the next attempt, in priority order:
// provider retry-after, rate-limit reset (403/429 only), then exponential
// backoff with jitter. The result is clamped to [1s, 120s].
func (c *Client) retryWait(status int, resp *gh.Response, err error, backoff time.Duration) time.Duration {
	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) && abuseErr.RetryAfter != nil {
		return clampWait(*abuseErr.RetryAfter, maxRateLimitWait)
	}

	if resp != nil && resp.Response != nil {
		hdr := resp.Response.Header
		if retryAfter := hdr.Get(HeaderRetryAfter); retryAfter != "" {
			if secs, parseErr := strconv.ParseFloat(retryAfter, 64); parseErr == nil {
				return clampWait(time.Duration(secs*float64(time.Second)), maxRateLimitWait)
			}
		}
		if status == http.StatusForbidden || status == http.StatusTooManyRequests {
			if reset := hdr.Get(HeaderRateReset); reset != "" {
				if ts, parseErr := strconv.ParseInt(reset, 10, 64); parseErr == nil {
					return clampWait(time.Until(time.Unix(ts, 0))+resetSlack, maxRateLimitWait)
				}
			}
		}
	}

	return clampWait(backoff+c.jitter(), maxRateLimitWait)
}

// convertPage maps the provider result onto the transient domain form.
func convertPage(result *gh.IssuesSearchResult) *driven.SearchPage {
	page := &driven.SearchPage{TotalCount: result.GetTotal()}
	page.Items = make([]domain.RawMatch, 0, len(result.Issues))
	for _, issue := range result.Issues {
		m := domain.RawMatch{
			ID:        issue.GetID(),
			HTMLURL:   issue.GetHTMLURL(),
			CreatedAt: issue.GetCreatedAt().Time,
		}
		if issue.ClosedAt != nil {
			t := issue.ClosedAt.Time
			m.ClosedAt = &t
		}
		if links := issue.PullRequestLinks; links != nil && links.MergedAt != nil {
			t := links.MergedAt.Time
			m.MergedAt = &t
		}
		page.Items = append(page.Items, m)
	}
	return page
}

// wrapError converts go-github errors to our error types.
func wrapError(err error, status int) error {
	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) {
		return &APIError{StatusCode: status, Message: ghErr.Message}
	}
	return fmt.Errorf("search issues: %w", err)
}

func nextBackoff(d time.Duration) time.Duration {
	d *= 2
	if d > maxBackoff {
		d = maxBackoff
	}
	return d
}

func clampWait(d, upper time.Duration) time.Duration {
	if d < minWait {
		return minWait
	}
	if d > upper {
		return upper
	}
	return d
}

func randomJitter() time.Duration {
	return time.Duration(rand.Int63n(int64(maxJitter)))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
