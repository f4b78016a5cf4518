// Package fetcher performs rate-limited HTTP GET/JSON requests against the
// public data providers (Open-Meteo, NASA POWER, Nominatim) and parses
// location list files for batch scoring.
package fetcher

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/cityscope/cityscope-cli/internal/resilience"
)

// Options configures the JSON client.
type Options struct {
	UserAgent    string
	Timeout      time.Duration
	RateLimiters map[string]*rate.Limiter
}

// DefaultRateLimiters returns the per-host rate limiters for the providers
// the engine talks to. Nominatim's usage policy caps at 1 req/s.
func DefaultRateLimiters() map[string]*rate.Limiter {
	return map[string]*rate.Limiter{
		"api.open-meteo.com":             rate.NewLimiter(10, 10),
		"air-quality-api.open-meteo.com": rate.NewLimiter(10, 10),
		"power.larc.nasa.gov":            rate.NewLimiter(5, 5),
		"nominatim.openstreetmap.org":    rate.NewLimiter(1, 1),
	}
}

// Client issues GET requests and decodes JSON responses, enforcing per-host
// rate limits. 429 and 5xx responses surface as transient errors so callers
// can apply their own retry policy.
type Client struct {
	http     *http.Client
	opts     Options
	limiters map[string]*rate.Limiter
}

// NewClient creates a JSON client with the given options.
func NewClient(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "cityscope-cli/1.0"
	}
	limiters := opts.RateLimiters
	if limiters == nil {
		limiters = DefaultRateLimiters()
	}
	return &Client{
		http: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		opts:     opts,
		limiters: limiters,
	}
}

// GetJSON fetches rawURL and decodes the response body into out.
func (c *Client) GetJSON(ctx context.Context, rawURL string, out any) error {
	if lim := c.limiterFor(rawURL); lim != nil {
		if err := lim.Wait(ctx); err != nil {
			return eris.Wrap(err, "fetcher: rate limiter wait")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return eris.Wrap(err, "fetcher: create request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.opts.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "fetcher: send request")
	}
	defer resp.Body.Close()

	if resilience.IsTransientHTTPStatus(resp.StatusCode) {
		zap.L().Warn("fetcher: transient response",
			zap.String("url", req.URL.Host),
			zap.Int("status", resp.StatusCode),
		)
		return resilience.NewTransientError(
			eris.Errorf("fetcher: http %d from %s", resp.StatusCode, req.URL.Host),
			resp.StatusCode,
		)
	}
	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("fetcher: http %d from %s", resp.StatusCode, req.URL.Host)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return eris.Wrap(err, "fetcher: read response")
	}
	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "fetcher: decode response")
	}
	return nil
}

func (c *Client) limiterFor(rawURL string) *rate.Limiter {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	return c.limiters[u.Host]
}
