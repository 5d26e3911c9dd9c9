// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

package labeling

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/Joshykins/stupid-neko-sub000/internal/logging"
)

// oEmbedResponse is the subset of the oEmbed payload the pipeline keeps.
type oEmbedResponse struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
	ProviderName string `json:"provider_name"`
}

// OEmbedClient fetches public oEmbed metadata with a rate limiter and a
// circuit breaker in front of the upstream. Both YouTube and Spotify expose
// oEmbed without authentication.
type OEmbedClient struct {
	endpoint string
	http     *http.Client
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker[*oEmbedResponse]
}

// NewOEmbedClient creates a client for one oEmbed endpoint.
func NewOEmbedClient(name, endpoint string, timeout time.Duration, ratePerSec float64, burst int, maxRequests uint32, failureRatio float64) *OEmbedClient {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: maxRequests,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && ratio >= failureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).
				Str("from", from.String()).Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	}

	return &OEmbedClient{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(rate.Limit(ratePerSec), burst),
		breaker:  gobreaker.NewCircuitBreaker[*oEmbedResponse](settings),
	}
}

// Fetch resolves oEmbed metadata for a content URL.
func (c *OEmbedClient) Fetch(ctx context.Context, contentURL string) (*oEmbedResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	return c.breaker.Execute(func() (*oEmbedResponse, error) {
		reqURL := fmt.Sprintf("%s?url=%s&format=json", c.endpoint, url.QueryEscape(contentURL))
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build oembed request: %w", err)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("oembed request failed: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("oembed endpoint returned status %d", resp.StatusCode)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return nil, fmt.Errorf("read oembed response: %w", err)
		}

		out := &oEmbedResponse{}
		if err := json.Unmarshal(body, out); err != nil {
			return nil, fmt.Errorf("decode oembed response: %w", err)
		}
		return out, nil
	})
}
