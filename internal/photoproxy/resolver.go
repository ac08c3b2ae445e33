package photoproxy

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/weekender-app/weekender/internal/apperr"
	"github.com/weekender-app/weekender/internal/logger"
)

// Resolver turns an opaque provider photo token into a fetchable image URL.
// The provider endpoint answers a token lookup with a redirect to the actual
// image; we capture the Location instead of following it, cache it, and let
// the client fetch the image directly.
type Resolver struct {
	providerURL string // format string with one %s for the token
	apiKey      string
	cache       Cache
	cacheTTL    time.Duration
	client      *http.Client
	log         logger.Logger
}

func NewResolver(providerURL, apiKey string, cache Cache, cacheTTL time.Duration, log logger.Logger) *Resolver {
	return &Resolver{
		providerURL: providerURL,
		apiKey:      apiKey,
		cache:       cache,
		cacheTTL:    cacheTTL,
		client: &http.Client{
			Timeout: 10 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		log: log,
	}
}

// Resolve returns the display URL for token, consulting the cache first.
func (r *Resolver) Resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", apperr.NotFound("photo token not found")
	}
	if cached, ok := r.cache.Get(ctx, token); ok {
		return cached, nil
	}

	lookup := fmt.Sprintf(r.providerURL, url.QueryEscape(token))
	if r.apiKey != "" {
		lookup += "&key=" + url.QueryEscape(r.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookup, nil)
	if err != nil {
		return "", apperr.Internal("build photo lookup: " + err.Error())
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return "", apperr.Internal("photo provider lookup failed: " + err.Error())
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 300 && resp.StatusCode < 400:
		loc := resp.Header.Get("Location")
		if loc == "" {
			return "", apperr.Internal("photo provider redirect missing location")
		}
		r.cache.Set(ctx, token, loc, r.cacheTTL)
		return loc, nil
	case resp.StatusCode == http.StatusNotFound:
		return "", apperr.NotFound("photo token not found")
	default:
		r.log.Warn("unexpected photo provider status",
			logger.Int("status", resp.StatusCode))
		return "", apperr.Internal(fmt.Sprintf("photo provider returned status %d", resp.StatusCode))
	}
}
