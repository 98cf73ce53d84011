package vendors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"postmarket/internal/cache"
	"postmarket/internal/models"
	"postmarket/internal/observability"
)

// SEOMetrics is the snapshot returned by the SEO vendor for a domain.
type SEOMetrics struct {
	DomainAuthority int   `json:"domain_authority"`
	MonthlyTraffic  int64 `json:"monthly_traffic"`
	Backlinks       int64 `json:"backlinks"`
}

// SEOClient looks up domain metrics through the SEO vendor. Results are
// cached in Redis because the vendor bills per lookup.
type SEOClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewSEOClient returns a configured SEO vendor client.
func NewSEOClient(baseURL, apiKey string) *SEOClient {
	return &SEOClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Lookup fetches the metrics snapshot for a domain.
func (c *SEOClient) Lookup(ctx context.Context, domain string) (*SEOMetrics, error) {
	var metrics SEOMetrics
	key := cache.SEOMetricsKey(domain)

	err := cache.Aside(ctx, key, &metrics, cache.SEOMetricsTTL, func() error {
		start := time.Now()

		lookupURL := fmt.Sprintf("%s/v1/metrics?domain=%s", c.baseURL, url.QueryEscape(domain))
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
		if err != nil {
			return models.NewInternalError(err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.http.Do(req)
		if err != nil {
			observability.ObserveVendorRequest("seo", "error", start)
			return models.NewUpstreamError("SEO metrics", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			observability.ObserveVendorRequest("seo", "error", start)
			return models.NewUpstreamError("SEO metrics", fmt.Errorf("vendor returned status %d", resp.StatusCode))
		}

		if err := json.NewDecoder(resp.Body).Decode(&metrics); err != nil {
			observability.ObserveVendorRequest("seo", "error", start)
			return models.NewUpstreamError("SEO metrics", fmt.Errorf("undecodable vendor response: %w", err))
		}
		observability.ObserveVendorRequest("seo", "ok", start)
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &metrics, nil
}
