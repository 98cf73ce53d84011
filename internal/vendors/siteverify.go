package vendors

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"postmarket/internal/models"
	"postmarket/internal/observability"
)

// VerifyFileName is the well-known file a seller must place at the root of
// their site to prove ownership.
const VerifyFileName = "postmarket-verify.txt"

// SiteVerifier probes a listed domain for its ownership proof file.
type SiteVerifier struct {
	http *http.Client

	// scheme is overridable so tests can probe plain-HTTP stubs.
	scheme string
}

// NewSiteVerifier returns a verifier that probes over HTTPS.
func NewSiteVerifier() *SiteVerifier {
	return &SiteVerifier{
		http:   &http.Client{Timeout: 10 * time.Second},
		scheme: "https",
	}
}

// Probe fetches https://<domain>/postmarket-verify.txt and checks that its
// body contains the expected token. A mismatch is a validation failure, an
// unreachable site is an upstream failure.
func (v *SiteVerifier) Probe(ctx context.Context, domain, expectedToken string) error {
	start := time.Now()

	probeURL := fmt.Sprintf("%s://%s/%s", v.scheme, domain, VerifyFileName)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, probeURL, nil)
	if err != nil {
		return models.NewInternalError(err)
	}

	resp, err := v.http.Do(req)
	if err != nil {
		observability.ObserveVendorRequest("siteverify", "error", start)
		return models.NewUpstreamError("Site verification", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		observability.ObserveVendorRequest("siteverify", "miss", start)
		return models.NewValidationError("Verification file not found on the site")
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		observability.ObserveVendorRequest("siteverify", "error", start)
		return models.NewUpstreamError("Site verification", err)
	}
	observability.ObserveVendorRequest("siteverify", "ok", start)

	if !strings.Contains(string(body), expectedToken) {
		return models.NewValidationError("Verification file does not contain the expected token")
	}
	return nil
}
