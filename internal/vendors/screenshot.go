package vendors

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"postmarket/internal/models"
	"postmarket/internal/observability"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"

	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	thumbMaxWidth  = 1280
	thumbMaxHeight = 800
	webpQuality    = 82

	maxScreenshotBytes = 16 << 20
)

// ScreenshotClient captures a site screenshot through the vendor API and
// stores a webp thumbnail on local disk.
type ScreenshotClient struct {
	baseURL   string
	apiKey    string
	uploadDir string
	http      *http.Client
}

// NewScreenshotClient returns a configured screenshot vendor client.
func NewScreenshotClient(baseURL, apiKey, uploadDir string) *ScreenshotClient {
	return &ScreenshotClient{
		baseURL:   baseURL,
		apiKey:    apiKey,
		uploadDir: uploadDir,
		http:      &http.Client{Timeout: 30 * time.Second},
	}
}

// Capture requests a screenshot of the domain, converts it to a webp
// thumbnail and returns the relative path it was stored under.
func (c *ScreenshotClient) Capture(ctx context.Context, domain string) (string, error) {
	start := time.Now()

	captureURL := fmt.Sprintf("%s/v1/capture?url=%s", c.baseURL, url.QueryEscape("https://"+domain))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, captureURL, nil)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		observability.ObserveVendorRequest("screenshot", "error", start)
		return "", models.NewUpstreamError("Screenshot", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		observability.ObserveVendorRequest("screenshot", "error", start)
		return "", models.NewUpstreamError("Screenshot", fmt.Errorf("vendor returned status %d", resp.StatusCode))
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxScreenshotBytes))
	if err != nil {
		observability.ObserveVendorRequest("screenshot", "error", start)
		return "", models.NewUpstreamError("Screenshot", err)
	}
	observability.ObserveVendorRequest("screenshot", "ok", start)

	decoded, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", models.NewUpstreamError("Screenshot", fmt.Errorf("vendor returned an undecodable image: %w", err))
	}

	thumb := resizeToFit(decoded, thumbMaxWidth, thumbMaxHeight)
	webpBytes, err := encodeWebP(thumb, webpQuality)
	if err != nil {
		return "", models.NewInternalError(err)
	}

	sum := sha256.Sum256([]byte(domain))
	rel := filepath.ToSlash(filepath.Join("screenshots", hex.EncodeToString(sum[:8])+".webp"))
	if err := writeBytesToFile(filepath.Join(c.uploadDir, rel), webpBytes); err != nil {
		return "", models.NewInternalError(err)
	}
	return rel, nil
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scaleW := float64(maxWidth) / float64(w)
	scaleH := float64(maxHeight) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeBytesToFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
