// Package render turns Mermaid description documents into SVG graphics using a
// Kroki-compatible rendering service.
package render

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-discovery/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-discovery/pkg/config"
	"github.com/ekaya-inc/ekaya-discovery/pkg/retry"
)

// DefaultTimeout is the maximum time to wait for the renderer.
const DefaultTimeout = 15 * time.Second

// maxGraphicBytes bounds the size of a rendered graphic.
const maxGraphicBytes = 4 << 20

// Graphic is a rendered diagram.
type Graphic struct {
	ContentType string
	Data        []byte
}

// Renderer renders a description document into a graphic.
type Renderer interface {
	Render(ctx context.Context, doc string) (*Graphic, error)
}

// statusError is a non-200 answer from the renderer.
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("renderer returned status %d: %s", e.status, e.body)
}

// IsRetryable implements retry.RetryableError. Only server-side failures are
// retried; a 4xx means the document itself did not parse.
func (e *statusError) IsRetryable() bool {
	return e.status >= http.StatusInternalServerError
}

// KrokiClient renders Mermaid documents through a Kroki server.
type KrokiClient struct {
	baseURL    string
	httpClient *http.Client
	retry      *retry.Config
	logger     *zap.Logger
}

// NewKrokiClient creates a renderer for the server at cfg.URL.
func NewKrokiClient(cfg *config.RendererConfig, logger *zap.Logger) (*KrokiClient, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("renderer URL is required")
	}
	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, fmt.Errorf("invalid renderer URL: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &KrokiClient{
		baseURL:    cfg.URL,
		httpClient: &http.Client{Timeout: timeout},
		retry:      retry.DefaultConfig(),
		logger:     logger.Named("render"),
	}, nil
}

// Render posts doc to {url}/mermaid/svg and returns the SVG. Failures wrap
// apperrors.ErrRender.
func (c *KrokiClient) Render(ctx context.Context, doc string) (*Graphic, error) {
	if strings.TrimSpace(doc) == "" {
		return nil, fmt.Errorf("%w: empty description document", apperrors.ErrRender)
	}

	endpoint, err := buildURL(c.baseURL, "mermaid", "svg")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrRender, err)
	}

	var graphic *Graphic
	cfg := c.retry.With(func(attempt int, err error, wait time.Duration) {
		c.logger.Debug("Retrying diagram render",
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err))
	})
	err = retry.DoIfRetryable(ctx, cfg, func() error {
		var renderErr error
		graphic, renderErr = c.post(ctx, endpoint, doc)
		return renderErr
	})
	if err != nil {
		c.logger.Warn("Diagram rendering failed",
			zap.String("url", endpoint),
			zap.Int("doc_len", len(doc)),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %w", apperrors.ErrRender, err)
	}

	c.logger.Debug("Rendered diagram",
		zap.Int("doc_len", len(doc)),
		zap.Int("svg_len", len(graphic.Data)))
	return graphic, nil
}

func (c *KrokiClient) post(ctx context.Context, endpoint, doc string) (*Graphic, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Accept", "image/svg+xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call renderer: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxGraphicBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{status: resp.StatusCode, body: strings.TrimSpace(string(body))}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/svg+xml"
	}
	return &Graphic{ContentType: contentType, Data: body}, nil
}

// buildURL constructs a URL by parsing the base and joining path segments.
func buildURL(baseURL string, pathSegments ...string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}

	segments := append([]string{u.Path}, pathSegments...)
	u.Path = path.Join(segments...)

	return u.String(), nil
}

var _ Renderer = (*KrokiClient)(nil)
