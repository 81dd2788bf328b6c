package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	rerrors "github.com/modelmux/modelmux/pkg/errors"
	"github.com/modelmux/modelmux/pkg/types"
)

const (
	defaultFetchTimeout = 10 * time.Second
	maxCatalogBodySize  = 4 << 20 // 4 MiB
)

// HTTPSource fetches the catalog document from a GET endpoint serving
// {"models": [...], "default_model": "..."}. Any transport error, non-2xx
// status, or parse failure is reported as catalog_unavailable.
type HTTPSource struct {
	url    string
	client *http.Client
}

// NewHTTPSource creates a catalog source for the given URL.
// A zero timeout uses the default.
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &HTTPSource{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch performs one GET and decodes the catalog.
func (s *HTTPSource) Fetch(ctx context.Context) (*types.Catalog, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, rerrors.NewCatalogUnavailable("create request: " + err.Error())
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, rerrors.NewCatalogUnavailable("fetch catalog: " + err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, rerrors.NewCatalogUnavailable(
			fmt.Sprintf("catalog endpoint returned %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCatalogBodySize))
	if err != nil {
		return nil, rerrors.NewCatalogUnavailable("read catalog body: " + err.Error())
	}

	var cat types.Catalog
	if err := json.Unmarshal(body, &cat); err != nil {
		return nil, rerrors.NewCatalogUnavailable("parse catalog: " + err.Error())
	}

	if err := cat.Validate(); err != nil {
		return nil, rerrors.NewCatalogUnavailable("invalid catalog: " + err.Error())
	}

	return &cat, nil
}
