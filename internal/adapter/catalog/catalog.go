package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sm8ta/ridewise/internal/core/domain"
	"github.com/sm8ta/ridewise/internal/core/ports"
)

//go:embed service_types.json
var defaultServiceTypes []byte

const fetchTimeout = 10 * time.Second

type Options struct {
	URL  string
	Path string
}

// Catalog serves the service-type list. It is loaded once per process from a
// URL, a file, or the built-in list, and reloaded after Invalidate.
type Catalog struct {
	url    string
	path   string
	client *http.Client
	logger ports.LoggerPort

	mu     sync.Mutex
	cached []domain.ServiceType
}

func New(opts Options, logger ports.LoggerPort) *Catalog {
	return &Catalog{
		url:    strings.TrimSpace(opts.URL),
		path:   strings.TrimSpace(opts.Path),
		client: &http.Client{Timeout: fetchTimeout},
		logger: logger,
	}
}

func (c *Catalog) ServiceTypes(ctx context.Context) ([]domain.ServiceType, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached != nil {
		return clone(c.cached), nil
	}

	raw, source, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}
	var types []domain.ServiceType
	if err := json.Unmarshal(raw, &types); err != nil {
		return nil, fmt.Errorf("decode service types from %s: %w", source, err)
	}
	if types == nil {
		types = []domain.ServiceType{}
	}

	c.cached = types
	c.logger.Info("Service type catalog loaded", map[string]interface{}{
		"source": source,
		"count":  len(types),
	})
	return clone(types), nil
}

func (c *Catalog) Invalidate() {
	c.mu.Lock()
	c.cached = nil
	c.mu.Unlock()
}

func (c *Catalog) fetch(ctx context.Context) ([]byte, string, error) {
	switch {
	case c.url != "":
		data, err := c.fetchURL(ctx)
		return data, c.url, err
	case c.path != "":
		data, err := os.ReadFile(c.path)
		if err != nil {
			return nil, c.path, fmt.Errorf("read service types: %w", err)
		}
		return data, c.path, nil
	default:
		return defaultServiceTypes, "embedded", nil
	}
}

func (c *Catalog) fetchURL(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch service types: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch service types: unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read service types: %w", err)
	}
	return data, nil
}

func clone(types []domain.ServiceType) []domain.ServiceType {
	out := make([]domain.ServiceType, len(types))
	copy(out, types)
	return out
}
