package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
)

const (
	DefaultURL = "http://localhost:11434"
)

var ErrModelNotPulled = errors.New("ollama model not pulled")

// Client wraps the Ollama API client for the calls made outside of
// generation and embedding.
type Client struct {
	api      *api.Client
	required []string
}

// NewClient creates a new Ollama API client. A trailing "/api" on baseURL
// is accepted and ignored. Check fails unless every required model has
// been pulled.
func NewClient(baseURL string, c *http.Client, required ...string) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	baseURL = strings.TrimSuffix(strings.TrimSuffix(baseURL, "/"), "/api")

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama url %q: %w", baseURL, err)
	}
	if c == nil {
		c = http.DefaultClient
	}

	return &Client{api: api.NewClient(u, c), required: required}, nil
}

// Name implements system.Checker
func (c *Client) Name() string {
	return "ollama"
}

// Check implements system.Checker
func (c *Client) Check(ctx context.Context) error {
	if err := c.api.Heartbeat(ctx); err != nil {
		return fmt.Errorf("ollama heartbeat: %w", err)
	}
	for _, model := range c.required {
		if model == "" {
			continue
		}
		ok, err := c.HasModel(ctx, model)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s", ErrModelNotPulled, model)
		}
	}
	return nil
}

// HasModel reports whether model has been pulled on the server.
func (c *Client) HasModel(ctx context.Context, model string) (bool, error) {
	resp, err := c.api.List(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to list ollama models: %w", err)
	}
	for _, m := range resp.Models {
		if m.Name == model || m.Model == model || strings.TrimSuffix(m.Name, ":latest") == model {
			return true, nil
		}
	}
	return false, nil
}
