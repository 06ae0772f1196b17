// Package eloqua talks to the Eloqua Bulk 2.0 and REST 2.0 APIs: exports,
// imports, syncs, paged data retrieval, and custom object instances.
package eloqua

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/carlmjohnson/requests"
	"github.com/tidwall/gjson"

	"github.com/dbsmedya/cdosync/internal/config"
	"github.com/dbsmedya/cdosync/internal/logger"
)

// API path prefixes below the instance base URL.
const (
	BulkPath = "/api/bulk/2.0"
	RestPath = "/api/REST/2.0"
)

// Client is an authenticated Eloqua API client. The instance base URL is
// discovered on first use unless configured.
type Client struct {
	http     *http.Client
	loginURL string
	baseURL  string
	user     string
	password string
	log      *logger.Logger
}

// NewClient creates a Client from configuration.
func NewClient(cfg config.EloquaConfig, log *logger.Logger) *Client {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Client{
		http:     &http.Client{Timeout: cfg.Timeout()},
		loginURL: cfg.LoginURL,
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		user:     cfg.Site + `\` + cfg.Username,
		password: cfg.Password,
		log:      log,
	}
}

// BaseURL returns the resolved instance URL, empty before discovery.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Discover resolves the instance base URL from the login service.
func (c *Client) Discover(ctx context.Context) error {
	if c.baseURL != "" {
		return nil
	}

	var body string
	err := requests.
		URL(c.loginURL).
		Client(c.http).
		BasicAuth(c.user, c.password).
		ToString(&body).
		Fetch(ctx)
	if err != nil {
		return fmt.Errorf("failed to discover eloqua base url: %w", err)
	}

	base := gjson.Get(body, "urls.base").String()
	if base == "" {
		return errors.New("failed to discover eloqua base url: login response has no urls.base")
	}
	c.baseURL = strings.TrimSuffix(base, "/")
	c.log.Debugf("Resolved Eloqua base URL %s", c.baseURL)
	return nil
}

func (c *Client) builder(ctx context.Context, path string) (*requests.Builder, error) {
	if err := c.Discover(ctx); err != nil {
		return nil, err
	}
	return requests.
		URL(c.baseURL).
		Client(c.http).
		Path(path).
		BasicAuth(c.user, c.password), nil
}

func (c *Client) bulk(ctx context.Context, path string) (*requests.Builder, error) {
	return c.builder(ctx, BulkPath+path)
}

func (c *Client) rest(ctx context.Context, path string) (*requests.Builder, error) {
	return c.builder(ctx, RestPath+path)
}

// fetch executes b and parses a JSON response. Error bodies are attached to
// the returned error.
func fetch(ctx context.Context, b *requests.Builder, what string) (gjson.Result, error) {
	var body, errBody string
	err := b.
		ToString(&body).
		AddValidator(requests.ValidatorHandler(requests.DefaultValidator, requests.ToString(&errBody))).
		Fetch(ctx)
	if err != nil {
		if errBody = strings.TrimSpace(errBody); errBody != "" {
			return gjson.Result{}, fmt.Errorf("failed to %s: %w: %s", what, err, errBody)
		}
		return gjson.Result{}, fmt.Errorf("failed to %s: %w", what, err)
	}
	if body == "" {
		return gjson.Result{}, nil
	}
	if !gjson.Valid(body) {
		return gjson.Result{}, fmt.Errorf("failed to %s: invalid json response", what)
	}
	return gjson.Parse(body), nil
}
