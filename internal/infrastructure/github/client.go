// Package github fetches a user's public repositories from the GitHub REST
// API, with a shared cache in front of it.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/devconnector/connector-api/internal/api/metrics"
	"github.com/devconnector/connector-api/internal/core/domain"
)

const (
	DefaultBaseURL = "https://api.github.com"
	requestTimeout = 10 * time.Second
	maxBody        = 1 << 20
	reposPerPage   = "5"
)

// Cache stores raw repository listings by username.
type Cache interface {
	Get(ctx context.Context, username string) (json.RawMessage, bool, error)
	Set(ctx context.Context, username string, repos json.RawMessage) error
}

type Config struct {
	BaseURL string
	Token   string
}

// Client implements ports.RepoFetcher.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	cache   Cache
	group   singleflight.Group
	log     zerolog.Logger
}

// NewClient builds a Client. cache may be nil.
func NewClient(cfg Config, cache Cache, log zerolog.Logger) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{
		baseURL: base,
		token:   cfg.Token,
		http:    &http.Client{Timeout: requestTimeout},
		cache:   cache,
		log:     log,
	}
}

// Repos returns the user's five oldest-created public repositories, passed
// through as GitHub sent them. Any non-200 answer is domain.ErrReposNotFound.
// Concurrent calls for the same username share one upstream request.
func (c *Client) Repos(ctx context.Context, username string) (json.RawMessage, error) {
	key := strings.ToLower(username)

	if c.cache != nil {
		repos, ok, err := c.cache.Get(ctx, key)
		if err != nil {
			c.log.Warn().Err(err).Str("username", key).Msg("github cache read failed")
		}
		if ok {
			metrics.GitHubLookupsTotal.WithLabelValues("cache").Inc()
			return repos, nil
		}
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		return c.fetch(context.WithoutCancel(ctx), username)
	})
	if err != nil {
		return nil, err
	}
	repos := v.(json.RawMessage)

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, repos); err != nil {
			c.log.Warn().Err(err).Str("username", key).Msg("github cache write failed")
		}
	}
	return repos, nil
}

func (c *Client) fetch(ctx context.Context, username string) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("per_page", reposPerPage)
	q.Set("sort", "created")
	q.Set("direction", "asc")
	endpoint := fmt.Sprintf("%s/users/%s/repos?%s", c.baseURL, url.PathEscape(username), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("github request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "connector-api")
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.GitHubLookupsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("github request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.GitHubLookupsTotal.WithLabelValues("not_found").Inc()
		c.log.Debug().Str("username", username).Int("status", resp.StatusCode).Msg("github lookup rejected")
		return nil, domain.ErrReposNotFound
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		metrics.GitHubLookupsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("github read: %w", err)
	}
	if !json.Valid(body) {
		metrics.GitHubLookupsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("github: malformed response body")
	}

	metrics.GitHubLookupsTotal.WithLabelValues("upstream").Inc()
	return json.RawMessage(body), nil
}
