// Package hiscores fetches player snapshots from the hiscores proxy. It is
// the only part of the dashboard that talks to the network.
package hiscores

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/openmohaa/hiscores-dash/internal/models"
)

// Error kinds. Callers test with errors.Is.
var (
	ErrCanceled  = errors.New("hiscores: fetch canceled")
	ErrNotFound  = errors.New("hiscores: player not found")
	ErrTransport = errors.New("hiscores: transport error")
	ErrMalformed = errors.New("hiscores: malformed snapshot")
)

// MaxBodySize limits the size of a proxy response to 1MB
const MaxBodySize = 1048576

// DefaultBaseURL is the public hiscores proxy.
const DefaultBaseURL = "https://osrs-highscore-proxy.bensvatos.workers.dev/"

// Fetcher fetches one player's snapshot. Implementations must return an
// error wrapping ErrCanceled once ctx is done and must never return a
// snapshot after that.
type Fetcher interface {
	Fetch(ctx context.Context, player string) (*models.Snapshot, error)
}

// ClientConfig configures the HTTP client.
type ClientConfig struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client is the HTTP Fetcher.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.SugaredLogger
}

// NewClient creates a hiscores client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Client{
		baseURL: cfg.BaseURL,
		http:    cfg.HTTPClient,
		logger:  cfg.Logger.Sugar(),
	}
}

// Fetch requests ?player=<name> from the proxy.
func (c *Client) Fetch(ctx context.Context, player string) (*models.Snapshot, error) {
	start := time.Now()
	snap, err := c.fetch(ctx, player)
	fetchDuration.Observe(time.Since(start).Seconds())
	fetchTotal.WithLabelValues(outcomeLabel(err)).Inc()
	return snap, err
}

func (c *Client) fetch(ctx context.Context, player string) (*models.Snapshot, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: bad base url: %v", ErrTransport, err)
	}
	q := u.Query()
	q.Set("player", player)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if cerr := contextError(ctx); cerr != nil {
			return nil, cerr
		}
		c.logger.Warnw("Hiscores request failed", "player", player, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s (%d)", ErrNotFound, player, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		c.logger.Warnw("Hiscores returned non-success status", "player", player, "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: hiscores fetch failed (%d)", ErrTransport, resp.StatusCode)
	}

	var snap models.Snapshot
	if err := json.NewDecoder(io.LimitReader(resp.Body, MaxBodySize)).Decode(&snap); err != nil {
		if cerr := contextError(ctx); cerr != nil {
			return nil, cerr
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	// A response that raced the cancellation is still discarded
	if cerr := contextError(ctx); cerr != nil {
		return nil, cerr
	}
	if snap.Name == "" {
		snap.Name = player
	}
	return &snap, nil
}

// contextError classifies a finished context: explicit cancellation is
// ErrCanceled, an expired deadline is an ordinary transport failure.
func contextError(ctx context.Context) error {
	switch err := ctx.Err(); {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %v", ErrCanceled, err)
	default:
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
}

// IsCanceled reports whether err is a cancellation rather than a failure.
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled) || errors.Is(err, context.Canceled)
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case IsCanceled(err):
		return "canceled"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	}
	return "transport"
}
