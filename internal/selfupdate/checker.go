package selfupdate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"time"
)

const (
	checkTimeout = 10 * time.Second

	maxMetadataBytes = 1 << 20
	maxAssetBytes    = 200 << 20
)

// Checker queries a release Source and installs releases from it.
type Checker struct {
	src    Source
	client *http.Client
	log    *slog.Logger

	goos, goarch string
	execPath     func() (string, error)
}

// Option configures a Checker.
type Option func(*Checker)

// WithTimeout bounds each HTTP request.
func WithTimeout(d time.Duration) Option {
	return func(c *Checker) { c.client.Timeout = d }
}

// WithLogger sends progress and failures to l instead of slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(c *Checker) { c.log = l }
}

func withPlatform(goos, goarch string) Option {
	return func(c *Checker) { c.goos, c.goarch = goos, goarch }
}

func withExecPath(fn func() (string, error)) Option {
	return func(c *Checker) { c.execPath = fn }
}

// New returns a Checker for src. Empty Source fields take their defaults.
func New(src Source, opts ...Option) (*Checker, error) {
	src, err := src.withDefaults()
	if err != nil {
		return nil, err
	}
	c := &Checker{
		src:      src,
		client:   &http.Client{Timeout: checkTimeout},
		goos:     runtime.GOOS,
		goarch:   runtime.GOARCH,
		execPath: os.Executable,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	c.log = c.log.With("component", "selfupdate", "repo", src.Repo)
	return c, nil
}

// Latest returns the newest published release.
func (c *Checker) Latest(ctx context.Context) (Release, error) {
	body, err := c.get(ctx, c.src.latestURL(), maxMetadataBytes, "application/vnd.github+json")
	if err != nil {
		return Release{}, fmt.Errorf("fetch latest release: %w", err)
	}
	var rel Release
	if err := json.Unmarshal(body, &rel); err != nil {
		return Release{}, fmt.Errorf("decode release: %w", err)
	}
	if rel.Tag == "" {
		return Release{}, fmt.Errorf("latest release has no tag")
	}
	return rel, nil
}

// Check compares current with the latest release.
func (c *Checker) Check(ctx context.Context, current string) (*Notice, error) {
	rel, err := c.Latest(ctx)
	if err != nil {
		c.log.Warn("update check failed", "err", err)
		return nil, err
	}
	n := &Notice{Current: current, Latest: rel}
	c.log.Debug("update check", "current", current, "latest", rel.Tag, "available", n.Available())
	return n, nil
}

func (c *Checker) get(ctx context.Context, url string, limit int64, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}
	return io.ReadAll(io.LimitReader(resp.Body, limit))
}
