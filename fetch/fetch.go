// Package fetch downloads docking target resources (receptor
// structures and search-box configurations) over HTTP.
package fetch

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"godock/dockerr"
)

// DefaultTimeout bounds a single download.
const DefaultTimeout = 120 * time.Second

// Client performs timeout-bounded HTTP downloads.
type Client struct {
	http *http.Client
	log  *zap.Logger
}

// NewClient builds a Client. A zero timeout falls back to
// DefaultTimeout; a nil logger is replaced with a nop logger.
func NewClient(timeout time.Duration, log *zap.Logger) *Client {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		http: &http.Client{Timeout: timeout},
		log:  log,
	}
}

// Get fetches url and returns the response body. Non-200 statuses are
// errors.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, dockerr.Wrap(dockerr.KindTool, err, "bad request URL %s", url)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, dockerr.Wrap(dockerr.KindTool, err, "download of %s failed", url)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, dockerr.Tool("download of %s failed: HTTP status code %d", url, res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, dockerr.Wrap(dockerr.KindTool, err, "download of %s failed", url)
	}
	return body, nil
}

// FetchTarget downloads the receptor and search-box files for a named
// target into targetsDir, skipping files that already exist. baseURL
// is the directory-style prefix the files live under.
func (c *Client) FetchTarget(ctx context.Context, baseURL, name, targetsDir string) error {
	if err := os.MkdirAll(targetsDir, 0o755); err != nil {
		return dockerr.Wrap(dockerr.KindTool, err, "cannot create targets dir %s", targetsDir)
	}
	for _, file := range []string{name + "_receptor.pdbqt", name + "_conf.txt"} {
		dst := filepath.Join(targetsDir, file)
		if _, err := os.Stat(dst); err == nil {
			c.log.Debug("target file present", zap.String("file", dst))
			continue
		}
		body, err := c.Get(ctx, baseURL+"/"+file)
		if err != nil {
			return err
		}
		if err := os.WriteFile(dst, body, 0o644); err != nil {
			return dockerr.Wrap(dockerr.KindTool, err, "cannot write %s", dst)
		}
		c.log.Debug("target file downloaded", zap.String("file", dst))
	}
	return nil
}
