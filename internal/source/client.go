// Package source fetches remote datasets over HTTP.
//
// Small files are streamed through [Client.Open], which decodes gzip and strips
// a BOM on the fly. Files that need random access, such as Parquet, are copied
// to a temporary file by [Client.Download].
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/JonMunkholm/nyctaxi/internal/core"
	"github.com/JonMunkholm/nyctaxi/internal/logging"
	"github.com/klauspost/compress/gzip"
)

// StatusError is returned when the server answers with anything but 200.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %s", e.URL, e.Status)
}

// Client fetches remote datasets.
type Client struct {
	http      *http.Client
	userAgent string
	tempDir   string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTempDir sets where downloads are staged. Defaults to os.TempDir.
func WithTempDir(dir string) Option {
	return func(c *Client) { c.tempDir = dir }
}

// New creates a Client. A zero timeout means requests are bounded only by
// their context.
func New(timeout time.Duration, userAgent string, opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ core.Fetcher = (*Client)(nil)

func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode, Status: resp.Status}
	}
	return resp, nil
}

// Open streams the resource at rawURL. Bodies whose path ends in .gz are
// gzip-decoded; a leading BOM is removed either way.
func (c *Client) Open(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	resp, err := c.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	counter := NewCountingReader(resp.Body, resp.ContentLength)
	s := &stream{ctx: ctx, url: rawURL, body: resp.Body, counter: counter}

	var r io.Reader = counter
	if isGzip(rawURL) {
		gz, err := gzip.NewReader(counter)
		if err != nil {
			resp.Body.Close()
			return nil, fmt.Errorf("open gzip stream: %w", err)
		}
		s.gz = gz
		r = gz
	}
	s.Reader = NewBOMSkippingReader(r)

	logging.FromContext(ctx).Debug("source opened", "url", rawURL, "content_length", resp.ContentLength)
	return s, nil
}

// Download copies the resource at rawURL to a temporary file and returns it
// positioned at the start. Closing the file removes it.
func (c *Client) Download(ctx context.Context, rawURL string) (core.RemoteFile, error) {
	resp, err := c.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	f, err := os.CreateTemp(c.tempDir, "nyctaxi-*"+path.Ext(urlPath(rawURL)))
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmp := &tempFile{File: f}

	start := time.Now()
	counter := NewCountingReader(resp.Body, resp.ContentLength)
	if _, err := io.Copy(f, counter); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("download %s: %w", rawURL, err)
	}
	if !counter.Complete() {
		tmp.Close()
		return nil, fmt.Errorf("download %s: got %d of %d bytes: %w", rawURL, counter.BytesRead, counter.Total, io.ErrUnexpectedEOF)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("rewind %s: %w", f.Name(), err)
	}

	logging.FromContext(ctx).Info("download complete",
		"url", rawURL,
		"bytes", counter.BytesRead,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return tmp, nil
}

func urlPath(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil {
		return u.Path
	}
	return rawURL
}

func isGzip(rawURL string) bool {
	return strings.HasSuffix(strings.ToLower(urlPath(rawURL)), ".gz")
}

// stream is the body returned by Open.
type stream struct {
	io.Reader
	ctx     context.Context
	url     string
	body    io.ReadCloser
	gz      *gzip.Reader
	counter *CountingReader
}

func (s *stream) Close() error {
	if s.gz != nil {
		s.gz.Close()
	}
	logging.FromContext(s.ctx).Debug("source closed", "url", s.url, "bytes", s.counter.BytesRead)
	return s.body.Close()
}

// tempFile removes itself on Close.
type tempFile struct {
	*os.File
}

func (t *tempFile) Close() error {
	err := t.File.Close()
	if rmErr := os.Remove(t.File.Name()); rmErr != nil && err == nil {
		err = rmErr
	}
	return err
}
