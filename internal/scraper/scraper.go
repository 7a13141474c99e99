package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/net/html/charset"

	"github.com/pfrederiksen/sdo-timeline/internal/logger"
)

const (
	UserAgent = "sdo-timeline/1.0 (github.com/pfrederiksen/sdo-timeline)"
	Timeout   = 30 * time.Second
	Retries   = 3
)

// Document is the decoded body of one fetched source
type Document struct {
	URL     string
	Body    []byte
	Missing bool // the source answered "not found"; Body is empty
}

// Scraper fetches documents over HTTP or from the local filesystem
type Scraper struct {
	client          *http.Client
	retries         int
	initialInterval time.Duration
	log             *logger.Logger
}

// Option configures a Scraper
type Option func(*Scraper)

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(s *Scraper) {
		s.client.Timeout = d
	}
}

// WithRetries sets how many times a failed request is retried
func WithRetries(n int) Option {
	return func(s *Scraper) {
		s.retries = n
	}
}

// WithBackoff sets the first retry delay; later delays grow exponentially
func WithBackoff(initial time.Duration) Option {
	return func(s *Scraper) {
		s.initialInterval = initial
	}
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(s *Scraper) {
		s.client = c
	}
}

// WithLogger sets the logger used for retry diagnostics
func WithLogger(l *logger.Logger) Option {
	return func(s *Scraper) {
		s.log = l
	}
}

// New creates a new Scraper instance
func New(opts ...Option) *Scraper {
	s := &Scraper{
		client: &http.Client{
			Timeout: Timeout,
		},
		retries:         Retries,
		initialInterval: 500 * time.Millisecond,
		log:             logger.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsRemote reports whether a location is fetched over HTTP
func IsRemote(location string) bool {
	u, err := url.Parse(location)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// Fetch retrieves and decodes a document. A 404 response or a missing local
// file yields a Document with Missing set and a nil error.
func (s *Scraper) Fetch(ctx context.Context, location string) (*Document, error) {
	if !IsRemote(location) {
		return s.readFile(location)
	}

	var doc *Document
	attempt := 0
	operation := func() error {
		attempt++
		d, err := s.get(ctx, location)
		if err != nil {
			var perm *backoff.PermanentError
			if !errors.As(err, &perm) {
				s.log.Warn("fetch failed, retrying", logger.Fields{
					"url":     location,
					"attempt": attempt,
					"error":   err.Error(),
				})
			}
			return err
		}
		doc = d
		return nil
	}

	if err := backoff.Retry(operation, s.backoff(ctx)); err != nil {
		return nil, fmt.Errorf("fetching %s: %w", location, err)
	}
	return doc, nil
}

func (s *Scraper) backoff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.initialInterval
	b.MaxElapsedTime = 0

	retries := s.retries
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx)
}

// get performs one request. Errors worth retrying are returned as is;
// everything else is wrapped with backoff.Permanent.
func (s *Scraper) get(ctx context.Context, location string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &Document{URL: location, Missing: true}, nil
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, backoff.Permanent(fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}

	body, err := decode(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	return &Document{URL: location, Body: body}, nil
}

func (s *Scraper) readFile(location string) (*Document, error) {
	name := strings.TrimPrefix(location, "file://")

	data, err := os.ReadFile(name)
	if errors.Is(err, fs.ErrNotExist) {
		return &Document{URL: location, Missing: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}

	body, err := decode(bytes.NewReader(data), "")
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return &Document{URL: location, Body: body}, nil
}

// decode converts a body to UTF-8 using the declared or sniffed charset
func decode(r io.Reader, contentType string) ([]byte, error) {
	utf8, err := charset.NewReader(r, contentType)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(utf8)
}
