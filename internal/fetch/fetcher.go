package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"
)

// defaultMaxBodySize is used when no limit is configured.
const defaultMaxBodySize = 10 * 1024 * 1024

// Fetcher downloads pages with timeout-only retries.
// A Fetcher holds no per-URL state and never caches responses.
type Fetcher struct {
	// client performs the requests.
	client *http.Client

	// timeout is the deadline of a single attempt, body included.
	timeout time.Duration

	// maxRetries is the number of attempts allowed when they time out.
	maxRetries uint

	// userAgent is the User-Agent header to send.
	userAgent string

	// cookie is sent verbatim as the Cookie header when non-empty.
	cookie string

	// headers are extra request headers.
	headers map[string]string

	// maxBodySize limits how much of a body is read.
	maxBodySize int64

	// logger receives one debug line per timed out attempt.
	logger *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithCookie sets the Cookie header.
func WithCookie(cookie string) Option {
	return func(f *Fetcher) {
		f.cookie = cookie
	}
}

// WithHeaders adds request headers.
func WithHeaders(headers map[string]string) Option {
	return func(f *Fetcher) {
		f.headers = headers
	}
}

// WithMaxBodySize sets the maximum response body size.
// Values <= 0 keep the default.
func WithMaxBodySize(size int64) Option {
	return func(f *Fetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// New creates a Fetcher.
// A non-positive timeout or a zero retry budget is a programming error and
// panics; user input is validated by the config package before this point.
func New(client *http.Client, timeout time.Duration, maxRetries uint, opts ...Option) *Fetcher {
	if timeout <= 0 {
		panic("fetch: timeout must be positive")
	}
	if maxRetries == 0 {
		panic("fetch: maxRetries must be at least 1")
	}
	if client == nil {
		client = http.DefaultClient
	}

	f := &Fetcher{
		client:      client,
		timeout:     timeout,
		maxRetries:  maxRetries,
		maxBodySize: defaultMaxBodySize,
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.logger == nil {
		f.logger = slog.Default()
	}

	return f
}

// Fetch returns the body of rawURL decoded as UTF-8 text.
//
// Attempts that time out are retried until maxRetries attempts were made,
// after which the returned error matches ErrTimedOut. Any other error is
// returned immediately. Cancelling ctx stops the fetch with ctx.Err().
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	for attempt := uint(1); attempt <= f.maxRetries; attempt++ {
		body, err := f.attempt(ctx, rawURL)
		if err == nil {
			return body, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if !isTimeout(err) {
			return "", err
		}

		f.logger.Debug("fetch attempt timed out",
			"url", rawURL,
			"attempt", attempt,
			"maxRetries", f.maxRetries,
			"timeout", f.timeout,
		)
	}

	return "", fmt.Errorf("%w: %d attempt(s) of %s for %s", ErrTimedOut, f.maxRetries, f.timeout, rawURL)
}

// attempt performs a single request under its own deadline.
func (f *Fetcher) attempt(ctx context.Context, rawURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}

	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}
	if f.cookie != "" {
		req.Header.Set("Cookie", f.cookie)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	reader, err := charset.NewReader(io.LimitReader(resp.Body, f.maxBodySize), resp.Header.Get("Content-Type"))
	if err != nil {
		return "", err
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}

	return string(body), nil
}

// isTimeout reports whether err was caused by an attempt deadline.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
