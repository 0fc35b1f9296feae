package dcfetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/kimjiho/dcrawl/pkg/dcerrors"
)

// Fetcher issues requests with site-tuned headers and classifies/retries
// failures per spec.md §4.1. Grounded on the teacher's
// pkg/fetch/fetcher.go FetchWithRetry retry loop.
type Fetcher struct {
	client     *http.Client
	maxRetries int // retries after the first attempt; 3 per spec.md
	log        *logrus.Entry

	// sem, when set, caps the number of in-flight requests across every
	// Fetcher sharing it — the mechanism multiple concurrently-running
	// engine instances (spec.md §5 "they share nothing mutable") use to
	// stay under one global upstream concurrency budget.
	sem *semaphore.Weighted
}

// NewFetcher builds a Fetcher. maxRetries is the number of retries
// attempted after the initial try, so a request makes at most
// maxRetries+1 attempts (4 with the default of 3).
func NewFetcher(client *http.Client, maxRetries int, log *logrus.Entry) *Fetcher {
	return &Fetcher{client: client, maxRetries: maxRetries, log: log}
}

// WithSemaphore returns a shallow copy of f that acquires/releases sem
// around every request attempt, for callers sharing one in-flight-request
// budget across multiple Fetcher instances.
func (f *Fetcher) WithSemaphore(sem *semaphore.Weighted) *Fetcher {
	clone := *f
	clone.sem = sem
	return &clone
}

// Params is the set of query parameters merged into a GET URL.
type Params map[string]string

// Send performs an HTTP request with the spec's retry/backoff policy.
// For GET, params are merged into the URL query string and a GET Accept
// header is set. For POST, body is sent as application/x-www-form-urlencoded
// and a JSON/XHR Accept header is set. runURL is used as the POST Referer.
func (f *Fetcher) Send(ctx context.Context, method, rawURL string, params Params, body url.Values, runURL string) ([]byte, error) {
	reqURL, err := buildURL(rawURL, method, params)
	if err != nil {
		return nil, fmt.Errorf("%w: building request url: %v", dcerrors.ErrInvalidURL, err)
	}

	var lastErr error
	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(1<<uint(attempt)) * time.Second // 2^k * 1000ms, k 1-indexed (attempt IS k)
			if f.log != nil {
				f.log.WithFields(logrus.Fields{"attempt": attempt, "delay": delay, "url": reqURL}).Warn("retrying request")
			}
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		respBody, statusErr := f.attempt(ctx, method, reqURL, body, runURL)
		if statusErr == nil {
			return respBody, nil
		}
		lastErr = statusErr

		// NotFound is never retried.
		if errors.Is(statusErr, dcerrors.ErrNotFound) {
			return nil, statusErr
		}
	}

	return nil, fmt.Errorf("%w: %w", dcerrors.ErrRetriesExhausted, lastErr)
}

func (f *Fetcher) attempt(ctx context.Context, method, reqURL string, body url.Values, runURL string) ([]byte, error) {
	if f.sem != nil {
		if err := f.sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer f.sem.Release(1)
	}

	var bodyReader io.Reader
	if method == http.MethodPost && body != nil {
		bodyReader = strings.NewReader(body.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	parsed, _ := url.Parse(reqURL)
	switch method {
	case http.MethodGet:
		ApplyGetHeaders(parsed, req.Header.Set)
	case http.MethodPost:
		ApplyPostHeaders(runURL, req.Header.Set)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	respBody = decodeBody(respBody, resp.Header.Get("Content-Type"))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 400:
		return respBody, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: status 404", dcerrors.ErrNotFound)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: status 429", dcerrors.ErrRateLimited)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d", dcerrors.ErrHTTPServer, resp.StatusCode)
	default:
		return nil, fmt.Errorf("%w: status %d", dcerrors.ErrHTTPOther, resp.StatusCode)
	}
}

func buildURL(rawURL, method string, params Params) (string, error) {
	if method != http.MethodGet || len(params) == 0 {
		return rawURL, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
