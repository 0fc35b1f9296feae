// Package dcerrors defines the named error conditions the DCInside crawl
// pipeline catches on, and a classifier used for structured logging.
package dcerrors

import (
	"errors"
	"strings"
)

// Sentinel errors. Layers above the HTTP client wrap these with fmt.Errorf's
// %w so callers can still errors.Is against the category.
var (
	// ErrInvalidURL means a URL could not be decoded into a DCInside platform ID.
	// Fatal to the offending call; never retried.
	ErrInvalidURL = errors.New("invalid dcinside url")

	// ErrRateLimited means the upstream returned 429. Eligible for backoff.
	ErrRateLimited = errors.New("rate limited")

	// ErrNotFound means the upstream returned 404. Treated as deleted content.
	ErrNotFound = errors.New("not found")

	// ErrHTTPServer covers 5xx responses, retried by the fetcher.
	ErrHTTPServer = errors.New("server http error")

	// ErrHTTPOther covers every status outside 2xx/3xx that is not 404, 429
	// or 5xx (for example 400 or 403).
	ErrHTTPOther = errors.New("other http error")

	// ErrRetriesExhausted wraps the last error once all retry attempts failed.
	ErrRetriesExhausted = errors.New("retries exhausted")

	// ErrEndOfPage signals the normal end of a paginated listing or comment thread.
	ErrEndOfPage = errors.New("end of page")

	// ErrParse covers malformed HTML/JSON/date content; the offending item is skipped.
	ErrParse = errors.New("parse error")

	// ErrConfig means required input for the selected mode was missing at construction.
	ErrConfig = errors.New("config error")

	// ErrBackend wraps a repository failure; fatal for the run.
	ErrBackend = errors.New("backend error")

	// ErrRedirectedOutOfBoard means a redirect moved a request to a gallery
	// variant outside the one the request targeted.
	ErrRedirectedOutOfBoard = errors.New("redirected out of board")

	// ErrNotImplemented marks a Runner whose site support is a stub.
	ErrNotImplemented = errors.New("not implemented")
)

// Category names returned by Categorize, stable strings suitable for log
// fields or metrics labels.
const (
	CategoryInvalidURL     = "InvalidURL"
	CategoryRateLimited    = "RateLimited"
	CategoryNotFound       = "NotFound"
	CategoryHTTPServer     = "HTTPServer"
	CategoryHTTPOther      = "HTTPOther"
	CategoryRetryExhaust   = "RetriesExhausted"
	CategoryEndOfPage      = "EndOfPage"
	CategoryParse          = "Parse"
	CategoryConfig         = "Config"
	CategoryBackend        = "Backend"
	CategoryScope          = "RedirectedOutOfBoard"
	CategoryContextCancel  = "ContextCanceled"
	CategoryNotImplemented = "NotImplemented"
	CategoryUnknown        = "Unknown"
)

// Categorize maps an error to a stable category string for logging.
func Categorize(err error) string {
	if err == nil {
		return "None"
	}
	switch {
	case errors.Is(err, ErrRetriesExhausted):
		return CategoryRetryExhaust
	case errors.Is(err, ErrInvalidURL):
		return CategoryInvalidURL
	case errors.Is(err, ErrRateLimited):
		return CategoryRateLimited
	case errors.Is(err, ErrNotFound):
		return CategoryNotFound
	case errors.Is(err, ErrHTTPServer):
		return CategoryHTTPServer
	case errors.Is(err, ErrHTTPOther):
		return CategoryHTTPOther
	case errors.Is(err, ErrEndOfPage):
		return CategoryEndOfPage
	case errors.Is(err, ErrParse):
		return CategoryParse
	case errors.Is(err, ErrConfig):
		return CategoryConfig
	case errors.Is(err, ErrBackend):
		return CategoryBackend
	case errors.Is(err, ErrRedirectedOutOfBoard):
		return CategoryScope
	case errors.Is(err, ErrNotImplemented):
		return CategoryNotImplemented
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "context canceled") || strings.Contains(msg, "deadline exceeded") {
		return CategoryContextCancel
	}
	return CategoryUnknown
}
