package dcfetch

import (
	"math/rand"
	"net/url"
)

// userAgents is a small pool of realistic desktop browser User-Agent
// strings, sampled uniformly per request (spec.md §4.1).
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36 Edg/123.0.0.0",
}

// RandomUserAgent returns one User-Agent sampled uniformly from the pool.
func RandomUserAgent() string {
	return userAgents[rand.Intn(len(userAgents))]
}

// ApplyGetHeaders sets the headers a GET to a listing or post-view page
// should carry: an HTML-flavored Accept and a same-origin Referer.
func ApplyGetHeaders(req *url.URL, setHeader func(key, value string)) {
	setHeader("User-Agent", RandomUserAgent())
	setHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	origin := &url.URL{Scheme: req.Scheme, Host: req.Host}
	setHeader("Referer", origin.String())
}

// ApplyPostHeaders sets the headers a POST to the comment API should carry:
// a JSON/JS-flavored Accept, the XHR marker header, form-url-encoded content
// type, and a Referer pinned to the run's configured URL (or site root).
func ApplyPostHeaders(runURL string, setHeader func(key, value string)) {
	setHeader("User-Agent", RandomUserAgent())
	setHeader("Accept", "application/json, text/javascript, */*; q=0.01")
	setHeader("X-Requested-With", "XMLHttpRequest")
	setHeader("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	setHeader("Referer", runURL)
}
