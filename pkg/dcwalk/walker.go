// Package dcwalk implements the stateful listing walker: the paginator
// that traverses a scenario's listing pages in blocks, ingesting rows and
// deciding when to stop (spec.md §4.4). Grounded on the teacher's
// Crawler.Run phase-sequencing style in pkg/crawler/crawler.go, adapted
// from a worker-pool/queue design to the spec's single sequential flow —
// the teacher's ThreadSafePriorityQueue is intentionally not reused here
// (see DESIGN.md).
package dcwalk

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kimjiho/dcrawl/pkg/dcerrors"
	"github.com/kimjiho/dcrawl/pkg/dcfetch"
	"github.com/kimjiho/dcrawl/pkg/dcmodel"
	"github.com/kimjiho/dcrawl/pkg/dcparse"
	"github.com/kimjiho/dcrawl/pkg/dcrepo"
	"github.com/kimjiho/dcrawl/pkg/dcurl"
)

const innerPageJitterBase = 1000 * time.Millisecond
const blockJitterBase = 1000 * time.Millisecond

// Walker traverses a scenario's listing pages and accumulates candidate
// platform post IDs, in ascending-by-discovery order (spec.md §4.4).
type Walker struct {
	Fetcher    *dcfetch.Fetcher
	Repo       dcrepo.PostStore
	ScenarioID string
	Mode       dcmodel.CrawlMode
	DateFrom   *time.Time // nil disables the date-cutoff stop condition

	// Seen is the ephemeral in-run ID set (spec.md §3). A caller-supplied
	// Seen lets the owning Engine hold the set across the whole run; a
	// nil Seen is filled in with a fresh, Run-scoped set.
	Seen *InRunSet

	// ShouldCancel is polled before every listing page fetch (spec.md
	// §4.6). A nil func is treated as "never cancel".
	ShouldCancel func() bool

	Log *logrus.Entry
}

// Run walks the listing starting at startURL and returns the set of
// newly discovered platform post IDs queued for detail fetch, in
// discovery order. A post already present in Seen — because an earlier
// page or block in this same walk queued it, which happens routinely
// when new posts shift listing pagination mid-crawl — is skipped rather
// than queued again (spec.md §3, §8 invariant 2).
func (w *Walker) Run(ctx context.Context, startURL string) ([]dcmodel.PlatformPostID, error) {
	if w.Seen == nil {
		w.Seen = NewInRunSet()
	}
	var queued []dcmodel.PlatformPostID
	currentURL := startURL

	for currentURL != "" {
		if w.cancelled() {
			return queued, nil
		}

		body, err := w.Fetcher.Send(ctx, "GET", currentURL, nil, nil, currentURL)
		if err != nil {
			return queued, fmt.Errorf("fetching listing page %s: %w", currentURL, err)
		}

		doc, err := newDocument(body)
		if err != nil {
			if w.Log != nil {
				w.Log.WithError(err).WithField("url", currentURL).Warn("skipping unparseable listing page")
			}
			return queued, nil
		}

		rows, err := dcparse.ParseListingRows(doc, w.Mode)
		if err != nil {
			return queued, fmt.Errorf("parsing listing rows at %s: %w", currentURL, err)
		}

		ids, stop, err := w.ingest(ctx, currentURL, rows)
		queued = append(queued, ids...)
		if err != nil {
			return queued, err
		}
		if stop {
			return queued, nil
		}

		pagination := dcparse.ParsePagination(doc, w.Mode)

		for _, pageHref := range pagination.PageHrefs {
			if w.cancelled() {
				return queued, nil
			}
			dcfetch.SleepJittered(ctx, innerPageJitterBase)

			pageURL, err := resolveHref(currentURL, pageHref)
			if err != nil {
				continue // invalid absolute-URL resolution → skip (spec.md §4.3)
			}

			body, err := w.Fetcher.Send(ctx, "GET", pageURL, nil, nil, pageURL)
			if err != nil {
				return queued, fmt.Errorf("fetching listing inner page %s: %w", pageURL, err)
			}
			innerDoc, err := newDocument(body)
			if err != nil {
				continue
			}
			innerRows, err := dcparse.ParseListingRows(innerDoc, w.Mode)
			if err != nil {
				continue
			}

			ids, stop, err := w.ingest(ctx, pageURL, innerRows)
			queued = append(queued, ids...)
			if err != nil {
				return queued, err
			}
			if stop {
				return queued, nil
			}
		}

		if pagination.BlockNext == "" {
			return queued, nil
		}

		blockNextURL, err := resolveHref(currentURL, pagination.BlockNext)
		if err != nil {
			return queued, nil
		}
		dcfetch.SleepJittered(ctx, blockJitterBase)
		currentURL = blockNextURL
	}

	return queued, nil
}

// ingest resolves each row to a platform ID and applies the stop
// conditions of spec.md §4.4: an already-persisted post signals the
// previous incremental frontier was reached; a row older than DateFrom
// signals the date cutoff. Both conditions halt the walk immediately,
// discarding the remainder of the current and all subsequent rows. A
// row whose ID was already queued earlier in this same run is skipped
// without halting the walk — it is a pagination overlap, not a frontier.
func (w *Walker) ingest(ctx context.Context, pageURL string, rows []dcparse.ListingRow) (ids []dcmodel.PlatformPostID, stop bool, err error) {
	for _, row := range rows {
		absHref, err := resolveHref(pageURL, row.Href)
		if err != nil {
			continue // invalid absolute-URL resolution → skip (spec.md §4.3)
		}

		platformID, err := dcurl.URLToPlatformID(absHref)
		if err != nil {
			continue // invalid url → skip, never fatal to the walk (spec.md §7)
		}

		if w.DateFrom != nil && !row.WrittenAt.IsZero() && row.WrittenAt.Before(*w.DateFrom) {
			return ids, true, nil
		}

		existing, err := w.Repo.FindPostByPlatformID(ctx, w.ScenarioID, platformID)
		if err != nil {
			return ids, false, fmt.Errorf("%w: checking existing post: %v", dcerrors.ErrBackend, err)
		}
		if existing != nil {
			return ids, true, nil
		}

		if !w.Seen.AddIfNew(platformID) {
			continue
		}

		ids = append(ids, platformID)
	}
	return ids, false, nil
}

func (w *Walker) cancelled() bool {
	return w.ShouldCancel != nil && w.ShouldCancel()
}

func resolveHref(baseURL, href string) (string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	resolved := base.ResolveReference(ref)
	if resolved.Host == "" {
		return "", fmt.Errorf("resolved href has no host: %s", href)
	}
	return resolved.String(), nil
}
