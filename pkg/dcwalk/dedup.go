package dcwalk

import "github.com/kimjiho/dcrawl/pkg/dcmodel"

// InRunSet is the ephemeral set of platform post IDs queued for detail
// fetch during one startCrawling invocation (spec.md §3 "In-run dedup
// set"). It is never persisted and is scoped to a single run: a fresh
// Engine constructs a new, empty InRunSet for every StartCrawling call.
type InRunSet struct {
	seen map[dcmodel.PlatformPostID]struct{}
}

// NewInRunSet returns an empty set.
func NewInRunSet() *InRunSet {
	return &InRunSet{seen: make(map[dcmodel.PlatformPostID]struct{})}
}

// AddIfNew records id and reports true if it was not already present.
// A row re-encountered on a later listing page within the same walk
// (pagination can shift as new posts are written mid-crawl) reports
// false and must not be queued a second time.
func (s *InRunSet) AddIfNew(id dcmodel.PlatformPostID) bool {
	if _, ok := s.seen[id]; ok {
		return false
	}
	s.seen[id] = struct{}{}
	return true
}
