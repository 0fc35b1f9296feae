package dcengine

import "context"

// Runner is the shape every site engine exposes to the CLI dispatcher
// (spec.md §1 "the top-level dispatcher that routes by crawler code to a
// site-specific engine" — specified here only as the interface external
// callers consume).
type Runner interface {
	StartCrawling(ctx context.Context) error
}

var _ Runner = (*Engine)(nil)
