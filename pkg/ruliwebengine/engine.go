// Package ruliwebengine is the stub Ruliweb site engine, the other
// out-of-scope engine named in spec.md §1. Grounded loosely on the
// constructor shape of NewRuliwebCrawler in the retrieval pack's
// hotdealworker example (options struct in, crawler value out) even
// though the crawl body itself is unbuilt here.
package ruliwebengine

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/kimjiho/dcrawl/pkg/dcengine"
	"github.com/kimjiho/dcrawl/pkg/dcerrors"
)

// Options mirrors dcengine.Options' shape for symmetry; it carries only
// the scenario id and logger that StartCrawling's warning uses.
type Options struct {
	ScenarioID string
	Log        *logrus.Logger
}

// Engine is a placeholder Ruliweb crawl engine.
type Engine struct {
	scenarioID string
	log        *logrus.Entry
}

// New constructs a stub Engine.
func New(opts Options) *Engine {
	log := opts.Log
	if log == nil {
		log = logrus.New()
	}
	return &Engine{
		scenarioID: opts.ScenarioID,
		log:        log.WithField("site", "ruliweb"),
	}
}

// StartCrawling implements dcengine.Runner. Ruliweb support is unbuilt;
// the dispatcher routes here only for crawler codes reserved for it.
func (e *Engine) StartCrawling(_ context.Context) error {
	e.log.WithField("scenario", e.scenarioID).Warn("ruliweb engine invoked but not implemented")
	return dcerrors.ErrNotImplemented
}

var _ dcengine.Runner = (*Engine)(nil)
