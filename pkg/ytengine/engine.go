// Package ytengine is the stub YouTube site engine. spec.md §1 lists the
// YouTube engine among the out-of-scope external collaborators ("stubs
// in the source"); this package exists only to give the CLI dispatcher a
// second dcengine.Runner to route to, mirroring dcengine's Options/New
// shape so wiring one in is a drop-in swap for the DCInside engine.
package ytengine

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

// Engine is a placeholder YouTube crawl engine.
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
		log:        log.WithField("site", "youtube"),
	}
}

// StartCrawling implements dcengine.Runner. YouTube support is unbuilt;
// the dispatcher routes here only for crawler codes reserved for it.
func (e *Engine) StartCrawling(_ context.Context) error {
	e.log.WithField("scenario", e.scenarioID).Warn("youtube engine invoked but not implemented")
	return dcerrors.ErrNotImplemented
}

var _ dcengine.Runner = (*Engine)(nil)
