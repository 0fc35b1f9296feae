package dcfetch

import (
	"context"
	"math/rand"
	"time"
)

// SleepJittered sleeps base + rand([0, 0.5*base]), the politeness formula
// used between inner-page fetches, between listing blocks, around every
// detail fetch, and between comment pages (spec.md §4.4-§4.5), each call
// site supplying its own base duration. Grounded on the teacher's
// pkg/fetch/ratelimit.go ApplyDelay jitter computation, adapted from a
// "catch up to a minimum delay" sleep into an unconditional politeness
// pause since this spec's walker paces every blocking step, not just
// per-host request spacing.
func SleepJittered(ctx context.Context, base time.Duration) {
	if base <= 0 {
		return
	}
	jitter := time.Duration(rand.Int63n(int64(base)/2 + 1))
	total := base + jitter

	select {
	case <-time.After(total):
	case <-ctx.Done():
	}
}
