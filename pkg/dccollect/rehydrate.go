package dccollect

import (
	"context"
	"errors"
	"fmt"

	"github.com/kimjiho/dcrawl/pkg/dcerrors"
	"github.com/kimjiho/dcrawl/pkg/dcfetch"
	"github.com/kimjiho/dcrawl/pkg/dcmodel"
	"github.com/kimjiho/dcrawl/pkg/dcparse"
	"github.com/kimjiho/dcrawl/pkg/dcurl"
)

// Rehydrate refetches each of posts' pages, updates the cached comment
// count when it changed, and replays the comment loop so any comments
// added since the last run are appended (spec.md §4.6 step 2, the
// optional rehydrate phase). It uses the same fetchers, parsers, and
// dedup rules as the detail phase, as required by spec.md §9 Open
// Questions's note that the rehydrate contract must reuse them.
func (c *Collector) Rehydrate(ctx context.Context, posts []dcmodel.Post) error {
	for _, post := range posts {
		if c.cancelled() {
			return nil
		}
		if err := c.rehydrateOne(ctx, post); err != nil {
			if errors.Is(err, dcerrors.ErrBackend) {
				return err
			}
			if c.Log != nil {
				c.Log.WithError(err).WithField("post_id", post.ID).Warn("skipping rehydrate for post")
			}
		}
		dcfetch.SleepJittered(ctx, detailJitterBase)
	}
	return nil
}

func (c *Collector) rehydrateOne(ctx context.Context, post dcmodel.Post) error {
	postURL, err := c.postURL(post.PlatformPostID)
	if err != nil {
		return err
	}

	body, err := c.Fetcher.Send(ctx, "GET", postURL, nil, nil, postURL)
	if err != nil {
		if errors.Is(err, dcerrors.ErrNotFound) {
			return nil // deleted since last run, nothing to rehydrate
		}
		return fmt.Errorf("refetching post %s: %w", postURL, err)
	}

	doc, err := newDocument(body)
	if err != nil {
		return fmt.Errorf("%w: %v", dcerrors.ErrParse, err)
	}

	detail, err := dcparse.ParsePostDetail(doc, c.now())
	if err != nil {
		return fmt.Errorf("%w: %v", dcerrors.ErrParse, err)
	}

	if detail.CommentCnt != post.CommentCnt {
		if err := c.Repo.UpdatePostCommentCount(ctx, post.ID, detail.CommentCnt); err != nil {
			return fmt.Errorf("%w: updating comment count: %v", dcerrors.ErrBackend, err)
		}
	}

	if detail.CommentCnt <= 0 {
		return nil
	}

	info, err := dcurl.Decompose(post.PlatformPostID)
	if err != nil {
		return err
	}
	return c.collectComments(ctx, post, postURL, detail.ESNO, info)
}
