// Package dcrepo defines the narrow persistence contract the crawl
// engine depends on (spec.md §4.7). Grounded on the teacher's segmented
// PageStore/ImageStore/StoreAdmin composition in pkg/storage/interface.go:
// here PostStore and CommentStore are the two segments, composed into
// Repository the same way the teacher composes its store interfaces.
package dcrepo

import (
	"context"
	"time"

	"github.com/kimjiho/dcrawl/pkg/dcmodel"
)

// PostStore is the post-side of the repository port.
type PostStore interface {
	// FindPostByPlatformID reports the existing post row for
	// (scenarioID, platformPostID), if any. Used for the incremental
	// boundary check (spec.md §4.4).
	FindPostByPlatformID(ctx context.Context, scenarioID string, platformPostID dcmodel.PlatformPostID) (*dcmodel.Post, error)

	// InsertPost creates a post row and returns it with its surrogate ID
	// populated. Called at most once per (scenarioID, platformPostID).
	InsertPost(ctx context.Context, in dcmodel.PostInput) (dcmodel.Post, error)

	// UpdatePostCommentCount mutates a post's cached comment count,
	// used only by the rehydrate phase (spec.md §4.6 step 2).
	UpdatePostCommentCount(ctx context.Context, postID string, n int) error

	// ListRecentPosts returns a lean view of posts persisted at or after
	// since, the rehydrate phase's input set (spec.md §4.6 step 2).
	ListRecentPosts(ctx context.Context, scenarioID string, since time.Time) ([]dcmodel.Post, error)
}

// CommentStore is the comment-side of the repository port.
type CommentStore interface {
	// InsertCommentsBulk appends a page's worth of comments in one call
	// (spec.md §4.5 "Comment ingestion").
	InsertCommentsBulk(ctx context.Context, in []dcmodel.CommentInput) error

	// CommentExists reports whether (scenarioID, platformCommentID) has
	// already been persisted, for per-page dedup (spec.md §4.5).
	CommentExists(ctx context.Context, scenarioID string, platformCommentID dcmodel.PlatformCommentID) (bool, error)
}

// Repository is the full persistence contract the engine depends on.
// Every operation may fail with a backend error the engine surfaces
// (spec.md §4.7); the engine assumes logical atomicity per call and
// makes no cross-call transactional assumption.
type Repository interface {
	PostStore
	CommentStore
}
