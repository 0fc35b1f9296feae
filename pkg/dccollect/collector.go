// Package dccollect implements the post/comment collector: per-post
// detail fetch and comment-thread paginator that pushes parsed records
// through the repository (spec.md §4.5). Grounded on the teacher's
// per-item progress-logging style in pkg/crawler/crawler.go's detail
// phase (percentage-complete log lines per item).
package dccollect

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kimjiho/dcrawl/pkg/dcerrors"
	"github.com/kimjiho/dcrawl/pkg/dcfetch"
	"github.com/kimjiho/dcrawl/pkg/dcmodel"
	"github.com/kimjiho/dcrawl/pkg/dcparse"
	"github.com/kimjiho/dcrawl/pkg/dcrepo"
	"github.com/kimjiho/dcrawl/pkg/dcurl"
)

const (
	detailJitterBase  = 1000 * time.Millisecond
	commentJitterBase = 2000 * time.Millisecond
	commentsPath      = "https://" + dcurl.CanonicalHost + "/board/comment/"
)

// Collector fetches each queued post's detail page and its comment
// thread, persisting both through the repository.
type Collector struct {
	Fetcher    *dcfetch.Fetcher
	Repo       dcrepo.Repository
	ScenarioID string

	// ShouldCancel is polled before every post fetch and between
	// comment pages (spec.md §4.6).
	ShouldCancel func() bool

	Log *logrus.Entry

	// Now defaults to time.Now when nil; overridable for deterministic
	// tests of year-patched comment dates.
	Now func() time.Time

	// CommentsURL defaults to the production comment endpoint when
	// empty; overridable in tests.
	CommentsURL string

	// PostURLFunc defaults to dcurl.PlatformIDToURL when nil;
	// overridable in tests to target an httptest server.
	PostURLFunc func(dcmodel.PlatformPostID) (string, error)
}

// Run sorts ids chronologically and processes each in turn. A 404 on the
// detail fetch is treated as a deleted post and silently skipped; a
// parse error is logged and the post is skipped; the run continues
// (spec.md §7).
func (c *Collector) Run(ctx context.Context, ids []dcmodel.PlatformPostID) error {
	ordered := SortChronological(ids)

	for i, id := range ordered {
		if c.cancelled() {
			return nil
		}

		if err := c.processOne(ctx, id); err != nil {
			if errors.Is(err, dcerrors.ErrBackend) {
				return err // backend errors are fatal for the run (spec.md §7)
			}
			if c.Log != nil {
				c.Log.WithError(err).WithField("platform_id", id).Warn("skipping post")
			}
		}

		if c.Log != nil {
			c.Log.WithFields(logrus.Fields{
				"progress": fmt.Sprintf("%d/%d", i+1, len(ordered)),
				"percent":  fmt.Sprintf("%.1f%%", float64(i+1)*100/float64(len(ordered))),
				"platform_id": id,
			}).Info("processed post")
		}

		dcfetch.SleepJittered(ctx, detailJitterBase)
	}
	return nil
}

func (c *Collector) processOne(ctx context.Context, id dcmodel.PlatformPostID) error {
	postURL, err := c.postURL(id)
	if err != nil {
		return err
	}

	body, err := c.Fetcher.Send(ctx, "GET", postURL, nil, nil, postURL)
	if err != nil {
		if errors.Is(err, dcerrors.ErrNotFound) {
			return nil // deleted post, silently skipped (spec.md §7)
		}
		return fmt.Errorf("fetching post %s: %w", postURL, err)
	}

	doc, err := newDocument(body)
	if err != nil {
		return fmt.Errorf("%w: %v", dcerrors.ErrParse, err)
	}

	detail, err := dcparse.ParsePostDetail(doc, c.now())
	if err != nil {
		return fmt.Errorf("%w: %v", dcerrors.ErrParse, err)
	}

	info, err := dcurl.Decompose(id)
	if err != nil {
		return err
	}

	input := dcmodel.PostInput{
		ScenarioID:     c.ScenarioID,
		PlatformPostID: id,
		URL:            postURL,
		Title:          detail.Title,
		Contents:       detail.Contents,
		Writer:         detail.Writer,
		WriterID:       detail.WriterID,
		WriterIP:       detail.WriterIP,
		WrittenAt:      detail.WrittenAt,
		LikeCnt:        detail.LikeCnt,
		DislikeCnt:     detail.DislikeCnt,
		CommentCnt:     detail.CommentCnt,
	}

	post, err := c.Repo.InsertPost(ctx, input)
	if err != nil {
		return fmt.Errorf("%w: inserting post: %v", dcerrors.ErrBackend, err)
	}

	if detail.CommentCnt <= 0 {
		return nil
	}

	return c.collectComments(ctx, post, postURL, detail.ESNO, info)
}

func (c *Collector) collectComments(ctx context.Context, post dcmodel.Post, postURL, esno string, info dcmodel.GalleryInfo) error {
	page := 1
	for {
		if c.cancelled() {
			return nil
		}

		body, err := c.Fetcher.Send(ctx, "POST", c.commentsURL(), nil, commentRequestBody(info, esno, page), postURL)
		if err != nil {
			return fmt.Errorf("fetching comments page %d for %s: %w", page, postURL, err)
		}

		items, err := dcparse.ParseCommentResponse(body)
		if err != nil {
			return fmt.Errorf("%w: %v", dcerrors.ErrParse, err)
		}
		if len(items) == 0 {
			return nil // empty page: normal end of thread (spec.md §7)
		}

		inputs, err := c.ingestComments(ctx, items, post, postURL, info)
		if err != nil {
			return err
		}
		if len(inputs) > 0 {
			if err := c.Repo.InsertCommentsBulk(ctx, inputs); err != nil {
				return fmt.Errorf("%w: inserting comments: %v", dcerrors.ErrBackend, err)
			}
		}

		page++
		dcfetch.SleepJittered(ctx, commentJitterBase)
	}
}

func (c *Collector) ingestComments(ctx context.Context, items []dcparse.CommentItem, post dcmodel.Post, postURL string, info dcmodel.GalleryInfo) ([]dcmodel.CommentInput, error) {
	var inputs []dcmodel.CommentInput
	for _, item := range items {
		if item.IsControlRow() || item.IsDeleted() {
			continue
		}

		commentID := dcmodel.PlatformCommentID(fmt.Sprintf("%s&%s", post.PlatformPostID, item.No))

		exists, err := c.Repo.CommentExists(ctx, c.ScenarioID, commentID)
		if err != nil {
			return nil, fmt.Errorf("%w: checking comment existence: %v", dcerrors.ErrBackend, err)
		}
		if exists {
			continue
		}

		text := dcparse.StripHTML(item.Memo)
		if text == "" {
			continue
		}

		writtenAt, err := item.WrittenAt(c.now())
		if err != nil {
			if c.Log != nil {
				c.Log.WithError(err).WithField("comment_no", item.No).Warn("skipping comment with unparseable date")
			}
			continue
		}

		var writer, writerID, writerIP *string
		if item.Name != "" {
			writer = &item.Name
		}
		if item.UserID != "" {
			writerID = &item.UserID
		}
		if item.IP != "" {
			writerIP = &item.IP
		}

		inputs = append(inputs, dcmodel.CommentInput{
			PlatformCommentID: commentID,
			PostID:            post.ID,
			ScenarioID:        c.ScenarioID,
			Writer:            writer,
			WriterID:          writerID,
			WriterIP:          writerIP,
			Contents:          text,
			URL:               postURL,
			Gallery:           fmt.Sprintf("%s&%s", info.GallType, info.GalleryID),
			WrittenAt:         writtenAt,
		})
	}
	return inputs, nil
}

// commentRequestBody builds the comment API's form body (spec.md §4.5).
func commentRequestBody(info dcmodel.GalleryInfo, esno string, page int) url.Values {
	gallType := string(info.GallType)
	if gallType == "" {
		gallType = string(dcmodel.GalleryGeneral)
	}
	return url.Values{
		"id":          {info.GalleryID},
		"no":          {info.PostNo},
		"cmt_id":      {info.GalleryID},
		"cmt_no":      {info.PostNo},
		"focus_cno":   {""},
		"focus_pno":   {""},
		"prevCnt":     {""},
		"board_type":  {""},
		"e_s_n_o":     {esno},
		"sort":        {"N"},
		"_GALLTYPE_":  {gallType},
		"comment_page": {strconv.Itoa(page)},
	}
}

func (c *Collector) cancelled() bool {
	return c.ShouldCancel != nil && c.ShouldCancel()
}

func (c *Collector) postURL(id dcmodel.PlatformPostID) (string, error) {
	if c.PostURLFunc != nil {
		return c.PostURLFunc(id)
	}
	return dcurl.PlatformIDToURL(id)
}

func (c *Collector) commentsURL() string {
	if c.CommentsURL != "" {
		return c.CommentsURL
	}
	return commentsPath
}

func (c *Collector) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}
