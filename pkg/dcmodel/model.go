// Package dcmodel holds the data types shared across the DCInside crawl
// pipeline: gallery/platform identity, posts, comments, and crawl modes.
package dcmodel

import "time"

// GalleryType is the board variant letter embedded in a platform post ID.
type GalleryType string

const (
	GalleryMajorMinor GalleryType = "M"  // /mgallery/
	GalleryMini       GalleryType = "MI" // /mini/
	GalleryGeneral    GalleryType = "G"  // /board/
)

// CrawlMode selects which upstream traversal strategy a run uses.
type CrawlMode string

const (
	ModeKeyword CrawlMode = "keyword" // search within a target gallery
	ModeGallog  CrawlMode = "gallog"  // traverse a user's posting page
	ModeRaw     CrawlMode = "raw"     // treat the input URL as a raw listing
)

// GalleryInfo is the decomposition of a gallery/post URL's identifying parts.
type GalleryInfo struct {
	GallType  GalleryType
	GalleryID string
	PostNo    string // empty when the URL is a listing, not a post view
}

// PlatformPostID is the canonical DC&<gallType>&<galleryId>&<postNo> string.
type PlatformPostID string

// PlatformCommentID is PlatformPostID + "&" + commentNo.
type PlatformCommentID string

// WorkItem pairs a platform post ID with its URL. The listing walker and
// the collector pass bare PlatformPostID values and do not use it.
type WorkItem struct {
	ID    PlatformPostID
	URL   string
	Depth int // reserved for future prioritization; always 0 for DCInside
}

// PostInput is what the listing/collector layer hands the repository to
// create a post row.
type PostInput struct {
	ScenarioID     string
	PlatformPostID PlatformPostID
	URL            string
	Title          string
	Contents       string
	Writer         *string
	WriterID       *string
	WriterIP       *string
	WrittenAt      time.Time
	LikeCnt        int
	DislikeCnt     *int
	CommentCnt     int
}

// Post is a persisted post row, including the backend-assigned surrogate ID.
type Post struct {
	ID             string
	ScenarioID     string
	PlatformPostID PlatformPostID
	URL            string
	Title          string
	Contents       string
	Writer         *string
	WriterID       *string
	WriterIP       *string
	WrittenAt      time.Time
	LikeCnt        int
	DislikeCnt     *int
	CommentCnt     int
}

// CommentInput is what the collector hands the repository for bulk insert.
type CommentInput struct {
	PlatformCommentID PlatformCommentID
	PostID             string
	ScenarioID          string
	Writer              *string
	WriterID            *string
	WriterIP            *string
	Contents            string
	URL                 string
	Gallery             string // "<gallType>&<galleryId>"
	WrittenAt           time.Time
}
