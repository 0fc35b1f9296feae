package dcparse

import (
	"encoding/json"
	"fmt"
	"time"
)

// CommentItem is one raw comment entry as returned by the comment API,
// before dedup/HTML-stripping/ID-construction (spec.md §6 "Upstream
// endpoints", response shape `{comments: [{no, del_yn, memo, user_id,
// name, ip, reg_date}]}`).
type CommentItem struct {
	No       string `json:"no"`
	DelYN    string `json:"del_yn"`
	Memo     string `json:"memo"`
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	IP       string `json:"ip"`
	RegDate  string `json:"reg_date"`
}

// IsControlRow reports whether this entry carries no comment number and
// must be discarded as a non-comment control row (spec.md §4.5).
func (c CommentItem) IsControlRow() bool { return c.No == "" }

// IsDeleted reports whether this entry is a soft-deleted comment
// (del_yn=Y), never persisted (spec.md §3 Comment invariant).
func (c CommentItem) IsDeleted() bool { return c.DelYN == "Y" }

// WrittenAt parses RegDate against now for short-date year inference
// (spec.md §8 scenario S5).
func (c CommentItem) WrittenAt(now time.Time) (time.Time, error) {
	return ParseCommentDate(c.RegDate, now)
}

type commentsEnvelope struct {
	Comments []CommentItem `json:"comments"`
}

// ParseCommentResponse decodes a comment-API response body, accepting
// both the documented `{comments: [...]}` object shape and a raw JSON
// array, defensively, per spec.md §9 Open Questions ("a defensive parser
// that accepts both is recommended"). Grounded on the teacher's
// defensive-unmarshal posture in pkg/storage/badger_store.go
// (CheckPageStatus treats unmarshal failure as a soft state, not a hard
// error) — here applied by trying the object shape first and falling
// back to the array shape rather than failing outright.
func ParseCommentResponse(body []byte) ([]CommentItem, error) {
	var envelope commentsEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Comments != nil {
		return envelope.Comments, nil
	}

	var items []CommentItem
	if err := json.Unmarshal(body, &items); err == nil {
		return items, nil
	}

	return nil, fmt.Errorf("parsing comment response: neither {comments:[...]} nor [...] shape matched")
}
