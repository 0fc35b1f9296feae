package dcparse

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// PostDetail is the fully-decoded content of a post-view page (spec.md
// §4.3 "Post-detail parser").
type PostDetail struct {
	PostNo     string
	ESNO       string
	Title      string
	Contents   string
	Writer     *string
	WriterID   *string
	WriterIP   *string
	WrittenAt  time.Time
	LikeCnt    int
	DislikeCnt *int
	CommentCnt int
}

// ParsePostDetail parses a post-view page. now anchors year inference for
// any short-form date encountered (kept for symmetry with comment
// parsing; post-detail dates are observed to always carry a year).
func ParsePostDetail(doc *goquery.Document, now time.Time) (PostDetail, error) {
	form := doc.Find("form#_view_form_").First()
	if form.Length() == 0 {
		return PostDetail{}, fmt.Errorf("form#_view_form_ not found")
	}

	postNo, _ := form.Find("input#no").First().Attr("value")
	if postNo == "" {
		return PostDetail{}, fmt.Errorf("input#no missing or empty")
	}
	esno, _ := form.Find("input#e_s_n_o").First().Attr("value")

	var d PostDetail
	d.PostNo = postNo
	d.ESNO = esno

	d.Title = strings.TrimSpace(doc.Find(".title_subject").First().Text())
	if d.Title == "" {
		d.Title = strings.TrimSpace(doc.Find("span.title_subject").First().Text())
	}

	contentNode := doc.Find(".write_div").First()
	d.Contents = StripHTML(mustHTML(contentNode))

	writerBox := doc.Find(".gall_writer").First()
	if nick, ok := writerBox.Attr("data-nick"); ok && nick != "" {
		d.Writer = &nick
	}
	if uid, ok := writerBox.Attr("data-uid"); ok && uid != "" {
		d.WriterID = &uid
	}
	if ip, ok := writerBox.Attr("data-ip"); ok && ip != "" {
		d.WriterIP = &ip
	}

	dateText := strings.TrimSpace(doc.Find(".gall_date").First().Text())
	if dateText == "" {
		if attr, ok := doc.Find(".gall_date").First().Attr("title"); ok {
			dateText = attr
		}
	}
	if dateText != "" {
		if t, err := ParseDetailDate(dateText); err == nil {
			d.WrittenAt = t
		}
	}

	likeSel := fmt.Sprintf("p#recommend_view_up_%s", postNo)
	if n, ok := parseTrailingInt(doc.Find(likeSel).First().Text()); ok {
		d.LikeCnt = n
	}

	dislikeSel := fmt.Sprintf("p#recommend_view_down_%s", postNo)
	dislikeNode := doc.Find(dislikeSel).First()
	if dislikeNode.Length() > 0 {
		if n, ok := parseTrailingInt(dislikeNode.Text()); ok {
			d.DislikeCnt = &n
		}
	}

	if n, ok := parseTrailingInt(doc.Find("span.gall_comment").First().Text()); ok {
		d.CommentCnt = n
	}

	return d, nil
}

func mustHTML(s *goquery.Selection) string {
	h, err := goquery.OuterHtml(s)
	if err != nil {
		return s.Text()
	}
	return h
}
