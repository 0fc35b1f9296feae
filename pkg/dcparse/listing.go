package dcparse

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/kimjiho/dcrawl/pkg/dcmodel"
)

// ListingRow is one post row surviving notice/ad filtering, ready for the
// walker to resolve into a platform ID (spec.md §4.3, §4.4).
type ListingRow struct {
	Href      string
	Title     string
	WrittenAt time.Time
}

// noticeMarkers are the strings DCInside uses in the row-number cell to
// mark a notice row instead of a real post number (spec.md §8 scenario S2
// uses "공지").
var noticeMarkers = []string{"공지", "notice", "AD", "광고"}

// The row selectors differ between keyword and gallog listing layouts
// (spec.md §6 "Upstream endpoints").
const (
	keywordRowSelector = "table.gall_list > tbody > tr"
	gallogRowSelector  = "ul.cont_listbox > li"
)

// ParseListingRows extracts post rows from one listing page, in the given
// mode, discarding notice/ad rows. Any mode other than gallog uses the
// keyword-mode row layout.
func ParseListingRows(doc *goquery.Document, mode dcmodel.CrawlMode) ([]ListingRow, error) {
	switch mode {
	case dcmodel.ModeGallog:
		return parseGallogRows(doc), nil
	default:
		return parseKeywordRows(doc), nil
	}
}

func parseKeywordRows(doc *goquery.Document) []ListingRow {
	var rows []ListingRow
	doc.Find(keywordRowSelector).Each(func(_ int, s *goquery.Selection) {
		if !isPostRow(s) {
			return
		}
		href, ok := findRowHref(s)
		if !ok {
			return
		}
		title := strings.TrimSpace(s.Find("td.gall_tit a, td.gall_subject a").First().Text())
		if title == "" {
			title = strings.TrimSpace(s.Find("a").First().Text())
		}

		dateCell := s.Find("td.gall_date").First()
		titleAttr, _ := dateCell.Attr("title")
		var writtenAt time.Time
		if titleAttr != "" {
			if t, err := ParseKeywordDate(titleAttr); err == nil {
				writtenAt = t
			}
		}

		rows = append(rows, ListingRow{Href: href, Title: title, WrittenAt: writtenAt})
	})
	return rows
}

func parseGallogRows(doc *goquery.Document) []ListingRow {
	var rows []ListingRow
	doc.Find(gallogRowSelector).Each(func(_ int, s *goquery.Selection) {
		if !isPostRow(s) {
			return
		}
		href, ok := findRowHref(s)
		if !ok {
			return
		}
		title := strings.TrimSpace(s.Find("a").First().Text())

		dateText := s.Find("span.date").First().Text()
		var writtenAt time.Time
		if dateText != "" {
			if t, err := ParseGallogDate(dateText); err == nil {
				writtenAt = t
			}
		}

		rows = append(rows, ListingRow{Href: href, Title: title, WrittenAt: writtenAt})
	})
	return rows
}

// isPostRow decides post-row vs notice/ad per spec.md §4.3: a data-no
// attribute present, OR the number cell is purely numeric and does not
// contain a notice marker string.
func isPostRow(s *goquery.Selection) bool {
	if _, ok := s.Attr("data-no"); ok {
		return true
	}
	numCell := strings.TrimSpace(s.Find("td.gall_num").First().Text())
	if numCell == "" {
		numCell = strings.TrimSpace(s.Find("span.num").First().Text())
	}
	if numCell == "" {
		return false
	}
	for _, marker := range noticeMarkers {
		if strings.Contains(numCell, marker) {
			return false
		}
	}
	return isPureNumeric(numCell)
}

func isPureNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// findRowHref selects the first link whose href contains "/board/view";
// failing that, the title cell's anchor; failing that, any anchor
// (spec.md §4.3). Returns ok=false when no href is present at all.
func findRowHref(s *goquery.Selection) (string, bool) {
	var found string
	s.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, ok := a.Attr("href")
		if ok && strings.Contains(href, "/board/view") {
			found = href
			return false
		}
		return true
	})
	if found != "" {
		return found, true
	}

	if href, ok := s.Find("td.gall_tit a, td.gall_subject a").First().Attr("href"); ok && href != "" {
		return href, true
	}

	if href, ok := s.Find("a").First().Attr("href"); ok && href != "" {
		return href, true
	}

	return "", false
}
