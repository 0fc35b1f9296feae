package dcparse

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/kimjiho/dcrawl/pkg/dcmodel"
)

// paginationSelector differs between keyword and gallog layouts
// (spec.md §6).
func paginationSelector(mode dcmodel.CrawlMode) string {
	if mode == dcmodel.ModeGallog {
		return "div.cont_box div.bottom_paging_box.iconpaging"
	}
	return "div.bottom_paging_box.iconpaging"
}

// Pagination is the decoded navigation state of one listing page's
// pagination block (spec.md §4.4).
type Pagination struct {
	PageHrefs []string // per-page links inside the current block, in document order
	BlockNext string    // "" when the block-next link is absent
}

// ParsePagination extracts the per-page links and the block-next link
// from a listing page's pagination block. Any anchor carrying a class is
// block-navigation (not a per-page link) and is excluded from PageHrefs;
// among those, only the ones whose class contains page_next / search_next
// are eligible to become BlockNext — a block's prev-link (search_prev /
// page_prev, present on every block after the first) carries a class too
// but must never be mistaken for the forward link (spec.md §4.3
// "Pagination parser").
func ParsePagination(doc *goquery.Document, mode dcmodel.CrawlMode) Pagination {
	var out Pagination
	block := doc.Find(paginationSelector(mode)).First()
	if block.Length() == 0 {
		return out
	}

	block.Find("a").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok || href == "" {
			return
		}
		class, hasClass := a.Attr("class")
		if !hasClass || strings.TrimSpace(class) == "" {
			out.PageHrefs = append(out.PageHrefs, href)
			return
		}

		isNext := strings.Contains(class, "page_next") || strings.Contains(class, "search_next")
		if isNext && out.BlockNext == "" {
			out.BlockNext = href
		}
	})

	return out
}
