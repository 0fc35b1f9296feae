package dcwalk

import (
	"bytes"

	"github.com/PuerkitoBio/goquery"
)

func newDocument(body []byte) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(bytes.NewReader(body))
}
