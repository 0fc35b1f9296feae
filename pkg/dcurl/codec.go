// Package dcurl implements the bidirectional mapping between a DCInside
// gallery post URL and its stable platform post ID, grounded on the
// normalize-then-compare approach in the teacher's pkg/parse/normalize.go
// and the purell-based canonicalization used by flybywind-smart_crawller's
// spider.GetFullNormalizeUrl.
package dcurl

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/purell"

	"github.com/kimjiho/dcrawl/pkg/dcerrors"
	"github.com/kimjiho/dcrawl/pkg/dcmodel"
)

// CanonicalHost is the only host the codec round-trips through.
const CanonicalHost = "gall.dcinside.com"

var pathPrefixToType = map[string]dcmodel.GalleryType{
	"/mgallery/": dcmodel.GalleryMajorMinor,
	"/mini/":     dcmodel.GalleryMini,
	"/board/":    dcmodel.GalleryGeneral,
}

var typeToViewPath = map[dcmodel.GalleryType]string{
	dcmodel.GalleryMajorMinor: "/mgallery/board/view",
	dcmodel.GalleryMini:       "/mini/board/view",
	dcmodel.GalleryGeneral:    "/board/view",
}

// ExtractGalleryInfo inspects a gallery/post URL's path prefix and query
// string and returns its decomposed gallery identity. postNo is empty when
// the URL is a listing rather than a post view.
func ExtractGalleryInfo(rawURL string) (dcmodel.GalleryInfo, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return dcmodel.GalleryInfo{}, fmt.Errorf("%w: parsing '%s': %v", dcerrors.ErrInvalidURL, rawURL, err)
	}

	gallType, ok := gallTypeForPath(u.Path)
	if !ok {
		return dcmodel.GalleryInfo{}, fmt.Errorf("%w: unrecognized path prefix in '%s'", dcerrors.ErrInvalidURL, rawURL)
	}

	q := u.Query()
	galleryID := q.Get("id")
	if galleryID == "" {
		return dcmodel.GalleryInfo{}, fmt.Errorf("%w: missing 'id' query parameter in '%s'", dcerrors.ErrInvalidURL, rawURL)
	}

	return dcmodel.GalleryInfo{
		GallType:  gallType,
		GalleryID: galleryID,
		PostNo:    q.Get("no"),
	}, nil
}

func gallTypeForPath(path string) (dcmodel.GalleryType, bool) {
	for prefix, t := range pathPrefixToType {
		if strings.HasPrefix(path, prefix) {
			return t, true
		}
	}
	return "", false
}

// URLToPlatformID decodes a post view URL into its canonical platform ID.
func URLToPlatformID(rawURL string) (dcmodel.PlatformPostID, error) {
	info, err := ExtractGalleryInfo(rawURL)
	if err != nil {
		return "", err
	}
	if info.PostNo == "" {
		return "", fmt.Errorf("%w: '%s' has no post number, not a post view", dcerrors.ErrInvalidURL, rawURL)
	}
	return buildPlatformID(info), nil
}

func buildPlatformID(info dcmodel.GalleryInfo) dcmodel.PlatformPostID {
	return dcmodel.PlatformPostID(fmt.Sprintf("DC&%s&%s&%s", info.GallType, info.GalleryID, info.PostNo))
}

// Decompose splits a platform post ID back into its gallery identity,
// used by the collector to pick the comment API's _GALLTYPE_ field and
// the gallery key stamped on each comment (spec.md §4.5).
func Decompose(id dcmodel.PlatformPostID) (dcmodel.GalleryInfo, error) {
	parts := strings.Split(string(id), "&")
	if len(parts) != 4 || parts[0] != "DC" {
		return dcmodel.GalleryInfo{}, fmt.Errorf("%w: malformed platform id '%s'", dcerrors.ErrInvalidURL, id)
	}
	return dcmodel.GalleryInfo{
		GallType:  dcmodel.GalleryType(parts[1]),
		GalleryID: parts[2],
		PostNo:    parts[3],
	}, nil
}

// PlatformIDToURL encodes a platform post ID back into a canonical post view URL.
func PlatformIDToURL(id dcmodel.PlatformPostID) (string, error) {
	info, err := Decompose(id)
	if err != nil {
		return "", err
	}
	gallType, galleryID, postNo := info.GallType, info.GalleryID, info.PostNo

	viewPath, ok := typeToViewPath[gallType]
	if !ok {
		return "", fmt.Errorf("%w: unknown gallery type '%s' in id '%s'", dcerrors.ErrInvalidURL, gallType, id)
	}

	u := url.URL{
		Scheme: "https",
		Host:   CanonicalHost,
		Path:   viewPath,
	}
	q := url.Values{}
	q.Set("id", galleryID)
	q.Set("no", postNo)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Canonicalize normalizes a URL string for comparison purposes: lowercases
// scheme/host, strips default ports, collapses duplicate slashes, removes
// dot segments and the fragment, and sorts the query string. Used by the
// round-trip invariant (platformIDToURL(urlToPlatformId(u)) == canonicalize(u)).
func Canonicalize(rawURL string) (string, error) {
	normalized, err := purell.NormalizeURLString(rawURL, purell.FlagsUsuallySafeGreedy|purell.FlagSortQuery)
	if err != nil {
		return "", fmt.Errorf("%w: normalizing '%s': %v", dcerrors.ErrInvalidURL, rawURL, err)
	}
	return normalized, nil
}
