package dcurl

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kimjiho/dcrawl/pkg/dcmodel"
)

// S1 — Platform-ID round trip (spec.md §8 scenario S1).
func TestURLToPlatformID_Minor(t *testing.T) {
	id, err := URLToPlatformID("https://gall.dcinside.com/mgallery/board/view?id=programming&no=42")
	require.NoError(t, err)
	require.Equal(t, dcmodel.PlatformPostID("DC&M&programming&42"), id)

	backURL, err := PlatformIDToURL(id)
	require.NoError(t, err)
	require.Contains(t, backURL, "/mgallery/board/view")
	require.Contains(t, backURL, "id=programming")
	require.Contains(t, backURL, "no=42")
}

func TestExtractGalleryInfo_AllVariants(t *testing.T) {
	cases := []struct {
		url      string
		gallType dcmodel.GalleryType
	}{
		{"https://gall.dcinside.com/mgallery/board/view?id=a&no=1", dcmodel.GalleryMajorMinor},
		{"https://gall.dcinside.com/mini/board/view?id=a&no=1", dcmodel.GalleryMini},
		{"https://gall.dcinside.com/board/view?id=a&no=1", dcmodel.GalleryGeneral},
	}
	for _, tc := range cases {
		info, err := ExtractGalleryInfo(tc.url)
		require.NoError(t, err)
		require.Equal(t, tc.gallType, info.GallType)
		require.Equal(t, "a", info.GalleryID)
		require.Equal(t, "1", info.PostNo)
	}
}

func TestExtractGalleryInfo_InvalidPrefix(t *testing.T) {
	_, err := ExtractGalleryInfo("https://gall.dcinside.com/other/path?id=a&no=1")
	require.Error(t, err)
}

func TestExtractGalleryInfo_MissingID(t *testing.T) {
	_, err := ExtractGalleryInfo("https://gall.dcinside.com/board/view?no=1")
	require.Error(t, err)
}

// Invariant 1 (§8): round trip through id <-> url preserves decoded parts
// for a range of inputs, including ones with differing query order.
func TestRoundTrip_Invariant(t *testing.T) {
	inputs := []string{
		"https://gall.dcinside.com/board/view?id=pro&no=100",
		"https://gall.dcinside.com/board/view?no=100&id=pro",
		"https://gall.dcinside.com/mini/board/view?id=baseball&no=9999",
	}
	for _, u := range inputs {
		id, err := URLToPlatformID(u)
		require.NoError(t, err)

		backURL, err := PlatformIDToURL(id)
		require.NoError(t, err)

		reDecoded, err := ExtractGalleryInfo(backURL)
		require.NoError(t, err)

		original, err := ExtractGalleryInfo(u)
		require.NoError(t, err)

		require.Equal(t, original, reDecoded)
	}
}

func TestPlatformIDToURL_Malformed(t *testing.T) {
	_, err := PlatformIDToURL("not-an-id")
	require.Error(t, err)
}

func TestCanonicalize(t *testing.T) {
	out, err := Canonicalize("HTTPS://Gall.DCInside.com/board/view?no=1&id=a")
	require.NoError(t, err)
	require.Contains(t, out, "gall.dcinside.com")
}
