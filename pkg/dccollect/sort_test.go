package dccollect

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kimjiho/dcrawl/pkg/dcmodel"
)

// Invariant 5 — strictly ascending (gallType lex, galleryId lex, postNo numeric).
func TestSortChronological_Invariant5(t *testing.T) {
	in := []dcmodel.PlatformPostID{
		"DC&MI&zzz&5",
		"DC&G&abc&20",
		"DC&G&abc&3",
		"DC&M&abc&1",
	}
	got := SortChronological(in)
	require.Equal(t, []dcmodel.PlatformPostID{
		"DC&G&abc&3",
		"DC&G&abc&20",
		"DC&M&abc&1",
		"DC&MI&zzz&5",
	}, got)
}

func TestSortChronological_NumericNotLexicographicPostNo(t *testing.T) {
	in := []dcmodel.PlatformPostID{"DC&G&pro&100", "DC&G&pro&99"}
	got := SortChronological(in)
	require.Equal(t, dcmodel.PlatformPostID("DC&G&pro&99"), got[0])
	require.Equal(t, dcmodel.PlatformPostID("DC&G&pro&100"), got[1])
}

func TestSortChronological_MalformedSortsLast(t *testing.T) {
	in := []dcmodel.PlatformPostID{"garbage", "DC&G&pro&1"}
	got := SortChronological(in)
	require.Equal(t, dcmodel.PlatformPostID("DC&G&pro&1"), got[0])
	require.Equal(t, dcmodel.PlatformPostID("garbage"), got[1])
}
