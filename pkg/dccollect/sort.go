package dccollect

import (
	"sort"
	"strconv"

	"github.com/kimjiho/dcrawl/pkg/dcmodel"
	"github.com/kimjiho/dcrawl/pkg/dcurl"
)

// SortChronological orders platform IDs ascending by the deterministic
// three-key order of spec.md §4.5: lexicographic gallType, lexicographic
// galleryId, numeric postNo. IDs that fail to decompose, or whose postNo
// is not numeric, sort last, in
// original relative order among themselves, and are logged by the caller
// rather than dropped silently.
func SortChronological(ids []dcmodel.PlatformPostID) []dcmodel.PlatformPostID {
	out := make([]dcmodel.PlatformPostID, len(ids))
	copy(out, ids)

	type decoded struct {
		id      dcmodel.PlatformPostID
		gall    string
		gallery string
		postNo  int
		ok      bool
	}
	rows := make([]decoded, len(out))
	for i, id := range out {
		info, err := dcurl.Decompose(id)
		if err != nil {
			rows[i] = decoded{id: id, ok: false}
			continue
		}
		n, convErr := strconv.Atoi(info.PostNo)
		rows[i] = decoded{id: id, gall: string(info.GallType), gallery: info.GalleryID, postNo: n, ok: convErr == nil}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.ok != b.ok {
			return a.ok // decodable rows sort before undecodable ones
		}
		if !a.ok {
			return false
		}
		if a.gall != b.gall {
			return a.gall < b.gall
		}
		if a.gallery != b.gallery {
			return a.gallery < b.gallery
		}
		return a.postNo < b.postNo
	})

	for i, r := range rows {
		out[i] = r.id
	}
	return out
}
