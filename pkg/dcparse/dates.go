package dcparse

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// KST is Korea Standard Time, UTC+09:00. Every upstream timestamp is
// interpreted in KST regardless of the runner's local clock (spec.md §9
// Design Notes: "never normalize through the process-local timezone").
var KST = time.FixedZone("KST", 9*3600)

// ParseKeywordDate parses a listing-row date-cell title attribute in
// keyword mode, formatted "YYYY-MM-DD HH:mm:ss". Only the date portion is
// used; time is fixed to 00:00:00 KST (spec.md §4.3).
func ParseKeywordDate(title string) (time.Time, error) {
	datePart := title
	if sp := strings.IndexByte(title, ' '); sp >= 0 {
		datePart = title[:sp]
	}
	t, err := time.ParseInLocation("2006-01-02", datePart, KST)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing keyword date %q: %w", title, err)
	}
	return t, nil
}

// ParseGallogDate parses a gallog-mode span.date value formatted
// "YYYY.MM.DD" (spec.md §4.3).
func ParseGallogDate(text string) (time.Time, error) {
	t, err := time.ParseInLocation("2006.01.02", strings.TrimSpace(text), KST)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing gallog date %q: %w", text, err)
	}
	return t, nil
}

// ParseDetailDate parses a post-detail written-at timestamp, accepting
// both dot and dash date separators, with or without a seconds component
// (spec.md §4.3 "Date normalization").
func ParseDetailDate(text string) (time.Time, error) {
	text = strings.TrimSpace(text)
	normalized := strings.ReplaceAll(text, ".", "-")
	layouts := []string{
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
	}
	var lastErr error
	for _, layout := range layouts {
		t, err := time.ParseInLocation(layout, normalized, KST)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, fmt.Errorf("parsing detail date %q: %w", text, lastErr)
}

// ParseCommentDate parses a comment reg_date value. The upstream may omit
// the year ("MM.DD HH:mm:ss" or "MM-DD HH:mm:ss"); when it does, the
// current KST year is prepended (spec.md §4.3, scenario S5). now is the
// instant used to determine "current KST year" and must itself be
// expressed in (or convertible to) KST by the caller.
func ParseCommentDate(text string, now time.Time) (time.Time, error) {
	text = strings.TrimSpace(text)
	normalized := strings.ReplaceAll(text, ".", "-")

	fullLayouts := []string{
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
	}
	for _, layout := range fullLayouts {
		t, err := time.ParseInLocation(layout, normalized, KST)
		if err == nil {
			return t, nil
		}
	}

	shortLayouts := []string{"01-02 15:04:05", "01-02 15:04"}
	year := now.In(KST).Year()
	for _, layout := range shortLayouts {
		t, err := time.ParseInLocation(layout, normalized, KST)
		if err == nil {
			return time.Date(year, t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, KST), nil
		}
	}

	return time.Time{}, fmt.Errorf("parsing comment date %q: unrecognized format", text)
}

// parseTrailingInt extracts a trailing integer from a string, stripping
// thousands-separator commas, used for gall_comment / recommend counters
// (spec.md §4.3).
func parseTrailingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	var digits []byte
	for i := len(s) - 1; i >= 0; i-- {
		c := s[i]
		if c >= '0' && c <= '9' {
			digits = append([]byte{c}, digits...)
			continue
		}
		if len(digits) > 0 {
			break
		}
	}
	if len(digits) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(string(digits))
	if err != nil {
		return 0, false
	}
	return n, true
}
