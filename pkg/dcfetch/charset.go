package dcfetch

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"
)

// decodeBody transcodes body to UTF-8 when the response declares (or the
// bytes themselves indicate) legacy EUC-KR encoding. Older DCInside board
// pages occasionally still serve EUC-KR despite the modern UTF-8 board
// being the common case, so every response is charset-checked rather than
// assumed UTF-8 outright.
func decodeBody(body []byte, contentType string) []byte {
	if !declaresEUCKR(contentType) && utf8.Valid(body) {
		return body
	}

	decoded, err := korean.EUCKR.NewDecoder().Bytes(body)
	if err != nil {
		return body
	}
	return decoded
}

func declaresEUCKR(contentType string) bool {
	lower := strings.ToLower(contentType)
	return strings.Contains(lower, "euc-kr") || strings.Contains(lower, "euckr") || strings.Contains(lower, "ks_c_5601")
}
