package dcfetch

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/korean"
)

func TestDecodeBody_PassesThroughValidUTF8(t *testing.T) {
	body := []byte("안녕하세요")
	require.Equal(t, body, decodeBody(body, "text/html; charset=utf-8"))
}

func TestDecodeBody_TranscodesDeclaredEUCKR(t *testing.T) {
	utf8Text := "디시인사이드"
	eucKR, err := korean.EUCKR.NewEncoder().String(utf8Text)
	require.NoError(t, err)

	got := decodeBody([]byte(eucKR), "text/html; charset=euc-kr")
	require.Equal(t, utf8Text, string(got))
}

func TestDeclaresEUCKR(t *testing.T) {
	require.True(t, declaresEUCKR("text/html; charset=EUC-KR"))
	require.True(t, declaresEUCKR("text/html; charset=ks_c_5601-1987"))
	require.False(t, declaresEUCKR("text/html; charset=utf-8"))
	require.False(t, declaresEUCKR(""))
}
