package dcfetch

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyGetHeaders(t *testing.T) {
	u, _ := url.Parse("https://gall.dcinside.com/board/view?id=pro&no=1")
	h := http.Header{}
	ApplyGetHeaders(u, h.Set)

	require.NotEmpty(t, h.Get("User-Agent"))
	require.Contains(t, h.Get("Accept"), "text/html")
	require.Equal(t, "https://gall.dcinside.com", h.Get("Referer"))
}

func TestApplyPostHeaders(t *testing.T) {
	h := http.Header{}
	ApplyPostHeaders("https://gall.dcinside.com/board/view?id=pro&no=1", h.Set)

	require.Equal(t, "XMLHttpRequest", h.Get("X-Requested-With"))
	require.Contains(t, h.Get("Content-Type"), "application/x-www-form-urlencoded")
	require.Contains(t, h.Get("Accept"), "application/json")
	require.Equal(t, "https://gall.dcinside.com/board/view?id=pro&no=1", h.Get("Referer"))
}

func TestRandomUserAgent_NonEmpty(t *testing.T) {
	for i := 0; i < 10; i++ {
		require.NotEmpty(t, RandomUserAgent())
	}
}
