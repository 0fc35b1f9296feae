package dcfetch

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewClient_BoundsRedirects(t *testing.T) {
	var finalHits int
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		finalHits++
		w.Write([]byte("ok"))
	}))
	defer target.Close()

	hopCount := 0
	var redirector *httptest.Server
	redirector = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hopCount++
		if hopCount > MaxRedirects+2 {
			w.Write([]byte("loop"))
			return
		}
		http.Redirect(w, r, redirector.URL+"/hop", http.StatusFound)
	}))
	defer redirector.Close()

	client := NewClient(2*time.Second, nil)
	resp, err := client.Get(redirector.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	// http.ErrUseLastResponse means the client stops following and
	// returns the redirect response itself once MaxRedirects is hit.
	require.Equal(t, http.StatusFound, resp.StatusCode)
}
