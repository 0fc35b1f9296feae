package dcengine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/kimjiho/dcrawl/pkg/dcconfig"
	"github.com/kimjiho/dcrawl/pkg/dcmodel"
)

type fakeRepo struct {
	mu               sync.Mutex
	posts            map[dcmodel.PlatformPostID]dcmodel.Post
	insertedPosts    []dcmodel.PostInput
	insertedComments []dcmodel.CommentInput
	n                int
}

func (r *fakeRepo) FindPostByPlatformID(_ context.Context, _ string, id dcmodel.PlatformPostID) (*dcmodel.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.posts[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (r *fakeRepo) InsertPost(_ context.Context, in dcmodel.PostInput) (dcmodel.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.n++
	post := dcmodel.Post{ID: "p", PlatformPostID: in.PlatformPostID, ScenarioID: in.ScenarioID}
	r.insertedPosts = append(r.insertedPosts, in)
	if r.posts == nil {
		r.posts = map[dcmodel.PlatformPostID]dcmodel.Post{}
	}
	r.posts[in.PlatformPostID] = post
	return post, nil
}

func (r *fakeRepo) UpdatePostCommentCount(_ context.Context, _ string, _ int) error { return nil }

func (r *fakeRepo) ListRecentPosts(_ context.Context, _ string, _ time.Time) ([]dcmodel.Post, error) {
	return nil, nil
}

func (r *fakeRepo) InsertCommentsBulk(_ context.Context, in []dcmodel.CommentInput) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.insertedComments = append(r.insertedComments, in...)
	return nil
}

func (r *fakeRepo) CommentExists(_ context.Context, _ string, _ dcmodel.PlatformCommentID) (bool, error) {
	return false, nil
}

const listingHTML = `
<table class="gall_list"><tbody>
	<tr><td class="gall_num">1</td><td class="gall_tit"><a href="/board/view?id=pro&no=1">first</a></td><td class="gall_date" title="2024-01-01 00:00:00"></td></tr>
</tbody></table>`

const detailHTML = `
<form id="_view_form_"><input id="no" value="1"><input id="e_s_n_o" value="tok"></form>
<span class="title_subject">hello</span>
<div class="write_div"><p>body</p></div>
<span class="gall_date" title="2024-01-01 00:00:00"></span>
<span class="gall_comment">0</span>
`

func TestEngine_StartCrawling_SearchAndDetailPhases(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/board/view" {
			w.Write([]byte(detailHTML))
			return
		}
		w.Write([]byte(listingHTML))
	}))
	defer srv.Close()

	repo := &fakeRepo{}
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	eng := New(Options{
		Config: dcconfig.RunConfig{
			ScenarioID:  "s1",
			CrawlerCode: "raw",
			Mode:        dcmodel.ModeKeyword,
			FirstURL:    srv.URL + "/board/lists/?id=pro",
		},
		Repo:              repo,
		HTTPTimeout:       2 * time.Second,
		MaxRetries:        0,
		HeartbeatInterval: 50 * time.Millisecond,
		Log:               logger,
	})

	err := eng.StartCrawling(context.Background())
	require.NoError(t, err)
	require.Len(t, repo.insertedPosts, 1)
}

func TestEngine_StartCrawling_CancelledBeforeSearch(t *testing.T) {
	repo := &fakeRepo{}
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	eng := New(Options{
		Config: dcconfig.RunConfig{
			ScenarioID: "s1",
			Mode:       dcmodel.ModeRaw,
			FirstURL:   "https://gall.dcinside.com/board/lists/?id=pro",
		},
		Repo:              repo,
		HTTPTimeout:       time.Second,
		HeartbeatInterval: 50 * time.Millisecond,
		Log:               logger,
	}).WithCancellation(func() bool { return true })

	err := eng.StartCrawling(context.Background())
	require.NoError(t, err)
	require.Len(t, repo.insertedPosts, 0)
}
