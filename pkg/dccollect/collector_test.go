package dccollect

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/kimjiho/dcrawl/pkg/dcfetch"
	"github.com/kimjiho/dcrawl/pkg/dcmodel"
)

type fakeRepo struct {
	mu               sync.Mutex
	posts            map[dcmodel.PlatformPostID]dcmodel.Post
	existingComment  dcmodel.PlatformCommentID
	insertedPosts    []dcmodel.PostInput
	insertedComments []dcmodel.CommentInput
	nextPostID       int
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
	r.nextPostID++
	post := dcmodel.Post{
		ID:             "post-" + string(rune('0'+r.nextPostID)),
		ScenarioID:     in.ScenarioID,
		PlatformPostID: in.PlatformPostID,
		URL:            in.URL,
		Title:          in.Title,
		Contents:       in.Contents,
		WrittenAt:      in.WrittenAt,
	}
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

func (r *fakeRepo) CommentExists(_ context.Context, _ string, id dcmodel.PlatformCommentID) (bool, error) {
	return id == r.existingComment, nil
}

func testLogEntry() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}

const detailHTML = `
<form id="_view_form_"><input id="no" value="1"><input id="e_s_n_o" value="token1"></form>
<span class="title_subject">a post</span>
<div class="write_div"><p>body text</p></div>
<span class="gall_date" title="2024-03-15 13:45:20"></span>
<p id="recommend_view_up_1">1</p>
<span class="gall_comment">3</span>
`

// Scenario S4 — a comment page returns three items; repository already
// has the middle one. Exactly two are written, preserving upstream order.
func TestCollector_CommentDedup_S4(t *testing.T) {
	var commentCalls int
	commentsSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		commentCalls++
		if commentCalls == 1 {
			w.Write([]byte(`{"comments":[
				{"no":"1","del_yn":"N","memo":"first","reg_date":"2024-03-15 13:46:00"},
				{"no":"2","del_yn":"N","memo":"second (dup)","reg_date":"2024-03-15 13:47:00"},
				{"no":"3","del_yn":"N","memo":"third","reg_date":"2024-03-15 13:48:00"}
			]}`))
			return
		}
		w.Write([]byte(`{"comments":[]}`))
	}))
	defer commentsSrv.Close()

	detailSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(detailHTML))
	}))
	defer detailSrv.Close()

	id := dcmodel.PlatformPostID("DC&G&pro&1")
	repo := &fakeRepo{existingComment: dcmodel.PlatformCommentID(id + "&2")}
	col := &Collector{
		Fetcher:     dcfetch.NewFetcher(detailSrv.Client(), 0, testLogEntry()),
		Repo:        repo,
		ScenarioID:  "s1",
		Log:         testLogEntry(),
		CommentsURL: commentsSrv.URL,
		Now:         func() time.Time { return time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC) },
		PostURLFunc: func(dcmodel.PlatformPostID) (string, error) { return detailSrv.URL, nil },
	}

	err := col.Run(context.Background(), []dcmodel.PlatformPostID{id})
	require.NoError(t, err)
	require.Len(t, repo.insertedComments, 2)
	require.Equal(t, "first", repo.insertedComments[0].Contents)
	require.Equal(t, "third", repo.insertedComments[1].Contents)
}

func TestCollector_NotFoundSkipsPost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	repo := &fakeRepo{}
	col := &Collector{
		Fetcher:     dcfetch.NewFetcher(srv.Client(), 0, testLogEntry()),
		Repo:        repo,
		ScenarioID:  "s1",
		Log:         testLogEntry(),
		PostURLFunc: func(dcmodel.PlatformPostID) (string, error) { return srv.URL, nil },
	}

	err := col.Run(context.Background(), []dcmodel.PlatformPostID{"DC&G&pro&404"})
	require.NoError(t, err)
	require.Len(t, repo.insertedPosts, 0)
}

func TestCommentRequestBody(t *testing.T) {
	info := dcmodel.GalleryInfo{GallType: dcmodel.GalleryGeneral, GalleryID: "pro", PostNo: "42"}
	body := commentRequestBody(info, "esno-token", 2)
	require.Equal(t, "pro", body.Get("id"))
	require.Equal(t, "42", body.Get("no"))
	require.Equal(t, "esno-token", body.Get("e_s_n_o"))
	require.Equal(t, "N", body.Get("sort"))
	require.Equal(t, "G", body.Get("_GALLTYPE_"))
	require.Equal(t, "2", body.Get("comment_page"))
}

func TestCommentRequestBody_DefaultsGallTypeToG(t *testing.T) {
	info := dcmodel.GalleryInfo{GallType: "", GalleryID: "pro", PostNo: "1"}
	body := commentRequestBody(info, "x", 1)
	require.Equal(t, "G", body.Get("_GALLTYPE_"))
}
