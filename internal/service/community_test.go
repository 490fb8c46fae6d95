package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shakilabs/ott-price-compare/internal/apperr"
	"github.com/shakilabs/ott-price-compare/internal/model"
	"github.com/shakilabs/ott-price-compare/internal/store"
	"github.com/shakilabs/ott-price-compare/internal/validate"
)

func newCommunityService(t *testing.T) (*CommunityService, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "community")
	svc := NewCommunityService(
		store.NewLog[model.Post](filepath.Join(dir, "posts.ndjson")),
		store.NewLog[model.Like](filepath.Join(dir, "likes.ndjson")),
		store.NewLog[model.Vote](filepath.Join(dir, "votes.ndjson")),
		youtubeSource(),
		validate.New(),
	)
	return svc, dir
}

var alice = Client{IP: "10.0.0.1", UserAgent: "firefox"}
var bob = Client{IP: "10.0.0.2", UserAgent: "chrome"}

func TestNickname_Deterministic(t *testing.T) {
	assert.Equal(t, "반듯한 토끼", Nickname("a"))
	assert.Equal(t, Nickname("com_abc"), Nickname("com_abc"))
	assert.Equal(t, 2, len(strings.Fields(Nickname("anonymous"))))
}

func TestCommunityCreateAndList(t *testing.T) {
	svc, _ := newCommunityService(t)
	ctx := context.Background()

	clock := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { clock = clock.Add(time.Minute); return clock }

	first, err := svc.Create(ctx, PostRequest{ServiceSlug: "youtube-premium", CountryCode: "tr", Content: "  튀르키예 우회 후기  "}, alice)
	require.NoError(t, err)
	assert.Regexp(t, `^com_[0-9a-f]{16}$`, first.ID)
	assert.Equal(t, "TR", first.CountryCode)
	assert.Equal(t, "튀르키예 우회 후기", first.Content)
	assert.NotEmpty(t, first.Nickname)

	_, err = svc.Create(ctx, PostRequest{ServiceSlug: "youtube-premium", CountryCode: "ALL", Content: "전체 게시판"}, bob)
	require.NoError(t, err)
	_, err = svc.Create(ctx, PostRequest{ServiceSlug: "netflix", CountryCode: "US", Content: "다른 서비스"}, bob)
	require.NoError(t, err)

	all, err := svc.List(ctx, PostQuery{ServiceSlug: "youtube-premium", CountryCode: "all"})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "전체 게시판", all[0].Content, "newest first")

	tr, err := svc.List(ctx, PostQuery{ServiceSlug: "youtube-premium", CountryCode: "TR"})
	require.NoError(t, err)
	require.Len(t, tr, 1)
	assert.Equal(t, first.ID, tr[0].ID)

	limited, err := svc.List(ctx, PostQuery{ServiceSlug: "youtube-premium", Limit: valToPtr(1)})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestCommunityCreate_Validation(t *testing.T) {
	svc, _ := newCommunityService(t)
	ctx := context.Background()

	for _, req := range []PostRequest{
		{ServiceSlug: "youtube-premium", CountryCode: "TR", Content: " a "},
		{ServiceSlug: "youtube-premium", CountryCode: "TR", Content: strings.Repeat("가", 301)},
		{ServiceSlug: "youtube-premium", CountryCode: "TUR", Content: "hello"},
		{ServiceSlug: "You Tube", CountryCode: "TR", Content: "hello"},
	} {
		_, err := svc.Create(ctx, req, alice)
		var appErr *apperr.AppError
		require.True(t, errors.As(err, &appErr), "request %+v", req)
		assert.Equal(t, 400, appErr.StatusCode)
	}

	for _, limit := range []int{0, -1, 101} {
		_, err := svc.List(ctx, PostQuery{ServiceSlug: "youtube-premium", Limit: valToPtr(limit)})
		var appErr *apperr.AppError
		require.True(t, errors.As(err, &appErr), "limit %d", limit)
		assert.Equal(t, 400, appErr.StatusCode)
	}
}

func TestCommunityList_NicknameFallback(t *testing.T) {
	svc, dir := newCommunityService(t)
	legacy := store.NewLog[model.Post](filepath.Join(dir, "posts.ndjson"))
	require.NoError(t, legacy.Append(model.Post{ID: "com_legacy1", ServiceSlug: "youtube-premium", CountryCode: "KR", Content: "예전 글"}))

	posts, err := svc.List(context.Background(), PostQuery{ServiceSlug: "youtube-premium"})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, Nickname("com_legacy1"), posts[0].Nickname)
}

func TestCommunityList_LegacyPostsWithoutID(t *testing.T) {
	svc, dir := newCommunityService(t)
	path := filepath.Join(dir, "posts.ndjson")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	lines := `{"serviceSlug":"youtube-premium","countryCode":"KR","content":"날짜 형식이 다른 글","createdAt":"2024/01/05 10:00"}
{"serviceSlug":"youtube-premium","countryCode":"KR","content":"id 없는 글","createdAt":"2024-01-06T10:00:00.000Z"}
`
	require.NoError(t, os.WriteFile(path, []byte(lines), 0o644))

	posts, err := svc.List(context.Background(), PostQuery{ServiceSlug: "youtube-premium"})
	require.NoError(t, err)
	require.Len(t, posts, 2)

	assert.Equal(t, "id 없는 글", posts[0].Content)
	assert.Equal(t, Nickname("2024-01-06T10:00:00.000Z"), posts[0].Nickname)

	assert.Equal(t, "날짜 형식이 다른 글", posts[1].Content)
	assert.Equal(t, "2024/01/05 10:00", posts[1].CreatedAt.Raw)
	assert.Equal(t, Nickname("2024/01/05 10:00"), posts[1].Nickname)
}

func TestCommunityToggleLike(t *testing.T) {
	svc, _ := newCommunityService(t)
	ctx := context.Background()

	post, err := svc.Create(ctx, PostRequest{ServiceSlug: "youtube-premium", CountryCode: "TR", Content: "좋아요 테스트"}, alice)
	require.NoError(t, err)

	res, err := svc.ToggleLike(ctx, post.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, LikeResult{Liked: true, LikeCount: 1}, res)

	res, err = svc.ToggleLike(ctx, post.ID, bob)
	require.NoError(t, err)
	assert.Equal(t, LikeResult{Liked: true, LikeCount: 2}, res)

	res, err = svc.ToggleLike(ctx, post.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, LikeResult{Liked: false, LikeCount: 1}, res)

	posts, err := svc.List(ctx, PostQuery{ServiceSlug: "youtube-premium"})
	require.NoError(t, err)
	assert.Equal(t, 1, posts[0].LikeCount)

	_, err = svc.ToggleLike(ctx, "com_missing", alice)
	var appErr *apperr.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 404, appErr.StatusCode)

	_, err = svc.ToggleLike(ctx, "../../etc", alice)
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 400, appErr.StatusCode)
}

func TestCommunityVote(t *testing.T) {
	svc, _ := newCommunityService(t)
	ctx := context.Background()

	res, err := svc.Vote(ctx, VoteRequest{ServiceSlug: "youtube-premium", CountryCode: "tr"}, alice)
	require.NoError(t, err)
	assert.Equal(t, VoteResult{Voted: true, CountryCode: "TR"}, res)

	_, err = svc.Vote(ctx, VoteRequest{ServiceSlug: "youtube-premium", CountryCode: "US"}, alice)
	var appErr *apperr.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 409, appErr.StatusCode)
	body, ok := appErr.Body.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "TR", body["countryCode"])

	res, err = svc.Vote(ctx, VoteRequest{ServiceSlug: "youtube-premium", CountryCode: "US", AllowRevote: true}, alice)
	require.NoError(t, err)
	assert.True(t, res.Revoted)

	_, err = svc.Vote(ctx, VoteRequest{ServiceSlug: "youtube-premium", CountryCode: "US"}, bob)
	require.NoError(t, err)
	_, err = svc.Vote(ctx, VoteRequest{ServiceSlug: "netflix", CountryCode: "TR"}, bob)
	require.NoError(t, err)

	results, err := svc.VoteResults(ctx, "youtube-premium")
	require.NoError(t, err)
	assert.Equal(t, 2, results.TotalVotes)
	require.Len(t, results.Results, 1)
	assert.Equal(t, VoteTally{CountryCode: "US", Country: "미국", VoteCount: 2}, results.Results[0])
}

func TestCommunityVoteResults_Ordering(t *testing.T) {
	svc, _ := newCommunityService(t)
	ctx := context.Background()

	voters := []struct {
		client  Client
		country string
	}{
		{Client{IP: "1"}, "TR"},
		{Client{IP: "2"}, "KR"},
		{Client{IP: "3"}, "TR"},
		{Client{IP: "4"}, "AR"},
	}
	for _, v := range voters {
		_, err := svc.Vote(ctx, VoteRequest{ServiceSlug: "youtube-premium", CountryCode: v.country}, v.client)
		require.NoError(t, err)
	}

	results, err := svc.VoteResults(ctx, "youtube-premium")
	require.NoError(t, err)
	var codes []string
	for _, r := range results.Results {
		codes = append(codes, r.CountryCode)
	}
	assert.Equal(t, []string{"TR", "AR", "KR"}, codes)
	assert.Equal(t, 4, results.TotalVotes)
	assert.Equal(t, "", results.Results[1].Country, "countries without price data have no name")
}
