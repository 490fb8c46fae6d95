package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shakilabs/ott-price-compare/internal/apperr"
	"github.com/shakilabs/ott-price-compare/internal/model"
	"github.com/shakilabs/ott-price-compare/internal/store"
	"github.com/shakilabs/ott-price-compare/internal/validate"
)

const (
	defaultPostLimit = 30
	maxPostLimit     = 100
)

var postIDPattern = regexp.MustCompile(`^com_[a-z0-9]+$`)

// Client identifies the caller of a community action.
type Client struct {
	IP        string
	UserAgent string
}

// Key is a stable anonymous identifier for likes and votes.
func (c Client) Key() string {
	sum := sha256.Sum256([]byte(c.IP + "|" + c.UserAgent))
	return hex.EncodeToString(sum[:16])
}

type PostQuery struct {
	ServiceSlug string
	CountryCode string
	Limit       *int
}

type PostRequest struct {
	ServiceSlug string `json:"serviceSlug" validate:"required,slug"`
	CountryCode string `json:"countryCode" validate:"required,countryorall"`
	Content     string `json:"content" validate:"min=2,max=300"`
}

type PostView struct {
	ID          string          `json:"id"`
	CreatedAt   model.Timestamp `json:"createdAt"`
	ServiceSlug string          `json:"serviceSlug"`
	CountryCode string          `json:"countryCode"`
	Nickname    string          `json:"nickname"`
	Content     string          `json:"content"`
	LikeCount   int             `json:"likeCount"`
}

type LikeResult struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"likeCount"`
}

type VoteRequest struct {
	ServiceSlug string `json:"serviceSlug" validate:"required,slug"`
	CountryCode string `json:"countryCode" validate:"required,country"`
	AllowRevote bool   `json:"allowRevote"`
}

type VoteResult struct {
	Voted       bool   `json:"voted"`
	CountryCode string `json:"countryCode"`
	Revoted     bool   `json:"revoted,omitempty"`
}

type VoteTally struct {
	CountryCode string `json:"countryCode"`
	Country     string `json:"country"`
	VoteCount   int    `json:"voteCount"`
}

type VoteResults struct {
	Results    []VoteTally `json:"results"`
	TotalVotes int         `json:"totalVotes"`
}

type CommunityService struct {
	posts     *store.Log[model.Post]
	likes     *store.Log[model.Like]
	votes     *store.Log[model.Vote]
	prices    PricesReader
	validator *validate.Validator
	now       func() time.Time
}

func NewCommunityService(posts *store.Log[model.Post], likes *store.Log[model.Like], votes *store.Log[model.Vote], prices PricesReader, v *validate.Validator) *CommunityService {
	return &CommunityService{posts: posts, likes: likes, votes: votes, prices: prices, validator: v, now: time.Now}
}

// List returns the newest posts of a service, optionally for one country.
func (c *CommunityService) List(ctx context.Context, q PostQuery) ([]PostView, error) {
	if !validate.Slug(q.ServiceSlug) {
		return nil, apperr.Validation("invalid service slug")
	}
	country := strings.ToUpper(q.CountryCode)
	if country != "" && !validate.CountryOrAll(country) {
		return nil, apperr.Validation("countryCode must be a two-letter country code")
	}
	limit := defaultPostLimit
	if q.Limit != nil {
		limit = *q.Limit
	}
	if limit < 1 || limit > maxPostLimit {
		return nil, apperr.Validation(fmt.Sprintf("limit must be between 1 and %d", maxPostLimit))
	}

	posts, err := c.posts.ReadAll()
	if err != nil {
		return nil, apperr.Internal(err)
	}
	likes, err := c.likes.ReadAll()
	if err != nil {
		return nil, apperr.Internal(err)
	}
	counts := likeCounts(likes)

	filtered := make([]model.Post, 0, len(posts))
	for _, p := range posts {
		if p.ServiceSlug != q.ServiceSlug {
			continue
		}
		if country != "" && country != "ALL" && p.CountryCode != country {
			continue
		}
		filtered = append(filtered, p)
	}
	sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].CreatedAt.After(filtered[j].CreatedAt) })
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}

	out := make([]PostView, 0, len(filtered))
	for _, p := range filtered {
		view := toView(p)
		view.LikeCount = counts[p.ID]
		out = append(out, view)
	}
	return out, nil
}

func (c *CommunityService) Create(ctx context.Context, req PostRequest, client Client) (PostView, error) {
	req.Content = strings.TrimSpace(req.Content)
	if err := c.validator.Struct(req); err != nil {
		return PostView{}, err
	}
	country := strings.ToUpper(req.CountryCode)

	id := newID("com_")
	post := model.Post{
		ID:          id,
		CreatedAt:   model.NewTimestamp(c.now().UTC()),
		ServiceSlug: req.ServiceSlug,
		CountryCode: country,
		Nickname:    Nickname(fmt.Sprintf("%d-%s", c.now().UnixNano(), uuid.NewString())),
		Content:     req.Content,
		IP:          optionalString(client.IP),
		UserAgent:   optionalString(client.UserAgent),
	}
	if err := c.posts.Append(post); err != nil {
		return PostView{}, apperr.Internal(err)
	}
	return toView(post), nil
}

// ToggleLike flips the caller's like on a post.
func (c *CommunityService) ToggleLike(ctx context.Context, postID string, client Client) (LikeResult, error) {
	if !postIDPattern.MatchString(postID) {
		return LikeResult{}, apperr.Validation("invalid post id")
	}
	posts, err := c.posts.ReadAll()
	if err != nil {
		return LikeResult{}, apperr.Internal(err)
	}
	if !containsPost(posts, postID) {
		return LikeResult{}, apperr.NotFound("post not found")
	}

	key := client.Key()
	var res LikeResult
	err = c.likes.Update(func(likes []model.Like) ([]model.Like, error) {
		liked := false
		for _, l := range likes {
			if l.PostID == postID && l.VoterKey == key {
				liked = l.Liked
			}
		}
		next := model.Like{PostID: postID, VoterKey: key, Liked: !liked, CreatedAt: c.now().UTC()}
		res = LikeResult{Liked: next.Liked, LikeCount: likeCounts(append(likes, next))[postID]}
		return []model.Like{next}, nil
	})
	if err != nil {
		return LikeResult{}, apperr.Internal(err)
	}
	return res, nil
}

// Vote records the caller's favourite country for a service. A caller has one
// vote per service; changing it requires AllowRevote.
func (c *CommunityService) Vote(ctx context.Context, req VoteRequest, client Client) (VoteResult, error) {
	if err := c.validator.Struct(req); err != nil {
		return VoteResult{}, err
	}
	country := strings.ToUpper(req.CountryCode)
	key := client.Key()

	var res VoteResult
	err := c.votes.Update(func(votes []model.Vote) ([]model.Vote, error) {
		var previous *model.Vote
		for i := range votes {
			if votes[i].ServiceSlug == req.ServiceSlug && votes[i].VoterKey == key {
				previous = &votes[i]
			}
		}
		if previous != nil && !req.AllowRevote {
			conflict := apperr.Conflict("already voted for this service")
			conflict.Body = map[string]any{"error": conflict.Message, "voted": false, "countryCode": previous.CountryCode}
			return nil, conflict
		}
		res = VoteResult{Voted: true, CountryCode: country, Revoted: previous != nil}
		return []model.Vote{{
			ID:          newID("vot_"),
			CreatedAt:   c.now().UTC(),
			ServiceSlug: req.ServiceSlug,
			CountryCode: country,
			VoterKey:    key,
		}}, nil
	})
	if err != nil {
		var appErr *apperr.AppError
		if errors.As(err, &appErr) {
			return VoteResult{}, appErr
		}
		return VoteResult{}, apperr.Internal(err)
	}
	return res, nil
}

// VoteResults counts each caller's latest vote for the service.
func (c *CommunityService) VoteResults(ctx context.Context, slug string) (VoteResults, error) {
	if !validate.Slug(slug) {
		return VoteResults{}, apperr.Validation("invalid service slug")
	}
	votes, err := c.votes.ReadAll()
	if err != nil {
		return VoteResults{}, apperr.Internal(err)
	}

	latest := make(map[string]string)
	for _, v := range votes {
		if v.ServiceSlug == slug {
			latest[v.VoterKey] = v.CountryCode
		}
	}
	counts := make(map[string]int)
	for _, code := range latest {
		counts[code]++
	}

	var names map[string]string
	if p, err := c.prices.Prices(slug); err == nil {
		names = make(map[string]string, len(p.Prices))
		for _, cp := range p.Prices {
			names[cp.CountryCode] = cp.Country
		}
	}

	out := VoteResults{Results: make([]VoteTally, 0, len(counts)), TotalVotes: len(latest)}
	for code, n := range counts {
		out.Results = append(out.Results, VoteTally{CountryCode: code, Country: names[code], VoteCount: n})
	}
	sort.Slice(out.Results, func(i, j int) bool {
		if out.Results[i].VoteCount != out.Results[j].VoteCount {
			return out.Results[i].VoteCount > out.Results[j].VoteCount
		}
		return out.Results[i].CountryCode < out.Results[j].CountryCode
	})
	return out, nil
}

func likeCounts(likes []model.Like) map[string]int {
	state := make(map[[2]string]bool)
	for _, l := range likes {
		state[[2]string{l.PostID, l.VoterKey}] = l.Liked
	}
	counts := make(map[string]int)
	for k, liked := range state {
		if liked {
			counts[k[0]]++
		}
	}
	return counts
}

func toView(p model.Post) PostView {
	nickname := strings.TrimSpace(p.Nickname)
	if nickname == "" {
		seed := p.ID
		if seed == "" {
			seed = p.CreatedAt.String()
		}
		if seed == "" {
			seed = p.Content
		}
		if seed == "" {
			seed = "anonymous"
		}
		nickname = Nickname(seed)
	}
	return PostView{
		ID:          p.ID,
		CreatedAt:   p.CreatedAt,
		ServiceSlug: p.ServiceSlug,
		CountryCode: p.CountryCode,
		Nickname:    nickname,
		Content:     p.Content,
	}
}

func containsPost(posts []model.Post, id string) bool {
	for _, p := range posts {
		if p.ID == id {
			return true
		}
	}
	return false
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
