package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shakilabs/ott-price-compare/internal/apperr"
	"github.com/shakilabs/ott-price-compare/internal/service"
	"github.com/shakilabs/ott-price-compare/internal/validate"
)

type createdResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

type postCreatedResponse struct {
	service.PostView
	Message string `json:"message"`
}

type invalidateRequest struct {
	ServiceSlug string `json:"serviceSlug"`
}

// Invalidator drops cached data files so the next read hits disk.
type Invalidator interface {
	Invalidate(slug string)
	InvalidateAll()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeRawJSON(w http.ResponseWriter, raw json.RawMessage) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = w.Write(raw)
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.BadRequest("request body too large")
		}
		return apperr.BadRequest("입력값이 올바르지 않습니다.")
	}
	return nil
}

func clientOf(r *http.Request) service.Client {
	return service.Client{IP: clientIP(r), UserAgent: r.UserAgent()}
}

func ServicesHandler(svc *service.CatalogService, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.Services()
		if err != nil {
			apperr.Write(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func PricesHandler(svc *service.CatalogService, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := svc.Prices(r.PathValue("slug"))
		if err != nil {
			apperr.Write(w, r, logger, err)
			return
		}
		writeRawJSON(w, raw)
	}
}

func ContinentsHandler(svc *service.CatalogService, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := svc.Continents()
		if err != nil {
			apperr.Write(w, r, logger, err)
			return
		}
		writeRawJSON(w, raw)
	}
}

func TrendsHandler(svc *service.TrendService, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.Trends(r.Context(), r.PathValue("slug"))
		if err != nil {
			apperr.Write(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func SubscribeAlertHandler(svc *service.AlertService, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req service.AlertRequest
		if err := decodeJSON(r, &req); err != nil {
			apperr.Write(w, r, logger, err)
			return
		}
		sub, err := svc.Subscribe(r.Context(), req)
		if err != nil {
			apperr.Write(w, r, logger, err)
			return
		}
		logger.InfoContext(r.Context(), "alert subscribed", "id", sub.ID, "service", sub.ServiceSlug, "country", sub.CountryCode)
		writeJSON(w, http.StatusCreated, createdResponse{ID: sub.ID, Message: "가격 하락 알림(베타) 신청이 완료되었습니다."})
	}
}

func ListAlertsHandler(svc *service.AlertService, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subs, err := svc.List(r.Context())
		if err != nil {
			apperr.Write(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"subscriptions": subs})
	}
}

func ListPostsHandler(svc *service.CommunityService, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		query := service.PostQuery{
			ServiceSlug: q.Get("serviceSlug"),
			CountryCode: q.Get("countryCode"),
		}
		if raw := q.Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				apperr.Write(w, r, logger, apperr.Validation("limit must be an integer"))
				return
			}
			query.Limit = &n
		}
		posts, err := svc.List(r.Context(), query)
		if err != nil {
			apperr.Write(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"posts": posts})
	}
}

func CreatePostHandler(svc *service.CommunityService, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req service.PostRequest
		if err := decodeJSON(r, &req); err != nil {
			apperr.Write(w, r, logger, err)
			return
		}
		post, err := svc.Create(r.Context(), req, clientOf(r))
		if err != nil {
			apperr.Write(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, postCreatedResponse{PostView: post, Message: "익명 글이 등록되었습니다."})
	}
}

func ToggleLikeHandler(svc *service.CommunityService, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.ToggleLike(r.Context(), r.PathValue("postID"), clientOf(r))
		if err != nil {
			apperr.Write(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func VoteHandler(svc *service.CommunityService, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req service.VoteRequest
		if err := decodeJSON(r, &req); err != nil {
			apperr.Write(w, r, logger, err)
			return
		}
		res, err := svc.Vote(r.Context(), req, clientOf(r))
		if err != nil {
			apperr.Write(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func VoteResultsHandler(svc *service.CommunityService, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.VoteResults(r.Context(), r.URL.Query().Get("serviceSlug"))
		if err != nil {
			apperr.Write(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func SubmitReportHandler(svc *service.ReportService, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		apperr.Write(w, r, logger, svc.Submit(r.Context()))
	}
}

func ReportLogsHandler(svc *service.ReportService, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		updates, err := svc.Logs(r.Context(), r.URL.Query().Get("serviceSlug"))
		if err != nil {
			apperr.Write(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"updates": updates})
	}
}

func InvalidateCacheHandler(cache Invalidator, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req invalidateRequest
		if r.ContentLength != 0 {
			if err := decodeJSON(r, &req); err != nil {
				apperr.Write(w, r, logger, err)
				return
			}
		}
		slug := strings.TrimSpace(req.ServiceSlug)
		switch {
		case slug == "":
			cache.InvalidateAll()
		case validate.Slug(slug):
			cache.Invalidate(slug)
		default:
			apperr.Write(w, r, logger, apperr.BadRequest("invalid service slug"))
			return
		}
		logger.InfoContext(r.Context(), "cache invalidated", "service", slug)
		writeJSON(w, http.StatusOK, map[string]any{"invalidated": true, "serviceSlug": slug})
	}
}

func RecordHistoryHandler(svc *service.HistoryService, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := svc.Record(r.Context(), r.PathValue("slug"))
		if err != nil {
			apperr.Write(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		})
	}
}
