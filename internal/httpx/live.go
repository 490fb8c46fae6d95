package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/shakilabs/ott-price-compare/internal/apperr"
	"github.com/shakilabs/ott-price-compare/internal/service"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	// Origins are already reflected by CORS; the feed is public read-only data.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// TrendsWSHandler pushes the trend view for a service over a websocket, once
// on connect and again every interval.
func TrendsWSHandler(svc *service.TrendService, interval time.Duration, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := r.PathValue("slug")
		res, err := svc.Trends(r.Context(), slug)
		if err != nil {
			apperr.Write(w, r, logger, err)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.WarnContext(r.Context(), "websocket upgrade failed", "error", err)
			return
		}
		defer conn.Close()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		go func() {
			// Drain control frames; any read error means the client is gone.
			defer cancel()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(res); err != nil {
				logger.DebugContext(r.Context(), "websocket write failed", "service", slug, "error", err)
				return
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			res, err = svc.Trends(ctx, slug)
			if err != nil {
				var appErr *apperr.AppError
				msg := "internal server error"
				if errors.As(err, &appErr) {
					msg = appErr.Message
				}
				logger.WarnContext(r.Context(), "trend refresh failed", "service", slug, "error", err)
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = conn.WriteJSON(map[string]string{"error": msg})
				return
			}
		}
	}
}

type trendSignals struct {
	Trends any    `json:"trends,omitempty"`
	Error  string `json:"trendsError,omitempty"`
}

// TrendsSSEHandler streams the same view as datastar signal patches.
func TrendsSSEHandler(svc *service.TrendService, interval time.Duration, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := r.PathValue("slug")
		res, err := svc.Trends(r.Context(), slug)
		if err != nil {
			apperr.Write(w, r, logger, err)
			return
		}

		sse := datastar.NewSSE(w, r)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		ctx := r.Context()
		for {
			if err := patchSignals(sse, trendSignals{Trends: res}); err != nil {
				logger.DebugContext(ctx, "sse write failed", "service", slug, "error", err)
				return
			}
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			res, err = svc.Trends(ctx, slug)
			if err != nil {
				logger.WarnContext(ctx, "trend refresh failed", "service", slug, "error", err)
				_ = patchSignals(sse, trendSignals{Error: "트렌드 데이터를 불러오지 못했습니다."})
				return
			}
		}
	}
}

func patchSignals(sse *datastar.ServerSentEventGenerator, signals trendSignals) error {
	b, err := json.Marshal(signals)
	if err != nil {
		return err
	}
	return sse.PatchSignals(b)
}
