package httpx

import (
	"log/slog"
	"net/http"

	"github.com/shakilabs/ott-price-compare/internal/auth"
	"github.com/shakilabs/ott-price-compare/internal/config"
	"github.com/shakilabs/ott-price-compare/internal/metrics"
	"github.com/shakilabs/ott-price-compare/internal/seo"
	"github.com/shakilabs/ott-price-compare/internal/service"
)

type Deps struct {
	Config    *config.Config
	Logger    *slog.Logger
	Cache     Invalidator
	Catalog   *service.CatalogService
	Trends    *service.TrendService
	History   *service.HistoryService
	Alerts    *service.AlertService
	Community *service.CommunityService
	Reports   *service.ReportService
	Pages     *seo.Pages
	Limiter   *RateLimiter
}

// NewRouter registers every route and wraps the mux in the middleware chain.
func NewRouter(d Deps) (http.Handler, error) {
	cfg, logger := d.Config, d.Logger
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", HealthHandler())
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("POST /auth/login", auth.LoginHandler(cfg, logger))

	mux.HandleFunc("GET /robots.txt", RobotsHandler(cfg.SiteURL))
	mux.HandleFunc("GET /ads.txt", AdsTxtHandler(cfg.AdsensePublisherID))
	mux.HandleFunc("GET /sitemap.xml", SitemapHandler(d.Pages, cfg.SiteURL, logger))

	mux.HandleFunc("GET /api/services", ServicesHandler(d.Catalog, logger))
	mux.HandleFunc("GET /api/prices/{slug}", PricesHandler(d.Catalog, logger))
	mux.HandleFunc("GET /api/continents", ContinentsHandler(d.Catalog, logger))
	mux.HandleFunc("GET /api/trends/{slug}", TrendsHandler(d.Trends, logger))

	mux.HandleFunc("POST /api/alerts", SubscribeAlertHandler(d.Alerts, logger))

	mux.HandleFunc("GET /api/community", ListPostsHandler(d.Community, logger))
	mux.HandleFunc("POST /api/community", CreatePostHandler(d.Community, logger))
	mux.HandleFunc("POST /api/community/{postID}/like", ToggleLikeHandler(d.Community, logger))
	mux.HandleFunc("POST /api/community/vote", VoteHandler(d.Community, logger))
	mux.HandleFunc("GET /api/community/vote/results", VoteResultsHandler(d.Community, logger))

	mux.HandleFunc("POST /api/reports", SubmitReportHandler(d.Reports, logger))
	mux.HandleFunc("GET /api/reports/logs", ReportLogsHandler(d.Reports, logger))

	admin := auth.Middleware(cfg, logger)
	mux.Handle("GET /api/admin/alerts", admin(ListAlertsHandler(d.Alerts, logger)))
	mux.Handle("POST /api/admin/cache/invalidate", admin(InvalidateCacheHandler(d.Cache, logger)))
	mux.Handle("POST /api/admin/history/{slug}", admin(RecordHistoryHandler(d.History, logger)))

	mux.HandleFunc("/api/", apiNotFound(logger))

	mux.HandleFunc("GET /ws/trends/{slug}", TrendsWSHandler(d.Trends, cfg.PushInterval, logger))
	mux.HandleFunc("GET /sse/trends/{slug}", TrendsSSEHandler(d.Trends, cfg.PushInterval, logger))

	if cfg.Production {
		mux.Handle("/", SPAHandler(cfg.ClientDist))
	}

	compress, err := Compress()
	if err != nil {
		return nil, err
	}
	limiter := d.Limiter
	if limiter == nil {
		limiter = NewRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst)
	}

	chain := Chain(
		Recovery(logger),
		Observe(logger),
		SecurityHeaders(),
		CORS(),
		limiter.Middleware(logger),
		BodyLimit(maxBodyBytes),
		d.Pages.Crawlers(cfg.SiteURL, logger),
		compress,
	)
	return chain(mux), nil
}
