package seo

import (
	"log/slog"
	"net/http"
	"regexp"
	"strings"
)

var crawlerPattern = regexp.MustCompile(`(?i)googlebot|bingbot|yandex|baiduspider|duckduckbot|slurp|facebookexternalhit|twitterbot|linkedinbot|whatsapp|telegrambot|kakaotalk|naver|daum`)

func IsCrawler(userAgent string) bool {
	return crawlerPattern.MatchString(userAgent)
}

var passthroughPrefixes = []string{"/api", "/assets", "/ws/", "/sse/", "/auth/", "/health", "/metrics"}

func passthrough(path string) bool {
	if strings.Contains(path, ".") {
		return true
	}
	for _, prefix := range passthroughPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Crawlers returns middleware that answers search engine and link preview
// bots with prerendered HTML. Everyone else, and API or asset requests, go
// to next.
func (p *Pages) Crawlers(defaultSiteURL string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if (r.Method != http.MethodGet && r.Method != http.MethodHead) || !IsCrawler(r.UserAgent()) || passthrough(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			siteURL := ResolveSiteURL(r, defaultSiteURL)
			status := http.StatusOK
			page, ok := p.PageFor(r.URL.Path, siteURL)
			if !ok {
				page = NotFoundPage(siteURL, r.URL.Path)
				status = http.StatusNotFound
			}
			if IsPreview(r) {
				page.NoIndex = true
			}

			body, err := Render(page)
			if err != nil {
				logger.ErrorContext(r.Context(), "render crawler page", "path", r.URL.Path, "error", err)
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(status)
			_, _ = w.Write(body)
		})
	}
}
