package httpx

import (
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/shakilabs/ott-price-compare/internal/apperr"
	"github.com/shakilabs/ott-price-compare/internal/seo"
)

func SitemapHandler(pages *seo.Pages, defaultSiteURL string, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := pages.Sitemap(seo.ResolveSiteURL(r, defaultSiteURL), time.Now())
		if err != nil {
			apperr.Write(w, r, logger, err)
			return
		}
		w.Header().Set("Content-Type", "application/xml; charset=utf-8")
		_, _ = w.Write(body)
	}
}

func RobotsHandler(defaultSiteURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(seo.Robots(seo.ResolveSiteURL(r, defaultSiteURL))))
	}
}

func AdsTxtHandler(publisherID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		line, ok := seo.AdsTxt(publisherID)
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("ads.txt is not configured"))
			return
		}
		_, _ = w.Write([]byte(line))
	}
}

// SPAHandler serves the built client from dir and falls back to index.html
// for any path that is not a file, leaving routing to the client.
func SPAHandler(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	index := filepath.Join(dir, "index.html")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.NotFound(w, r)
			return
		}
		clean := path.Clean("/" + r.URL.Path)
		if clean != "/" {
			if fi, err := os.Stat(filepath.Join(dir, filepath.FromSlash(clean))); err == nil && !fi.IsDir() {
				files.ServeHTTP(w, r)
				return
			}
		}
		w.Header().Set("Cache-Control", "no-cache")
		http.ServeFile(w, r, index)
	})
}

func apiNotFound(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		apperr.Write(w, r, logger, apperr.NotFound("not found: "+strings.TrimSpace(r.URL.Path)))
	}
}
