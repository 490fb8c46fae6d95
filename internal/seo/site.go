// Package seo builds the crawler-facing side of the site: page metadata,
// prerendered HTML, sitemap.xml, robots.txt and ads.txt.
package seo

import (
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

const DefaultSiteURL = "https://shakilabs.com"

var (
	hostPattern      = regexp.MustCompile(`(?i)^[a-z0-9.-]+(:\d+)?$`)
	localHostPattern = regexp.MustCompile(`(?i)^(localhost|127\.0\.0\.1)(:\d+)?$`)
)

// NormalizeSiteURL reduces raw to scheme://host, or "" when it is not an
// absolute URL.
func NormalizeSiteURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

func validHost(host string) bool {
	if !hostPattern.MatchString(host) {
		return false
	}
	name := host
	if i := strings.LastIndexByte(name, ':'); i >= 0 {
		name = name[:i]
	}
	return !strings.HasPrefix(name, "-") && !strings.HasSuffix(name, "-")
}

func protocol(r *http.Request, host string) string {
	if proto := r.Header.Get("X-Forwarded-Proto"); strings.TrimSpace(proto) != "" {
		return strings.TrimSpace(strings.Split(proto, ",")[0])
	}
	if r.TLS != nil {
		return "https"
	}
	if localHostPattern.MatchString(host) {
		return "http"
	}
	return "https"
}

// ResolveSiteURL picks the public origin for links in generated documents.
// A ?host= preview override wins, then X-Forwarded-Host, then Host; fallback
// is used when none of them is a plausible host name.
func ResolveSiteURL(r *http.Request, fallback string) string {
	if fallback == "" {
		fallback = DefaultSiteURL
	}
	if r == nil {
		return fallback
	}

	q := r.URL.Query()
	if host := strings.TrimSpace(q.Get("host")); validHost(host) {
		proto := strings.ToLower(strings.TrimSpace(q.Get("proto")))
		if proto != "http" && proto != "https" {
			proto = protocol(r, host)
		}
		return proto + "://" + strings.ToLower(host)
	}

	if fwd := strings.TrimSpace(strings.Split(r.Header.Get("X-Forwarded-Host"), ",")[0]); validHost(fwd) {
		return protocol(r, fwd) + "://" + strings.ToLower(fwd)
	}
	if host := strings.TrimSpace(r.Host); validHost(host) {
		return protocol(r, host) + "://" + strings.ToLower(host)
	}
	return fallback
}

// IsPreview reports whether the request asked for a preview host, whose
// pages must not be indexed.
func IsPreview(r *http.Request) bool {
	return strings.TrimSpace(r.URL.Query().Get("host")) != ""
}
