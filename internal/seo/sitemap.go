package seo

import (
	"encoding/xml"
	"strings"
	"time"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

// Sitemap lists the home and static pages plus, for every active service,
// its price page, its trends page and one page per priced country.
func (p *Pages) Sitemap(siteURL string, now time.Time) ([]byte, error) {
	today := now.UTC().Format(time.DateOnly)
	set := urlSet{Xmlns: sitemapNS, URLs: []sitemapURL{
		{Loc: siteURL, ChangeFreq: "weekly", Priority: "1.0"},
		{Loc: siteURL + "/about", ChangeFreq: "monthly", Priority: "0.3"},
		{Loc: siteURL + "/privacy", ChangeFreq: "monthly", Priority: "0.2"},
	}}

	for _, svc := range p.activeServices() {
		set.URLs = append(set.URLs,
			sitemapURL{Loc: siteURL + "/" + svc.Slug, LastMod: today, ChangeFreq: "weekly", Priority: "0.9"},
			sitemapURL{Loc: siteURL + "/" + svc.Slug + "/trends", LastMod: today, ChangeFreq: "daily", Priority: "0.8"},
		)
		prices := p.prices(svc.Slug)
		if prices == nil {
			continue
		}
		lastMod := prices.LastUpdated
		if lastMod == "" {
			lastMod = today
		}
		for _, c := range prices.Prices {
			if c.CountryCode == "" {
				continue
			}
			set.URLs = append(set.URLs, sitemapURL{
				Loc:        siteURL + "/" + svc.Slug + "/" + strings.ToLower(c.CountryCode),
				LastMod:    lastMod,
				ChangeFreq: "weekly",
				Priority:   "0.7",
			})
		}
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

func Robots(siteURL string) string {
	return strings.Join([]string{
		"User-agent: *",
		"Allow: /",
		"Sitemap: " + siteURL + "/sitemap.xml",
	}, "\n")
}

// AdsTxt returns the ads.txt line for an AdSense publisher id, accepting
// both the ca-pub- and pub- forms.
func AdsTxt(publisherID string) (string, bool) {
	publisherID = strings.TrimSpace(publisherID)
	if publisherID == "" {
		return "", false
	}
	if len(publisherID) >= 3 && strings.EqualFold(publisherID[:3], "ca-") {
		publisherID = publisherID[3:]
	}
	return "google.com, " + publisherID + ", DIRECT, f08c47fec0942fa0", true
}
