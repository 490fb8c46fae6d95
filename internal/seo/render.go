package seo

import (
	"bytes"
	"html/template"
	"regexp"
	"strconv"
	"strings"

	"github.com/shakilabs/ott-price-compare/internal/model"
)

type Link struct {
	Text string
	Href string
}

type Cell struct {
	Text string
	Href string
	Mono bool
}

type Table struct {
	Columns []string
	Rows    [][]Cell
}

type Section struct {
	Heading   string
	Paragraph string
	Items     []Link
	Table     *Table
	Notice    string
	Link      *Link
}

// Page is a prerendered document for crawlers.
type Page struct {
	Meta     Meta
	NoIndex  bool
	Sections []Section
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="ko">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <meta name="robots" content="{{if .NoIndex}}noindex,nofollow{{else}}index,follow{{end}}">
  <title>{{.Meta.Title}}</title>
  <meta name="description" content="{{.Meta.Description}}">
  <link rel="canonical" href="{{.Meta.URL}}">
  <meta property="og:title" content="{{.Meta.Title}}">
  <meta property="og:description" content="{{.Meta.Description}}">
  <meta property="og:url" content="{{.Meta.URL}}">
  <meta property="og:type" content="website">
  <meta property="og:locale" content="ko_KR">
  <meta property="og:site_name" content="OTT Price Compare">
  <meta name="twitter:card" content="summary">
  <meta name="twitter:title" content="{{.Meta.Title}}">
  <meta name="twitter:description" content="{{.Meta.Description}}">
  {{- if .Meta.JSONLD}}
  <script type="application/ld+json">{{.Meta.JSONLD}}</script>
  {{- end}}
  <style>
    body { margin: 0; font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; background: #fcf8f2; color: #2c221b; line-height: 1.6; }
    main { max-width: 1080px; margin: 0 auto; padding: 24px 16px 48px; }
    h1 { margin: 0 0 12px; font-size: 1.8rem; line-height: 1.25; }
    h2 { margin: 26px 0 10px; font-size: 1.2rem; }
    a { color: #b95a10; text-decoration: none; }
    table { width: 100%; border-collapse: collapse; margin-top: 12px; background: #fff; }
    th, td { border: 1px solid #eadfcf; padding: 8px; text-align: left; font-size: 0.95rem; }
    th { background: #f7efe2; }
    .mono { font-variant-numeric: tabular-nums; white-space: nowrap; }
    .notice { margin-top: 20px; color: #625547; font-size: 0.9rem; }
  </style>
</head>
<body>
  <main>
    <h1>{{.Meta.Title}}</h1>
    <p>{{.Meta.Description}}</p>
    {{- range .Sections}}
    <section>
      {{- if .Heading}}<h2>{{.Heading}}</h2>{{end}}
      {{- if .Paragraph}}<p>{{.Paragraph}}</p>{{end}}
      {{- if .Items}}<ul>{{range .Items}}<li><a href="{{.Href}}">{{.Text}}</a></li>{{end}}</ul>{{end}}
      {{- with .Table}}
      <table>
        <thead><tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr></thead>
        <tbody>{{range .Rows}}<tr>{{range .}}<td{{if .Mono}} class="mono"{{end}}>{{if .Href}}<a href="{{.Href}}">{{.Text}}</a>{{else}}{{.Text}}{{end}}</td>{{end}}</tr>{{end}}</tbody>
      </table>
      {{- end}}
      {{- if .Notice}}<p class="notice">{{.Notice}}</p>{{end}}
      {{- with .Link}}<p class="notice"><a href="{{.Href}}">{{.Text}}</a></p>{{end}}
    </section>
    {{- end}}
  </main>
</body>
</html>
`))

func Render(p Page) ([]byte, error) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var (
	trendsPath  = regexp.MustCompile(`^/([a-z0-9-]+)/trends$`)
	countryPath = regexp.MustCompile(`^/([a-z0-9-]+)/([a-z]{2})$`)
	servicePath = regexp.MustCompile(`^/([a-z0-9-]+)$`)
)

// PageFor builds the crawler page for path, or reports false when path is
// not a page of the site.
func (p *Pages) PageFor(path, siteURL string) (Page, bool) {
	switch path {
	case "/":
		return Page{Meta: HomeMeta(siteURL), Sections: p.homeSections(siteURL)}, true
	case "/about", "/privacy":
		meta, _ := StaticMeta(path[1:], siteURL)
		return Page{Meta: meta, Sections: staticSections(path[1:])}, true
	}

	if m := trendsPath.FindStringSubmatch(path); m != nil {
		meta, ok := p.TrendsMeta(m[1], siteURL)
		if !ok {
			return Page{}, false
		}
		return Page{Meta: meta, Sections: p.trendsSections(m[1], siteURL)}, true
	}
	if m := countryPath.FindStringSubmatch(path); m != nil {
		meta, ok := p.CountryMeta(m[1], m[2], siteURL)
		if !ok {
			return Page{}, false
		}
		return Page{Meta: meta, Sections: p.countrySections(m[1], m[2], siteURL)}, true
	}
	if m := servicePath.FindStringSubmatch(path); m != nil {
		meta, ok := p.ServiceMeta(m[1], siteURL)
		if !ok {
			return Page{}, false
		}
		return Page{Meta: meta, Sections: p.serviceSections(m[1], siteURL)}, true
	}
	return Page{}, false
}

// NotFoundPage is served to crawlers for paths that are not pages.
func NotFoundPage(siteURL, path string) Page {
	return Page{
		Meta: Meta{
			Title:       "페이지를 찾을 수 없습니다 | OTT 가격 비교",
			Description: "요청하신 페이지가 존재하지 않습니다.",
			URL:         siteURL + path,
		},
		NoIndex:  true,
		Sections: []Section{{Link: &Link{Text: "홈으로 이동", Href: siteURL}}},
	}
}

func (p *Pages) homeSections(siteURL string) []Section {
	active := p.activeServices()
	if len(active) == 0 {
		return []Section{{Heading: "서비스 준비 중", Paragraph: "현재 활성화된 서비스가 없습니다."}}
	}
	items := make([]Link, 0, len(active))
	for _, svc := range active {
		names := make([]string, 0, len(svc.Plans))
		for _, plan := range svc.Plans {
			names = append(names, plan.Name)
		}
		text := svc.Name
		if len(names) > 0 {
			text += " · " + strings.Join(names, ", ")
		}
		items = append(items, Link{Text: text, Href: siteURL + "/" + svc.Slug})
	}
	return []Section{{
		Heading: "활성 서비스",
		Items:   items,
		Notice:  "국가별 상세 페이지에서 절약률과 요금제별 가격을 확인할 수 있습니다.",
	}}
}

func (p *Pages) serviceSections(slug, siteURL string) []Section {
	prices := p.prices(slug)
	if prices == nil || len(prices.Prices) == 0 {
		return nil
	}
	rows := make([][]Cell, 0, len(prices.Prices))
	for i, c := range byKRW(prices.Prices) {
		rows = append(rows, []Cell{
			{Text: strconv.Itoa(i + 1), Mono: true},
			{Text: c.Country, Href: countryURL(siteURL, slug, c.CountryCode)},
			{Text: formatLocal(c.Monthly(model.IndividualPlan), c.Currency), Mono: true},
			{Text: formatKRW(c.KRW(model.IndividualPlan)), Mono: true},
		})
	}
	return []Section{{
		Heading: "국가별 개인 요금제 가격",
		Table:   &Table{Columns: []string{"#", "국가", "현지 가격", "KRW 환산"}, Rows: rows},
		Notice:  "마지막 업데이트: " + orDash(prices.LastUpdated) + " · 환율 기준일: " + orDash(prices.ExchangeRateDate),
	}}
}

func (p *Pages) countrySections(slug, countryCode, siteURL string) []Section {
	svc, ok := p.service(slug)
	prices := p.prices(slug)
	if !ok || prices == nil {
		return nil
	}
	country, ok := prices.Find(strings.ToUpper(countryCode))
	if !ok {
		return nil
	}
	rows := make([][]Cell, 0, len(svc.Plans))
	for _, plan := range svc.Plans {
		rows = append(rows, []Cell{
			{Text: plan.Name},
			{Text: formatLocal(country.Monthly(plan.ID), country.Currency), Mono: true},
			{Text: formatKRW(country.KRW(plan.ID)), Mono: true},
			{Text: formatUSD(country.USD(plan.ID)), Mono: true},
		})
	}
	return []Section{{
		Heading: "요금제별 가격",
		Table:   &Table{Columns: []string{"요금제", "현지 가격", "KRW 환산", "USD 환산"}, Rows: rows},
		Link:    &Link{Text: "전체 국가 비교 페이지로 이동", Href: siteURL + "/" + slug},
	}}
}

func (p *Pages) trendsSections(slug, siteURL string) []Section {
	prices := p.prices(slug)
	if prices == nil || len(prices.Prices) == 0 {
		return nil
	}
	sorted := byKRW(prices.Prices)
	if len(sorted) > 10 {
		sorted = sorted[:10]
	}
	rows := make([][]Cell, 0, len(sorted))
	for i, c := range sorted {
		rows = append(rows, []Cell{
			{Text: strconv.Itoa(i + 1), Mono: true},
			{Text: c.Country, Href: countryURL(siteURL, slug, c.CountryCode)},
			{Text: formatKRW(c.KRW(model.IndividualPlan)), Mono: true},
		})
	}
	return []Section{{
		Heading: "최저가 TOP 10 (개인 요금제)",
		Table:   &Table{Columns: []string{"#", "국가", "KRW 환산"}, Rows: rows},
	}}
}

func staticSections(page string) []Section {
	switch page {
	case "about":
		return []Section{{Heading: "서비스 목적", Paragraph: "OTT Price Compare는 국가별 OTT 구독 요금을 빠르게 비교할 수 있도록 데이터를 정리해 제공하는 서비스입니다."}}
	case "privacy":
		return []Section{{Heading: "개인정보 및 광고 안내", Paragraph: "본 사이트는 Google AdSense를 사용할 수 있으며, 관련 정책에 따라 쿠키 기반 광고가 제공될 수 있습니다."}}
	}
	return nil
}

func countryURL(siteURL, slug, code string) string {
	return siteURL + "/" + slug + "/" + strings.ToLower(code)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
