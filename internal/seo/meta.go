package seo

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/shakilabs/ott-price-compare/internal/model"
)

// Meta is the head metadata of one page.
type Meta struct {
	Title       string
	Description string
	URL         string
	JSONLD      map[string]any
}

// Catalog is the data the SEO pages are built from.
type Catalog interface {
	Services() (*model.ServicesPayload, error)
	Prices(slug string) (*model.PricesPayload, error)
}

type Pages struct {
	catalog Catalog
}

func NewPages(c Catalog) *Pages {
	return &Pages{catalog: c}
}

func (p *Pages) service(slug string) (model.Service, bool) {
	services, err := p.catalog.Services()
	if err != nil {
		return model.Service{}, false
	}
	return services.Find(slug)
}

func (p *Pages) prices(slug string) *model.PricesPayload {
	prices, err := p.catalog.Prices(slug)
	if err != nil {
		return nil
	}
	return prices
}

func (p *Pages) activeServices() []model.Service {
	services, err := p.catalog.Services()
	if err != nil {
		return nil
	}
	return services.Active()
}

func HomeMeta(siteURL string) Meta {
	return Meta{
		Title:       "OTT 가격 비교 | 국가별 구독 요금 한눈에",
		Description: "유튜브 프리미엄, 넷플릭스 등 OTT 서비스의 국가별 구독 요금을 비교하세요. 가장 저렴한 나라를 찾아드립니다.",
		URL:         siteURL,
		JSONLD: map[string]any{
			"@context":    "https://schema.org",
			"@type":       "WebSite",
			"name":        "OTT Price Compare",
			"url":         siteURL,
			"description": "전 세계 OTT 구독 서비스 국가별 가격 비교 사이트",
			"potentialAction": map[string]any{
				"@type":       "SearchAction",
				"target":      siteURL + "/{service_slug}",
				"query-input": "required name=service_slug",
			},
		},
	}
}

// ServiceMeta describes the price table of one service, headlined by its
// cheapest country. It needs both the service and its prices.
func (p *Pages) ServiceMeta(slug, siteURL string) (Meta, bool) {
	svc, ok := p.service(slug)
	if !ok {
		return Meta{}, false
	}
	prices := p.prices(slug)
	if prices == nil {
		return Meta{}, false
	}

	sorted := byKRW(prices.Prices)
	count := len(prices.Prices)
	meta := Meta{
		Title:       svc.Name + " 국가별 가격 비교 | 가장 싼 나라는?",
		Description: svc.Name + " 국가별 구독 요금 비교. 개인/가족/학생 요금제별 가격을 확인하세요.",
		URL:         siteURL + "/" + slug,
	}

	var faq []map[string]any
	if len(sorted) > 0 {
		cheapest := sorted[0]
		cheapestKRW := cheapest.KRW(model.IndividualPlan)
		krwText := formatKRW(cheapestKRW)
		meta.Description = fmt.Sprintf("%s 가격 %d개국 비교. 가장 저렴한 나라는 %s(월 %s). 한국 대비 최대 절약 가능.",
			svc.Name, count, cheapest.Country, krwText)
		faq = append(faq, faqItem(svc.Name+" 가장 저렴한 나라는?",
			fmt.Sprintf("%s이 월 %s으로 가장 저렴합니다.", cheapest.Country, krwText)))

		if base, ok := prices.Base(); ok {
			baseKRW := base.KRW(model.IndividualPlan)
			if baseKRW.Valid && baseKRW.Value != 0 && cheapestKRW.Valid && cheapestKRW.Value != 0 {
				faq = append(faq, faqItem(svc.Name+" 한국 대비 최대 절약률은?",
					fmt.Sprintf("%s 기준 한국(%s) 대비 %d%% 저렴합니다.",
						cheapest.Country, formatKRW(baseKRW), savingsPercent(cheapestKRW, baseKRW))))
			}
		}
	}
	faq = append(faq, faqItem(svc.Name+" 가격은 몇 개국을 비교할 수 있나요?",
		fmt.Sprintf("현재 %d개국의 %s 가격을 비교할 수 있습니다.", count, svc.Name)))

	meta.JSONLD = map[string]any{
		"@context":   "https://schema.org",
		"@type":      "FAQPage",
		"mainEntity": faq,
	}
	return meta, true
}

// CountryMeta describes one country's prices for a service.
func (p *Pages) CountryMeta(slug, countryCode, siteURL string) (Meta, bool) {
	svc, ok := p.service(slug)
	if !ok {
		return Meta{}, false
	}
	prices := p.prices(slug)
	if prices == nil {
		return Meta{}, false
	}
	country, ok := prices.Find(strings.ToUpper(countryCode))
	if !ok {
		return Meta{}, false
	}

	krw := country.KRW(model.IndividualPlan)
	var baseKRW model.Number
	if base, ok := prices.Base(); ok {
		baseKRW = base.KRW(model.IndividualPlan)
	}
	savings := savingsPercent(krw, baseKRW)
	krwText := formatKRW(krw)
	localText := formatLocal(country.Monthly(model.IndividualPlan), country.Currency)

	meta := Meta{URL: siteURL + "/" + slug + "/" + strings.ToLower(countryCode)}
	if savings > 0 {
		meta.Title = fmt.Sprintf("%s %s 가격 | 월 %s - %d%% 절약", svc.Name, country.Country, krwText, savings)
		meta.Description = fmt.Sprintf("%s %s 월 %s(%s). 한국 대비 %d%% 절약. 개인/가족/학생 요금제별 상세 비교.",
			svc.Name, country.Country, localText, krwText, savings)
	} else {
		meta.Title = fmt.Sprintf("%s %s 가격 | 월 %s", svc.Name, country.Country, krwText)
		meta.Description = fmt.Sprintf("%s %s 구독 요금 상세 정보. 월 %s. 개인/가족/학생 요금제별 가격 비교.",
			svc.Name, country.Country, localText)
	}

	offers := map[string]any{
		"@type":         "AggregateOffer",
		"priceCurrency": country.Currency,
		"offerCount":    len(svc.Plans),
	}
	low, high := math.Inf(1), math.Inf(-1)
	for _, plan := range svc.Plans {
		if m := country.Monthly(plan.ID); m.Valid {
			low = math.Min(low, m.Value)
			high = math.Max(high, m.Value)
		}
	}
	if !math.IsInf(low, 1) {
		offers["lowPrice"] = low
		offers["highPrice"] = high
	}
	meta.JSONLD = map[string]any{
		"@context":    "https://schema.org",
		"@type":       "Product",
		"name":        svc.Name + " " + country.Country,
		"description": svc.Name + " " + country.Country + " 구독 서비스",
		"offers":      offers,
	}
	return meta, true
}

func (p *Pages) TrendsMeta(slug, siteURL string) (Meta, bool) {
	svc, ok := p.service(slug)
	if !ok {
		return Meta{}, false
	}
	count := 0
	if prices := p.prices(slug); prices != nil {
		count = len(prices.Prices)
	}
	return Meta{
		Title:       svc.Name + " 가격 트렌드 | 최근 변동 TOP",
		Description: fmt.Sprintf("%s 최근 가격 하락 국가와 한국 대비 절약률 상위 국가를 확인하세요. %d개국 기준 데이터입니다.", svc.Name, count),
		URL:         siteURL + "/" + slug + "/trends",
	}, true
}

func StaticMeta(page, siteURL string) (Meta, bool) {
	switch page {
	case "about":
		return Meta{
			Title:       "소개 | OTT 가격 비교",
			Description: "OTT Price Compare 서비스 소개. 전 세계 OTT 구독 서비스의 국가별 가격을 비교하는 사이트입니다.",
			URL:         siteURL + "/about",
		}, true
	case "privacy":
		return Meta{
			Title:       "개인정보처리방침 | OTT 가격 비교",
			Description: "OTT Price Compare 개인정보처리방침. Google AdSense 광고 및 쿠키 사용에 대한 안내.",
			URL:         siteURL + "/privacy",
		}, true
	}
	return Meta{}, false
}

func faqItem(question, answer string) map[string]any {
	return map[string]any{
		"@type": "Question",
		"name":  question,
		"acceptedAnswer": map[string]any{
			"@type": "Answer",
			"text":  answer,
		},
	}
}

// byKRW orders countries by individual plan KRW price, unpriced last.
func byKRW(prices []model.CountryPrice) []model.CountryPrice {
	out := append([]model.CountryPrice(nil), prices...)
	key := func(c model.CountryPrice) float64 {
		if krw := c.KRW(model.IndividualPlan); krw.Valid {
			return krw.Value
		}
		return math.Inf(1)
	}
	sort.SliceStable(out, func(i, j int) bool { return key(out[i]) < key(out[j]) })
	return out
}
