package model

import "encoding/json"

type ServicePlan struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	NameEn string `json:"nameEn,omitempty"`
}

type Service struct {
	ID     string        `json:"id,omitempty"`
	Name   string        `json:"name"`
	Slug   string        `json:"slug"`
	Active bool          `json:"active"`
	Color  string        `json:"color,omitempty"`
	Plans  []ServicePlan `json:"plans,omitempty"`
}

type ServicesPayload struct {
	Services []Service `json:"services"`
}

func (p *ServicesPayload) Find(slug string) (Service, bool) {
	for _, s := range p.Services {
		if s.Slug == slug {
			return s, true
		}
	}
	return Service{}, false
}

func (p *ServicesPayload) Active() []Service {
	out := make([]Service, 0, len(p.Services))
	for _, s := range p.Services {
		if s.Active {
			out = append(out, s)
		}
	}
	return out
}

type PlanPrice struct {
	Monthly Number `json:"monthly"`
	Yearly  Number `json:"yearly"`
}

type ConvertedPrice struct {
	KRW Number `json:"krw"`
	USD Number `json:"usd"`
}

type CountryPrice struct {
	CountryCode string                    `json:"countryCode"`
	Country     string                    `json:"country"`
	Continent   string                    `json:"continent,omitempty"`
	Currency    string                    `json:"currency,omitempty"`
	Plans       map[string]PlanPrice      `json:"plans,omitempty"`
	Converted   map[string]ConvertedPrice `json:"converted,omitempty"`
}

// IndividualPlan is the plan id every comparison view ranks by.
const IndividualPlan = "individual"

func (c CountryPrice) Monthly(plan string) Number {
	return c.Plans[plan].Monthly
}

func (c CountryPrice) KRW(plan string) Number {
	return c.Converted[plan].KRW
}

func (c CountryPrice) USD(plan string) Number {
	return c.Converted[plan].USD
}

type PricesPayload struct {
	Prices           []CountryPrice `json:"prices"`
	BaseCountry      string         `json:"baseCountry,omitempty"`
	LastUpdated      string         `json:"lastUpdated,omitempty"`
	ExchangeRateDate string         `json:"exchangeRateDate,omitempty"`
	KRWRate          Number         `json:"krwRate"`

	// Raw keeps the file as read so API responses pass unknown fields through.
	Raw json.RawMessage `json:"-"`
}

func (p *PricesPayload) Find(countryCode string) (CountryPrice, bool) {
	for _, c := range p.Prices {
		if c.CountryCode == countryCode {
			return c, true
		}
	}
	return CountryPrice{}, false
}

func (p *PricesPayload) Base() (CountryPrice, bool) {
	return p.Find(p.BaseCountry)
}

type HistoryItem struct {
	CountryCode LooseString `json:"countryCode"`
	KRW         Number      `json:"krw"`
}

type HistorySnapshot struct {
	Date   string        `json:"date"`
	Prices []HistoryItem `json:"prices"`
}

type HistoryPayload struct {
	Snapshots []HistorySnapshot `json:"snapshots"`
}

type ReportUpdate map[string]any

func (u ReportUpdate) ServiceSlug() string {
	s, _ := u["serviceSlug"].(string)
	return s
}

type ChangelogPayload struct {
	Updates []ReportUpdate `json:"updates"`
}
