package model

import "time"

const AlertStatusActive = "active"

type AlertSubscription struct {
	ID             string    `json:"id"`
	CreatedAt      time.Time `json:"createdAt"`
	Status         string    `json:"status"`
	ServiceSlug    string    `json:"serviceSlug"`
	CountryCode    string    `json:"countryCode"`
	PlanID         string    `json:"planId"`
	TargetPriceKRW int64     `json:"targetPriceKrw"`
	Email          string    `json:"email"`
}

type Post struct {
	ID          string    `json:"id"`
	CreatedAt   Timestamp `json:"createdAt"`
	ServiceSlug string    `json:"serviceSlug"`
	CountryCode string    `json:"countryCode"`
	Nickname    string    `json:"nickname"`
	Content     string    `json:"content"`
	IP          *string   `json:"ip"`
	UserAgent   *string   `json:"userAgent"`
}

type Like struct {
	PostID    string    `json:"postId"`
	VoterKey  string    `json:"voterKey"`
	Liked     bool      `json:"liked"`
	CreatedAt time.Time `json:"createdAt"`
}

type Vote struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"createdAt"`
	ServiceSlug string    `json:"serviceSlug"`
	CountryCode string    `json:"countryCode"`
	VoterKey    string    `json:"voterKey"`
}
