package models

import "time"

type Server struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	ExternalID string    `json:"external_id"` // id used by the bot webhook
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CreateServerRequest represents the request body for registering a server
type CreateServerRequest struct {
	Name       string `json:"name"`
	ExternalID string `json:"external_id"`
}

// ServerAd holds per (server, ad, date) counters. Incrementing 'loads' drives
// automatic distribution against the active franchise.
type ServerAd struct {
	ID        int       `json:"id"`
	ServerID  int       `json:"server_id"`
	AdID      string    `json:"ad_id"` // external ad identifier, often an emoji
	Leads     int       `json:"leads"`
	Loads     int       `json:"loads"`
	Spent     float64   `json:"spent"`
	Date      time.Time `json:"date"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateServerAdRequest represents the request body for registering an ad
type CreateServerAdRequest struct {
	ServerID int     `json:"server_id"`
	AdID     string  `json:"ad_id"`
	Spent    float64 `json:"spent"`
	Date     string  `json:"date"` // YYYY-MM-DD, defaults to today
}

// UpdateServerAdCountersRequest sets new absolute counter values; the handler
// computes the delta against the stored row
type UpdateServerAdCountersRequest struct {
	Leads *int     `json:"leads,omitempty"`
	Loads *int     `json:"loads,omitempty"`
	Spent *float64 `json:"spent,omitempty"`
}
