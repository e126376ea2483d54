package models

// Webhook event types sent by the capture bot
const (
	WebhookEventNewLead = "new_lead"
	WebhookEventNewLoad = "new_load"
)

// Phone match tags for new_load events: how the cashier phone was resolved
// to a franchise line
const (
	PhoneMatchExact    = "matched"  // cashier number matched a franchise line
	PhoneMatchFallback = "fallback" // no match, rotation picked the line
	PhoneMatchNone     = "none"     // no active phones, no assignment
)

// WebhookPayload is the inbound bot event. server_id and ad_id are external
// identifiers (ad_id is often an emoji).
type WebhookPayload struct {
	Type         string `json:"type"`
	ServerID     string `json:"server_id"`
	AdID         string `json:"ad_id"`
	AgencyID     *int   `json:"agency_id,omitempty"`
	CashierPhone string `json:"cashier_phone,omitempty"`
	EventID      string `json:"event_id,omitempty"` // optional dedupe key
}

// WebhookResponse is the structured JSON reply
type WebhookResponse struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Error   string                 `json:"error,omitempty"`
}
