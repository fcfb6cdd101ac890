package response

type CheckoutResponse struct {
	OK          bool   `json:"ok"`
	CheckoutURL string `json:"checkout_url"`
	SessionID   string `json:"session_id"`
}

type WebhookResponse struct {
	OK       bool `json:"ok"`
	Received bool `json:"received"`
}
