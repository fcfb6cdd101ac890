package request

import (
	"encoding/json"
	"strconv"
	"strings"
)

// CheckoutRequest accepts receipt_id as a JSON number or string.
type CheckoutRequest struct {
	ReceiptID     json.RawMessage `json:"receipt_id"`
	CertificateNo any             `json:"certificate_no"`
}

// ReceiptIDText returns receipt_id as text, "" when absent or null.
func (r CheckoutRequest) ReceiptIDText() string {
	raw := strings.TrimSpace(string(r.ReceiptID))
	if raw == "" || raw == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(r.ReceiptID, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return raw
}

// ParseReceiptID returns nil for an absent receipt_id and ok=false for one
// that is not an integer.
func (r CheckoutRequest) ParseReceiptID() (*int64, bool) {
	text := r.ReceiptIDText()
	if text == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, false
	}
	return &id, true
}

func (r CheckoutRequest) CertificateNumber() string {
	switch v := r.CertificateNo.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	default:
		b, _ := json.Marshal(v)
		return strings.TrimSpace(string(b))
	}
}
