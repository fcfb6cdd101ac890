package links

import (
	"net/url"
	"strconv"
	"strings"
)

// Builder makes absolute public URLs. Origin is scheme://host (from
// PUBLIC_BASE_URL or the forwarded request headers) and Prefix the public
// mount point such as /donation.
type Builder struct {
	Origin string
	Prefix string
}

func (b Builder) URL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(b.Origin, "/") + strings.TrimRight(b.Prefix, "/") + path
}

// CreditCardInput points the donor at the card entry page. customBase
// (CREDIT_CARD_INPUT_URL) replaces the built-in page when set.
func (b Builder) CreditCardInput(customBase, certificateNo string, receiptID int64) string {
	base := strings.TrimSpace(customBase)
	if base == "" {
		base = b.URL("/payment/credit-card")
	}
	query := url.Values{}
	query.Set("certificate_no", certificateNo)
	query.Set("receipt_id", strconv.FormatInt(receiptID, 10))

	separator := "?"
	if strings.Contains(base, "?") {
		separator = "&"
	}
	return base + separator + query.Encode()
}
