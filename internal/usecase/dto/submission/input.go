package submissiondto

import "github.com/LavaJover/shvark-donation-service/internal/usecase/links"

// SubmitInput is the raw donation form.
type SubmitInput struct {
	Name          string
	PostalCode    string
	Address       string
	Email         string
	Amount        string
	PaymentMethod string
	Links         links.Builder
}
