package admindto

// EditInput holds the edit form as submitted; parsing happens in the use case.
type EditInput struct {
	DonorName       string
	DonorPostalCode string
	DonorAddress    string
	DonorEmail      string
	Amount          string
	PaymentMethod   string
	Status          string
	DonatedAt       string
	CreatedAt       string
}
