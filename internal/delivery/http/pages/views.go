package pages

type FormView struct {
	Prefix         string
	PaymentMethods []string
}

type ThanksView struct {
	Prefix           string
	Name             string
	Token            string
	CertificateNo    string
	PaymentMethod    string
	PaymentKind      string
	BankTransferInfo string
}

type LoginView struct {
	Prefix string
	Error  string
}

// ReceiptRow is a receipt formatted for display.
type ReceiptRow struct {
	ID              int64
	CertificateNo   string
	DonorName       string
	DonorPostalCode string
	DonorAddress    string
	DonorEmail      string
	Amount          string
	PaymentMethod   string
	Status          string
	IsChecked       bool
	CheckedAt       string
	CheckedBy       string
	DonatedAt       string
	CreatedAt       string
}

type DashboardView struct {
	Prefix      string
	CurrentUser string
	Total       int64
	Rows        []ReceiptRow
	DBError     string
}

type EditForm struct {
	CertificateNo   string
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

type EditView struct {
	Prefix         string
	ReceiptID      int64
	Form           EditForm
	PaymentMethods []string
	Statuses       []string
	Error          string
}

type CreditCardView struct {
	Prefix        string
	CertificateNo string
	ReceiptID     string
}

type SuccessView struct {
	Prefix        string
	SessionID     string
	CertificateNo string
	DonorName     string
	PaymentStatus string
	DownloadToken string
}

type CancelView struct {
	Prefix string
}
