package usecasetest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/LavaJover/shvark-donation-service/internal/domain"
)

type SchemaGuard struct {
	mu    sync.Mutex
	Calls int
	Err   error
}

func (g *SchemaGuard) Ensure(context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Calls++
	return g.Err
}

type Renderer struct {
	Docs []domain.ReceiptDocument
	Err  error
}

func (r *Renderer) Render(doc domain.ReceiptDocument) ([]byte, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.Docs = append(r.Docs, doc)
	return []byte("%PDF-1.3 " + doc.CertificateNo), nil
}

type Mailer struct {
	mu   sync.Mutex
	Sent []domain.EmailMessage
	Err  error
}

func (m *Mailer) Send(_ context.Context, msg domain.EmailMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, msg)
	return nil
}

// Storage keeps PDFs in memory under sequential tokens.
type Storage struct {
	mu    sync.Mutex
	Files map[string][]byte
	n     int
	Err   error
}

func NewStorage() *Storage {
	return &Storage{Files: make(map[string][]byte)}
}

func (s *Storage) Save(_ context.Context, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return "", s.Err
	}
	s.n++
	token := fmt.Sprintf("token-%d", s.n)
	s.Files[token] = append([]byte(nil), data...)
	return token, nil
}

func (s *Storage) Open(_ context.Context, token string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.Files[token]
	if !ok {
		return nil, domain.ErrReceiptFileNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *Storage) Cleanup(context.Context) (int, error) {
	return 0, nil
}

// Gateway is a scripted payment processor.
type Gateway struct {
	ReadyErr   error
	CreateErr  error
	Sessions   map[string]*domain.CheckoutSession
	Requests   []domain.CheckoutSessionRequest
	Event      *domain.PaymentEvent
	ParseErr   error
	GetErr     error
	nextNumber int
}

func NewGateway() *Gateway {
	return &Gateway{Sessions: make(map[string]*domain.CheckoutSession)}
}

func (g *Gateway) Ready() error {
	return g.ReadyErr
}

func (g *Gateway) CreateCheckoutSession(_ context.Context, req domain.CheckoutSessionRequest) (*domain.CheckoutSession, error) {
	if g.CreateErr != nil {
		return nil, g.CreateErr
	}
	g.Requests = append(g.Requests, req)
	g.nextNumber++
	id := fmt.Sprintf("cs_test_%d", g.nextNumber)
	session := &domain.CheckoutSession{
		ID:  id,
		URL: "https://checkout.stripe.test/" + id,
		Metadata: map[string]string{
			"receipt_id":     fmt.Sprint(req.ReceiptID),
			"certificate_no": req.CertificateNo,
			"donor_email":    req.DonorEmail,
			"donor_name":     req.DonorName,
		},
		PaymentStatus: "unpaid",
	}
	g.Sessions[id] = session
	return session, nil
}

func (g *Gateway) GetCheckoutSession(_ context.Context, sessionID string) (*domain.CheckoutSession, error) {
	if g.GetErr != nil {
		return nil, g.GetErr
	}
	session, ok := g.Sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("no such checkout session: %s", sessionID)
	}
	return session, nil
}

func (g *Gateway) ParseWebhook(_ []byte, _ string) (*domain.PaymentEvent, error) {
	if g.ParseErr != nil {
		return nil, g.ParseErr
	}
	if g.Event == nil {
		return nil, domain.NewValidation("Invalid payload")
	}
	return g.Event, nil
}
