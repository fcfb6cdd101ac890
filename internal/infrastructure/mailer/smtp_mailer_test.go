package mailer

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/LavaJover/shvark-donation-service/internal/config"
	"github.com/LavaJover/shvark-donation-service/internal/domain"
)

func TestSendWithoutCredentialsIsMisconfigured(t *testing.T) {
	m := NewSMTPMailer(config.SMTP{Server: "smtp.example.com", Port: 587})

	err := m.Send(context.Background(), domain.EmailMessage{To: "donor@example.com"})
	if !errors.Is(err, domain.ErrMisconfigured) {
		t.Fatalf("expected misconfigured error, got %v", err)
	}
}

func TestBuildMessageAttachesPDF(t *testing.T) {
	m := NewSMTPMailer(config.SMTP{User: "u", Password: "p", From: "npo@example.com"})

	msg, err := m.buildMessage(domain.EmailMessage{
		To:      "donor@example.com",
		Subject: "receipt",
		Body:    "thank you",
		Attachments: []domain.Attachment{
			{Filename: "receipt.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.3")},
		},
	})
	if err != nil {
		t.Fatalf("buildMessage: %v", err)
	}

	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	raw := buf.String()
	for _, want := range []string{"donor@example.com", "npo@example.com", "application/pdf", "receipt.pdf"} {
		if !strings.Contains(raw, want) {
			t.Fatalf("message missing %q", want)
		}
	}
}

func TestBuildMessageRejectsBadRecipient(t *testing.T) {
	m := NewSMTPMailer(config.SMTP{User: "u", Password: "p", From: "npo@example.com"})

	_, err := m.buildMessage(domain.EmailMessage{To: "not an address"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
