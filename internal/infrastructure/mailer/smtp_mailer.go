package mailer

import (
	"bytes"
	"context"
	"fmt"

	"github.com/LavaJover/shvark-donation-service/internal/config"
	"github.com/LavaJover/shvark-donation-service/internal/domain"
	"github.com/wneessen/go-mail"
)

// SMTPMailer sends with STARTTLS and PLAIN auth. A failed send is returned
// as is; there is no retry.
type SMTPMailer struct {
	cfg config.SMTP
}

func NewSMTPMailer(cfg config.SMTP) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Configured() bool {
	return m.cfg.User != "" && m.cfg.Password != "" && m.cfg.From != ""
}

func (m *SMTPMailer) Send(ctx context.Context, msg domain.EmailMessage) error {
	if !m.Configured() {
		return domain.NewMisconfigured("SMTP設定が未完了です。SMTP_USER / SMTP_PASS / FROM_MAIL を設定してください。")
	}

	message, err := m.buildMessage(msg)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(m.cfg.Server,
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.User),
		mail.WithPassword(m.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithTimeout(m.cfg.Timeout),
	)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, message); err != nil {
		return fmt.Errorf("send mail via %s:%d: %w", m.cfg.Server, m.cfg.Port, err)
	}
	return nil
}

func (m *SMTPMailer) buildMessage(msg domain.EmailMessage) (*mail.Msg, error) {
	message := mail.NewMsg()
	if err := message.From(m.cfg.From); err != nil {
		return nil, domain.NewMisconfigured(fmt.Sprintf("invalid FROM_MAIL %q: %v", m.cfg.From, err))
	}
	if err := message.To(msg.To); err != nil {
		return nil, domain.NewValidation(fmt.Sprintf("メールアドレスが不正です: %s", msg.To))
	}
	message.Subject(msg.Subject)
	message.SetBodyString(mail.TypeTextPlain, msg.Body)

	for _, a := range msg.Attachments {
		contentType := a.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		if err := message.AttachReader(a.Filename, bytes.NewReader(a.Data),
			mail.WithFileContentType(mail.ContentType(contentType))); err != nil {
			return nil, fmt.Errorf("attach %s: %w", a.Filename, err)
		}
	}
	return message, nil
}
