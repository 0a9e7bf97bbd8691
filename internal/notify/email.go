package notify

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Message is a fully rendered email ready for transport.
type Message struct {
	From     string
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

// Mailer is the email transport. SendMail returns the message id
// assigned to the delivery.
type Mailer interface {
	SendMail(ctx context.Context, msg Message) (string, error)
}

// EmailChannel delivers notifications by email.
type EmailChannel struct {
	mailer    Mailer
	templates *TemplateEngine
	from      string
}

// NewEmailChannel wires a Mailer and a TemplateEngine into a Channel.
func NewEmailChannel(mailer Mailer, templates *TemplateEngine, from string) *EmailChannel {
	return &EmailChannel{
		mailer:    mailer,
		templates: templates,
		from:      from,
	}
}

func (ch *EmailChannel) Name() string { return "email" }

// Send renders the template for the payload's kind and hands the result
// to the transport.
func (ch *EmailChannel) Send(ctx context.Context, p Payload) (DeliveryReceipt, error) {
	subject, html, text, err := ch.templates.Render(string(p.Kind), p.Data)
	if err != nil {
		return DeliveryReceipt{}, fmt.Errorf("render template: %w", err)
	}

	msgID, err := ch.mailer.SendMail(ctx, Message{
		From:     ch.from,
		To:       p.Recipient,
		Subject:  subject,
		HTMLBody: html,
		TextBody: text,
	})
	if err != nil {
		return DeliveryReceipt{}, err
	}

	return DeliveryReceipt{Channel: ch.Name(), MessageID: msgID}, nil
}

// SMTPMailer sends mail through a plain SMTP server.
type SMTPMailer struct {
	host string
	port string
	auth smtp.Auth
}

// NewSMTPMailer configures an SMTP transport. Authentication is optional;
// pass empty user/pass for servers that do not require it.
func NewSMTPMailer(host, port, user, pass string) (*SMTPMailer, error) {
	if host == "" || port == "" {
		return nil, errors.New("smtp host and port are required")
	}

	var auth smtp.Auth
	if user != "" {
		auth = smtp.PlainAuth("", user, pass, host)
	}

	return &SMTPMailer{host: host, port: port, auth: auth}, nil
}

func (m *SMTPMailer) SendMail(_ context.Context, msg Message) (string, error) {
	msgID := fmt.Sprintf("<%s@%s>", uuid.New().String(), m.host)

	raw := buildMIMEMessage(msgID, msg)
	addr := m.host + ":" + m.port
	if err := smtp.SendMail(addr, m.auth, msg.From, []string{msg.To}, raw); err != nil {
		return "", fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}
	return msgID, nil
}

// buildMIMEMessage assembles a multipart/alternative message with text
// and HTML parts.
func buildMIMEMessage(msgID string, msg Message) []byte {
	boundary := strings.ReplaceAll(uuid.New().String(), "-", "")

	var b strings.Builder
	fmt.Fprintf(&b, "Message-ID: %s\r\n", msgID)
	fmt.Fprintf(&b, "From: %s\r\n", msg.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n", boundary)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(msg.TextBody)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	b.WriteString(msg.HTMLBody)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", boundary)

	return []byte(b.String())
}

// MailCall records a single call to SendMail.
type MailCall struct {
	From    string
	To      string
	Subject string
	Text    string
	HTML    string
}

// MockMailer is a test double for Mailer.
type MockMailer struct {
	mu         sync.Mutex
	calls      []MailCall
	ShouldFail bool
	FailError  string
}

// SendMail records the call and optionally returns an error.
func (m *MockMailer) SendMail(_ context.Context, msg Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MailCall{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Text:    msg.TextBody,
		HTML:    msg.HTMLBody,
	})
	if m.ShouldFail {
		return "", errors.New(m.FailError)
	}
	return fmt.Sprintf("<mock-%d@localhost>", len(m.calls)), nil
}

// Calls returns a copy of recorded mail calls.
func (m *MockMailer) Calls() []MailCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MailCall, len(m.calls))
	copy(out, m.calls)
	return out
}
