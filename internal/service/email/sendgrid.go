package email

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridProvider sends mail through the SendGrid v3 API.
type SendGridProvider struct {
	fromEmail string
	fromName  string
	client    *sendgrid.Client
}

func NewSendGridProvider(apiKey, fromEmail, fromName string) *SendGridProvider {
	return &SendGridProvider{
		fromEmail: fromEmail,
		fromName:  fromName,
		client:    sendgrid.NewSendClient(apiKey),
	}
}

func (p *SendGridProvider) send(ctx context.Context, to, subject, plain, html string) error {
	from := mail.NewEmail(p.fromName, p.fromEmail)
	message := mail.NewSingleEmail(from, subject, mail.NewEmail("", to), plain, html)

	response, err := p.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid error: %w", err)
	}
	if response.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, response.Body)
	}
	return nil
}

func (p *SendGridProvider) Send(ctx context.Context, to, subject, body string) error {
	return p.send(ctx, to, subject, body, "")
}

func (p *SendGridProvider) SendHTML(ctx context.Context, to, subject, htmlBody string) error {
	return p.send(ctx, to, subject, "", htmlBody)
}
