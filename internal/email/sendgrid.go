package email

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"company-invites/internal/domain"
	"company-invites/internal/logger"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

var errNoResponse = errors.New("sendgrid returned no response")

type sendClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendGridSender delivers HTML email through the SendGrid v3 API
type SendGridSender struct {
	client    sendClient
	fromName  string
	fromEmail string
}

func NewSendGridSender(apiKey, fromEmail, fromName string) *SendGridSender {
	return newSendGridSender(sendgrid.NewSendClient(apiKey), fromEmail, fromName)
}

func newSendGridSender(client sendClient, fromEmail, fromName string) *SendGridSender {
	return &SendGridSender{client: client, fromName: fromName, fromEmail: fromEmail}
}

// Send issues a single send request. Non-2xx answers are returned as a
// status, not an error; only transport failures are errors.
func (s *SendGridSender) Send(ctx context.Context, to, subject, html string) (*domain.DeliveryStatus, error) {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail("", to)
	message := mail.NewSingleEmail(from, subject, recipient, "", html)

	logger.ExternalServiceCall("sendgrid", "Send", "to", to)
	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		logger.ExternalServiceResult("sendgrid", "Send", err, "to", to)
		return nil, fmt.Errorf("failed to send email: %w", err)
	}
	if resp == nil {
		logger.ExternalServiceResult("sendgrid", "Send", errNoResponse, "to", to)
		return nil, errNoResponse
	}

	status := &domain.DeliveryStatus{StatusCode: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
	if !status.OK() {
		logger.ExternalServiceResult("sendgrid", "Send", fmt.Errorf("sendgrid error: status %d, body: %s", resp.StatusCode, resp.Body), "to", to)
		return status, nil
	}
	logger.ExternalServiceResult("sendgrid", "Send", nil, "to", to, "status", resp.StatusCode)
	return status, nil
}
