package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	mailjet "github.com/mailjet/mailjet-apiv3-go/v4"
)

// Mailer sends one templated transactional message. Implementations must
// return *ProviderError when the provider itself rejected the request, so
// callers can distinguish provider failures from transport ones.
type Mailer interface {
	SendTemplate(ctx context.Context, msg *Message) (*Receipt, error)
}

type Config struct {
	APIKey    string
	APISecret string
	FromEmail string
	FromName  string
}

type Message struct {
	ToEmail    string
	ToName     string
	Subject    string
	TemplateID int64
	Variables  map[string]interface{}
}

// Receipt carries the provider's confirmation payload on success.
type Receipt struct {
	Payload any
}

// ProviderError means the provider answered with an error status rather
// than the request failing in transit.
type ProviderError struct {
	StatusCode int
	Details    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("mailjet error (status %d): %s", e.StatusCode, e.Details)
}

type mailer struct {
	cfg    *Config
	client *mailjet.Client
}

func New(cfg *Config) Mailer {
	return &mailer{
		cfg:    cfg,
		client: mailjet.NewMailjetClient(cfg.APIKey, cfg.APISecret),
	}
}

func (m *mailer) SendTemplate(_ context.Context, msg *Message) (*Receipt, error) {
	from := &mailjet.RecipientV31{Email: m.cfg.FromEmail}
	if m.cfg.FromName != "" {
		from.Name = m.cfg.FromName
	}

	messages := mailjet.MessagesV31{
		Info: []mailjet.InfoMessagesV31{
			{
				From: from,
				To: &mailjet.RecipientsV31{
					{Email: msg.ToEmail, Name: msg.ToName},
				},
				Subject:          msg.Subject,
				TemplateID:       int(msg.TemplateID),
				TemplateLanguage: true,
				Variables:        msg.Variables,
			},
		},
	}

	res, err := m.client.SendMailV31(&messages)
	if err != nil {
		var feedback *mailjet.APIFeedbackErrorsV31
		if errors.As(err, &feedback) {
			return nil, feedbackToProviderError(feedback)
		}

		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	return &Receipt{Payload: res}, nil
}

func feedbackToProviderError(feedback *mailjet.APIFeedbackErrorsV31) *ProviderError {
	status := 0
	var details []string

	for _, message := range feedback.Messages {
		for _, e := range message.Errors {
			if status == 0 {
				status = e.StatusCode
			}
			details = append(details, e.ErrorMessage)
		}
	}

	return &ProviderError{
		StatusCode: status,
		Details:    strings.Join(details, "; "),
	}
}
