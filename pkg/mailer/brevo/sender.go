package brevo

import (
	"context"
	"encoding/base64"
	"fmt"

	brevo "github.com/getbrevo/brevo-go/lib"

	"github.com/saogeraldo/forms-api/pkg/mailer"
)

// Sender implements mailer.Sender using the Brevo transactional email API.
type Sender struct {
	client *brevo.APIClient
}

// New creates a new Brevo sender.
func New(cfg Config) *Sender {
	apiCfg := brevo.NewConfiguration()
	apiCfg.AddDefaultHeader("api-key", cfg.APIKey)
	return &Sender{client: brevo.NewAPIClient(apiCfg)}
}

// Send implements mailer.Sender.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) (string, error) {
	to := make([]brevo.SendSmtpEmailTo, len(email.To))
	for i, addr := range email.To {
		to[i] = brevo.SendSmtpEmailTo{Email: addr}
	}

	msg := brevo.SendSmtpEmail{
		Sender: &brevo.SendSmtpEmailSender{
			Name:  email.From.Name,
			Email: email.From.Email,
		},
		To:          to,
		Subject:     email.Subject,
		HtmlContent: email.HTML,
		Tags:        email.Tags,
	}

	if email.ReplyTo != nil {
		msg.ReplyTo = &brevo.SendSmtpEmailReplyTo{
			Email: email.ReplyTo.Email,
			Name:  email.ReplyTo.Name,
		}
	}

	if len(email.Attachments) > 0 {
		msg.Attachment = make([]brevo.SendSmtpEmailAttachment, len(email.Attachments))
		for i, a := range email.Attachments {
			msg.Attachment[i] = brevo.SendSmtpEmailAttachment{
				Name:    a.Filename,
				Content: base64.StdEncoding.EncodeToString(a.Content),
			}
		}
	}

	result, _, err := s.client.TransactionalEmailsApi.SendTransacEmail(ctx, msg)
	if err != nil {
		return "", fmt.Errorf("brevo: %w: %v", mailer.ErrSendFailed, err)
	}

	return result.MessageId, nil
}
