package resend

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v3"

	"github.com/saogeraldo/forms-api/pkg/mailer"
)

// Sender implements mailer.Sender using the Resend API.
type Sender struct {
	client *resend.Client
}

// New creates a new Resend sender.
func New(cfg Config) *Sender {
	return &Sender{client: resend.NewClient(cfg.APIKey)}
}

// Send implements mailer.Sender.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) (string, error) {
	req := &resend.SendEmailRequest{
		From:    email.From.String(),
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTML,
	}

	if email.ReplyTo != nil {
		req.ReplyTo = email.ReplyTo.Email
	}

	if len(email.Attachments) > 0 {
		req.Attachments = make([]*resend.Attachment, len(email.Attachments))
		for i, a := range email.Attachments {
			req.Attachments[i] = &resend.Attachment{
				Filename: a.Filename,
				Content:  a.Content,
			}
		}
	}

	// Resend tags are name-value pairs; categorization tags are presence-only.
	if len(email.Tags) > 0 {
		req.Tags = make([]resend.Tag, len(email.Tags))
		for i, t := range email.Tags {
			req.Tags[i] = resend.Tag{Name: t, Value: "true"}
		}
	}

	resp, err := s.client.Emails.SendWithContext(ctx, req)
	if err != nil {
		return "", fmt.Errorf("resend: %w: %v", mailer.ErrSendFailed, err)
	}

	return resp.Id, nil
}
