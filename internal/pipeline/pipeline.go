// Package pipeline turns an untrusted form submission into either a sent
// notification email or a structured rejection.
//
// The flow is a linear state machine, terminal at the first failure:
// structural guard → registry lookup → risk assessment → schema validation
// → render → dispatch. Caller input problems map to 400 responses with
// messages safe to show; provider problems map to 500 with the provider's
// message text, never a stack trace.
package pipeline

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/saogeraldo/forms-api/pkg/logger"
	"github.com/saogeraldo/forms-api/pkg/mailer"
	"github.com/saogeraldo/forms-api/pkg/registry"
	"github.com/saogeraldo/forms-api/pkg/sanitizer"
	"github.com/saogeraldo/forms-api/pkg/schema"
)

// MinScore is the risk score below which a submission is treated as
// insufficiently human. Policy of the pipeline, not of the captcha client.
const MinScore = 0.5

// fallbackSenderName is used when the submission carries no usable
// display-name field.
const fallbackSenderName = "Formulário"

// RiskAssessor scores a captcha token. A nil score with no error means the
// provider examined the token and rejected it; an error means the provider
// could not be asked.
type RiskAssessor interface {
	Assess(ctx context.Context, token, expectedAction string) (*float64, error)
}

// Result is the terminal output of one submission.
type Result struct {
	Success   bool     `json:"success"`
	MessageID string   `json:"messageId,omitempty"`
	Error     string   `json:"error,omitempty"`
	Score     *float64 `json:"score,omitempty"`
	Status    int      `json:"-"`
}

// Pipeline orchestrates registry, risk assessment, rendering, and dispatch.
// It holds no per-request state; the registry is the only shared object
// and is read-only.
type Pipeline struct {
	registry *registry.Registry
	risk     RiskAssessor
	renderer *mailer.Renderer
	sender   mailer.Sender
	log      *slog.Logger
	now      func() time.Time
}

// Option configures the pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.log = l
		}
	}
}

// WithClock overrides the wall clock used for the derived date/time fields.
// Tests inject a fixed clock here instead of asserting on real time.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// New creates a pipeline with the given collaborators.
func New(reg *registry.Registry, risk RiskAssessor, renderer *mailer.Renderer, sender mailer.Sender, opts ...Option) *Pipeline {
	p := &Pipeline{
		registry: reg,
		risk:     risk,
		renderer: renderer,
		sender:   sender,
		log:      logger.NewNope(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process runs one submission through the pipeline. It always returns a
// Result; failures of any collaborator are folded into a 500 Result with
// the failure message, after being logged with full context.
func (p *Pipeline) Process(ctx context.Context, body map[string]any) Result {
	// Structural guard: ordered, short-circuiting.
	if body == nil {
		p.log.WarnContext(ctx, "invalid or empty request body")
		return reject(http.StatusBadRequest, "Corpo da requisição inválido")
	}
	token, _ := body["captchaToken"].(string)
	if token == "" {
		p.log.WarnContext(ctx, "captchaToken missing")
		return reject(http.StatusBadRequest, "captchaToken é obrigatório")
	}
	formID, _ := body["formId"].(string)
	if formID == "" {
		p.log.WarnContext(ctx, "formId missing")
		return reject(http.StatusBadRequest, "formId é obrigatório")
	}

	log := p.log.With(slog.String("form_id", formID))

	// An unrecognized formId is a caller input error, not a server fault.
	cfg, err := p.registry.Lookup(formID)
	if err != nil {
		log.WarnContext(ctx, "unknown formId", slog.String("error", err.Error()))
		return reject(http.StatusBadRequest, err.Error())
	}

	log.InfoContext(ctx, "validating captcha")
	score, err := p.risk.Assess(ctx, token, formID)
	if err != nil {
		return p.fail(ctx, log, "captcha assessment failed", err)
	}
	if score == nil || *score < MinScore {
		log.WarnContext(ctx, "captcha rejected", slog.Any("score", score))
		res := reject(http.StatusBadRequest, "Captcha inválido")
		res.Score = score
		return res
	}

	data, err := cfg.Schema.Validate(body)
	if err != nil {
		log.WarnContext(ctx, "schema validation failed", slog.String("error", err.Error()))
		return reject(http.StatusBadRequest, err.Error())
	}

	now := p.now()
	tmplData := buildTemplateData(data, now)

	html, err := p.renderer.Render(cfg.TemplateName, tmplData)
	if err != nil {
		return p.fail(ctx, log, "template rendering failed", err)
	}

	email, err := p.buildEmail(cfg.Email, tmplData, html, now)
	if err != nil {
		log.WarnContext(ctx, "attachment decoding failed", slog.String("error", err.Error()))
		return reject(http.StatusBadRequest, err.Error())
	}

	log.InfoContext(ctx, "sending email", slog.String("recipient", cfg.Email.RecipientEmail))
	messageID, err := p.sender.Send(ctx, email)
	if err != nil {
		// Send-side failure, intentionally 500 not 400.
		return p.fail(ctx, log, "email dispatch failed", err)
	}

	log.InfoContext(ctx, "email sent", slog.String("message_id", messageID))
	return Result{Success: true, MessageID: messageID, Status: http.StatusOK}
}

// buildTemplateData combines the validated fields with the derived date and
// time. String values are stripped of HTML before they reach the template;
// the engine's contextual escaping still applies on top.
func buildTemplateData(data map[string]any, now time.Time) map[string]any {
	out := make(map[string]any, len(data)+2)
	for k, v := range data {
		if s, ok := v.(string); ok {
			out[k] = sanitizer.StripHTML(s)
			continue
		}
		out[k] = v
	}
	out["_date"] = now.Format("02/01/2006")
	out["_time"] = now.Format("15:04:05")
	return out
}

func (p *Pipeline) buildEmail(cfg registry.EmailConfig, tmplData map[string]any, html string, now time.Time) (*mailer.Email, error) {
	senderName, _ := tmplData[cfg.SenderNameField].(string)
	if senderName == "" {
		senderName = fallbackSenderName
	}

	// Every notification is uniquely timestamped in its subject line, even
	// when two submissions share the same logical subject.
	subject := cfg.Subject(tmplData) + " - " + now.Format("02/01/2006") + " às " + now.Format("15:04:05")

	email := &mailer.Email{
		From:    mailer.Address{Name: senderName, Email: cfg.SenderEmail},
		To:      []string{cfg.RecipientEmail},
		Subject: subject,
		HTML:    html,
		Tags:    cfg.Tags,
	}

	if replyTo, _ := tmplData[cfg.ReplyToField].(string); replyTo != "" {
		email.ReplyTo = &mailer.Address{Name: senderName, Email: replyTo}
	}

	atts, err := decodeAttachments(tmplData)
	if err != nil {
		return nil, err
	}
	email.Attachments = atts

	return email, nil
}

// decodeAttachments converts validated base64 attachments into raw-byte
// mail attachments.
func decodeAttachments(tmplData map[string]any) ([]mailer.Attachment, error) {
	raw, ok := tmplData["anexos"].([]schema.Attachment)
	if !ok || len(raw) == 0 {
		return nil, nil
	}

	atts := make([]mailer.Attachment, 0, len(raw))
	for _, a := range raw {
		content, err := base64.StdEncoding.DecodeString(a.Content)
		if err != nil {
			return nil, errors.New("anexos: Anexo inválido")
		}
		atts = append(atts, mailer.Attachment{Filename: a.Name, Content: content})
	}
	return atts, nil
}

// fail logs the failure with full context and folds it into a sanitized
// 500 Result carrying the failure's message text only.
func (p *Pipeline) fail(ctx context.Context, log *slog.Logger, msg string, err error) Result {
	log.ErrorContext(ctx, msg, slog.String("error", err.Error()))
	return Result{Success: false, Error: err.Error(), Status: http.StatusInternalServerError}
}

func reject(status int, msg string) Result {
	return Result{Success: false, Error: msg, Status: status}
}
