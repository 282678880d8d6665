// Package registry maps form identifiers to their validation schema,
// email template, and dispatch configuration.
//
// The set of form ids is closed: each id carries exactly one entry, built
// once at startup and read-only afterwards.
package registry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/saogeraldo/forms-api/pkg/schema"
)

// FormID identifies one submission type on the marketing site.
type FormID string

const (
	// FormCajuinaParcerias is the partnership/sponsorship request form.
	FormCajuinaParcerias FormID = "cajuina-site-solicitacoes"
	// FormCajuinaDistribuidor is the distributor signup form.
	FormCajuinaDistribuidor FormID = "cajuina-site-distribuidor"
	// FormAguaRevendedor is the water reseller signup form.
	FormAguaRevendedor FormID = "agua-site-revendedor"
	// FormContato is the general contact form.
	FormContato FormID = "contato"
)

// FormIDs returns all recognized form identifiers in a stable order.
func FormIDs() []FormID {
	return []FormID{
		FormCajuinaParcerias,
		FormCajuinaDistribuidor,
		FormAguaRevendedor,
		FormContato,
	}
}

// ErrUnknownFormID indicates the submitted formId is not in the closed set.
var ErrUnknownFormID = errors.New("formId inválido ou não informado")

// EmailConfig describes how the notification email for one form is built.
type EmailConfig struct {
	// SenderEmail is the fixed verified sender address.
	SenderEmail string
	// SenderNameField names the submission field used as the sender display name.
	SenderNameField string
	// RecipientEmail is the fixed notification recipient. Submissions never
	// choose their own recipient.
	RecipientEmail string
	// ReplyToField names the submission field used as the reply-to address.
	ReplyToField string
	// Subject builds the subject line from the template data.
	Subject func(data map[string]any) string
	// Tags categorize the message at the email provider.
	Tags []string
}

// FormConfig is one registry entry: template, schema, and email settings.
type FormConfig struct {
	TemplateName string
	Schema       *schema.Schema
	Email        EmailConfig
}

// Config holds the addresses shared by every registry entry.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	SenderEmail    string `env:"MAIL_SENDER_EMAIL,required"`
	RecipientEmail string `env:"MAIL_RECIPIENT_EMAIL,required"`
}

// Registry resolves form ids to their configuration.
type Registry struct {
	forms map[FormID]FormConfig
}

// New builds the registry from the static form definitions.
func New(cfg Config) *Registry {
	forms := make(map[FormID]FormConfig, len(FormIDs()))
	forms[FormCajuinaParcerias] = cajuinaParcerias(cfg)
	forms[FormCajuinaDistribuidor] = cajuinaDistribuidor(cfg)
	forms[FormAguaRevendedor] = aguaRevendedor(cfg)
	forms[FormContato] = contato(cfg)
	return &Registry{forms: forms}
}

// Lookup resolves a raw formId value. Unknown, empty, or missing ids fail
// with an error that enumerates the valid identifiers so the caller can
// self-correct.
func (r *Registry) Lookup(id string) (FormConfig, error) {
	cfg, ok := r.forms[FormID(id)]
	if !ok {
		return FormConfig{}, fmt.Errorf("%w. Valores aceitos: %s", ErrUnknownFormID, joinIDs())
	}
	return cfg, nil
}

func joinIDs() string {
	ids := FormIDs()
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ", ")
}

// fieldString reads a template-data value as a string, tolerating absent
// or non-string values.
func fieldString(data map[string]any, key string) string {
	s, _ := data[key].(string)
	return s
}
