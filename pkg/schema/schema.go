// Package schema provides declarative validation for form submission bodies.
//
// A Schema is a flat list of field rules built with a fluent API:
//
//	s := schema.New().
//		String("name", "Nome é obrigatório").
//		Email("email", "Email inválido").
//		Accepted("acceptance", "Você deve aceitar os termos")
//
// Validate returns the cleaned data (declared fields only, strings trimmed,
// booleans coerced, attachments normalized) or a ValidationError carrying
// one message per failing field.
package schema

import (
	"net/mail"
	"strings"
)

// Kind identifies the validation rule applied to a field.
type Kind int

const (
	// KindString requires a non-empty string.
	KindString Kind = iota
	// KindEmail requires an email-shaped string.
	KindEmail
	// KindAccepted coerces truthy representations to bool and requires true.
	KindAccepted
	// KindAttachments accepts a single attachment object or a list of them.
	KindAttachments
)

// Field is a single validation rule.
type Field struct {
	Name     string
	Message  string
	Kind     Kind
	Optional bool
}

// Attachment is a decoded file carried with a submission.
// Content is base64-encoded file bytes.
type Attachment struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Schema validates a submission body against an ordered list of field rules.
type Schema struct {
	fields []Field
}

// New creates an empty schema.
func New() *Schema {
	return &Schema{}
}

// String adds a required non-empty string field.
func (s *Schema) String(name, message string) *Schema {
	s.fields = append(s.fields, Field{Name: name, Kind: KindString, Message: message})
	return s
}

// Email adds a required email-shaped string field.
func (s *Schema) Email(name, message string) *Schema {
	s.fields = append(s.fields, Field{Name: name, Kind: KindEmail, Message: message})
	return s
}

// Accepted adds a boolean field that must coerce to true.
func (s *Schema) Accepted(name, message string) *Schema {
	s.fields = append(s.fields, Field{Name: name, Kind: KindAccepted, Message: message})
	return s
}

// Attachments adds an optional attachment field accepting either a single
// {name, content} object or a list of them.
func (s *Schema) Attachments(name string) *Schema {
	s.fields = append(s.fields, Field{Name: name, Kind: KindAttachments, Optional: true})
	return s
}

// Fields returns the declared rules in declaration order.
func (s *Schema) Fields() []Field {
	return s.fields
}

// Validate checks body against the schema and returns the cleaned data.
// Unknown fields are dropped. All failing fields are collected into a
// single ValidationError; validation never short-circuits mid-schema so
// the caller can report every problem at once.
func (s *Schema) Validate(body map[string]any) (map[string]any, error) {
	cleaned := make(map[string]any, len(s.fields))
	var verr ValidationError

	for _, f := range s.fields {
		raw, present := body[f.Name]

		switch f.Kind {
		case KindString, KindEmail:
			str, _ := raw.(string)
			str = strings.TrimSpace(str)
			if str == "" {
				verr.add(f.Name, f.Message)
				continue
			}
			if f.Kind == KindEmail {
				// RFC 5322 display-name forms like "Ana <a@x.com>" parse,
				// but only a bare address is a valid field value.
				addr, err := mail.ParseAddress(str)
				if err != nil || addr.Address != str {
					verr.add(f.Name, f.Message)
					continue
				}
			}
			cleaned[f.Name] = str

		case KindAccepted:
			if !truthy(raw) {
				verr.add(f.Name, f.Message)
				continue
			}
			cleaned[f.Name] = true

		case KindAttachments:
			if !present || raw == nil {
				continue
			}
			atts, ok := coerceAttachments(raw)
			if !ok {
				verr.add(f.Name, "Anexo inválido")
				continue
			}
			cleaned[f.Name] = atts
		}
	}

	if len(verr.Fields) > 0 {
		return nil, &verr
	}
	return cleaned, nil
}

// truthy mirrors loose boolean coercion: checkbox widgets submit strings
// like "true" or "on", JSON clients send real booleans or 1.
func truthy(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "1", "on", "yes":
			return true
		}
	case float64:
		return val == 1
	case int:
		return val == 1
	}
	return false
}

// coerceAttachments normalizes a single attachment object or a list of
// them into []Attachment.
func coerceAttachments(raw any) ([]Attachment, bool) {
	switch v := raw.(type) {
	case map[string]any:
		att, ok := coerceAttachment(v)
		if !ok {
			return nil, false
		}
		return []Attachment{att}, true
	case []any:
		atts := make([]Attachment, 0, len(v))
		for _, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, false
			}
			att, ok := coerceAttachment(m)
			if !ok {
				return nil, false
			}
			atts = append(atts, att)
		}
		return atts, true
	case []Attachment:
		return v, true
	case Attachment:
		return []Attachment{v}, true
	}
	return nil, false
}

func coerceAttachment(m map[string]any) (Attachment, bool) {
	name, _ := m["name"].(string)
	content, _ := m["content"].(string)
	if name == "" || content == "" {
		return Attachment{}, false
	}
	return Attachment{Name: name, Content: content}, true
}
