package mailer

import "errors"

var (
	// ErrTemplateNotFound indicates the named template does not exist in the store.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrRenderFailed indicates template parsing or interpolation failed.
	ErrRenderFailed = errors.New("failed to render template")

	// ErrInvalidFrontmatter indicates invalid YAML frontmatter.
	ErrInvalidFrontmatter = errors.New("invalid frontmatter")

	// ErrSendFailed indicates the provider rejected or failed the delivery.
	ErrSendFailed = errors.New("failed to send email")
)
