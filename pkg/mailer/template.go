package mailer

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Template is a parsed template file: optional YAML frontmatter metadata
// plus the HTML body.
type Template struct {
	Metadata map[string]any
	Body     string
}

// ParseTemplate splits template file content into frontmatter metadata and
// body. Files without a leading "---" delimiter are returned whole with
// empty metadata.
func ParseTemplate(content []byte) (*Template, error) {
	delimiter := []byte("---")

	if !bytes.HasPrefix(content, delimiter) {
		return &Template{Metadata: map[string]any{}, Body: string(content)}, nil
	}

	rest := bytes.TrimPrefix(content, delimiter)
	rest = bytes.TrimLeft(rest, "\r\n")
	if len(rest) == 0 {
		return nil, fmt.Errorf("%w: no content after opening delimiter", ErrInvalidFrontmatter)
	}

	end := bytes.Index(rest, delimiter)
	if end == -1 {
		return nil, fmt.Errorf("%w: closing delimiter not found", ErrInvalidFrontmatter)
	}

	front := rest[:end]
	body := rest[end+len(delimiter):]
	body = bytes.TrimPrefix(body, []byte("\r\n"))
	if len(body) > 0 && body[0] == '\n' {
		body = body[1:]
	}

	metadata := map[string]any{}
	if len(bytes.TrimSpace(front)) > 0 {
		if err := yaml.Unmarshal(front, &metadata); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFrontmatter, err)
		}
	}

	return &Template{Metadata: metadata, Body: string(body)}, nil
}
