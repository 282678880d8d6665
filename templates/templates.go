// Package templates embeds the notification email templates.
// Templates are resolved by name only; the registry is the single source
// of template names.
package templates

import "embed"

//go:embed email
var FS embed.FS
