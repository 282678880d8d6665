// Package mailer provides a provider-agnostic email sending interface with
// template rendering.
//
// The package separates delivery (via the Sender interface, implemented by
// provider subpackages) from rendering (via Renderer, backed by an fs.FS
// template store), so providers can be swapped without touching templates.
//
// Basic usage with the Brevo provider:
//
//	sender := brevo.New(brevo.Config{APIKey: os.Getenv("BREVO_API_KEY")})
//	renderer := mailer.NewRendererWithDir(templates.FS, "email")
//
//	html, err := renderer.Render("form-contato.html", data)
//	if err != nil {
//		// handle
//	}
//	id, err := sender.Send(ctx, &mailer.Email{
//		From:    mailer.Address{Name: "Formulário", Email: "forms@example.com"},
//		To:      []string{"team@example.com"},
//		Subject: "Contato pelo site",
//		HTML:    html,
//	})
package mailer
