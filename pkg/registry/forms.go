package registry

import "github.com/saogeraldo/forms-api/pkg/schema"

func cajuinaParcerias(cfg Config) FormConfig {
	return FormConfig{
		TemplateName: "form-cajuina-parcerias.html",
		Schema: schema.New().
			String("name", "Nome é obrigatório").
			Email("email", "Email inválido").
			String("whatsapp", "WhatsApp é obrigatório").
			String("institutionName", "Nome da instituição é obrigatório").
			Email("institutionEmail", "Email da instituição inválido").
			String("institutionPhone", "Telefone da instituição é obrigatório").
			String("requestType", "Tipo de solicitação é obrigatório").
			String("eventName", "Nome do evento é obrigatório").
			String("eventCity", "Cidade do evento é obrigatória").
			String("eventState", "Estado do evento é obrigatório").
			String("eventDate", "Data do evento é obrigatória").
			String("eventTime", "Horário do evento é obrigatório").
			String("eventObjective", "Objetivo do evento é obrigatório").
			String("eventTargetAudience", "Público-alvo é obrigatório").
			String("eventScope", "Alcance do evento é obrigatório").
			String("eventRequestDetails", "Detalhes da solicitação são obrigatórios").
			String("materialPickupDate", "Data de retirada é obrigatória").
			Accepted("acceptance", "Você deve aceitar os termos").
			Attachments("anexos"),
		Email: EmailConfig{
			SenderEmail:     cfg.SenderEmail,
			SenderNameField: "name",
			RecipientEmail:  cfg.RecipientEmail,
			ReplyToField:    "email",
			Subject: func(data map[string]any) string {
				return "Solicitação de " + fieldString(data, "requestType") + ": " + fieldString(data, "institutionName")
			},
			Tags: []string{"form-submission", "solicitacao", "cajuina"},
		},
	}
}

func cajuinaDistribuidor(cfg Config) FormConfig {
	return FormConfig{
		TemplateName: "form-cajuina-distribuidor.html",
		Schema:       resellerSchema(),
		Email: EmailConfig{
			SenderEmail:     cfg.SenderEmail,
			SenderNameField: "name",
			RecipientEmail:  cfg.RecipientEmail,
			ReplyToField:    "email",
			Subject: func(data map[string]any) string {
				return "Solicitação de Distribuidor: " + fieldString(data, "razaoSocial")
			},
			Tags: []string{"form-submission", "distribuidor", "cajuina"},
		},
	}
}

func aguaRevendedor(cfg Config) FormConfig {
	return FormConfig{
		TemplateName: "form-agua-revendedor.html",
		Schema:       resellerSchema(),
		Email: EmailConfig{
			SenderEmail:     cfg.SenderEmail,
			SenderNameField: "name",
			RecipientEmail:  cfg.RecipientEmail,
			ReplyToField:    "email",
			Subject: func(data map[string]any) string {
				return "Solicitação de Revendedor: " + fieldString(data, "razaoSocial")
			},
			Tags: []string{"form-submission", "revendedor", "agua"},
		},
	}
}

func contato(cfg Config) FormConfig {
	return FormConfig{
		TemplateName: "form-contato.html",
		Schema: schema.New().
			String("name", "Nome é obrigatório").
			Email("email", "Email inválido").
			String("whatsapp", "WhatsApp é obrigatório").
			String("message", "Mensagem é obrigatória").
			Attachments("anexos"),
		Email: EmailConfig{
			SenderEmail:     cfg.SenderEmail,
			SenderNameField: "name",
			RecipientEmail:  cfg.RecipientEmail,
			ReplyToField:    "email",
			Subject: func(data map[string]any) string {
				return "Contato pelo site: " + fieldString(data, "name")
			},
			Tags: []string{"form-submission", "contato"},
		},
	}
}

// resellerSchema is shared by the distributor and reseller forms, which
// collect the same company fields.
func resellerSchema() *schema.Schema {
	return schema.New().
		String("name", "Nome é obrigatório").
		Email("email", "Email inválido").
		String("whatsapp", "WhatsApp é obrigatório").
		String("razaoSocial", "Razão social é obrigatória").
		String("cnpj", "CNPJ é obrigatório").
		String("cidadeAtuacao", "Cidade de atuação é obrigatória").
		Accepted("acceptance", "Você deve aceitar os termos")
}
