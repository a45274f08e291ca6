package email

type Template string

const (
	// TemplateWelcome corresponds to templates/emails/welcome.html
	TemplateWelcome Template = "welcome"
)
