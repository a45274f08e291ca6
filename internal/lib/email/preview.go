package email

// PreviewData holds sample template data, keyed by template name, for
// rendering templates locally.
var PreviewData = map[Template]map[string]string{
	TemplateWelcome: {
		"Nombre": "Ana",
	},
}
