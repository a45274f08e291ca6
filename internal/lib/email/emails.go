package email

import "context"

// SendWelcomeEmail greets a newly registered user.
func (c *Client) SendWelcomeEmail(ctx context.Context, to, name string) error {
	data := map[string]string{
		"Nombre": name,
	}

	return c.SendEmail(
		ctx,
		to,
		"¡Bienvenido a Rentals!",
		TemplateWelcome,
		data,
	)
}
