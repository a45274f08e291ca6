// Package email sends transactional emails through Resend.
//
// Bodies are rendered from html/template files found in the configured
// templates directory (templates/emails by default).
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"path/filepath"

	"github.com/deppfellow/rentals-api/internal/config"
	"github.com/pkg/errors"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

// Client wraps the Resend client and a logger.
type Client struct {
	client       *resend.Client
	logger       *zerolog.Logger
	from         string
	templatesDir string
}

func NewClient(cfg *config.Config, logger *zerolog.Logger) *Client {
	return &Client{
		client:       resend.NewClient(cfg.Integration.ResendAPIKey),
		logger:       logger,
		from:         cfg.Notifications.FromAddress,
		templatesDir: cfg.Notifications.TemplatesDir,
	}
}

// Render executes the named template with data.
func (c *Client) Render(templateName Template, data map[string]string) (string, error) {
	tmplPath := filepath.Join(c.templatesDir, string(templateName)+".html")

	tmpl, err := template.ParseFiles(tmplPath)
	if err != nil {
		return "", errors.Wrapf(err, "failed to parse email template %s", templateName)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return "", errors.Wrapf(err, "failed to execute email template %s", templateName)
	}

	return body.String(), nil
}

// SendEmail renders templateName and sends it to a single recipient.
func (c *Client) SendEmail(ctx context.Context, to, subject string, templateName Template, data map[string]string) error {
	html, err := c.Render(templateName, data)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    c.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}

	sent, err := c.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	c.logger.Debug().
		Str("email_id", sent.Id).
		Str("template", string(templateName)).
		Msg("email accepted by provider")

	return nil
}
