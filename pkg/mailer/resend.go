package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// ErrDisabled is returned when no API key is configured.
var ErrDisabled = errors.New("mailer: no API key configured")

// Message is a single transactional email.
type Message struct {
	To      []string
	Subject string
	HTML    string
}

// Config holds Resend settings. BaseURL overrides the API endpoint.
type Config struct {
	APIKey  string
	From    string
	BaseURL string
}

// Client sends email through Resend.
type Client struct {
	resend *resend.Client
	from   string
	logger *zap.Logger
}

// NewClient creates a Resend client. It fails only on a malformed BaseURL.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	c := &Client{from: cfg.From, logger: logger.Named("mailer")}
	if cfg.APIKey == "" {
		return c, nil
	}

	c.resend = resend.NewClient(cfg.APIKey)
	if cfg.BaseURL != "" {
		u, err := url.Parse(cfg.BaseURL + "/")
		if err != nil {
			return nil, fmt.Errorf("mailer: invalid base URL %q: %w", cfg.BaseURL, err)
		}
		c.resend.BaseURL = u
	}
	return c, nil
}

// Send delivers msg and returns the provider message id.
func (c *Client) Send(ctx context.Context, msg Message) (string, error) {
	if c.resend == nil {
		return "", ErrDisabled
	}

	sent, err := c.resend.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    c.from,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	if err != nil {
		return "", fmt.Errorf("mailer: failed to send %q: %w", msg.Subject, err)
	}

	c.logger.Info("Email sent", zap.String("id", sent.Id), zap.String("subject", msg.Subject))
	return sent.Id, nil
}
