// Package resend sends transactional email through the Resend HTTP API.
package resend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/s4trading/storefront-backend/pkg/config"
	pkgerrors "github.com/s4trading/storefront-backend/pkg/errors"
)

const (
	apiURL         = "https://api.resend.com/emails"
	providerResend = "resend"
)

// Client holds the provider credentials and sender identity.
type Client struct {
	apiKey     string
	from       string
	replyTo    string
	baseURL    string
	httpClient *http.Client
}

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// NewClient validates the email section of the config. Only the resend
// provider is supported.
func NewClient(cfg config.EmailConfig) (*Client, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider == "" {
		provider = providerResend
	}
	if provider != providerResend {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("unsupported email provider %q", provider))
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "email api key is required")
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "email from address is required")
	}

	return &Client{
		apiKey:  strings.TrimSpace(cfg.APIKey),
		from:    strings.TrimSpace(cfg.From),
		replyTo: strings.TrimSpace(cfg.ReplyTo),
		baseURL: apiURL,
		// sends are never retried at the transport level so a provider
		// timeout cannot turn into a duplicate email
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Send delivers one message and returns the provider's message id.
func (c *Client) Send(ctx context.Context, msg Message) (string, error) {
	body := map[string]any{
		"from":    c.from,
		"to":      []string{msg.To},
		"subject": msg.Subject,
		"html":    msg.HTML,
	}
	if c.replyTo != "" {
		body["reply_to"] = c.replyTo
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode email payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(encoded))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create email request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "email provider request failed")
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read email provider response")
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("email provider error (%d): %s", resp.StatusCode, strings.TrimSpace(string(payload))))
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(payload, &result); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode email provider response")
	}
	return result.ID, nil
}
