package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

const (
	// DefaultEndpoint is the MailChannels transactional send API.
	DefaultEndpoint = "https://api.mailchannels.net/tx/v1/send"
	// DefaultTimeout bounds the single outbound send.
	DefaultTimeout = 10 * time.Second

	maxDetailBytes = 4 << 10
)

// Address is a MailChannels mailbox.
type Address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Personalization lists the recipients of a message.
type Personalization struct {
	To []Address `json:"to"`
}

// Content is one MIME part of a message.
type Content struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// MailRequest is the MailChannels send payload.
type MailRequest struct {
	Personalizations []Personalization `json:"personalizations"`
	From             Address           `json:"from"`
	ReplyTo          Address           `json:"reply_to"`
	Subject          string            `json:"subject"`
	Content          []Content         `json:"content"`
}

// Mailer delivers a prepared message.
type Mailer interface {
	Send(ctx context.Context, req MailRequest) error
}

// MailChannelsClient posts messages to the MailChannels API.
type MailChannelsClient struct {
	endpoint string
	timeout  time.Duration
	client   *http.Client
}

// NewMailChannelsClient returns a client for endpoint. Zero values fall back
// to DefaultEndpoint, DefaultTimeout and http.DefaultClient.
func NewMailChannelsClient(endpoint string, timeout time.Duration, client *http.Client) *MailChannelsClient {
	if strings.TrimSpace(endpoint) == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &MailChannelsClient{endpoint: endpoint, timeout: timeout, client: client}
}

// Send performs exactly one POST. Transport failures and timeouts are
// reported as upstream errors; non-2xx responses carry the response body as
// detail metadata.
func (c *MailChannelsClient) Send(ctx context.Context, req MailRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "encode mail request").
			WithTextCode("CONTACT_MAIL_ENCODE")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return upstreamError(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return upstreamError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxDetailBytes))
		return goerrors.New("Email send failed", goerrors.CategoryExternal).
			WithTextCode("CONTACT_MAIL_REJECTED").
			WithCode(http.StatusBadGateway).
			WithMetadata(map[string]any{
				"detail":          string(detail),
				"upstream_status": resp.StatusCode,
			})
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func upstreamError(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryExternal, "Upstream email service error").
		WithTextCode("CONTACT_MAIL_UNAVAILABLE").
		WithCode(http.StatusBadGateway)
}
