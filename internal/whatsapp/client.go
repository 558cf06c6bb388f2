// Package whatsapp implements the WhatsApp Business channel: the Graph
// API sender, the webhook receiver, and the agent command protocol.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// DefaultGraphURL is the Meta Graph API base URL.
const DefaultGraphURL = "https://graph.facebook.com/v19.0"

// Recorder receives send timings. A nil Recorder disables recording.
type Recorder interface {
	RecordTiming(op string, duration time.Duration)
}

// Client sends messages through the WhatsApp Business (Cloud) API.
type Client struct {
	token   string
	phoneID string
	baseURL string
	http    *http.Client
	rec     Recorder
}

// NewClient creates a WhatsApp Cloud API client for the given phone
// number id.
func NewClient(token, phoneID string, rec Recorder) *Client {
	return &Client{
		token:   token,
		phoneID: phoneID,
		baseURL: DefaultGraphURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		rec:     rec,
	}
}

// NewClientWithBaseURL creates a client against a custom endpoint (testing).
func NewClientWithBaseURL(token, phoneID, baseURL string, rec Recorder) *Client {
	c := NewClient(token, phoneID, rec)
	c.baseURL = baseURL
	return c
}

type textPayload struct {
	MessagingProduct string   `json:"messaging_product"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             textBody `json:"text"`
}

type textBody struct {
	Body string `json:"body"`
}

// SendText delivers a text message to a phone number. Transient failures
// (network, 5xx) are retried a few times with exponential backoff; client
// errors are not retried.
func (c *Client) SendText(ctx context.Context, to, body string) error {
	if c.token == "" || c.phoneID == "" {
		return fmt.Errorf("whatsapp client not configured")
	}

	payload, err := json.Marshal(textPayload{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             textBody{Body: body},
	})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	start := time.Now()
	defer func() {
		if c.rec != nil {
			c.rec.RecordTiming("wa_send", time.Since(start))
		}
	}()

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx)
	return backoff.Retry(func() error {
		return c.post(ctx, payload)
	}, policy)
}

func (c *Client) post(ctx context.Context, payload []byte) error {
	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return backoff.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	err = fmt.Errorf("send message: status %d: %s", resp.StatusCode, detail)
	if resp.StatusCode >= 500 {
		return err
	}
	// 4xx will not improve on retry.
	return backoff.Permanent(err)
}
