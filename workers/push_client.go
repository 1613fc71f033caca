package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"

	"content-coach-system/utils"
)

// PushClient talks to the external push aggregator. Delivery is strictly
// best-effort: the progression engine logs failures and moves on.
type PushClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// PushMessage is the payload forwarded to the aggregator
type PushMessage struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
	Type  string `json:"type"`
}

// NewPushClient builds a client from PUSH_SERVICE_URL / PUSH_SERVICE_TOKEN.
// Returns nil when unset — push delivery is simply disabled.
func NewPushClient() *PushClient {
	baseURL := os.Getenv("PUSH_SERVICE_URL")
	token := os.Getenv("PUSH_SERVICE_TOKEN")
	if baseURL == "" || token == "" {
		log.Println("⚠️  PUSH_SERVICE_URL / PUSH_SERVICE_TOKEN not set — push notifications disabled")
		return nil
	}

	return &PushClient{
		BaseURL:    baseURL,
		Token:      token,
		HTTPClient: utils.HTTPClient,
	}
}

// SendPushToUser posts one push attempt for a user
func (c *PushClient) SendPushToUser(ctx context.Context, externalUserID string, msg PushMessage) error {
	u, err := url.Parse(fmt.Sprintf("%s/api/v1/push/users/%s", c.BaseURL, url.PathEscape(externalUserID)))
	if err != nil {
		return fmt.Errorf("failed to parse push URL: %w", err)
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", u.String(), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build push request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("push request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("push service returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
