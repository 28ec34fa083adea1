package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"campuswell/config"
)

// NotifyClient wraps the institution's notification gateway API, which fans
// messages out to SMS and email providers.
type NotifyClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewNotifyClient creates a new notification gateway client
func NewNotifyClient(cfg *config.Config) *NotifyClient {
	if cfg.NotifyAPIKey == "" {
		log.Println("Warning: NOTIFY_API_KEY not set, deliveries will be rejected by the gateway")
	}
	return &NotifyClient{
		baseURL: cfg.NotifyBaseURL,
		apiKey:  cfg.NotifyAPIKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type notifyRequest struct {
	Channel   string `json:"channel"`
	SubjectID string `json:"subjectId"`
	AlertKey  string `json:"alertKey"`
	Message   string `json:"message"`
}

// Send posts one message to the gateway. The context carries the dispatcher's
// delivery deadline; a timeout here terminates the alert as failed.
func (c *NotifyClient) Send(ctx context.Context, channel, subjectID, alertKey, message string) error {
	body, err := json.Marshal(notifyRequest{
		Channel:   channel,
		SubjectID: subjectID,
		AlertKey:  alertKey,
		Message:   message,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("notify gateway returned %d: %s", resp.StatusCode, string(payload))
	}
	return nil
}
