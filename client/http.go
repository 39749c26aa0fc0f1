package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"crm-notification-api/models"
)

// HTTPClient implements API over the notification HTTP routes for consumers
// outside the server process. The bearer token carries the acting identity;
// the server derives the user from it.
type HTTPClient struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewHTTPClient builds a client for the API served at baseURL, e.g.
// "http://localhost:8080".
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		token:      token,
	}
}

func (c *HTTPClient) ListNotifications() ([]models.Notification, error) {
	var resp struct {
		Items []models.Notification `json:"items"`
	}
	if err := c.doJSON(http.MethodGet, "/api/v1/notifications", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *HTTPClient) MarkRead(id uint) (*models.Notification, error) {
	var resp struct {
		Notification models.Notification `json:"notification"`
	}
	path := fmt.Sprintf("/api/v1/notifications/%d/read", id)
	if err := c.doJSON(http.MethodPut, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Notification, nil
}

func (c *HTTPClient) MarkAllRead() (int64, error) {
	var resp struct {
		Updated int64 `json:"updated"`
	}
	if err := c.doJSON(http.MethodPut, "/api/v1/notifications/read-all", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Updated, nil
}

func (c *HTTPClient) DeleteNotification(id uint) error {
	path := fmt.Sprintf("/api/v1/notifications/%d", id)
	return c.doJSON(http.MethodDelete, path, nil, nil)
}

func (c *HTTPClient) DeleteAllNotifications() (int64, error) {
	var resp struct {
		Deleted int64 `json:"deleted"`
	}
	if err := c.doJSON(http.MethodDelete, "/api/v1/notifications", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Deleted, nil
}

func (c *HTTPClient) Preferences() (*models.NotificationPreference, error) {
	var resp struct {
		Preference models.NotificationPreference `json:"preference"`
	}
	if err := c.doJSON(http.MethodGet, "/api/v1/notifications/preferences", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Preference, nil
}

func (c *HTTPClient) UpdatePreferences(partial map[string][]string) (*models.NotificationPreference, error) {
	body := map[string]interface{}{"matrix": partial}
	var resp struct {
		Preference models.NotificationPreference `json:"preference"`
	}
	if err := c.doJSON(http.MethodPut, "/api/v1/notifications/preferences", body, &resp); err != nil {
		return nil, err
	}
	return &resp.Preference, nil
}

func (c *HTTPClient) doJSON(method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response body: %w", err)
		}
	}
	return nil
}
