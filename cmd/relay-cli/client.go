package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// EmailRecipient is one entry of the To list.
type EmailRecipient struct {
	Email string `json:"Email"`
	Name  string `json:"Name,omitempty"`
}

type EmailRequest struct {
	To             []EmailRecipient  `json:"To"`
	Variables      map[string]string `json:"Variables,omitempty"`
	CustomCampaign string            `json:"CustomCampaign,omitempty"`
}

type SMSRequest struct {
	To        string            `json:"To"`
	Variables map[string]string `json:"Variables,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Time    string `json:"time"`
	Email   string `json:"email"`
	SMS     string `json:"sms"`
	Cache   string `json:"cache"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// RelayClient talks to a running relay server.
type RelayClient struct {
	BaseURL string
	HTTP    *http.Client
	Out     io.Writer
}

func newClient(baseURL string, out io.Writer) *RelayClient {
	return &RelayClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 30 * time.Second},
		Out:     out,
	}
}

func (c *RelayClient) makeRequest(method, path string, body interface{}) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	url := c.BaseURL + path
	logVerbose("Making %s request to %s", method, url)

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	logVerbose("Response status: %s", resp.Status)
	return resp, nil
}

// handleResponse returns the raw body of a successful response.
func (c *RelayClient) handleResponse(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode >= 400 {
		var errResp ErrorResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
			return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, errResp.Error)
		}
		return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

func (c *RelayClient) SendEmail(templateID string, req EmailRequest) error {
	resp, err := c.makeRequest(http.MethodPost, "/email/"+templateID, req)
	if err != nil {
		return err
	}
	body, err := c.handleResponse(resp)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.Out, string(body))
	return nil
}

func (c *RelayClient) SendSMS(templateID string, req SMSRequest) error {
	resp, err := c.makeRequest(http.MethodPost, "/sms/"+templateID, req)
	if err != nil {
		return err
	}
	body, err := c.handleResponse(resp)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.Out, string(body))
	return nil
}

func (c *RelayClient) CheckHealth() error {
	resp, err := c.makeRequest(http.MethodGet, "/healthz", nil)
	if err != nil {
		return err
	}
	body, err := c.handleResponse(resp)
	if err != nil {
		return err
	}
	var health HealthResponse
	if err := json.Unmarshal(body, &health); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if outputFmt == "json" {
		enc := json.NewEncoder(c.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(health)
	}
	fmt.Fprintf(c.Out, "Relay API Health Status:\n")
	fmt.Fprintf(c.Out, "Status:  %s\n", health.Status)
	fmt.Fprintf(c.Out, "Version: %s\n", health.Version)
	fmt.Fprintf(c.Out, "Email:   %s\n", health.Email)
	fmt.Fprintf(c.Out, "SMS:     %s\n", health.SMS)
	fmt.Fprintf(c.Out, "Cache:   %s\n", health.Cache)
	return nil
}
