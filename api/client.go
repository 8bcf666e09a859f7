// Package api is the client for the hosted backend: audio transcription,
// chat completion, model listing and license status checks.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

// Client talks to the hosted backend
type Client struct {
	endpoint  string
	accessKey string
	client    *http.Client
}

// NewClient creates an API client for the given backend endpoint
func NewClient(endpoint, accessKey string) *Client {
	return &Client{
		endpoint:  strings.TrimRight(endpoint, "/"),
		accessKey: accessKey,
		client:    &http.Client{},
	}
}

// Message is a single chat turn
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Model describes one model the backend offers
type Model struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LicenseStatus reports whether a stored license is still valid
type LicenseStatus struct {
	Valid  bool   `json:"valid"`
	Status string `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
}

// TranscribeAudio sends WAV audio to the backend and returns the transcript
func (c *Client) TranscribeAudio(ctx context.Context, wavData []byte) (string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "audio.wav")
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(wavData); err != nil {
		return "", fmt.Errorf("failed to write audio data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint+"/transcribe", body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	respBody, err := c.do(req)
	if err != nil {
		return "", err
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	return result.Text, nil
}

// Chat sends a conversation to the backend and returns the reply text
func (c *Client) Chat(ctx context.Context, model string, messages []Message) (string, error) {
	payload := struct {
		Model    string    `json:"model"`
		Messages []Message `json:"messages"`
	}{
		Model:    model,
		Messages: messages,
	}

	respBody, err := c.postJSON(ctx, "/chat", payload)
	if err != nil {
		return "", err
	}

	var result struct {
		Reply string `json:"reply"`
		Error string `json:"error,omitempty"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if result.Error != "" {
		return "", fmt.Errorf("chat request failed: %s", result.Error)
	}
	return result.Reply, nil
}

// FetchModels lists the models available to this installation
func (c *Client) FetchModels(ctx context.Context) ([]Model, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.endpoint+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessKey)

	respBody, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var result struct {
		Models []Model `json:"models"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return result.Models, nil
}

// CheckLicenseStatus validates a license key and instance against the backend
func (c *Client) CheckLicenseStatus(ctx context.Context, licenseKey, instanceID string) (*LicenseStatus, error) {
	payload := struct {
		LicenseKey string `json:"license_key"`
		InstanceID string `json:"instance_id"`
	}{
		LicenseKey: licenseKey,
		InstanceID: instanceID,
	}

	respBody, err := c.postJSON(ctx, "/license/status", payload)
	if err != nil {
		return nil, err
	}

	var result LicenseStatus
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &result, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessKey)
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}
