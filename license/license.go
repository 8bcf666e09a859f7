// Package license handles activation against the payment service and
// keeps the activated key in the secure store.
package license

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"deskhand/storage"
)

// Client talks to the payment service
type Client struct {
	endpoint  string
	accessKey string
	db        *storage.DB
	client    *http.Client
}

// NewClient creates a license client. endpoint is the payment service
// base URL, accessKey authorizes requests to it.
func NewClient(endpoint, accessKey string, db *storage.DB) *Client {
	return &Client{
		endpoint:  strings.TrimRight(endpoint, "/"),
		accessKey: accessKey,
		db:        db,
		client:    &http.Client{},
	}
}

// ActivationResponse is the payment service's reply to an activation attempt
type ActivationResponse struct {
	Activated  bool          `json:"activated"`
	Error      string        `json:"error,omitempty"`
	LicenseKey string        `json:"license_key,omitempty"`
	Instance   *InstanceInfo `json:"instance,omitempty"`
}

// InstanceInfo identifies this installation on the license server
type InstanceInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// CheckoutResponse carries the hosted checkout page URL
type CheckoutResponse struct {
	Success     bool   `json:"success,omitempty"`
	CheckoutURL string `json:"checkout_url,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Activate registers the license key with the payment service. On success
// the key and the returned instance ID are persisted to the secure store.
func (c *Client) Activate(ctx context.Context, licenseKey string) (*ActivationResponse, error) {
	if c.endpoint == "" {
		return nil, errors.New("payment endpoint not configured")
	}
	if c.accessKey == "" {
		return nil, errors.New("API access key not configured")
	}

	// Each activation gets a fresh instance name
	instanceName := uuid.NewString()

	payload := struct {
		LicenseKey   string `json:"license_key"`
		InstanceName string `json:"instance_name"`
	}{
		LicenseKey:   licenseKey,
		InstanceName: instanceName,
	}

	var result ActivationResponse
	if err := c.post(ctx, "/activate", payload, &result); err != nil {
		return nil, err
	}

	if result.Activated && c.db != nil {
		if err := c.db.SecureSet(storage.KeyLicenseKey, licenseKey); err != nil {
			return nil, fmt.Errorf("failed to store license key: %w", err)
		}
		if result.Instance != nil {
			if err := c.db.SecureSet(storage.KeyInstanceID, result.Instance.ID); err != nil {
				return nil, fmt.Errorf("failed to store instance ID: %w", err)
			}
		}
	}

	return &result, nil
}

// CheckoutURL asks the payment service for a hosted checkout page
func (c *Client) CheckoutURL(ctx context.Context) (*CheckoutResponse, error) {
	if c.endpoint == "" {
		return nil, errors.New("payment endpoint not configured")
	}
	if c.accessKey == "" {
		return nil, errors.New("API access key not configured")
	}

	var result CheckoutResponse
	if err := c.post(ctx, "/checkout", struct{}{}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// StoredKey returns the license key from the secure store, or "" if none
func (c *Client) StoredKey() (string, error) {
	key, err := c.db.SecureGet(storage.KeyLicenseKey)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil
	}
	return key, err
}

// Deactivate forgets the stored license key and instance ID
func (c *Client) Deactivate() error {
	if err := c.db.SecureDelete(storage.KeyLicenseKey); err != nil {
		return err
	}
	return c.db.SecureDelete(storage.KeyInstanceID)
}

func (c *Client) post(ctx context.Context, path string, payload, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("payment service returned status %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// MaskKey hides the middle of a license key for display. Keys of eight
// characters or fewer are fully masked.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
