package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"TakeawayPos/app/config"
	"TakeawayPos/app/models"
)

// Client is a thin REST client for the POS backend that owns menu data,
// restaurant settings, KOT numbering and the invoice store
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewClient creates a backend client from the application config
func NewClient(cfg *config.BackendConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.APIToken,
		client:  &http.Client{Timeout: timeout},
	}
}

// MenuItems fetches all menu items
func (c *Client) MenuItems() ([]models.MenuItem, error) {
	var items []models.MenuItem
	if err := c.getJSON("/menu-items", &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Categories fetches all menu categories
func (c *Client) Categories() ([]models.Category, error) {
	var categories []models.Category
	if err := c.getJSON("/categories", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// Departments fetches all kitchen departments
func (c *Client) Departments() ([]models.Department, error) {
	var departments []models.Department
	if err := c.getJSON("/departments", &departments); err != nil {
		return nil, err
	}
	return departments, nil
}

// RestaurantSettings fetches the restaurant identity and tax configuration
func (c *Client) RestaurantSettings() (*models.RestaurantSettings, error) {
	var settings models.RestaurantSettings
	if err := c.getJSON("/restaurant-settings", &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// NextKOTNumber asks the backend counter for the next ticket number.
// Callers must treat failure as non-fatal and fall back to local numbering.
func (c *Client) NextKOTNumber() (int, error) {
	var response struct {
		KOTNumber int `json:"kotNumber"`
	}
	if err := c.getJSON("/kot/next-number", &response); err != nil {
		return 0, err
	}
	return response.KOTNumber, nil
}

// KOTConfig fetches the kitchen ticket print configuration
func (c *Client) KOTConfig() (*models.KOTConfig, error) {
	var cfg models.KOTConfig
	if err := c.getJSON("/config/kot", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// BillConfig fetches the bill print configuration
func (c *Client) BillConfig() (*models.BillConfig, error) {
	var cfg models.BillConfig
	if err := c.getJSON("/config/bill", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// UpdateKOTConfig writes the kitchen ticket print configuration back
func (c *Client) UpdateKOTConfig(cfg *models.KOTConfig) error {
	return c.sendJSON("PUT", "/config/kot", cfg, nil)
}

// UpdateBillConfig writes the bill print configuration back
func (c *Client) UpdateBillConfig(cfg *models.BillConfig) error {
	return c.sendJSON("PUT", "/config/bill", cfg, nil)
}

// RecordInvoice persists a completed sale in the backend invoice store
func (c *Client) RecordInvoice(invoice *models.Invoice) (*models.Invoice, error) {
	var recorded models.Invoice
	if err := c.sendJSON("POST", "/invoices", invoice, &recorded); err != nil {
		return nil, fmt.Errorf("failed to record invoice %s: %w", invoice.BillNumber, err)
	}
	return &recorded, nil
}

// Invoices fetches all recorded invoices
func (c *Client) Invoices() ([]models.Invoice, error) {
	var invoices []models.Invoice
	if err := c.getJSON("/invoices", &invoices); err != nil {
		return nil, err
	}
	return invoices, nil
}

// Login validates operator credentials against the backend
func (c *Client) Login(email, password string) (bool, error) {
	body := map[string]string{"email": email, "password": password}
	jsonData, err := json.Marshal(body)
	if err != nil {
		return false, err
	}

	req, err := http.NewRequest("POST", c.baseURL+"/login", bytes.NewBuffer(jsonData))
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusOK, nil
}

// getJSON performs a GET request and decodes the JSON response
func (c *Client) getJSON(path string, out interface{}) error {
	req, err := http.NewRequest("GET", c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("backend returned status %d for %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}

	return nil
}

// sendJSON performs a request with a JSON body and optionally decodes the response
func (c *Client) sendJSON(method, path string, body interface{}, out interface{}) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("backend returned status %d for %s", resp.StatusCode, path)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response from %s: %w", path, err)
		}
	} else {
		io.Copy(io.Discard, resp.Body)
	}

	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}
