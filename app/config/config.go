package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"TakeawayPos/app/security"
)

// AppConfig holds all application configuration
type AppConfig struct {
	// Backend REST API configuration
	Backend BackendConfig `json:"backend"`

	// Business information (fallback when the settings endpoint is down)
	Business BusinessConfig `json:"business"`

	// System configuration
	System SystemConfig `json:"system"`

	// Print defaults used when the backend config endpoints are unreachable
	KOT  KOTPrintDefaults  `json:"kot"`
	Bill BillPrintDefaults `json:"bill"`

	// First run flag
	FirstRun bool `json:"first_run"`
}

// BackendConfig holds the connection settings for the POS backend
type BackendConfig struct {
	BaseURL        string `json:"base_url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	APIToken       string `json:"api_token"`
}

// BusinessConfig holds restaurant information used on printed bills
// when the backend settings cannot be fetched
type BusinessConfig struct {
	Name           string  `json:"name"`
	Address        string  `json:"address"`
	Phone          string  `json:"phone"`
	Email          string  `json:"email"`
	Currency       string  `json:"currency"`
	TaxRatePercent float64 `json:"tax_rate_percent"`
}

// SystemConfig holds system settings
type SystemConfig struct {
	DataPath    string `json:"data_path"`
	PrinterName string `json:"printer_name"`
	Language    string `json:"language"`
}

// KOTPrintDefaults holds fallback kitchen ticket print settings
type KOTPrintDefaults struct {
	PrintByDepartment bool   `json:"print_by_department"`
	NumberOfCopies    int    `json:"number_of_copies"`
	PaperSize         string `json:"paper_size"`
	FormatType        string `json:"format_type"`
}

// BillPrintDefaults holds fallback bill print settings
type BillPrintDefaults struct {
	AutoPrintTakeaway bool   `json:"auto_print_takeaway"`
	PaperSize         string `json:"paper_size"`
	FormatType        string `json:"format_type"`
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	// Get user's AppData directory
	appData := os.Getenv("APPDATA")
	if appData == "" {
		// Fallback to user's home directory
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not determine home directory: %w", err)
		}
		appData = filepath.Join(homeDir, "AppData", "Roaming")
	}

	configDir := filepath.Join(appData, "TakeawayPos")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("could not create config directory: %w", err)
	}

	return filepath.Join(configDir, "config.json"), nil
}

// LoadConfig loads configuration from config.json and decrypts sensitive fields
func LoadConfig() (*AppConfig, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found")
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}

	var cfg AppConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("could not parse config file: %w", err)
	}

	cfg.decryptSensitiveFields()
	cfg.applyEnvOverrides()

	return &cfg, nil
}

// SaveConfig saves configuration to config.json after encrypting sensitive fields
func SaveConfig(cfg *AppConfig) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	// Create a copy to avoid modifying the original
	cfgCopy := *cfg

	if err := cfgCopy.encryptSensitiveFields(); err != nil {
		return fmt.Errorf("could not encrypt sensitive fields: %w", err)
	}

	data, err := json.MarshalIndent(&cfgCopy, "", "  ")
	if err != nil {
		return fmt.Errorf("could not marshal config: %w", err)
	}

	// Write to file with restrictive permissions
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("could not write config file: %w", err)
	}

	return nil
}

// ConfigExists checks if config file exists
func ConfigExists() (bool, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return false, err
	}

	_, err = os.Stat(configPath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

// CreateDefaultConfig creates a default configuration file
func CreateDefaultConfig() (*AppConfig, error) {
	cfg := &AppConfig{
		Backend: BackendConfig{
			BaseURL:        "http://localhost:8080/api",
			TimeoutSeconds: 15,
		},
		Business: BusinessConfig{
			Name:           "My Restaurant",
			Currency:       "INR",
			TaxRatePercent: 5,
		},
		System: SystemConfig{
			Language: "en",
		},
		KOT: KOTPrintDefaults{
			NumberOfCopies: 1,
			PaperSize:      "80mm",
			FormatType:     "detailed",
		},
		Bill: BillPrintDefaults{
			PaperSize:  "80mm",
			FormatType: "standard",
		},
		FirstRun: true,
	}

	if err := SaveConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// MarkSetupComplete marks the first run as complete
func MarkSetupComplete() error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	cfg.FirstRun = false
	return SaveConfig(cfg)
}

// applyEnvOverrides lets .env settings win during development
func (cfg *AppConfig) applyEnvOverrides() {
	if url := os.Getenv("POS_BACKEND_URL"); url != "" {
		cfg.Backend.BaseURL = url
	}
	if token := os.Getenv("POS_API_TOKEN"); token != "" {
		cfg.Backend.APIToken = token
	}
	if printer := os.Getenv("POS_PRINTER_NAME"); printer != "" {
		cfg.System.PrinterName = printer
	}
}

// encryptSensitiveFields encrypts sensitive configuration fields
func (cfg *AppConfig) encryptSensitiveFields() error {
	if cfg.Backend.APIToken != "" {
		encrypted, err := security.Encrypt(cfg.Backend.APIToken)
		if err != nil {
			return fmt.Errorf("could not encrypt API token: %w", err)
		}
		cfg.Backend.APIToken = encrypted
	}
	return nil
}

// decryptSensitiveFields decrypts sensitive configuration fields
// If a field is not encrypted (plain text), it leaves it as-is (useful for development)
func (cfg *AppConfig) decryptSensitiveFields() {
	if cfg.Backend.APIToken != "" {
		decrypted, err := security.Decrypt(cfg.Backend.APIToken)
		if err != nil {
			// If decryption fails, assume it's plain text
			decrypted = cfg.Backend.APIToken
		}
		cfg.Backend.APIToken = decrypted
	}
}
