package services

import (
	"TakeawayPos/app/backend"
	"TakeawayPos/app/config"
	"TakeawayPos/app/database"
	"TakeawayPos/app/models"
)

// SettingsService resolves restaurant identity and tax configuration.
// Resolution order is backend, then local cache, then the config file.
type SettingsService struct {
	client  *backend.Client
	localDB *database.LocalDB
	cfg     *config.AppConfig
	logger  *LoggerService
}

// NewSettingsService creates a new settings service
func NewSettingsService(client *backend.Client, localDB *database.LocalDB, cfg *config.AppConfig, logger *LoggerService) *SettingsService {
	return &SettingsService{
		client:  client,
		localDB: localDB,
		cfg:     cfg,
		logger:  logger,
	}
}

// Settings returns the effective restaurant settings
func (s *SettingsService) Settings() *models.RestaurantSettings {
	if s.client != nil {
		settings, err := s.client.RestaurantSettings()
		if err == nil {
			if s.localDB != nil {
				if cacheErr := s.localDB.CacheSettings(settings); cacheErr != nil {
					s.logger.LogWarning("Failed to cache restaurant settings", cacheErr.Error())
				}
			}
			return settings
		}
		s.logger.LogError("Failed to fetch restaurant settings, using cache", err)
	}

	if s.localDB != nil {
		cached, err := s.localDB.GetCachedSettings()
		if err == nil && cached != nil {
			return cached
		}
	}

	return s.settingsFromConfig()
}

// TaxRate returns the effective tax rate in percent
func (s *SettingsService) TaxRate() float64 {
	return s.Settings().TaxRate
}

// settingsFromConfig builds settings from the local config file so printing
// still works with no backend and no cache
func (s *SettingsService) settingsFromConfig() *models.RestaurantSettings {
	settings := &models.RestaurantSettings{
		RestaurantName: "Restaurant",
		Currency:       "INR",
		TaxRate:        5,
	}

	if s.cfg != nil {
		if s.cfg.Business.Name != "" {
			settings.RestaurantName = s.cfg.Business.Name
		}
		settings.Address = s.cfg.Business.Address
		settings.Phone = s.cfg.Business.Phone
		settings.Email = s.cfg.Business.Email
		if s.cfg.Business.Currency != "" {
			settings.Currency = s.cfg.Business.Currency
		}
		settings.TaxRate = s.cfg.Business.TaxRatePercent
	}

	return settings
}
