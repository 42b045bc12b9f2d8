package services

import (
	"testing"

	"TakeawayPos/app/config"

	"github.com/stretchr/testify/assert"
)

func TestSettingsFallBackToConfig(t *testing.T) {
	cfg := &config.AppConfig{
		Business: config.BusinessConfig{
			Name:           "Spice Garden",
			Address:        "12 MG Road",
			Currency:       "INR",
			TaxRatePercent: 12,
		},
	}
	s := NewSettingsService(nil, nil, cfg, NewLoggerService())

	settings := s.Settings()
	assert.Equal(t, "Spice Garden", settings.RestaurantName)
	assert.Equal(t, "12 MG Road", settings.Address)
	assert.InDelta(t, 12, settings.TaxRate, 0.001)
	assert.InDelta(t, 12, s.TaxRate(), 0.001)
}

func TestSettingsDefaultsWithNoConfig(t *testing.T) {
	s := NewSettingsService(nil, nil, nil, NewLoggerService())

	settings := s.Settings()
	assert.Equal(t, "Restaurant", settings.RestaurantName)
	assert.Equal(t, "INR", settings.Currency)
	assert.InDelta(t, 5, settings.TaxRate, 0.001)
}
