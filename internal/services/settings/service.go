// Package settings manages the user preferences document
package settings

import (
	"context"
	"fmt"
	"time"

	"github.com/coindeck/coindeck/internal/common"
	"github.com/coindeck/coindeck/internal/interfaces"
	"github.com/coindeck/coindeck/internal/models"
)

// Service implements interfaces.SettingsService.
type Service struct {
	storage interfaces.StorageManager
	logger  *common.Logger
}

var _ interfaces.SettingsService = (*Service)(nil)

// NewService creates the settings service.
func NewService(storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{storage: storage, logger: logger}
}

// Get returns the settings document, falling back to defaults when none has
// been saved yet.
func (s *Service) Get(ctx context.Context) (*models.Settings, error) {
	stored, err := s.storage.SettingsStore().GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if stored == nil {
		return models.DefaultSettings(), nil
	}
	return stored, nil
}

// Update replaces the settings document after validation.
func (s *Service) Update(ctx context.Context, settings models.Settings) (*models.Settings, error) {
	if settings.Currency == "" {
		settings.Currency = "usd"
	}
	if settings.RefreshInterval < 5000 {
		return nil, fmt.Errorf("refresh interval must be at least 5000ms, got %d", settings.RefreshInterval)
	}
	if settings.AlertCheckInterval < 10000 {
		return nil, fmt.Errorf("alert check interval must be at least 10000ms, got %d", settings.AlertCheckInterval)
	}

	if settings.Version == 0 {
		settings.Version = 1
	}
	settings.UpdatedAt = time.Now()

	if err := s.storage.SettingsStore().SaveSettings(ctx, &settings); err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}

	s.logger.Info().Str("currency", settings.Currency).Msg("Settings updated")
	return &settings, nil
}
