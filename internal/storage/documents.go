package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/coindeck/coindeck/internal/common"
	"github.com/coindeck/coindeck/internal/models"
)

// Fixed keys for singleton documents.
const (
	watchlistKey = "watchlist"
	alertsKey    = "alerts"
	settingsKey  = "settings"
)

// watchlistStorage implements interfaces.WatchlistStore using BadgerDB
type watchlistStorage struct {
	db     *BadgerDB
	logger *common.Logger
}

func newWatchlistStorage(db *BadgerDB, logger *common.Logger) *watchlistStorage {
	return &watchlistStorage{db: db, logger: logger}
}

func (s *watchlistStorage) GetWatchlist(ctx context.Context) (*models.Watchlist, error) {
	var w models.Watchlist
	err := s.db.store.Get(watchlistKey, &w)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get watchlist: %w", err)
	}
	return &w, nil
}

func (s *watchlistStorage) SaveWatchlist(ctx context.Context, w *models.Watchlist) error {
	if w.Version == 0 {
		w.Version = 1
	}
	if err := s.db.store.Upsert(watchlistKey, w); err != nil {
		return fmt.Errorf("failed to save watchlist: %w", err)
	}
	s.logger.Debug().Int("items", len(w.Items)).Msg("Watchlist saved")
	return nil
}

// alertStorage implements interfaces.AlertStore using BadgerDB
type alertStorage struct {
	db     *BadgerDB
	logger *common.Logger
}

func newAlertStorage(db *BadgerDB, logger *common.Logger) *alertStorage {
	return &alertStorage{db: db, logger: logger}
}

func (s *alertStorage) GetAlerts(ctx context.Context) (*models.AlertCollection, error) {
	var c models.AlertCollection
	err := s.db.store.Get(alertsKey, &c)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get alerts: %w", err)
	}
	return &c, nil
}

func (s *alertStorage) SaveAlerts(ctx context.Context, c *models.AlertCollection) error {
	if c.Version == 0 {
		c.Version = 1
	}
	if err := s.db.store.Upsert(alertsKey, c); err != nil {
		return fmt.Errorf("failed to save alerts: %w", err)
	}
	s.logger.Debug().Int("alerts", len(c.Alerts)).Msg("Alerts saved")
	return nil
}

// settingsStorage implements interfaces.SettingsStore using BadgerDB
type settingsStorage struct {
	db     *BadgerDB
	logger *common.Logger
}

func newSettingsStorage(db *BadgerDB, logger *common.Logger) *settingsStorage {
	return &settingsStorage{db: db, logger: logger}
}

func (s *settingsStorage) GetSettings(ctx context.Context) (*models.Settings, error) {
	var st models.Settings
	err := s.db.store.Get(settingsKey, &st)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return &st, nil
}

func (s *settingsStorage) SaveSettings(ctx context.Context, st *models.Settings) error {
	if st.UpdatedAt.IsZero() {
		st.UpdatedAt = time.Now()
	}
	if err := s.db.store.Upsert(settingsKey, st); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
