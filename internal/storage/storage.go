// Package storage provides BadgerDB-based persistence
package storage

import (
	"fmt"

	"github.com/timshannon/badgerhold/v4"

	"github.com/coindeck/coindeck/internal/common"
	"github.com/coindeck/coindeck/internal/interfaces"
)

// BadgerDB wraps badgerhold for typed storage
type BadgerDB struct {
	store  *badgerhold.Store
	logger *common.Logger
}

// NewBadgerDB creates a new BadgerDB instance
func NewBadgerDB(logger *common.Logger, path string) (*BadgerDB, error) {
	opts := badgerhold.DefaultOptions
	opts.Dir = path
	opts.ValueDir = path
	opts.Logger = nil // Disable badger's internal logging

	store, err := badgerhold.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store: %w", err)
	}

	logger.Debug().Str("path", path).Msg("BadgerDB opened")

	return &BadgerDB{
		store:  store,
		logger: logger,
	}, nil
}

// Close closes the database
func (db *BadgerDB) Close() error {
	if db.store != nil {
		return db.store.Close()
	}
	return nil
}

// Store returns the underlying badgerhold store
func (db *BadgerDB) Store() *badgerhold.Store {
	return db.store
}

// Manager implements interfaces.StorageManager on a single BadgerDB.
type Manager struct {
	db     *BadgerDB
	logger *common.Logger

	portfolios *portfolioStorage
	watchlists *watchlistStorage
	alerts     *alertStorage
	markets    *marketStorage
	settings   *settingsStorage
}

var _ interfaces.StorageManager = (*Manager)(nil)

// NewManager opens the database and wires the per-domain storages.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	db, err := NewBadgerDB(logger, config.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	logger.Info().Str("path", config.Storage.Path).Msg("Storage manager initialized")

	return &Manager{
		db:         db,
		logger:     logger,
		portfolios: newPortfolioStorage(db, logger),
		watchlists: newWatchlistStorage(db, logger),
		alerts:     newAlertStorage(db, logger),
		markets:    newMarketStorage(db, logger),
		settings:   newSettingsStorage(db, logger),
	}, nil
}

func (m *Manager) PortfolioStore() interfaces.PortfolioStore {
	return m.portfolios
}

func (m *Manager) WatchlistStore() interfaces.WatchlistStore {
	return m.watchlists
}

func (m *Manager) AlertStore() interfaces.AlertStore {
	return m.alerts
}

func (m *Manager) MarketStore() interfaces.MarketStore {
	return m.markets
}

func (m *Manager) SettingsStore() interfaces.SettingsStore {
	return m.settings
}

func (m *Manager) Close() error {
	return m.db.Close()
}
