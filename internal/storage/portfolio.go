package storage

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/coindeck/coindeck/internal/common"
	"github.com/coindeck/coindeck/internal/models"
)

// currentPortfolioKey is the fixed key for the current-portfolio pointer.
const currentPortfolioKey = "current"

// currentPortfolioRecord is the stored pointer to the current portfolio.
type currentPortfolioRecord struct {
	PortfolioID string
}

// portfolioStorage implements interfaces.PortfolioStore using BadgerDB
type portfolioStorage struct {
	db     *BadgerDB
	logger *common.Logger
}

func newPortfolioStorage(db *BadgerDB, logger *common.Logger) *portfolioStorage {
	return &portfolioStorage{db: db, logger: logger}
}

func (s *portfolioStorage) GetPortfolio(ctx context.Context, id string) (*models.Portfolio, error) {
	var p models.Portfolio
	err := s.db.store.Get(id, &p)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get portfolio: %w", err)
	}
	return &p, nil
}

func (s *portfolioStorage) SavePortfolio(ctx context.Context, p *models.Portfolio) error {
	if p.ID == "" {
		return fmt.Errorf("portfolio id is required")
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}

	if err := s.db.store.Upsert(p.ID, p); err != nil {
		return fmt.Errorf("failed to save portfolio: %w", err)
	}
	s.logger.Debug().Str("portfolio_id", p.ID).Msg("Portfolio saved")
	return nil
}

func (s *portfolioStorage) DeletePortfolio(ctx context.Context, id string) error {
	err := s.db.store.Delete(id, models.Portfolio{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete portfolio: %w", err)
	}
	s.logger.Debug().Str("portfolio_id", id).Msg("Portfolio deleted")
	return nil
}

func (s *portfolioStorage) ListPortfolios(ctx context.Context) ([]*models.Portfolio, error) {
	var portfolios []models.Portfolio
	if err := s.db.store.Find(&portfolios, nil); err != nil {
		return nil, fmt.Errorf("failed to list portfolios: %w", err)
	}

	sort.Slice(portfolios, func(i, j int) bool {
		return portfolios[i].CreatedAt.Before(portfolios[j].CreatedAt)
	})

	out := make([]*models.Portfolio, len(portfolios))
	for i := range portfolios {
		out[i] = &portfolios[i]
	}
	return out, nil
}

func (s *portfolioStorage) GetCurrentID(ctx context.Context) (string, error) {
	var rec currentPortfolioRecord
	err := s.db.store.Get(currentPortfolioKey, &rec)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return "", nil
		}
		return "", fmt.Errorf("failed to get current portfolio pointer: %w", err)
	}
	return rec.PortfolioID, nil
}

func (s *portfolioStorage) SetCurrentID(ctx context.Context, id string) error {
	rec := currentPortfolioRecord{PortfolioID: id}
	if err := s.db.store.Upsert(currentPortfolioKey, &rec); err != nil {
		return fmt.Errorf("failed to set current portfolio pointer: %w", err)
	}
	return nil
}

func (s *portfolioStorage) SaveTransaction(ctx context.Context, tx *models.Transaction) error {
	if tx.ID == "" {
		return fmt.Errorf("transaction id is required")
	}
	if err := s.db.store.Upsert(tx.ID, tx); err != nil {
		return fmt.Errorf("failed to save transaction: %w", err)
	}
	return nil
}

func (s *portfolioStorage) ListTransactions(ctx context.Context, portfolioID string) ([]*models.Transaction, error) {
	var txs []models.Transaction
	query := badgerhold.Where("PortfolioID").Eq(portfolioID)
	if err := s.db.store.Find(&txs, query); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	sort.Slice(txs, func(i, j int) bool {
		return txs[i].Timestamp.Before(txs[j].Timestamp)
	})

	out := make([]*models.Transaction, len(txs))
	for i := range txs {
		out[i] = &txs[i]
	}
	return out, nil
}

func (s *portfolioStorage) DeleteTransactions(ctx context.Context, portfolioID string) (int, error) {
	var txs []models.Transaction
	query := badgerhold.Where("PortfolioID").Eq(portfolioID)
	if err := s.db.store.Find(&txs, query); err != nil {
		return 0, fmt.Errorf("failed to find transactions: %w", err)
	}

	for _, tx := range txs {
		if err := s.db.store.Delete(tx.ID, models.Transaction{}); err != nil {
			return 0, fmt.Errorf("failed to delete transaction %s: %w", tx.ID, err)
		}
	}
	return len(txs), nil
}
