// Package portfolio manages simulated portfolios and their analytics
package portfolio

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/coindeck/coindeck/internal/common"
	"github.com/coindeck/coindeck/internal/interfaces"
	"github.com/coindeck/coindeck/internal/models"
	"github.com/coindeck/coindeck/internal/services/analytics"
)

// Service implements interfaces.PortfolioService.
type Service struct {
	storage interfaces.StorageManager
	market  interfaces.MarketService
	logger  *common.Logger
}

var _ interfaces.PortfolioService = (*Service)(nil)

// NewService creates the portfolio service.
func NewService(storage interfaces.StorageManager, market interfaces.MarketService, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		market:  market,
		logger:  logger,
	}
}

// CreatePortfolio creates an empty named portfolio. The first portfolio
// created becomes the current one.
func (s *Service) CreatePortfolio(ctx context.Context, name, description string) (*models.Portfolio, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("portfolio name is required")
	}

	now := time.Now()
	p := &models.Portfolio{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Holdings:    []models.Holding{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.storage.PortfolioStore().SavePortfolio(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save portfolio: %w", err)
	}

	currentID, err := s.storage.PortfolioStore().GetCurrentID(ctx)
	if err == nil && currentID == "" {
		if err := s.storage.PortfolioStore().SetCurrentID(ctx, p.ID); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to mark first portfolio current")
		}
	}

	s.logger.Info().Str("portfolio_id", p.ID).Str("name", name).Msg("Portfolio created")
	return p, nil
}

// GetPortfolio returns one portfolio by id.
func (s *Service) GetPortfolio(ctx context.Context, id string) (*models.Portfolio, error) {
	p, err := s.storage.PortfolioStore().GetPortfolio(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load portfolio %s: %w", id, err)
	}
	if p == nil {
		return nil, fmt.Errorf("portfolio %s not found", id)
	}
	return p, nil
}

// ListPortfolios returns all portfolios.
func (s *Service) ListPortfolios(ctx context.Context) ([]*models.Portfolio, error) {
	return s.storage.PortfolioStore().ListPortfolios(ctx)
}

// UpdatePortfolio renames a portfolio. Holdings change only through
// transactions.
func (s *Service) UpdatePortfolio(ctx context.Context, id, name, description string) (*models.Portfolio, error) {
	p, err := s.GetPortfolio(ctx, id)
	if err != nil {
		return nil, err
	}

	if name = strings.TrimSpace(name); name != "" {
		p.Name = name
	}
	if description != "" {
		p.Description = description
	}
	p.UpdatedAt = time.Now()

	if err := s.storage.PortfolioStore().SavePortfolio(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save portfolio: %w", err)
	}
	return p, nil
}

// DeletePortfolio removes a portfolio, its transaction log, and the current
// pointer when it pointed here.
func (s *Service) DeletePortfolio(ctx context.Context, id string) error {
	if _, err := s.GetPortfolio(ctx, id); err != nil {
		return err
	}

	if err := s.storage.PortfolioStore().DeletePortfolio(ctx, id); err != nil {
		return fmt.Errorf("failed to delete portfolio %s: %w", id, err)
	}

	removed, err := s.storage.PortfolioStore().DeleteTransactions(ctx, id)
	if err != nil {
		s.logger.Warn().Err(err).Str("portfolio_id", id).Msg("Failed to delete transaction log")
	}

	currentID, err := s.storage.PortfolioStore().GetCurrentID(ctx)
	if err == nil && currentID == id {
		if err := s.storage.PortfolioStore().SetCurrentID(ctx, ""); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to clear current portfolio pointer")
		}
	}

	s.logger.Info().Str("portfolio_id", id).Int("transactions_removed", removed).Msg("Portfolio deleted")
	return nil
}

// CurrentPortfolio returns the portfolio marked current, or nil when none is.
func (s *Service) CurrentPortfolio(ctx context.Context) (*models.Portfolio, error) {
	currentID, err := s.storage.PortfolioStore().GetCurrentID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read current portfolio pointer: %w", err)
	}
	if currentID == "" {
		return nil, nil
	}

	p, err := s.storage.PortfolioStore().GetPortfolio(ctx, currentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load portfolio %s: %w", currentID, err)
	}
	return p, nil
}

// SetCurrentPortfolio marks a portfolio as current.
func (s *Service) SetCurrentPortfolio(ctx context.Context, id string) error {
	if _, err := s.GetPortfolio(ctx, id); err != nil {
		return err
	}
	return s.storage.PortfolioStore().SetCurrentID(ctx, id)
}

// AddTransaction folds a transaction into the portfolio's holdings and
// records it in the transaction log. The transaction is rejected before
// anything is written when it cannot apply (overselling, unknown type).
func (s *Service) AddTransaction(ctx context.Context, tx models.Transaction) (*models.Portfolio, error) {
	p, err := s.GetPortfolio(ctx, tx.PortfolioID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.Timestamp.IsZero() {
		tx.Timestamp = now
	}
	if tx.Total == 0 {
		tx.Total = tx.Amount * tx.Price
	}

	updated, err := models.ApplyTransaction(*p, tx, now)
	if err != nil {
		return nil, err
	}

	if err := s.storage.PortfolioStore().SavePortfolio(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to save portfolio: %w", err)
	}
	if err := s.storage.PortfolioStore().SaveTransaction(ctx, &tx); err != nil {
		return nil, fmt.Errorf("failed to record transaction: %w", err)
	}

	s.logger.Info().
		Str("portfolio_id", p.ID).
		Str("type", string(tx.Type)).
		Str("coin", tx.CoinID).
		Float64("amount", tx.Amount).
		Msg("Transaction applied")

	return &updated, nil
}

// ListTransactions returns a portfolio's transaction log.
func (s *Service) ListTransactions(ctx context.Context, portfolioID string) ([]*models.Transaction, error) {
	return s.storage.PortfolioStore().ListTransactions(ctx, portfolioID)
}

// Snapshot computes the analytics snapshot at live prices. Returns nil with
// no error for a portfolio with zero holdings.
func (s *Service) Snapshot(ctx context.Context, id string) (*models.PortfolioSnapshot, error) {
	p, err := s.GetPortfolio(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(p.Holdings) == 0 {
		return nil, nil
	}

	coinIDs := make([]string, 0, len(p.Holdings))
	for _, h := range p.Holdings {
		coinIDs = append(coinIDs, h.CoinID)
	}

	if err := s.market.RefreshCoins(ctx, coinIDs); err != nil {
		s.logger.Warn().Err(err).Msg("Price refresh failed, valuing at cached prices")
	}
	prices := s.market.GetPrices(coinIDs)

	return analytics.Summarize(p, prices, time.Now()), nil
}

// RenderAllocationChart renders the allocation donut as PNG bytes.
func (s *Service) RenderAllocationChart(ctx context.Context, id string) ([]byte, error) {
	snapshot, err := s.Snapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, fmt.Errorf("portfolio %s has no holdings to chart", id)
	}
	return RenderAllocationChart(snapshot)
}
