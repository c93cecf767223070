package models

import (
	"fmt"
	"strings"
	"time"
)

// RiskLevel classifies portfolio concentration risk.
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "low"
	RiskLevelMedium RiskLevel = "medium"
	RiskLevelHigh   RiskLevel = "high"
)

// Holding represents an owned quantity of one coin.
type Holding struct {
	CoinID      string    `json:"coin_id"`
	Symbol      string    `json:"symbol"`
	Name        string    `json:"name"`
	Amount      float64   `json:"amount"`
	AvgBuyPrice float64   `json:"avg_buy_price"`
	AddedAt     time.Time `json:"added_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Cost returns the holding's cost basis (amount × average buy price).
func (h Holding) Cost() float64 {
	return h.Amount * h.AvgBuyPrice
}

// Portfolio is a named collection of holdings, at most one per coin.
type Portfolio struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Holdings    []Holding `json:"holdings"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FindHolding returns the holding for a coin and its index, or -1 if absent.
func (p *Portfolio) FindHolding(coinID string) (*Holding, int) {
	for i := range p.Holdings {
		if p.Holdings[i].CoinID == coinID {
			return &p.Holdings[i], i
		}
	}
	return nil, -1
}

// TransactionType categorizes portfolio transactions.
type TransactionType string

const (
	TransactionBuy         TransactionType = "buy"
	TransactionSell        TransactionType = "sell"
	TransactionTransferIn  TransactionType = "transfer_in"
	TransactionTransferOut TransactionType = "transfer_out"
)

// Transaction records a single portfolio entry.
type Transaction struct {
	ID          string          `json:"id"`
	PortfolioID string          `json:"portfolio_id"`
	Type        TransactionType `json:"type"`
	CoinID      string          `json:"coin_id"`
	Symbol      string          `json:"symbol"`
	Name        string          `json:"name,omitempty"`
	Amount      float64         `json:"amount"`
	Price       float64         `json:"price"`
	Total       float64         `json:"total"`
	Fees        float64         `json:"fees,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	Timestamp   time.Time       `json:"timestamp"`
}

// ApplyTransaction returns a copy of the portfolio with the transaction folded
// into its holdings. Pure: the input portfolio is not mutated.
//
// Buys and transfers in add units and recompute the weighted average buy price
// (transfers in carry a zero cost basis when Price is 0, as with airdrops).
// Sells and transfers out remove units; a fully liquidated holding is dropped.
func ApplyTransaction(p Portfolio, tx Transaction, now time.Time) (Portfolio, error) {
	if tx.Amount < 0 {
		return p, fmt.Errorf("transaction amount must be non-negative, got %f", tx.Amount)
	}

	out := p
	out.Holdings = make([]Holding, len(p.Holdings))
	copy(out.Holdings, p.Holdings)

	coinID := strings.TrimSpace(tx.CoinID)
	existing, idx := out.FindHolding(coinID)

	switch tx.Type {
	case TransactionBuy, TransactionTransferIn:
		if idx < 0 {
			out.Holdings = append(out.Holdings, Holding{
				CoinID:      coinID,
				Symbol:      strings.ToUpper(tx.Symbol),
				Name:        tx.Name,
				Amount:      tx.Amount,
				AvgBuyPrice: tx.Price,
				AddedAt:     now,
				UpdatedAt:   now,
			})
		} else {
			newAmount := existing.Amount + tx.Amount
			if newAmount > 0 {
				existing.AvgBuyPrice = (existing.Cost() + tx.Amount*tx.Price) / newAmount
			}
			existing.Amount = newAmount
			existing.UpdatedAt = now
		}

	case TransactionSell, TransactionTransferOut:
		if idx < 0 {
			return p, fmt.Errorf("cannot sell %s: not held", coinID)
		}
		if tx.Amount > existing.Amount {
			return p, fmt.Errorf("cannot sell %f %s: only %f held", tx.Amount, existing.Symbol, existing.Amount)
		}
		existing.Amount -= tx.Amount
		existing.UpdatedAt = now
		// Average cost basis is unchanged by a sale.
		if existing.Amount == 0 {
			out.Holdings = append(out.Holdings[:idx], out.Holdings[idx+1:]...)
		}

	default:
		return p, fmt.Errorf("unknown transaction type %q", tx.Type)
	}

	out.UpdatedAt = now
	return out, nil
}

// ValuedAsset is a holding joined with a live price. Derived, never persisted.
type ValuedAsset struct {
	Holding
	CurrentPrice float64 `json:"current_price"`
	Value        float64 `json:"value"`
	PnL          float64 `json:"pnl"`
	PnLPercent   float64 `json:"pnl_percent"`
	Allocation   float64 `json:"allocation"` // share of total portfolio value, 0-100
}

// Performer identifies the best or worst performing asset of a snapshot.
type Performer struct {
	CoinID     string  `json:"coin_id"`
	Symbol     string  `json:"symbol"`
	PnLPercent float64 `json:"pnl_percent"`
}

// PortfolioSnapshot is the derived analytics view of a portfolio at current
// prices. Recomputed on every request, never persisted.
type PortfolioSnapshot struct {
	PortfolioID          string        `json:"portfolio_id"`
	TotalValue           float64       `json:"total_value"`
	TotalCost            float64       `json:"total_cost"`
	TotalPnL             float64       `json:"total_pnl"`
	TotalPnLPercent      float64       `json:"total_pnl_percent"`
	BestPerformer        *Performer    `json:"best_performer,omitempty"`
	WorstPerformer       *Performer    `json:"worst_performer,omitempty"`
	DiversificationScore float64       `json:"diversification_score"`
	RiskLevel            RiskLevel     `json:"risk_level"`
	Assets               []ValuedAsset `json:"assets"`
	ComputedAt           time.Time     `json:"computed_at"`
}
