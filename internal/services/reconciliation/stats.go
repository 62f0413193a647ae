package reconciliation

import (
	"context"
	"math"

	"github.com/google/uuid"

	"cartorio-reconciliation-backend/internal/models"
	"cartorio-reconciliation-backend/internal/session"
)

type Stats struct {
	Matched      int `json:"matched"`
	Pending      int `json:"pending"`
	Divergent    int `json:"divergent"`
	TotalItems   int `json:"total_items"`
	TotalEntries int `json:"total_entries"`
	// Rate is matched items over all items, in whole percent.
	Rate int `json:"rate"`
}

// ComputeStats counts items by status. Rate is 0 for an empty pool.
func ComputeStats(items []models.StatementItem) Stats {
	stats := Stats{TotalItems: len(items)}
	for _, item := range items {
		switch item.ReconciliationStatus {
		case models.StatusMatched:
			stats.Matched++
		case models.StatusPending:
			stats.Pending++
		case models.StatusDivergent:
			stats.Divergent++
		}
	}
	if stats.TotalItems > 0 {
		stats.Rate = int(math.Round(float64(stats.Matched) / float64(stats.TotalItems) * 100))
	}
	return stats
}

// AccountStats computes the statistics of every item imported into the
// account. Accounts the user does not own report gorm.ErrRecordNotFound.
func (s *ReconciliationService) AccountStats(ctx context.Context, sess session.Session, accountID uuid.UUID) (Stats, error) {
	if _, err := s.accounts.GetByID(ctx, sess, accountID); err != nil {
		return Stats{}, err
	}
	items, err := s.statements.ItemsByAccount(ctx, sess, accountID)
	if err != nil {
		return Stats{}, err
	}
	entries, err := s.entries.List(ctx, sess)
	if err != nil {
		return Stats{}, err
	}
	stats := ComputeStats(items)
	stats.TotalEntries = len(entries)
	return stats, nil
}
