package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReconciliationLink pairs one statement item with one ledger entry. Each side
// participates in at most one link.
type ReconciliationLink struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID       `gorm:"type:uuid;index" json:"user_id"`
	StatementItemID uuid.UUID       `gorm:"type:uuid;uniqueIndex" json:"statement_item_id"`
	LedgerEntryID   uuid.UUID       `gorm:"type:uuid;uniqueIndex" json:"ledger_entry_id"`
	Variance        decimal.Decimal `gorm:"type:numeric(14,2)" json:"variance"`
	Note            *string         `json:"note"`
	LinkedAt        time.Time       `gorm:"index" json:"linked_at"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Status is the reconciliation status implied by this link.
func (l ReconciliationLink) Status() ReconciliationStatus {
	if l.Variance.IsZero() {
		return StatusMatched
	}
	return StatusDivergent
}
