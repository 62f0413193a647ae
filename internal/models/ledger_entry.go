package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerEntry amount is always positive; the sign is implied by Kind.
type LedgerEntry struct {
	ID                   uuid.UUID            `gorm:"type:uuid;primaryKey" json:"id"`
	UserID               uuid.UUID            `gorm:"type:uuid;index" json:"user_id"`
	Date                 time.Time            `gorm:"type:date;index" json:"date"`
	Description          string               `json:"description"`
	Kind                 EntryKind            `gorm:"index" json:"kind"`
	Category             string               `json:"category"`
	Amount               decimal.Decimal      `gorm:"type:numeric(14,2)" json:"amount"`
	Status               EntryStatus          `json:"status"`
	ReconciliationStatus ReconciliationStatus `gorm:"index" json:"reconciliation_status"`
	LinkedItemID         *uuid.UUID           `gorm:"type:uuid" json:"linked_item_id"`
	Responsible          *string              `json:"responsible"`
	Notes                *string              `json:"notes"`
	CreatedAt            time.Time            `json:"created_at"`
	UpdatedAt            time.Time            `json:"updated_at"`
}

// Signed returns the amount with the sign implied by the entry kind.
func (e LedgerEntry) Signed() decimal.Decimal {
	if e.Kind == Expense {
		return e.Amount.Neg()
	}
	return e.Amount
}
