package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Statement struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID       `gorm:"type:uuid;index" json:"user_id"`
	AccountID   uuid.UUID       `gorm:"type:uuid;index" json:"account_id"`
	Account     *BankAccount    `gorm:"foreignKey:AccountID" json:"account,omitempty"`
	Filename    string          `json:"filename"`
	PeriodStart time.Time       `gorm:"type:date" json:"period_start"`
	PeriodEnd   time.Time       `gorm:"type:date" json:"period_end"`
	TotalItems  int             `json:"total_items"`
	Status      StatementStatus `gorm:"index" json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

// StatementItem is one imported bank line. Amount is unsigned; Direction
// carries the sign.
type StatementItem struct {
	ID                   uuid.UUID            `gorm:"type:uuid;primaryKey" json:"id"`
	StatementID          uuid.UUID            `gorm:"type:uuid;index" json:"statement_id"`
	UserID               uuid.UUID            `gorm:"type:uuid;index" json:"user_id"`
	TransactionDate      time.Time            `gorm:"type:date;index" json:"transaction_date"`
	Description          string               `json:"description"`
	Amount               decimal.Decimal      `gorm:"type:numeric(14,2)" json:"amount"`
	Direction            Direction            `json:"direction"`
	RunningBalance       decimal.NullDecimal  `gorm:"type:numeric(14,2)" json:"running_balance"`
	ReconciliationStatus ReconciliationStatus `gorm:"index" json:"reconciliation_status"`
	LinkedEntryID        *uuid.UUID           `gorm:"type:uuid" json:"linked_entry_id"`
	CreatedAt            time.Time            `json:"created_at"`
}
