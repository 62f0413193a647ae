package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BankAccount balance is edited by the user and never derived from
// transactions.
type BankAccount struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID       `gorm:"type:uuid;index" json:"user_id"`
	BankName      string          `gorm:"index" json:"bank_name"`
	Branch        string          `json:"branch"`
	AccountNumber string          `json:"account_number"`
	Kind          AccountKind     `json:"kind"`
	Balance       decimal.Decimal `gorm:"type:numeric(14,2)" json:"balance"`
	Active        bool            `gorm:"index" json:"active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
