package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	AuditLinked   = "linked"
	AuditUnlinked = "unlinked"
)

// MatchAuditLog is appended in the same transaction as every link and unlink.
type MatchAuditLog struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID      `gorm:"type:uuid;index" json:"user_id"`
	StatementItemID uuid.UUID      `gorm:"type:uuid;index" json:"statement_item_id"`
	LedgerEntryID   uuid.UUID      `gorm:"type:uuid;index" json:"ledger_entry_id"`
	Action          string         `json:"action"`
	Details         datatypes.JSON `json:"details"`
	CreatedAt       time.Time      `json:"created_at"`
}
