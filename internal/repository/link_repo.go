package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cartorio-reconciliation-backend/internal/models"
	"cartorio-reconciliation-backend/internal/session"
)

type LinkRepository struct {
	db *gorm.DB
}

func NewLinkRepository(db *gorm.DB) *LinkRepository {
	return &LinkRepository{db: db}
}

func (r *LinkRepository) WithTx(tx *gorm.DB) *LinkRepository {
	return &LinkRepository{db: tx}
}

// List returns links, most recently linked first.
func (r *LinkRepository) List(ctx context.Context, sess session.Session) ([]models.ReconciliationLink, error) {
	var links []models.ReconciliationLink
	err := owned(r.db.WithContext(ctx), sess).Order("linked_at DESC").Find(&links).Error
	return links, err
}

// Divergent returns links with a nonzero variance, newest first.
func (r *LinkRepository) Divergent(ctx context.Context, sess session.Session, limit int) ([]models.ReconciliationLink, error) {
	var links []models.ReconciliationLink
	err := owned(r.db.WithContext(ctx), sess).
		Where("variance <> ?", 0).
		Order("linked_at DESC").
		Limit(limit).
		Find(&links).Error
	return links, err
}

func (r *LinkRepository) FindByPair(ctx context.Context, sess session.Session, itemID, entryID uuid.UUID) (*models.ReconciliationLink, error) {
	var link models.ReconciliationLink
	err := owned(r.db.WithContext(ctx), sess).
		Where("statement_item_id = ? AND ledger_entry_id = ?", itemID, entryID).
		First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// ExistsFor reports whether either side already takes part in a link.
func (r *LinkRepository) ExistsFor(ctx context.Context, itemID, entryID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ReconciliationLink{}).
		Where("statement_item_id = ? OR ledger_entry_id = ?", itemID, entryID).
		Count(&count).Error
	return count > 0, err
}

func (r *LinkRepository) Create(ctx context.Context, sess session.Session, link *models.ReconciliationLink) error {
	link.ID = uuid.New()
	link.UserID = sess.UserID
	if link.LinkedAt.IsZero() {
		link.LinkedAt = time.Now()
	}
	link.CreatedAt = link.LinkedAt
	return r.db.WithContext(ctx).Create(link).Error
}

// DeleteByPair removes the link matched by both keys.
func (r *LinkRepository) DeleteByPair(ctx context.Context, sess session.Session, itemID, entryID uuid.UUID) error {
	result := owned(r.db.WithContext(ctx), sess).
		Where("statement_item_id = ? AND ledger_entry_id = ?", itemID, entryID).
		Delete(&models.ReconciliationLink{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *LinkRepository) AppendAudit(ctx context.Context, sess session.Session, entry *models.MatchAuditLog) error {
	entry.ID = uuid.New()
	entry.UserID = sess.UserID
	entry.CreatedAt = time.Now()
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *LinkRepository) AuditTrail(ctx context.Context, sess session.Session, itemID uuid.UUID) ([]models.MatchAuditLog, error) {
	var logs []models.MatchAuditLog
	err := owned(r.db.WithContext(ctx), sess).
		Where("statement_item_id = ?", itemID).
		Order("created_at ASC").
		Find(&logs).Error
	return logs, err
}
