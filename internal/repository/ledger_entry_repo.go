package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"cartorio-reconciliation-backend/internal/models"
	"cartorio-reconciliation-backend/internal/session"
)

type LedgerEntryRepository struct {
	db *gorm.DB
}

func NewLedgerEntryRepository(db *gorm.DB) *LedgerEntryRepository {
	return &LedgerEntryRepository{db: db}
}

func (r *LedgerEntryRepository) WithTx(tx *gorm.DB) *LedgerEntryRepository {
	return &LedgerEntryRepository{db: tx}
}

// EntryFilter narrows Search. Zero values match everything.
type EntryFilter struct {
	Kind                 models.EntryKind
	Query                string
	ReconciliationStatus models.ReconciliationStatus
}

// List returns all the user's entries, latest date first.
func (r *LedgerEntryRepository) List(ctx context.Context, sess session.Session) ([]models.LedgerEntry, error) {
	return r.Search(ctx, sess, EntryFilter{})
}

// Search filters by kind, reconciliation status and a case-insensitive
// description substring.
func (r *LedgerEntryRepository) Search(ctx context.Context, sess session.Session, f EntryFilter) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	q := owned(r.db.WithContext(ctx), sess)

	if f.Kind != "" {
		q = q.Where("kind = ?", f.Kind)
	}
	if f.ReconciliationStatus != "" {
		q = q.Where("reconciliation_status = ?", f.ReconciliationStatus)
	}
	if f.Query != "" {
		q = q.Where("LOWER(description) LIKE ?", "%"+strings.ToLower(f.Query)+"%")
	}

	err := q.Order("date DESC").Order("created_at DESC").Find(&entries).Error
	return entries, err
}

// Pending returns entries not yet reconciled.
func (r *LedgerEntryRepository) Pending(ctx context.Context, sess session.Session) ([]models.LedgerEntry, error) {
	return r.Search(ctx, sess, EntryFilter{ReconciliationStatus: models.StatusPending})
}

// Recent returns the latest limit entries.
func (r *LedgerEntryRepository) Recent(ctx context.Context, sess session.Session, limit int) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	err := owned(r.db.WithContext(ctx), sess).
		Order("date DESC").
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

func (r *LedgerEntryRepository) GetByID(ctx context.Context, sess session.Session, id uuid.UUID) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	if err := owned(r.db.WithContext(ctx), sess).First(&entry, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetByIDs returns the owned entries among ids, in no particular order.
func (r *LedgerEntryRepository) GetByIDs(ctx context.Context, sess session.Session, ids []uuid.UUID) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	if len(ids) == 0 {
		return entries, nil
	}
	err := owned(r.db.WithContext(ctx), sess).Where("id IN ?", ids).Find(&entries).Error
	return entries, err
}

// Create assigns id, owner and timestamps; new entries start unreconciled.
func (r *LedgerEntryRepository) Create(ctx context.Context, sess session.Session, entry *models.LedgerEntry) error {
	entry.ID = uuid.New()
	entry.UserID = sess.UserID
	entry.ReconciliationStatus = models.StatusPending
	entry.LinkedItemID = nil
	entry.CreatedAt = time.Now()
	entry.UpdatedAt = entry.CreatedAt
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *LedgerEntryRepository) Update(ctx context.Context, sess session.Session, id uuid.UUID, fields Fields) (*models.LedgerEntry, error) {
	if err := updateOwned(r.db.WithContext(ctx), sess, &models.LedgerEntry{}, id, fields); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, sess, id)
}

// SetEntryLink writes the denormalized reconciliation fields of an entry.
func (r *LedgerEntryRepository) SetEntryLink(ctx context.Context, sess session.Session, id uuid.UUID, status models.ReconciliationStatus, itemID *uuid.UUID) error {
	return updateOwned(r.db.WithContext(ctx), sess, &models.LedgerEntry{}, id, Fields{
		"reconciliation_status": status,
		"linked_item_id":        itemID,
	})
}

func (r *LedgerEntryRepository) Delete(ctx context.Context, sess session.Session, id uuid.UUID) error {
	return deleteOwned(r.db.WithContext(ctx), sess, &models.LedgerEntry{}, id)
}

type StatusCount struct {
	Status models.ReconciliationStatus
	Count  int64
}

// CountByStatus groups the user's entries by reconciliation status.
func (r *LedgerEntryRepository) CountByStatus(ctx context.Context, sess session.Session) ([]StatusCount, error) {
	var rows []StatusCount
	err := owned(r.db.WithContext(ctx).Model(&models.LedgerEntry{}), sess).
		Select("reconciliation_status AS status, COUNT(*) AS count").
		Group("reconciliation_status").
		Scan(&rows).Error
	return rows, err
}

// Totals sums income and expense amounts. Sums are done in decimal to keep
// cents exact across drivers.
func (r *LedgerEntryRepository) Totals(ctx context.Context, sess session.Session) (income, expense decimal.Decimal, err error) {
	var entries []models.LedgerEntry
	err = owned(r.db.WithContext(ctx), sess).Select("kind", "amount").Find(&entries).Error
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	income, expense = decimal.Zero, decimal.Zero
	for _, e := range entries {
		switch e.Kind {
		case models.Income:
			income = income.Add(e.Amount)
		case models.Expense:
			expense = expense.Add(e.Amount)
		}
	}
	return income, expense, nil
}
