package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cartorio-reconciliation-backend/internal/models"
	"cartorio-reconciliation-backend/internal/session"
)

type StatementRepository struct {
	db *gorm.DB
}

func NewStatementRepository(db *gorm.DB) *StatementRepository {
	return &StatementRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *StatementRepository) WithTx(tx *gorm.DB) *StatementRepository {
	return &StatementRepository{db: tx}
}

// List returns statements with their account, newest first.
func (r *StatementRepository) List(ctx context.Context, sess session.Session) ([]models.Statement, error) {
	var statements []models.Statement
	err := owned(r.db.WithContext(ctx), sess).
		Preload("Account").
		Order("created_at DESC").
		Find(&statements).Error
	return statements, err
}

func (r *StatementRepository) GetByID(ctx context.Context, sess session.Session, id uuid.UUID) (*models.Statement, error) {
	var statement models.Statement
	if err := owned(r.db.WithContext(ctx), sess).Preload("Account").First(&statement, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &statement, nil
}

// CreateWithItems inserts the statement and all of its items in one
// transaction. Items are reset to pending with no link.
func (r *StatementRepository) CreateWithItems(ctx context.Context, sess session.Session, statement *models.Statement, items []models.StatementItem) error {
	now := time.Now()
	statement.ID = uuid.New()
	statement.UserID = sess.UserID
	statement.CreatedAt = now
	statement.TotalItems = len(items)

	for i := range items {
		items[i].ID = uuid.New()
		items[i].StatementID = statement.ID
		items[i].UserID = sess.UserID
		items[i].ReconciliationStatus = models.StatusPending
		items[i].LinkedEntryID = nil
		items[i].CreatedAt = now
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Account").Create(statement).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.CreateInBatches(&items, 500).Error
	})
}

// CountByAccount counts the statements imported into an account.
func (r *StatementRepository) CountByAccount(ctx context.Context, sess session.Session, accountID uuid.UUID) (int64, error) {
	var count int64
	err := owned(r.db.WithContext(ctx).Model(&models.Statement{}), sess).
		Where("account_id = ?", accountID).
		Count(&count).Error
	return count, err
}

// Items returns every item owned by the user.
func (r *StatementRepository) Items(ctx context.Context, sess session.Session) ([]models.StatementItem, error) {
	var items []models.StatementItem
	err := owned(r.db.WithContext(ctx), sess).Order("transaction_date DESC").Find(&items).Error
	return items, err
}

// GetItems returns the owned items among ids, in no particular order.
func (r *StatementRepository) GetItems(ctx context.Context, sess session.Session, ids []uuid.UUID) ([]models.StatementItem, error) {
	var items []models.StatementItem
	if len(ids) == 0 {
		return items, nil
	}
	err := owned(r.db.WithContext(ctx), sess).Where("id IN ?", ids).Find(&items).Error
	return items, err
}

// ItemsByStatement returns items of the given statements, latest date first.
func (r *StatementRepository) ItemsByStatement(ctx context.Context, sess session.Session, statementIDs ...uuid.UUID) ([]models.StatementItem, error) {
	var items []models.StatementItem
	if len(statementIDs) == 0 {
		return items, nil
	}
	err := owned(r.db.WithContext(ctx), sess).
		Where("statement_id IN ?", statementIDs).
		Order("transaction_date DESC").
		Find(&items).Error
	return items, err
}

// ItemsByAccount returns every item of every statement imported into the
// account: statement ids first, then their items.
func (r *StatementRepository) ItemsByAccount(ctx context.Context, sess session.Session, accountID uuid.UUID) ([]models.StatementItem, error) {
	var ids []uuid.UUID
	err := owned(r.db.WithContext(ctx).Model(&models.Statement{}), sess).
		Where("account_id = ?", accountID).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return r.ItemsByStatement(ctx, sess, ids...)
}

func (r *StatementRepository) GetItem(ctx context.Context, sess session.Session, id uuid.UUID) (*models.StatementItem, error) {
	var item models.StatementItem
	if err := owned(r.db.WithContext(ctx), sess).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// SetItemLink writes the denormalized reconciliation fields of an item.
func (r *StatementRepository) SetItemLink(ctx context.Context, sess session.Session, id uuid.UUID, status models.ReconciliationStatus, entryID *uuid.UUID) error {
	return updateOwned(r.db.WithContext(ctx), sess, &models.StatementItem{}, id, Fields{
		"reconciliation_status": status,
		"linked_entry_id":       entryID,
	})
}

// AccountOfItem resolves the bank account an item was imported into.
func (r *StatementRepository) AccountOfItem(ctx context.Context, sess session.Session, itemID uuid.UUID) (*models.BankAccount, error) {
	item, err := r.GetItem(ctx, sess, itemID)
	if err != nil {
		return nil, err
	}
	statement, err := r.GetByID(ctx, sess, item.StatementID)
	if err != nil {
		return nil, err
	}
	if statement.Account == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return statement.Account, nil
}
