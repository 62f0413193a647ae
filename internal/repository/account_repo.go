package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"cartorio-reconciliation-backend/internal/models"
	"cartorio-reconciliation-backend/internal/session"
)

type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// List returns the user's accounts sorted by bank name.
func (r *AccountRepository) List(ctx context.Context, sess session.Session, activeOnly bool) ([]models.BankAccount, error) {
	var accounts []models.BankAccount
	q := owned(r.db.WithContext(ctx), sess)
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	err := q.Order("bank_name ASC").Find(&accounts).Error
	return accounts, err
}

func (r *AccountRepository) GetByID(ctx context.Context, sess session.Session, id uuid.UUID) (*models.BankAccount, error) {
	var account models.BankAccount
	if err := owned(r.db.WithContext(ctx), sess).First(&account, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// Create assigns id, owner and timestamps before inserting.
func (r *AccountRepository) Create(ctx context.Context, sess session.Session, account *models.BankAccount) error {
	account.ID = uuid.New()
	account.UserID = sess.UserID
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *AccountRepository) Update(ctx context.Context, sess session.Session, id uuid.UUID, fields Fields) (*models.BankAccount, error) {
	if err := updateOwned(r.db.WithContext(ctx), sess, &models.BankAccount{}, id, fields); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, sess, id)
}

func (r *AccountRepository) Delete(ctx context.Context, sess session.Session, id uuid.UUID) error {
	return deleteOwned(r.db.WithContext(ctx), sess, &models.BankAccount{}, id)
}

// TotalActiveBalance sums the balances of active accounts.
func (r *AccountRepository) TotalActiveBalance(ctx context.Context, sess session.Session) (decimal.Decimal, error) {
	accounts, err := r.List(ctx, sess, true)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, a := range accounts {
		total = total.Add(a.Balance)
	}
	return total, nil
}
