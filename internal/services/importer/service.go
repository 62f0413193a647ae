package importer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"cartorio-reconciliation-backend/internal/models"
	"cartorio-reconciliation-backend/internal/repository"
	"cartorio-reconciliation-backend/internal/session"
)

var (
	ErrAccountInactive = errors.New("bank account is inactive")
	ErrInvalidDate     = errors.New("invalid transaction date")
)

const dateLayout = "02/01/2006"

type Service struct {
	accounts   *repository.AccountRepository
	statements *repository.StatementRepository
	opts       Options
}

func NewService(accounts *repository.AccountRepository, statements *repository.StatementRepository, opts Options) *Service {
	return &Service{accounts: accounts, statements: statements, opts: opts}
}

func (s *Service) Options() Options {
	return s.opts
}

// Preview is what the user confirms before an import is persisted.
type Preview struct {
	Filename     string          `json:"filename"`
	Result       *Result         `json:"result"`
	TotalCredits decimal.Decimal `json:"total_credits"`
	TotalDebits  decimal.Decimal `json:"total_debits"`
}

func (s *Service) Preview(filename string, content []byte) (*Preview, error) {
	result, err := Parse(filename, content, s.opts)
	if err != nil {
		return nil, err
	}
	credits, debits := Totals(result.Transactions)
	return &Preview{
		Filename:     filename,
		Result:       result,
		TotalCredits: credits,
		TotalDebits:  debits,
	}, nil
}

// Import parses content and stores the statement with all its items in one
// transaction. The declared period spans the earliest and latest dates.
func (s *Service) Import(ctx context.Context, sess session.Session, accountID uuid.UUID, filename string, content []byte) (*models.Statement, error) {
	account, err := s.accounts.GetByID(ctx, sess, accountID)
	if err != nil {
		return nil, fmt.Errorf("loading account: %w", err)
	}
	if !account.Active {
		return nil, fmt.Errorf("account %s: %w", account.ID, ErrAccountInactive)
	}

	result, err := Parse(filename, content, s.opts)
	if err != nil {
		return nil, err
	}
	if result.Demo {
		log.Printf("Import %s: no transactions parsed, using demonstration data", filename)
	}

	items, start, end, err := toItems(result.Transactions)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	statement := &models.Statement{
		AccountID:   account.ID,
		Filename:    filename,
		PeriodStart: start,
		PeriodEnd:   end,
		Status:      models.StatementProcessed,
	}
	if err := s.statements.CreateWithItems(ctx, sess, statement, items); err != nil {
		return nil, fmt.Errorf("saving statement: %w", err)
	}
	statement.Account = account

	log.Printf("Imported %s into account %s: %d items", filename, account.ID, len(items))
	return statement, nil
}

func toItems(txs []Transaction) ([]models.StatementItem, time.Time, time.Time, error) {
	var start, end time.Time
	items := make([]models.StatementItem, 0, len(txs))
	for i, tx := range txs {
		date, err := time.Parse(dateLayout, tx.Date)
		if err != nil {
			return nil, start, end, fmt.Errorf("transaction %d (%q): %w", i+1, tx.Date, ErrInvalidDate)
		}
		if start.IsZero() || date.Before(start) {
			start = date
		}
		if end.IsZero() || date.After(end) {
			end = date
		}
		items = append(items, models.StatementItem{
			TransactionDate: date,
			Description:     tx.Description,
			Amount:          tx.Amount,
			Direction:       tx.Direction,
		})
	}
	return items, start, end, nil
}
