// Package ledger manages bank accounts and the internal ledger entries that
// statement items are reconciled against.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"cartorio-reconciliation-backend/internal/models"
	"cartorio-reconciliation-backend/internal/repository"
	"cartorio-reconciliation-backend/internal/session"
)

var (
	ErrValidation           = errors.New("validation failed")
	ErrLinkedEntry          = errors.New("ledger entry is reconciled; unlink it first")
	ErrAccountHasStatements = errors.New("account has imported statements; deactivate it instead")
)

// ValidationError maps each offending field (by its JSON name) to the rule
// it broke.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func fieldError(field, rule string) error {
	return &ValidationError{Fields: map[string]string{field: rule}}
}

type AccountInput struct {
	BankName      string             `json:"bank_name" validate:"required,min=2,max=100"`
	Branch        string             `json:"branch" validate:"max=10"`
	AccountNumber string             `json:"account_number" validate:"max=20"`
	Kind          models.AccountKind `json:"kind" validate:"required,oneof=checking savings investment"`
	Balance       string             `json:"balance"`
	Active        *bool              `json:"active"`
}

// AccountPatch is a partial account update; nil fields are left untouched.
type AccountPatch struct {
	BankName      *string             `json:"bank_name" validate:"omitnil,min=2,max=100"`
	Branch        *string             `json:"branch" validate:"omitnil,max=10"`
	AccountNumber *string             `json:"account_number" validate:"omitnil,max=20"`
	Kind          *models.AccountKind `json:"kind" validate:"omitnil,oneof=checking savings investment"`
	Balance       *string             `json:"balance"`
	Active        *bool               `json:"active"`
}

type EntryInput struct {
	// Date is YYYY-MM-DD or DD/MM/YYYY.
	Date        string             `json:"date" validate:"required"`
	Description string             `json:"description" validate:"required,min=3,max=200"`
	Kind        models.EntryKind   `json:"kind" validate:"required,oneof=income expense"`
	Category    string             `json:"category" validate:"required,max=50"`
	Amount      string             `json:"amount" validate:"required"`
	Status      models.EntryStatus `json:"status" validate:"required,oneof=paid pending scheduled cancelled"`
	Responsible *string            `json:"responsible" validate:"omitempty,max=100"`
	Notes       *string            `json:"notes" validate:"omitempty,max=500"`
}

type Service struct {
	accounts   *repository.AccountRepository
	statements *repository.StatementRepository
	entries    *repository.LedgerEntryRepository
	validate   *validator.Validate
}

func NewService(accounts *repository.AccountRepository, statements *repository.StatementRepository, entries *repository.LedgerEntryRepository) *Service {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Service{accounts: accounts, statements: statements, entries: entries, validate: v}
}

func (s *Service) check(in interface{}) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		out.Fields[fe.Field()] = rule
	}
	return out
}

func (s *Service) ListAccounts(ctx context.Context, sess session.Session, activeOnly bool) ([]models.BankAccount, error) {
	return s.accounts.List(ctx, sess, activeOnly)
}

func (s *Service) CreateAccount(ctx context.Context, sess session.Session, in AccountInput) (*models.BankAccount, error) {
	account, err := s.accountFromInput(in)
	if err != nil {
		return nil, err
	}
	if in.Active == nil {
		account.Active = true
	}
	if err := s.accounts.Create(ctx, sess, account); err != nil {
		return nil, err
	}
	log.Printf("Created account %s (%s)", account.ID, account.BankName)
	return account, nil
}

// UpdateAccount writes only the fields present in the patch.
func (s *Service) UpdateAccount(ctx context.Context, sess session.Session, id uuid.UUID, in AccountPatch) (*models.BankAccount, error) {
	in.BankName = trimmed(in.BankName)
	in.Branch = trimmed(in.Branch)
	in.AccountNumber = trimmed(in.AccountNumber)
	if err := s.check(in); err != nil {
		return nil, err
	}

	fields := repository.Fields{}
	if in.BankName != nil {
		fields["bank_name"] = *in.BankName
	}
	if in.Branch != nil {
		fields["branch"] = *in.Branch
	}
	if in.AccountNumber != nil {
		fields["account_number"] = *in.AccountNumber
	}
	if in.Kind != nil {
		fields["kind"] = *in.Kind
	}
	if in.Balance != nil {
		balance, err := ParseAmount(*in.Balance)
		if err != nil {
			return nil, fieldError("balance", "amount")
		}
		fields["balance"] = balance
	}
	if in.Active != nil {
		fields["active"] = *in.Active
	}

	if len(fields) == 0 {
		return s.accounts.GetByID(ctx, sess, id)
	}
	return s.accounts.Update(ctx, sess, id, fields)
}

// DeleteAccount refuses accounts with imported statements; those can only
// be deactivated.
func (s *Service) DeleteAccount(ctx context.Context, sess session.Session, id uuid.UUID) error {
	if _, err := s.accounts.GetByID(ctx, sess, id); err != nil {
		return err
	}
	n, err := s.statements.CountByAccount(ctx, sess, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrAccountHasStatements
	}
	return s.accounts.Delete(ctx, sess, id)
}

func (s *Service) accountFromInput(in AccountInput) (*models.BankAccount, error) {
	in.BankName = strings.TrimSpace(in.BankName)
	in.Branch = strings.TrimSpace(in.Branch)
	in.AccountNumber = strings.TrimSpace(in.AccountNumber)
	if err := s.check(in); err != nil {
		return nil, err
	}
	account := &models.BankAccount{
		BankName:      in.BankName,
		Branch:        in.Branch,
		AccountNumber: in.AccountNumber,
		Kind:          in.Kind,
	}
	if strings.TrimSpace(in.Balance) != "" {
		balance, err := ParseAmount(in.Balance)
		if err != nil {
			return nil, fieldError("balance", "amount")
		}
		account.Balance = balance
	}
	if in.Active != nil {
		account.Active = *in.Active
	}
	return account, nil
}

func (s *Service) ListEntries(ctx context.Context, sess session.Session, filter repository.EntryFilter) ([]models.LedgerEntry, error) {
	return s.entries.Search(ctx, sess, filter)
}

func (s *Service) CreateEntry(ctx context.Context, sess session.Session, in EntryInput) (*models.LedgerEntry, error) {
	entry, err := s.entryFromInput(in)
	if err != nil {
		return nil, err
	}
	if err := s.entries.Create(ctx, sess, entry); err != nil {
		return nil, err
	}
	log.Printf("Created ledger entry %s: %s %s", entry.ID, entry.Kind, entry.Amount.StringFixed(2))
	return entry, nil
}

// UpdateEntry replaces the editable fields. The amount of a reconciled entry
// is frozen because the link variance was computed from it.
func (s *Service) UpdateEntry(ctx context.Context, sess session.Session, id uuid.UUID, in EntryInput) (*models.LedgerEntry, error) {
	next, err := s.entryFromInput(in)
	if err != nil {
		return nil, err
	}
	current, err := s.entries.GetByID(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	if current.LinkedItemID != nil && !current.Amount.Equal(next.Amount) {
		return nil, ErrLinkedEntry
	}
	return s.entries.Update(ctx, sess, id, repository.Fields{
		"date":        next.Date,
		"description": next.Description,
		"kind":        next.Kind,
		"category":    next.Category,
		"amount":      next.Amount,
		"status":      next.Status,
		"responsible": next.Responsible,
		"notes":       next.Notes,
	})
}

func (s *Service) DeleteEntry(ctx context.Context, sess session.Session, id uuid.UUID) error {
	current, err := s.entries.GetByID(ctx, sess, id)
	if err != nil {
		return err
	}
	if current.LinkedItemID != nil {
		return ErrLinkedEntry
	}
	return s.entries.Delete(ctx, sess, id)
}

func (s *Service) entryFromInput(in EntryInput) (*models.LedgerEntry, error) {
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	in.Responsible = trimmedOrNil(in.Responsible)
	in.Notes = trimmedOrNil(in.Notes)
	if err := s.check(in); err != nil {
		return nil, err
	}

	date, err := ParseDate(in.Date)
	if err != nil {
		return nil, fieldError("date", "date")
	}
	amount, err := ParseAmount(in.Amount)
	if err != nil {
		return nil, fieldError("amount", "amount")
	}
	if !amount.IsPositive() {
		return nil, fieldError("amount", "gt=0")
	}

	return &models.LedgerEntry{
		Date:        date,
		Description: in.Description,
		Kind:        in.Kind,
		Category:    in.Category,
		Amount:      amount,
		Status:      in.Status,
		Responsible: in.Responsible,
		Notes:       in.Notes,
	}, nil
}

// ParseDate accepts ISO dates and the DD/MM/YYYY form used on statements.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{"2006-01-02", "02/01/2006"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", raw)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
