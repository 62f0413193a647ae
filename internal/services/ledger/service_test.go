package ledger

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"cartorio-reconciliation-backend/internal/dbtest"
	"cartorio-reconciliation-backend/internal/models"
	"cartorio-reconciliation-backend/internal/repository"
	"cartorio-reconciliation-backend/internal/session"
)

func newService(t *testing.T) (*Service, *repository.StatementRepository, *repository.LedgerEntryRepository) {
	t.Helper()
	db := dbtest.Open(t)
	statements := repository.NewStatementRepository(db)
	entries := repository.NewLedgerEntryRepository(db)
	return NewService(repository.NewAccountRepository(db), statements, entries), statements, entries
}

func validEntry() EntryInput {
	return EntryInput{
		Date:        "2024-01-15",
		Description: "  Aluguel da sede  ",
		Kind:        models.Expense,
		Category:    "Aluguel",
		Amount:      "3.500,00",
		Status:      models.EntryPaid,
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.234,56", "1234.56"},
		{"R$ 1.234,56", "1234.56"},
		{"45,9", "45.9"},
		{"1234.56", "1234.56"},
		{"-200,00", "-200"},
		{"10.005", "10.01"},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.in)
		require.NoError(t, err, tt.in)
		assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "%s -> %s", tt.in, got)
	}

	for _, bad := range []string{"", "abc", "R$"} {
		_, err := ParseAmount(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 1, 29, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2024-01-29", "29/01/2024", " 29/01/2024 "} {
		got, err := ParseDate(in)
		require.NoError(t, err)
		assert.True(t, want.Equal(got))
	}
	_, err := ParseDate("2024/01/29")
	assert.Error(t, err)
}

func TestCreateEntry(t *testing.T) {
	svc, _, _ := newService(t)
	sess := session.New(uuid.New())

	entry, err := svc.CreateEntry(context.Background(), sess, validEntry())
	require.NoError(t, err)
	assert.Equal(t, "Aluguel da sede", entry.Description)
	assert.Equal(t, "3500.00", entry.Amount.StringFixed(2))
	assert.Equal(t, models.StatusPending, entry.ReconciliationStatus)
	assert.Equal(t, sess.UserID, entry.UserID)
}

func TestCreateEntry_Validation(t *testing.T) {
	svc, _, _ := newService(t)
	sess := session.New(uuid.New())
	long := strings.Repeat("x", 501)

	tests := []struct {
		name  string
		mut   func(*EntryInput)
		field string
	}{
		{"short description", func(in *EntryInput) { in.Description = " ab " }, "description"},
		{"long description", func(in *EntryInput) { in.Description = strings.Repeat("a", 201) }, "description"},
		{"zero amount", func(in *EntryInput) { in.Amount = "0,00" }, "amount"},
		{"negative amount", func(in *EntryInput) { in.Amount = "-10" }, "amount"},
		{"garbage amount", func(in *EntryInput) { in.Amount = "dez" }, "amount"},
		{"missing category", func(in *EntryInput) { in.Category = "" }, "category"},
		{"bad kind", func(in *EntryInput) { in.Kind = "transfer" }, "kind"},
		{"bad status", func(in *EntryInput) { in.Status = "late" }, "status"},
		{"bad date", func(in *EntryInput) { in.Date = "ontem" }, "date"},
		{"long notes", func(in *EntryInput) { in.Notes = &long }, "notes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validEntry()
			tt.mut(&in)
			_, err := svc.CreateEntry(context.Background(), sess, in)
			require.ErrorIs(t, err, ErrValidation)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestUpdateEntry_LinkedAmountFrozen(t *testing.T) {
	svc, _, entries := newService(t)
	ctx := context.Background()
	sess := session.New(uuid.New())

	entry, err := svc.CreateEntry(ctx, sess, validEntry())
	require.NoError(t, err)
	itemID := uuid.New()
	require.NoError(t, entries.SetEntryLink(ctx, sess, entry.ID, models.StatusMatched, &itemID))

	in := validEntry()
	in.Amount = "3.600,00"
	_, err = svc.UpdateEntry(ctx, sess, entry.ID, in)
	assert.ErrorIs(t, err, ErrLinkedEntry)

	in = validEntry()
	in.Category = "Imóvel"
	updated, err := svc.UpdateEntry(ctx, sess, entry.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Imóvel", updated.Category)
	assert.Equal(t, models.StatusMatched, updated.ReconciliationStatus)

	assert.ErrorIs(t, svc.DeleteEntry(ctx, sess, entry.ID), ErrLinkedEntry)
}

func TestDeleteEntry(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	sess := session.New(uuid.New())

	entry, err := svc.CreateEntry(ctx, sess, validEntry())
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteEntry(ctx, session.New(uuid.New()), entry.ID), gorm.ErrRecordNotFound)
	require.NoError(t, svc.DeleteEntry(ctx, sess, entry.ID))
	assert.ErrorIs(t, svc.DeleteEntry(ctx, sess, entry.ID), gorm.ErrRecordNotFound)
}

func TestAccountLifecycle(t *testing.T) {
	svc, statements, _ := newService(t)
	ctx := context.Background()
	sess := session.New(uuid.New())

	account, err := svc.CreateAccount(ctx, sess, AccountInput{
		BankName:      "Caixa Econômica",
		Branch:        "0001",
		AccountNumber: "12345-6",
		Kind:          models.AccountChecking,
		Balance:       "15.000,00",
	})
	require.NoError(t, err)
	assert.True(t, account.Active)
	assert.Equal(t, "15000.00", account.Balance.StringFixed(2))

	name, kind, balance := "Caixa Econômica Federal", models.AccountSavings, "100"
	updated, err := svc.UpdateAccount(ctx, sess, account.ID, AccountPatch{
		BankName: &name,
		Kind:     &kind,
		Balance:  &balance,
	})
	require.NoError(t, err)
	assert.True(t, updated.Active)
	assert.Equal(t, models.AccountSavings, updated.Kind)
	assert.Equal(t, "100.00", updated.Balance.StringFixed(2))

	statement := &models.Statement{AccountID: account.ID, Filename: "jan.csv", Status: models.StatementProcessed}
	require.NoError(t, statements.CreateWithItems(ctx, sess, statement, []models.StatementItem{{
		TransactionDate: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Description:     "TARIFA",
		Amount:          decimal.NewFromInt(12),
		Direction:       models.Debit,
	}}))
	assert.ErrorIs(t, svc.DeleteAccount(ctx, sess, account.ID), ErrAccountHasStatements)

	fresh, err := svc.CreateAccount(ctx, sess, AccountInput{BankName: "Itaú", Kind: models.AccountInvestment})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteAccount(ctx, sess, fresh.ID))

	accounts, err := svc.ListAccounts(ctx, sess, false)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
}

func TestCreateAccount_Validation(t *testing.T) {
	svc, _, _ := newService(t)
	sess := session.New(uuid.New())

	_, err := svc.CreateAccount(context.Background(), sess, AccountInput{BankName: "B", Kind: "credit"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "bank_name")
	assert.Contains(t, verr.Fields, "kind")

	_, err = svc.CreateAccount(context.Background(), sess, AccountInput{BankName: "Bradesco", Kind: models.AccountChecking, Branch: "12345678901"})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "branch")
}

func TestUpdateAccount_PartialKeepsOtherFields(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	sess := session.New(uuid.New())

	account, err := svc.CreateAccount(ctx, sess, AccountInput{
		BankName:      "Bradesco",
		Branch:        "1234",
		AccountNumber: "98765-0",
		Kind:          models.AccountChecking,
		Balance:       "1.500,00",
	})
	require.NoError(t, err)

	inactive := false
	updated, err := svc.UpdateAccount(ctx, sess, account.ID, AccountPatch{Active: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.Active)
	assert.Equal(t, "1500.00", updated.Balance.StringFixed(2))
	assert.Equal(t, "1234", updated.Branch)
	assert.Equal(t, "98765-0", updated.AccountNumber)
	assert.Equal(t, "Bradesco", updated.BankName)
	assert.Equal(t, models.AccountChecking, updated.Kind)

	unchanged, err := svc.UpdateAccount(ctx, sess, account.ID, AccountPatch{})
	require.NoError(t, err)
	assert.Equal(t, "1500.00", unchanged.Balance.StringFixed(2))

	_, err = svc.UpdateAccount(ctx, session.New(uuid.New()), account.ID, AccountPatch{Active: &inactive})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUpdateAccount_Validation(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	sess := session.New(uuid.New())
	account, err := svc.CreateAccount(ctx, sess, AccountInput{BankName: "Sicoob", Kind: models.AccountChecking})
	require.NoError(t, err)

	blank, kind, balance := "  ", models.AccountKind("credit"), "muito"
	var verr *ValidationError
	_, err = svc.UpdateAccount(ctx, sess, account.ID, AccountPatch{BankName: &blank, Kind: &kind})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "bank_name")
	assert.Contains(t, verr.Fields, "kind")

	_, err = svc.UpdateAccount(ctx, sess, account.ID, AccountPatch{Balance: &balance})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "balance")
}
