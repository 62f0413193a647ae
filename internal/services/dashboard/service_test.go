package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cartorio-reconciliation-backend/internal/dbtest"
	"cartorio-reconciliation-backend/internal/models"
	"cartorio-reconciliation-backend/internal/repository"
	"cartorio-reconciliation-backend/internal/services/reconciliation"
	"cartorio-reconciliation-backend/internal/session"
)

func TestSummary(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	sess := session.New(uuid.New())

	accounts := repository.NewAccountRepository(db)
	statements := repository.NewStatementRepository(db)
	entries := repository.NewLedgerEntryRepository(db)
	links := repository.NewLinkRepository(db)
	recon := reconciliation.NewReconciliationService(db, accounts, statements, entries, links)
	svc := NewService(accounts, statements, entries, links)
	svc.RecentLimit = 2

	bb := &models.BankAccount{BankName: "Banco do Brasil", Kind: models.AccountChecking, Balance: decimal.RequireFromString("1000.50"), Active: true}
	require.NoError(t, accounts.Create(ctx, sess, bb))
	old := &models.BankAccount{BankName: "Santander", Kind: models.AccountSavings, Balance: decimal.NewFromInt(999), Active: false}
	require.NoError(t, accounts.Create(ctx, sess, old))

	items := []models.StatementItem{
		{TransactionDate: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), Description: "CONTA LUZ", Amount: decimal.NewFromInt(920), Direction: models.Debit},
		{TransactionDate: time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC), Description: "PIX RECEBIDO", Amount: decimal.NewFromInt(500), Direction: models.Credit},
	}
	require.NoError(t, statements.CreateWithItems(ctx, sess, &models.Statement{AccountID: bb.ID, Filename: "jan.ofx"}, items))

	mk := func(day int, kind models.EntryKind, amount int64) models.LedgerEntry {
		e := models.LedgerEntry{
			Date:     time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
			Kind:     kind,
			Category: "Geral",
			Amount:   decimal.NewFromInt(amount),
			Status:   models.EntryPaid,
		}
		require.NoError(t, entries.Create(ctx, sess, &e))
		return e
	}
	light := mk(10, models.Expense, 890)
	pix := mk(11, models.Income, 500)
	mk(12, models.Income, 100)

	_, err := recon.Link(ctx, sess, items[0].ID, light.ID, nil)
	require.NoError(t, err)
	_, err = recon.Link(ctx, sess, items[1].ID, pix.ID, nil)
	require.NoError(t, err)

	summary, err := svc.Summary(ctx, sess)
	require.NoError(t, err)

	assert.Equal(t, "1000.50", summary.TotalBalance.StringFixed(2))
	assert.Equal(t, 1, summary.EntryCounts[models.StatusMatched])
	assert.Equal(t, 1, summary.EntryCounts[models.StatusDivergent])
	assert.Equal(t, 1, summary.EntryCounts[models.StatusPending])
	assert.Equal(t, "600.00", summary.TotalIncome.StringFixed(2))
	assert.Equal(t, "890.00", summary.TotalExpense.StringFixed(2))

	require.Len(t, summary.Recent, 2)
	assert.Equal(t, 12, summary.Recent[0].Date.Day())

	require.Len(t, summary.Divergences, 1)
	d := summary.Divergences[0]
	assert.Equal(t, "Banco do Brasil", d.BankName)
	assert.Equal(t, "CONTA LUZ", d.Description)
	assert.Equal(t, "920.00", d.ItemAmount.StringFixed(2))
	assert.Equal(t, "890.00", d.EntryAmount.StringFixed(2))
	assert.Equal(t, "30.00", d.Variance.StringFixed(2))
}

func TestSummary_Empty(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(
		repository.NewAccountRepository(db),
		repository.NewStatementRepository(db),
		repository.NewLedgerEntryRepository(db),
		repository.NewLinkRepository(db),
	)

	summary, err := svc.Summary(context.Background(), session.New(uuid.New()))
	require.NoError(t, err)
	assert.True(t, summary.TotalBalance.IsZero())
	assert.Equal(t, 0, summary.EntryCounts[models.StatusPending])
	assert.Empty(t, summary.Recent)
	assert.NotNil(t, summary.Divergences)
	assert.Empty(t, summary.Divergences)
}
