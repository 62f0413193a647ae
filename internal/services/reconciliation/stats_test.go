package reconciliation

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"cartorio-reconciliation-backend/internal/models"
	"cartorio-reconciliation-backend/internal/session"
)

func itemsWith(matched, pending, divergent int) []models.StatementItem {
	var items []models.StatementItem
	add := func(n int, s models.ReconciliationStatus) {
		for i := 0; i < n; i++ {
			items = append(items, models.StatementItem{ReconciliationStatus: s})
		}
	}
	add(matched, models.StatusMatched)
	add(pending, models.StatusPending)
	add(divergent, models.StatusDivergent)
	return items
}

func TestComputeStats(t *testing.T) {
	stats := ComputeStats(itemsWith(7, 2, 1))
	assert.Equal(t, 7, stats.Matched)
	assert.Equal(t, 2, stats.Pending)
	assert.Equal(t, 1, stats.Divergent)
	assert.Equal(t, 10, stats.TotalItems)
	assert.Equal(t, 70, stats.Rate)
}

func TestComputeStats_Empty(t *testing.T) {
	stats := ComputeStats(nil)
	assert.Zero(t, stats.TotalItems)
	assert.Zero(t, stats.Rate)
}

func TestComputeStats_Rounding(t *testing.T) {
	assert.Equal(t, 67, ComputeStats(itemsWith(2, 1, 0)).Rate)
	assert.Equal(t, 33, ComputeStats(itemsWith(1, 2, 0)).Rate)
	assert.Equal(t, 50, ComputeStats(itemsWith(1, 1, 0)).Rate)
}

func TestAccountStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.item(t, "100", models.Credit)
	f.item(t, "50", models.Debit)
	entry := f.entry(t, "100", models.Income)

	_, err := f.svc.Link(ctx, f.sess, item.ID, entry.ID, nil)
	require.NoError(t, err)

	stats, err := f.svc.AccountStats(ctx, f.sess, f.account.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalItems)
	assert.Equal(t, 1, stats.Matched)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 50, stats.Rate)
	assert.Equal(t, 1, stats.TotalEntries)
}

func TestAccountStats_UnknownAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AccountStats(ctx, f.sess, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = f.svc.AccountStats(ctx, session.New(uuid.New()), f.account.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
