// Package dashboard computes the summary figures shown on the landing page.
package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"cartorio-reconciliation-backend/internal/models"
	"cartorio-reconciliation-backend/internal/repository"
	"cartorio-reconciliation-backend/internal/session"
)

const (
	DefaultRecentLimit     = 5
	DefaultDivergenceLimit = 10
)

type Summary struct {
	TotalBalance decimal.Decimal                     `json:"total_balance"`
	EntryCounts  map[models.ReconciliationStatus]int `json:"entry_counts"`
	TotalIncome  decimal.Decimal                     `json:"total_income"`
	TotalExpense decimal.Decimal                     `json:"total_expense"`
	Recent       []models.LedgerEntry                `json:"recent"`
	Divergences  []Divergence                        `json:"divergences"`
}

// Divergence is a link whose amounts disagree, with enough context to show
// it without further lookups.
type Divergence struct {
	LinkID      uuid.UUID       `json:"link_id"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	BankName    string          `json:"bank_name"`
	ItemAmount  decimal.Decimal `json:"item_amount"`
	EntryAmount decimal.Decimal `json:"entry_amount"`
	Variance    decimal.Decimal `json:"variance"`
}

type Service struct {
	accounts   *repository.AccountRepository
	statements *repository.StatementRepository
	entries    *repository.LedgerEntryRepository
	links      *repository.LinkRepository

	RecentLimit     int
	DivergenceLimit int
}

func NewService(
	accounts *repository.AccountRepository,
	statements *repository.StatementRepository,
	entries *repository.LedgerEntryRepository,
	links *repository.LinkRepository,
) *Service {
	return &Service{
		accounts:        accounts,
		statements:      statements,
		entries:         entries,
		links:           links,
		RecentLimit:     DefaultRecentLimit,
		DivergenceLimit: DefaultDivergenceLimit,
	}
}

func (s *Service) Summary(ctx context.Context, sess session.Session) (*Summary, error) {
	balance, err := s.accounts.TotalActiveBalance(ctx, sess)
	if err != nil {
		return nil, err
	}
	counts, err := s.entries.CountByStatus(ctx, sess)
	if err != nil {
		return nil, err
	}
	income, expense, err := s.entries.Totals(ctx, sess)
	if err != nil {
		return nil, err
	}
	recent, err := s.entries.Recent(ctx, sess, s.RecentLimit)
	if err != nil {
		return nil, err
	}
	divergences, err := s.Divergences(ctx, sess)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		TotalBalance: balance,
		EntryCounts: map[models.ReconciliationStatus]int{
			models.StatusPending:   0,
			models.StatusMatched:   0,
			models.StatusDivergent: 0,
		},
		TotalIncome:  income,
		TotalExpense: expense,
		Recent:       recent,
		Divergences:  divergences,
	}
	for _, c := range counts {
		summary.EntryCounts[c.Status] = int(c.Count)
	}
	return summary, nil
}

// Divergences resolves the newest divergent links into display rows. Links
// whose records have vanished are skipped.
func (s *Service) Divergences(ctx context.Context, sess session.Session) ([]Divergence, error) {
	links, err := s.links.Divergent(ctx, sess, s.DivergenceLimit)
	if err != nil {
		return nil, err
	}
	out := []Divergence{}
	if len(links) == 0 {
		return out, nil
	}

	itemIDs := make([]uuid.UUID, 0, len(links))
	entryIDs := make([]uuid.UUID, 0, len(links))
	for _, l := range links {
		itemIDs = append(itemIDs, l.StatementItemID)
		entryIDs = append(entryIDs, l.LedgerEntryID)
	}
	items, err := s.statements.GetItems(ctx, sess, itemIDs)
	if err != nil {
		return nil, err
	}
	entries, err := s.entries.GetByIDs(ctx, sess, entryIDs)
	if err != nil {
		return nil, err
	}
	itemByID := make(map[uuid.UUID]models.StatementItem, len(items))
	for _, it := range items {
		itemByID[it.ID] = it
	}
	entryByID := make(map[uuid.UUID]models.LedgerEntry, len(entries))
	for _, e := range entries {
		entryByID[e.ID] = e
	}

	banks := map[uuid.UUID]string{}
	for _, l := range links {
		item, ok := itemByID[l.StatementItemID]
		if !ok {
			continue
		}
		entry, ok := entryByID[l.LedgerEntryID]
		if !ok {
			continue
		}
		bank, ok := banks[item.StatementID]
		if !ok {
			if account, err := s.statements.AccountOfItem(ctx, sess, item.ID); err == nil {
				bank = account.BankName
			}
			banks[item.StatementID] = bank
		}
		out = append(out, Divergence{
			LinkID:      l.ID,
			Date:        item.TransactionDate,
			Description: item.Description,
			BankName:    bank,
			ItemAmount:  item.Amount,
			EntryAmount: entry.Amount,
			Variance:    l.Variance,
		})
	}
	return out, nil
}
