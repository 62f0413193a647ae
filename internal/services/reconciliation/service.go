package reconciliation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"cartorio-reconciliation-backend/internal/models"
	"cartorio-reconciliation-backend/internal/repository"
	"cartorio-reconciliation-backend/internal/session"
)

var (
	ErrAlreadyLinked = errors.New("statement item or ledger entry is already reconciled")
	ErrLinkNotFound  = errors.New("reconciliation link not found")
)

type ReconciliationService struct {
	db         *gorm.DB
	accounts   *repository.AccountRepository
	statements *repository.StatementRepository
	entries    *repository.LedgerEntryRepository
	links      *repository.LinkRepository
}

func NewReconciliationService(
	db *gorm.DB,
	accounts *repository.AccountRepository,
	statements *repository.StatementRepository,
	entries *repository.LedgerEntryRepository,
	links *repository.LinkRepository,
) *ReconciliationService {
	return &ReconciliationService{
		db:         db,
		accounts:   accounts,
		statements: statements,
		entries:    entries,
		links:      links,
	}
}

// Variance is the statement magnitude minus the ledger amount. The item's
// direction plays no part.
func Variance(itemAmount, entryAmount decimal.Decimal) decimal.Decimal {
	return itemAmount.Abs().Sub(entryAmount)
}

func StatusFor(variance decimal.Decimal) models.ReconciliationStatus {
	if variance.IsZero() {
		return models.StatusMatched
	}
	return models.StatusDivergent
}

// DerivedStatus is the status a record must carry given the link that
// references it (nil for none).
func DerivedStatus(link *models.ReconciliationLink) models.ReconciliationStatus {
	if link == nil {
		return models.StatusPending
	}
	return link.Status()
}

type LinkResult struct {
	Link  models.ReconciliationLink `json:"link"`
	Item  models.StatementItem      `json:"statement_item"`
	Entry models.LedgerEntry        `json:"ledger_entry"`
}

// Link reconciles one statement item with one ledger entry. The link row,
// both denormalized statuses and the audit row are written in a single
// transaction.
func (s *ReconciliationService) Link(ctx context.Context, sess session.Session, itemID, entryID uuid.UUID, note *string) (*LinkResult, error) {
	var result LinkResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		statements := s.statements.WithTx(tx)
		entries := s.entries.WithTx(tx)
		links := s.links.WithTx(tx)

		item, err := statements.GetItem(ctx, sess, itemID)
		if err != nil {
			return fmt.Errorf("loading statement item %s: %w", itemID, err)
		}
		entry, err := entries.GetByID(ctx, sess, entryID)
		if err != nil {
			return fmt.Errorf("loading ledger entry %s: %w", entryID, err)
		}

		if item.LinkedEntryID != nil || entry.LinkedItemID != nil {
			return ErrAlreadyLinked
		}
		exists, err := links.ExistsFor(ctx, item.ID, entry.ID)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyLinked
		}

		variance := Variance(item.Amount, entry.Amount)
		status := StatusFor(variance)

		link := models.ReconciliationLink{
			StatementItemID: item.ID,
			LedgerEntryID:   entry.ID,
			Variance:        variance,
			Note:            note,
			LinkedAt:        time.Now(),
		}
		if err := links.Create(ctx, sess, &link); err != nil {
			return linkError(err)
		}
		if err := statements.SetItemLink(ctx, sess, item.ID, status, &entry.ID); err != nil {
			return fmt.Errorf("updating statement item: %w", err)
		}
		if err := entries.SetEntryLink(ctx, sess, entry.ID, status, &item.ID); err != nil {
			return fmt.Errorf("updating ledger entry: %w", err)
		}
		if err := links.AppendAudit(ctx, sess, audit(models.AuditLinked, item, entry, variance, status)); err != nil {
			return fmt.Errorf("writing audit log: %w", err)
		}

		item.ReconciliationStatus = status
		item.LinkedEntryID = &link.LedgerEntryID
		entry.ReconciliationStatus = status
		entry.LinkedItemID = &link.StatementItemID
		result = LinkResult{Link: link, Item: *item, Entry: *entry}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Linked item %s to entry %s: variance=%s status=%s", itemID, entryID, result.Link.Variance, result.Link.Status())
	return &result, nil
}

// Unlink removes the link between the pair and resets both records to
// pending, all in one transaction.
func (s *ReconciliationService) Unlink(ctx context.Context, sess session.Session, itemID, entryID uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		statements := s.statements.WithTx(tx)
		entries := s.entries.WithTx(tx)
		links := s.links.WithTx(tx)

		link, err := links.FindByPair(ctx, sess, itemID, entryID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLinkNotFound
		}
		if err != nil {
			return err
		}
		item, err := statements.GetItem(ctx, sess, itemID)
		if err != nil {
			return fmt.Errorf("loading statement item %s: %w", itemID, err)
		}
		entry, err := entries.GetByID(ctx, sess, entryID)
		if err != nil {
			return fmt.Errorf("loading ledger entry %s: %w", entryID, err)
		}

		if err := links.DeleteByPair(ctx, sess, itemID, entryID); err != nil {
			return fmt.Errorf("deleting link: %w", err)
		}
		if err := statements.SetItemLink(ctx, sess, itemID, models.StatusPending, nil); err != nil {
			return fmt.Errorf("updating statement item: %w", err)
		}
		if err := entries.SetEntryLink(ctx, sess, entryID, models.StatusPending, nil); err != nil {
			return fmt.Errorf("updating ledger entry: %w", err)
		}
		return links.AppendAudit(ctx, sess, audit(models.AuditUnlinked, item, entry, link.Variance, models.StatusPending))
	})
	if err != nil {
		return err
	}

	log.Printf("Unlinked item %s from entry %s", itemID, entryID)
	return nil
}

func (s *ReconciliationService) ListLinks(ctx context.Context, sess session.Session) ([]models.ReconciliationLink, error) {
	return s.links.List(ctx, sess)
}

func (s *ReconciliationService) AuditTrail(ctx context.Context, sess session.Session, itemID uuid.UUID) ([]models.MatchAuditLog, error) {
	return s.links.AuditTrail(ctx, sess, itemID)
}

// linkError reports a unique-index violation from a concurrent link of the
// same record as ErrAlreadyLinked.
func linkError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyLinked
	}
	return fmt.Errorf("creating link: %w", err)
}

func audit(action string, item *models.StatementItem, entry *models.LedgerEntry, variance decimal.Decimal, status models.ReconciliationStatus) *models.MatchAuditLog {
	details := map[string]interface{}{
		"item_amount":    item.Amount.String(),
		"item_direction": item.Direction,
		"entry_amount":   entry.Amount.String(),
		"entry_kind":     entry.Kind,
		"variance":       variance.String(),
		"status":         status,
	}
	detailsJSON, _ := json.Marshal(details)
	return &models.MatchAuditLog{
		StatementItemID: item.ID,
		LedgerEntryID:   entry.ID,
		Action:          action,
		Details:         datatypes.JSON(detailsJSON),
	}
}
