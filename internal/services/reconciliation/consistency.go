package reconciliation

import (
	"context"

	"github.com/google/uuid"

	"cartorio-reconciliation-backend/internal/models"
	"cartorio-reconciliation-backend/internal/session"
)

const (
	RecordStatementItem = "statement_item"
	RecordLedgerEntry   = "ledger_entry"
)

// Drift is a record whose stored reconciliation fields disagree with its
// link.
type Drift struct {
	Record        string                      `json:"record"`
	ID            uuid.UUID                   `json:"id"`
	Stored        models.ReconciliationStatus `json:"stored"`
	Derived       models.ReconciliationStatus `json:"derived"`
	StoredLinked  *uuid.UUID                  `json:"stored_linked"`
	DerivedLinked *uuid.UUID                  `json:"derived_linked"`
}

// CheckConsistency compares every item and entry with the status derived
// from the links that reference it.
func (s *ReconciliationService) CheckConsistency(ctx context.Context, sess session.Session) ([]Drift, error) {
	links, err := s.links.List(ctx, sess)
	if err != nil {
		return nil, err
	}
	items, err := s.statements.Items(ctx, sess)
	if err != nil {
		return nil, err
	}
	entries, err := s.entries.List(ctx, sess)
	if err != nil {
		return nil, err
	}

	byItem := make(map[uuid.UUID]*models.ReconciliationLink, len(links))
	byEntry := make(map[uuid.UUID]*models.ReconciliationLink, len(links))
	for i := range links {
		byItem[links[i].StatementItemID] = &links[i]
		byEntry[links[i].LedgerEntryID] = &links[i]
	}

	drifts := []Drift{}
	for _, item := range items {
		link := byItem[item.ID]
		var want *uuid.UUID
		if link != nil {
			want = &link.LedgerEntryID
		}
		if d := check(RecordStatementItem, item.ID, item.ReconciliationStatus, item.LinkedEntryID, link, want); d != nil {
			drifts = append(drifts, *d)
		}
	}
	for _, entry := range entries {
		link := byEntry[entry.ID]
		var want *uuid.UUID
		if link != nil {
			want = &link.StatementItemID
		}
		if d := check(RecordLedgerEntry, entry.ID, entry.ReconciliationStatus, entry.LinkedItemID, link, want); d != nil {
			drifts = append(drifts, *d)
		}
	}
	return drifts, nil
}

func check(record string, id uuid.UUID, stored models.ReconciliationStatus, storedLinked *uuid.UUID, link *models.ReconciliationLink, wantLinked *uuid.UUID) *Drift {
	derived := DerivedStatus(link)
	if stored == derived && sameID(storedLinked, wantLinked) {
		return nil
	}
	return &Drift{
		Record:        record,
		ID:            id,
		Stored:        stored,
		Derived:       derived,
		StoredLinked:  storedLinked,
		DerivedLinked: wantLinked,
	}
}

func sameID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
