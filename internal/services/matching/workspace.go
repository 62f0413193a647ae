// Package matching holds the per-user selection state used to pair a bank
// statement item with a ledger entry before linking them.
package matching

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cartorio-reconciliation-backend/internal/models"
	"cartorio-reconciliation-backend/internal/services/reconciliation"
	"cartorio-reconciliation-backend/internal/session"
)

var (
	ErrIncompleteSelection = errors.New("select one statement item and one ledger entry")
	ErrAccountInactive     = errors.New("bank account is inactive")
)

// PoolSource loads the two pools a workspace draws selections from.
type PoolSource interface {
	Account(ctx context.Context, sess session.Session, id uuid.UUID) (*models.BankAccount, error)
	ItemsForAccount(ctx context.Context, sess session.Session, accountID uuid.UUID) ([]models.StatementItem, error)
	PendingEntries(ctx context.Context, sess session.Session) ([]models.LedgerEntry, error)
}

type Linker interface {
	Link(ctx context.Context, sess session.Session, itemID, entryID uuid.UUID, note *string) (*reconciliation.LinkResult, error)
}

// Workspace is safe for concurrent use; every operation holds its lock for
// the whole call.
type Workspace struct {
	mu     sync.Mutex
	sess   session.Session
	pools  PoolSource
	linker Linker

	accountID     *uuid.UUID
	selectedItem  *uuid.UUID
	selectedEntry *uuid.UUID

	items   []models.StatementItem
	entries []models.LedgerEntry
}

func NewWorkspace(sess session.Session, pools PoolSource, linker Linker) *Workspace {
	return &Workspace{sess: sess, pools: pools, linker: linker}
}

type View struct {
	AccountID       *uuid.UUID             `json:"account_id"`
	SelectedItemID  *uuid.UUID             `json:"selected_item_id"`
	SelectedEntryID *uuid.UUID             `json:"selected_entry_id"`
	Items           []models.StatementItem `json:"statement_items"`
	Entries         []models.LedgerEntry   `json:"ledger_entries"`
	Stats           reconciliation.Stats   `json:"stats"`
	CanConfirm      bool                   `json:"can_confirm"`
}

// ChangeAccount switches the item pool to another active account. Both
// selections are cleared even when the switch fails.
func (w *Workspace) ChangeAccount(ctx context.Context, accountID uuid.UUID) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.selectedItem = nil
	w.selectedEntry = nil

	account, err := w.pools.Account(ctx, w.sess, accountID)
	if err != nil {
		return err
	}
	if !account.Active {
		return ErrAccountInactive
	}
	w.accountID = &accountID
	return w.reload(ctx)
}

// Refresh reloads both pools and drops selections that are no longer
// selectable.
func (w *Workspace) Refresh(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reload(ctx)
}

// SelectStatementItem toggles the item selection and reports whether the
// state changed. Ids outside the pending pool are ignored.
func (w *Workspace) SelectStatementItem(id uuid.UUID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.selectedItem != nil && *w.selectedItem == id {
		w.selectedItem = nil
		return true
	}
	if !w.itemSelectable(id) {
		return false
	}
	w.selectedItem = &id
	return true
}

// SelectLedgerEntry mirrors SelectStatementItem for the ledger pool, which is
// not scoped to the account.
func (w *Workspace) SelectLedgerEntry(id uuid.UUID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.selectedEntry != nil && *w.selectedEntry == id {
		w.selectedEntry = nil
		return true
	}
	if !w.entrySelectable(id) {
		return false
	}
	w.selectedEntry = &id
	return true
}

// ConfirmLink links the selected pair. Selections survive a failed link so
// the call can be retried.
func (w *Workspace) ConfirmLink(ctx context.Context, note *string) (*reconciliation.LinkResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.selectedItem == nil || w.selectedEntry == nil {
		return nil, ErrIncompleteSelection
	}
	result, err := w.linker.Link(ctx, w.sess, *w.selectedItem, *w.selectedEntry, note)
	if err != nil {
		return nil, err
	}
	w.selectedItem = nil
	w.selectedEntry = nil
	if err := w.reload(ctx); err != nil {
		return result, err
	}
	return result, nil
}

// View returns a copy of the current state with only selectable records in
// the pools.
func (w *Workspace) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()

	v := View{
		AccountID:       copyID(w.accountID),
		SelectedItemID:  copyID(w.selectedItem),
		SelectedEntryID: copyID(w.selectedEntry),
		Items:           []models.StatementItem{},
		Entries:         []models.LedgerEntry{},
		Stats:           reconciliation.ComputeStats(w.items),
		CanConfirm:      w.selectedItem != nil && w.selectedEntry != nil,
	}
	for _, item := range w.items {
		if item.ReconciliationStatus == models.StatusPending {
			v.Items = append(v.Items, item)
		}
	}
	for _, entry := range w.entries {
		if entry.ReconciliationStatus == models.StatusPending {
			v.Entries = append(v.Entries, entry)
		}
	}
	return v
}

func (w *Workspace) reload(ctx context.Context) error {
	// An account deactivated since it was chosen leaves the workspace.
	if w.accountID != nil {
		account, err := w.pools.Account(ctx, w.sess, *w.accountID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			w.accountID = nil
		case err != nil:
			return err
		case !account.Active:
			w.accountID = nil
		}
	}

	var items []models.StatementItem
	if w.accountID != nil {
		var err error
		items, err = w.pools.ItemsForAccount(ctx, w.sess, *w.accountID)
		if err != nil {
			return err
		}
	}
	entries, err := w.pools.PendingEntries(ctx, w.sess)
	if err != nil {
		return err
	}
	w.items = items
	w.entries = entries

	if w.selectedItem != nil && !w.itemSelectable(*w.selectedItem) {
		w.selectedItem = nil
	}
	if w.selectedEntry != nil && !w.entrySelectable(*w.selectedEntry) {
		w.selectedEntry = nil
	}
	return nil
}

func (w *Workspace) itemSelectable(id uuid.UUID) bool {
	for _, item := range w.items {
		if item.ID == id {
			return item.ReconciliationStatus == models.StatusPending
		}
	}
	return false
}

func (w *Workspace) entrySelectable(id uuid.UUID) bool {
	for _, entry := range w.entries {
		if entry.ID == id {
			return entry.ReconciliationStatus == models.StatusPending
		}
	}
	return false
}

func copyID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}
