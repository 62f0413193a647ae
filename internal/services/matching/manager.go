package matching

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"cartorio-reconciliation-backend/internal/models"
	"cartorio-reconciliation-backend/internal/repository"
	"cartorio-reconciliation-backend/internal/session"
)

// Manager keeps one workspace per user for the life of the process.
type Manager struct {
	pools      PoolSource
	linker     Linker
	workspaces sync.Map
}

func NewManager(pools PoolSource, linker Linker) *Manager {
	return &Manager{pools: pools, linker: linker}
}

// Workspace returns the user's workspace, creating an empty one on first use.
func (m *Manager) Workspace(sess session.Session) *Workspace {
	if ws, ok := m.workspaces.Load(sess.UserID); ok {
		return ws.(*Workspace)
	}
	ws, _ := m.workspaces.LoadOrStore(sess.UserID, NewWorkspace(sess, m.pools, m.linker))
	return ws.(*Workspace)
}

// Forget drops the user's workspace.
func (m *Manager) Forget(sess session.Session) {
	m.workspaces.Delete(sess.UserID)
}

// RepositoryPools reads workspace pools from the database.
type RepositoryPools struct {
	Accounts   *repository.AccountRepository
	Statements *repository.StatementRepository
	Entries    *repository.LedgerEntryRepository
}

func (p RepositoryPools) Account(ctx context.Context, sess session.Session, id uuid.UUID) (*models.BankAccount, error) {
	return p.Accounts.GetByID(ctx, sess, id)
}

func (p RepositoryPools) ItemsForAccount(ctx context.Context, sess session.Session, accountID uuid.UUID) ([]models.StatementItem, error) {
	return p.Statements.ItemsByAccount(ctx, sess, accountID)
}

func (p RepositoryPools) PendingEntries(ctx context.Context, sess session.Session) ([]models.LedgerEntry, error) {
	return p.Entries.Pending(ctx, sess)
}
