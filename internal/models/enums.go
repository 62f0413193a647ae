package models

type AccountKind string

const (
	AccountChecking   AccountKind = "checking"
	AccountSavings    AccountKind = "savings"
	AccountInvestment AccountKind = "investment"
)

func (k AccountKind) Valid() bool {
	switch k {
	case AccountChecking, AccountSavings, AccountInvestment:
		return true
	}
	return false
}

// Direction of a statement line as seen by the bank.
type Direction string

const (
	Credit Direction = "credit"
	Debit  Direction = "debit"
)

type EntryKind string

const (
	Income  EntryKind = "income"
	Expense EntryKind = "expense"
)

func (k EntryKind) Valid() bool {
	return k == Income || k == Expense
}

// EntryStatus is the payment workflow of a ledger entry. It is independent of
// reconciliation.
type EntryStatus string

const (
	EntryPaid      EntryStatus = "paid"
	EntryPending   EntryStatus = "pending"
	EntryScheduled EntryStatus = "scheduled"
	EntryCancelled EntryStatus = "cancelled"
)

func (s EntryStatus) Valid() bool {
	switch s {
	case EntryPaid, EntryPending, EntryScheduled, EntryCancelled:
		return true
	}
	return false
}

type StatementStatus string

const (
	StatementProcessed  StatementStatus = "processed"
	StatementReconciled StatementStatus = "reconciled"
	StatementError      StatementStatus = "error"
)

// ReconciliationStatus is shared by statement items and ledger entries.
type ReconciliationStatus string

const (
	StatusPending   ReconciliationStatus = "pending"
	StatusMatched   ReconciliationStatus = "matched"
	StatusDivergent ReconciliationStatus = "divergent"
)
