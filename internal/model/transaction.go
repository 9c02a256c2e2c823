package model

import "time"

type TransactionType string

const (
	TransactionTypeTopUp           TransactionType = "TOP_UP"
	TransactionTypeServicePurchase TransactionType = "SERVICE_PURCHASE"
	TransactionTypeRefund          TransactionType = "REFUND"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// Transaction is the ledger entry for one payment. Amounts are integers in
// minor currency units. ProviderOrderID is assigned by the provider at order
// creation and stays nil until the provider responds; AlternateIDs collects
// every other identifier the provider is known to reference the transaction
// by. ProviderMetadata captures the last raw confirmation payload for audit
// only and is never read during correlation.
type Transaction struct {
	ID               string            `gorm:"primaryKey;type:char(36);<-:create"`
	AccountID        int64             `gorm:"not null;index:idx_account_status_created,priority:1;<-:create"`
	Type             TransactionType   `gorm:"type:varchar(20);not null;<-:create"`
	Status           TransactionStatus `gorm:"type:varchar(12);not null;index:idx_account_status_created,priority:2"`
	Amount           int64             `gorm:"not null;<-:create"`
	ProviderOrderID  *string           `gorm:"type:varchar(64);uniqueIndex"`
	AlternateIDs     StringList        `gorm:"type:json"`
	ProviderMetadata Metadata          `gorm:"type:json"`
	BalanceBefore    *int64
	BalanceAfter     *int64
	RefundedAmount   int64
	WasCompleted     bool
	LastVerifiedAt   *time.Time
	CreatedAt        time.Time `gorm:"index:idx_account_status_created,priority:3"`
	UpdatedAt        time.Time
	CompletedAt      *time.Time
}

func (t *Transaction) IsTerminal() bool {
	return t.Status == TransactionStatusCompleted || t.Status == TransactionStatusFailed
}

// HasAlternateID reports whether id is already recorded as a known
// identifier for this transaction.
func (t *Transaction) HasAlternateID(id string) bool {
	for _, existing := range t.AlternateIDs {
		if existing == id {
			return true
		}
	}
	return false
}
