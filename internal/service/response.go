package service

import (
	"time"

	"github.com/BekaChkhiro/homevend-server-sub000/internal/model"
)

type InitiateTopUpResult struct {
	TransactionID string
	CheckoutURL   string
}

// TransactionView is the public projection of a ledger entry. Balance
// snapshots appear only once the transaction is terminal.
type TransactionView struct {
	TransactionID string     `json:"transaction_id"`
	Type          string     `json:"type"`
	Status        string     `json:"status"`
	Amount        int64      `json:"amount"`
	BalanceAfter  *int64     `json:"balance_after,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

func NewTransactionView(transaction *model.Transaction) TransactionView {
	view := TransactionView{
		TransactionID: transaction.ID,
		Type:          string(transaction.Type),
		Status:        string(transaction.Status),
		Amount:        transaction.Amount,
		CreatedAt:     transaction.CreatedAt,
		CompletedAt:   transaction.CompletedAt,
	}

	if transaction.IsTerminal() {
		view.BalanceAfter = transaction.BalanceAfter
	}

	return view
}

type CallbackResult struct {
	Result        string `json:"result"`
	TransactionID string `json:"transaction_id,omitempty"`
}
