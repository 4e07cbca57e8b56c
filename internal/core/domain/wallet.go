package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet holds a craftsman's platform money. Balance is spendable;
// FrozenMoney is escrowed (counted as the craftsman's money but not
// spendable). Neither is ever negative. Wallets are created lazily on the
// first money event.
type Wallet struct {
	WalletID    string          `json:"walletID"`
	CraftsmanID string          `json:"craftsmanID"`
	Balance     decimal.Decimal `json:"balance"`
	FrozenMoney decimal.Decimal `json:"frozenMoney"`
	AuditFields
}

// WalletTxnType marks the direction of a wallet transaction.
type WalletTxnType string

const (
	WalletTxnIncome  WalletTxnType = "INCOME"
	WalletTxnExpense WalletTxnType = "EXPENSE"
)

// WalletTransaction is one append-only ledger row. Rows are never updated or
// deleted; together they reconstruct the wallet's history.
type WalletTransaction struct {
	TransactionID string          `json:"transactionID"`
	WalletID      string          `json:"walletID"`
	CraftsmanID   string          `json:"craftsmanID"`
	Amount        decimal.Decimal `json:"amount"` // always positive; direction is TxnType
	TxnType       WalletTxnType   `json:"txnType"`
	Reason        string          `json:"reason"`
	OrderID       *string         `json:"orderID,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// Deposit amounts frozen from the executing craftsman's balance when an order
// completes, as a behavioural bond.
var (
	CraftsmanDeposit  = decimal.NewFromInt(600)
	GangmasterDeposit = decimal.NewFromInt(1000)
)
