package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet is the database representation of a craftsman wallet row.
type Wallet struct {
	WalletID    string
	CraftsmanID string
	Balance     decimal.Decimal
	FrozenMoney decimal.Decimal
	AuditFields
}

// WalletTxnType mirrors domain.WalletTxnType for persistence.
type WalletTxnType string

// WalletTransaction is one append-only wallet ledger row.
type WalletTransaction struct {
	TransactionID string
	WalletID      string
	CraftsmanID   string
	Amount        decimal.Decimal
	TxnType       WalletTxnType
	Reason        string
	OrderID       *string
	CreatedAt     time.Time
}
