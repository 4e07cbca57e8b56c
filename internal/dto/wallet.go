package dto

import (
	"time"

	"github.com/renohub/reno_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// WalletResponse is the API representation of a craftsman wallet.
type WalletResponse struct {
	CraftsmanID string          `json:"craftsmanID"`
	Balance     decimal.Decimal `json:"balance"`
	FrozenMoney decimal.Decimal `json:"frozenMoney"`
}

// WalletTransactionResponse is one row of the wallet's ledger history.
type WalletTransactionResponse struct {
	TransactionID string          `json:"transactionID"`
	Amount        decimal.Decimal `json:"amount"`
	TxnType       string          `json:"txnType"`
	Reason        string          `json:"reason"`
	OrderID       *string         `json:"orderID,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// ListWalletTransactionsParams holds pagination parameters for ledger history.
type ListWalletTransactionsParams struct {
	Limit     int
	NextToken *string
}

// ListWalletTransactionsResponse is a page of ledger rows plus the cursor for
// the next page.
type ListWalletTransactionsResponse struct {
	Transactions []WalletTransactionResponse `json:"transactions"`
	NextToken    *string                     `json:"nextToken,omitempty"`
}

// ToWalletResponse converts a domain wallet to its API representation.
func ToWalletResponse(d *domain.Wallet) WalletResponse {
	return WalletResponse{
		CraftsmanID: d.CraftsmanID,
		Balance:     d.Balance,
		FrozenMoney: d.FrozenMoney,
	}
}

// ToWalletTransactionResponses converts domain ledger rows to API rows.
func ToWalletTransactionResponses(ds []domain.WalletTransaction) []WalletTransactionResponse {
	rs := make([]WalletTransactionResponse, len(ds))
	for i, d := range ds {
		rs[i] = WalletTransactionResponse{
			TransactionID: d.TransactionID,
			Amount:        d.Amount,
			TxnType:       string(d.TxnType),
			Reason:        d.Reason,
			OrderID:       d.OrderID,
			CreatedAt:     d.CreatedAt,
		}
	}
	return rs
}
