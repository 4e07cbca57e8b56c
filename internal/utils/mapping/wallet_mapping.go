package mapping

import (
	"github.com/renohub/reno_backend/internal/core/domain"
	"github.com/renohub/reno_backend/internal/models"
)

// ToDomainWallet converts a model Wallet to a domain Wallet.
func ToDomainWallet(m models.Wallet) domain.Wallet {
	return domain.Wallet{
		WalletID:    m.WalletID,
		CraftsmanID: m.CraftsmanID,
		Balance:     m.Balance,
		FrozenMoney: m.FrozenMoney,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelWalletTransaction converts a domain WalletTransaction to its model.
func ToModelWalletTransaction(d domain.WalletTransaction) models.WalletTransaction {
	return models.WalletTransaction{
		TransactionID: d.TransactionID,
		WalletID:      d.WalletID,
		CraftsmanID:   d.CraftsmanID,
		Amount:        d.Amount,
		TxnType:       models.WalletTxnType(d.TxnType),
		Reason:        d.Reason,
		OrderID:       d.OrderID,
		CreatedAt:     d.CreatedAt,
	}
}

// ToDomainWalletTransaction converts a model WalletTransaction to its domain form.
func ToDomainWalletTransaction(m models.WalletTransaction) domain.WalletTransaction {
	return domain.WalletTransaction{
		TransactionID: m.TransactionID,
		WalletID:      m.WalletID,
		CraftsmanID:   m.CraftsmanID,
		Amount:        m.Amount,
		TxnType:       domain.WalletTxnType(m.TxnType),
		Reason:        m.Reason,
		OrderID:       m.OrderID,
		CreatedAt:     m.CreatedAt,
	}
}

// ToDomainWalletTransactionSlice converts a slice of model wallet transactions.
func ToDomainWalletTransactionSlice(ms []models.WalletTransaction) []domain.WalletTransaction {
	ds := make([]domain.WalletTransaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainWalletTransaction(m)
	}
	return ds
}
