package services_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/renohub/reno_backend/internal/core/domain"
	portsrepo "github.com/renohub/reno_backend/internal/core/ports/repositories"
	portssvc "github.com/renohub/reno_backend/internal/core/ports/services"
	"github.com/renohub/reno_backend/internal/dto"
)

// decimalEq builds a testify matcher for decimal arguments; decimal.Decimal
// values with different internal exponents are equal in value but not
// comparable with ==.
func decimalEq(want decimal.Decimal) interface{} {
	return mock.MatchedBy(func(got decimal.Decimal) bool {
		return got.Equal(want)
	})
}

// --- Mock OrderRepository ---

type MockOrderRepository struct {
	mock.Mock
}

var _ portsrepo.OrderRepositoryWithTx = (*MockOrderRepository)(nil)

func (m *MockOrderRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	tx, _ := args.Get(0).(pgx.Tx)
	return tx, args.Error(1)
}

func (m *MockOrderRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockOrderRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockOrderRepository) FindOrderByID(ctx context.Context, orderID string) (*domain.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) ListOrdersByUser(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.Order, *string, error) {
	args := m.Called(ctx, userID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.Order), returnedNextToken, args.Error(2)
}

func (m *MockOrderRepository) SaveOrder(ctx context.Context, order domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) FindOrderByIDForUpdate(ctx context.Context, tx pgx.Tx, orderID string) (*domain.Order, error) {
	args := m.Called(ctx, tx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) SaveOrderInTx(ctx context.Context, tx pgx.Tx, order domain.Order) error {
	args := m.Called(ctx, tx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateOrderStatusInTx(ctx context.Context, tx pgx.Tx, orderID string, status domain.OrderStatus, craftsmanID *string, userID string, now time.Time) error {
	args := m.Called(ctx, tx, orderID, status, craftsmanID, userID, now)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateOrderFinancialsInTx(ctx context.Context, tx pgx.Tx, order domain.Order) error {
	args := m.Called(ctx, tx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) FindDerivedOrderForUpdate(ctx context.Context, tx pgx.Tx, parentOrderID, craftsmanID string) (*domain.Order, error) {
	args := m.Called(ctx, tx, parentOrderID, craftsmanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

// --- Mock WorkItemRepository ---

type MockWorkItemRepository struct {
	mock.Mock
}

var _ portsrepo.WorkItemRepositoryFacade = (*MockWorkItemRepository)(nil)

func (m *MockWorkItemRepository) FindItemsByOrderID(ctx context.Context, orderID string) ([]domain.WorkPriceItem, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WorkPriceItem), args.Error(1)
}

func (m *MockWorkItemRepository) FindItemsByOrderIDForUpdate(ctx context.Context, tx pgx.Tx, orderID string) ([]domain.WorkPriceItem, error) {
	args := m.Called(ctx, tx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WorkPriceItem), args.Error(1)
}

func (m *MockWorkItemRepository) SaveWorkItemsInTx(ctx context.Context, tx pgx.Tx, items []domain.WorkPriceItem) error {
	args := m.Called(ctx, tx, items)
	return args.Error(0)
}

func (m *MockWorkItemRepository) MarkItemsPaidInTx(ctx context.Context, tx pgx.Tx, itemIDs []string, userID string, now time.Time) error {
	args := m.Called(ctx, tx, itemIDs, userID, now)
	return args.Error(0)
}

func (m *MockWorkItemRepository) MarkItemsAcceptedInTx(ctx context.Context, tx pgx.Tx, itemIDs []string, userID string, now time.Time) error {
	args := m.Called(ctx, tx, itemIDs, userID, now)
	return args.Error(0)
}

func (m *MockWorkItemRepository) SetAssignedCraftsmanInTx(ctx context.Context, tx pgx.Tx, itemIDs []string, craftsmanID string, userID string, now time.Time) error {
	args := m.Called(ctx, tx, itemIDs, craftsmanID, userID, now)
	return args.Error(0)
}

// --- Mock WalletRepository ---

type MockWalletRepository struct {
	mock.Mock
}

var _ portsrepo.WalletRepositoryWithTx = (*MockWalletRepository)(nil)

func (m *MockWalletRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	tx, _ := args.Get(0).(pgx.Tx)
	return tx, args.Error(1)
}

func (m *MockWalletRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockWalletRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockWalletRepository) FindWalletByCraftsmanID(ctx context.Context, craftsmanID string) (*domain.Wallet, error) {
	args := m.Called(ctx, craftsmanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) ListWalletTransactions(ctx context.Context, craftsmanID string, limit int, nextToken *string) ([]domain.WalletTransaction, *string, error) {
	args := m.Called(ctx, craftsmanID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.WalletTransaction), returnedNextToken, args.Error(2)
}

func (m *MockWalletRepository) FindOrCreateWalletForUpdate(ctx context.Context, tx pgx.Tx, craftsmanID string, userID string, now time.Time) (*domain.Wallet, error) {
	args := m.Called(ctx, tx, craftsmanID, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) UpdateWalletBalancesInTx(ctx context.Context, tx pgx.Tx, walletID string, balance, frozenMoney decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, tx, walletID, balance, frozenMoney, userID, now)
	return args.Error(0)
}

func (m *MockWalletRepository) InsertWalletTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.WalletTransaction) error {
	args := m.Called(ctx, tx, txn)
	return args.Error(0)
}

// --- Mock UserRepository ---

type MockUserRepository struct {
	mock.Mock
}

var _ portsrepo.UserRepository = (*MockUserRepository)(nil)

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByPhone(ctx context.Context, phone string) (*domain.User, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// --- Mock WalletService (as used by OrderService) ---

type MockWalletService struct {
	mock.Mock
}

var _ portssvc.WalletSvcFacade = (*MockWalletService)(nil)

func (m *MockWalletService) GetWallet(ctx context.Context, craftsmanID string) (*domain.Wallet, error) {
	args := m.Called(ctx, craftsmanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletService) ListTransactions(ctx context.Context, craftsmanID string, params dto.ListWalletTransactionsParams) (*dto.ListWalletTransactionsResponse, error) {
	args := m.Called(ctx, craftsmanID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListWalletTransactionsResponse), args.Error(1)
}

func (m *MockWalletService) Credit(ctx context.Context, craftsmanID string, amount decimal.Decimal, reason string, orderID *string) error {
	args := m.Called(ctx, craftsmanID, amount, reason, orderID)
	return args.Error(0)
}

func (m *MockWalletService) Debit(ctx context.Context, craftsmanID string, amount decimal.Decimal, reason string, orderID *string) error {
	args := m.Called(ctx, craftsmanID, amount, reason, orderID)
	return args.Error(0)
}

func (m *MockWalletService) Freeze(ctx context.Context, craftsmanID string, amount decimal.Decimal, reason string, orderID *string) error {
	args := m.Called(ctx, craftsmanID, amount, reason, orderID)
	return args.Error(0)
}

func (m *MockWalletService) Unfreeze(ctx context.Context, craftsmanID string, amount decimal.Decimal, toBalance bool, reason string, orderID *string) error {
	args := m.Called(ctx, craftsmanID, amount, toBalance, reason, orderID)
	return args.Error(0)
}

func (m *MockWalletService) CreditInTx(ctx context.Context, tx pgx.Tx, craftsmanID string, amount decimal.Decimal, reason string, orderID *string) error {
	args := m.Called(ctx, tx, craftsmanID, amount, reason, orderID)
	return args.Error(0)
}

func (m *MockWalletService) FreezeInTx(ctx context.Context, tx pgx.Tx, craftsmanID string, amount decimal.Decimal, reason string, orderID *string) error {
	args := m.Called(ctx, tx, craftsmanID, amount, reason, orderID)
	return args.Error(0)
}

// --- Mock Notifier ---

type MockNotifier struct {
	mock.Mock
}

var _ portssvc.NotifierSvc = (*MockNotifier)(nil)

func (m *MockNotifier) NotifyOrderAccepted(ctx context.Context, order *domain.Order) {
	m.Called(ctx, order)
}

func (m *MockNotifier) NotifyOrderCompleted(ctx context.Context, order *domain.Order) {
	m.Called(ctx, order)
}

func (m *MockNotifier) NotifyWorkPricesAdded(ctx context.Context, order *domain.Order, workGroupID int) {
	m.Called(ctx, order, workGroupID)
}
