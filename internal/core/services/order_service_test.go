package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/renohub/reno_backend/internal/apperrors"
	"github.com/renohub/reno_backend/internal/core/domain"
	portssvc "github.com/renohub/reno_backend/internal/core/ports/services"
	"github.com/renohub/reno_backend/internal/core/services"
	"github.com/renohub/reno_backend/internal/dto"
)

type OrderServiceTestSuite struct {
	suite.Suite
	mockOrderRepo    *MockOrderRepository
	mockWorkItemRepo *MockWorkItemRepository
	mockWalletSvc    *MockWalletService
	mockNotifier     *MockNotifier
	service          portssvc.OrderSvcFacade
	requesterID      string
	craftsmanID      string
}

func (suite *OrderServiceTestSuite) SetupTest() {
	suite.mockOrderRepo = new(MockOrderRepository)
	suite.mockWorkItemRepo = new(MockWorkItemRepository)
	suite.mockWalletSvc = new(MockWalletService)
	suite.mockNotifier = new(MockNotifier)

	// The work item service is exercised for real; only its repositories are
	// mocked, so the group selection and idempotency guards run as in prod.
	workItemSvc := services.NewWorkItemService(suite.mockWorkItemRepo, suite.mockOrderRepo)
	suite.service = services.NewOrderService(suite.mockOrderRepo, suite.mockWorkItemRepo, workItemSvc, suite.mockWalletSvc, suite.mockNotifier)

	suite.requesterID = uuid.NewString()
	suite.craftsmanID = uuid.NewString()
}

// expectTx sets up Begin/Commit/Rollback for one service call.
func (suite *OrderServiceTestSuite) expectTx() {
	suite.mockOrderRepo.On("Begin", mock.Anything).Return(nil, nil).Once()
	suite.mockOrderRepo.On("Commit", mock.Anything, mock.Anything).Return(nil).Maybe()
	suite.mockOrderRepo.On("Rollback", mock.Anything, mock.Anything).Return(nil).Maybe()
}

func (suite *OrderServiceTestSuite) acceptedOrder(orderType domain.OrderType) *domain.Order {
	craftsmanID := suite.craftsmanID
	return &domain.Order{
		OrderID:     uuid.NewString(),
		OrderNo:     "RN20260831120000123456",
		OrderType:   orderType,
		Status:      domain.OrderStatusAccepted,
		RequesterID: suite.requesterID,
		CraftsmanID: &craftsmanID,
		Area:        decimal.NewFromInt(100),
	}
}

func paidItem(orderID string, groupID int, kind domain.WorkKind, settlement int64) domain.WorkPriceItem {
	return domain.WorkPriceItem{
		ItemID:           uuid.NewString(),
		OrderID:          orderID,
		WorkGroupID:      groupID,
		WorkKind:         kind,
		SettlementAmount: decimal.NewFromInt(settlement),
		IsPaid:           true,
	}
}

func itemIDsOf(items ...domain.WorkPriceItem) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ItemID
	}
	return ids
}

// --- CreateOrder ---

func (suite *OrderServiceTestSuite) TestCreateOrder_Success() {
	ctx := context.Background()
	req := dto.CreateOrderRequest{OrderType: "CRAFTSMAN", Address: "12 Elm Street", Description: "bathroom refresh"}

	var saved domain.Order
	suite.mockOrderRepo.On("SaveOrder", ctx, mock.AnythingOfType("domain.Order")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(domain.Order) }).Return(nil).Once()

	order, err := suite.service.CreateOrder(ctx, req, suite.requesterID)

	suite.Require().NoError(err)
	suite.Require().NotNil(order)
	suite.Equal(domain.OrderStatusPending, order.Status)
	suite.Equal(domain.OrderTypeCraftsman, order.OrderType)
	suite.Equal(suite.requesterID, order.RequesterID)
	suite.Nil(order.CraftsmanID)
	suite.NotEmpty(saved.OrderNo)
	suite.mockOrderRepo.AssertExpectations(suite.T())
}

func (suite *OrderServiceTestSuite) TestCreateOrder_GangmasterRequiresArea() {
	ctx := context.Background()
	req := dto.CreateOrderRequest{OrderType: "GANGMASTER", Address: "12 Elm Street"}

	_, err := suite.service.CreateOrder(ctx, req, suite.requesterID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockOrderRepo.AssertNotCalled(suite.T(), "SaveOrder", mock.Anything, mock.Anything)
}

func (suite *OrderServiceTestSuite) TestCreateOrder_UnknownType() {
	ctx := context.Background()
	req := dto.CreateOrderRequest{OrderType: "ARCHITECT", Address: "12 Elm Street"}

	_, err := suite.service.CreateOrder(ctx, req, suite.requesterID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

// --- AcceptOrder ---

func (suite *OrderServiceTestSuite) TestAcceptOrder_Success() {
	ctx := context.Background()
	order := suite.acceptedOrder(domain.OrderTypeCraftsman)
	order.Status = domain.OrderStatusPending
	order.CraftsmanID = nil

	suite.expectTx()
	suite.mockOrderRepo.On("FindOrderByIDForUpdate", ctx, mock.Anything, order.OrderID).Return(order, nil).Once()
	suite.mockOrderRepo.On("UpdateOrderStatusInTx", ctx, mock.Anything, order.OrderID, domain.OrderStatusAccepted, &suite.craftsmanID, suite.craftsmanID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockNotifier.On("NotifyOrderAccepted", ctx, mock.AnythingOfType("*domain.Order")).Once()

	accepted, err := suite.service.AcceptOrder(ctx, order.OrderID, suite.craftsmanID)

	suite.Require().NoError(err)
	suite.Equal(domain.OrderStatusAccepted, accepted.Status)
	suite.Require().NotNil(accepted.CraftsmanID)
	suite.Equal(suite.craftsmanID, *accepted.CraftsmanID)
	suite.mockOrderRepo.AssertExpectations(suite.T())
	suite.mockNotifier.AssertExpectations(suite.T())
}

func (suite *OrderServiceTestSuite) TestAcceptOrder_SelfAccept() {
	ctx := context.Background()
	order := suite.acceptedOrder(domain.OrderTypeCraftsman)
	order.Status = domain.OrderStatusPending
	order.CraftsmanID = nil

	suite.expectTx()
	suite.mockOrderRepo.On("FindOrderByIDForUpdate", ctx, mock.Anything, order.OrderID).Return(order, nil).Once()

	_, err := suite.service.AcceptOrder(ctx, order.OrderID, suite.requesterID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *OrderServiceTestSuite) TestAcceptOrder_DerivedOrderRejected() {
	ctx := context.Background()
	order := suite.acceptedOrder(domain.OrderTypeCraftsman)
	parentID := uuid.NewString()
	order.ParentOrderID = &parentID
	order.Status = domain.OrderStatusPending

	suite.expectTx()
	suite.mockOrderRepo.On("FindOrderByIDForUpdate", ctx, mock.Anything, order.OrderID).Return(order, nil).Once()

	_, err := suite.service.AcceptOrder(ctx, order.OrderID, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidState)
}

func (suite *OrderServiceTestSuite) TestAcceptOrder_TerminalState() {
	ctx := context.Background()
	order := suite.acceptedOrder(domain.OrderTypeCraftsman)
	order.Status = domain.OrderStatusCompleted

	suite.expectTx()
	suite.mockOrderRepo.On("FindOrderByIDForUpdate", ctx, mock.Anything, order.OrderID).Return(order, nil).Once()

	_, err := suite.service.AcceptOrder(ctx, order.OrderID, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidState)
}

// --- ConfirmPayment ---

func (suite *OrderServiceTestSuite) TestConfirmPayment_MainGroup() {
	ctx := context.Background()
	order := suite.acceptedOrder(domain.OrderTypeCraftsman)
	it1 := paidItem(order.OrderID, 1, domain.WorkKindPainting, 500)
	it1.IsPaid = false
	it2 := paidItem(order.OrderID, 1, domain.WorkKindCarpentry, 300)
	it2.IsPaid = false
	items := []domain.WorkPriceItem{it1, it2}

	suite.expectTx()
	suite.mockOrderRepo.On("FindOrderByIDForUpdate", ctx, mock.Anything, order.OrderID).Return(order, nil).Once()
	suite.mockWorkItemRepo.On("FindItemsByOrderIDForUpdate", ctx, mock.Anything, order.OrderID).Return(items, nil).Once()
	suite.mockWorkItemRepo.On("MarkItemsPaidInTx", ctx, mock.Anything, itemIDsOf(it1, it2), suite.requesterID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	var persistedOrder domain.Order
	suite.mockOrderRepo.On("UpdateOrderFinancialsInTx", ctx, mock.Anything, mock.AnythingOfType("domain.Order")).
		Run(func(args mock.Arguments) { persistedOrder = args.Get(2).(domain.Order) }).Return(nil).Once()

	err := suite.service.ConfirmPayment(ctx, order.OrderID, domain.WorkGroupSelector{Main: true}, suite.requesterID)

	suite.Require().NoError(err)
	suite.True(persistedOrder.TotalServiceFeePaid, "paying the main group settles the order-level service fee")
	suite.mockOrderRepo.AssertExpectations(suite.T())
	suite.mockWorkItemRepo.AssertExpectations(suite.T())
}

func (suite *OrderServiceTestSuite) TestConfirmPayment_GatewayReplay() {
	ctx := context.Background()
	order := suite.acceptedOrder(domain.OrderTypeCraftsman)
	items := []domain.WorkPriceItem{paidItem(order.OrderID, 1, domain.WorkKindPainting, 500)}

	suite.expectTx()
	suite.mockOrderRepo.On("FindOrderByIDForUpdate", ctx, mock.Anything, order.OrderID).Return(order, nil).Once()
	suite.mockWorkItemRepo.On("FindItemsByOrderIDForUpdate", ctx, mock.Anything, order.OrderID).Return(items, nil).Once()

	err := suite.service.ConfirmPayment(ctx, order.OrderID, domain.WorkGroupSelector{Main: true}, suite.requesterID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrAlreadyDone)
	suite.mockWorkItemRepo.AssertNotCalled(suite.T(), "MarkItemsPaidInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *OrderServiceTestSuite) TestConfirmPayment_NotRequester() {
	ctx := context.Background()
	order := suite.acceptedOrder(domain.OrderTypeCraftsman)

	suite.expectTx()
	suite.mockOrderRepo.On("FindOrderByIDForUpdate", ctx, mock.Anything, order.OrderID).Return(order, nil).Once()

	err := suite.service.ConfirmPayment(ctx, order.OrderID, domain.WorkGroupSelector{Main: true}, suite.craftsmanID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

// --- AcceptWorkGroup ---

func (suite *OrderServiceTestSuite) TestAcceptWorkGroup_PlainMain_PaysOutAndCompletes() {
	ctx := context.Background()
	order := suite.acceptedOrder(domain.OrderTypeCraftsman)
	it1 := paidItem(order.OrderID, 1, domain.WorkKindPainting, 600)
	it2 := paidItem(order.OrderID, 1, domain.WorkKindCarpentry, 400)
	items := []domain.WorkPriceItem{it1, it2}

	suite.expectTx()
	suite.mockOrderRepo.On("FindOrderByIDForUpdate", ctx, mock.Anything, order.OrderID).Return(order, nil).Once()
	suite.mockWorkItemRepo.On("FindItemsByOrderIDForUpdate", ctx, mock.Anything, order.OrderID).Return(items, nil).Once()
	suite.mockWorkItemRepo.On("MarkItemsAcceptedInTx", ctx, mock.Anything, itemIDsOf(it1, it2), suite.requesterID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	suite.mockWalletSvc.On("CreditInTx", ctx, mock.Anything, suite.craftsmanID, decimalEq(decimal.NewFromInt(1000)), "construction cost payout", &order.OrderID).Return(nil).Once()
	suite.mockWalletSvc.On("FreezeInTx", ctx, mock.Anything, suite.craftsmanID, decimalEq(domain.CraftsmanDeposit), "completion deposit", &order.OrderID).Return(nil).Once()
	suite.mockOrderRepo.On("UpdateOrderStatusInTx", ctx, mock.Anything, order.OrderID, domain.OrderStatusCompleted, &suite.craftsmanID, suite.requesterID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockNotifier.On("NotifyOrderCompleted", ctx, mock.AnythingOfType("*domain.Order")).Once()

	result, err := suite.service.AcceptWorkGroup(ctx, order.OrderID, domain.WorkGroupSelector{Main: true}, suite.requesterID)

	suite.Require().NoError(err)
	suite.Equal(domain.OrderStatusCompleted, result.Status)
	suite.mockWalletSvc.AssertExpectations(suite.T())
	suite.mockOrderRepo.AssertExpectations(suite.T())
	suite.mockNotifier.AssertExpectations(suite.T())
}

func (suite *OrderServiceTestSuite) TestAcceptWorkGroup_UnpaidItem() {
	ctx := context.Background()
	order := suite.acceptedOrder(domain.OrderTypeCraftsman)
	it := paidItem(order.OrderID, 1, domain.WorkKindPainting, 600)
	it.IsPaid = false

	suite.expectTx()
	suite.mockOrderRepo.On("FindOrderByIDForUpdate", ctx, mock.Anything, order.OrderID).Return(order, nil).Once()
	suite.mockWorkItemRepo.On("FindItemsByOrderIDForUpdate", ctx, mock.Anything, order.OrderID).Return([]domain.WorkPriceItem{it}, nil).Once()

	_, err := suite.service.AcceptWorkGroup(ctx, order.OrderID, domain.WorkGroupSelector{Main: true}, suite.requesterID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotPaid)
	suite.mockWalletSvc.AssertNotCalled(suite.T(), "CreditInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *OrderServiceTestSuite) TestAcceptWorkGroup_AlreadyAccepted() {
	ctx := context.Background()
	order := suite.acceptedOrder(domain.OrderTypeCraftsman)
	it := paidItem(order.OrderID, 1, domain.WorkKindPainting, 600)
	it.IsAccepted = true

	suite.expectTx()
	suite.mockOrderRepo.On("FindOrderByIDForUpdate", ctx, mock.Anything, order.OrderID).Return(order, nil).Once()
	suite.mockWorkItemRepo.On("FindItemsByOrderIDForUpdate", ctx, mock.Anything, order.OrderID).Return([]domain.WorkPriceItem{it}, nil).Once()

	_, err := suite.service.AcceptWorkGroup(ctx, order.OrderID, domain.WorkGroupSelector{Main: true}, suite.requesterID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrAlreadyDone)
}

func (suite *OrderServiceTestSuite) TestAcceptWorkGroup_SubGroup_PaysOutWithoutCompleting() {
	ctx := context.Background()
	order := suite.acceptedOrder(domain.OrderTypeCraftsman)
	mainItem := paidItem(order.OrderID, 1, domain.WorkKindPainting, 500)
	subItem := paidItem(order.OrderID, 2, domain.WorkKindCarpentry, 300)
	items := []domain.WorkPriceItem{mainItem, subItem}

	suite.expectTx()
	suite.mockOrderRepo.On("FindOrderByIDForUpdate", ctx, mock.Anything, order.OrderID).Return(order, nil).Once()
	suite.mockWorkItemRepo.On("FindItemsByOrderIDForUpdate", ctx, mock.Anything, order.OrderID).Return(items, nil).Once()
	suite.mockWorkItemRepo.On("MarkItemsAcceptedInTx", ctx, mock.Anything, itemIDsOf(subItem), suite.requesterID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockWalletSvc.On("CreditInTx", ctx, mock.Anything, suite.craftsmanID, decimalEq(decimal.NewFromInt(300)), "sub group settlement payout", &order.OrderID).Return(nil).Once()

	result, err := suite.service.AcceptWorkGroup(ctx, order.OrderID, domain.WorkGroupSelector{SubOrdinal: 0}, suite.requesterID)

	suite.Require().NoError(err)
	suite.Equal(domain.OrderStatusAccepted, result.Status, "a sub group acceptance never completes the order")
	suite.mockOrderRepo.AssertNotCalled(suite.T(), "UpdateOrderStatusInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockWalletSvc.AssertNotCalled(suite.T(), "FreezeInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockNotifier.AssertNotCalled(suite.T(), "NotifyOrderCompleted", mock.Anything, mock.Anything)
}

func (suite *OrderServiceTestSuite) TestAcceptWorkGroup_GangmasterSubGroupLast_Completes() {
	ctx := context.Background()
	order := suite.acceptedOrder(domain.OrderTypeGangmaster)
	order.GangmasterCost = decimal.NewFromInt(2000)
	order.GangmasterPaid = decimal.NewFromInt(500)

	// The main group is already fully accepted through the single-item path;
	// the last open item sits in the sub group, so this acceptance must be the
	// one that completes the order.
	mainItem := paidItem(order.OrderID, 1, domain.WorkKindMasonry, 5000)
	mainItem.IsAccepted = true
	subItem := paidItem(order.OrderID, 2, domain.WorkKindPainting, 300)
	items := []domain.WorkPriceItem{mainItem, subItem}

	suite.expectTx()
	suite.mockOrderRepo.On("FindOrderByIDForUpdate", ctx, mock.Anything, order.OrderID).Return(order, nil).Once()
	suite.mockWorkItemRepo.On("FindItemsByOrderIDForUpdate", ctx, mock.Anything, order.OrderID).Return(items, nil).Once()
	suite.mockWorkItemRepo.On("MarkItemsAcceptedInTx", ctx, mock.Anything, itemIDsOf(subItem), suite.requesterID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	suite.mockWalletSvc.On("CreditInTx", ctx, mock.Anything, suite.craftsmanID, decimalEq(decimal.NewFromInt(300)), "sub group settlement payout", &order.OrderID).Return(nil).Once()
	suite.mockWalletSvc.On("CreditInTx", ctx, mock.Anything, suite.craftsmanID, decimalEq(decimal.NewFromInt(1500)), "gangmaster fee final payout", &order.OrderID).Return(nil).Once()
	var persistedOrder domain.Order
	suite.mockOrderRepo.On("UpdateOrderFinancialsInTx", ctx, mock.Anything, mock.AnythingOfType("domain.Order")).
		Run(func(args mock.Arguments) { persistedOrder = args.Get(2).(domain.Order) }).Return(nil).Once()
	suite.mockWalletSvc.On("FreezeInTx", ctx, mock.Anything, suite.craftsmanID, decimalEq(domain.GangmasterDeposit), "completion deposit", &order.OrderID).Return(nil).Once()
	suite.mockOrderRepo.On("UpdateOrderStatusInTx", ctx, mock.Anything, order.OrderID, domain.OrderStatusCompleted, &suite.craftsmanID, suite.requesterID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockNotifier.On("NotifyOrderCompleted", ctx, mock.AnythingOfType("*domain.Order")).Once()

	result, err := suite.service.AcceptWorkGroup(ctx, order.OrderID, domain.WorkGroupSelector{SubOrdinal: 0}, suite.requesterID)

	suite.Require().NoError(err)
	suite.Equal(domain.OrderStatusCompleted, result.Status)
	suite.True(persistedOrder.GangmasterPaid.Equal(decimal.NewFromInt(2000)), "the remainder payout closes out the fee")
	suite.mockWalletSvc.AssertExpectations(suite.T())
	suite.mockOrderRepo.AssertExpectations(suite.T())
	suite.mockNotifier.AssertExpectations(suite.T())
}

func (suite *OrderServiceTestSuite) TestAcceptWorkGroup_GangmasterSubGroup_OpenMainStaysRunning() {
	ctx := context.Background()
	order := suite.acceptedOrder(domain.OrderTypeGangmaster)
	order.GangmasterCost = decimal.NewFromInt(2000)

	mainItem := paidItem(order.OrderID, 1, domain.WorkKindMasonry, 5000)
	subItem := paidItem(order.OrderID, 2, domain.WorkKindPainting, 300)
	items := []domain.WorkPriceItem{mainItem, subItem}

	suite.expectTx()
	suite.mockOrderRepo.On("FindOrderByIDForUpdate", ctx, mock.Anything, order.OrderID).Return(order, nil).Once()
	suite.mockWorkItemRepo.On("FindItemsByOrderIDForUpdate", ctx, mock.Anything, order.OrderID).Return(items, nil).Once()
	suite.mockWorkItemRepo.On("MarkItemsAcceptedInTx", ctx, mock.Anything, itemIDsOf(subItem), suite.requesterID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockWalletSvc.On("CreditInTx", ctx, mock.Anything, suite.craftsmanID, decimalEq(decimal.NewFromInt(300)), "sub group settlement payout", &order.OrderID).Return(nil).Once()

	result, err := suite.service.AcceptWorkGroup(ctx, order.OrderID, domain.WorkGroupSelector{SubOrdinal: 0}, suite.requesterID)

	suite.Require().NoError(err)
	suite.Equal(domain.OrderStatusAccepted, result.Status, "an open main-group item keeps the order running")
	suite.mockOrderRepo.AssertNotCalled(suite.T(), "UpdateOrderStatusInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockWalletSvc.AssertNotCalled(suite.T(), "FreezeInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *OrderServiceTestSuite) TestAcceptWorkGroup_GangmasterMain_NoPayoutBeforeComplete() {
	ctx := context.Background()
	order := suite.acceptedOrder(domain.OrderTypeGangmaster)
	order.GangmasterCost = decimal.NewFromInt(2000)
	mainItem := paidItem(order.OrderID, 1, domain.WorkKindMasonry, 9000)
	pendingSub := paidItem(order.OrderID, 2, domain.WorkKindPainting, 400)
	pendingSub.IsPaid = false
	items := []domain.WorkPriceItem{mainItem, pendingSub}

	suite.expectTx()
	suite.mockOrderRepo.On("FindOrderByIDForUpdate", ctx, mock.Anything, order.OrderID).Return(order, nil).Once()
	suite.mockWorkItemRepo.On("FindItemsByOrderIDForUpdate", ctx, mock.Anything, order.OrderID).Return(items, nil).Once()
	suite.mockWorkItemRepo.On("MarkItemsAcceptedInTx", ctx, mock.Anything, itemIDsOf(mainItem), suite.requesterID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	result, err := suite.service.AcceptWorkGroup(ctx, order.OrderID, domain.WorkGroupSelector{Main: true}, suite.requesterID)

	suite.Require().NoError(err)
	suite.Equal(domain.OrderStatusAccepted, result.Status)
	// The engine never credits a gangmaster the construction cost; the fee is
	// released only through item acceptances and completion.
	suite.mockWalletSvc.AssertNotCalled(suite.T(), "CreditInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockOrderRepo.AssertNotCalled(suite.T(), "UpdateOrderStatusInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *OrderServiceTestSuite) TestAcceptWorkGroup_GangmasterMain_LastAcceptanceCompletes() {
	ctx := context.Background()
	order := suite.acceptedOrder(domain.OrderTypeGangmaster)
	order.GangmasterCost = decimal.NewFromInt(2000)
	order.GangmasterPaid = decimal.NewFromInt(500)

	acceptedItem := paidItem(order.OrderID, 1, domain.WorkKindMasonry, 5000)
	acceptedItem.IsAccepted = true
	lastItem := paidItem(order.OrderID, 1, domain.WorkKindPainting, 4000)
	items := []domain.WorkPriceItem{acceptedItem, lastItem}

	suite.expectTx()
	suite.mockOrderRepo.On("FindOrderByIDForUpdate", ctx, mock.Anything, order.OrderID).Return(order, nil).Once()
	suite.mockWorkItemRepo.On("FindItemsByOrderIDForUpdate", ctx, mock.Anything, order.OrderID).Return(items, nil).Once()
	// Whole-group acceptance covers only the items not yet accepted singly.
	suite.mockWorkItemRepo.On("MarkItemsAcceptedInTx", ctx, mock.Anything, itemIDsOf(lastItem), suite.requesterID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	suite.mockWalletSvc.On("CreditInTx", ctx, mock.Anything, suite.craftsmanID, decimalEq(decimal.NewFromInt(1500)), "gangmaster fee final payout", &order.OrderID).Return(nil).Once()
	var persistedOrder domain.Order
	suite.mockOrderRepo.On("UpdateOrderFinancialsInTx", ctx, mock.Anything, mock.AnythingOfType("domain.Order")).
		Run(func(args mock.Arguments) { persistedOrder = args.Get(2).(domain.Order) }).Return(nil).Once()
	suite.mockWalletSvc.On("FreezeInTx", ctx, mock.Anything, suite.craftsmanID, decimalEq(domain.GangmasterDeposit), "completion deposit", &order.OrderID).Return(nil).Once()
	suite.mockOrderRepo.On("UpdateOrderStatusInTx", ctx, mock.Anything, order.OrderID, domain.OrderStatusCompleted, &suite.craftsmanID, suite.requesterID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockNotifier.On("NotifyOrderCompleted", ctx, mock.AnythingOfType("*domain.Order")).Once()

	result, err := suite.service.AcceptWorkGroup(ctx, order.OrderID, domain.WorkGroupSelector{Main: true}, suite.requesterID)

	suite.Require().NoError(err)
	suite.Equal(domain.OrderStatusCompleted, result.Status)
	suite.True(persistedOrder.GangmasterPaid.Equal(decimal.NewFromInt(2000)), "the remainder payout closes out the fee")
	suite.mockWalletSvc.AssertExpectations(suite.T())
	suite.mockNotifier.AssertExpectations(suite.T())
}

func (suite *OrderServiceTestSuite) TestAcceptWorkGroup_DepositFreezeSkippedOnShortBalance() {
	ctx := context.Background()
	order := suite.acceptedOrder(domain.OrderTypeCraftsman)
	it := paidItem(order.OrderID, 1, domain.WorkKindPainting, 200)
	items := []domain.WorkPriceItem{it}

	suite.expectTx()
	suite.mockOrderRepo.On("FindOrderByIDForUpdate", ctx, mock.Anything, order.OrderID).Return(order, nil).Once()
	suite.mockWorkItemRepo.On("FindItemsByOrderIDForUpdate", ctx, mock.Anything, order.OrderID).Return(items, nil).Once()
	suite.mockWorkItemRepo.On("MarkItemsAcceptedInTx", ctx, mock.Anything, itemIDsOf(it), suite.requesterID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockWalletSvc.On("CreditInTx", ctx, mock.Anything, suite.craftsmanID, decimalEq(decimal.NewFromInt(200)), "construction cost payout", &order.OrderID).Return(nil).Once()
	suite.mockWalletSvc.On("FreezeInTx", ctx, mock.Anything, suite.craftsmanID, decimalEq(domain.CraftsmanDeposit), "completion deposit", &order.OrderID).Return(apperrors.ErrInsufficientBalance).Once()
	suite.mockOrderRepo.On("UpdateOrderStatusInTx", ctx, mock.Anything, order.OrderID, domain.OrderStatusCompleted, &suite.craftsmanID, suite.requesterID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockNotifier.On("NotifyOrderCompleted", ctx, mock.AnythingOfType("*domain.Order")).Once()

	result, err := suite.service.AcceptWorkGroup(ctx, order.OrderID, domain.WorkGroupSelector{Main: true}, suite.requesterID)

	suite.Require().NoError(err, "a short balance skips the deposit, it does not fail the acceptance")
	suite.Equal(domain.OrderStatusCompleted, result.Status)
	suite.mockWalletSvc.AssertExpectations(suite.T())
}

func (suite *OrderServiceTestSuite) TestAcceptWorkGroup_DerivedMain_SyncsParentAndCompletesBoth() {
	ctx := context.Background()

	gangmasterID := suite.craftsmanID
	subcontractorID := uuid.NewString()

	parent := suite.acceptedOrder(domain.OrderTypeGangmaster)
	parent.GangmasterCost = decimal.NewFromInt(2000)
	parentItem := paidItem(parent.OrderID, 1, domain.WorkKindMasonry, 9000)
	parentItem.AssignedCraftsmanID = &subcontractorID

	child := &domain.Order{
		OrderID:       uuid.NewString(),
		OrderNo:       "RN20260831120001123456",
		OrderType:     domain.OrderTypeCraftsman,
		Status:        domain.OrderStatusAccepted,
		ParentOrderID: &parent.OrderID,
		RequesterID:   gangmasterID,
		CraftsmanID:   &subcontractorID,
	}
	clone := paidItem(child.OrderID, 1, domain.WorkKindMasonry, 9000)
	clone.SourceItemID = &parentItem.ItemID

	suite.expectTx()
	suite.mockOrderRepo.On("FindOrderByIDForUpdate", ctx, mock.Anything, child.OrderID).Return(child, nil).Once()
	suite.mockOrderRepo.On("FindOrderByIDForUpdate", ctx, mock.Anything, parent.OrderID).Return(parent, nil).Once()
	suite.mockWorkItemRepo.On("FindItemsByOrderIDForUpdate", ctx, mock.Anything, child.OrderID).Return([]domain.WorkPriceItem{clone}, nil).Once()
	suite.mockWorkItemRepo.On("FindItemsByOrderIDForUpdate", ctx, mock.Anything, parent.OrderID).Return([]domain.WorkPriceItem{parentItem}, nil).Once()

	// The clone is accepted directly, its source item through the sync.
	suite.mockWorkItemRepo.On("MarkItemsAcceptedInTx", ctx, mock.Anything, itemIDsOf(clone), gangmasterID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockWorkItemRepo.On("MarkItemsAcceptedInTx", ctx, mock.Anything, itemIDsOf(parentItem), gangmasterID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	// Subcontractor gets the construction cost and posts the craftsman deposit.
	suite.mockWalletSvc.On("CreditInTx", ctx, mock.Anything, subcontractorID, decimalEq(decimal.NewFromInt(9000)), "construction cost payout", &child.OrderID).Return(nil).Once()
	suite.mockWalletSvc.On("FreezeInTx", ctx, mock.Anything, subcontractorID, decimalEq(domain.CraftsmanDeposit), "completion deposit", &child.OrderID).Return(nil).Once()

	// Gangmaster gets the whole fee as remainder and posts the larger deposit.
	suite.mockWalletSvc.On("CreditInTx", ctx, mock.Anything, gangmasterID, decimalEq(decimal.NewFromInt(2000)), "gangmaster fee final payout", &parent.OrderID).Return(nil).Once()
	suite.mockWalletSvc.On("FreezeInTx", ctx, mock.Anything, gangmasterID, decimalEq(domain.GangmasterDeposit), "completion deposit", &parent.OrderID).Return(nil).Once()
	suite.mockOrderRepo.On("UpdateOrderFinancialsInTx", ctx, mock.Anything, mock.AnythingOfType("domain.Order")).Return(nil).Once()

	suite.mockOrderRepo.On("UpdateOrderStatusInTx", ctx, mock.Anything, parent.OrderID, domain.OrderStatusCompleted, &gangmasterID, gangmasterID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockOrderRepo.On("UpdateOrderStatusInTx", ctx, mock.Anything, child.OrderID, domain.OrderStatusCompleted, &subcontractorID, gangmasterID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockNotifier.On("NotifyOrderCompleted", ctx, mock.AnythingOfType("*domain.Order")).Twice()

	// The gangmaster is the requester on the derived order.
	result, err := suite.service.AcceptWorkGroup(ctx, child.OrderID, domain.WorkGroupSelector{Main: true}, gangmasterID)

	suite.Require().NoError(err)
	suite.Equal(domain.OrderStatusCompleted, result.Status)
	suite.Equal(domain.OrderStatusCompleted, parent.Status)
	suite.mockWalletSvc.AssertExpectations(suite.T())
	suite.mockOrderRepo.AssertExpectations(suite.T())
	suite.mockNotifier.AssertExpectations(suite.T())
}

// --- AcceptWorkItem ---

func (suite *OrderServiceTestSuite) TestAcceptWorkItem_ReleasesQuarterAdvance() {
	ctx := context.Background()
	order := suite.acceptedOrder(domain.OrderTypeGangmaster)
	order.GangmasterCost = decimal.NewFromInt(2000)

	target := paidItem(order.OrderID, 1, domain.WorkKindPlumbingElectrical, 5000)
	other := paidItem(order.OrderID, 1, domain.WorkKindMasonry, 4000)
	items := []domain.WorkPriceItem{target, other}

	suite.expectTx()
	suite.mockOrderRepo.On("FindOrderByIDForUpdate", ctx, mock.Anything, order.OrderID).Return(order, nil).Once()
	suite.mockWorkItemRepo.On("FindItemsByOrderIDForUpdate", ctx, mock.Anything, order.OrderID).Return(items, nil).Once()
	suite.mockWorkItemRepo.On("MarkItemsAcceptedInTx", ctx, mock.Anything, itemIDsOf(target), suite.requesterID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockWalletSvc.On("CreditInTx", ctx, mock.Anything, suite.craftsmanID, decimalEq(decimal.NewFromInt(500)), "gangmaster fee advance", &order.OrderID).Return(nil).Once()

	var persistedOrder domain.Order
	suite.mockOrderRepo.On("UpdateOrderFinancialsInTx", ctx, mock.Anything, mock.AnythingOfType("domain.Order")).
		Run(func(args mock.Arguments) { persistedOrder = args.Get(2).(domain.Order) }).Return(nil).Once()

	result, err := suite.service.AcceptWorkItem(ctx, order.OrderID, target.ItemID, suite.requesterID)

	suite.Require().NoError(err)
	suite.Equal(domain.OrderStatusAccepted, result.Status, "one open item keeps the order running")
	suite.True(persistedOrder.GangmasterPaid.Equal(decimal.NewFromInt(500)))
	suite.mockOrderRepo.AssertNotCalled(suite.T(), "UpdateOrderStatusInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockWalletSvc.AssertExpectations(suite.T())
}

func (suite *OrderServiceTestSuite) TestAcceptWorkItem_LastItemCompletesWithCappedAdvance() {
	ctx := context.Background()
	order := suite.acceptedOrder(domain.OrderTypeGangmaster)
	order.GangmasterCost = decimal.NewFromInt(2000)
	order.GangmasterPaid = decimal.NewFromInt(1600)

	done := paidItem(order.OrderID, 1, domain.WorkKindMasonry, 4000)
	done.IsAccepted = true
	target := paidItem(order.OrderID, 1, domain.WorkKindPlumbingElectrical, 5000)
	items := []domain.WorkPriceItem{done, target}

	suite.expectTx()
	suite.mockOrderRepo.On("FindOrderByIDForUpdate", ctx, mock.Anything, order.OrderID).Return(order, nil).Once()
	suite.mockWorkItemRepo.On("FindItemsByOrderIDForUpdate", ctx, mock.Anything, order.OrderID).Return(items, nil).Once()
	suite.mockWorkItemRepo.On("MarkItemsAcceptedInTx", ctx, mock.Anything, itemIDsOf(target), suite.requesterID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	// 25% of 2000 would be 500, but only 400 of the fee is still unpaid.
	suite.mockWalletSvc.On("CreditInTx", ctx, mock.Anything, suite.craftsmanID, decimalEq(decimal.NewFromInt(400)), "gangmaster fee advance", &order.OrderID).Return(nil).Once()
	suite.mockOrderRepo.On("UpdateOrderFinancialsInTx", ctx, mock.Anything, mock.AnythingOfType("domain.Order")).Return(nil).Once()
	suite.mockWalletSvc.On("FreezeInTx", ctx, mock.Anything, suite.craftsmanID, decimalEq(domain.GangmasterDeposit), "completion deposit", &order.OrderID).Return(nil).Once()
	suite.mockOrderRepo.On("UpdateOrderStatusInTx", ctx, mock.Anything, order.OrderID, domain.OrderStatusCompleted, &suite.craftsmanID, suite.requesterID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockNotifier.On("NotifyOrderCompleted", ctx, mock.AnythingOfType("*domain.Order")).Once()

	result, err := suite.service.AcceptWorkItem(ctx, order.OrderID, target.ItemID, suite.requesterID)

	suite.Require().NoError(err)
	suite.Equal(domain.OrderStatusCompleted, result.Status)
	suite.True(result.GangmasterPaid.Equal(decimal.NewFromInt(2000)))
	suite.mockWalletSvc.AssertExpectations(suite.T())
}

func (suite *OrderServiceTestSuite) TestAcceptWorkItem_NonQualifyingItem() {
	ctx := context.Background()
	order := suite.acceptedOrder(domain.OrderTypeGangmaster)
	order.GangmasterCost = decimal.NewFromInt(2000)
	target := paidItem(order.OrderID, 1, domain.WorkKindTiling, 1000)

	suite.expectTx()
	suite.mockOrderRepo.On("FindOrderByIDForUpdate", ctx, mock.Anything, order.OrderID).Return(order, nil).Once()
	suite.mockWorkItemRepo.On("FindItemsByOrderIDForUpdate", ctx, mock.Anything, order.OrderID).Return([]domain.WorkPriceItem{target}, nil).Once()

	_, err := suite.service.AcceptWorkItem(ctx, order.OrderID, target.ItemID, suite.requesterID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *OrderServiceTestSuite) TestAcceptWorkItem_OnPlainCraftsmanOrder() {
	ctx := context.Background()
	order := suite.acceptedOrder(domain.OrderTypeCraftsman)

	suite.expectTx()
	suite.mockOrderRepo.On("FindOrderByIDForUpdate", ctx, mock.Anything, order.OrderID).Return(order, nil).Once()

	_, err := suite.service.AcceptWorkItem(ctx, order.OrderID, uuid.NewString(), suite.requesterID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *OrderServiceTestSuite) TestAcceptWorkItem_Unpaid() {
	ctx := context.Background()
	order := suite.acceptedOrder(domain.OrderTypeGangmaster)
	order.GangmasterCost = decimal.NewFromInt(2000)
	target := paidItem(order.OrderID, 1, domain.WorkKindMasonry, 1000)
	target.IsPaid = false

	suite.expectTx()
	suite.mockOrderRepo.On("FindOrderByIDForUpdate", ctx, mock.Anything, order.OrderID).Return(order, nil).Once()
	suite.mockWorkItemRepo.On("FindItemsByOrderIDForUpdate", ctx, mock.Anything, order.OrderID).Return([]domain.WorkPriceItem{target}, nil).Once()

	_, err := suite.service.AcceptWorkItem(ctx, order.OrderID, target.ItemID, suite.requesterID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotPaid)
}

func (suite *OrderServiceTestSuite) TestAcceptWorkItem_UnknownItem() {
	ctx := context.Background()
	order := suite.acceptedOrder(domain.OrderTypeGangmaster)
	order.GangmasterCost = decimal.NewFromInt(2000)

	suite.expectTx()
	suite.mockOrderRepo.On("FindOrderByIDForUpdate", ctx, mock.Anything, order.OrderID).Return(order, nil).Once()
	suite.mockWorkItemRepo.On("FindItemsByOrderIDForUpdate", ctx, mock.Anything, order.OrderID).Return([]domain.WorkPriceItem{}, nil).Once()

	_, err := suite.service.AcceptWorkItem(ctx, order.OrderID, uuid.NewString(), suite.requesterID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

// --- CancelOrder ---

func (suite *OrderServiceTestSuite) TestCancelOrder_Success() {
	ctx := context.Background()
	order := suite.acceptedOrder(domain.OrderTypeCraftsman)

	suite.expectTx()
	suite.mockOrderRepo.On("FindOrderByIDForUpdate", ctx, mock.Anything, order.OrderID).Return(order, nil).Once()
	suite.mockOrderRepo.On("UpdateOrderStatusInTx", ctx, mock.Anything, order.OrderID, domain.OrderStatusCancelled, order.CraftsmanID, suite.requesterID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	err := suite.service.CancelOrder(ctx, order.OrderID, suite.requesterID)

	suite.Require().NoError(err)
	// Cancellation never claws money back; reversals are an offline concern.
	suite.mockWalletSvc.AssertNotCalled(suite.T(), "Debit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockOrderRepo.AssertExpectations(suite.T())
}

func (suite *OrderServiceTestSuite) TestCancelOrder_NotRequester() {
	ctx := context.Background()
	order := suite.acceptedOrder(domain.OrderTypeCraftsman)

	suite.expectTx()
	suite.mockOrderRepo.On("FindOrderByIDForUpdate", ctx, mock.Anything, order.OrderID).Return(order, nil).Once()

	err := suite.service.CancelOrder(ctx, order.OrderID, suite.craftsmanID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *OrderServiceTestSuite) TestCancelOrder_AlreadyCompleted() {
	ctx := context.Background()
	order := suite.acceptedOrder(domain.OrderTypeCraftsman)
	order.Status = domain.OrderStatusCompleted

	suite.expectTx()
	suite.mockOrderRepo.On("FindOrderByIDForUpdate", ctx, mock.Anything, order.OrderID).Return(order, nil).Once()

	err := suite.service.CancelOrder(ctx, order.OrderID, suite.requesterID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidState)
}

// --- GetOrder / ListOrders ---

func (suite *OrderServiceTestSuite) TestGetOrder_WithItems() {
	ctx := context.Background()
	order := suite.acceptedOrder(domain.OrderTypeCraftsman)
	items := []domain.WorkPriceItem{paidItem(order.OrderID, 1, domain.WorkKindPainting, 100)}

	suite.mockOrderRepo.On("FindOrderByID", ctx, order.OrderID).Return(order, nil).Once()
	suite.mockWorkItemRepo.On("FindItemsByOrderID", ctx, order.OrderID).Return(items, nil).Once()

	got, err := suite.service.GetOrder(ctx, order.OrderID, true)

	suite.Require().NoError(err)
	suite.Len(got.WorkItems, 1)
	suite.mockOrderRepo.AssertExpectations(suite.T())
}

func (suite *OrderServiceTestSuite) TestListOrders_DefaultsLimit() {
	ctx := context.Background()
	orders := []domain.Order{*suite.acceptedOrder(domain.OrderTypeCraftsman)}
	nextToken := "opaque-token"
	suite.mockOrderRepo.On("ListOrdersByUser", ctx, suite.requesterID, 20, (*string)(nil)).Return(orders, nextToken, nil).Once()

	resp, err := suite.service.ListOrders(ctx, suite.requesterID, dto.ListOrdersParams{})

	suite.Require().NoError(err)
	suite.Len(resp.Orders, 1)
	suite.Require().NotNil(resp.NextToken)
	suite.Equal(nextToken, *resp.NextToken)
}

func TestOrderServiceTestSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}
