package services

import (
	portsrepo "github.com/renohub/reno_backend/internal/core/ports/repositories"
	portssvc "github.com/renohub/reno_backend/internal/core/ports/services"
	"github.com/renohub/reno_backend/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Notifier = NewLogNotifier()
	container.Wallet = NewWalletService(repos.WalletRepo)
	container.WorkItem = NewWorkItemService(repos.WorkItemRepo, repos.OrderRepo)
	container.Order = NewOrderService(repos.OrderRepo, repos.WorkItemRepo, container.WorkItem, container.Wallet, container.Notifier)
	container.Assignment = NewAssignmentService(repos.OrderRepo, repos.WorkItemRepo)
	container.User = NewUserService(repos.UserRepo, cfg)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.OrderSvcFacade      = (*orderService)(nil)
	_ portssvc.WalletSvcFacade     = (*walletService)(nil)
	_ portssvc.WorkItemSvcFacade   = (*workItemService)(nil)
	_ portssvc.AssignmentSvcFacade = (*assignmentService)(nil)
)
