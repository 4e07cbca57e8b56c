package repositories

// RepositoryProvider bundles all repository implementations for injection
// into the service container.
type RepositoryProvider struct {
	OrderRepo    OrderRepositoryWithTx
	WorkItemRepo WorkItemRepositoryFacade
	WalletRepo   WalletRepositoryWithTx
	UserRepo     UserRepository
}
