package domain

// UserRole separates customers placing orders from craftsmen executing them.
type UserRole string

const (
	RoleCustomer  UserRole = "CUSTOMER"
	RoleCraftsman UserRole = "CRAFTSMAN"
)

// User represents a platform account: a customer or a craftsman (a gangmaster
// is a craftsman executing a GANGMASTER order, not a separate role).
type User struct {
	UserID       string   `json:"userID"`
	Name         string   `json:"name"`
	Phone        string   `json:"phone"`
	Role         UserRole `json:"role"`
	PasswordHash string   `json:"-"`
	AuditFields
}
