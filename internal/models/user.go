package models

// UserRole mirrors domain.UserRole for persistence.
type UserRole string

// User is the database representation of a platform account.
type User struct {
	UserID       string
	Name         string
	Phone        string
	Role         UserRole
	PasswordHash string
	AuditFields
}
