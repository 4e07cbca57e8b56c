package mapping

import (
	"github.com/renohub/reno_backend/internal/core/domain"
	"github.com/renohub/reno_backend/internal/models"
)

// ToModelUser converts a domain User to a model User.
func ToModelUser(d domain.User) models.User {
	return models.User{
		UserID:       d.UserID,
		Name:         d.Name,
		Phone:        d.Phone,
		Role:         models.UserRole(d.Role),
		PasswordHash: d.PasswordHash,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainUser converts a model User to a domain User.
func ToDomainUser(m models.User) domain.User {
	return domain.User{
		UserID:       m.UserID,
		Name:         m.Name,
		Phone:        m.Phone,
		Role:         domain.UserRole(m.Role),
		PasswordHash: m.PasswordHash,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}
