package models

import (
	"github.com/casaverde/backoffice/internal/domain/identity"
)

// UserModel is the persistence model for back-office users.
type UserModel struct {
	BaseModel
	Username    string            `gorm:"type:varchar(50);not null;uniqueIndex"`
	FullName    string            `gorm:"type:varchar(200)"`
	Email       string            `gorm:"type:varchar(200);index"`
	Role        identity.RoleCode `gorm:"type:varchar(30);not null;index"`
	IsSuperuser bool              `gorm:"not null;default:false"`
	IsActive    bool              `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseEntity:  m.BaseModel.ToDomain(),
		Username:    m.Username,
		FullName:    m.FullName,
		Email:       m.Email,
		Role:        m.Role,
		IsSuperuser: m.IsSuperuser,
		IsActive:    m.IsActive,
	}
}
