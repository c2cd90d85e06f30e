package models

import "time"

type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleMechanic UserRole = "mechanic"
)

func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleMechanic
}

type User struct {
	ID        uint     `gorm:"primaryKey"`
	Username  string   `gorm:"size:100;uniqueIndex;not null"`
	FullName  string   `gorm:"size:100;not null"`
	Email     string   `gorm:"size:255;uniqueIndex;not null"`
	Phone     string   `gorm:"size:20"`
	Role      UserRole `gorm:"size:20;not null"`
	PinHash   string   `gorm:"size:255;not null"` // bcrypt of the login PIN
	CreatedAt time.Time
	UpdatedAt time.Time
}
