// internal/models/user.go
package models

import "time"

type UserRole string

const (
	RoleAdmin    UserRole = "ADMIN"
	RoleManager  UserRole = "MANAGER"
	RoleTeamLead UserRole = "TEAM_LEAD"
	RoleMember   UserRole = "MEMBER"
)

func ValidRole(r UserRole) bool {
	switch r {
	case RoleAdmin, RoleManager, RoleTeamLead, RoleMember:
		return true
	}
	return false
}

type User struct {
	ID           string   `gorm:"type:uuid;primaryKey" json:"id"`
	Role         UserRole `gorm:"type:varchar(20);not null" json:"role"`
	FullName     string   `gorm:"not null" json:"full_name"`
	Email        string   `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string   `gorm:"not null" json:"-"`

	// ManagerID is the user this employee reports to. TEAM_LEAD visibility
	// scope is derived from it.
	ManagerID *string `gorm:"type:uuid;index" json:"manager_id"`
	IsActive  bool    `gorm:"not null;default:true" json:"is_active"`

	TOTPSecret  string `json:"-"`
	TOTPEnabled bool   `gorm:"not null;default:false" json:"totp_enabled"`

	FailedLoginCount int        `gorm:"not null;default:0" json:"-"`
	LockoutLevel     int        `gorm:"not null;default:0" json:"-"`
	LockoutUntil     *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
