package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role names. They are matched exactly; no hierarchy is implied between them.
const (
	RoleSystemAdministrator = "System Administrator"
	RolePoliceChief         = "Police Chief"
	RoleCaptain             = "Captain"
	RoleSergeant            = "Sergeant"
	RoleDetective           = "Detective"
	RolePoliceOfficer       = "Police Officer"
	RolePatrolOfficer       = "Patrol Officer"
	RoleCadet               = "Cadet"
	RoleForensicDoctor      = "Forensic Doctor"
	RoleJudge               = "Judge"
	RoleBasicUser           = "Basic User"
	RoleComplainant         = "Complainant"
)

// KnownRoles is the set of role names the seeding tools accept.
var KnownRoles = []string{
	RoleSystemAdministrator,
	RolePoliceChief,
	RoleCaptain,
	RoleSergeant,
	RoleDetective,
	RolePoliceOfficer,
	RolePatrolOfficer,
	RoleCadet,
	RoleForensicDoctor,
	RoleJudge,
	RoleBasicUser,
	RoleComplainant,
}

// UserRole assigns one role to one user
type UserRole struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	UserID   string `gorm:"type:uuid;not null;uniqueIndex:idx_user_role" json:"user_id"`
	Role     string `gorm:"not null;uniqueIndex:idx_user_role" json:"role"`
	IsActive bool   `gorm:"not null;default:true" json:"is_active"`
}

func (r *UserRole) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

func (UserRole) TableName() string {
	return "user_roles"
}

// IsKnownRole checks if the role name is one of KnownRoles
func IsKnownRole(role string) bool {
	for _, r := range KnownRoles {
		if r == role {
			return true
		}
	}
	return false
}
