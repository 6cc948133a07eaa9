package services

import (
	"sort"
	"strings"

	"police_flow_app_go/models"

	"gorm.io/gorm"
)

// policeStaffRoles are the roles that work complaints and cases from the inside
var policeStaffRoles = []string{
	models.RoleSystemAdministrator,
	models.RolePoliceChief,
	models.RoleCaptain,
	models.RoleSergeant,
	models.RoleDetective,
	models.RolePoliceOfficer,
	models.RolePatrolOfficer,
	models.RoleCadet,
}

// Caller is the resolved identity handed to every workflow operation
type Caller struct {
	UserID string
	Name   string
	Roles  map[string]bool
}

// NewCaller builds a caller from an id and its active role names
func NewCaller(userID string, roles ...string) Caller {
	c := Caller{UserID: userID, Roles: make(map[string]bool, len(roles))}
	for _, r := range roles {
		c.Roles[r] = true
	}
	return c
}

// ResolveCaller loads an active user and its active roles
func ResolveCaller(db *gorm.DB, userID string) (Caller, error) {
	var user models.User
	err := db.Preload("Roles", "is_active = ?", true).
		Where("is_active = ?", true).
		First(&user, "id = ?", userID).Error
	if err != nil {
		return Caller{}, notFoundOr(err, ErrUserNotFound, "user")
	}
	c := NewCaller(user.ID, user.RoleNames()...)
	c.Name = user.Name
	return c, nil
}

// Has reports whether the caller holds the role
func (c Caller) Has(role string) bool {
	return c.Roles[role]
}

// HasAny reports whether the caller holds at least one of the roles
func (c Caller) HasAny(roles ...string) bool {
	for _, r := range roles {
		if c.Roles[r] {
			return true
		}
	}
	return false
}

// IsOnlyCadet reports whether Cadet is the caller's only role
func (c Caller) IsOnlyCadet() bool {
	return len(c.Roles) == 1 && c.Roles[models.RoleCadet]
}

// HasNonCadetRole reports whether the caller holds any role other than Cadet
func (c Caller) HasNonCadetRole() bool {
	for r, ok := range c.Roles {
		if ok && r != models.RoleCadet {
			return true
		}
	}
	return false
}

// RoleList returns the caller's roles sorted by name
func (c Caller) RoleList() []string {
	list := make([]string, 0, len(c.Roles))
	for r, ok := range c.Roles {
		if ok {
			list = append(list, r)
		}
	}
	sort.Strings(list)
	return list
}

func (c Caller) String() string {
	return c.UserID + " [" + strings.Join(c.RoleList(), ", ") + "]"
}

// require fails with AuthorizationDenied unless the caller holds one of the roles
func (c Caller) require(action string, roles ...string) error {
	if !c.HasAny(roles...) {
		return deny(action)
	}
	return nil
}

// userHasRole checks a target user's active role assignment
func userHasRole(db *gorm.DB, userID, role string) (bool, error) {
	var count int64
	err := db.Model(&models.UserRole{}).
		Joins("JOIN users ON users.id = user_roles.user_id AND users.deleted_at IS NULL").
		Where("user_roles.user_id = ? AND user_roles.role = ? AND user_roles.is_active = ?", userID, role, true).
		Count(&count).Error
	return count > 0, err
}
