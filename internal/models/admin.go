package models

import "time"

// AdminRole is the coarse role of a back-office account.
type AdminRole string

const (
	RoleSuperAdmin     AdminRole = "super_admin"
	RoleProductManager AdminRole = "product_manager"
	RoleContentManager AdminRole = "content_manager"
)

// Permissions checked by the route guards.
const (
	PermProductsView  = "products.view"
	PermProductsEdit  = "products.edit"
	PermCatalogEdit   = "catalog.edit"
	PermAdminsManage  = "admins.manage"
	PermCustomersView = "customers.view"
)

// DefaultPermissions returns the permissions granted to a role when none are
// given explicitly.
func DefaultPermissions(role AdminRole) []string {
	switch role {
	case RoleSuperAdmin:
		return []string{PermProductsView, PermProductsEdit, PermCatalogEdit, PermAdminsManage, PermCustomersView}
	case RoleContentManager:
		return []string{PermProductsView, PermCatalogEdit}
	default:
		return []string{PermProductsView, PermProductsEdit}
	}
}

// Admin is a back-office account.
type Admin struct {
	ID          uint64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Username    string     `json:"username" gorm:"type:varchar(100);uniqueIndex;not null"`
	Email       string     `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Password    string     `json:"-" gorm:"type:varchar(255);not null"`
	FullName    string     `json:"fullName" gorm:"type:varchar(200)"`
	Role        AdminRole  `json:"role" gorm:"type:varchar(30);not null;default:'product_manager'"`
	Permissions StringList `json:"permissions"`
	IsActive    bool       `json:"isActive" gorm:"not null"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// HasPermission reports whether the admin may perform perm. Super admins
// hold every permission.
func (a *Admin) HasPermission(perm string) bool {
	if a.Role == RoleSuperAdmin {
		return true
	}
	return Contains(a.Permissions, perm)
}
