package models

import "slices"

type Role int

const (
	NO_ROLE Role = iota
	VIEWER
	MANAGER
	ADMIN
)

func (r Role) String() string {
	switch r {
	case NO_ROLE:
		return "NO_ROLE"
	case VIEWER:
		return "VIEWER"
	case MANAGER:
		return "MANAGER"
	case ADMIN:
		return "ADMIN"
	default:
		return "UNKNOWN_ROLE"
	}
}

func (r Role) Permissions() []Permission {
	permissions := ROLES_PERMISSIONS[r]
	if permissions == nil {
		return []Permission{}
	}
	return permissions
}

func (r Role) HasPermission(permission Permission) bool {
	return slices.Contains(r.Permissions(), permission)
}

func RoleFromString(s string) Role {
	switch s {
	case "VIEWER":
		return VIEWER
	case "MANAGER":
		return MANAGER
	case "ADMIN":
		return ADMIN
	}
	return NO_ROLE
}
