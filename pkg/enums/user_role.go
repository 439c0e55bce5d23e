package enums

import "fmt"

// UserRole is the platform-wide permission class of a user.
type UserRole string

const (
	UserRoleUser      UserRole = "user"
	UserRoleStaff     UserRole = "staff"
	UserRoleSuperuser UserRole = "superuser"
)

var validUserRoles = []UserRole{
	UserRoleUser,
	UserRoleStaff,
	UserRoleSuperuser,
}

// String implements fmt.Stringer.
func (u UserRole) String() string {
	return string(u)
}

// IsValid reports whether the value is known.
func (u UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}

// IsStaff reports whether the role bypasses catalog visibility and entitlement checks.
func (u UserRole) IsStaff() bool {
	return u == UserRoleStaff || u == UserRoleSuperuser
}
