package model

// Role is the closed set of user roles in the garage
type Role string

const (
	RoleManager  Role = "manager"
	RoleMechanic Role = "mechanic"
	RoleClient   Role = "client"
)

// ParseRole maps a stored or submitted role string onto the closed enum
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleManager, RoleMechanic, RoleClient:
		return Role(s), true
	}
	return "", false
}

// Valid reports whether the role is one of the recognized values
func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}
