package models

// Role is the persisted account role
type Role string

const (
	RoleAdult  Role = "Adult"
	RoleParent Role = "Parent"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleAdult || r == RoleParent
}

// UserType is the coarse account type shown to the client. It is derived from
// Role on read and never stored.
type UserType string

const (
	UserTypeIndividual UserType = "individual"
	UserTypeParent     UserType = "parent"
)

// UserType maps the role to its account type
func (r Role) UserType() UserType {
	if r == RoleParent {
		return UserTypeParent
	}
	return UserTypeIndividual
}

// RoleFor maps an account type chosen during setup back to a role
func RoleFor(t UserType) (Role, bool) {
	switch t {
	case UserTypeParent:
		return RoleParent, true
	case UserTypeIndividual:
		return RoleAdult, true
	default:
		return "", false
	}
}

// User is the signed-in identity on a device. Field names follow the
// persisted JSON record.
type User struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Role        Role   `json:"role"`
	HasChildren bool   `json:"hasChildren"`
	Language    string `json:"language"`
	IsFirstTime bool   `json:"isFirstTime"`
}

// UserType is derived from the role
func (u *User) UserType() UserType {
	return u.Role.UserType()
}

// IsParent reports whether the user may manage child profiles
func (u *User) IsParent() bool {
	return u.Role == RoleParent
}
