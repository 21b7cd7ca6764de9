package session

import "fmt"

// Role is resolved once at login and carried with the session.
type Role int

// Roles, from least to most privileged.
const (
	Anonymous Role = iota
	Visitor
	Owner
)

func (r Role) String() string {
	switch r {
	case Visitor:
		return "visitor"
	case Owner:
		return "owner"
	default:
		return "anonymous"
	}
}

// MarshalText encodes the role by name.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText decodes a role name.
func (r *Role) UnmarshalText(b []byte) error {
	role, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = role
	return nil
}

// ParseRole converts a role name to a Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "anonymous", "":
		return Anonymous, nil
	case "visitor":
		return Visitor, nil
	case "owner":
		return Owner, nil
	}
	return Anonymous, fmt.Errorf("unknown role %q", s)
}
