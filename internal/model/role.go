package model

import "strings"

// Role is a position in the staff hierarchy. Roles are totally ordered:
// STAFF < NURSE < DOCTOR < ADMIN.
type Role string

const (
	RoleStaff  Role = "STAFF"
	RoleNurse  Role = "NURSE"
	RoleDoctor Role = "DOCTOR"
	RoleAdmin  Role = "ADMIN"
)

var roleOrder = []Role{RoleStaff, RoleNurse, RoleDoctor, RoleAdmin}

// Roles lists every role from least to most privileged.
func Roles() []Role {
	out := make([]Role, len(roleOrder))
	copy(out, roleOrder)
	return out
}

// ParseRole accepts a role name in any case.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	return r, r.Valid()
}

// Level is the rank of r in the hierarchy; unknown roles rank 0.
func (r Role) Level() int {
	for i, role := range roleOrder {
		if role == r {
			return i + 1
		}
	}
	return 0
}

func (r Role) Valid() bool {
	return r.Level() > 0
}

// AtLeast reports whether r grants everything required grants.
func (r Role) AtLeast(required Role) bool {
	return r.Valid() && r.Level() >= required.Level()
}

func (r Role) String() string {
	return string(r)
}
