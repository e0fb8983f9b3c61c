package models

// Role is the access level of a portal account.
type Role string

const (
	RoleClient    Role = "client"
	RoleTherapist Role = "therapist"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleTherapist, RoleAdmin:
		return true
	}
	return false
}

// legacyRoles maps role names written by older versions of the portal.
var legacyRoles = map[string]Role{
	"":              RoleClient,
	"user":          RoleClient,
	"customer":      RoleClient,
	"patient":       RoleClient,
	"member":        RoleClient,
	"doctor":        RoleTherapist,
	"practitioner":  RoleTherapist,
	"provider":      RoleTherapist,
	"staff":         RoleTherapist,
	"superadmin":    RoleAdmin,
	"administrator": RoleAdmin,
}

// NormalizeRole maps a legacy role name to the current role set. The second
// result is false when the name is neither current nor a known legacy name.
func NormalizeRole(name string) (Role, bool) {
	if r := Role(name); r.Valid() {
		return r, true
	}
	r, ok := legacyRoles[name]
	return r, ok
}

// EntityStatus is the soft-delete flag shared by users, therapists and services.
type EntityStatus string

const (
	StatusActive   EntityStatus = "active"
	StatusInactive EntityStatus = "inactive"
)
