package domain

import (
	"sort"
	"strings"
)

// Role enumerates the closed set of workflow roles.
type Role uint8

const (
	RoleReporter Role = iota
	RoleTechnician
	RoleSupervisor
	RoleEngineer
	RoleMaintenanceManager
	RoleAdmin
	RoleSystem
)

var roleNames = map[Role]string{
	RoleReporter:           "reporter",
	RoleTechnician:         "technician",
	RoleSupervisor:         "supervisor",
	RoleEngineer:           "engineer",
	RoleMaintenanceManager: "maintenance_manager",
	RoleAdmin:              "admin",
	RoleSystem:             "system",
}

// externalRoles is the canonical mapping from platform role identifiers.
// RoleSystem is never granted from outside.
var externalRoles = map[string]Role{
	"reporter":            RoleReporter,
	"user":                RoleReporter,
	"staff":               RoleReporter,
	"nurse":               RoleReporter,
	"technician":          RoleTechnician,
	"tech":                RoleTechnician,
	"supervisor":          RoleSupervisor,
	"engineer":            RoleEngineer,
	"maintenance_manager": RoleMaintenanceManager,
	"manager":             RoleMaintenanceManager,
	"facility_manager":    RoleMaintenanceManager,
	"admin":               RoleAdmin,
	"super_admin":         RoleAdmin,
	"owner":               RoleAdmin,
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "unknown"
}

// ParseRole maps an external role identifier onto the closed role set.
func ParseRole(raw string) (Role, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.ReplaceAll(key, "-", "_")
	role, ok := externalRoles[key]
	return role, ok
}

// RoleSet is a bit set of roles.
type RoleSet uint16

// NewRoleSet builds a set from roles.
func NewRoleSet(roles ...Role) RoleSet {
	var set RoleSet
	for _, r := range roles {
		set = set.With(r)
	}
	return set
}

// ParseRoleSet maps external identifiers, returning the ones it could not map.
func ParseRoleSet(raw []string) (RoleSet, []string) {
	var set RoleSet
	var unknown []string
	for _, item := range raw {
		role, ok := ParseRole(item)
		if !ok {
			unknown = append(unknown, item)
			continue
		}
		set = set.With(role)
	}
	return set, unknown
}

// With returns a copy of the set including r.
func (s RoleSet) With(r Role) RoleSet {
	return s | 1<<r
}

// Has reports membership of r.
func (s RoleSet) Has(r Role) bool {
	return s&(1<<r) != 0
}

// HasAny reports whether any of roles is present.
func (s RoleSet) HasAny(roles ...Role) bool {
	for _, r := range roles {
		if s.Has(r) {
			return true
		}
	}
	return false
}

// Roles lists the members in declaration order.
func (s RoleSet) Roles() []Role {
	var out []Role
	for r := RoleReporter; r <= RoleSystem; r++ {
		if s.Has(r) {
			out = append(out, r)
		}
	}
	return out
}

// Strings lists member names sorted alphabetically.
func (s RoleSet) Strings() []string {
	roles := s.Roles()
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, r.String())
	}
	sort.Strings(out)
	return out
}

func (s RoleSet) String() string {
	return strings.Join(s.Strings(), ",")
}
