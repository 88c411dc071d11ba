// Package roles holds the fixed role set and the capability table derived
// from it. The table is constructed once at startup and injected into
// services rather than referenced as package state.
package roles

// Role is one of the four fixed application roles.
type Role string

const (
	SuperAdmin     Role = "super_admin"
	Admin          Role = "admin"
	ContentManager Role = "content_manager"
	Executor       Role = "executor"
)

// All lists every valid role in privilege order.
func All() []Role {
	return []Role{SuperAdmin, Admin, ContentManager, Executor}
}

// Parse validates a raw role string.
func Parse(raw string) (Role, bool) {
	switch Role(raw) {
	case SuperAdmin, Admin, ContentManager, Executor:
		return Role(raw), true
	}
	return "", false
}

// Permissions describes what a single role may do outside the content plan.
// Content-plan write access is carried per bucket by the bucket registry.
type Permissions struct {
	ManageUsers   bool
	ManageRoadmap bool
}

// Table is the immutable role to capability mapping.
type Table map[Role]Permissions

// DefaultTable builds the standard capability table.
func DefaultTable() Table {
	return Table{
		SuperAdmin:     {ManageUsers: true, ManageRoadmap: true},
		Admin:          {ManageUsers: true},
		ContentManager: {},
		Executor:       {},
	}
}

// CanManageUsers reports whether actor may manage user accounts at all.
func (t Table) CanManageUsers(actor Role) bool {
	return t[actor].ManageUsers
}

// CanManageUser reports whether actor may modify an account holding target.
// Super admins manage everyone; admins manage content managers and executors
// only.
func (t Table) CanManageUser(actor, target Role) bool {
	switch actor {
	case SuperAdmin:
		return true
	case Admin:
		return target == ContentManager || target == Executor
	}
	return false
}

// AssignableRoles lists the roles actor may grant when creating or updating
// an account.
func (t Table) AssignableRoles(actor Role) []Role {
	switch actor {
	case SuperAdmin:
		return All()
	case Admin:
		return []Role{ContentManager, Executor}
	}
	return nil
}
