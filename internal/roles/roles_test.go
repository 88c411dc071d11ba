package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	for _, role := range All() {
		parsed, ok := Parse(string(role))
		require.True(t, ok)
		assert.Equal(t, role, parsed)
	}

	_, ok := Parse("moderator")
	assert.False(t, ok)
	_, ok = Parse("")
	assert.False(t, ok)
}

func TestCanManageUsers(t *testing.T) {
	table := DefaultTable()

	assert.True(t, table.CanManageUsers(SuperAdmin))
	assert.True(t, table.CanManageUsers(Admin))
	assert.False(t, table.CanManageUsers(ContentManager))
	assert.False(t, table.CanManageUsers(Executor))
}

func TestCanManageUser(t *testing.T) {
	table := DefaultTable()

	tests := []struct {
		name   string
		actor  Role
		target Role
		want   bool
	}{
		{"super admin manages super admin", SuperAdmin, SuperAdmin, true},
		{"super admin manages admin", SuperAdmin, Admin, true},
		{"super admin manages executor", SuperAdmin, Executor, true},
		{"admin cannot touch super admin", Admin, SuperAdmin, false},
		{"admin cannot touch admin", Admin, Admin, false},
		{"admin manages content manager", Admin, ContentManager, true},
		{"admin manages executor", Admin, Executor, true},
		{"content manager manages nobody", ContentManager, Executor, false},
		{"executor manages nobody", Executor, Executor, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, table.CanManageUser(tc.actor, tc.target))
		})
	}
}

func TestAssignableRoles(t *testing.T) {
	table := DefaultTable()

	assert.ElementsMatch(t, All(), table.AssignableRoles(SuperAdmin))
	assert.ElementsMatch(t, []Role{ContentManager, Executor}, table.AssignableRoles(Admin))
	assert.Empty(t, table.AssignableRoles(ContentManager))
	assert.Empty(t, table.AssignableRoles(Executor))
}
