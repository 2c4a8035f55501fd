package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRolePermissions(t *testing.T) {
	tests := []struct {
		role Role
		perm Permission
		want bool
	}{
		{RoleUser, PermViewLockers, true},
		{RoleUser, PermReserveLocker, true},
		{RoleUser, PermManageLockers, false},
		{RoleUser, PermViewAllReservations, false},
		{RoleAdmin, PermViewLockers, true},
		{RoleAdmin, PermReserveLocker, true},
		{RoleAdmin, PermManageLockers, true},
		{RoleAdmin, PermViewAllReservations, true},
		{Role(""), PermViewLockers, false},
		{Role("superuser"), PermManageLockers, false},
	}
	for _, tt := range tests {
		assert.Equalf(t, tt.want, tt.role.Can(tt.perm), "%s.Can(%s)", tt.role, tt.perm)
	}
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole("user"))
	assert.True(t, ValidRole("admin"))
	assert.False(t, ValidRole(""))
	assert.False(t, ValidRole("ADMIN"))
	assert.False(t, ValidRole("owner"))
}
