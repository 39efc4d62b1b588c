package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleCapabilities(t *testing.T) {
	t.Run("catalog management", func(t *testing.T) {
		assert.False(t, RoleCustomer.CanManageCatalog())
		assert.True(t, RoleVendor.CanManageCatalog())
		assert.True(t, RoleAdmin.CanManageCatalog())
		assert.True(t, RoleSuperadmin.CanManageCatalog())
	})

	t.Run("administration", func(t *testing.T) {
		assert.False(t, RoleCustomer.CanAdminister())
		assert.False(t, RoleVendor.CanAdminister())
		assert.True(t, RoleAdmin.CanAdminister())
		assert.True(t, RoleSuperadmin.CanAdminister())
	})

	t.Run("only superadmins mint admin accounts", func(t *testing.T) {
		assert.False(t, RoleAdmin.CanGrantRole(RoleAdmin))
		assert.False(t, RoleAdmin.CanGrantRole(RoleSuperadmin))
		assert.True(t, RoleSuperadmin.CanGrantRole(RoleAdmin))
		assert.True(t, RoleCustomer.CanGrantRole(RoleVendor))
		assert.True(t, RoleCustomer.CanGrantRole(RoleCustomer))
	})

	t.Run("validity", func(t *testing.T) {
		assert.True(t, RoleVendor.Valid())
		assert.False(t, Role("Owner").Valid())
		assert.False(t, Role("").Valid())
	})
}
