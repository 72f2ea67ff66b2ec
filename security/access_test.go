package security

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildAccessTables(t *testing.T) {
	roles := map[string]Role{
		"ops":    {Name: "ops", UIDs: []string{"alice", "bob"}},
		"admins": {Name: "admins", UIDs: []string{"bob"}},
		"idle":   {Name: "idle", UIDs: []string{"carol"}},
	}
	permissions := Permissions{
		Endpoints: []EndpointPermission{
			{Name: "broker1", Roles: []string{"ops"}},
			{Name: "broker2", Roles: []string{"ops", "admins"}},
			{Name: "broker3", Roles: []string{"admins"}},
		},
		Admin: AdminPermission{Roles: []string{"admins"}},
	}

	userAccess, userRoles := buildAccessTables(roles, permissions)

	// an endpoint appears in a user's set iff one of the user's roles is
	// listed against it
	require.Equal(t, map[string]struct{}{"broker1": {}, "broker2": {}}, userAccess["alice"])
	require.Equal(t, map[string]struct{}{"broker1": {}, "broker2": {}, "broker3": {}}, userAccess["bob"])

	// a role granted no endpoints yields an empty set, not an error
	require.Empty(t, userAccess["carol"])
	require.Contains(t, userRoles["carol"], "idle")

	// a user belonging to no role has no entries at all
	require.NotContains(t, userAccess, "dave")
	require.NotContains(t, userRoles, "dave")

	require.Equal(t, map[string]struct{}{"ops": {}}, userRoles["alice"])
	require.Equal(t, map[string]struct{}{"ops": {}, "admins": {}}, userRoles["bob"])
}
