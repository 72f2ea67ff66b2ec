package security_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gaohoward/activemq-artemis-jolokia-api-server/security"
)

// writeSecurityFiles lays down the three store files in a temp dir and
// returns their paths. Passwords are bcrypt-hashed with the user id +
// "-pass" convention.
func writeSecurityFiles(t *testing.T, users []string, roles, access string) (string, string, string) {
	t.Helper()
	dir := t.TempDir()

	usersYAML := "users:\n"
	for _, id := range users {
		hash, err := security.HashPassword(id + "-pass")
		require.NoError(t, err)
		usersYAML += "  - id: " + id + "\n    hash: " + hash + "\n"
	}
	usersFile := filepath.Join(dir, ".users.yaml")
	require.NoError(t, os.WriteFile(usersFile, []byte(usersYAML), 0o600))

	rolesFile := filepath.Join(dir, ".roles.yaml")
	require.NoError(t, os.WriteFile(rolesFile, []byte(roles), 0o600))

	accessFile := filepath.Join(dir, ".access.yaml")
	require.NoError(t, os.WriteFile(accessFile, []byte(access), 0o600))

	return usersFile, rolesFile, accessFile
}

const testRoles = `
roles:
  - name: ops
    uids: [alice]
  - name: admins
    uids: [bob]
  - name: idle
    uids: [carol]
`

const testAccess = `
endpoints:
  - name: broker1
    roles: [ops]
  - name: broker2
    roles: [admins]
admin:
  roles: [admins]
`

func newTestStore(t *testing.T) *security.Store {
	t.Helper()
	usersFile, rolesFile, accessFile := writeSecurityFiles(t, []string{"alice", "bob", "carol", "dave"}, testRoles, testAccess)
	store, err := security.NewStore(usersFile, rolesFile, accessFile)
	require.NoError(t, err)
	return store
}

func TestFindUser(t *testing.T) {
	store := newTestStore(t)

	u, err := store.FindUser("alice")
	require.NoError(t, err)
	require.Equal(t, "alice", u.ID)

	_, err = store.FindUser("mallory")
	require.ErrorIs(t, err, security.ErrUserNotFound)
}

func TestAuthenticate(t *testing.T) {
	store := newTestStore(t)

	u := store.Authenticate("alice", "alice-pass")
	require.NotNil(t, u)
	require.Equal(t, "alice", u.ID)

	require.Nil(t, store.Authenticate("alice", "wrong"))
	require.Nil(t, store.Authenticate("mallory", "alice-pass"))
}

func TestMissingFilesYieldEmptyStore(t *testing.T) {
	dir := t.TempDir()
	store, err := security.NewStore(
		filepath.Join(dir, "nope-users.yaml"),
		filepath.Join(dir, "nope-roles.yaml"),
		filepath.Join(dir, "nope-access.yaml"),
	)
	require.NoError(t, err)

	_, err = store.FindUser("alice")
	require.ErrorIs(t, err, security.ErrUserNotFound)
	require.Nil(t, store.Authenticate("alice", "alice-pass"))
}
