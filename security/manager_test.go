package security_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gaohoward/activemq-artemis-jolokia-api-server/security"
	"github.com/gaohoward/activemq-artemis-jolokia-api-server/token"
)

const secretStr = "manager-test-secret"

func newTestManager(t *testing.T) *security.Manager {
	t.Helper()
	signer, err := token.NewHMACSigner(secretStr)
	require.NoError(t, err)
	manager, err := security.NewManager(newTestStore(t), signer)
	require.NoError(t, err)
	return manager
}

func TestLogin(t *testing.T) {
	manager := newTestManager(t)

	_, err := manager.Login(security.Credential{UserName: "alice", Password: "wrong"})
	require.ErrorIs(t, err, security.ErrWrongCredentials)
	require.False(t, manager.IsLoggedIn("alice"))

	bearer, err := manager.Login(security.Credential{UserName: "alice", Password: "alice-pass"})
	require.NoError(t, err)
	require.NotEmpty(t, bearer)
	require.True(t, manager.IsLoggedIn("alice"))
}

func TestLoginIdempotence(t *testing.T) {
	manager := newTestManager(t)

	// a second login overwrites rather than stacks
	_, err := manager.Login(security.Credential{UserName: "alice", Password: "alice-pass"})
	require.NoError(t, err)
	_, err = manager.Login(security.Credential{UserName: "alice", Password: "alice-pass"})
	require.NoError(t, err)

	manager.LogOut(security.User{ID: "alice"})
	require.False(t, manager.IsLoggedIn("alice"))

	// logging out an absent user is a no-op
	manager.LogOut(security.User{ID: "alice"})
	require.False(t, manager.IsLoggedIn("alice"))
}

func TestValidateRequest(t *testing.T) {
	manager := newTestManager(t)

	bearer, err := manager.Login(security.Credential{UserName: "alice", Password: "alice-pass"})
	require.NoError(t, err)

	r := httptest.NewRequest("GET", "/api/v1/brokers", nil)
	_, err = manager.ValidateRequest(r)
	require.ErrorIs(t, err, security.ErrUnauthenticated)

	r.Header.Set("Authorization", "Bearer "+bearer)
	user, err := manager.ValidateRequest(r)
	require.NoError(t, err)
	require.Equal(t, "alice", user.ID)

	r.Header.Set("Authorization", "Bearer not-a-token")
	_, err = manager.ValidateRequest(r)
	require.ErrorIs(t, err, security.ErrSessionExpired)
}

func TestValidateRequestExpiry(t *testing.T) {
	manager := newTestManager(t)

	issued := time.Now()
	token.NowTimeFunc = func() time.Time { return issued }
	defer func() { token.NowTimeFunc = time.Now }()

	bearer, err := manager.Login(security.Credential{UserName: "alice", Password: "alice-pass"})
	require.NoError(t, err)

	r := httptest.NewRequest("GET", "/api/v1/brokers", nil)
	r.Header.Set("Authorization", "Bearer "+bearer)

	_, err = manager.ValidateRequest(r)
	require.NoError(t, err)

	token.NowTimeFunc = func() time.Time { return issued.Add(token.SessionLifetime + time.Minute) }
	_, err = manager.ValidateRequest(r)
	require.ErrorIs(t, err, security.ErrSessionExpired)
}

func TestCheckPermissionsOnEndpoints(t *testing.T) {
	manager := newTestManager(t)

	alice := security.User{ID: "alice"} // role ops, granted broker1
	bob := security.User{ID: "bob"}     // role admins, granted broker2
	carol := security.User{ID: "carol"} // role idle, no endpoint grants
	dave := security.User{ID: "dave"}   // no roles at all

	require.NoError(t, manager.CheckPermissions(alice, security.PermissionEndpoints, "broker1"))
	require.ErrorIs(t, manager.CheckPermissions(alice, security.PermissionEndpoints, "broker2"), security.ErrNoPermission)
	require.NoError(t, manager.CheckPermissions(bob, security.PermissionEndpoints, "broker2"))

	// the three denial causes collapse to the same outcome
	require.ErrorIs(t, manager.CheckPermissions(alice, security.PermissionEndpoints), security.ErrNoPermission)
	require.ErrorIs(t, manager.CheckPermissions(dave, security.PermissionEndpoints, "broker1"), security.ErrNoPermission)
	require.ErrorIs(t, manager.CheckPermissions(carol, security.PermissionEndpoints, "broker1"), security.ErrNoPermission)
}

func TestCheckPermissionsOnAdmin(t *testing.T) {
	manager := newTestManager(t)

	require.NoError(t, manager.CheckPermissions(security.User{ID: "bob"}, security.PermissionAdmin))
	require.ErrorIs(t, manager.CheckPermissions(security.User{ID: "alice"}, security.PermissionAdmin), security.ErrNoPermission)

	// a user with zero roles must fail cleanly, not crash
	require.ErrorIs(t, manager.CheckPermissions(security.User{ID: "dave"}, security.PermissionAdmin), security.ErrNoPermission)
}

func TestCheckPermissionsInvalidType(t *testing.T) {
	manager := newTestManager(t)
	err := manager.CheckPermissions(security.User{ID: "alice"}, security.PermissionType("bogus"))
	require.ErrorIs(t, err, security.ErrInvalidPermissionType)
}
