package security

import (
	"net/http"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/gaohoward/activemq-artemis-jolokia-api-server/token"
)

// PermissionType selects which permission check to run.
type PermissionType string

const (
	PermissionEndpoints PermissionType = "endpoints"
	PermissionAdmin     PermissionType = "admin"
)

// Credential is the server login request body.
type Credential struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
}

// SessionAuthority establishes and validates api server sessions. A single
// JWT-backed implementation exists today; the interface is the seam for a
// second token strategy.
type SessionAuthority interface {
	// Login authenticates the credential and returns a signed session
	// token. Fails with ErrWrongCredentials.
	Login(credential Credential) (string, error)

	// LogOut removes the user from the active session set. Always
	// succeeds; logging out an absent user is a no-op.
	LogOut(user User)

	// ValidateRequest checks the bearer token on the request and resolves
	// the session owner. Fails with ErrUnauthenticated when no token is
	// present and ErrSessionExpired when the token does not verify.
	ValidateRequest(r *http.Request) (User, error)

	// CheckPermissions verifies the user may perform the action. The
	// endpoints check takes the target endpoint name as data.
	CheckPermissions(user User, permType PermissionType, data ...string) error
}

// Manager is the JWT-backed SessionAuthority.
type Manager struct {
	store  *Store
	signer token.Signer

	mu          sync.Mutex
	activeUsers map[string]struct{}
}

var _ SessionAuthority = (*Manager)(nil)

// NewManager creates a session manager over the given store and signer.
func NewManager(store *Store, signer token.Signer) (*Manager, error) {
	if store == nil {
		return nil, errors.New("[NewManager] store is required")
	}
	if signer == nil {
		return nil, errors.New("[NewManager] signer is required")
	}
	return &Manager{
		store:       store,
		signer:      signer,
		activeUsers: make(map[string]struct{}),
	}, nil
}

func (m *Manager) Login(credential Credential) (string, error) {
	user := m.store.Authenticate(credential.UserName, credential.Password)
	if user == nil {
		return "", ErrWrongCredentials
	}
	signedToken, err := m.signer.Sign(user.ID)
	if err != nil {
		return "", errors.Wrap(err, "[Manager.Login] sign token")
	}
	m.mu.Lock()
	// a second login overwrites the existing session rather than stacking
	m.activeUsers[user.ID] = struct{}{}
	m.mu.Unlock()
	return signedToken, nil
}

func (m *Manager) LogOut(user User) {
	m.mu.Lock()
	delete(m.activeUsers, user.ID)
	m.mu.Unlock()
}

// IsLoggedIn reports whether the user currently holds an active session.
func (m *Manager) IsLoggedIn(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.activeUsers[id]
	return ok
}

func (m *Manager) ValidateRequest(r *http.Request) (User, error) {
	raw := bearerToken(r)
	if raw == "" {
		return User{}, ErrUnauthenticated
	}
	id, err := m.signer.Verify(raw)
	if err != nil {
		return User{}, ErrSessionExpired
	}
	user, err := m.store.FindUser(id)
	if err != nil {
		return User{}, ErrSessionExpired
	}
	return user, nil
}

func (m *Manager) CheckPermissions(user User, permType PermissionType, data ...string) error {
	switch permType {
	case PermissionEndpoints:
		targetEndpoint := ""
		if len(data) > 0 {
			targetEndpoint = data[0]
		}
		return m.store.checkPermissionOnEndpoint(user, targetEndpoint)
	case PermissionAdmin:
		return m.store.checkPermissionOnAdmin(user)
	default:
		return errors.Wrapf(ErrInvalidPermissionType, "%q", permType)
	}
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
