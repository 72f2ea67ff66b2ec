// Package security implements the api server's authentication and
// authorization subsystem: the file-backed credential store, the derived
// user access tables, the session manager issuing signed tokens, and the
// permission checks the request gate pipeline runs.
package security

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// User is an api server account loaded from the users file. Only the
// bcrypt hash of the password is ever held.
type User struct {
	ID    string `yaml:"id" json:"id"`
	Email string `yaml:"email,omitempty" json:"email,omitempty"`
	Hash  string `yaml:"hash" json:"-"`
}

// Role names a set of member user ids.
type Role struct {
	Name string   `yaml:"name"`
	UIDs []string `yaml:"uids"`
}

// EndpointPermission grants roles access to a named endpoint.
type EndpointPermission struct {
	Name  string   `yaml:"name"`
	Roles []string `yaml:"roles"`
}

// AdminPermission grants roles access to the admin namespace.
type AdminPermission struct {
	Roles []string `yaml:"roles"`
}

// Permissions is the access control file contents.
type Permissions struct {
	Endpoints []EndpointPermission `yaml:"endpoints"`
	Admin     AdminPermission      `yaml:"admin"`
}

type userList struct {
	Users []User `yaml:"users"`
}

type roleList struct {
	Roles []Role `yaml:"roles"`
}

// Store holds the users, roles and permission declarations plus the access
// tables derived from them. Everything is read-only after NewStore returns,
// so concurrent request handling needs no locking here.
type Store struct {
	users       map[string]User
	roles       map[string]Role
	permissions Permissions

	// userAccess maps user id -> endpoint names the user may reach.
	userAccess map[string]map[string]struct{}
	// userRoles maps user id -> role names the user holds.
	userRoles map[string]map[string]struct{}
}

// NewStore loads the security configuration files and builds the access
// tables. A missing file yields an empty store section, not an error.
func NewStore(usersFile, rolesFile, accessFile string) (*Store, error) {
	s := &Store{
		users: make(map[string]User),
		roles: make(map[string]Role),
	}

	var ul userList
	if err := loadYAMLFile(usersFile, &ul); err != nil {
		return nil, errors.Wrap(err, "[NewStore] load users")
	}
	for _, u := range ul.Users {
		s.users[u.ID] = u
	}

	var rl roleList
	if err := loadYAMLFile(rolesFile, &rl); err != nil {
		return nil, errors.Wrap(err, "[NewStore] load roles")
	}
	for _, r := range rl.Roles {
		s.roles[r.Name] = r
	}

	if err := loadYAMLFile(accessFile, &s.permissions); err != nil {
		return nil, errors.Wrap(err, "[NewStore] load permissions")
	}

	s.userAccess, s.userRoles = buildAccessTables(s.roles, s.permissions)
	return s, nil
}

// loadYAMLFile decodes a YAML file into out, treating a missing file as
// empty content.
func loadYAMLFile(file string, out any) error {
	data, err := os.ReadFile(file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "read %s", file)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "parse %s", file)
	}
	return nil
}

// FindUser returns the user with the given id.
func (s *Store) FindUser(id string) (User, error) {
	u, ok := s.users[id]
	if !ok {
		return User{}, errors.Wrapf(ErrUserNotFound, "user %q", id)
	}
	return u, nil
}

// Authenticate verifies the user's password. It returns nil, not an error,
// when the user is unknown or the password does not match: the check ran
// and failed, which callers treat differently from a check that could not
// run at all.
func (s *Store) Authenticate(id, password string) *User {
	u, ok := s.users[id]
	if !ok {
		return nil
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil
	}
	return &u
}

// HashPassword produces the bcrypt hash stored in the users file.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// checkPermissionOnEndpoint verifies the user may reach the named
// endpoint. An unset target, a user with no access entry and an entry not
// containing the target all collapse to the same denial.
func (s *Store) checkPermissionOnEndpoint(user User, targetEndpoint string) error {
	if targetEndpoint == "" {
		return ErrNoPermission
	}
	endpoints, ok := s.userAccess[user.ID]
	if !ok {
		return ErrNoPermission
	}
	if _, ok := endpoints[targetEndpoint]; !ok {
		return ErrNoPermission
	}
	return nil
}

// checkPermissionOnAdmin verifies the user holds at least one admin role.
// A user with no roles at all fails cleanly.
func (s *Store) checkPermissionOnAdmin(user User) error {
	roles, ok := s.userRoles[user.ID]
	if !ok {
		return ErrNoPermission
	}
	for _, r := range s.permissions.Admin.Roles {
		if _, ok := roles[r]; ok {
			return nil
		}
	}
	return ErrNoPermission
}
