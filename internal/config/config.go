// Package config loads the api server configuration from the process
// environment. File-backed stores (users, roles, access control, endpoints)
// are pointed at by the *_FILE_URL variables and read once at startup.
package config

import (
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

const envProduction = "production"

type Config struct {
	Port    string `envconfig:"PORT" default:"9443"`
	AppName string `envconfig:"APP_NAME" default:"Api Server"`
	Env     string `envconfig:"API_SERVER_ENV" default:"development"`

	// SecurityEnabled gates the whole auth pipeline. Target-endpoint
	// resolution still runs when it is off.
	SecurityEnabled bool `envconfig:"API_SERVER_SECURITY_ENABLED" default:"true"`

	// SecretToken signs session tokens. Jolokia login sessions are signed
	// in every mode, so the secret is always required; checked at startup,
	// never per request.
	SecretToken string `envconfig:"SECRET_ACCESS_TOKEN"`

	UsersFile     string `envconfig:"USERS_FILE_URL" default:".users.yaml"`
	RolesFile     string `envconfig:"ROLES_FILE_URL" default:".roles.yaml"`
	AccessFile    string `envconfig:"ACCESS_CONTROL_FILE_URL" default:".access.yaml"`
	EndpointsFile string `envconfig:"ENDPOINTS_FILE_URL" default:".endpoints.yaml"`
}

func Load() (*Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, errors.Wrap(err, "[config.Load] envconfig.Process")
	}
	if c.SecretToken == "" {
		return nil, errors.New("[config.Load] SECRET_ACCESS_TOKEN must be set")
	}
	return &c, nil
}

// IsProduction reports whether the server runs with production hardening
// (host/scheme/port allow-list checks on jolokia logins).
func (c *Config) IsProduction() bool {
	return c.Env == envProduction
}
