// Package server exposes the authenticating reverse proxy API in front of
// one or more broker jolokia endpoints. Every request passes an ordered
// gate pipeline (target resolution, session validation, permission checks)
// before it reaches the proxying handlers.
package server

import (
	"net/http"

	"github.com/pkg/errors"

	"github.com/gaohoward/activemq-artemis-jolokia-api-server/endpoints"
	"github.com/gaohoward/activemq-artemis-jolokia-api-server/internal/config"
	"github.com/gaohoward/activemq-artemis-jolokia-api-server/security"
	"github.com/gaohoward/activemq-artemis-jolokia-api-server/token"
)

// SessionHeader carries the signed per-broker session token on proxied
// calls.
const SessionHeader = "jolokia-session-id"

type Server struct {
	config    *config.Config
	manager   security.SessionAuthority
	signer    token.Signer
	directory *endpoints.Directory
	bindings  *security.BindingStore
	router    http.Handler
}

// New wires the server from its collaborators. The signer is always
// required because jolokia login sessions are signed in every mode; the
// session manager may be nil only when security is disabled.
func New(cfg *config.Config, manager security.SessionAuthority, signer token.Signer, directory *endpoints.Directory, bindings *security.BindingStore) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("[server.New] config is required")
	}
	if signer == nil {
		return nil, errors.New("[server.New] signer is required")
	}
	if directory == nil {
		return nil, errors.New("[server.New] endpoint directory is required")
	}
	if bindings == nil {
		return nil, errors.New("[server.New] binding store is required")
	}
	if cfg.SecurityEnabled && manager == nil {
		return nil, errors.New("[server.New] session manager is required when security is enabled")
	}
	s := &Server{
		config:    cfg,
		manager:   manager,
		signer:    signer,
		directory: directory,
		bindings:  bindings,
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
