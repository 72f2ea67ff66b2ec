package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/gaohoward/activemq-artemis-jolokia-api-server/jolokia"
	"github.com/gaohoward/activemq-artemis-jolokia-api-server/security"
)

type contextKey string

const (
	contextKeyJolokia contextKey = "jolokia"
	contextKeyUser    contextKey = "user"
)

const (
	apiPrefix      = "/api/v1/"
	serverPrefix   = "/api/v1/server/"
	adminPrefix    = "/api/v1/server/admin/"
	expiredMessage = "This session has expired. Please login again"
)

// ignoreAuth reports whether the path bypasses every auth stage: the login
// endpoints, the health info endpoint, and anything outside the protected
// namespace.
func ignoreAuth(path string) bool {
	return path == "/api/v1/jolokia/login" ||
		path == "/api/v1/api-info" ||
		path == "/api/v1/server/login" ||
		!strings.HasPrefix(path, apiPrefix)
}

func isAdminOp(path string) bool {
	return strings.HasPrefix(path, adminPrefix)
}

func jolokiaFromContext(ctx context.Context) *jolokia.Client {
	client, _ := ctx.Value(contextKeyJolokia).(*jolokia.Client)
	return client
}

func userFromContext(ctx context.Context) (security.User, bool) {
	user, ok := ctx.Value(contextKeyUser).(security.User)
	return user, ok
}

// ResolveTarget handles requests that name a target endpoint. The endpoint
// is looked up in the directory, its bridge credentials are validated, and
// the resulting connection is attached for the later stages and the proxy
// handlers. Runs regardless of the security mode because it determines
// which broker the request reaches.
func (s *Server) ResolveTarget(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		targetEndpoint := r.URL.Query().Get("targetEndpoint")
		if targetEndpoint == "" {
			next.ServeHTTP(w, r)
			return
		}
		client, err := s.directory.Get(targetEndpoint)
		if err != nil {
			log.Warn().Str("endpoint", targetEndpoint).Msg("unknown target endpoint")
			writeFailed(w, http.StatusInternalServerError, "no available endpoint")
			return
		}
		ok, err := client.ValidateUser(r.Context())
		if err != nil || !ok {
			if err != nil {
				log.Err(err).Str("endpoint", targetEndpoint).Msg("endpoint validation failed")
			}
			writeFailed(w, http.StatusInternalServerError, "failed to access jolokia endpoint")
			return
		}
		ctx := context.WithValue(r.Context(), contextKeyJolokia, client)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// VerifyAuth validates the api server bearer session and attaches the
// session owner to the request.
func (s *Server) VerifyAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ignoreAuth(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		user, err := s.manager.ValidateRequest(r)
		if err != nil {
			if errors.Is(err, security.ErrUnauthenticated) {
				writeFailed(w, http.StatusUnauthorized, "unauthenticated")
				return
			}
			writeFailed(w, http.StatusUnauthorized, expiredMessage)
			return
		}
		ctx := context.WithValue(r.Context(), contextKeyUser, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CheckPermissions authorizes the request: an endpoint-type check when a
// broker connection is attached, an admin check under the admin namespace,
// otherwise pass-through.
func (s *Server) CheckPermissions(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ignoreAuth(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		user, _ := userFromContext(r.Context())
		if client := jolokiaFromContext(r.Context()); client != nil {
			if err := s.manager.CheckPermissions(user, security.PermissionEndpoints, client.Name); err != nil {
				log.Warn().Str("user", user.ID).Str("endpoint", client.Name).Msg("endpoint permission denied")
				writeFailed(w, http.StatusUnauthorized, "User has no permission to access the endpoint")
				return
			}
		} else if isAdminOp(r.URL.Path) {
			if err := s.manager.CheckPermissions(user, security.PermissionAdmin); err != nil {
				writeFailed(w, http.StatusUnauthorized, "User has no permission to access the endpoint")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// VerifyLogin resolves the per-broker session on proxied calls: the
// session header is verified and the binding established at jolokia login
// time is attached. Skipped when a connection is already attached or the
// request targets the server namespace. A valid token whose binding was
// removed by a logout is reported as an expired session.
func (s *Server) VerifyLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ignoreAuth(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		if jolokiaFromContext(r.Context()) != nil || strings.HasPrefix(r.URL.Path, serverPrefix) {
			next.ServeHTTP(w, r)
			return
		}
		raw := r.Header.Get(SessionHeader)
		if raw == "" {
			writeFailed(w, http.StatusUnauthorized, "unauthenticated")
			return
		}
		brokerName, err := s.signer.Verify(raw)
		if err != nil {
			log.Warn().Err(err).Msg("session token verification failed")
			writeFailed(w, http.StatusUnauthorized, expiredMessage)
			return
		}
		client := s.bindings.Lookup(brokerName)
		if client == nil {
			writeFailed(w, http.StatusUnauthorized, expiredMessage)
			return
		}
		ctx := context.WithValue(r.Context(), contextKeyJolokia, client)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestLogger logs each request with its status and duration.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

// corsHandler mirrors the permissive CORS setup of the express server.
func corsHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+SessionHeader)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
