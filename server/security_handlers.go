package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/gaohoward/activemq-artemis-jolokia-api-server/jolokia"
	"github.com/gaohoward/activemq-artemis-jolokia-api-server/security"
)

// hostMarker must appear in the jolokia host name in production mode.
const hostMarker = "wconsj"

// validateHost, validateScheme and validatePort form the allow-list the
// jolokia login fields must pass in production. Outside production the
// values are accepted as supplied.
func (s *Server) validateHost(host string) bool {
	if !s.config.IsProduction() {
		return true
	}
	if !strings.Contains(host, hostMarker) {
		log.Warn().Str("host", host).Msg("invalid host")
		return false
	}
	return true
}

func (s *Server) validateScheme(scheme string) bool {
	if !s.config.IsProduction() {
		return true
	}
	if scheme != "http" && scheme != "https" {
		log.Warn().Str("scheme", scheme).Msg("invalid scheme")
		return false
	}
	return true
}

func (s *Server) validatePort(port string) bool {
	if !s.config.IsProduction() {
		return true
	}
	num, err := strconv.Atoi(port)
	if err != nil || num < 1 || num > 65535 || port != strconv.Itoa(num) {
		log.Warn().Str("port", port).Msg("invalid port")
		return false
	}
	return true
}

// JolokiaLogin establishes a per-broker proxy session: the supplied broker
// management credentials are validated against the bridge and, on success,
// the connection is cached under the broker name the issued session token
// is bound to.
func (s *Server) JolokiaLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeFailed(w, http.StatusBadRequest, "malformed login form")
		return
	}
	brokerName := r.PostFormValue("brokerName")
	userName := r.PostFormValue("userName")
	password := r.PostFormValue("password")
	jolokiaHost := r.PostFormValue("jolokiaHost")
	scheme := r.PostFormValue("scheme")
	port := r.PostFormValue("port")

	if !s.validateHost(jolokiaHost) {
		writeFailed(w, http.StatusUnauthorized, "Invalid jolokia host name.")
		return
	}
	if !s.validateScheme(scheme) {
		writeFailed(w, http.StatusUnauthorized, "Invalid jolokia scheme.")
		return
	}
	if !s.validatePort(port) {
		writeFailed(w, http.StatusUnauthorized, "Invalid jolokia port.")
		return
	}

	client := jolokia.New(brokerName, userName, password, jolokiaHost, scheme, port)
	ok, err := client.ValidateUser(r.Context())
	if err != nil {
		log.Err(err).Str("broker", brokerName).Msg("got exception while login")
		writeFailed(w, http.StatusInternalServerError, "Internal error")
		return
	}
	if !ok {
		writeFailed(w, http.StatusUnauthorized, "Invalid credential. Please try again.")
		return
	}

	signedToken, err := s.signer.Sign(brokerName)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if err := s.bindings.Register(brokerName, client); err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Status:    "success",
		Message:   "You have successfully logged in.",
		SessionID: signedToken,
	})
}

// ServerLogin authenticates an api server user and issues a bearer token.
func (s *Server) ServerLogin(w http.ResponseWriter, r *http.Request) {
	if !s.config.SecurityEnabled {
		writeJSON(w, http.StatusOK, statusResponse{Status: "succeed", Message: "security disabled"})
		return
	}
	var credential security.Credential
	if err := json.NewDecoder(r.Body).Decode(&credential); err != nil {
		writeFailed(w, http.StatusUnauthorized, "Invalid credential. Please try again.")
		return
	}
	bearerToken, err := s.manager.Login(credential)
	if err != nil {
		log.Warn().Str("user", credential.UserName).Msg("server login failed")
		writeFailed(w, http.StatusUnauthorized, "Invalid credential. Please try again.")
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Status:      "success",
		Message:     "You have successfully logged in the api server.",
		BearerToken: bearerToken,
	})
}

// ServerLogout removes the authenticated user's active session.
func (s *Server) ServerLogout(w http.ResponseWriter, r *http.Request) {
	if !s.config.SecurityEnabled {
		writeJSON(w, http.StatusOK, statusResponse{Status: "succeed", Message: "security disabled"})
		return
	}
	user, ok := userFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusInternalServerError, statusResponse{Status: "failed", Message: "User failed log out: no authenticated user"})
		return
	}
	s.manager.LogOut(user)
	writeJSON(w, http.StatusOK, statusResponse{Status: "success", Message: "User logs out"})
}

// APIInfo reports server liveness and mode. It bypasses the gate pipeline.
func (s *Server) APIInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":           "successful",
		"message":          s.config.AppName,
		"security-enabled": s.config.SecurityEnabled,
	})
}

// AdminListEndpoints lists the configured endpoint directory. Admin-role
// membership is enforced by the gate pipeline.
func (s *Server) AdminListEndpoints(w http.ResponseWriter, r *http.Request) {
	type endpointInfo struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	}
	infos := make([]endpointInfo, 0)
	for _, client := range s.directory.List() {
		infos = append(infos, endpointInfo{Name: client.Name, URL: client.BaseURL()})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "success",
		"endpoints": infos,
	})
}
