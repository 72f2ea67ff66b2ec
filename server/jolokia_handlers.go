package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/gaohoward/activemq-artemis-jolokia-api-server/jolokia"
)

// attachedJolokia returns the broker connection the gate pipeline attached
// to the request, failing the request when none is present.
func (s *Server) attachedJolokia(w http.ResponseWriter, r *http.Request) *jolokia.Client {
	client := jolokiaFromContext(r.Context())
	if client == nil {
		writeFailed(w, http.StatusInternalServerError, "no broker connection available")
	}
	return client
}

// forward runs a bridge read and writes its JSON result. Upstream detail
// is logged but not returned to the caller.
func forward(w http.ResponseWriter, name string, call func() (json.RawMessage, error)) {
	value, err := call()
	if err != nil {
		log.Err(err).Str("operation", name).Msg("bridge request failed")
		writeFailed(w, http.StatusInternalServerError, "failed to reach the broker endpoint")
		return
	}
	writeValue(w, value)
}

func (s *Server) GetBrokers(w http.ResponseWriter, r *http.Request) {
	client := s.attachedJolokia(w, r)
	if client == nil {
		return
	}
	forward(w, "brokers", func() (json.RawMessage, error) { return client.GetBrokers(r.Context()) })
}

func (s *Server) GetBrokerComponents(w http.ResponseWriter, r *http.Request) {
	client := s.attachedJolokia(w, r)
	if client == nil {
		return
	}
	forward(w, "brokerComponents", func() (json.RawMessage, error) { return client.GetBrokerComponents(r.Context()) })
}

func (s *Server) GetQueues(w http.ResponseWriter, r *http.Request) {
	client := s.attachedJolokia(w, r)
	if client == nil {
		return
	}
	forward(w, "queues", func() (json.RawMessage, error) { return client.GetQueues(r.Context()) })
}

func (s *Server) GetAddresses(w http.ResponseWriter, r *http.Request) {
	client := s.attachedJolokia(w, r)
	if client == nil {
		return
	}
	forward(w, "addresses", func() (json.RawMessage, error) { return client.GetAddresses(r.Context()) })
}

func (s *Server) GetAcceptors(w http.ResponseWriter, r *http.Request) {
	client := s.attachedJolokia(w, r)
	if client == nil {
		return
	}
	forward(w, "acceptors", func() (json.RawMessage, error) { return client.GetAcceptors(r.Context()) })
}

func (s *Server) GetClusterConnections(w http.ResponseWriter, r *http.Request) {
	client := s.attachedJolokia(w, r)
	if client == nil {
		return
	}
	forward(w, "clusterConnections", func() (json.RawMessage, error) { return client.GetClusterConnections(r.Context()) })
}

// attrNames parses the comma separated attribute list. An absent or "*"
// value reads all attributes.
func attrNames(r *http.Request) []string {
	names := r.URL.Query().Get("names")
	if names == "" || names == "*" {
		return nil
	}
	return strings.Split(names, ",")
}

func (s *Server) ReadBrokerAttributes(w http.ResponseWriter, r *http.Request) {
	client := s.attachedJolokia(w, r)
	if client == nil {
		return
	}
	attrs := attrNames(r)
	forward(w, "readBrokerAttributes", func() (json.RawMessage, error) {
		return client.ReadBrokerAttributes(r.Context(), attrs)
	})
}

// ReadComponentAttributes builds the attribute read handler for a
// component type. The component name arrives in the "name" query
// parameter.
func (s *Server) ReadComponentAttributes(component jolokia.ComponentType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client := s.attachedJolokia(w, r)
		if client == nil {
			return
		}
		name := r.URL.Query().Get("name")
		if name == "" {
			writeFailed(w, http.StatusBadRequest, "component name is required")
			return
		}
		attrs := attrNames(r)
		forward(w, "read "+string(component)+" attributes", func() (json.RawMessage, error) {
			return client.ReadComponentAttributes(r.Context(), component, name, attrs)
		})
	}
}

// ListComponentOperations returns the operation metadata of a component.
func (s *Server) ListComponentOperations(w http.ResponseWriter, r *http.Request) {
	client := s.attachedJolokia(w, r)
	if client == nil {
		return
	}
	component := jolokia.ComponentType(r.URL.Query().Get("type"))
	name := r.URL.Query().Get("name")
	forward(w, "listComponentOperations", func() (json.RawMessage, error) {
		return listOperations(r.Context(), client, component, name)
	})
}

func listOperations(ctx context.Context, client *jolokia.Client, component jolokia.ComponentType, name string) (json.RawMessage, error) {
	if component == "" {
		component = jolokia.ComponentBroker
	}
	return client.ListComponentOperations(ctx, component, name)
}
