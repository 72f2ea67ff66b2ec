package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/gaohoward/activemq-artemis-jolokia-api-server/jolokia"
)

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(httprate.LimitByIP(1000, time.Minute))
	r.Use(corsHandler)

	r.Route("/api/v1", func(r chi.Router) {
		// The gate pipeline. Target resolution always runs; the auth
		// stages are no-ops with security disabled.
		r.Use(s.ResolveTarget)
		if s.config.SecurityEnabled {
			r.Use(s.VerifyAuth)
			r.Use(s.CheckPermissions)
			r.Use(s.VerifyLogin)
		}

		r.Get("/api-info", s.APIInfo)
		r.Post("/jolokia/login", s.JolokiaLogin)
		r.Post("/server/login", s.ServerLogin)
		r.Post("/server/logout", s.ServerLogout)

		r.Get("/server/admin/endpoints", s.AdminListEndpoints)

		r.Get("/brokers", s.GetBrokers)
		r.Get("/brokerComponents", s.GetBrokerComponents)
		r.Get("/queues", s.GetQueues)
		r.Get("/addresses", s.GetAddresses)
		r.Get("/acceptors", s.GetAcceptors)
		r.Get("/clusterConnections", s.GetClusterConnections)
		r.Get("/readBrokerAttributes", s.ReadBrokerAttributes)
		r.Get("/readQueueAttributes", s.ReadComponentAttributes(jolokia.ComponentQueue))
		r.Get("/readAddressAttributes", s.ReadComponentAttributes(jolokia.ComponentAddress))
		r.Get("/readAcceptorAttributes", s.ReadComponentAttributes(jolokia.ComponentAcceptor))
		r.Get("/readClusterConnectionAttributes", s.ReadComponentAttributes(jolokia.ComponentClusterConnection))
		r.Get("/listComponentOperations", s.ListComponentOperations)
	})

	return r
}
