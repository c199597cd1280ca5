package api

import (
	"github.com/go-chi/chi/v5"
)

// setupAPIRoutes sets up API v1 routes
func (s *RESTServer) setupAPIRoutes(r chi.Router) {
	// Health check
	r.Get("/health", s.HandleHealth)
	r.Get("/", s.HandleRoot)

	// Auth routes (public)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", s.HandleLogin)
		r.Post("/refresh", s.HandleRefresh)
	})

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)

		// Device status and state
		r.Get("/status", s.HandleGetStatus)
		r.Put("/state", s.HandleSetState)

		// Sensors
		r.Route("/sensors", func(r chi.Router) {
			r.Get("/", s.HandleListSensors)
			r.Route("/{sensor_id}", func(r chi.Router) {
				r.Get("/", s.HandleGetSensor)
				r.Post("/readings", s.HandleCreateReading)
				r.Get("/readings", s.HandleListArchivedReadings)
				r.Delete("/readings", s.HandleClearReadings)
			})
		})

		// Message queue
		r.Route("/queue", func(r chi.Router) {
			r.Get("/", s.HandleGetQueue)
			r.Delete("/", s.HandleClearQueue)
			r.Post("/raw", s.HandleQueueRaw)
			r.Post("/status", s.HandleQueueStatus)
		})

		// Transmission
		r.Post("/transmit", s.HandleTransmit)
		r.Get("/transmissions", s.HandleListTransmissions)

		// Datasheets
		r.Post("/datasheets/validate", s.HandleValidateDatasheet)
	})
}
