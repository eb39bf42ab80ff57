// internal/app/features/progress/routes.go
package progress

import (
	"github.com/dalemusser/roadmaphub/internal/app/system/gates"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the progress API (typically at "/api/progress").
// Every route acts on the signed-in caller's own records. Only recording
// progress provisions a user; the rest require an existing record.
func Routes(h *Handler, gate *gates.Gate) chi.Router {
	r := chi.NewRouter()

	r.With(gate.LoadUser).Post("/", h.HandleUpsert)

	r.Group(func(pr chi.Router) {
		pr.Use(gate.LoadRegistered)
		pr.Get("/", h.ServeList)
		pr.Get("/stats", h.ServeStats)
		pr.Get("/roadmap/{roadmapID}", h.ServeOne)
		pr.Delete("/roadmap/{roadmapID}", h.HandleDelete)
	})

	return r
}
