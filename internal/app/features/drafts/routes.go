// internal/app/features/drafts/routes.go
package drafts

import (
	"github.com/dalemusser/roadmaphub/internal/app/system/gates"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the drafting API (typically at "/api/drafts").
func Routes(h *Handler, gate *gates.Gate) chi.Router {
	r := chi.NewRouter()
	r.Use(gate.LoadRegistered)
	r.Post("/roadmap", h.HandleDraft)
	return r
}
