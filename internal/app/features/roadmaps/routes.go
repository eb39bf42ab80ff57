// internal/app/features/roadmaps/routes.go
package roadmaps

import (
	"github.com/dalemusser/roadmaphub/internal/app/system/gates"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the roadmap API under whatever base path the caller
// chooses (typically "/api/roadmaps" from bootstrap). Bearer tokens must
// already have been processed by auth.Authenticator.Authenticate.
//
// Example from bootstrap:
//
//	rh := roadmaps.NewHandler(db, cursors, audit, errs, false, logger)
//	r.Mount("/api/roadmaps", roadmaps.Routes(rh, gate))
func Routes(h *Handler, gate *gates.Gate) chi.Router {
	r := chi.NewRouter()

	// Discovery: active public roadmaps only, no caller needed.
	r.Get("/search", h.ServeSearch)
	r.Get("/category/{category}", h.ServeCategory)

	// Optional caller: widens results with the caller's own roadmaps.
	r.Group(func(pr chi.Router) {
		pr.Use(gate.LoadUserIfPresent)
		pr.Get("/", h.ServeList)
		pr.Get("/{id}", h.ServeView)
	})

	// Signed-in caller required.
	r.Group(func(pr chi.Router) {
		pr.Use(gate.LoadUser)
		pr.Get("/mine", h.ServeMine)
		pr.Post("/", h.HandleCreate)
		pr.Put("/{id}", h.HandleUpdate)
		pr.Delete("/{id}", h.HandleArchive)
		pr.Post("/{id}/restore", h.HandleRestore)
	})

	return r
}
