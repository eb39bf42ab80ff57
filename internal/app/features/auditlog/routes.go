// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/dalemusser/roadmaphub/internal/app/system/gates"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the audit log API (typically at "/api/audit").
// Access is restricted to admins; the role check happens in the handler.
func Routes(h *Handler, gate *gates.Gate) chi.Router {
	r := chi.NewRouter()
	r.Use(gate.LoadRegistered)
	r.Get("/", h.ServeList)
	return r
}
