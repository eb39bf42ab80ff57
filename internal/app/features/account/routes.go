// internal/app/features/account/routes.go
package account

import (
	"net/http"

	"github.com/dalemusser/roadmaphub/internal/app/system/apierr"
	"github.com/dalemusser/roadmaphub/internal/app/system/auth"
	"github.com/dalemusser/roadmaphub/internal/app/system/gates"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the account API (typically at "/api/auth").
func Routes(h *Handler, authn *auth.Authenticator, gate *gates.Gate) chi.Router {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		apierr.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Register works from the bare identity; it must not auto-provision.
	r.With(authn.RequireIdentity).Post("/register", h.HandleRegister)

	// Profile reads never provision: 404 tells the client to register.
	r.Group(func(pr chi.Router) {
		pr.Use(gate.LoadRegistered)
		pr.Get("/profile", h.ServeProfile)
		pr.Put("/profile", h.HandleUpdateProfile)
	})

	return r
}
