package macros

import (
	"github.com/go-chi/chi/v5"

	"github.com/rolldeck/rolldeck/internal/identity"
)

func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(identity.RequireUser)
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Show)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/roll", h.Roll)
}
