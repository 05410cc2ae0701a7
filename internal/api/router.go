package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brijesht/folio/internal/auth"
	"github.com/brijesht/folio/internal/content"
	"github.com/brijesht/folio/internal/media"
)

// NewRouter creates a chi router with all API routes mounted. The public
// site reads collections, subscribes to the live-update stream, and
// submits the contact form without a session; everything that mutates
// content sits behind the session middleware. sseHandler, if non-nil, is
// mounted at GET /events; uploader nil leaves POST /uploads unmounted.
func NewRouter(svc *content.Service, authn *auth.Chain, sessions *auth.Sessions, uploader *media.Uploader, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, authn, sessions, uploader)

	r := chi.NewRouter()

	// Public site reads.
	r.Get("/projects", h.ListProjects)
	r.Get("/skills", h.ListSkills)
	r.Get("/experiences", h.ListExperiences)
	r.Get("/profile", h.GetProfile)

	// Public contact form.
	r.Post("/messages", h.SubmitContact)

	// Live updates. Events carry only collection names and record keys,
	// nothing the public reads above do not already expose.
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	// Session gate.
	r.Post("/auth/login", h.Login)

	// Admin surface.
	r.Group(func(r chi.Router) {
		r.Use(RequireSession(sessions))

		r.Get("/auth/session", h.Session)
		r.Post("/auth/logout", h.Logout)

		r.Post("/projects", h.CreateProject)
		r.Put("/projects/{key}", h.UpdateProject)
		r.Delete("/projects/{key}", h.DeleteProject)

		r.Post("/skills", h.CreateSkill)
		r.Put("/skills/{key}", h.UpdateSkill)
		r.Delete("/skills/{key}", h.DeleteSkill)

		r.Post("/experiences", h.CreateExperience)
		r.Put("/experiences/{key}", h.UpdateExperience)
		r.Delete("/experiences/{key}", h.DeleteExperience)

		r.Get("/messages", h.ListMessages)
		r.Patch("/messages/{key}/read", h.SetMessageRead)
		r.Delete("/messages/{key}", h.DeleteMessage)

		r.Put("/profile", h.SaveProfile)

		if uploader != nil {
			r.Post("/uploads", h.Upload)
		}
	})

	return r
}
