package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brijesht/folio/internal/auth"
	"github.com/brijesht/folio/internal/content"
	"github.com/brijesht/folio/internal/media"
)

const maxBodyBytes = 1 << 20 // 1 MB for JSON bodies

// Handler holds API route handlers.
type Handler struct {
	svc      *content.Service
	authn    *auth.Chain
	sessions *auth.Sessions
	uploader *media.Uploader
}

// NewHandler creates a new Handler.
func NewHandler(svc *content.Service, authn *auth.Chain, sessions *auth.Sessions, uploader *media.Uploader) *Handler {
	return &Handler{svc: svc, authn: authn, sessions: sessions, uploader: uploader}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	return true
}

func recordKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	key := chi.URLParam(r, "key")
	if key == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("key is required"))
		return "", false
	}
	return key, true
}

// Projects.

// ListProjects handles GET /api/projects (display_order ascending).
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListProjects(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ProjectListResponse{Projects: list})
}

// CreateProject handles POST /api/projects.
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var p content.Project
	if !decodeBody(w, r, &p) {
		return
	}
	created, err := h.svc.CreateProject(r.Context(), p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateProject handles PUT /api/projects/{key}. The full form payload
// replaces the stored record; there is no field merging.
func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	key, ok := recordKey(w, r)
	if !ok {
		return
	}
	var p content.Project
	if !decodeBody(w, r, &p) {
		return
	}
	updated, err := h.svc.UpdateProject(r.Context(), key, p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteProject handles DELETE /api/projects/{key}.
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	key, ok := recordKey(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteProject(r.Context(), key); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Skills.

// ListSkills handles GET /api/skills (category, then display_order).
func (h *Handler) ListSkills(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListSkills(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SkillListResponse{Skills: list})
}

// CreateSkill handles POST /api/skills.
func (h *Handler) CreateSkill(w http.ResponseWriter, r *http.Request) {
	var sk content.Skill
	if !decodeBody(w, r, &sk) {
		return
	}
	created, err := h.svc.CreateSkill(r.Context(), sk)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateSkill handles PUT /api/skills/{key}.
func (h *Handler) UpdateSkill(w http.ResponseWriter, r *http.Request) {
	key, ok := recordKey(w, r)
	if !ok {
		return
	}
	var sk content.Skill
	if !decodeBody(w, r, &sk) {
		return
	}
	updated, err := h.svc.UpdateSkill(r.Context(), key, sk)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteSkill handles DELETE /api/skills/{key}.
func (h *Handler) DeleteSkill(w http.ResponseWriter, r *http.Request) {
	key, ok := recordKey(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteSkill(r.Context(), key); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Experiences.

// ListExperiences handles GET /api/experiences (start_date descending).
func (h *Handler) ListExperiences(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListExperiences(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ExperienceListResponse{Experiences: list})
}

// CreateExperience handles POST /api/experiences.
func (h *Handler) CreateExperience(w http.ResponseWriter, r *http.Request) {
	var e content.Experience
	if !decodeBody(w, r, &e) {
		return
	}
	created, err := h.svc.CreateExperience(r.Context(), e)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateExperience handles PUT /api/experiences/{key}.
func (h *Handler) UpdateExperience(w http.ResponseWriter, r *http.Request) {
	key, ok := recordKey(w, r)
	if !ok {
		return
	}
	var e content.Experience
	if !decodeBody(w, r, &e) {
		return
	}
	updated, err := h.svc.UpdateExperience(r.Context(), key, e)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteExperience handles DELETE /api/experiences/{key}.
func (h *Handler) DeleteExperience(w http.ResponseWriter, r *http.Request) {
	key, ok := recordKey(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteExperience(r.Context(), key); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Messages.

// SubmitContact handles POST /api/messages from the public contact form.
func (h *Handler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var in content.ContactSubmission
	if !decodeBody(w, r, &in) {
		return
	}
	created, err := h.svc.CreateMessage(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListMessages handles GET /api/messages?filter=all|unread (newest first).
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	unreadOnly := r.URL.Query().Get("filter") == "unread"
	list, err := h.svc.ListMessages(r.Context(), unreadOnly)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageListResponse{Messages: list})
}

// SetMessageRead handles PATCH /api/messages/{key}/read. Only the
// is_read flag changes; every other field stays as stored.
func (h *Handler) SetMessageRead(w http.ResponseWriter, r *http.Request) {
	key, ok := recordKey(w, r)
	if !ok {
		return
	}
	var req ReadRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.svc.SetMessageRead(r.Context(), key, req.IsRead); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteMessage handles DELETE /api/messages/{key}.
func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	key, ok := recordKey(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteMessage(r.Context(), key); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Settings.

// GetProfile handles GET /api/profile (fetch-once, no subscription).
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetProfile(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// SaveProfile handles PUT /api/profile (singleton overwrite).
func (h *Handler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	var p content.Profile
	if !decodeBody(w, r, &p) {
		return
	}
	if err := h.svc.SetProfile(r.Context(), p); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
