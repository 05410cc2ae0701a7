package api

import (
	"github.com/brijesht/folio/internal/auth"
	"github.com/brijesht/folio/internal/content"
)

// LoginRequest is the request body for signing in.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the session token and the signed-in user.
type LoginResponse struct {
	Token string    `json:"token"`
	User  auth.User `json:"user"`
}

// SessionResponse is the observe-current-session payload.
type SessionResponse struct {
	User auth.User `json:"user"`
}

// ReadRequest is the body for PATCH /messages/{key}/read.
type ReadRequest struct {
	IsRead bool `json:"is_read"`
}

// UploadResponse is returned after a successful media upload.
type UploadResponse struct {
	URL string `json:"url"`
}

// List responses wrap each collection snapshot.

// ProjectListResponse wraps the sorted projects snapshot.
type ProjectListResponse struct {
	Projects []content.ProjectRecord `json:"projects"`
}

// SkillListResponse wraps the sorted skills snapshot.
type SkillListResponse struct {
	Skills []content.SkillRecord `json:"skills"`
}

// ExperienceListResponse wraps the sorted experiences snapshot.
type ExperienceListResponse struct {
	Experiences []content.ExperienceRecord `json:"experiences"`
}

// MessageListResponse wraps the newest-first messages snapshot.
type MessageListResponse struct {
	Messages []content.MessageRecord `json:"messages"`
}
