package api

import (
	"net/http"
)

// Upload handles POST /api/uploads (multipart/form-data, field "file").
// The file is forwarded to the third-party media host and the hosted URL
// is returned; the stored image reference only changes when the admin
// saves the form that carries it.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	maxBytes := h.uploader.MaxBytes()
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	hosted, err := h.uploader.Upload(r.Context(), header.Filename, file)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, UploadResponse{URL: hosted})
}
