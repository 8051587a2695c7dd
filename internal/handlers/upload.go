package handlers

import (
	"net/http"
)

type UploadResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	URL     string `json:"url,omitempty"`
}

// UploadPhoto stores a meal or face photo in Cloudinary and returns its
// secure URL, which the client attaches to the record it saves.
func (h *Handler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAuth(r); !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if h.Cloudinary == nil {
		writeError(w, http.StatusServiceUnavailable, "Photo storage is not configured")
		return
	}

	// Parse multipart form (max 10MB)
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse form: "+err.Error())
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	folder := r.URL.Query().Get("folder")
	if folder == "" {
		folder = "healt-tracker"
	}

	url, err := h.Cloudinary.UploadFileFromHeader(r.Context(), fileHeader, folder)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to upload photo")
		return
	}

	writeJSON(w, http.StatusOK, UploadResponse{
		Success: true,
		Message: "Photo uploaded",
		URL:     url,
	})
}
