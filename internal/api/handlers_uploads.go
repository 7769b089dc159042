package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/fastprodman/artmarket/internal/apperr"
	"github.com/fastprodman/artmarket/internal/services/uploads"
)

// multipart overhead allowed on top of the image itself
const multipartSlack = 64 << 10

// UploadProfileHandler handles POST /profile/upload (multipart "file", plus
// optional "userId" / "username" naming the subject).
func (h *HandlerProvider) UploadProfileHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, uploads.MaxProfileImageSize+multipartSlack)

	err := r.ParseMultipartForm(uploads.MaxProfileImageSize)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, r, fmt.Errorf("%w: image larger than %d bytes", apperr.ErrInvalidInput, uploads.MaxProfileImageSize))
			return
		}

		writeError(w, r, fmt.Errorf("%w: multipart form required: %v", apperr.ErrInvalidInput, err))

		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: file is required", apperr.ErrInvalidInput))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key, err := h.uploads.UploadProfileImage(r.Context(), subjectOf(r.FormValue("userId"), r.FormValue("username")), contentType, file, header.Size)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"key": key})
}

// PresignHandler handles POST /s3/presign
func (h *HandlerProvider) PresignHandler(w http.ResponseWriter, r *http.Request) {
	var req presignRequest

	err := h.decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	url, key, err := h.uploads.PresignGeneric(r.Context(), req.Folder, req.Filename, req.ContentType)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"uploadUrl": url, "key": key})
}

// PresignProfileHandler handles POST /s3/presign-profile
func (h *HandlerProvider) PresignProfileHandler(w http.ResponseWriter, r *http.Request) {
	var req presignProfileRequest

	err := h.decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	url, key, err := h.uploads.PresignProfile(r.Context(), subjectOf(req.UserID, req.Username), req.ContentType)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"uploadUrl": url, "key": key})
}

func subjectOf(userID, username string) string {
	if s := strings.TrimSpace(userID); s != "" {
		return s
	}

	return strings.TrimSpace(username)
}
