// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"inkwell/internal/apperr"
	"inkwell/internal/middleware"
	"inkwell/internal/respond"
)

// maxUploadSize is the largest accepted featured image (5 MB).
const maxUploadSize = 5 << 20

// allowedImageTypes maps accepted content types to file extensions.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Uploader stores public objects. Satisfied by *storage.Client.
type Uploader interface {
	Key(name string) string
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
}

// Uploads handles featured-image uploads to object storage.
type Uploads struct {
	storage Uploader
	log     logrus.FieldLogger
}

// NewUploads creates the upload handler. A nil storage disables uploads.
func NewUploads(storage Uploader, log logrus.FieldLogger) *Uploads {
	return &Uploads{storage: storage, log: log}
}

// Create accepts one image in the multipart field "file" and returns its
// public URL.
func (h *Uploads) Create(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		respond.Message(w, http.StatusServiceUnavailable, "Object storage is not configured")
		return
	}

	// Limit request body to maxUploadSize + some overhead for form fields.
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1024)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Message(w, http.StatusRequestEntityTooLarge, "File too large. Maximum size is 5 MB")
			return
		}
		respond.Error(w, r, h.log, apperr.Validation("Invalid multipart form"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respond.Error(w, r, h.log, apperr.Validation("No file provided"))
		return
	}
	defer file.Close()

	if header.Size > maxUploadSize {
		respond.Message(w, http.StatusRequestEntityTooLarge, "File too large. Maximum size is 5 MB")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		respond.Error(w, r, h.log, fmt.Errorf("read upload: %w", err))
		return
	}

	// Detect content type by sniffing the first 512 bytes.
	contentType := http.DetectContentType(data)
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		respond.Error(w, r, h.log, apperr.Validation(fmt.Sprintf("File type %q is not allowed", contentType)))
		return
	}

	key := h.storage.Key(uuid.NewString() + ext)
	url, err := h.storage.Upload(r.Context(), key, contentType, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		respond.Error(w, r, h.log, err)
		return
	}

	entry := h.log.WithField("key", key)
	if claims := middleware.ClaimsFromCtx(r.Context()); claims != nil {
		entry = entry.WithField("user", claims.UserID())
	}
	entry.Info("image uploaded")

	respond.JSON(w, http.StatusCreated, map[string]string{"url": url, "key": key})
}
