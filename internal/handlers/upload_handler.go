package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ksys/admission-service/internal/services"
	"github.com/ksys/admission-service/internal/utils"
)

// UploadHandler accepts image uploads for candidate photos and gallery items
type UploadHandler struct {
	BaseHandler
	uploadService services.UploadService
	maxBytes      int64
}

func NewUploadHandler(uploadService services.UploadService, maxBytes int64, logger utils.Logger) *UploadHandler {
	return &UploadHandler{
		BaseHandler:   NewBaseHandler(logger),
		uploadService: uploadService,
		maxBytes:      maxBytes,
	}
}

// Upload stores the multipart "file" field
// @Summary Upload image
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image"
// @Success 201 {object} repositories.BlobObject
// @Failure 413 {object} ErrorResponse
// @Failure 415 {object} ErrorResponse
// @Router /uploads [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.handleServiceError(c, services.ErrFileTooLarge)
			return
		}
		h.respondError(c, http.StatusBadRequest, "invalid_payload", "Multipart field 'file' is required", err.Error())
		return
	}
	if h.maxBytes > 0 && header.Size > h.maxBytes {
		h.handleServiceError(c, services.ErrFileTooLarge)
		return
	}

	file, err := header.Open()
	if err != nil {
		h.respondError(c, http.StatusBadRequest, "invalid_payload", "Unable to read uploaded file", err.Error())
		return
	}
	defer file.Close()

	reader := io.Reader(file)
	if h.maxBytes > 0 {
		reader = io.LimitReader(file, h.maxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, "invalid_payload", "Unable to read uploaded file", err.Error())
		return
	}

	h.LogRequest(c, "Uploading file", "filename", header.Filename, "size", len(data))

	obj, err := h.uploadService.Upload(c.Request.Context(), &services.UploadRequest{
		Filename: header.Filename,
		Data:     data,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, obj)
}
