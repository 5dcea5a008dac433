package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/ksys/admission-service/internal/repositories"
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type uploadService struct {
	repo     repositories.Repository
	logger   *slog.Logger
	maxBytes int64
}

func NewUploadService(repo repositories.Repository, logger *slog.Logger, maxBytes int64) UploadService {
	return &uploadService{repo: repo, logger: logger, maxBytes: maxBytes}
}

// Upload sniffs the content type and stores the image under a random name
func (s *uploadService) Upload(ctx context.Context, req *UploadRequest) (*repositories.BlobObject, error) {
	if len(req.Data) == 0 {
		return nil, ErrEmptyFile
	}
	if s.maxBytes > 0 && int64(len(req.Data)) > s.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, len(req.Data), s.maxBytes)
	}

	contentType := http.DetectContentType(req.Data)
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedContentType, contentType)
	}

	blobs := s.repo.Blob()
	if blobs == nil {
		return nil, fmt.Errorf("%w: blob store not configured", ErrServiceUnavailable)
	}

	name := uuid.NewString() + ext
	obj, err := blobs.Put(ctx, name, contentType, req.Data)
	if err != nil {
		s.logger.Error("Upload failed", "error", err, "filename", req.Filename)
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	s.logger.Info("File uploaded", "name", obj.Name, "size", obj.Size, "content_type", contentType)
	return obj, nil
}
