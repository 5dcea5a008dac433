package repositories

import (
	"context"

	"github.com/ksys/admission-service/internal/models"
)

// UserRepository reads identities from the identity provider. The
// admission service never owns user data.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	ExistsByID(ctx context.Context, id string) (bool, error)
}

// BlobObject is a stored file
type BlobObject struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// BlobRepository stores uploaded images
type BlobRepository interface {
	Put(ctx context.Context, name, contentType string, data []byte) (*BlobObject, error)
	Delete(ctx context.Context, name string) error
}
