package casdoor

import (
	"context"
	"fmt"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"

	"github.com/ksys/admission-service/internal/repositories"
)

const uploadTag = "admission"

// resourceClient is the part of the Casdoor SDK used for file storage
type resourceClient interface {
	UploadResource(user string, tag string, parent string, fullFilePath string, fileBytes []byte) (string, string, error)
	DeleteResource(resource *casdoorsdk.Resource) (bool, error)
}

// BlobCasdoor stores uploads as Casdoor resources
type BlobCasdoor struct {
	client resourceClient
	owner  string
	parent string
}

// NewBlobCasdoor creates a blob store. owner is the resource owner account
// and parent groups the uploads in the Casdoor console.
func NewBlobCasdoor(client resourceClient, owner, parent string) repositories.BlobRepository {
	return &BlobCasdoor{client: client, owner: owner, parent: parent}
}

func (b *BlobCasdoor) Put(ctx context.Context, name, contentType string, data []byte) (*repositories.BlobObject, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := fmt.Sprintf("%s/%s", b.parent, name)
	url, storedName, err := b.client.UploadResource(b.owner, uploadTag, b.parent, path, data)
	if err != nil {
		return nil, fmt.Errorf("upload resource failed: %w", err)
	}
	if storedName == "" {
		storedName = path
	}

	return &repositories.BlobObject{
		Name:        storedName,
		URL:         url,
		ContentType: contentType,
		Size:        int64(len(data)),
	}, nil
}

func (b *BlobCasdoor) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ok, err := b.client.DeleteResource(&casdoorsdk.Resource{Owner: b.owner, Name: name})
	if err != nil {
		return fmt.Errorf("delete resource failed: %w", err)
	}
	if !ok {
		return fmt.Errorf("resource %s: %w", name, repositories.ErrNotFound)
	}
	return nil
}
