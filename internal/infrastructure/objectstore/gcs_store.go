package objectstore

import (
	"context"

	"cloud.google.com/go/storage"

	"github.com/oksasatya/go-ddd-storefront/pkg/helpers"
)

// GCSStore writes private objects into one bucket.
type GCSStore struct {
	client *storage.Client
	bucket string
}

func NewGCSStore(client *storage.Client, bucket string) *GCSStore {
	return &GCSStore{client: client, bucket: bucket}
}

func (s *GCSStore) Save(ctx context.Context, name, contentType string, data []byte) (string, error) {
	objectPath, err := cleanName(name)
	if err != nil {
		return "", err
	}
	return helpers.UploadBytes(ctx, s.client, s.bucket, objectPath, contentType, data)
}
