package service

import "context"

// ImageStore is the boundary to the external image hosting service.
// Upload accepts the client-provided image payload (a URL or data URI)
// and returns the stored image URL.
type ImageStore interface {
	Upload(ctx context.Context, image string) (string, error)
	Remove(ctx context.Context, imageURL string) error
}

// passthroughImageStore stores nothing and serves images from wherever the
// client pointed. Stands in for a hosted image service in development.
type passthroughImageStore struct{}

// NewPassthroughImageStore returns the no-op implementation.
func NewPassthroughImageStore() ImageStore {
	return passthroughImageStore{}
}

func (passthroughImageStore) Upload(_ context.Context, image string) (string, error) {
	return image, nil
}

func (passthroughImageStore) Remove(_ context.Context, _ string) error {
	return nil
}
