package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrContentTypeNotAllowed = errors.New("content type is not allowed")

type PresignedUpload struct {
	UploadURL string    `json:"uploadUrl"`
	ObjectURL string    `json:"objectUrl"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ProfilePictureStore issues direct-to-bucket uploads for player pictures.
type ProfilePictureStore interface {
	GeneratePresignedUpload(ctx context.Context, playerID uuid.UUID, contentType string) (*PresignedUpload, error)
	// ObjectKey returns the key of an object URL issued by this store.
	ObjectKey(objectURL string) (string, bool)
	Delete(ctx context.Context, key string) error
	// CheckAccess verifies the bucket is reachable with the configured credentials.
	CheckAccess(ctx context.Context) error
}
