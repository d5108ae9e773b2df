package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Dosada05/pool-tournament-manager/storage"
	"github.com/google/uuid"
)

const FakePictureBase = "https://pictures.test"

// FakePictureStore accepts jpeg and png and records deleted keys.
type FakePictureStore struct {
	mu        sync.Mutex
	Deleted   []string
	AccessErr error
	seq       int
}

func (f *FakePictureStore) GeneratePresignedUpload(_ context.Context, playerID uuid.UUID, contentType string) (*storage.PresignedUpload, error) {
	var ext string
	switch contentType {
	case "image/jpeg":
		ext = ".jpg"
	case "image/png":
		ext = ".png"
	default:
		return nil, fmt.Errorf("%w: %q", storage.ErrContentTypeNotAllowed, contentType)
	}

	f.mu.Lock()
	f.seq++
	key := fmt.Sprintf("players/%s/profile-%d%s", playerID, f.seq, ext)
	f.mu.Unlock()

	return &storage.PresignedUpload{
		UploadURL: FakePictureBase + "/upload/" + key + "?signature=test",
		ObjectURL: FakePictureBase + "/" + key,
		Key:       key,
		ExpiresAt: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	}, nil
}

func (f *FakePictureStore) ObjectKey(objectURL string) (string, bool) {
	if !strings.HasPrefix(objectURL, FakePictureBase+"/") {
		return "", false
	}
	return strings.TrimPrefix(objectURL, FakePictureBase+"/"), true
}

func (f *FakePictureStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Deleted = append(f.Deleted, key)
	return nil
}

func (f *FakePictureStore) CheckAccess(context.Context) error {
	return f.AccessErr
}

func (f *FakePictureStore) DeletedKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Deleted...)
}
