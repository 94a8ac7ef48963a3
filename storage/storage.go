package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
)

// ImageStorage persists decoded recipe images and hands back a retrievable
// URL. Backends: local disk (default) and MinIO.
type ImageStorage interface {
	Save(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// RandomKey builds an object key under the given directory with the given
// extension, e.g. "recipes/9f2a...e1.png".
func RandomKey(dir, ext string) string {
	buf := make([]byte, 16)
	rand.Read(buf)
	return dir + "/" + hex.EncodeToString(buf) + "." + ext
}
