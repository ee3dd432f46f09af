package repo

import (
	"context"
	"errors"
)

var ErrClosed = errors.New("blob store closed")

// BlobStore - хранилище сериализованной коллекции по одному ключу.
// Get возвращает found=false, если значения под ключом нет.
type BlobStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Close() error
}
