// Package feed resolves "the most recent file in a category" from the
// remote source that drops stock, price, material, and mapping extracts.
package feed

import (
	"context"
	"fmt"
	"path"

	"github.com/catalogsync/backend/internal/infrastructure/storage"
)

// Category identifies one kind of source extract
type Category string

const (
	CategoryStock    Category = "stock"
	CategoryPrice    Category = "price"
	CategoryMaterial Category = "material"
	CategoryMapping  Category = "mapping"
)

// IsValid checks if the category is one of the known extract kinds
func (c Category) IsValid() bool {
	switch c {
	case CategoryStock, CategoryPrice, CategoryMaterial, CategoryMapping:
		return true
	}
	return false
}

// ErrNoFile is returned when a category holds no extract at all
type ErrNoFile struct {
	Category Category
}

// Error implements the error interface
func (e *ErrNoFile) Error() string {
	return fmt.Sprintf("no source extract available for category %q", e.Category)
}

// Source provides the bytes of the most recent extract per category.
type Source interface {
	Latest(ctx context.Context, category Category) (data []byte, name string, err error)
}

// StoreSource implements Source over an ObjectStore: each category maps
// to a key prefix and the newest object by LastModified wins.
type StoreSource struct {
	store  storage.ObjectStore
	prefix string
}

// NewStoreSource creates a StoreSource reading below the given prefix
// (e.g. "feed"), with one sub-prefix per category.
func NewStoreSource(store storage.ObjectStore, prefix string) *StoreSource {
	return &StoreSource{store: store, prefix: prefix}
}

// Latest returns the content and name of the newest extract in a
// category.
func (s *StoreSource) Latest(ctx context.Context, category Category) ([]byte, string, error) {
	if !category.IsValid() {
		return nil, "", fmt.Errorf("unknown source category %q", category)
	}

	infos, err := s.store.List(ctx, path.Join(s.prefix, string(category))+"/")
	if err != nil {
		return nil, "", fmt.Errorf("failed to list %s extracts: %w", category, err)
	}
	if len(infos) == 0 {
		return nil, "", &ErrNoFile{Category: category}
	}

	newest := infos[0]
	for _, info := range infos[1:] {
		if info.LastModified.After(newest.LastModified) {
			newest = info
		}
	}

	data, err := s.store.Download(ctx, newest.Key)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download %s extract %s: %w", category, newest.Key, err)
	}
	return data, path.Base(newest.Key), nil
}
