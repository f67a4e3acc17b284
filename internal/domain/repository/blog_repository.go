package repository

import (
	"context"

	"github.com/oksasatya/blogilista/internal/domain/entity"
)

// BlogRepository defines the interface for blog-related database operations.
type BlogRepository interface {
	List(ctx context.Context) ([]entity.Blog, error)
	GetByID(ctx context.Context, id string) (*entity.Blog, error)
	ListByIDs(ctx context.Context, ids []string) ([]entity.Blog, error)
	// Create persists b and appends its id to the owner's back-references
	// in one transaction. b.UserID must be set.
	Create(ctx context.Context, b *entity.Blog) error
	// Update applies patch to the blog with the given id. A missing blog is not an error.
	Update(ctx context.Context, id string, patch entity.BlogPatch) error
	// Delete removes the blog. A missing blog is not an error.
	Delete(ctx context.Context, id string) error
}

// BlogIndex is the search side of blogs. Implementations are best effort.
type BlogIndex interface {
	Index(ctx context.Context, b *entity.Blog) error
	Remove(ctx context.Context, id string) error
	Search(ctx context.Context, q string, size int) ([]string, error)
}

// EventPublisher emits domain events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event string, payload map[string]any) error
}
