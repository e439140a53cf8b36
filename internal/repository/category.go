package repository

import (
	"context"

	"blogserver/internal/domain"
)

// CategoryRepository defines persistence operations for Category entities.
// Deleting a category removes its posts and, transitively, their comments.
type CategoryRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, category *domain.Category) (int64, error)
	Update(ctx context.Context, category *domain.Category) error
	Get(ctx context.Context, id int64) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
	Delete(ctx context.Context, id int64) error
}
