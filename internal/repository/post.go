package repository

import (
	"context"

	"blogserver/internal/domain"
)

// PostRepository exposes persistence operations for Post aggregates.
type PostRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, post *domain.Post) (int64, error)
	Update(ctx context.Context, post *domain.Post) error
	Get(ctx context.Context, id int64) (*domain.Post, error)
	List(ctx context.Context, page domain.PageRequest) ([]domain.Post, int64, error)
	ListByCategory(ctx context.Context, categoryID int64, page domain.PageRequest) ([]domain.Post, int64, error)
	ListByUser(ctx context.Context, userID int64, page domain.PageRequest) ([]domain.Post, int64, error)
	SearchByTitle(ctx context.Context, keyword string) ([]domain.Post, error)
	Delete(ctx context.Context, id int64) error
}

// CommentRepository manages post comments.
type CommentRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, comment *domain.Comment) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Comment, error)
	ListByPost(ctx context.Context, postID int64) ([]domain.Comment, error)
	Delete(ctx context.Context, id int64) error
}
