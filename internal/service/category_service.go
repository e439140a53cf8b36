package service

import (
	"context"
	"errors"

	"blogserver/internal/domain"
	"blogserver/internal/repository"
)

// CategoryService manages categories. Mutation is gated purely by role at
// the routing layer; categories have no owner.
type CategoryService interface {
	Create(ctx context.Context, title, description string) (*domain.Category, error)
	Update(ctx context.Context, id int64, title, description string) (*domain.Category, error)
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
	Delete(ctx context.Context, id int64) error
}

type categoryService struct {
	categories repository.CategoryRepository
}

func NewCategoryService(categories repository.CategoryRepository) CategoryService {
	return &categoryService{categories: categories}
}

func (s *categoryService) Create(ctx context.Context, title, description string) (*domain.Category, error) {
	if title == "" {
		return nil, errors.New("category title is required")
	}

	category := &domain.Category{
		Title:       title,
		Description: description,
	}
	if _, err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) Update(ctx context.Context, id int64, title, description string) (*domain.Category, error) {
	existing, err := s.categories.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.Title = title
	existing.Description = description
	if err := s.categories.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *categoryService) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	return s.categories.Get(ctx, id)
}

func (s *categoryService) List(ctx context.Context) ([]domain.Category, error) {
	return s.categories.List(ctx)
}

// Delete removes the category and, through the storage cascade, every post
// under it and their comments.
func (s *categoryService) Delete(ctx context.Context, id int64) error {
	return s.categories.Delete(ctx, id)
}
