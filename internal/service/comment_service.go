package service

import (
	"context"
	"errors"

	"blogserver/internal/domain"
	"blogserver/internal/repository"
)

// CommentService manages comments. Any authenticated user may comment on any
// post; deletion is restricted to the comment's owner or an admin.
type CommentService interface {
	Create(ctx context.Context, userID, postID int64, content string) (*domain.Comment, error)
	Delete(ctx context.Context, requester *domain.User, id int64) error
}

type commentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
	users    repository.UserRepository
}

func NewCommentService(comments repository.CommentRepository, posts repository.PostRepository, users repository.UserRepository) CommentService {
	return &commentService{
		comments: comments,
		posts:    posts,
		users:    users,
	}
}

func (s *commentService) Create(ctx context.Context, userID, postID int64, content string) (*domain.Comment, error) {
	if content == "" {
		return nil, errors.New("comment content is required")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	post, err := s.posts.Get(ctx, postID)
	if err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		Content: content,
		UserID:  user.ID,
		PostID:  post.ID,
	}

	if _, err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *commentService) Delete(ctx context.Context, requester *domain.User, id int64) error {
	existing, err := s.comments.Get(ctx, id)
	if err != nil {
		return err
	}

	if !canMutate(existing.UserID, requester) {
		return ErrUnauthorizedOwner
	}

	return s.comments.Delete(ctx, id)
}
