package service

import (
	"context"
	"errors"
	"time"

	"blogserver/internal/domain"
	"blogserver/internal/repository"
)

// PostInput carries the caller-settable fields of a post.
type PostInput struct {
	Title     string
	Content   string
	ImageName string
}

// PostService coordinates post operations. Update and Delete enforce the
// ownership rule and take the requester explicitly.
type PostService interface {
	Create(ctx context.Context, userID, categoryID int64, input PostInput) (*domain.Post, error)
	Update(ctx context.Context, requester *domain.User, id int64, input PostInput) (*domain.Post, error)
	Delete(ctx context.Context, requester *domain.User, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Post, error)
	List(ctx context.Context, page domain.PageRequest) (*domain.PostPage, error)
	ListByCategory(ctx context.Context, categoryID int64, page domain.PageRequest) (*domain.PostPage, error)
	ListByUser(ctx context.Context, userID int64, page domain.PageRequest) (*domain.PostPage, error)
	Search(ctx context.Context, keyword string) ([]domain.Post, error)
}

type postService struct {
	posts      repository.PostRepository
	comments   repository.CommentRepository
	users      repository.UserRepository
	categories repository.CategoryRepository
}

func NewPostService(posts repository.PostRepository, comments repository.CommentRepository, users repository.UserRepository, categories repository.CategoryRepository) PostService {
	return &postService{
		posts:      posts,
		comments:   comments,
		users:      users,
		categories: categories,
	}
}

func (s *postService) Create(ctx context.Context, userID, categoryID int64, input PostInput) (*domain.Post, error) {
	if input.Title == "" {
		return nil, errors.New("post title is required")
	}
	if input.Content == "" {
		return nil, errors.New("post content is required")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	category, err := s.categories.Get(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	imageName := input.ImageName
	if imageName == "" {
		imageName = domain.DefaultPostImage
	}

	post := &domain.Post{
		Title:      input.Title,
		Content:    input.Content,
		ImageName:  imageName,
		AddedDate:  time.Now().UTC(),
		UserID:     user.ID,
		CategoryID: category.ID,
	}

	if _, err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) Update(ctx context.Context, requester *domain.User, id int64, input PostInput) (*domain.Post, error) {
	existing, err := s.posts.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !canMutate(existing.UserID, requester) {
		return nil, ErrUnauthorizedOwner
	}

	existing.Title = input.Title
	existing.Content = input.Content
	if input.ImageName == "" {
		existing.ImageName = domain.DefaultPostImage
	} else {
		existing.ImageName = input.ImageName
	}

	if err := s.posts.Update(ctx, existing); err != nil {
		return nil, err
	}
	return s.withComments(ctx, existing)
}

func (s *postService) Delete(ctx context.Context, requester *domain.User, id int64) error {
	existing, err := s.posts.Get(ctx, id)
	if err != nil {
		return err
	}

	if !canMutate(existing.UserID, requester) {
		return ErrUnauthorizedOwner
	}

	return s.posts.Delete(ctx, id)
}

func (s *postService) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	post, err := s.posts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withComments(ctx, post)
}

func (s *postService) List(ctx context.Context, page domain.PageRequest) (*domain.PostPage, error) {
	posts, total, err := s.posts.List(ctx, page)
	if err != nil {
		return nil, err
	}
	return s.pageOf(ctx, posts, page, total)
}

func (s *postService) ListByCategory(ctx context.Context, categoryID int64, page domain.PageRequest) (*domain.PostPage, error) {
	if _, err := s.categories.Get(ctx, categoryID); err != nil {
		return nil, err
	}
	posts, total, err := s.posts.ListByCategory(ctx, categoryID, page)
	if err != nil {
		return nil, err
	}
	return s.pageOf(ctx, posts, page, total)
}

func (s *postService) ListByUser(ctx context.Context, userID int64, page domain.PageRequest) (*domain.PostPage, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	posts, total, err := s.posts.ListByUser(ctx, userID, page)
	if err != nil {
		return nil, err
	}
	return s.pageOf(ctx, posts, page, total)
}

func (s *postService) Search(ctx context.Context, keyword string) ([]domain.Post, error) {
	return s.posts.SearchByTitle(ctx, keyword)
}

func (s *postService) pageOf(ctx context.Context, posts []domain.Post, page domain.PageRequest, total int64) (*domain.PostPage, error) {
	for i := range posts {
		comments, err := s.comments.ListByPost(ctx, posts[i].ID)
		if err != nil {
			return nil, err
		}
		posts[i].Comments = comments
	}
	result := domain.NewPostPage(posts, page, total)
	return &result, nil
}

func (s *postService) withComments(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	comments, err := s.comments.ListByPost(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	post.Comments = comments
	return post, nil
}
