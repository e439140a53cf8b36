package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"blogserver/internal/domain"
	"blogserver/internal/repository"
)

// UserInput carries the fields a caller may set on a user account.
type UserInput struct {
	Name     string
	Email    string
	Password string
	About    string
}

// UserService describes user lifecycle operations. Update takes the resolved
// requester explicitly; it is never derived from ambient state.
type UserService interface {
	Register(ctx context.Context, input UserInput) (*domain.User, error)
	Create(ctx context.Context, input UserInput, role domain.Role) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	Update(ctx context.Context, requester *domain.User, id int64, input UserInput) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Delete(ctx context.Context, id int64) error
}

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

// Register creates an account with the default USER role. Role elevation is
// only possible through Create, behind the admin-only route.
func (s *userService) Register(ctx context.Context, input UserInput) (*domain.User, error) {
	return s.create(ctx, input, domain.RoleUser)
}

func (s *userService) Create(ctx context.Context, input UserInput, role domain.Role) (*domain.User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q", role)
	}
	return s.create(ctx, input, role)
}

func (s *userService) create(ctx context.Context, input UserInput, role domain.Role) (*domain.User, error) {
	email := normalizeEmail(input.Email)
	if email == "" {
		return nil, errors.New("email is required")
	}
	if strings.TrimSpace(input.Password) == "" {
		return nil, errors.New("password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: string(hash),
		About:        input.About,
		Role:         role,
	}

	if _, err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return sanitizeUser(user), nil
}

// Update rewrites the account identified by id. An admin may update any
// account; everyone else only their own. The role never changes here.
func (s *userService) Update(ctx context.Context, requester *domain.User, id int64, input UserInput) (*domain.User, error) {
	existing, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !canMutate(existing.ID, requester) {
		return nil, ErrUnauthorizedOwner
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	existing.Name = strings.TrimSpace(input.Name)
	existing.Email = normalizeEmail(input.Email)
	existing.PasswordHash = string(hash)
	existing.About = input.About

	if err := s.users.Update(ctx, existing); err != nil {
		return nil, err
	}
	return sanitizeUser(existing), nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

func (s *userService) Delete(ctx context.Context, id int64) error {
	return s.users.Delete(ctx, id)
}

// normalizeEmail lowercases the login name so registration and every lookup
// share one case policy.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	clean := *user
	clean.PasswordHash = ""
	return &clean
}
