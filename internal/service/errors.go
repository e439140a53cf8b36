package service

import (
	"errors"

	"blogserver/internal/domain"
)

var (
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorizedOwner is returned when a requester tries to mutate a
	// resource they do not own without holding the admin role.
	ErrUnauthorizedOwner = errors.New("not authorized to modify this resource")
)

// canMutate implements the ownership rule shared by every mutation path:
// admins may touch anything, everyone else only what they own.
func canMutate(ownerID int64, requester *domain.User) bool {
	if requester == nil {
		return false
	}
	return requester.IsAdmin() || requester.ID == ownerID
}
