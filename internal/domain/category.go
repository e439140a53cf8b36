package domain

import "time"

// Category groups posts. It has no owner; mutation is gated purely by role.
type Category struct {
	ID          int64
	Title       string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
