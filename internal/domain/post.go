package domain

import "time"

// DefaultPostImage is applied when a post is created or updated without an image.
const DefaultPostImage = "default-image.jpg"

// Post is an article written by a user under a category. The owning user is
// set at creation and never reassigned.
type Post struct {
	ID         int64
	Title      string
	Content    string
	ImageName  string
	AddedDate  time.Time
	UserID     int64
	CategoryID int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Comments   []Comment
}

// Comment is a remark left on a post. The owning user is set at creation.
type Comment struct {
	ID        int64
	Content   string
	UserID    int64
	PostID    int64
	CreatedAt time.Time
}
