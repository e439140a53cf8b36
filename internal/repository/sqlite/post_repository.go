package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"blogserver/internal/domain"
	"blogserver/internal/repository"
)

const createPostsTable = `
CREATE TABLE IF NOT EXISTS posts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	image_name TEXT NOT NULL DEFAULT 'default-image.jpg',
	added_date DATETIME NOT NULL,
	user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	category_id INTEGER NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_posts_user ON posts(user_id);
CREATE INDEX IF NOT EXISTS idx_posts_category ON posts(category_id);
`

// sortColumns maps API sort keys to real columns. Anything else falls back
// to added_date so request input never reaches the ORDER BY clause raw.
var sortColumns = map[string]string{
	"id":        "id",
	"title":     "title",
	"addedDate": "added_date",
}

type PostRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) repository.PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createPostsTable); err != nil {
		return fmt.Errorf("create posts table: %w", err)
	}
	return nil
}

func (r *PostRepository) Create(ctx context.Context, post *domain.Post) (int64, error) {
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
INSERT INTO posts (title, content, image_name, added_date, user_id, category_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		post.Title,
		post.Content,
		post.ImageName,
		post.AddedDate,
		post.UserID,
		post.CategoryID,
		post.CreatedAt,
		post.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert post: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("post last insert id: %w", err)
	}
	post.ID = id
	return id, nil
}

// Update rewrites mutable post fields. Owner and category are never touched.
func (r *PostRepository) Update(ctx context.Context, post *domain.Post) error {
	post.UpdatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
UPDATE posts
SET title = ?, content = ?, image_name = ?, updated_at = ?
WHERE id = ?`,
		post.Title,
		post.Content,
		post.ImageName,
		post.UpdatedAt,
		post.ID,
	)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update post rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("post %d: %w", post.ID, repository.ErrNotFound)
	}
	return nil
}

func (r *PostRepository) Get(ctx context.Context, id int64) (*domain.Post, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, title, content, image_name, added_date, user_id, category_id, created_at, updated_at
FROM posts
WHERE id = ?`,
		id,
	)
	return scanPost(row)
}

func (r *PostRepository) List(ctx context.Context, page domain.PageRequest) ([]domain.Post, int64, error) {
	return r.listPage(ctx, "", nil, page)
}

func (r *PostRepository) ListByCategory(ctx context.Context, categoryID int64, page domain.PageRequest) ([]domain.Post, int64, error) {
	return r.listPage(ctx, "category_id = ?", []any{categoryID}, page)
}

func (r *PostRepository) ListByUser(ctx context.Context, userID int64, page domain.PageRequest) ([]domain.Post, int64, error) {
	return r.listPage(ctx, "user_id = ?", []any{userID}, page)
}

func (r *PostRepository) SearchByTitle(ctx context.Context, keyword string) ([]domain.Post, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, title, content, image_name, added_date, user_id, category_id, created_at, updated_at
FROM posts
WHERE title LIKE ?
ORDER BY added_date`,
		"%"+keyword+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}
	defer rows.Close()
	return collectPosts(rows)
}

func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete post rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("post %d: %w", id, repository.ErrNotFound)
	}
	return nil
}

func (r *PostRepository) listPage(ctx context.Context, where string, args []any, page domain.PageRequest) ([]domain.Post, int64, error) {
	countQuery := `SELECT COUNT(*) FROM posts`
	listQuery := `
SELECT id, title, content, image_name, added_date, user_id, category_id, created_at, updated_at
FROM posts`
	if where != "" {
		countQuery += " WHERE " + where
		listQuery += "\nWHERE " + where
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	column, ok := sortColumns[page.SortBy]
	if !ok {
		column = "added_date"
	}
	direction := "ASC"
	if strings.EqualFold(page.SortDir, domain.SortDesc) {
		direction = "DESC"
	}
	listQuery += fmt.Sprintf("\nORDER BY %s %s\nLIMIT ? OFFSET ?", column, direction)

	args = append(args, page.Size, page.Number*page.Size)
	rows, err := r.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts, err := collectPosts(rows)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func collectPosts(rows *sql.Rows) ([]domain.Post, error) {
	var posts []domain.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return posts, nil
}

func scanPost(row interface {
	Scan(dest ...any) error
}) (*domain.Post, error) {
	var post domain.Post
	if err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Content,
		&post.ImageName,
		&post.AddedDate,
		&post.UserID,
		&post.CategoryID,
		&post.CreatedAt,
		&post.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("post: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan post: %w", err)
	}
	return &post, nil
}
