package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"blogserver/internal/domain"
	"blogserver/internal/repository"
)

type fixture struct {
	db         *sql.DB
	users      repository.UserRepository
	categories repository.CategoryRepository
	posts      repository.PostRepository
	comments   repository.CommentRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "blog.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	f := &fixture{
		db:         db,
		users:      NewUserRepository(db),
		categories: NewCategoryRepository(db),
		posts:      NewPostRepository(db),
		comments:   NewCommentRepository(db),
	}

	ctx := context.Background()
	for _, repo := range []interface {
		Init(context.Context) error
	}{f.users, f.categories, f.posts, f.comments} {
		if err := repo.Init(ctx); err != nil {
			t.Fatalf("init schema: %v", err)
		}
	}
	return f
}

func (f *fixture) seedUser(t *testing.T, email string) *domain.User {
	t.Helper()
	user := &domain.User{Name: "tester", Email: email, PasswordHash: "x", Role: domain.RoleUser}
	if _, err := f.users.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func (f *fixture) seedCategory(t *testing.T) *domain.Category {
	t.Helper()
	category := &domain.Category{Title: "golang", Description: "go articles"}
	if _, err := f.categories.Create(context.Background(), category); err != nil {
		t.Fatalf("seed category: %v", err)
	}
	return category
}

func (f *fixture) seedPost(t *testing.T, title string, userID, categoryID int64) *domain.Post {
	t.Helper()
	post := &domain.Post{
		Title:      title,
		Content:    "body",
		ImageName:  domain.DefaultPostImage,
		AddedDate:  time.Now().UTC(),
		UserID:     userID,
		CategoryID: categoryID,
	}
	if _, err := f.posts.Create(context.Background(), post); err != nil {
		t.Fatalf("seed post: %v", err)
	}
	return post
}

func TestUserDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "dup@example.com")

	_, err := f.users.Create(context.Background(), &domain.User{
		Name: "again", Email: "dup@example.com", PasswordHash: "y", Role: domain.RoleUser,
	})
	if !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("err = %v, want %v", err, repository.ErrDuplicate)
	}
}

func TestUserRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.seedUser(t, "round@example.com")

	got, err := f.users.GetByEmail(ctx, "round@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got.ID != user.ID || got.Role != domain.RoleUser {
		t.Fatalf("got %+v", got)
	}

	got.About = "updated"
	if err := f.users.Update(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	again, err := f.users.GetByID(ctx, got.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if again.About != "updated" {
		t.Fatalf("about = %q", again.About)
	}

	if _, err := f.users.GetByID(ctx, 9999); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("missing user err = %v, want %v", err, repository.ErrNotFound)
	}
}

func TestCategoryDeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user := f.seedUser(t, "author@example.com")
	category := f.seedCategory(t)
	post := f.seedPost(t, "doomed", user.ID, category.ID)

	comment := &domain.Comment{Content: "nice", UserID: user.ID, PostID: post.ID}
	if _, err := f.comments.Create(ctx, comment); err != nil {
		t.Fatalf("create comment: %v", err)
	}

	if err := f.categories.Delete(ctx, category.ID); err != nil {
		t.Fatalf("delete category: %v", err)
	}

	if _, err := f.posts.Get(ctx, post.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("post err = %v, want %v", err, repository.ErrNotFound)
	}
	if _, err := f.comments.Get(ctx, comment.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("comment err = %v, want %v", err, repository.ErrNotFound)
	}
}

func TestUserDeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	author := f.seedUser(t, "author@example.com")
	commenter := f.seedUser(t, "commenter@example.com")
	category := f.seedCategory(t)
	post := f.seedPost(t, "mine", author.ID, category.ID)

	comment := &domain.Comment{Content: "hello", UserID: commenter.ID, PostID: post.ID}
	if _, err := f.comments.Create(ctx, comment); err != nil {
		t.Fatalf("create comment: %v", err)
	}

	if err := f.users.Delete(ctx, author.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	if _, err := f.posts.Get(ctx, post.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("post err = %v, want %v", err, repository.ErrNotFound)
	}
	// the comment hangs off the post, so it goes too even though its
	// author still exists
	if _, err := f.comments.Get(ctx, comment.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("comment err = %v, want %v", err, repository.ErrNotFound)
	}
	if _, err := f.users.GetByID(ctx, commenter.ID); err != nil {
		t.Fatalf("commenter must survive: %v", err)
	}
}

func TestPostPagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user := f.seedUser(t, "author@example.com")
	category := f.seedCategory(t)
	for i := 0; i < 7; i++ {
		f.seedPost(t, fmt.Sprintf("post-%d", i), user.ID, category.ID)
	}

	page := domain.PageRequest{Number: 0, Size: 3, SortBy: "id", SortDir: domain.SortAsc}
	posts, total, err := f.posts.List(ctx, page)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 7 {
		t.Fatalf("total = %d, want 7", total)
	}
	if len(posts) != 3 {
		t.Fatalf("len = %d, want 3", len(posts))
	}
	if posts[0].Title != "post-0" {
		t.Fatalf("first = %q", posts[0].Title)
	}

	page.Number = 2
	posts, _, err = f.posts.List(ctx, page)
	if err != nil {
		t.Fatalf("list last page: %v", err)
	}
	if len(posts) != 1 || posts[0].Title != "post-6" {
		t.Fatalf("last page = %+v", posts)
	}
}

func TestPostSortDescending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user := f.seedUser(t, "author@example.com")
	category := f.seedCategory(t)
	f.seedPost(t, "alpha", user.ID, category.ID)
	f.seedPost(t, "zulu", user.ID, category.ID)

	page := domain.PageRequest{Number: 0, Size: 10, SortBy: "title", SortDir: domain.SortDesc}
	posts, _, err := f.posts.List(ctx, page)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(posts) != 2 || posts[0].Title != "zulu" {
		t.Fatalf("order = %+v", posts)
	}
}

func TestPostSortKeyWhitelisted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user := f.seedUser(t, "author@example.com")
	category := f.seedCategory(t)
	f.seedPost(t, "only", user.ID, category.ID)

	// a hostile sort key must not reach the SQL; it falls back to added_date
	page := domain.PageRequest{Number: 0, Size: 10, SortBy: "id; DROP TABLE posts", SortDir: domain.SortAsc}
	posts, total, err := f.posts.List(ctx, page)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(posts) != 1 {
		t.Fatalf("total = %d len = %d", total, len(posts))
	}
}

func TestSearchByTitle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user := f.seedUser(t, "author@example.com")
	category := f.seedCategory(t)
	f.seedPost(t, "learning go generics", user.ID, category.ID)
	f.seedPost(t, "rust for gophers", user.ID, category.ID)
	f.seedPost(t, "unrelated", user.ID, category.ID)

	posts, err := f.posts.SearchByTitle(ctx, "go")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("len = %d, want 2", len(posts))
	}
}

func TestListByCategoryAndUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.seedUser(t, "alice@example.com")
	bob := f.seedUser(t, "bob@example.com")
	catA := f.seedCategory(t)
	catB := &domain.Category{Title: "infra", Description: "ops articles"}
	if _, err := f.categories.Create(ctx, catB); err != nil {
		t.Fatalf("create category: %v", err)
	}

	f.seedPost(t, "a1", alice.ID, catA.ID)
	f.seedPost(t, "a2", alice.ID, catB.ID)
	f.seedPost(t, "b1", bob.ID, catA.ID)

	page := domain.PageRequest{Number: 0, Size: 10, SortBy: "id", SortDir: domain.SortAsc}

	posts, total, err := f.posts.ListByCategory(ctx, catA.ID, page)
	if err != nil {
		t.Fatalf("list by category: %v", err)
	}
	if total != 2 || len(posts) != 2 {
		t.Fatalf("category total = %d len = %d", total, len(posts))
	}

	posts, total, err = f.posts.ListByUser(ctx, alice.ID, page)
	if err != nil {
		t.Fatalf("list by user: %v", err)
	}
	if total != 2 || len(posts) != 2 {
		t.Fatalf("user total = %d len = %d", total, len(posts))
	}
	for _, p := range posts {
		if p.UserID != alice.ID {
			t.Fatalf("foreign post in result: %+v", p)
		}
	}
}
