package domain

// Sort directions accepted by paged listings.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// PageRequest carries pagination and sorting parameters for post listings.
type PageRequest struct {
	Number  int
	Size    int
	SortBy  string
	SortDir string
}

// PostPage is one page of posts together with paging metadata.
type PostPage struct {
	Content       []Post
	PageNumber    int
	PageSize      int
	TotalElements int64
	TotalPages    int
	LastPage      bool
}

// NewPostPage derives paging metadata from the total row count.
func NewPostPage(posts []Post, req PageRequest, total int64) PostPage {
	totalPages := 0
	if req.Size > 0 {
		totalPages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return PostPage{
		Content:       posts,
		PageNumber:    req.Number,
		PageSize:      req.Size,
		TotalElements: total,
		TotalPages:    totalPages,
		LastPage:      req.Number >= totalPages-1,
	}
}
