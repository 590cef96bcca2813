package kernel

// Page represents pagination metadata
type Page struct {
	Number int `json:"page"`      // 1-based
	Size   int `json:"page_size"`
	Total  int `json:"total"`
	Pages  int `json:"pages"`
}

// Paginated is a generic container for paginated data with metadata
type Paginated[T any] struct {
	Items []T  `json:"items"`
	Page  Page `json:"pagination"`
	Empty bool `json:"empty"`
}

// NewPaginated creates a new paginated result with calculated fields
func NewPaginated[T any](items []T, page, size, total int) Paginated[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if size > 0 {
		pages = (total + size - 1) / size
	}

	return Paginated[T]{
		Items: items,
		Page: Page{
			Number: page,
			Size:   size,
			Total:  total,
			Pages:  pages,
		},
		Empty: len(items) == 0,
	}
}

func (p Paginated[T]) HasNext() bool {
	return p.Page.Number < p.Page.Pages
}

func (p Paginated[T]) HasPrevious() bool {
	return p.Page.Number > 1
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PaginationOptions holds options for pagination queries
type PaginationOptions struct {
	Page     int // 1-based
	PageSize int
}

// Normalize clamps the page to >= 1 and the size to (0, MaxPageSize].
func (o PaginationOptions) Normalize() PaginationOptions {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.PageSize <= 0 {
		o.PageSize = DefaultPageSize
	}
	if o.PageSize > MaxPageSize {
		o.PageSize = MaxPageSize
	}
	return o
}

// Offset is the number of rows to skip.
func (o PaginationOptions) Offset() int {
	return (o.Page - 1) * o.PageSize
}
