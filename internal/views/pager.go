package views

import (
	"context"
	"sync"

	"securebank/internal/models"
)

const DefaultPageSize = 10

// PageFetcher loads one zero-based page.
type PageFetcher[T any] func(ctx context.Context, page, size int) (*models.Page[T], error)

// PagedList is a paginated view over a remote listing.
type PagedList[T any] struct {
	fetch  PageFetcher[T]
	loader Loader[*models.Page[T]]

	mu   sync.Mutex
	page int
	size int
}

func NewPagedList[T any](fetch PageFetcher[T], size int) *PagedList[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	return &PagedList[T]{fetch: fetch, size: size}
}

// Refresh reloads the current page.
func (l *PagedList[T]) Refresh(ctx context.Context) (*models.Page[T], error) {
	l.mu.Lock()
	page, size := l.page, l.size
	l.mu.Unlock()

	return l.loader.Load(ctx, func(ctx context.Context) (*models.Page[T], error) {
		return l.fetch(ctx, page, size)
	})
}

// GoTo moves to page and loads it. Negative pages clamp to zero.
func (l *PagedList[T]) GoTo(ctx context.Context, page int) (*models.Page[T], error) {
	if page < 0 {
		page = 0
	}
	l.mu.Lock()
	l.page = page
	l.mu.Unlock()
	return l.Refresh(ctx)
}

// Next loads the following page, staying put on the last one.
func (l *PagedList[T]) Next(ctx context.Context) (*models.Page[T], error) {
	page := l.Page()
	if st := l.loader.State(); st.Loaded && st.Data != nil && page+1 >= st.Data.TotalPages {
		return st.Data, nil
	}
	return l.GoTo(ctx, page+1)
}

func (l *PagedList[T]) Prev(ctx context.Context) (*models.Page[T], error) {
	page := l.Page()
	if page == 0 {
		if st := l.loader.State(); st.Loaded {
			return st.Data, nil
		}
	}
	return l.GoTo(ctx, page-1)
}

// Reset returns to the first page without loading.
func (l *PagedList[T]) Reset() {
	l.mu.Lock()
	l.page = 0
	l.mu.Unlock()
}

func (l *PagedList[T]) Page() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.page
}

func (l *PagedList[T]) State() State[*models.Page[T]] { return l.loader.State() }

func (l *PagedList[T]) OnChange(fn func(State[*models.Page[T]])) { l.loader.OnChange(fn) }

func (l *PagedList[T]) Stop() { l.loader.Stop() }
