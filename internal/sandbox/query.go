package sandbox

import (
	"fmt"
	"time"

	"securebank/internal/models"
	"securebank/pkg/utils"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
	dateLayout      = "2006-01-02"
)

func paginate[T any](items []T, page, size int) models.Page[T] {
	if size <= 0 {
		size = defaultPageSize
	}
	size = min(size, maxPageSize)
	page = max(page, 0)

	total := len(items)
	start := min(page*size, total)
	end := min(start+size, total)
	content := make([]T, end-start)
	copy(content, items[start:end])
	return models.Page[T]{
		Content:       content,
		TotalPages:    (total + size - 1) / size,
		TotalElements: int64(total),
		Number:        page,
		Size:          size,
	}
}

// newTxMatcher compiles f into a predicate. Dates are whole days in local
// time; the end date is inclusive.
func newTxMatcher(f models.TransactionFilter) (func(models.Transaction) bool, error) {
	var from, to time.Time
	if f.StartDate != "" {
		d, err := time.ParseInLocation(dateLayout, f.StartDate, time.Local)
		if err != nil {
			return nil, badRequest("Invalid startDate", fmt.Sprintf("expected %s, got %q", dateLayout, f.StartDate))
		}
		from = d
	}
	if f.EndDate != "" {
		d, err := time.ParseInLocation(dateLayout, f.EndDate, time.Local)
		if err != nil {
			return nil, badRequest("Invalid endDate", fmt.Sprintf("expected %s, got %q", dateLayout, f.EndDate))
		}
		_, to = utils.DayBounds(d)
	}
	if f.Type != "" && !f.Type.Valid() {
		return nil, badRequest("Invalid type", string(f.Type))
	}

	return func(tx models.Transaction) bool {
		created := tx.CreatedAt.Time
		switch {
		case !from.IsZero() && created.Before(from):
			return false
		case !to.IsZero() && created.After(to):
			return false
		case f.Type != "" && tx.TransactionType != f.Type:
			return false
		case f.Status != "" && tx.Status != f.Status:
			return false
		case f.MinAmount.Valid && tx.Amount.LessThan(f.MinAmount.Decimal):
			return false
		case f.MaxAmount.Valid && tx.Amount.GreaterThan(f.MaxAmount.Decimal):
			return false
		}
		return true
	}, nil
}
