package views

import (
	"context"
	"sync"

	"securebank/internal/models"

	"github.com/shopspring/decimal"
)

type fakeTxs struct {
	mu      sync.Mutex
	filters []models.TransactionFilter
	all     []models.Transaction
	err     error
}

func (f *fakeTxs) List(_ context.Context, filter models.TransactionFilter) (*models.Page[models.Transaction], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filters = append(f.filters, filter)
	if f.err != nil {
		return nil, f.err
	}
	return paginate(f.all, filter.Page, filter.Size), nil
}

func (f *fakeTxs) last() models.TransactionFilter {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.filters[len(f.filters)-1]
}

type fakeAccounts struct {
	accounts []models.Account
	err      error
}

func (f *fakeAccounts) List(context.Context) ([]models.Account, error) {
	return f.accounts, f.err
}

func paginate[T any](all []T, page, size int) *models.Page[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(all)
	pages := (total + size - 1) / size
	start := min(page*size, total)
	end := min(start+size, total)
	return &models.Page[T]{
		Content:       all[start:end],
		TotalPages:    pages,
		TotalElements: int64(total),
		Number:        page,
		Size:          size,
	}
}

func makeTxs(n int) []models.Transaction {
	out := make([]models.Transaction, n)
	for i := range out {
		out[i] = models.Transaction{
			ID:              int64(i + 1),
			TransactionID:   "TXN17000000000000" + string(rune('0'+i%10)),
			TransactionType: models.TransactionDeposit,
			Amount:          decimal.NewFromInt(int64(100 * (i + 1))),
			Status:          models.TransactionCompleted,
		}
	}
	return out
}
