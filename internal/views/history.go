package views

import (
	"context"
	"sync"
	"time"

	"securebank/internal/models"
)

// TransactionLister is the listing half of services.TransactionService.
type TransactionLister interface {
	List(ctx context.Context, filter models.TransactionFilter) (*models.Page[models.Transaction], error)
}

// Preset is a canned filter.
type Preset string

const (
	PresetLast7Days     Preset = "last7days"
	PresetLast30Days    Preset = "last30days"
	PresetTransfersOnly Preset = "transfers"
	PresetDepositsOnly  Preset = "deposits"
)

// Presets lists every preset in display order.
var Presets = []Preset{PresetLast7Days, PresetLast30Days, PresetTransfersOnly, PresetDepositsOnly}

const filterDateLayout = "2006-01-02"

// PresetFilter builds the filter for p relative to now. ok is false for an
// unknown preset.
func PresetFilter(p Preset, now time.Time) (models.TransactionFilter, bool) {
	today := now.Format(filterDateLayout)
	switch p {
	case PresetLast7Days:
		return models.TransactionFilter{StartDate: now.AddDate(0, 0, -7).Format(filterDateLayout), EndDate: today}, true
	case PresetLast30Days:
		return models.TransactionFilter{StartDate: now.AddDate(0, 0, -30).Format(filterDateLayout), EndDate: today}, true
	case PresetTransfersOnly:
		return models.TransactionFilter{Type: models.TransactionTransfer}, true
	case PresetDepositsOnly:
		return models.TransactionFilter{Type: models.TransactionDeposit}, true
	}
	return models.TransactionFilter{}, false
}

// History is the filtered, paginated transaction list. Changing the filter
// always returns to the first page.
type History struct {
	list *PagedList[models.Transaction]

	mu     sync.Mutex
	filter models.TransactionFilter
}

func NewHistory(txs TransactionLister, size int) *History {
	h := &History{}
	h.list = NewPagedList(func(ctx context.Context, page, size int) (*models.Page[models.Transaction], error) {
		f := h.Filter()
		f.Page, f.Size = page, size
		return txs.List(ctx, f)
	}, size)
	return h
}

func (h *History) Filter() models.TransactionFilter {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.filter
}

// SetFilter replaces the filter and reloads from page zero. Paging fields
// of f are ignored.
func (h *History) SetFilter(ctx context.Context, f models.TransactionFilter) (*models.Page[models.Transaction], error) {
	f.Page, f.Size = 0, 0
	h.mu.Lock()
	h.filter = f
	h.mu.Unlock()
	h.list.Reset()
	return h.list.Refresh(ctx)
}

func (h *History) ApplyPreset(ctx context.Context, p Preset, now time.Time) (*models.Page[models.Transaction], error) {
	f, ok := PresetFilter(p, now)
	if !ok {
		return nil, &UnknownPresetError{Preset: p}
	}
	return h.SetFilter(ctx, f)
}

// ResetFilter clears every criterion.
func (h *History) ResetFilter(ctx context.Context) (*models.Page[models.Transaction], error) {
	return h.SetFilter(ctx, models.TransactionFilter{})
}

func (h *History) Refresh(ctx context.Context) (*models.Page[models.Transaction], error) {
	return h.list.Refresh(ctx)
}

func (h *History) Next(ctx context.Context) (*models.Page[models.Transaction], error) {
	return h.list.Next(ctx)
}

func (h *History) Prev(ctx context.Context) (*models.Page[models.Transaction], error) {
	return h.list.Prev(ctx)
}

func (h *History) GoTo(ctx context.Context, page int) (*models.Page[models.Transaction], error) {
	return h.list.GoTo(ctx, page)
}

func (h *History) State() State[*models.Page[models.Transaction]] { return h.list.State() }

func (h *History) Stop() { h.list.Stop() }

type UnknownPresetError struct {
	Preset Preset
}

func (e *UnknownPresetError) Error() string {
	return "unknown filter preset " + string(e.Preset)
}

// StatementFetcher is the statement half of services.AccountService.
type StatementFetcher interface {
	Statement(ctx context.Context, id int64, q models.StatementQuery) (*models.Page[models.Transaction], error)
}

// NewStatement pages through one account's history narrowed by q.
func NewStatement(accounts StatementFetcher, accountID int64, q models.StatementQuery, size int) *PagedList[models.Transaction] {
	return NewPagedList(func(ctx context.Context, page, size int) (*models.Page[models.Transaction], error) {
		q := q
		q.Page, q.Size = page, size
		return accounts.Statement(ctx, accountID, q)
	}, size)
}
