package views

import (
	"context"
	"testing"
	"time"

	"securebank/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPagedListNavigation(t *testing.T) {
	txs := &fakeTxs{all: makeTxs(25)}
	h := NewHistory(txs, 10)
	ctx := context.Background()

	page, err := h.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Content, 10)

	page, err = h.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Number)

	page, err = h.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Number)
	assert.Len(t, page.Content, 5)

	calls := len(txs.filters)
	page, err = h.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Number)
	assert.Len(t, txs.filters, calls, "no request past the last page")

	_, err = h.GoTo(ctx, 0)
	require.NoError(t, err)
	calls = len(txs.filters)
	page, err = h.Prev(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, page.Number)
	assert.Len(t, txs.filters, calls, "no request before the first page")
}

func TestHistoryFilterResetsToFirstPage(t *testing.T) {
	txs := &fakeTxs{all: makeTxs(25)}
	h := NewHistory(txs, 10)
	ctx := context.Background()

	_, err := h.GoTo(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, txs.last().Page)

	_, err = h.SetFilter(ctx, models.TransactionFilter{Type: models.TransactionWithdraw, Page: 5})
	require.NoError(t, err)

	got := txs.last()
	assert.Equal(t, 0, got.Page)
	assert.Equal(t, 10, got.Size)
	assert.Equal(t, models.TransactionWithdraw, got.Type)

	_, err = h.ResetFilter(ctx)
	require.NoError(t, err)
	assert.True(t, txs.last().IsZero())
}

func TestPresets(t *testing.T) {
	now := time.Date(2024, 3, 31, 15, 0, 0, 0, time.UTC)

	f, ok := PresetFilter(PresetLast7Days, now)
	require.True(t, ok)
	assert.Equal(t, "2024-03-24", f.StartDate)
	assert.Equal(t, "2024-03-31", f.EndDate)

	f, ok = PresetFilter(PresetLast30Days, now)
	require.True(t, ok)
	assert.Equal(t, "2024-03-01", f.StartDate)

	f, ok = PresetFilter(PresetTransfersOnly, now)
	require.True(t, ok)
	assert.Equal(t, models.TransactionTransfer, f.Type)
	assert.Empty(t, f.StartDate)

	_, ok = PresetFilter("yesterday", now)
	assert.False(t, ok)
}

func TestApplyUnknownPreset(t *testing.T) {
	h := NewHistory(&fakeTxs{}, 10)
	_, err := h.ApplyPreset(context.Background(), "nope", time.Now())
	var perr *UnknownPresetError
	assert.ErrorAs(t, err, &perr)
}

type fakeStatements struct {
	id int64
	q  models.StatementQuery
}

func (f *fakeStatements) Statement(_ context.Context, id int64, q models.StatementQuery) (*models.Page[models.Transaction], error) {
	f.id, f.q = id, q
	return paginate(makeTxs(3), q.Page, q.Size), nil
}

func TestStatementCarriesQuery(t *testing.T) {
	fs := &fakeStatements{}
	st := NewStatement(fs, 42, models.StatementQuery{StartDate: "2024-01-01", Type: models.TransactionDeposit}, 20)

	page, err := st.Refresh(context.Background())
	require.NoError(t, err)
	assert.Len(t, page.Content, 3)
	assert.Equal(t, int64(42), fs.id)
	assert.Equal(t, "2024-01-01", fs.q.StartDate)
	assert.Equal(t, 20, fs.q.Size)
	assert.Equal(t, 0, fs.q.Page)
}
