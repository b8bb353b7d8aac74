package views

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"securebank/internal/intent"
	"securebank/internal/models"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAccounts() []models.Account {
	return []models.Account{
		{ID: 1, AccountNumber: "1111222233334444", AccountType: models.AccountTypeSavings, Balance: decimal.RequireFromString("1500.50"), Currency: "INR", Status: models.AccountStatusActive},
		{ID: 2, AccountNumber: "5555666677778888", AccountType: models.AccountTypeCurrent, Balance: decimal.RequireFromString("499.50"), Currency: "INR", Status: models.AccountStatusActive},
		{ID: 3, AccountNumber: "9999000011112222", AccountType: models.AccountTypeSavings, Balance: decimal.RequireFromString("10"), Currency: "USD", Status: models.AccountStatusFrozen},
	}
}

func TestComputeStats(t *testing.T) {
	txs := makeTxs(8)
	txs[1].Status = models.TransactionPending
	txs[6].Status = models.TransactionPending

	s := ComputeStats(sampleAccounts(), txs)

	assert.Equal(t, 3, s.AccountCount)
	assert.Equal(t, 5, s.RecentCount)
	assert.Equal(t, 2, s.PendingCount)
	assert.Equal(t, []string{"INR", "USD"}, s.Currencies())
	assert.True(t, decimal.NewFromInt(2000).Equal(s.TotalBalance["INR"]))
	assert.True(t, decimal.NewFromInt(10).Equal(s.TotalBalance["USD"]))
}

func TestDashboardRefresh(t *testing.T) {
	accounts := &fakeAccounts{accounts: sampleAccounts()}
	txs := &fakeTxs{all: makeTxs(3)}
	d := NewDashboard(accounts, txs, time.Hour, nil)
	fixed := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return fixed }

	data, err := d.Refresh(context.Background())
	require.NoError(t, err)

	assert.Len(t, data.Accounts, 3)
	assert.Len(t, data.Recent, 3)
	assert.Equal(t, fixed, data.RefreshedAt)
	assert.True(t, data.Own.Has("5555666677778888"))
	assert.Equal(t, DefaultPageSize, txs.last().Size)
}

func TestDashboardRefreshFailureKeepsPrevious(t *testing.T) {
	accounts := &fakeAccounts{accounts: sampleAccounts()}
	d := NewDashboard(accounts, &fakeTxs{all: makeTxs(2)}, time.Hour, nil)

	_, err := d.Refresh(context.Background())
	require.NoError(t, err)

	accounts.err = errors.New("offline")
	_, err = d.Refresh(context.Background())
	assert.Error(t, err)

	st := d.State()
	assert.Len(t, st.Data.Accounts, 3)
	assert.Error(t, st.Err)
}

func TestDashboardWatchPolls(t *testing.T) {
	txs := &fakeTxs{all: makeTxs(1)}
	d := NewDashboard(&fakeAccounts{accounts: sampleAccounts()}, txs, 5*time.Millisecond, nil)

	var mu sync.Mutex
	loads := 0
	d.Watch(context.Background(), func(st State[DashboardData]) {
		if !st.Loading && st.Loaded {
			mu.Lock()
			loads++
			mu.Unlock()
		}
	})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return loads >= 3
	}, time.Second, time.Millisecond)

	d.Stop()
	d.Stop()
}

func TestRenderTransactionsSigns(t *testing.T) {
	own := NewOwnAccounts(sampleAccounts())
	txs := []models.Transaction{
		{TransactionID: "TXN170000000000001", TransactionType: models.TransactionTransfer, Amount: decimal.NewFromInt(250), FromAccountNumber: "1111222233334444", ToAccountNumber: "4444333322221111", Status: models.TransactionCompleted},
		{TransactionID: "TXN170000000000002", TransactionType: models.TransactionDeposit, Amount: decimal.NewFromInt(1000), ToAccountNumber: "1111222233334444", Status: models.TransactionCompleted},
	}

	out := RenderTransactions(txs, own, "INR")

	assert.Contains(t, out, "-₹250.00")
	assert.Contains(t, out, "+₹1,000.00")
	assert.Contains(t, out, "...00000001")
	assert.Contains(t, out, "****4444")
}

func TestRenderAccountsMasksNumbers(t *testing.T) {
	out := RenderAccounts(sampleAccounts())
	assert.Contains(t, out, "XXXXXXXXXXXX4444")
	assert.NotContains(t, out, "1111222233334444")
	assert.Contains(t, out, "₹1,500.50")
}

func TestRenderEmpty(t *testing.T) {
	assert.Contains(t, RenderAccounts(nil), "No accounts")
	assert.Contains(t, RenderTransactions(nil, nil, "INR"), "No transactions")
	assert.Contains(t, PageFooter[models.Transaction](nil), "Page 0 of 0")
	assert.Contains(t, PageFooter(&models.Page[models.Transaction]{TotalPages: 3, TotalElements: 25, Number: 1}), "Page 2 of 3 (25 total)")
}

func TestRenderPreviewFlagsInsufficient(t *testing.T) {
	calc := intent.NewCalculator(intent.DefaultFeeSchedule(), intent.DefaultLowBalanceThreshold)
	in := intent.Input{
		Kind:   models.TransactionWithdraw,
		Source: &models.Account{ID: 1, AccountNumber: "1111222233334444", Balance: decimal.NewFromInt(500), Currency: "INR"},
		Amount: "1000",
	}

	out := RenderPreview(in, calc.Preview(in))

	for _, want := range []string{"₹1,000.00", "₹5.00", "₹1,005.00", "-₹505.00", "insufficient funds"} {
		assert.True(t, strings.Contains(out, want), "missing %q in\n%s", want, out)
	}
}

type fakeAdmin struct {
	mu       sync.Mutex
	accounts []models.Account
	filter   models.AdminTransactionFilter
	accCalls int
}

func (f *fakeAdmin) Dashboard(context.Context) (*models.DashboardMetrics, error) {
	return &models.DashboardMetrics{TotalUsers: 4, DailyVolume: map[string]decimal.Decimal{"2024-05-01": decimal.NewFromInt(10)}}, nil
}

func (f *fakeAdmin) Users(_ context.Context, q models.PageQuery) (*models.Page[models.User], error) {
	return paginate([]models.User{{ID: 1, Username: "alice"}}, q.Page, q.Size), nil
}

func (f *fakeAdmin) Accounts(_ context.Context, q models.PageQuery) (*models.Page[models.Account], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accCalls++
	return paginate(f.accounts, q.Page, q.Size), nil
}

func (f *fakeAdmin) Transactions(_ context.Context, filter models.AdminTransactionFilter) (*models.Page[models.Transaction], error) {
	f.filter = filter
	return paginate(makeTxs(2), filter.Page, filter.Size), nil
}

func (f *fakeAdmin) setStatus(id int64, status models.AccountStatus) *models.Account {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.accounts {
		if f.accounts[i].ID == id {
			f.accounts[i].Status = status
			acc := f.accounts[i]
			return &acc
		}
	}
	return nil
}

func (f *fakeAdmin) Freeze(_ context.Context, id int64) (*models.Account, error) {
	return f.setStatus(id, models.AccountStatusFrozen), nil
}

func (f *fakeAdmin) Unfreeze(_ context.Context, id int64) (*models.Account, error) {
	return f.setStatus(id, models.AccountStatusActive), nil
}

func (f *fakeAdmin) AuditLogs(_ context.Context, q models.PageQuery) (*models.Page[models.AuditLog], error) {
	return paginate([]models.AuditLog{{ID: 1, Action: "LOGIN"}}, q.Page, q.Size), nil
}

func (f *fakeAdmin) DailyReport(_ context.Context, date string) (*models.DailyReport, error) {
	return &models.DailyReport{Date: date}, nil
}

func TestAdminFreezeRefetchesAccounts(t *testing.T) {
	api := &fakeAdmin{accounts: sampleAccounts()}
	c := NewAdminConsole(api, 10)
	defer c.Stop()

	_, err := c.Accounts.Refresh(context.Background())
	require.NoError(t, err)

	acc, err := c.Freeze(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.AccountStatusFrozen, acc.Status)
	assert.Equal(t, 2, api.accCalls)
	assert.Equal(t, models.AccountStatusFrozen, c.Accounts.State().Data.Content[0].Status)
}

func TestAdminFilterTransactions(t *testing.T) {
	api := &fakeAdmin{}
	c := NewAdminConsole(api, 10)

	_, err := c.FilterTransactions(context.Background(), models.AdminTransactionFilter{Username: "alice", AccountNumber: "1111222233334444"})
	require.NoError(t, err)

	want := models.AdminTransactionFilter{
		TransactionFilter: models.TransactionFilter{Size: 10},
		Username:          "alice",
		AccountNumber:     "1111222233334444",
	}
	decimalEqual := cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })
	if diff := cmp.Diff(want, api.filter, decimalEqual); diff != "" {
		t.Errorf("filter mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderMetrics(t *testing.T) {
	c := NewAdminConsole(&fakeAdmin{}, 10)
	m, err := c.Metrics(context.Background())
	require.NoError(t, err)

	out := RenderMetrics(m)
	assert.Contains(t, out, "Admin Dashboard")
	assert.Contains(t, out, "2024-05-01")
}
