package views

import (
	"context"
	"fmt"
	"sync"

	"securebank/internal/models"
)

// AdminAPI is the admin surface the console needs; services.AdminService
// satisfies it.
type AdminAPI interface {
	Dashboard(ctx context.Context) (*models.DashboardMetrics, error)
	Users(ctx context.Context, q models.PageQuery) (*models.Page[models.User], error)
	Accounts(ctx context.Context, q models.PageQuery) (*models.Page[models.Account], error)
	Transactions(ctx context.Context, filter models.AdminTransactionFilter) (*models.Page[models.Transaction], error)
	Freeze(ctx context.Context, accountID int64) (*models.Account, error)
	Unfreeze(ctx context.Context, accountID int64) (*models.Account, error)
	AuditLogs(ctx context.Context, q models.PageQuery) (*models.Page[models.AuditLog], error)
	DailyReport(ctx context.Context, date string) (*models.DailyReport, error)
}

// AdminConsole groups the admin tables. Each table pages independently.
type AdminConsole struct {
	api AdminAPI

	Users        *PagedList[models.User]
	Accounts     *PagedList[models.Account]
	Transactions *PagedList[models.Transaction]
	AuditLogs    *PagedList[models.AuditLog]

	metrics Loader[*models.DashboardMetrics]

	mu       sync.Mutex
	txFilter models.AdminTransactionFilter
}

func NewAdminConsole(api AdminAPI, size int) *AdminConsole {
	c := &AdminConsole{api: api}
	c.Users = NewPagedList(func(ctx context.Context, page, size int) (*models.Page[models.User], error) {
		return api.Users(ctx, models.PageQuery{Page: page, Size: size})
	}, size)
	c.Accounts = NewPagedList(func(ctx context.Context, page, size int) (*models.Page[models.Account], error) {
		return api.Accounts(ctx, models.PageQuery{Page: page, Size: size})
	}, size)
	c.Transactions = NewPagedList(func(ctx context.Context, page, size int) (*models.Page[models.Transaction], error) {
		f := c.TransactionFilter()
		f.Page, f.Size = page, size
		return api.Transactions(ctx, f)
	}, size)
	c.AuditLogs = NewPagedList(func(ctx context.Context, page, size int) (*models.Page[models.AuditLog], error) {
		return api.AuditLogs(ctx, models.PageQuery{Page: page, Size: size})
	}, size)
	return c
}

func (c *AdminConsole) Metrics(ctx context.Context) (*models.DashboardMetrics, error) {
	return c.metrics.Load(ctx, c.api.Dashboard)
}

func (c *AdminConsole) TransactionFilter() models.AdminTransactionFilter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.txFilter
}

// FilterTransactions replaces the admin filter and reloads from page zero.
func (c *AdminConsole) FilterTransactions(ctx context.Context, f models.AdminTransactionFilter) (*models.Page[models.Transaction], error) {
	f.Page, f.Size = 0, 0
	c.mu.Lock()
	c.txFilter = f
	c.mu.Unlock()
	c.Transactions.Reset()
	return c.Transactions.Refresh(ctx)
}

// Freeze freezes an account and re-fetches the accounts table. The table is
// never patched locally.
func (c *AdminConsole) Freeze(ctx context.Context, accountID int64) (*models.Account, error) {
	acc, err := c.api.Freeze(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if _, err := c.Accounts.Refresh(ctx); err != nil {
		return acc, fmt.Errorf("reload accounts: %w", err)
	}
	return acc, nil
}

func (c *AdminConsole) Unfreeze(ctx context.Context, accountID int64) (*models.Account, error) {
	acc, err := c.api.Unfreeze(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if _, err := c.Accounts.Refresh(ctx); err != nil {
		return acc, fmt.Errorf("reload accounts: %w", err)
	}
	return acc, nil
}

func (c *AdminConsole) DailyReport(ctx context.Context, date string) (*models.DailyReport, error) {
	return c.api.DailyReport(ctx, date)
}

func (c *AdminConsole) Stop() {
	c.Users.Stop()
	c.Accounts.Stop()
	c.Transactions.Stop()
	c.AuditLogs.Stop()
	c.metrics.Stop()
}
