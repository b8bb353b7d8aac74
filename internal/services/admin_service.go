package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"securebank/internal/models"
)

// AdminService wraps the /admin endpoints. The server enforces the role;
// a non-admin token gets a 403 RemoteError.
type AdminService interface {
	Dashboard(ctx context.Context) (*models.DashboardMetrics, error)
	Users(ctx context.Context, q models.PageQuery) (*models.Page[models.User], error)
	Accounts(ctx context.Context, q models.PageQuery) (*models.Page[models.Account], error)
	Transactions(ctx context.Context, filter models.AdminTransactionFilter) (*models.Page[models.Transaction], error)
	Freeze(ctx context.Context, accountID int64) (*models.Account, error)
	Unfreeze(ctx context.Context, accountID int64) (*models.Account, error)
	AuditLogs(ctx context.Context, q models.PageQuery) (*models.Page[models.AuditLog], error)
	DailyReport(ctx context.Context, date string) (*models.DailyReport, error)
}

type adminService struct {
	client *Client
}

// NewAdminService creates a new AdminService.
func NewAdminService(client *Client) AdminService {
	return &adminService{client: client}
}

func (s *adminService) Dashboard(ctx context.Context) (*models.DashboardMetrics, error) {
	var metrics models.DashboardMetrics
	if err := s.client.do(ctx, request{method: http.MethodGet, path: "/admin/dashboard"}, &metrics); err != nil {
		return nil, err
	}
	return &metrics, nil
}

func (s *adminService) Users(ctx context.Context, q models.PageQuery) (*models.Page[models.User], error) {
	return getPage[models.User](ctx, s.client, "/admin/users", q.Values())
}

func (s *adminService) Accounts(ctx context.Context, q models.PageQuery) (*models.Page[models.Account], error) {
	return getPage[models.Account](ctx, s.client, "/admin/accounts", q.Values())
}

func (s *adminService) Transactions(ctx context.Context, filter models.AdminTransactionFilter) (*models.Page[models.Transaction], error) {
	return getPage[models.Transaction](ctx, s.client, "/admin/transactions", filter.Values())
}

func (s *adminService) Freeze(ctx context.Context, accountID int64) (*models.Account, error) {
	return s.setFrozen(ctx, accountID, "freeze")
}

func (s *adminService) Unfreeze(ctx context.Context, accountID int64) (*models.Account, error) {
	return s.setFrozen(ctx, accountID, "unfreeze")
}

func (s *adminService) setFrozen(ctx context.Context, accountID int64, action string) (*models.Account, error) {
	var account models.Account
	path := fmt.Sprintf("/admin/accounts/%d/%s", accountID, action)
	if err := s.client.do(ctx, request{method: http.MethodPost, path: path}, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *adminService) AuditLogs(ctx context.Context, q models.PageQuery) (*models.Page[models.AuditLog], error) {
	return getPage[models.AuditLog](ctx, s.client, "/admin/audit-logs", q.Values())
}

// DailyReport fetches the report for date (YYYY-MM-DD); empty means today
// on the server's clock.
func (s *adminService) DailyReport(ctx context.Context, date string) (*models.DailyReport, error) {
	var query url.Values
	if date != "" {
		query = url.Values{"date": {date}}
	}
	var report models.DailyReport
	if err := s.client.do(ctx, request{method: http.MethodGet, path: "/admin/reports/daily", query: query}, &report); err != nil {
		return nil, err
	}
	return &report, nil
}
