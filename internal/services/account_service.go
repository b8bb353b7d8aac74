// Path: internal/services/account_service.go
package services

import (
	"context"
	"fmt"
	"net/http"

	"securebank/internal/models"

	"github.com/shopspring/decimal"
)

// AccountService handles account-related calls.
type AccountService interface {
	List(ctx context.Context) ([]models.Account, error)
	Get(ctx context.Context, id int64) (*models.Account, error)
	Balance(ctx context.Context, id int64) (decimal.Decimal, error)
	Statement(ctx context.Context, id int64, q models.StatementQuery) (*models.Page[models.Transaction], error)
	Create(ctx context.Context, req models.CreateAccountRequest) (*models.Account, error)
	UpdateStatus(ctx context.Context, id int64, status models.AccountStatus) (*models.Account, error)
}

type accountService struct {
	client *Client
}

// NewAccountService creates a new AccountService.
func NewAccountService(client *Client) AccountService {
	return &accountService{client: client}
}

// List returns the signed-in user's accounts.
func (s *accountService) List(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	if err := s.client.do(ctx, request{method: http.MethodGet, path: "/accounts"}, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (s *accountService) Get(ctx context.Context, id int64) (*models.Account, error) {
	var account models.Account
	if err := s.client.do(ctx, request{method: http.MethodGet, path: accountPath(id)}, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// Balance accepts either a bare number or an object with a balance member.
func (s *accountService) Balance(ctx context.Context, id int64) (decimal.Decimal, error) {
	raw, err := s.client.send(ctx, request{method: http.MethodGet, path: accountPath(id) + "/balance"})
	if err != nil {
		return decimal.Zero, err
	}
	var plain decimal.Decimal
	if err := plain.UnmarshalJSON(raw); err == nil {
		return plain, nil
	}
	var wrapped struct {
		Balance decimal.Decimal `json:"balance"`
	}
	if err := decodeInto(raw, &wrapped); err != nil {
		return decimal.Zero, err
	}
	return wrapped.Balance, nil
}

func (s *accountService) Statement(ctx context.Context, id int64, q models.StatementQuery) (*models.Page[models.Transaction], error) {
	return getPage[models.Transaction](ctx, s.client, accountPath(id)+"/statement", q.Values())
}

func (s *accountService) Create(ctx context.Context, req models.CreateAccountRequest) (*models.Account, error) {
	var account models.Account
	if err := s.client.do(ctx, request{method: http.MethodPost, path: "/accounts", body: req}, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *accountService) UpdateStatus(ctx context.Context, id int64, status models.AccountStatus) (*models.Account, error) {
	var account models.Account
	body := models.UpdateStatusRequest{Status: status}
	if err := s.client.do(ctx, request{method: http.MethodPatch, path: accountPath(id) + "/status", body: body}, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func accountPath(id int64) string {
	return fmt.Sprintf("/accounts/%d", id)
}
