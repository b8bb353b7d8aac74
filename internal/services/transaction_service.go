// Path: internal/services/transaction_service.go
package services

import (
	"context"
	"net/http"
	"net/url"

	"securebank/internal/models"
)

// TransactionService submits and lists transactions. It never touches a
// balance locally; callers re-fetch accounts after a success.
type TransactionService interface {
	Deposit(ctx context.Context, req models.TransactionRequest) (*models.Transaction, error)
	Withdraw(ctx context.Context, req models.TransactionRequest) (*models.Transaction, error)
	Transfer(ctx context.Context, req models.TransferRequest) (*models.Transaction, error)
	List(ctx context.Context, filter models.TransactionFilter) (*models.Page[models.Transaction], error)
	Get(ctx context.Context, transactionID string) (*models.Transaction, error)
}

type transactionService struct {
	client *Client
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(client *Client) TransactionService {
	return &transactionService{client: client}
}

func (s *transactionService) Deposit(ctx context.Context, req models.TransactionRequest) (*models.Transaction, error) {
	return s.submit(ctx, "/transactions/deposit", req)
}

func (s *transactionService) Withdraw(ctx context.Context, req models.TransactionRequest) (*models.Transaction, error) {
	return s.submit(ctx, "/transactions/withdraw", req)
}

func (s *transactionService) Transfer(ctx context.Context, req models.TransferRequest) (*models.Transaction, error) {
	return s.submit(ctx, "/transactions/transfer", req)
}

func (s *transactionService) submit(ctx context.Context, path string, body any) (*models.Transaction, error) {
	var tx models.Transaction
	if err := s.client.do(ctx, request{method: http.MethodPost, path: path, body: body}, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// List returns one page of the user's transactions narrowed by filter.
func (s *transactionService) List(ctx context.Context, filter models.TransactionFilter) (*models.Page[models.Transaction], error) {
	return getPage[models.Transaction](ctx, s.client, "/transactions", filter.Values())
}

func (s *transactionService) Get(ctx context.Context, transactionID string) (*models.Transaction, error) {
	var tx models.Transaction
	path := "/transactions/" + url.PathEscape(transactionID)
	if err := s.client.do(ctx, request{method: http.MethodGet, path: path}, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}
