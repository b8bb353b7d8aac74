package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"securebank/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method string
	path   string
	query  string
	auth   string
	reqID  string
	body   string
}

// fakeAPI answers every request with status and body and remembers the last
// request it saw.
type fakeAPI struct {
	srv   *httptest.Server
	last  atomic.Pointer[recorded]
	calls atomic.Int32
}

func newFakeAPI(t *testing.T, status int, body string) *fakeAPI {
	t.Helper()
	f := &fakeAPI{}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		b, _ := io.ReadAll(r.Body)
		f.last.Store(&recorded{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			auth:   r.Header.Get("Authorization"),
			reqID:  r.Header.Get("X-Request-ID"),
			body:   string(b),
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func newTestClient(t *testing.T, baseURL string, token *string) *Client {
	t.Helper()
	c, err := NewClient(baseURL+"/api", 5*time.Second, TokenFunc(func() string { return *token }), nil)
	require.NoError(t, err)
	return c
}

func TestNewClientRejectsRelativeURL(t *testing.T) {
	_, err := NewClient("/api", time.Second, nil, nil)
	assert.Error(t, err)
}

func TestListAccountsDecodesEnvelope(t *testing.T) {
	api := newFakeAPI(t, http.StatusOK, `{"success":true,"message":"ok","data":[
		{"id":1,"accountNumber":"1234567890123456","accountType":"SAVINGS","balance":1500.50,"currency":"INR","status":"ACTIVE","createdAt":"2024-01-15T10:30:00"}]}`)
	token := "abc"
	accounts, err := NewAccountService(newTestClient(t, api.srv.URL, &token)).List(context.Background())
	require.NoError(t, err)

	require.Len(t, accounts, 1)
	assert.Equal(t, "1234567890123456", accounts[0].AccountNumber)
	assert.True(t, decimal.RequireFromString("1500.50").Equal(accounts[0].Balance))
	assert.Equal(t, 2024, accounts[0].CreatedAt.Year())

	got := api.last.Load()
	assert.Equal(t, http.MethodGet, got.method)
	assert.Equal(t, "/api/accounts", got.path)
	assert.Equal(t, "Bearer abc", got.auth)
	assert.NotEmpty(t, got.reqID)
}

func TestTokenIsReadPerCall(t *testing.T) {
	api := newFakeAPI(t, http.StatusOK, `{"success":true,"data":[]}`)
	token := "first"
	svc := NewAccountService(newTestClient(t, api.srv.URL, &token))

	_, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer first", api.last.Load().auth)

	token = ""
	_, err = svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, api.last.Load().auth)
}

func TestLoginNeverSendsBearer(t *testing.T) {
	api := newFakeAPI(t, http.StatusOK, `{"success":true,"data":{"token":"jwt","type":"Bearer","user":{"id":7,"username":"alice","role":"USER"}}}`)
	token := "stale"
	resp, err := NewAuthService(newTestClient(t, api.srv.URL, &token)).
		Login(context.Background(), models.LoginRequest{Username: "alice", Password: "pw"})
	require.NoError(t, err)

	assert.Equal(t, "jwt", resp.Token)
	require.NotNil(t, resp.User)
	assert.Equal(t, int64(7), resp.User.ID)

	got := api.last.Load()
	assert.Empty(t, got.auth)
	assert.JSONEq(t, `{"username":"alice","password":"pw"}`, got.body)
}

func TestErrorMessageFromEnvelope(t *testing.T) {
	api := newFakeAPI(t, http.StatusBadRequest, `{"success":false,"message":"Insufficient balance","data":null}`)
	token := "t"
	_, err := NewTransactionService(newTestClient(t, api.srv.URL, &token)).
		Withdraw(context.Background(), models.TransactionRequest{AccountID: 1, Amount: decimal.NewFromInt(10)})

	remote, ok := AsRemote(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, remote.Status)
	assert.Equal(t, "Insufficient balance", remote.Message)
	assert.False(t, remote.IsNetwork())
}

func TestErrorMessageFromErrorField(t *testing.T) {
	api := newFakeAPI(t, http.StatusForbidden, `{"error":"Forbidden"}`)
	token := "t"
	_, err := NewAdminService(newTestClient(t, api.srv.URL, &token)).Dashboard(context.Background())

	remote, ok := AsRemote(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, remote.Status)
	assert.Equal(t, "Forbidden", remote.Message)
}

func TestErrorGenericMessageForNonJSON(t *testing.T) {
	api := newFakeAPI(t, http.StatusInternalServerError, `<html>oops</html>`)
	token := "t"
	_, err := NewAccountService(newTestClient(t, api.srv.URL, &token)).Get(context.Background(), 3)

	remote, ok := AsRemote(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, remote.Status)
	assert.Equal(t, genericFailureMessage, remote.Message)
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	token := "t"
	_, err := NewAccountService(newTestClient(t, url, &token)).List(context.Background())

	remote, ok := AsRemote(err)
	require.True(t, ok)
	assert.True(t, remote.IsNetwork())
	assert.Equal(t, 0, remote.Status)
}

func TestTransactionListQuery(t *testing.T) {
	api := newFakeAPI(t, http.StatusOK, `{"success":true,"data":{"content":[{"id":1,"transactionId":"TXN1","transactionType":"DEPOSIT","amount":100,"fee":0,"status":"COMPLETED","createdAt":"2024-01-15T10:30:00Z"}],"totalPages":3,"totalElements":21,"number":1,"size":10}}`)
	token := "t"
	page, err := NewTransactionService(newTestClient(t, api.srv.URL, &token)).List(context.Background(), models.TransactionFilter{
		Page:      1,
		Size:      10,
		Type:      models.TransactionDeposit,
		MinAmount: decimal.NewNullDecimal(decimal.NewFromInt(50)),
	})
	require.NoError(t, err)

	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, int64(21), page.TotalElements)
	require.Len(t, page.Content, 1)
	assert.Equal(t, models.TransactionDeposit, page.Content[0].TransactionType)

	got := api.last.Load()
	assert.Equal(t, "/api/transactions", got.path)
	assert.Equal(t, "minAmount=50&page=1&size=10&type=DEPOSIT", got.query)
}

func TestPageAcceptsBareList(t *testing.T) {
	api := newFakeAPI(t, http.StatusOK, `{"success":true,"data":[{"id":1,"username":"a","role":"USER"},{"id":2,"username":"b","role":"ADMIN"}]}`)
	token := "t"
	page, err := NewAdminService(newTestClient(t, api.srv.URL, &token)).Users(context.Background(), models.PageQuery{})
	require.NoError(t, err)

	assert.Len(t, page.Content, 2)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, int64(2), page.TotalElements)
}

func TestTransferBody(t *testing.T) {
	api := newFakeAPI(t, http.StatusOK, `{"success":true,"data":{"id":9,"transactionId":"TXN9","transactionType":"TRANSFER","amount":250.75,"fee":10,"status":"COMPLETED"}}`)
	token := "t"
	tx, err := NewTransactionService(newTestClient(t, api.srv.URL, &token)).Transfer(context.Background(), models.TransferRequest{
		FromAccountID:   4,
		ToAccountNumber: "9876543210987654",
		Amount:          decimal.RequireFromString("250.75"),
		Description:     "rent",
	})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(10).Equal(tx.Fee))

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(api.last.Load().body), &body))
	assert.Equal(t, float64(4), body["fromAccountId"])
	assert.Equal(t, "9876543210987654", body["toAccountNumber"])
	assert.Equal(t, 250.75, body["amount"])
	assert.Equal(t, "rent", body["description"])
}

func TestBalanceShapes(t *testing.T) {
	for name, payload := range map[string]string{
		"bare":    `{"success":true,"data":1234.56}`,
		"wrapped": `{"success":true,"data":{"balance":1234.56}}`,
	} {
		t.Run(name, func(t *testing.T) {
			api := newFakeAPI(t, http.StatusOK, payload)
			token := "t"
			bal, err := NewAccountService(newTestClient(t, api.srv.URL, &token)).Balance(context.Background(), 5)
			require.NoError(t, err)
			assert.Equal(t, "1234.56", bal.StringFixed(2))
			assert.Equal(t, "/api/accounts/5/balance", api.last.Load().path)
		})
	}
}

func TestDailyReportQuery(t *testing.T) {
	api := newFakeAPI(t, http.StatusOK, `{"success":true,"data":{"date":"2024-03-01","transactionCount":4,"totalVolume":900}}`)
	token := "t"
	report, err := NewAdminService(newTestClient(t, api.srv.URL, &token)).DailyReport(context.Background(), "2024-03-01")
	require.NoError(t, err)

	assert.Equal(t, int64(4), report.TransactionCount)
	assert.Equal(t, "date=2024-03-01", api.last.Load().query)
}

func TestFreezePath(t *testing.T) {
	api := newFakeAPI(t, http.StatusOK, `{"success":true,"data":{"id":12,"status":"FROZEN"}}`)
	token := "t"
	acc, err := NewAdminService(newTestClient(t, api.srv.URL, &token)).Freeze(context.Background(), 12)
	require.NoError(t, err)

	assert.Equal(t, models.AccountStatusFrozen, acc.Status)
	got := api.last.Load()
	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "/api/admin/accounts/12/freeze", got.path)
	assert.Equal(t, int32(1), api.calls.Load())
}
