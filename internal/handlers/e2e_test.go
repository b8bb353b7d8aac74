package handlers

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"securebank/internal/intent"
	"securebank/internal/models"
	"securebank/internal/sandbox"
	"securebank/internal/services"
	"securebank/internal/session"
	"securebank/internal/validate"
	"securebank/internal/views"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// client is one signed-in user talking to the sandbox over real HTTP.
type client struct {
	store    *session.Store
	accounts services.AccountService
	txs      services.TransactionService
	admin    services.AdminService
}

func serve(t *testing.T) string {
	t.Helper()
	bank := sandbox.NewBank(sandbox.Options{BcryptCost: bcrypt.MinCost})
	_, err := bank.SeedAdmin("admin", "Admin@123")
	require.NoError(t, err)
	app := NewApp(NewHandler(bank, sandbox.NewTokenService("e2e-secret", time.Hour), nil), AppConfig{})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })
	return "http://" + ln.Addr().String() + "/api"
}

func newClient(t *testing.T, baseURL string) *client {
	t.Helper()
	var store *session.Store
	c, err := services.NewClient(baseURL, 5*time.Second, services.TokenFunc(func() string { return store.Token() }), nil)
	require.NoError(t, err)
	store = session.NewStore(session.NewMemoryStorage(), services.NewAuthService(c), nil, session.Options{})
	return &client{
		store:    store,
		accounts: services.NewAccountService(c),
		txs:      services.NewTransactionService(c),
		admin:    services.NewAdminService(c),
	}
}

func remoteStatus(t *testing.T, err error) int {
	t.Helper()
	remote, ok := services.AsRemote(err)
	require.True(t, ok, "expected RemoteError, got %v", err)
	return remote.Status
}

func TestEndToEnd(t *testing.T) {
	ctx := context.Background()
	baseURL := serve(t)
	calc := intent.NewCalculator(intent.DefaultFeeSchedule(), intent.DefaultLowBalanceThreshold)

	alice := newClient(t, baseURL)
	_, err := alice.store.Register(ctx, models.RegisterRequest{
		Username: "alice", Email: "alice@example.com", Password: "Secret@123", FullName: "Alice",
	})
	require.NoError(t, err)
	assert.False(t, alice.store.IsAuthenticated())

	_, err = alice.store.Login(ctx, models.LoginRequest{Username: "alice", Password: "wrong"})
	var authErr *session.AuthError
	require.ErrorAs(t, err, &authErr)

	sess, err := alice.store.Login(ctx, models.LoginRequest{Username: "alice", Password: "Secret@123"})
	require.NoError(t, err)
	assert.Equal(t, "alice", sess.User.Username)
	assert.False(t, alice.store.IsAdmin())

	bob := newClient(t, baseURL)
	_, err = bob.store.Register(ctx, models.RegisterRequest{
		Username: "bob", Email: "bob@example.com", Password: "Secret@123", FullName: "Bob",
	})
	require.NoError(t, err)
	_, err = bob.store.Login(ctx, models.LoginRequest{Username: "bob", Password: "Secret@123"})
	require.NoError(t, err)

	savings, err := alice.accounts.Create(ctx, models.CreateAccountRequest{AccountType: models.AccountTypeSavings, Currency: "INR"})
	require.NoError(t, err)
	bobAcc, err := bob.accounts.Create(ctx, models.CreateAccountRequest{AccountType: models.AccountTypeCurrent, Currency: "INR"})
	require.NoError(t, err)

	_, err = calc.Submit(ctx, intent.Input{Kind: models.TransactionDeposit, Source: savings, Amount: "1000"}, alice.txs)
	require.NoError(t, err)
	savings, err = alice.accounts.Get(ctx, savings.ID)
	require.NoError(t, err)

	// The preview and the server agree on an overdraft.
	over := intent.Input{Kind: models.TransactionWithdraw, Source: savings, Amount: "1000"}
	preview := calc.Preview(over)
	assert.True(t, preview.Projection.Insufficient)
	assert.True(t, preview.Projection.Balance.Equal(decimal.NewFromInt(-5)))
	_, err = calc.Submit(ctx, over, alice.txs)
	assert.Equal(t, http.StatusBadRequest, remoteStatus(t, err))

	_, err = calc.Submit(ctx, intent.Input{Kind: models.TransactionTransfer, Source: savings, DestinationAccountNumber: bobAcc.AccountNumber[:15], Amount: "1"}, alice.txs)
	var verr *validate.ValidationError
	require.ErrorAs(t, err, &verr)

	tx, err := calc.Submit(ctx, intent.Input{
		Kind:                     models.TransactionTransfer,
		Source:                   savings,
		DestinationAccountNumber: bobAcc.AccountNumber,
		Amount:                   "200",
		Description:              "rent",
	}, alice.txs)
	require.NoError(t, err)
	assert.True(t, tx.Fee.Equal(decimal.NewFromInt(10)))

	balance, err := alice.accounts.Balance(ctx, savings.ID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(790)), balance.String())

	got, err := bob.txs.Get(ctx, tx.TransactionID)
	require.NoError(t, err)
	bobAccounts, err := bob.accounts.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, views.DirectionCredit, views.DirectionOf(*got, views.NewOwnAccounts(bobAccounts)))

	history := views.NewHistory(alice.txs, 10)
	defer history.Stop()
	page, err := history.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.TotalElements)
	page, err = history.ApplyPreset(ctx, views.PresetTransfersOnly, time.Now())
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "rent", page.Content[0].Description)

	_, err = alice.admin.Dashboard(ctx)
	assert.Equal(t, http.StatusForbidden, remoteStatus(t, err))

	admin := newClient(t, baseURL)
	_, err = admin.store.Login(ctx, models.LoginRequest{Username: "admin", Password: "Admin@123"})
	require.NoError(t, err)
	require.NoError(t, admin.store.RequireAdmin())

	console := views.NewAdminConsole(admin.admin, 10)
	defer console.Stop()
	_, err = console.Accounts.Refresh(ctx)
	require.NoError(t, err)
	frozen, err := console.Freeze(ctx, savings.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AccountStatusFrozen, frozen.Status)

	_, err = calc.Submit(ctx, intent.Input{Kind: models.TransactionDeposit, Source: savings, Amount: "1"}, alice.txs)
	assert.Equal(t, http.StatusForbidden, remoteStatus(t, err))

	metrics, err := console.Metrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), metrics.TotalUsers)
	assert.Equal(t, int64(1), metrics.FrozenAccounts)

	txs, err := console.FilterTransactions(ctx, models.AdminTransactionFilter{Username: "bob"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), txs.TotalElements)

	require.NoError(t, alice.store.Logout())
	_, err = alice.accounts.List(ctx)
	assert.Equal(t, http.StatusUnauthorized, remoteStatus(t, err))
}
