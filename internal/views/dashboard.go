package views

import (
	"context"
	"sort"
	"sync"
	"time"

	"securebank/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// AccountLister is the listing half of services.AccountService.
type AccountLister interface {
	List(ctx context.Context) ([]models.Account, error)
}

const recentLimit = 5

// Stats are the summary cards of the user dashboard.
type Stats struct {
	// TotalBalance is summed per currency; amounts in different currencies
	// are never added together.
	TotalBalance map[string]decimal.Decimal
	AccountCount int
	RecentCount  int
	PendingCount int
}

// Currencies returns the keys of TotalBalance in a stable order.
func (s Stats) Currencies() []string {
	out := make([]string, 0, len(s.TotalBalance))
	for c := range s.TotalBalance {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// DashboardData is one refresh worth of dashboard content.
type DashboardData struct {
	Accounts    []models.Account
	Recent      []models.Transaction
	Own         OwnAccounts
	Stats       Stats
	RefreshedAt time.Time
}

// ComputeStats derives the cards from the fetched lists.
func ComputeStats(accounts []models.Account, txs []models.Transaction) Stats {
	s := Stats{
		TotalBalance: make(map[string]decimal.Decimal),
		AccountCount: len(accounts),
		RecentCount:  min(len(txs), recentLimit),
	}
	for _, a := range accounts {
		s.TotalBalance[a.Currency] = s.TotalBalance[a.Currency].Add(a.Balance)
	}
	for _, tx := range txs {
		if tx.Status == models.TransactionPending {
			s.PendingCount++
		}
	}
	return s
}

// Dashboard loads accounts and recent transactions together and can keep
// them fresh with a Poller.
type Dashboard struct {
	accounts AccountLister
	txs      TransactionLister
	interval time.Duration
	logger   *zap.Logger
	now      func() time.Time

	loader Loader[DashboardData]

	mu     sync.Mutex
	poller *Poller
}

func NewDashboard(accounts AccountLister, txs TransactionLister, interval time.Duration, logger *zap.Logger) *Dashboard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dashboard{
		accounts: accounts,
		txs:      txs,
		interval: interval,
		logger:   logger.With(zap.String("component", "dashboard")),
		now:      time.Now,
	}
}

// Refresh fetches both lists concurrently. Either failure fails the
// refresh and the previous data stays in State.
func (d *Dashboard) Refresh(ctx context.Context) (DashboardData, error) {
	return d.loader.Load(ctx, d.fetch)
}

func (d *Dashboard) fetch(ctx context.Context) (DashboardData, error) {
	var (
		accounts []models.Account
		page     *models.Page[models.Transaction]
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		accounts, err = d.accounts.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		page, err = d.txs.List(gctx, models.TransactionFilter{Size: DefaultPageSize})
		return err
	})
	if err := g.Wait(); err != nil {
		return DashboardData{}, err
	}

	var txs []models.Transaction
	if page != nil {
		txs = page.Content
	}
	data := DashboardData{
		Accounts:    accounts,
		Recent:      txs[:min(len(txs), recentLimit)],
		Own:         NewOwnAccounts(accounts),
		Stats:       ComputeStats(accounts, txs),
		RefreshedAt: d.now(),
	}
	return data, nil
}

// Watch loads once, then refreshes every interval until Stop. onUpdate sees
// every state transition.
func (d *Dashboard) Watch(ctx context.Context, onUpdate func(State[DashboardData])) {
	d.loader.OnChange(onUpdate)
	if _, err := d.Refresh(ctx); err != nil {
		d.logger.Warn("Initial dashboard load failed", zap.Error(err))
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.poller != nil {
		return
	}
	d.poller = StartPoller(ctx, d.interval, func(ctx context.Context) {
		if _, err := d.Refresh(ctx); err != nil && ctx.Err() == nil {
			d.logger.Warn("Dashboard refresh failed", zap.Error(err))
		}
	}, d.logger)
}

func (d *Dashboard) State() State[DashboardData] { return d.loader.State() }

// Stop halts polling and cancels an in-flight refresh. Safe to call more
// than once.
func (d *Dashboard) Stop() {
	d.mu.Lock()
	p := d.poller
	d.poller = nil
	d.mu.Unlock()
	if p != nil {
		p.Stop()
	}
	d.loader.Stop()
}
