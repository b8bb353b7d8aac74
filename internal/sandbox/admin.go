package sandbox

import (
	"fmt"
	"strings"
	"time"

	"securebank/internal/models"
	"securebank/pkg/utils"

	"github.com/shopspring/decimal"
)

// Metrics computes the admin overview for the current day.
func (b *Bank) Metrics() *models.DashboardMetrics {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.opts.Now()
	todayStart, todayEnd := utils.DayBounds(now)
	weekAgo := todayStart.AddDate(0, 0, -7)

	m := &models.DashboardMetrics{
		TotalUsers:             int64(len(b.users)),
		TotalAccounts:          int64(len(b.accounts)),
		TodayTransactionVolume: decimal.Zero,
		TodayDeposits:          decimal.Zero,
		TodayWithdrawals:       decimal.Zero,
		TodayTransfers:         decimal.Zero,
		DailyVolume:            map[string]decimal.Decimal{},
	}
	for _, u := range b.users {
		if !u.CreatedAt.Before(weekAgo) {
			m.NewUsersThisWeek++
		}
	}
	for _, acc := range b.accounts {
		switch acc.Status {
		case models.AccountStatusActive:
			m.ActiveAccounts++
		case models.AccountStatusFrozen:
			m.FrozenAccounts++
		case models.AccountStatusClosed:
			m.ClosedAccounts++
		}
	}

	for i := 6; i >= 0; i-- {
		m.DailyVolume[todayStart.AddDate(0, 0, -i).Format(dateLayout)] = decimal.Zero
	}
	for _, tx := range b.txs {
		day := tx.CreatedAt.Format(dateLayout)
		if v, ok := m.DailyVolume[day]; ok {
			m.DailyVolume[day] = v.Add(tx.Amount)
		}
		if tx.CreatedAt.Before(todayStart) || tx.CreatedAt.After(todayEnd) {
			continue
		}
		m.TodayTransactionCount++
		m.TodayTransactionVolume = m.TodayTransactionVolume.Add(tx.Amount)
		switch tx.TransactionType {
		case models.TransactionDeposit:
			m.DepositCount++
			m.TodayDeposits = m.TodayDeposits.Add(tx.Amount)
		case models.TransactionWithdraw:
			m.WithdrawalCount++
			m.TodayWithdrawals = m.TodayWithdrawals.Add(tx.Amount)
		case models.TransactionTransfer:
			m.TransferCount++
			m.TodayTransfers = m.TodayTransfers.Add(tx.Amount)
		}
	}
	return m
}

// AllUsers pages through users in id order.
func (b *Bank) AllUsers(q models.PageQuery) models.Page[models.User] {
	b.mu.Lock()
	defer b.mu.Unlock()
	users := make([]models.User, 0, len(b.users))
	for id := int64(1); id <= b.nextUserID; id++ {
		if u, ok := b.users[id]; ok {
			users = append(users, u.User)
		}
	}
	return paginate(users, q.Page, q.Size)
}

func (b *Bank) AllAccounts(q models.PageQuery) models.Page[models.Account] {
	b.mu.Lock()
	defer b.mu.Unlock()
	accounts := make([]models.Account, 0, len(b.accounts))
	for _, rec := range b.sortedAccountsLocked() {
		accounts = append(accounts, *b.viewLocked(rec))
	}
	return paginate(accounts, q.Page, q.Size)
}

// AllTransactions lists every transaction, newest first, narrowed by f.
func (b *Bank) AllTransactions(f models.AdminTransactionFilter) (models.Page[models.Transaction], error) {
	match, err := newTxMatcher(f.TransactionFilter)
	if err != nil {
		return models.Page[models.Transaction]{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	var userID int64
	if f.Username != "" {
		id, ok := b.usersByName[strings.ToLower(f.Username)]
		if !ok {
			return paginate([]models.Transaction{}, f.Page, f.Size), nil
		}
		userID = id
	}

	var out []models.Transaction
	for i := len(b.txs) - 1; i >= 0; i-- {
		rec := b.txs[i]
		if userID != 0 && !b.involvesLocked(rec, userID) {
			continue
		}
		tx := b.txViewLocked(rec)
		if f.AccountNumber != "" && tx.FromAccountNumber != f.AccountNumber && tx.ToAccountNumber != f.AccountNumber {
			continue
		}
		if match(*tx) {
			out = append(out, *tx)
		}
	}
	return paginate(out, f.Page, f.Size), nil
}

// SetFrozen freezes or unfreezes any account. actorID is the admin.
func (b *Bank) SetFrozen(actorID, accountID int64, frozen bool) (*models.Account, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	rec, ok := b.accounts[accountID]
	if !ok {
		return nil, notFound("Account not found", fmt.Sprintf("account_id: %d", accountID))
	}
	action := "ACCOUNT_UNFROZEN"
	rec.Status = models.AccountStatusActive
	if frozen {
		action = "ACCOUNT_FROZEN"
		rec.Status = models.AccountStatusFrozen
	}
	b.logLocked(actorID, action, "ACCOUNT", accountID)
	return b.viewLocked(rec), nil
}

// AuditLogs pages through the audit trail, newest first.
func (b *Bank) AuditLogs(q models.PageQuery) models.Page[models.AuditLog] {
	b.mu.Lock()
	defer b.mu.Unlock()
	logs := make([]models.AuditLog, len(b.audit))
	for i, l := range b.audit {
		logs[len(b.audit)-1-i] = l
	}
	return paginate(logs, q.Page, q.Size)
}

// DailyReport aggregates one day; an empty date means today.
func (b *Bank) DailyReport(date string) (*models.DailyReport, error) {
	day := b.opts.Now()
	if date != "" {
		d, err := time.ParseInLocation(dateLayout, date, time.Local)
		if err != nil {
			return nil, badRequest("Invalid date", fmt.Sprintf("expected %s, got %q", dateLayout, date))
		}
		day = d
	}
	start, end := utils.DayBounds(day)

	b.mu.Lock()
	defer b.mu.Unlock()
	r := &models.DailyReport{
		Date:        start.Format(dateLayout),
		TotalVolume: decimal.Zero,
		Deposits:    decimal.Zero,
		Withdrawals: decimal.Zero,
		Transfers:   decimal.Zero,
		TotalFees:   decimal.Zero,
	}
	for _, tx := range b.txs {
		if tx.CreatedAt.Before(start) || tx.CreatedAt.After(end) {
			continue
		}
		r.TransactionCount++
		r.TotalVolume = r.TotalVolume.Add(tx.Amount)
		r.TotalFees = r.TotalFees.Add(tx.Fee)
		switch tx.TransactionType {
		case models.TransactionDeposit:
			r.Deposits = r.Deposits.Add(tx.Amount)
		case models.TransactionWithdraw:
			r.Withdrawals = r.Withdrawals.Add(tx.Amount)
		case models.TransactionTransfer:
			r.Transfers = r.Transfers.Add(tx.Amount)
		}
	}
	return r, nil
}
