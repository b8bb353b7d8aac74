package sandbox

import (
	"fmt"
	"strings"

	"securebank/internal/models"
	"securebank/pkg/utils"

	"github.com/shopspring/decimal"
)

func (b *Bank) Deposit(userID int64, req models.TransactionRequest) (*models.Transaction, error) {
	if !req.Amount.IsPositive() {
		return nil, badRequest("Invalid deposit amount", "Amount must be positive")
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	acc, err := b.ownedLocked(userID, req.AccountID)
	if err != nil {
		return nil, err
	}
	if err := usable(acc); err != nil {
		return nil, err
	}

	acc.Balance = acc.Balance.Add(req.Amount)
	tx := b.recordLocked(models.TransactionDeposit, req.Amount, decimal.Zero, req.Description, nil, acc)
	b.logLocked(userID, "DEPOSIT", "TRANSACTION", tx.ID)
	return b.txViewLocked(tx), nil
}

func (b *Bank) Withdraw(userID int64, req models.TransactionRequest) (*models.Transaction, error) {
	if !req.Amount.IsPositive() {
		return nil, badRequest("Invalid withdrawal amount", "Amount must be positive")
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	acc, err := b.ownedLocked(userID, req.AccountID)
	if err != nil {
		return nil, err
	}
	if err := usable(acc); err != nil {
		return nil, err
	}

	fee := b.opts.Fees.Withdraw
	after, err := b.debitCheckLocked(acc, req.Amount, fee, models.TransactionWithdraw)
	if err != nil {
		return nil, err
	}

	acc.Balance = after
	tx := b.recordLocked(models.TransactionWithdraw, req.Amount, fee, req.Description, acc, nil)
	b.logLocked(userID, "WITHDRAW", "TRANSACTION", tx.ID)
	return b.txViewLocked(tx), nil
}

func (b *Bank) Transfer(userID int64, req models.TransferRequest) (*models.Transaction, error) {
	if !req.Amount.IsPositive() {
		return nil, badRequest("Invalid transfer amount", "Amount must be positive")
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	from, err := b.ownedLocked(userID, req.FromAccountID)
	if err != nil {
		return nil, err
	}
	if err := usable(from); err != nil {
		return nil, err
	}
	toID, ok := b.byNumber[strings.TrimSpace(req.ToAccountNumber)]
	if !ok {
		return nil, notFound("Destination account not found", fmt.Sprintf("account_number: %s", req.ToAccountNumber))
	}
	to := b.accounts[toID]
	if err := usable(to); err != nil {
		return nil, err
	}
	if from.ID == to.ID {
		return nil, badRequest("Cannot transfer to same account", fmt.Sprintf("account_id: %d", from.ID))
	}

	fee := b.opts.Fees.Transfer
	after, err := b.debitCheckLocked(from, req.Amount, fee, models.TransactionTransfer)
	if err != nil {
		return nil, err
	}

	from.Balance = after
	to.Balance = to.Balance.Add(req.Amount)
	tx := b.recordLocked(models.TransactionTransfer, req.Amount, fee, req.Description, from, to)
	b.logLocked(userID, "TRANSFER", "TRANSACTION", tx.ID)
	return b.txViewLocked(tx), nil
}

func usable(acc *accountRecord) error {
	switch acc.Status {
	case models.AccountStatusActive:
		return nil
	case models.AccountStatusFrozen:
		return forbidden("Account is frozen", fmt.Sprintf("account_number: %s", acc.AccountNumber))
	}
	return badRequest("Account not active", fmt.Sprintf("account_number: %s", acc.AccountNumber))
}

// debitCheckLocked returns the balance after deducting amount and fee, or
// the rule that forbids it.
func (b *Bank) debitCheckLocked(acc *accountRecord, amount, fee decimal.Decimal, kind models.TransactionType) (decimal.Decimal, error) {
	total := amount.Add(fee)
	if acc.Balance.LessThan(total) {
		return decimal.Zero, badRequest("Insufficient balance",
			fmt.Sprintf("available: %s, required: %s", acc.Balance.StringFixed(2), total.StringFixed(2)))
	}
	after := acc.Balance.Sub(total)
	if after.LessThan(b.opts.MinBalance) {
		return decimal.Zero, badRequest("Minimum balance violation",
			fmt.Sprintf("minimum required: %s", b.opts.MinBalance.StringFixed(2)))
	}
	if b.opts.DailyLimit.IsPositive() {
		start, end := utils.DayBounds(b.opts.Now())
		spent := decimal.Zero
		for _, tx := range b.txs {
			if tx.fromID == acc.ID && tx.TransactionType == kind && !tx.CreatedAt.Before(start) && !tx.CreatedAt.After(end) {
				spent = spent.Add(tx.Amount)
			}
		}
		if spent.Add(amount).GreaterThan(b.opts.DailyLimit) {
			return decimal.Zero, badRequest("Daily limit exceeded",
				fmt.Sprintf("used: %s, limit: %s, requested: %s", spent.StringFixed(2), b.opts.DailyLimit.StringFixed(2), amount.StringFixed(2)))
		}
	}
	return after, nil
}

func (b *Bank) recordLocked(kind models.TransactionType, amount, fee decimal.Decimal, desc string, from, to *accountRecord) *txRecord {
	now := b.opts.Now()
	b.nextTxID++
	rec := &txRecord{
		Transaction: models.Transaction{
			ID:              b.nextTxID,
			TransactionID:   utils.GenerateTransactionID(now),
			TransactionType: kind,
			Amount:          amount,
			Fee:             fee,
			Description:     strings.TrimSpace(desc),
			Status:          models.TransactionCompleted,
			CreatedAt:       models.NewTimestamp(now),
		},
	}
	if from != nil {
		rec.fromID = from.ID
	}
	if to != nil {
		rec.toID = to.ID
	}
	b.txs = append(b.txs, rec)
	return rec
}

func (b *Bank) txViewLocked(rec *txRecord) *models.Transaction {
	tx := rec.Transaction
	if acc, ok := b.accounts[rec.fromID]; ok {
		tx.FromAccountNumber = acc.AccountNumber
	}
	if acc, ok := b.accounts[rec.toID]; ok {
		tx.ToAccountNumber = acc.AccountNumber
	}
	return &tx
}

// involvesLocked reports whether rec touches one of userID's accounts.
func (b *Bank) involvesLocked(rec *txRecord, userID int64) bool {
	if acc, ok := b.accounts[rec.fromID]; ok && acc.userID == userID {
		return true
	}
	if acc, ok := b.accounts[rec.toID]; ok && acc.userID == userID {
		return true
	}
	return false
}

// Transactions lists the user's transactions, newest first.
func (b *Bank) Transactions(userID int64, f models.TransactionFilter) (models.Page[models.Transaction], error) {
	match, err := newTxMatcher(f)
	if err != nil {
		return models.Page[models.Transaction]{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []models.Transaction
	for i := len(b.txs) - 1; i >= 0; i-- {
		rec := b.txs[i]
		if !b.involvesLocked(rec, userID) {
			continue
		}
		if tx := b.txViewLocked(rec); match(*tx) {
			out = append(out, *tx)
		}
	}
	return paginate(out, f.Page, f.Size), nil
}

// Transaction finds one of the user's transactions by its public id.
func (b *Bank) Transaction(userID int64, transactionID string) (*models.Transaction, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, rec := range b.txs {
		if rec.TransactionID != transactionID {
			continue
		}
		if !b.involvesLocked(rec, userID) {
			return nil, forbidden("Access denied", fmt.Sprintf("transaction_id: %s", transactionID))
		}
		return b.txViewLocked(rec), nil
	}
	return nil, notFound("Transaction not found", fmt.Sprintf("transaction_id: %s", transactionID))
}

// Statement pages through one owned account's history, newest first.
func (b *Bank) Statement(userID, accountID int64, q models.StatementQuery) (models.Page[models.Transaction], error) {
	match, err := newTxMatcher(models.TransactionFilter{StartDate: q.StartDate, EndDate: q.EndDate, Type: q.Type})
	if err != nil {
		return models.Page[models.Transaction]{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := b.ownedLocked(userID, accountID); err != nil {
		return models.Page[models.Transaction]{}, err
	}

	var out []models.Transaction
	for i := len(b.txs) - 1; i >= 0; i-- {
		rec := b.txs[i]
		if rec.fromID != accountID && rec.toID != accountID {
			continue
		}
		if tx := b.txViewLocked(rec); match(*tx) {
			out = append(out, *tx)
		}
	}
	return paginate(out, q.Page, q.Size), nil
}

// Balance returns an owned account's balance.
func (b *Bank) Balance(userID, accountID int64) (decimal.Decimal, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	acc, err := b.ownedLocked(userID, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	return acc.Balance, nil
}
