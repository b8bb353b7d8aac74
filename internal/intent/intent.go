// Package intent composes a deposit, withdrawal or transfer before it is
// sent: fee, total deduction, projected balance and the submit gate. Nothing
// here changes a balance; the server remains the ledger.
package intent

import (
	"context"
	"strings"

	"securebank/internal/models"
	"securebank/internal/validate"

	"github.com/shopspring/decimal"
)

// FeeSchedule is the flat fee per transaction kind.
type FeeSchedule struct {
	Withdraw decimal.Decimal
	Transfer decimal.Decimal
}

func DefaultFeeSchedule() FeeSchedule {
	return FeeSchedule{
		Withdraw: decimal.NewFromInt(5),
		Transfer: decimal.NewFromInt(10),
	}
}

// DefaultLowBalanceThreshold is where projected balances start being flagged.
var DefaultLowBalanceThreshold = decimal.NewFromInt(500)

// Fee returns the fee charged for kind. Deposits are free.
func Fee(kind models.TransactionType, fees FeeSchedule) decimal.Decimal {
	switch kind {
	case models.TransactionWithdraw:
		return fees.Withdraw
	case models.TransactionTransfer:
		return fees.Transfer
	}
	return decimal.Zero
}

// TotalDeduction is what leaves the source account. A deposit deducts
// nothing from a source, so its total is the amount itself.
func TotalDeduction(kind models.TransactionType, amount, fee decimal.Decimal) decimal.Decimal {
	if kind == models.TransactionDeposit {
		return amount
	}
	return amount.Add(fee)
}

// Projection is the source balance after the operation.
type Projection struct {
	Balance      decimal.Decimal
	Insufficient bool
	LowBalance   bool
}

// ProjectedBalance is defined only for withdrawals and transfers from a
// selected source. Negative results are reported, not clamped.
func ProjectedBalance(source *models.Account, kind models.TransactionType, total, lowThreshold decimal.Decimal) (Projection, bool) {
	if source == nil || (kind != models.TransactionWithdraw && kind != models.TransactionTransfer) {
		return Projection{}, false
	}
	balance := source.Balance.Sub(total)
	return Projection{
		Balance:      balance,
		Insufficient: balance.IsNegative(),
		LowBalance:   balance.LessThan(lowThreshold),
	}, true
}

// Input is the raw, possibly incomplete, intent as typed by the user.
type Input struct {
	Kind                     models.TransactionType
	Source                   *models.Account
	DestinationAccountNumber string
	Amount                   string
	Description              string
}

// Preview is derived from Input on every call.
type Preview struct {
	Amount         decimal.Decimal
	Fee            decimal.Decimal
	TotalDeduction decimal.Decimal
	Projection     Projection
	HasProjection  bool
}

// Calculator holds the configuration the preview depends on.
type Calculator struct {
	Fees                FeeSchedule
	LowBalanceThreshold decimal.Decimal
}

func NewCalculator(fees FeeSchedule, lowThreshold decimal.Decimal) Calculator {
	return Calculator{Fees: fees, LowBalanceThreshold: lowThreshold}
}

// Preview is pure. When the amount is not a submittable amount (a positive
// decimal with at most two fraction digits) the preview is empty: zero fee,
// zero total, no projection.
func (c Calculator) Preview(in Input) Preview {
	amount, ok := parseAmount(in.Amount)
	if !ok {
		return Preview{}
	}
	fee := Fee(in.Kind, c.Fees)
	total := TotalDeduction(in.Kind, amount, fee)
	p := Preview{Amount: amount, Fee: fee, TotalDeduction: total}
	p.Projection, p.HasProjection = ProjectedBalance(in.Source, in.Kind, total, c.LowBalanceThreshold)
	return p
}

func parseAmount(raw string) (decimal.Decimal, bool) {
	raw = strings.TrimSpace(raw)
	if !validate.IsValidAmount(raw) {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Validate lists every field that blocks submission.
func (c Calculator) Validate(in Input) error {
	verr := &validate.ValidationError{}
	if !in.Kind.Valid() {
		verr.Add("kind", "must be DEPOSIT, WITHDRAW or TRANSFER")
	}
	if !validate.IsValidAmount(strings.TrimSpace(in.Amount)) {
		verr.Add("amount", "must be a positive amount with at most 2 decimals")
	}
	if in.Source == nil || in.Source.ID == 0 {
		verr.Add("sourceAccountId", "select an account")
	}
	if in.Kind == models.TransactionTransfer {
		dest := strings.TrimSpace(in.DestinationAccountNumber)
		switch {
		case !validate.IsValidAccountNumber(dest):
			verr.Add("destinationAccountNumber", "must be a 16-digit account number")
		case in.Source != nil && dest == in.Source.AccountNumber:
			verr.Add("destinationAccountNumber", "cannot transfer to the same account")
		}
	}
	return verr.OrNil()
}

// Submitter issues the remote call; services.TransactionService satisfies it.
type Submitter interface {
	Deposit(ctx context.Context, req models.TransactionRequest) (*models.Transaction, error)
	Withdraw(ctx context.Context, req models.TransactionRequest) (*models.Transaction, error)
	Transfer(ctx context.Context, req models.TransferRequest) (*models.Transaction, error)
}

// Submit validates and then issues exactly one call. The returned
// transaction is the server's; callers must re-fetch balances.
func (c Calculator) Submit(ctx context.Context, in Input, to Submitter) (*models.Transaction, error) {
	if err := c.Validate(in); err != nil {
		return nil, err
	}
	amount, _ := parseAmount(in.Amount)
	desc := strings.TrimSpace(in.Description)

	switch in.Kind {
	case models.TransactionDeposit:
		return to.Deposit(ctx, models.TransactionRequest{AccountID: in.Source.ID, Amount: amount, Description: desc})
	case models.TransactionWithdraw:
		return to.Withdraw(ctx, models.TransactionRequest{AccountID: in.Source.ID, Amount: amount, Description: desc})
	default:
		return to.Transfer(ctx, models.TransferRequest{
			FromAccountID:   in.Source.ID,
			ToAccountNumber: strings.TrimSpace(in.DestinationAccountNumber),
			Amount:          amount,
			Description:     desc,
		})
	}
}
