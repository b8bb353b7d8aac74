package views

import "securebank/internal/models"

// Direction is how a transaction affects the viewer's own accounts.
type Direction int

const (
	DirectionUnknown Direction = iota
	DirectionCredit
	DirectionDebit
	DirectionInternal
)

func (d Direction) String() string {
	switch d {
	case DirectionCredit:
		return "credit"
	case DirectionDebit:
		return "debit"
	case DirectionInternal:
		return "internal"
	}
	return "unknown"
}

// Sign is the prefix shown before the amount.
func (d Direction) Sign() string {
	switch d {
	case DirectionCredit:
		return "+"
	case DirectionDebit:
		return "-"
	}
	return ""
}

// OwnAccounts is the set of account numbers belonging to the viewer.
type OwnAccounts map[string]struct{}

func NewOwnAccounts(accounts []models.Account) OwnAccounts {
	own := make(OwnAccounts, len(accounts))
	for _, a := range accounts {
		own[a.AccountNumber] = struct{}{}
	}
	return own
}

func (o OwnAccounts) Has(number string) bool {
	if number == "" {
		return false
	}
	_, ok := o[number]
	return ok
}

// DirectionOf classifies tx against own. Deposits are always credits and
// withdrawals always debits; transfers depend on which side is ours.
func DirectionOf(tx models.Transaction, own OwnAccounts) Direction {
	switch tx.TransactionType {
	case models.TransactionDeposit:
		return DirectionCredit
	case models.TransactionWithdraw:
		return DirectionDebit
	}
	from, to := own.Has(tx.FromAccountNumber), own.Has(tx.ToAccountNumber)
	switch {
	case from && to:
		return DirectionInternal
	case from:
		return DirectionDebit
	case to:
		return DirectionCredit
	}
	return DirectionUnknown
}
