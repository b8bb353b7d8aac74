package intent

import (
	"context"

	"securebank/internal/models"
)

// Builder holds an Input across interactive edits. Each setter returns the
// fresh preview so the caller can re-render.
type Builder struct {
	calc Calculator
	in   Input
}

func NewBuilder(calc Calculator, kind models.TransactionType) *Builder {
	return &Builder{calc: calc, in: Input{Kind: kind}}
}

func (b *Builder) SetKind(kind models.TransactionType) Preview {
	b.in.Kind = kind
	if kind != models.TransactionTransfer {
		b.in.DestinationAccountNumber = ""
	}
	return b.Preview()
}

func (b *Builder) SetSource(account *models.Account) Preview {
	b.in.Source = account
	return b.Preview()
}

func (b *Builder) SetDestination(accountNumber string) Preview {
	b.in.DestinationAccountNumber = accountNumber
	return b.Preview()
}

func (b *Builder) SetAmount(amount string) Preview {
	b.in.Amount = amount
	return b.Preview()
}

func (b *Builder) SetDescription(description string) Preview {
	b.in.Description = description
	return b.Preview()
}

func (b *Builder) Input() Input { return b.in }

func (b *Builder) Preview() Preview { return b.calc.Preview(b.in) }

func (b *Builder) Validate() error { return b.calc.Validate(b.in) }

// CanSubmit gates the confirm action.
func (b *Builder) CanSubmit() bool { return b.calc.Validate(b.in) == nil }

func (b *Builder) Submit(ctx context.Context, to Submitter) (*models.Transaction, error) {
	return b.calc.Submit(ctx, b.in, to)
}

// Reset clears everything but the kind, as after a successful submit.
func (b *Builder) Reset() {
	b.in = Input{Kind: b.in.Kind}
}
