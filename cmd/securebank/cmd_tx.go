package main

import (
	"fmt"
	"strings"
	"time"

	"securebank/internal/format"
	"securebank/internal/intent"
	"securebank/internal/models"
	"securebank/internal/views"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func (c *cli) txCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transactions"},
		Short:   "Deposit, withdraw, transfer and browse history",
	}
	cmd.AddCommand(
		c.intentCmd(models.TransactionDeposit, "deposit", "Deposit money into an account"),
		c.intentCmd(models.TransactionWithdraw, "withdraw", "Withdraw money from an account"),
		c.intentCmd(models.TransactionTransfer, "transfer", "Transfer money to another account"),
		c.txListCmd(),
		&cobra.Command{
			Use:   "show <transaction-id>",
			Short: "Show one transaction",
			Args:  cobra.ExactArgs(1),
			RunE: c.private(func(cmd *cobra.Command, args []string) error {
				tx, err := c.txs.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				accounts, err := c.accounts.List(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), views.RenderTransactions([]models.Transaction{*tx}, views.NewOwnAccounts(accounts), currencyOf(accounts)))
				if tx.Description != "" {
					fmt.Fprintln(cmd.OutOrStdout(), views.MutedStyle.Render(tx.Description))
				}
				return nil
			}),
		},
	)
	return cmd
}

// intentCmd composes one transaction, shows the preview and submits it
// after confirmation. Missing inputs are prompted for.
func (c *cli) intentCmd(kind models.TransactionType, use, short string) *cobra.Command {
	var (
		accountID   int64
		amount      string
		to          string
		description string
		yes         bool
	)
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: c.private(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			b := intent.NewBuilder(c.calc, kind)

			if accountID == 0 {
				accounts, err := c.accounts.List(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, views.RenderAccounts(accounts))
				raw, err := c.prompt(cmd, "Account ID: ")
				if err != nil {
					return err
				}
				if accountID, err = parseID("sourceAccountId", raw); err != nil {
					return err
				}
			}
			source, err := c.accounts.Get(ctx, accountID)
			if err != nil {
				return err
			}
			b.SetSource(source)

			if kind == models.TransactionTransfer && to == "" {
				if to, err = c.prompt(cmd, "To account number: "); err != nil {
					return err
				}
			}
			b.SetDestination(to)
			if amount == "" {
				if amount, err = c.prompt(cmd, "Amount: "); err != nil {
					return err
				}
			}
			b.SetAmount(amount)
			b.SetDescription(description)

			if err := b.Validate(); err != nil {
				return err
			}
			fmt.Fprintln(out, views.RenderPreview(b.Input(), b.Preview()))
			if !yes {
				ok, err := c.confirm(cmd, "Submit "+strings.ToLower(string(kind))+"?")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "Cancelled.")
					return nil
				}
			}

			tx, err := b.Submit(ctx, c.txs)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, views.SuccessStyle.Render(fmt.Sprintf("%s %s completed (%s)",
				kind, format.Currency(tx.Amount, source.Currency), format.TransactionID(tx.TransactionID))))

			// Balances are never adjusted locally; reload both lists.
			accounts, err := c.accounts.List(ctx)
			if err != nil {
				return fmt.Errorf("transaction %s succeeded but accounts could not be reloaded: %w", tx.TransactionID, err)
			}
			recent, err := c.txs.List(ctx, models.TransactionFilter{Size: recentAfterSubmit})
			if err != nil {
				return fmt.Errorf("transaction %s succeeded but transactions could not be reloaded: %w", tx.TransactionID, err)
			}
			for _, acc := range accounts {
				if acc.ID == source.ID {
					fmt.Fprintf(out, "New balance of %s: %s\n", format.AccountNumber(acc.AccountNumber), format.Currency(acc.Balance, acc.Currency))
				}
			}
			fmt.Fprintln(out, views.RenderAccounts(accounts))
			fmt.Fprintln(out, views.TitleStyle.Render("Recent Transactions"))
			fmt.Fprintln(out, views.RenderTransactions(recent.Content, views.NewOwnAccounts(accounts), currencyOf(accounts)))
			return nil
		}),
	}
	cmd.Flags().Int64Var(&accountID, "account", 0, "Source account ID")
	cmd.Flags().StringVar(&amount, "amount", "", "Amount, e.g. 1500.50")
	cmd.Flags().StringVar(&description, "description", "", "Optional description")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Submit without asking for confirmation")
	if kind == models.TransactionTransfer {
		cmd.Flags().StringVar(&to, "to", "", "Destination account number (16 digits)")
	}
	return cmd
}

func (c *cli) txListCmd() *cobra.Command {
	var (
		f              models.TransactionFilter
		kind, status   string
		minAmt, maxAmt string
		preset         string
		page, size     int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your transactions with filters",
		Args:  cobra.NoArgs,
		RunE: c.private(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := firstError(parseDate("from", f.StartDate), parseDate("to", f.EndDate)); err != nil {
				return err
			}
			f.Type = models.TransactionType(strings.ToUpper(kind))
			f.Status = models.TransactionStatus(strings.ToUpper(status))
			var err error
			if f.MinAmount, err = parseAmountFlag("min", minAmt); err != nil {
				return err
			}
			if f.MaxAmount, err = parseAmountFlag("max", maxAmt); err != nil {
				return err
			}

			accounts, err := c.accounts.List(ctx)
			if err != nil {
				return err
			}
			history := views.NewHistory(c.txs, size)
			defer history.Stop()

			var result *models.Page[models.Transaction]
			if preset != "" {
				result, err = history.ApplyPreset(ctx, views.Preset(preset), time.Now())
			} else {
				result, err = history.SetFilter(ctx, f)
			}
			if err != nil {
				return err
			}
			if page > 0 {
				if result, err = history.GoTo(ctx, page); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, views.RenderTransactions(result.Content, views.NewOwnAccounts(accounts), currencyOf(accounts)))
			fmt.Fprintln(out, views.PageFooter(result))
			return nil
		}),
	}
	presets := make([]string, len(views.Presets))
	for i, p := range views.Presets {
		presets[i] = string(p)
	}
	cmd.Flags().IntVar(&page, "page", 0, "Zero-based page number")
	cmd.Flags().IntVar(&size, "size", views.DefaultPageSize, "Page size")
	cmd.Flags().StringVar(&f.StartDate, "from", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.EndDate, "to", "", "End date (YYYY-MM-DD), inclusive")
	cmd.Flags().StringVar(&kind, "type", "", "DEPOSIT, WITHDRAW or TRANSFER")
	cmd.Flags().StringVar(&status, "status", "", "PENDING, COMPLETED or FAILED")
	cmd.Flags().StringVar(&minAmt, "min", "", "Minimum amount")
	cmd.Flags().StringVar(&maxAmt, "max", "", "Maximum amount")
	cmd.Flags().StringVar(&preset, "preset", "", "Quick filter: "+strings.Join(presets, ", "))
	return cmd
}

func parseAmountFlag(field, raw string) (decimal.NullDecimal, error) {
	if raw == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return decimal.NullDecimal{}, fmt.Errorf("invalid --%s %q: must be a non-negative number", field, raw)
	}
	return decimal.NewNullDecimal(d), nil
}

// currencyOf picks the display currency for mixed lists.
const recentAfterSubmit = 5

func currencyOf(accounts []models.Account) string {
	if len(accounts) > 0 && accounts[0].Currency != "" {
		return accounts[0].Currency
	}
	return format.DefaultCurrency
}
