package main

import (
	"fmt"
	"strconv"
	"strings"

	"securebank/internal/format"
	"securebank/internal/models"
	"securebank/internal/validate"
	"securebank/internal/views"

	"github.com/spf13/cobra"
)

func parseID(field, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &validate.ValidationError{Fields: []validate.FieldError{{Field: field, Message: "must be a positive number"}}}
	}
	return id, nil
}

func (c *cli) accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "accounts",
		Aliases: []string{"account", "acc"},
		Short:   "List and manage your accounts",
		Args:    cobra.NoArgs,
		RunE: c.private(func(cmd *cobra.Command, args []string) error {
			return c.listAccounts(cmd)
		}),
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List your accounts",
			Args:  cobra.NoArgs,
			RunE: c.private(func(cmd *cobra.Command, args []string) error {
				return c.listAccounts(cmd)
			}),
		},
		&cobra.Command{
			Use:   "show <id>",
			Short: "Show one account",
			Args:  cobra.ExactArgs(1),
			RunE: c.private(func(cmd *cobra.Command, args []string) error {
				id, err := parseID("id", args[0])
				if err != nil {
					return err
				}
				acc, err := c.accounts.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), views.RenderAccounts([]models.Account{*acc}))
				return nil
			}),
		},
		&cobra.Command{
			Use:   "balance <id>",
			Short: "Show the current balance of an account",
			Args:  cobra.ExactArgs(1),
			RunE: c.private(func(cmd *cobra.Command, args []string) error {
				id, err := parseID("id", args[0])
				if err != nil {
					return err
				}
				acc, err := c.accounts.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				balance, err := c.accounts.Balance(cmd.Context(), id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", format.AccountNumber(acc.AccountNumber), format.Currency(balance, acc.Currency))
				return nil
			}),
		},
		c.statementCmd(),
		c.createAccountCmd(),
		c.accountStatusCmd(),
	)
	return cmd
}

func (c *cli) listAccounts(cmd *cobra.Command) error {
	accounts, err := c.accounts.List(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), views.RenderAccounts(accounts))
	return nil
}

func (c *cli) statementCmd() *cobra.Command {
	var (
		q    models.StatementQuery
		kind string
	)
	cmd := &cobra.Command{
		Use:   "statement <id>",
		Short: "Page through one account's history",
		Args:  cobra.ExactArgs(1),
		RunE: c.private(func(cmd *cobra.Command, args []string) error {
			id, err := parseID("id", args[0])
			if err != nil {
				return err
			}
			if err := firstError(parseDate("from", q.StartDate), parseDate("to", q.EndDate)); err != nil {
				return err
			}
			q.Type = models.TransactionType(strings.ToUpper(kind))

			acc, err := c.accounts.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			stmt := views.NewStatement(c.accounts, id, q, q.Size)
			defer stmt.Stop()
			page, err := stmt.GoTo(cmd.Context(), q.Page)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, views.TitleStyle.Render("Statement "+format.AccountNumber(acc.AccountNumber)))
			fmt.Fprintln(out, views.RenderTransactions(page.Content, views.NewOwnAccounts([]models.Account{*acc}), acc.Currency))
			fmt.Fprintln(out, views.PageFooter(page))
			return nil
		}),
	}
	cmd.Flags().IntVar(&q.Page, "page", 0, "Zero-based page number")
	cmd.Flags().IntVar(&q.Size, "size", views.DefaultPageSize, "Page size")
	cmd.Flags().StringVar(&q.StartDate, "from", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&q.EndDate, "to", "", "End date (YYYY-MM-DD), inclusive")
	cmd.Flags().StringVar(&kind, "type", "", "DEPOSIT, WITHDRAW or TRANSFER")
	return cmd
}

func (c *cli) createAccountCmd() *cobra.Command {
	var accountType, currency string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Open a new account",
		Args:  cobra.NoArgs,
		RunE: c.private(func(cmd *cobra.Command, args []string) error {
			req := models.CreateAccountRequest{
				AccountType: models.AccountType(strings.ToUpper(accountType)),
				Currency:    strings.ToUpper(currency),
			}
			if err := validate.Struct(req); err != nil {
				return err
			}
			acc, err := c.accounts.Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), views.SuccessStyle.Render("Account created"))
			fmt.Fprintln(cmd.OutOrStdout(), views.RenderAccounts([]models.Account{*acc}))
			return nil
		}),
	}
	cmd.Flags().StringVar(&accountType, "type", string(models.AccountTypeSavings), "SAVINGS or CURRENT")
	cmd.Flags().StringVar(&currency, "currency", format.DefaultCurrency, "ISO 4217 currency code")
	return cmd
}

func (c *cli) accountStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <ACTIVE|FROZEN|CLOSED>",
		Short: "Change the status of one of your accounts",
		Args:  cobra.ExactArgs(2),
		RunE: c.private(func(cmd *cobra.Command, args []string) error {
			id, err := parseID("id", args[0])
			if err != nil {
				return err
			}
			req := models.UpdateStatusRequest{Status: models.AccountStatus(strings.ToUpper(args[1]))}
			if err := validate.Struct(req); err != nil {
				return err
			}
			acc, err := c.accounts.UpdateStatus(cmd.Context(), id, req.Status)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", format.AccountNumber(acc.AccountNumber), acc.Status)
			return nil
		}),
	}
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
