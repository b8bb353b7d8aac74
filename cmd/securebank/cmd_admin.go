package main

import (
	"fmt"
	"strings"

	"securebank/internal/format"
	"securebank/internal/models"
	"securebank/internal/views"

	"github.com/spf13/cobra"
)

func (c *cli) adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrator console",
		Long: `Administrator console. Every subcommand requires an ADMIN session;
the server enforces the same rule.`,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "dashboard",
			Short: "System-wide metrics",
			Args:  cobra.NoArgs,
			RunE: c.adminOnly(func(cmd *cobra.Command, args []string) error {
				console := views.NewAdminConsole(c.admin, views.DefaultPageSize)
				defer console.Stop()
				m, err := console.Metrics(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), views.RenderMetrics(m))
				return nil
			}),
		},
		c.adminPageCmd("users", "List users", func(console *views.AdminConsole) pageRenderer {
			return renderPaged(console.Users, views.RenderUsers)
		}),
		c.adminPageCmd("accounts", "List all accounts", func(console *views.AdminConsole) pageRenderer {
			return renderPaged(console.Accounts, views.RenderAdminAccounts)
		}),
		c.adminPageCmd("audit", "Show the audit log, newest first", func(console *views.AdminConsole) pageRenderer {
			return renderPaged(console.AuditLogs, views.RenderAuditLogs)
		}),
		c.adminTransactionsCmd(),
		c.freezeCmd(true),
		c.freezeCmd(false),
		c.reportCmd(),
	)
	return cmd
}

// pageRenderer loads a page of one admin table and renders it with its
// footer.
type pageRenderer func(cmd *cobra.Command, page int) (string, error)

func renderPaged[T any](list *views.PagedList[T], render func([]T) string) pageRenderer {
	return func(cmd *cobra.Command, page int) (string, error) {
		p, err := list.GoTo(cmd.Context(), page)
		if err != nil {
			return "", err
		}
		return render(p.Content) + "\n" + views.PageFooter(p), nil
	}
}

func (c *cli) adminPageCmd(use, short string, table func(*views.AdminConsole) pageRenderer) *cobra.Command {
	var page, size int
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: c.adminOnly(func(cmd *cobra.Command, args []string) error {
			console := views.NewAdminConsole(c.admin, size)
			defer console.Stop()
			text, err := table(console)(cmd, page)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		}),
	}
	cmd.Flags().IntVar(&page, "page", 0, "Zero-based page number")
	cmd.Flags().IntVar(&size, "size", views.DefaultPageSize, "Page size")
	return cmd
}

func (c *cli) adminTransactionsCmd() *cobra.Command {
	var (
		f              models.AdminTransactionFilter
		kind, status   string
		minAmt, maxAmt string
		page, size     int
	)
	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "Search all transactions",
		Args:  cobra.NoArgs,
		RunE: c.adminOnly(func(cmd *cobra.Command, args []string) error {
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

			console := views.NewAdminConsole(c.admin, size)
			defer console.Stop()
			result, err := console.FilterTransactions(cmd.Context(), f)
			if err != nil {
				return err
			}
			if page > 0 {
				if result, err = console.Transactions.GoTo(cmd.Context(), page); err != nil {
					return err
				}
			}
			// No session account set applies here, so transfers carry no sign.
			fmt.Fprintln(cmd.OutOrStdout(), views.RenderTransactions(result.Content, nil, format.DefaultCurrency))
			fmt.Fprintln(cmd.OutOrStdout(), views.PageFooter(result))
			return nil
		}),
	}
	cmd.Flags().IntVar(&page, "page", 0, "Zero-based page number")
	cmd.Flags().IntVar(&size, "size", views.DefaultPageSize, "Page size")
	cmd.Flags().StringVar(&f.StartDate, "from", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.EndDate, "to", "", "End date (YYYY-MM-DD), inclusive")
	cmd.Flags().StringVar(&kind, "type", "", "DEPOSIT, WITHDRAW or TRANSFER")
	cmd.Flags().StringVar(&status, "status", "", "PENDING, COMPLETED or FAILED")
	cmd.Flags().StringVar(&minAmt, "min", "", "Minimum amount")
	cmd.Flags().StringVar(&maxAmt, "max", "", "Maximum amount")
	cmd.Flags().StringVar(&f.Username, "username", "", "Only transactions touching this user's accounts")
	cmd.Flags().StringVar(&f.AccountNumber, "account-number", "", "Only transactions touching this account")
	return cmd
}

func (c *cli) freezeCmd(freeze bool) *cobra.Command {
	use, short := "unfreeze <account-id>", "Reactivate a frozen account"
	if freeze {
		use, short = "freeze <account-id>", "Freeze an account"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: c.adminOnly(func(cmd *cobra.Command, args []string) error {
			id, err := parseID("account-id", args[0])
			if err != nil {
				return err
			}
			console := views.NewAdminConsole(c.admin, views.DefaultPageSize)
			defer console.Stop()

			var acc *models.Account
			if freeze {
				acc, err = console.Freeze(cmd.Context(), id)
			} else {
				acc, err = console.Unfreeze(cmd.Context(), id)
			}
			if acc != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", acc.AccountNumber, acc.Status)
			}
			if err != nil {
				return err
			}
			if p := console.Accounts.State().Data; p != nil {
				fmt.Fprintln(cmd.OutOrStdout(), views.RenderAdminAccounts(p.Content))
			}
			return nil
		}),
	}
}

func (c *cli) reportCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Daily transaction report",
		Args:  cobra.NoArgs,
		RunE: c.adminOnly(func(cmd *cobra.Command, args []string) error {
			if err := parseDate("date", date); err != nil {
				return err
			}
			console := views.NewAdminConsole(c.admin, views.DefaultPageSize)
			defer console.Stop()
			r, err := console.DailyReport(cmd.Context(), date)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), views.RenderReport(r))
			return nil
		}),
	}
	cmd.Flags().StringVar(&date, "date", "", "Day to report (YYYY-MM-DD); defaults to today")
	return cmd
}
