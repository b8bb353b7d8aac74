package views

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"securebank/internal/format"
	"securebank/internal/intent"
	"securebank/internal/models"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"
)

var (
	colorBorder  = lipgloss.Color("#5C6773")
	colorHeader  = lipgloss.Color("#2196F3")
	colorCredit  = lipgloss.Color("#8BC34A")
	colorDebit   = lipgloss.Color("#E53935")
	colorWarning = lipgloss.Color("#FFC107")
	colorMuted   = lipgloss.Color("#8A8F98")
)

// Styles used by every renderer.
var (
	TitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorHeader).MarginBottom(1)
	MutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	CreditStyle  = lipgloss.NewStyle().Foreground(colorCredit)
	DebitStyle   = lipgloss.NewStyle().Foreground(colorDebit)
	WarningStyle = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	ErrorStyle   = lipgloss.NewStyle().Foreground(colorDebit).Bold(true)
	SuccessStyle = lipgloss.NewStyle().Foreground(colorCredit).Bold(true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 2)
	headerCell = lipgloss.NewStyle().Bold(true).Foreground(colorHeader).Padding(0, 1)
	cell       = lipgloss.NewStyle().Padding(0, 1)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerCell
			}
			return cell
		})
}

// RenderAccounts renders the user's accounts.
func RenderAccounts(accounts []models.Account) string {
	if len(accounts) == 0 {
		return MutedStyle.Render("No accounts yet.")
	}
	t := newTable("ID", "Account", "Type", "Balance", "Status", "Opened")
	for _, a := range accounts {
		t.Row(
			strconv.FormatInt(a.ID, 10),
			format.AccountNumber(a.AccountNumber),
			string(a.AccountType),
			format.Currency(a.Balance, a.Currency),
			string(a.Status),
			format.Date(a.CreatedAt.Time),
		)
	}
	return t.String()
}

// RenderTransactions renders a transaction list. own decides the sign of each
// transfer; currency is used for every amount.
func RenderTransactions(txs []models.Transaction, own OwnAccounts, currency string) string {
	if len(txs) == 0 {
		return MutedStyle.Render("No transactions found.")
	}
	t := newTable("Transaction", "Type", "Amount", "Fee", "From", "To", "Status", "Date")
	for _, tx := range txs {
		t.Row(
			format.TransactionID(tx.TransactionID),
			string(tx.TransactionType),
			SignedAmount(tx, own, currency),
			format.Currency(tx.Fee, currency),
			shortOrDash(tx.FromAccountNumber),
			shortOrDash(tx.ToAccountNumber),
			string(tx.Status),
			format.Date(tx.CreatedAt.Time),
		)
	}
	return t.String()
}

// SignedAmount prefixes the amount with its direction sign. Internal and
// unknown transfers carry no sign.
func SignedAmount(tx models.Transaction, own OwnAccounts, currency string) string {
	return DirectionOf(tx, own).Sign() + format.Currency(tx.Amount, currency)
}

func shortOrDash(number string) string {
	if number == "" {
		return "-"
	}
	return format.ShortAccountNumber(number)
}

// PageFooter summarises the position of a page. Page numbers are shown
// one-based.
func PageFooter[T any](p *models.Page[T]) string {
	if p == nil || p.TotalPages == 0 {
		return MutedStyle.Render("Page 0 of 0")
	}
	return MutedStyle.Render(fmt.Sprintf("Page %d of %d (%d total)", p.Number+1, p.TotalPages, p.TotalElements))
}

// RenderDashboard renders the stat cards, the accounts table and the recent
// transactions.
func RenderDashboard(d DashboardData, now time.Time) string {
	var totals []string
	for _, c := range d.Stats.Currencies() {
		totals = append(totals, format.Currency(d.Stats.TotalBalance[c], c))
	}
	if len(totals) == 0 {
		totals = []string{format.Currency(decimal.Zero, format.DefaultCurrency)}
	}
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		card("Total Balance", strings.Join(totals, "\n")),
		card("Accounts", strconv.Itoa(d.Stats.AccountCount)),
		card("Recent", strconv.Itoa(d.Stats.RecentCount)),
		card("Pending", strconv.Itoa(d.Stats.PendingCount)),
	)

	currency := format.DefaultCurrency
	if len(d.Accounts) > 0 {
		currency = d.Accounts[0].Currency
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		TitleStyle.Render("Dashboard"),
		cards,
		"",
		TitleStyle.Render("Accounts"),
		RenderAccounts(d.Accounts),
		"",
		TitleStyle.Render("Recent Transactions"),
		RenderTransactions(d.Recent, d.Own, currency),
		MutedStyle.Render("Updated "+format.Relative(d.RefreshedAt, now)),
	)
}

func card(title, value string) string {
	return cardStyle.Render(MutedStyle.Render(title) + "\n" + lipgloss.NewStyle().Bold(true).Render(value))
}

// RenderPreview renders the confirmation summary for an intent.
func RenderPreview(in intent.Input, p intent.Preview) string {
	currency := format.DefaultCurrency
	if in.Source != nil && in.Source.Currency != "" {
		currency = in.Source.Currency
	}
	rows := [][2]string{
		{"Type", string(in.Kind)},
	}
	if in.Source != nil {
		rows = append(rows, [2]string{"From", format.AccountNumber(in.Source.AccountNumber)})
	}
	if in.Kind == models.TransactionTransfer && in.DestinationAccountNumber != "" {
		rows = append(rows, [2]string{"To", format.AccountNumber(in.DestinationAccountNumber)})
	}
	rows = append(rows,
		[2]string{"Amount", format.Currency(p.Amount, currency)},
		[2]string{"Fee", format.Currency(p.Fee, currency)},
		[2]string{"Total", format.Currency(p.TotalDeduction, currency)},
	)
	if p.HasProjection {
		balance := format.Currency(p.Projection.Balance, currency)
		switch {
		case p.Projection.Insufficient:
			balance = ErrorStyle.Render(balance + " (insufficient funds)")
		case p.Projection.LowBalance:
			balance = WarningStyle.Render(balance + " (low balance)")
		}
		rows = append(rows, [2]string{"Balance after", balance})
	}
	if in.Description != "" {
		rows = append(rows, [2]string{"Description", in.Description})
	}

	var b strings.Builder
	for _, r := range rows {
		fmt.Fprintf(&b, "%-14s %s\n", r[0]+":", r[1])
	}
	return cardStyle.Render(strings.TrimRight(b.String(), "\n"))
}

// RenderUsers renders the admin user table.
func RenderUsers(users []models.User) string {
	if len(users) == 0 {
		return MutedStyle.Render("No users.")
	}
	t := newTable("ID", "Username", "Full name", "Email", "Role", "Joined")
	for _, u := range users {
		t.Row(strconv.FormatInt(u.ID, 10), u.Username, u.FullName, u.Email, string(u.Role), format.Date(u.CreatedAt.Time))
	}
	return t.String()
}

// RenderAdminAccounts renders accounts with their owners and full numbers.
func RenderAdminAccounts(accounts []models.Account) string {
	if len(accounts) == 0 {
		return MutedStyle.Render("No accounts.")
	}
	t := newTable("ID", "Account", "Owner", "Type", "Balance", "Status")
	for _, a := range accounts {
		t.Row(
			strconv.FormatInt(a.ID, 10),
			a.AccountNumber,
			a.Owner,
			string(a.AccountType),
			format.Currency(a.Balance, a.Currency),
			string(a.Status),
		)
	}
	return t.String()
}

func RenderAuditLogs(logs []models.AuditLog) string {
	if len(logs) == 0 {
		return MutedStyle.Render("No audit entries.")
	}
	t := newTable("ID", "User", "Action", "Entity", "IP", "When")
	for _, l := range logs {
		t.Row(
			strconv.FormatInt(l.ID, 10),
			l.Username,
			l.Action,
			fmt.Sprintf("%s #%d", l.EntityType, l.EntityID),
			l.IPAddress,
			format.Date(l.Timestamp.Time),
		)
	}
	return t.String()
}

// RenderMetrics renders the admin overview.
func RenderMetrics(m *models.DashboardMetrics) string {
	cur := format.DefaultCurrency
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		card("Users", fmt.Sprintf("%d (+%d this week)", m.TotalUsers, m.NewUsersThisWeek)),
		card("Accounts", fmt.Sprintf("%d active / %d frozen / %d closed", m.ActiveAccounts, m.FrozenAccounts, m.ClosedAccounts)),
		card("Today", fmt.Sprintf("%d txns, %s", m.TodayTransactionCount, format.Currency(m.TodayTransactionVolume, cur))),
	)

	byType := newTable("Type", "Count", "Volume today")
	byType.Row("DEPOSIT", strconv.FormatInt(m.DepositCount, 10), format.Currency(m.TodayDeposits, cur))
	byType.Row("WITHDRAW", strconv.FormatInt(m.WithdrawalCount, 10), format.Currency(m.TodayWithdrawals, cur))
	byType.Row("TRANSFER", strconv.FormatInt(m.TransferCount, 10), format.Currency(m.TodayTransfers, cur))

	parts := []string{TitleStyle.Render("Admin Dashboard"), cards, "", byType.String()}
	if len(m.DailyVolume) > 0 {
		days := make([]string, 0, len(m.DailyVolume))
		for day := range m.DailyVolume {
			days = append(days, day)
		}
		sort.Strings(days)
		daily := newTable("Day", "Volume")
		for _, day := range days {
			daily.Row(day, format.Currency(m.DailyVolume[day], cur))
		}
		parts = append(parts, "", daily.String())
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func RenderReport(r *models.DailyReport) string {
	cur := format.DefaultCurrency
	t := newTable("Date", "Count", "Volume", "Deposits", "Withdrawals", "Transfers", "Fees")
	t.Row(
		r.Date,
		strconv.FormatInt(r.TransactionCount, 10),
		format.Currency(r.TotalVolume, cur),
		format.Currency(r.Deposits, cur),
		format.Currency(r.Withdrawals, cur),
		format.Currency(r.Transfers, cur),
		format.Currency(r.TotalFees, cur),
	)
	return t.String()
}
