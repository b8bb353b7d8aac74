// Package format turns raw API values into display strings. Every function
// is pure; identical input always yields identical output.
package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// DefaultCurrency is used when an amount carries no currency code.
const DefaultCurrency = "INR"

const visibleDigits = 4

// Currency renders amount in the given ISO 4217 currency using Indian digit
// grouping, e.g. "₹12,34,567.50" or "-₹505.00".
func Currency(amount decimal.Decimal, code string) string {
	if code == "" {
		code = DefaultCurrency
	}
	symbol, scale := strings.ToUpper(code)+" ", int32(2)
	if unit, err := currency.ParseISO(code); err == nil {
		symbol = fmt.Sprint(currency.NarrowSymbol(unit))
		s, _ := currency.Standard.Rounding(unit)
		scale = int32(s)
	}

	rounded := amount.Round(scale)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}
	whole, frac, _ := strings.Cut(rounded.StringFixed(scale), ".")
	out := sign + symbol + groupIndian(whole)
	if frac != "" {
		out += "." + frac
	}
	return out
}

// groupIndian inserts separators as 12,34,56,789: the last three digits form
// one group, the rest are grouped in pairs.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	parts = append([]string{head}, parts...)
	return strings.Join(parts, ",") + "," + tail
}

// AccountNumber masks every digit except the last four.
func AccountNumber(number string) string {
	if len(number) <= visibleDigits {
		return number
	}
	cut := len(number) - visibleDigits
	masked := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return 'X'
		}
		return r
	}, number[:cut])
	return masked + number[cut:]
}

// ShortAccountNumber is the compact "****3456" form used on transfer cards.
func ShortAccountNumber(number string) string {
	if number == "" {
		return ""
	}
	if len(number) > visibleDigits {
		number = number[len(number)-visibleDigits:]
	}
	return "****" + number
}

// Date renders t as "15 Oct 2026, 02:30 PM". The zero time renders empty.
func Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02 Jan 2006, 03:04 PM")
}

// Relative renders t relative to now, e.g. "3 minutes ago".
func Relative(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// TransactionID keeps the last eight characters behind an ellipsis.
func TransactionID(id string) string {
	if len(id) > 8 {
		id = id[len(id)-8:]
	}
	return "..." + id
}
