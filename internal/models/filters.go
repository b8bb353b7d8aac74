package models

import (
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"
)

// TransactionFilter narrows GET /transactions. Zero values are omitted.
type TransactionFilter struct {
	Page      int
	Size      int
	StartDate string
	EndDate   string
	Type      TransactionType
	Status    TransactionStatus
	MinAmount decimal.NullDecimal
	MaxAmount decimal.NullDecimal
}

// Values encodes the filter as query parameters.
func (f TransactionFilter) Values() url.Values {
	v := url.Values{}
	setPaging(v, f.Page, f.Size)
	setIf(v, "startDate", f.StartDate)
	setIf(v, "endDate", f.EndDate)
	setIf(v, "type", string(f.Type))
	setIf(v, "status", string(f.Status))
	if f.MinAmount.Valid {
		v.Set("minAmount", f.MinAmount.Decimal.String())
	}
	if f.MaxAmount.Valid {
		v.Set("maxAmount", f.MaxAmount.Decimal.String())
	}
	return v
}

// IsZero reports whether no narrowing criteria are set; paging is ignored.
func (f TransactionFilter) IsZero() bool {
	return f.StartDate == "" && f.EndDate == "" && f.Type == "" && f.Status == "" &&
		!f.MinAmount.Valid && !f.MaxAmount.Valid
}

// AdminTransactionFilter adds the admin-only criteria.
type AdminTransactionFilter struct {
	TransactionFilter
	Username      string
	AccountNumber string
}

func (f AdminTransactionFilter) Values() url.Values {
	v := f.TransactionFilter.Values()
	setIf(v, "username", f.Username)
	setIf(v, "accountNumber", f.AccountNumber)
	return v
}

// StatementQuery pages through one account's history.
type StatementQuery struct {
	Page      int
	Size      int
	StartDate string
	EndDate   string
	Type      TransactionType
}

func (q StatementQuery) Values() url.Values {
	v := url.Values{}
	setPaging(v, q.Page, q.Size)
	setIf(v, "startDate", q.StartDate)
	setIf(v, "endDate", q.EndDate)
	setIf(v, "type", string(q.Type))
	return v
}

// PageQuery is plain paging for the admin listings.
type PageQuery struct {
	Page int
	Size int
}

func (q PageQuery) Values() url.Values {
	v := url.Values{}
	setPaging(v, q.Page, q.Size)
	return v
}

func setPaging(v url.Values, page, size int) {
	if page > 0 {
		v.Set("page", strconv.Itoa(page))
	}
	if size > 0 {
		v.Set("size", strconv.Itoa(size))
	}
}

func setIf(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}
