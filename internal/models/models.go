// Path: internal/models/models.go
package models

import (
	"github.com/golang-jwt/jwt/v4"
	"github.com/shopspring/decimal"
)

// The banking API speaks plain JSON numbers for money.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User is the profile returned by the auth and admin endpoints.
type User struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email,omitempty"`
	FullName   string    `json:"fullName,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	Role       Role      `json:"role"`
	IsVerified bool      `json:"isVerified,omitempty"`
	CreatedAt  Timestamp `json:"createdAt,omitempty"`
}

type AccountType string

const (
	AccountTypeSavings AccountType = "SAVINGS"
	AccountTypeCurrent AccountType = "CURRENT"
)

type AccountStatus string

const (
	AccountStatusActive AccountStatus = "ACTIVE"
	AccountStatusFrozen AccountStatus = "FROZEN"
	AccountStatusClosed AccountStatus = "CLOSED"
)

// Account is a read-only copy of a server-side account.
type Account struct {
	ID            int64           `json:"id"`
	AccountNumber string          `json:"accountNumber"`
	AccountType   AccountType     `json:"accountType"`
	Balance       decimal.Decimal `json:"balance"`
	Currency      string          `json:"currency"`
	Status        AccountStatus   `json:"status"`
	CreatedAt     Timestamp       `json:"createdAt,omitempty"`
	Owner         string          `json:"owner,omitempty"`
}

type TransactionType string

const (
	TransactionDeposit  TransactionType = "DEPOSIT"
	TransactionWithdraw TransactionType = "WITHDRAW"
	TransactionTransfer TransactionType = "TRANSFER"
)

// Valid reports whether t is one of the known transaction kinds.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionDeposit, TransactionWithdraw, TransactionTransfer:
		return true
	}
	return false
}

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "PENDING"
	TransactionCompleted TransactionStatus = "COMPLETED"
	TransactionFailed    TransactionStatus = "FAILED"
)

// Transaction is a ledger entry as reported by the server.
type Transaction struct {
	ID                int64             `json:"id"`
	TransactionID     string            `json:"transactionId"`
	TransactionType   TransactionType   `json:"transactionType"`
	Amount            decimal.Decimal   `json:"amount"`
	Fee               decimal.Decimal   `json:"fee"`
	Description       string            `json:"description,omitempty"`
	FromAccountNumber string            `json:"fromAccountNumber,omitempty"`
	ToAccountNumber   string            `json:"toAccountNumber,omitempty"`
	Status            TransactionStatus `json:"status"`
	CreatedAt         Timestamp         `json:"createdAt"`
}

// APIResponse is the envelope every endpoint wraps its payload in.
type APIResponse[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data"`
}

// Page is a slice of a paginated resource.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalPages    int   `json:"totalPages"`
	TotalElements int64 `json:"totalElements"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,strongpassword"`
	FullName string `json:"fullName" validate:"required,notblank"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,phone"`
}

// AuthResponse carries the bearer token and the signed-in user.
type AuthResponse struct {
	Token string `json:"token"`
	Type  string `json:"type,omitempty"`
	User  *User  `json:"user"`
}

type CreateAccountRequest struct {
	AccountType AccountType `json:"accountType" validate:"required,oneof=SAVINGS CURRENT"`
	Currency    string      `json:"currency" validate:"required,len=3"`
}

type UpdateStatusRequest struct {
	Status AccountStatus `json:"status" validate:"required,oneof=ACTIVE FROZEN CLOSED"`
}

// TransactionRequest is the body of deposit and withdraw calls.
type TransactionRequest struct {
	AccountID   int64           `json:"accountId"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
}

type TransferRequest struct {
	FromAccountID   int64           `json:"fromAccountId"`
	ToAccountNumber string          `json:"toAccountNumber"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description,omitempty"`
}

// DashboardMetrics is the admin overview.
type DashboardMetrics struct {
	TotalUsers             int64                      `json:"totalUsers"`
	TotalAccounts          int64                      `json:"totalAccounts"`
	NewUsersThisWeek       int64                      `json:"newUsersThisWeek"`
	TodayTransactionVolume decimal.Decimal            `json:"todayTransactionVolume"`
	TodayTransactionCount  int64                      `json:"todayTransactionCount"`
	ActiveAccounts         int64                      `json:"activeAccounts"`
	FrozenAccounts         int64                      `json:"frozenAccounts"`
	ClosedAccounts         int64                      `json:"closedAccounts"`
	TodayDeposits          decimal.Decimal            `json:"todayDeposits"`
	TodayWithdrawals       decimal.Decimal            `json:"todayWithdrawals"`
	TodayTransfers         decimal.Decimal            `json:"todayTransfers"`
	DepositCount           int64                      `json:"depositCount"`
	WithdrawalCount        int64                      `json:"withdrawalCount"`
	TransferCount          int64                      `json:"transferCount"`
	DailyVolume            map[string]decimal.Decimal `json:"dailyVolume"`
}

type AuditLog struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	Action     string    `json:"action"`
	EntityType string    `json:"entityType"`
	EntityID   int64     `json:"entityId"`
	IPAddress  string    `json:"ipAddress,omitempty"`
	Timestamp  Timestamp `json:"timestamp"`
}

// DailyReport aggregates one calendar day of activity.
type DailyReport struct {
	Date             string          `json:"date"`
	TransactionCount int64           `json:"transactionCount"`
	TotalVolume      decimal.Decimal `json:"totalVolume"`
	Deposits         decimal.Decimal `json:"deposits"`
	Withdrawals      decimal.Decimal `json:"withdrawals"`
	Transfers        decimal.Decimal `json:"transfers"`
	TotalFees        decimal.Decimal `json:"totalFees"`
}

// Claims are the JWT claims issued by the banking API.
type Claims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	jwt.RegisteredClaims
}
