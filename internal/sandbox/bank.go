// Package sandbox is an in-memory banking backend speaking the same REST
// contract as the production server. It exists for local development and
// end-to-end tests of the client; it is not a ledger of record.
package sandbox

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"securebank/internal/intent"
	"securebank/internal/models"
	"securebank/internal/validate"
	"securebank/pkg/utils"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

type Options struct {
	Fees intent.FeeSchedule
	// MinBalance is the floor a withdrawal or transfer may not cross.
	MinBalance decimal.Decimal
	// DailyLimit caps the per-account sum of withdrawals and of transfers
	// per calendar day. Zero disables the check.
	DailyLimit decimal.Decimal
	BcryptCost int
	Now        func() time.Time
}

type userRecord struct {
	models.User
	passwordHash []byte
}

type accountRecord struct {
	models.Account
	userID int64
}

type txRecord struct {
	models.Transaction
	fromID int64
	toID   int64
}

// Bank holds all sandbox state behind one mutex; every operation is atomic.
type Bank struct {
	opts Options

	mu          sync.Mutex
	users       map[int64]*userRecord
	usersByName map[string]int64
	accounts    map[int64]*accountRecord
	byNumber    map[string]int64
	txs         []*txRecord
	audit       []models.AuditLog
	nextUserID  int64
	nextAccID   int64
	nextTxID    int64
	nextAuditID int64
}

func NewBank(opts Options) *Bank {
	if opts.Fees == (intent.FeeSchedule{}) {
		opts.Fees = intent.DefaultFeeSchedule()
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Bank{
		opts:        opts,
		users:       map[int64]*userRecord{},
		usersByName: map[string]int64{},
		accounts:    map[int64]*accountRecord{},
		byNumber:    map[string]int64{},
	}
}

// Register creates a USER. Usernames and emails are unique.
func (b *Bank) Register(req models.RegisterRequest) (*models.User, error) {
	return b.createUser(req, models.RoleUser)
}

// SeedAdmin creates an ADMIN with the given credentials if the username is
// free. The password is not checked for strength.
func (b *Bank) SeedAdmin(username, password string) (*models.User, error) {
	b.mu.Lock()
	if id, ok := b.usersByName[strings.ToLower(username)]; ok {
		u := b.users[id].User
		b.mu.Unlock()
		return &u, nil
	}
	b.mu.Unlock()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.opts.BcryptCost)
	if err != nil {
		return nil, &AppError{Code: http.StatusInternalServerError, Message: "Failed to hash password", Details: err.Error(), Err: err}
	}
	return b.insertUser(models.User{Username: username, FullName: "Administrator", Role: models.RoleAdmin, IsVerified: true}, hash)
}

func (b *Bank) createUser(req models.RegisterRequest, role models.Role) (*models.User, error) {
	if err := validate.Struct(req); err != nil {
		return nil, badRequest("Validation failed", err.Error())
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), b.opts.BcryptCost)
	if err != nil {
		return nil, &AppError{Code: http.StatusInternalServerError, Message: "Failed to hash password", Details: err.Error(), Err: err}
	}
	return b.insertUser(models.User{
		Username: req.Username,
		Email:    req.Email,
		FullName: strings.TrimSpace(req.FullName),
		Phone:    req.Phone,
		Role:     role,
	}, hash)
}

func (b *Bank) insertUser(u models.User, hash []byte) (*models.User, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := strings.ToLower(u.Username)
	if _, ok := b.usersByName[key]; ok {
		return nil, badRequest("Username already exists", fmt.Sprintf("username: %s", u.Username))
	}
	if u.Email != "" {
		for _, other := range b.users {
			if strings.EqualFold(other.Email, u.Email) {
				return nil, badRequest("Email already exists", fmt.Sprintf("email: %s", u.Email))
			}
		}
	}

	b.nextUserID++
	u.ID = b.nextUserID
	u.CreatedAt = models.NewTimestamp(b.opts.Now())
	b.users[u.ID] = &userRecord{User: u, passwordHash: hash}
	b.usersByName[key] = u.ID
	b.logLocked(u.ID, "REGISTER", "USER", u.ID)
	return &u, nil
}

// Authenticate checks credentials and records a LOGIN audit entry.
func (b *Bank) Authenticate(username, password string) (*models.User, error) {
	b.mu.Lock()
	id, ok := b.usersByName[strings.ToLower(username)]
	var rec *userRecord
	if ok {
		rec = b.users[id]
	}
	b.mu.Unlock()

	invalid := &AppError{Code: http.StatusUnauthorized, Message: "Invalid username or password"}
	if rec == nil {
		return nil, invalid
	}
	if err := bcrypt.CompareHashAndPassword(rec.passwordHash, []byte(password)); err != nil {
		return nil, invalid
	}

	b.mu.Lock()
	b.logLocked(rec.ID, "LOGIN", "USER", rec.ID)
	b.mu.Unlock()
	u := rec.User
	return &u, nil
}

func (b *Bank) User(id int64) (*models.User, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	rec, ok := b.users[id]
	if !ok {
		return nil, notFound("User not found", fmt.Sprintf("user_id: %d", id))
	}
	u := rec.User
	return &u, nil
}

// CreateAccount opens an ACTIVE account with a zero balance.
func (b *Bank) CreateAccount(userID int64, req models.CreateAccountRequest) (*models.Account, error) {
	if err := validate.Struct(req); err != nil {
		return nil, badRequest("Validation failed", err.Error())
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.users[userID]; !ok {
		return nil, notFound("User not found", fmt.Sprintf("user_id: %d", userID))
	}

	number := utils.GenerateAccountNumber()
	for b.byNumber[number] != 0 {
		number = utils.GenerateAccountNumber()
	}
	b.nextAccID++
	rec := &accountRecord{
		Account: models.Account{
			ID:            b.nextAccID,
			AccountNumber: number,
			AccountType:   req.AccountType,
			Balance:       decimal.Zero,
			Currency:      strings.ToUpper(req.Currency),
			Status:        models.AccountStatusActive,
			CreatedAt:     models.NewTimestamp(b.opts.Now()),
		},
		userID: userID,
	}
	b.accounts[rec.ID] = rec
	b.byNumber[number] = rec.ID
	b.logLocked(userID, "ACCOUNT_CREATED", "ACCOUNT", rec.ID)
	return b.viewLocked(rec), nil
}

// Accounts lists the user's accounts in creation order.
func (b *Bank) Accounts(userID int64) []models.Account {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []models.Account{}
	for _, rec := range b.sortedAccountsLocked() {
		if rec.userID == userID {
			out = append(out, *b.viewLocked(rec))
		}
	}
	return out
}

func (b *Bank) Account(userID, accountID int64) (*models.Account, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	rec, err := b.ownedLocked(userID, accountID)
	if err != nil {
		return nil, err
	}
	return b.viewLocked(rec), nil
}

// UpdateStatus lets an owner change their own account's status.
func (b *Bank) UpdateStatus(userID, accountID int64, status models.AccountStatus) (*models.Account, error) {
	if err := validate.Struct(models.UpdateStatusRequest{Status: status}); err != nil {
		return nil, badRequest("Validation failed", err.Error())
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	rec, err := b.ownedLocked(userID, accountID)
	if err != nil {
		return nil, err
	}
	rec.Status = status
	b.logLocked(userID, "ACCOUNT_STATUS_"+string(status), "ACCOUNT", accountID)
	return b.viewLocked(rec), nil
}

func (b *Bank) ownedLocked(userID, accountID int64) (*accountRecord, error) {
	rec, ok := b.accounts[accountID]
	if !ok {
		return nil, notFound("Account not found", fmt.Sprintf("account_id: %d", accountID))
	}
	if rec.userID != userID {
		return nil, forbidden("Access denied", fmt.Sprintf("account_id: %d", accountID))
	}
	return rec, nil
}

func (b *Bank) sortedAccountsLocked() []*accountRecord {
	out := make([]*accountRecord, 0, len(b.accounts))
	for _, rec := range b.accounts {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// viewLocked copies an account out of the store with its owner's username.
func (b *Bank) viewLocked(rec *accountRecord) *models.Account {
	acc := rec.Account
	if u, ok := b.users[rec.userID]; ok {
		acc.Owner = u.Username
	}
	return &acc
}

func (b *Bank) logLocked(userID int64, action, entityType string, entityID int64) {
	b.nextAuditID++
	username := ""
	if u, ok := b.users[userID]; ok {
		username = u.Username
	}
	b.audit = append(b.audit, models.AuditLog{
		ID:         b.nextAuditID,
		Username:   username,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Timestamp:  models.NewTimestamp(b.opts.Now()),
	})
}
