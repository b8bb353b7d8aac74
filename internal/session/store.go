// Package session owns the signed-in state: the bearer token and the user it
// belongs to. Both live in durable storage under two keys that are always
// written and cleared together.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"securebank/internal/models"
	"securebank/internal/services"
	"securebank/internal/validate"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
)

const (
	KeyToken = "token"
	KeyUser  = "user"
)

var (
	ErrNotAuthenticated = errors.New("not signed in")
	ErrForbidden        = errors.New("administrator role required")
	ErrCorruptSession   = errors.New("stored session is corrupt")
)

// AuthError means the server rejected the credentials or answered with a
// payload that cannot start a session.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string { return e.Message }

func (e *AuthError) Unwrap() error { return e.Err }

// Storage is the durable key/value backend. Put and Delete must apply all
// keys in one operation.
type Storage interface {
	Get(key string) (string, bool, error)
	Put(values map[string]string) error
	Delete(keys ...string) error
}

// Authenticator is the subset of services.AuthService the store needs.
type Authenticator interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
}

// Session is an authenticated token/user pair.
type Session struct {
	Token string
	User  models.User
}

type Options struct {
	// OnLogout is called after the session is cleared, to route the user
	// back to the sign-in entry.
	OnLogout func()
	// Now is the clock used for the token expiry check.
	Now func() time.Time
}

// Store is safe for concurrent use. Readers see either the old or the new
// session, never a mix.
type Store struct {
	storage Storage
	auth    Authenticator
	logger  *zap.Logger
	opts    Options

	current atomic.Pointer[Session]
	writeMu sync.Mutex
}

var _ services.TokenSource = (*Store)(nil)

// NewStore creates a Store. Call Restore to pick up a persisted session.
func NewStore(storage Storage, auth Authenticator, logger *zap.Logger, opts Options) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{
		storage: storage,
		auth:    auth,
		logger:  logger.With(zap.String("component", "session")),
		opts:    opts,
	}
}

// Restore loads the persisted pair. A partial, malformed or expired pair
// clears both keys and yields no session; it is never an error. A storage
// read failure yields no session and leaves storage untouched.
func (s *Store) Restore() (Session, bool) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	sess, err := s.load()
	switch {
	case err == nil:
		s.current.Store(sess)
		s.logger.Debug("Session restored", zap.String("username", sess.User.Username))
		return *sess, true
	case errors.Is(err, errNoSession):
		s.current.Store(nil)
		return Session{}, false
	case errors.Is(err, ErrCorruptSession):
		s.logger.Warn("Discarding stored session", zap.Error(err))
	default:
		// The pair may be intact; a later start can still restore it.
		s.logger.Error("Failed to read stored session", zap.Error(err))
		s.current.Store(nil)
		return Session{}, false
	}

	if err := s.storage.Delete(KeyToken, KeyUser); err != nil {
		s.logger.Error("Failed to clear stored session", zap.Error(err))
	}
	s.current.Store(nil)
	return Session{}, false
}

var errNoSession = errors.New("no stored session")

func (s *Store) load() (*Session, error) {
	token, hasToken, err := s.storage.Get(KeyToken)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", KeyToken, err)
	}
	rawUser, hasUser, err := s.storage.Get(KeyUser)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", KeyUser, err)
	}
	if !hasToken && !hasUser {
		return nil, errNoSession
	}
	if !hasToken || token == "" || !hasUser {
		return nil, fmt.Errorf("%w: partial pair", ErrCorruptSession)
	}

	var user models.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSession, err)
	}
	if user.ID == 0 || user.Username == "" {
		return nil, fmt.Errorf("%w: user without identity", ErrCorruptSession)
	}
	if expired(token, s.opts.Now()) {
		return nil, fmt.Errorf("%w: token expired", ErrCorruptSession)
	}
	return &Session{Token: token, User: user}, nil
}

// expired inspects the exp claim without verifying the signature; the
// client has no key and the server re-checks every call anyway. Tokens that
// are not JWTs, or carry no exp, are never considered expired.
func expired(token string, now time.Time) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && !now.Before(claims.ExpiresAt.Time)
}

// Login authenticates and persists the new session with a single write.
func (s *Store) Login(ctx context.Context, creds models.LoginRequest) (Session, error) {
	if err := validate.Struct(creds); err != nil {
		return Session{}, err
	}
	resp, err := s.auth.Login(ctx, creds)
	if err != nil {
		return Session{}, rejection("Login failed", err)
	}
	if resp == nil || resp.Token == "" || resp.User == nil {
		return Session{}, &AuthError{Message: "Login failed: server returned no session"}
	}

	sess := &Session{Token: resp.Token, User: *resp.User}
	if err := s.persist(sess); err != nil {
		return Session{}, err
	}
	s.logger.Info("Signed in", zap.String("username", sess.User.Username), zap.String("role", string(sess.User.Role)))
	return *sess, nil
}

// Register validates the request locally, then creates the account on the
// server. It does not sign the user in.
func (s *Store) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	user, err := s.auth.Register(ctx, req)
	if err != nil {
		return nil, rejection("Registration failed", err)
	}
	s.logger.Info("Registered", zap.String("username", req.Username))
	return user, nil
}

func rejection(prefix string, err error) error {
	msg := prefix
	if remote, ok := services.AsRemote(err); ok && remote.Message != "" {
		msg = prefix + ": " + remote.Message
	}
	return &AuthError{Message: msg, Err: err}
}

func (s *Store) persist(sess *Session) error {
	rawUser, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("encode session user: %w", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.storage.Put(map[string]string{KeyToken: sess.Token, KeyUser: string(rawUser)}); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	s.current.Store(sess)
	return nil
}

// Logout clears storage and memory, then fires OnLogout. Memory is cleared
// even if storage fails, so no later call carries the old token.
func (s *Store) Logout() error {
	s.writeMu.Lock()
	err := s.storage.Delete(KeyToken, KeyUser)
	prev := s.current.Swap(nil)
	s.writeMu.Unlock()

	if prev != nil {
		s.logger.Info("Signed out", zap.String("username", prev.User.Username))
	}
	if s.opts.OnLogout != nil {
		s.opts.OnLogout()
	}
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *Store) IsAuthenticated() bool {
	return s.current.Load() != nil
}

func (s *Store) IsAdmin() bool {
	sess := s.current.Load()
	return sess != nil && sess.User.Role == models.RoleAdmin
}

// Current returns the session, if any.
func (s *Store) Current() (Session, bool) {
	sess := s.current.Load()
	if sess == nil {
		return Session{}, false
	}
	return *sess, true
}

// Token returns the bearer token or "" when signed out.
func (s *Store) Token() string {
	if sess := s.current.Load(); sess != nil {
		return sess.Token
	}
	return ""
}

// RequireAuth guards commands that need a signed-in user.
func (s *Store) RequireAuth() error {
	if !s.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	return nil
}

// RequireAdmin guards the admin commands.
func (s *Store) RequireAdmin() error {
	if err := s.RequireAuth(); err != nil {
		return err
	}
	if !s.IsAdmin() {
		return ErrForbidden
	}
	return nil
}
