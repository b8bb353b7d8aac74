package sandbox

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"securebank/internal/models"

	"github.com/golang-jwt/jwt/v4"
)

const issuer = "securebank-sandbox"

// TokenService issues and verifies HS256 bearer tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for user.
func (s *TokenService) Issue(user *models.User) (string, error) {
	now := s.now()
	claims := &models.Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", &AppError{Code: http.StatusInternalServerError, Message: "Failed to sign token", Details: err.Error(), Err: err}
	}
	return signed, nil
}

// Validate verifies signature, algorithm and expiry.
func (s *TokenService) Validate(tokenString string) (*models.Claims, error) {
	claims := &models.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) {
			switch {
			case ve.Errors&jwt.ValidationErrorMalformed != 0:
				return nil, &AppError{Code: http.StatusUnauthorized, Message: "Invalid token", Details: "Malformed token"}
			case ve.Errors&(jwt.ValidationErrorExpired|jwt.ValidationErrorNotValidYet) != 0:
				return nil, &AppError{Code: http.StatusUnauthorized, Message: "Invalid token", Details: "Token expired or not yet valid"}
			}
		}
		return nil, &AppError{Code: http.StatusUnauthorized, Message: "Invalid token", Details: err.Error(), Err: err}
	}
	if !token.Valid {
		return nil, &AppError{Code: http.StatusUnauthorized, Message: "Invalid token", Details: "Token is not valid"}
	}
	return claims, nil
}
