// Package validate holds the client-side shape checks applied before any
// request leaves the process.
package validate

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	emailRe         = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe         = regexp.MustCompile(`^[6-9]\d{9}$`)
	accountNumberRe = regexp.MustCompile(`^\d{16}$`)
	amountRe        = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)
	notBlankRe      = regexp.MustCompile(`\S`)
)

const passwordSpecials = "@$!%*?&#"

// Validate checks request DTOs tagged with `validate:"..."`. Besides the
// built-in tags it understands phone, accountnumber, amount, strongpassword
// and notblank.
var Validate *validator.Validate

func init() {
	Validate = validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name so messages match the wire format.
	Validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	_ = Validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return IsValidPhone(fl.Field().String())
	})
	_ = Validate.RegisterValidation("accountnumber", func(fl validator.FieldLevel) bool {
		return IsValidAccountNumber(fl.Field().String())
	})
	_ = Validate.RegisterValidation("amount", func(fl validator.FieldLevel) bool {
		return IsValidAmount(fl.Field().String())
	})
	_ = Validate.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
		return IsStrongPassword(fl.Field().String())
	})
	_ = Validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return notBlankRe.MatchString(fl.Field().String())
	})
}

func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// IsValidPhone accepts ten-digit mobile numbers starting with 6-9.
func IsValidPhone(phone string) bool {
	return phoneRe.MatchString(phone)
}

// IsValidAccountNumber accepts exactly sixteen digits.
func IsValidAccountNumber(number string) bool {
	return accountNumberRe.MatchString(number)
}

// IsValidAmount accepts a positive decimal with at most two fraction digits.
func IsValidAmount(amount string) bool {
	if !amountRe.MatchString(amount) {
		return false
	}
	d, err := decimal.NewFromString(amount)
	return err == nil && d.IsPositive()
}

// IsStrongPassword requires at least eight characters drawn from letters,
// digits and @$!%*?&#, with at least one of each class.
func IsStrongPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case isASCIILower(r):
			lower = true
		case isASCIIUpper(r):
			upper = true
		case isASCIIDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		default:
			return false
		}
	}
	return lower && upper && digit && special
}

func isASCIILower(r rune) bool { return r >= 'a' && r <= 'z' }
func isASCIIUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
func isASCIIDigit(r rune) bool { return r >= '0' && r <= '9' }

type Strength string

const (
	StrengthWeak   Strength = "weak"
	StrengthMedium Strength = "medium"
	StrengthStrong Strength = "strong"
)

// PasswordScore is the result of the registration strength meter.
type PasswordScore struct {
	Score    int
	Strength Strength
}

// PasswordStrength scores one point each for length >= 8, an ASCII
// lowercase letter, an ASCII uppercase letter, an ASCII digit and a special
// character.
func PasswordStrength(password string) PasswordScore {
	score := 0
	if len(password) >= 8 {
		score++
	}
	if strings.IndexFunc(password, isASCIILower) >= 0 {
		score++
	}
	if strings.IndexFunc(password, isASCIIUpper) >= 0 {
		score++
	}
	if strings.IndexFunc(password, isASCIIDigit) >= 0 {
		score++
	}
	if strings.ContainsAny(password, passwordSpecials) {
		score++
	}

	switch {
	case score < 3:
		return PasswordScore{Score: score, Strength: StrengthWeak}
	case score < 5:
		return PasswordScore{Score: score, Strength: StrengthMedium}
	default:
		return PasswordScore{Score: score, Strength: StrengthStrong}
	}
}
