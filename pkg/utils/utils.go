// Path: pkg/utils/utils.go
package utils

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// GenerateTransactionID returns "TXN", the current Unix time in
// milliseconds and four random digits.
func GenerateTransactionID(now time.Time) string {
	return fmt.Sprintf("TXN%d%04d", now.UnixMilli(), rand.Intn(10000))
}

// GenerateAccountNumber returns sixteen random digits with a non-zero
// leading digit.
func GenerateAccountNumber() string {
	var b strings.Builder
	b.Grow(16)
	b.WriteByte(byte('1' + rand.Intn(9)))
	for i := 1; i < 16; i++ {
		b.WriteByte(byte('0' + rand.Intn(10)))
	}
	return b.String()
}

// DayBounds returns the first and last instant of the calendar day that
// contains t, in t's location.
func DayBounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1).Add(-time.Nanosecond)
}
