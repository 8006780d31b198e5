// Package ordernumber generates human-facing order references of the form
// RAM-YYYYMMDD-NNNN. The date segment is always UTC so references sort by
// business day regardless of server timezone.
package ordernumber

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"time"
)

const (
	prefix    = "RAM"
	suffixMin = 1000
	suffixMax = 9999

	// MaxAttempts bounds regeneration when a reference collides with the
	// unique index on orders.order_number.
	MaxAttempts = 5
)

var pattern = regexp.MustCompile(`^RAM-\d{8}-\d{4}$`)

// Generate returns a new order reference for the current UTC day.
func Generate() string {
	return At(time.Now())
}

// At returns an order reference for the given instant's UTC day. The suffix
// is uniformly random in [1000, 9999].
func At(now time.Time) string {
	suffix := suffixMin + rand.IntN(suffixMax-suffixMin+1)
	return fmt.Sprintf("%s-%s-%04d", prefix, now.UTC().Format("20060102"), suffix)
}

// IsValid reports whether the value matches the reference format.
func IsValid(value string) bool {
	return pattern.MatchString(value)
}
