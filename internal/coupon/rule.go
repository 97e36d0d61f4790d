package coupon

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var bpsDivisor = decimal.NewFromInt(10000)

// Rule is a discount coupon. The rate is stored in basis points so rules
// survive JSON and SQL round trips without float drift.
type Rule struct {
	Code      string     `json:"code"`
	RateBps   int        `json:"rateBps"`
	ValidFrom *time.Time `json:"validFrom,omitempty"`
	ValidTo   *time.Time `json:"validTo,omitempty"`
	Active    bool       `json:"active"`
}

// Rate returns the fractional discount rate, e.g. 500 bps -> 0.05.
func (r Rule) Rate() decimal.Decimal {
	if r.RateBps <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(r.RateBps)).Div(bpsDivisor)
}

// ValidAt reports whether the rule grants a discount at the given instant.
func (r Rule) ValidAt(now time.Time) bool {
	if !r.Active || r.RateBps <= 0 {
		return false
	}
	if r.ValidFrom != nil && now.Before(*r.ValidFrom) {
		return false
	}
	if r.ValidTo != nil && now.After(*r.ValidTo) {
		return false
	}
	return true
}

// NormalizeCode canonicalises a user-supplied coupon code for lookup.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
