package currency

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency identifies one of the supported settlement currencies.
type Currency string

const (
	BDT Currency = "BDT"
	USD Currency = "USD"
	CNY Currency = "CNY"
)

// DisplayScale is the number of decimal places kept on normalized amounts.
const DisplayScale = 2

// defaultUSDToCNY is the cross rate the storefront has always used when a
// product does not carry its own USD/CNY quote.
var defaultUSDToCNY = decimal.NewFromInt(7)

// Parse converts a currency label into a Currency value.
func Parse(value string) (Currency, error) {
	switch Currency(strings.ToUpper(strings.TrimSpace(value))) {
	case BDT:
		return BDT, nil
	case USD:
		return USD, nil
	case CNY:
		return CNY, nil
	}
	return "", fmt.Errorf("unsupported currency: %q", value)
}

// Valid reports whether c is one of the supported currencies.
func (c Currency) Valid() bool {
	switch c {
	case BDT, USD, CNY:
		return true
	}
	return false
}

// Rates holds the conversion rates in force for a single product or order.
// Orders snapshot the rates at creation time so later rate changes do not
// rewrite historical totals.
type Rates struct {
	USDToBDT decimal.Decimal `json:"usdToBdt"`
	CNYToBDT decimal.Decimal `json:"cnyToBdt"`
	USDToCNY decimal.Decimal `json:"usdToCny"`
}

// Normalize fills the USD/CNY cross rate with the historical default when the
// caller left it unset.
func (r Rates) Normalize() Rates {
	if r.USDToCNY.Sign() <= 0 {
		r.USDToCNY = defaultUSDToCNY
	}
	return r
}

// Validate checks that the configurable rates are positive.
func (r Rates) Validate() error {
	if r.USDToBDT.Sign() <= 0 {
		return fmt.Errorf("usdToBdt must be positive, got %s", r.USDToBDT)
	}
	if r.CNYToBDT.Sign() <= 0 {
		return fmt.Errorf("cnyToBdt must be positive, got %s", r.CNYToBDT)
	}
	return nil
}

// Money is an immutable triple holding the same nominal value in each
// supported currency, converted at the rates in force when it was created.
type Money struct {
	BDT decimal.Decimal `json:"bdt"`
	USD decimal.Decimal `json:"usd"`
	CNY decimal.Decimal `json:"cny"`
}

// Zero returns an all-zero Money value.
func Zero() Money {
	return Money{BDT: decimal.Zero, USD: decimal.Zero, CNY: decimal.Zero}
}

// Amount returns the component of m named by c.
func (m Money) Amount(c Currency) decimal.Decimal {
	switch c {
	case BDT:
		return m.BDT
	case USD:
		return m.USD
	case CNY:
		return m.CNY
	}
	return decimal.Zero
}

// IsZero reports whether all three components are zero.
func (m Money) IsZero() bool {
	return m.BDT.IsZero() && m.USD.IsZero() && m.CNY.IsZero()
}

// Add returns the component-wise sum of m and other.
func (m Money) Add(other Money) Money {
	return Money{
		BDT: m.BDT.Add(other.BDT),
		USD: m.USD.Add(other.USD),
		CNY: m.CNY.Add(other.CNY),
	}
}

// Sub returns the component-wise difference of m and other, floored at zero
// per component. Money values are never negative.
func (m Money) Sub(other Money) Money {
	return Money{
		BDT: floorZero(m.BDT.Sub(other.BDT)),
		USD: floorZero(m.USD.Sub(other.USD)),
		CNY: floorZero(m.CNY.Sub(other.CNY)),
	}
}

// MulInt scales every component by a quantity.
func (m Money) MulInt(n int64) Money {
	factor := decimal.NewFromInt(n)
	return Money{
		BDT: m.BDT.Mul(factor),
		USD: m.USD.Mul(factor),
		CNY: m.CNY.Mul(factor),
	}
}

// MulRate applies a fractional rate (e.g. a discount rate) per component and
// rounds for display.
func (m Money) MulRate(rate decimal.Decimal) Money {
	if rate.Sign() <= 0 {
		return Zero()
	}
	return Money{
		BDT: m.BDT.Mul(rate).Round(DisplayScale),
		USD: m.USD.Mul(rate).Round(DisplayScale),
		CNY: m.CNY.Mul(rate).Round(DisplayScale),
	}
}

// Round returns m with every component rounded to the display scale.
func (m Money) Round() Money {
	return Money{
		BDT: m.BDT.Round(DisplayScale),
		USD: m.USD.Round(DisplayScale),
		CNY: m.CNY.Round(DisplayScale),
	}
}

// Normalize derives the equivalent amounts in all three currencies from an
// amount quoted in input (USD or CNY). Non-positive amounts collapse to zero
// rather than producing negative or undefined components; the function never
// fails.
func Normalize(amount decimal.Decimal, input Currency, rates Rates) Money {
	if amount.Sign() <= 0 {
		return Zero()
	}
	rates = rates.Normalize()
	switch input {
	case CNY:
		return Money{
			BDT: amount.Mul(rates.CNYToBDT).Round(DisplayScale),
			USD: amount.Div(rates.USDToCNY).Round(DisplayScale),
			CNY: amount.Round(DisplayScale),
		}
	case USD:
		return Money{
			BDT: amount.Mul(rates.USDToBDT).Round(DisplayScale),
			USD: amount.Round(DisplayScale),
			CNY: amount.Mul(rates.USDToCNY).Round(DisplayScale),
		}
	}
	return Zero()
}

// FromBDT builds a Money value from a BDT-quoted amount by inverting the
// configured rates. Used for flat BDT fee tables such as shipping.
func FromBDT(amount decimal.Decimal, rates Rates) Money {
	if amount.Sign() <= 0 {
		return Zero()
	}
	rates = rates.Normalize()
	m := Money{BDT: amount.Round(DisplayScale), USD: decimal.Zero, CNY: decimal.Zero}
	if rates.USDToBDT.Sign() > 0 {
		m.USD = amount.Div(rates.USDToBDT).Round(DisplayScale)
	}
	if rates.CNYToBDT.Sign() > 0 {
		m.CNY = amount.Div(rates.CNYToBDT).Round(DisplayScale)
	}
	return m
}

func floorZero(d decimal.Decimal) decimal.Decimal {
	if d.Sign() < 0 {
		return decimal.Zero
	}
	return d
}
