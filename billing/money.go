package billing

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Tolerance is the largest difference treated as equal when comparing
// currency amounts.
const Tolerance = 0.01

var (
	hundred       = decimal.NewFromInt(100)
	tolerance     = decimal.NewFromFloat(Tolerance)
	numericPrefix = regexp.MustCompile(`^[+-]?(\d+(\.\d+)?|\.\d+)([eE][+-]?\d+)?`)
)

// RoundCurrency rounds to cents, half away from zero.
func RoundCurrency(v float64) float64 {
	return roundPlaces(v, 2)
}

// RoundPercentage rounds a fraction to four decimal places (0.4567 = 45.67%).
func RoundPercentage(v float64) float64 {
	return roundPlaces(v, 4)
}

func roundPlaces(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// ParseCurrencyInput turns user text such as "$1,234.56" into a rounded
// amount. Unparseable input yields 0.
func ParseCurrencyInput(s string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		if r == '$' || r == ',' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)

	d, ok := parseLeadingDecimal(cleaned)
	if !ok {
		return 0
	}
	return finite(d.Round(2).InexactFloat64())
}

// ParsePercentageInput turns "10%" or "10" into the fraction 0.1.
// Unparseable input yields 0.
func ParsePercentageInput(s string) float64 {
	cleaned := strings.TrimSpace(strings.ReplaceAll(s, "%", ""))

	d, ok := parseLeadingDecimal(cleaned)
	if !ok {
		return 0
	}
	return finite(d.Div(hundred).Round(4).InexactFloat64())
}

// parseLeadingDecimal reads the longest numeric prefix of s, ignoring any
// trailing garbage ("12abc" reads as 12).
func parseLeadingDecimal(s string) (decimal.Decimal, bool) {
	m := numericPrefix.FindString(s)
	if m == "" {
		return decimal.Zero, false
	}

	sign := ""
	if m[0] == '+' || m[0] == '-' {
		sign, m = m[:1], m[1:]
	}
	if strings.HasPrefix(m, ".") {
		m = "0" + m
	}
	if sign == "-" {
		m = "-" + m
	}

	d, err := decimal.NewFromString(m)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// WithinTolerance reports whether a and b differ by no more than a cent.
// The comparison is done on decimal values so that 0.01 apart is equal.
func WithinTolerance(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) || math.IsInf(a, 0) || math.IsInf(b, 0) {
		return false
	}
	diff := decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Abs()
	return !diff.GreaterThan(tolerance)
}

// exceeds reports whether a is greater than b by more than a cent.
func exceeds(a, b float64) bool {
	return !WithinTolerance(a, b) && a > b
}
