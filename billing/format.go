package billing

import (
	"strconv"
	"strings"
)

// FormatUSD formats an amount as US dollars with thousands separators and
// exactly two decimal places, e.g. -$1,234.50.
func FormatUSD(amount float64) string {
	amount = RoundCurrency(amount)
	negative := amount < 0
	if negative {
		amount = -amount
	}

	raw := strconv.FormatFloat(amount, 'f', 2, 64)
	intPart, decPart, _ := strings.Cut(raw, ".")

	result := "$" + applyThousandsGrouping(intPart) + "." + decPart
	if negative {
		result = "-" + result
	}
	return result
}

// applyThousandsGrouping inserts a comma every three digits from the right.
func applyThousandsGrouping(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	var b strings.Builder
	lead := n % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatPercent renders a fraction as a percentage: FormatPercent(0.4567, 2)
// is "45.67%".
func FormatPercent(fraction float64, decimals int) string {
	return strconv.FormatFloat(roundPlaces(fraction*100, int32(decimals)), 'f', decimals, 64) + "%"
}
