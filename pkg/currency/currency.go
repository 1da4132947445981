package currency

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatINR renders an amount with the rupee sign and Indian digit grouping:
// the last three integer digits form one group, every group above that is
// two digits (1000000 -> ₹10,00,000). Paise are shown only when non-zero.
// Display only; arithmetic stays on decimal.Decimal.
func FormatINR(d decimal.Decimal) string {
	neg := d.IsNegative()
	fixed := d.Abs().Round(2).StringFixed(2)

	parts := strings.SplitN(fixed, ".", 2)
	s := groupIndian(parts[0])
	if parts[1] != "00" {
		s += "." + parts[1]
	}

	if neg {
		return "-₹" + s
	}
	return "₹" + s
}

func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	head := digits[:len(digits)-3]
	tail := digits[len(digits)-3:]

	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}

	return strings.Join(append(groups, tail), ",")
}
