package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// CurrencyGlyph prefixes rendered balances.
const CurrencyGlyph = "₹"

// ZeroBalance is the explicit zero-currency literal; a zero balance must
// never render as a dash.
const ZeroBalance = CurrencyGlyph + "0.00"

// FormatValue renders a result cell consistently across backends: integral
// numbers get thousands separators and no decimal point, non-integral
// numbers get exactly two decimals with separators, everything else renders
// as literal text.
func FormatValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case float64:
		return formatFloat(v)
	case float32:
		return formatFloat(float64(v))
	case int:
		return GroupDigits(strconv.FormatInt(int64(v), 10))
	case int32:
		return GroupDigits(strconv.FormatInt(int64(v), 10))
	case int64:
		return GroupDigits(strconv.FormatInt(v, 10))
	case uint64:
		return GroupDigits(strconv.FormatUint(v, 10))
	case []byte:
		return formatText(string(v))
	case string:
		return formatText(v)
	case time.Time:
		return v.Format("2006-01-02")
	default:
		return fmt.Sprintf("%v", v)
	}
}

func formatFloat(v float64) string {
	if v == math.Trunc(v) && !math.IsInf(v, 0) {
		return GroupDigits(strconv.FormatInt(int64(v), 10))
	}
	return GroupDecimal(v)
}

// formatText renders numeric-looking driver strings (decimal columns often
// scan as text) like numbers, and everything else verbatim.
func formatText(s string) string {
	if !IsNumericLiteral(strings.TrimPrefix(s, "-")) {
		return s
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return formatFloat(f)
	}
	return s
}

// GroupDigits inserts thousands separators into a plain integer string.
func GroupDigits(digits string) string {
	neg := strings.HasPrefix(digits, "-")
	if neg {
		digits = digits[1:]
	}
	n := len(digits)
	if n <= 3 {
		if neg {
			return "-" + digits
		}
		return digits
	}
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	head := n % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 && !(neg && b.Len() == 1) {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// GroupDecimal renders v with exactly two decimals and thousands separators.
func GroupDecimal(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	dot := strings.IndexByte(s, '.')
	return GroupDigits(s[:dot]) + s[dot:]
}

// IsNumericLiteral reports whether s is a plain digit/decimal-point string.
// Negative numbers and scientific notation are deliberately rejected; the
// extractor treats anything else as free text.
func IsNumericLiteral(s string) bool {
	if s == "" {
		return false
	}
	dots := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == '.':
			dots++
			if dots > 1 {
				return false
			}
		default:
			return false
		}
	}
	return s != "."
}

// FormatWireDate converts an 8-digit YYYYMMDD wire date into dd/mm/yy
// display form. Unparsable values pass through unchanged.
func FormatWireDate(wire string) string {
	t, err := time.Parse("20060102", wire)
	if err != nil {
		return wire
	}
	return t.Format("02/01/06")
}

// ParseDisplayDate parses a dd/mm/yy display date.
func ParseDisplayDate(display string) (time.Time, error) {
	return time.Parse("02/01/06", display)
}

// FormatBalance renders a raw wire balance with the currency glyph and
// two-decimal grouping. A zero balance renders as the explicit zero
// literal; values that do not parse pass through unchanged.
func FormatBalance(raw string) string {
	if raw == "" {
		return ""
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return raw
	}
	if v == 0 {
		return ZeroBalance
	}
	if v < 0 {
		return CurrencyGlyph + "-" + GroupDecimal(-v)
	}
	return CurrencyGlyph + GroupDecimal(v)
}

// ParseBalance strips currency formatting and returns the numeric value;
// unparsable balances count as zero, matching the sink semantics.
func ParseBalance(display string) float64 {
	cleaned := strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(display, CurrencyGlyph, ""), ",", ""))
	if cleaned == "" {
		return 0
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v
}
