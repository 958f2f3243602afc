package helpers

import (
	"fmt"
	"image/color"
	"math/big"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/gamut"
	"github.com/shopspring/decimal"
)

// ShortenAddr shortens an account address for display
func ShortenAddr(addr string) string {
	if len(addr) < 14 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-6:]
}

// FormatTokens formats an amount of base units with the chain's decimals
func FormatTokens(amount *big.Int, decimals int32, symbol string) string {
	if amount == nil {
		return "– " + symbol
	}
	d := decimal.NewFromBigInt(amount, -decimals)
	return strings.TrimSpace(d.StringFixedBank(4) + " " + symbol)
}

// maxAmountLen bounds the digits of a typed amount, well above any u128
const maxAmountLen = 64

// ParseTokens converts a human amount ("12.5") into base units. Amounts with
// more precision than decimals are rejected.
func ParseTokens(s string, decimals int32) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("amount is required")
	}
	// plain decimal notation only, no exponent
	if strings.ContainsAny(s, "eE") || len(s) > maxAmountLen {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("amount must not be negative")
	}
	shifted := d.Shift(decimals)
	if !shifted.Equal(shifted.Truncate(0)) {
		return nil, fmt.Errorf("amount has more than %d decimals", decimals)
	}
	return shifted.BigInt(), nil
}

// LoadedAt formats the loaded timestamp
func LoadedAt(t time.Time, loading bool) string {
	if loading {
		return "loading…"
	}
	if t.IsZero() {
		return "never"
	}
	return t.Format("15:04:05")
}

// ShortDate trims an ISO-8601 timestamp down to its date
func ShortDate(iso string) string {
	if t, err := time.Parse(time.RFC3339, iso); err == nil {
		return t.Format("02 Jan 2006")
	}
	if len(iso) >= 10 {
		return iso[:10]
	}
	return iso
}

// FadeString creates a gradient colored string
func FadeString(s string, firstColor string, lastColor string) string {
	if s == "" {
		return ""
	}
	blends := gamut.Blends(lipgloss.Color(firstColor), lipgloss.Color(lastColor), len(s))
	return rainbow(lipgloss.NewStyle(), s, blends)
}

func rainbow(baseStyle lipgloss.Style, str string, colors []color.Color) string {
	var b strings.Builder
	for i, c := range str {
		col, _ := colorful.MakeColor(colors[i%len(colors)])
		b.WriteString(baseStyle.Foreground(lipgloss.Color(col.Hex())).Render(string(c)))
	}
	return b.String()
}

// Max returns the maximum of two integers
func Max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Min returns the minimum of two integers
func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Truncate cuts s to n runes, marking the cut with an ellipsis
func Truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
