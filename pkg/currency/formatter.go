// Package currency renders prices according to the display rules the
// backend sends alongside every search handle.
package currency

import (
	"math"
	"strconv"
	"strings"
)

// Info mirrors the backend's currency_info block.
type Info struct {
	Code               string
	Symbol             string
	ThousandsSeparator string
	DecimalSeparator   string
	DecimalDigits      int
	SymbolOnLeft       bool
}

// Format renders an amount with the given display rules.
func Format(amount float64, info Info) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	factor := math.Pow(10, float64(info.DecimalDigits))
	amount = math.Round(amount*factor) / factor

	intPart := math.Floor(amount)
	intStr := strconv.FormatFloat(intPart, 'f', 0, 64)
	if info.ThousandsSeparator != "" {
		intStr = addThousandsSeparator(intStr, info.ThousandsSeparator)
	}

	var b strings.Builder
	if negative {
		b.WriteString("-")
	}

	symbol := info.Symbol
	if symbol == "" {
		symbol = info.Code
	}
	if info.SymbolOnLeft {
		b.WriteString(symbol)
		b.WriteString(intStr)
	} else {
		b.WriteString(intStr)
	}

	if info.DecimalDigits > 0 {
		frac := amount - intPart
		fracStr := strconv.FormatFloat(frac, 'f', info.DecimalDigits, 64)
		sep := info.DecimalSeparator
		if sep == "" {
			sep = "."
		}
		b.WriteString(sep)
		b.WriteString(fracStr[2:]) // skip "0."
	}

	if !info.SymbolOnLeft {
		b.WriteString(" ")
		b.WriteString(symbol)
	}
	return b.String()
}

func addThousandsSeparator(s string, sep string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	var b strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 && (n-i)%3 == 0 {
			b.WriteString(sep)
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
