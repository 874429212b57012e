package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	inr := Info{Code: "INR", Symbol: "₹", ThousandsSeparator: ",", SymbolOnLeft: true}
	eur := Info{Code: "EUR", Symbol: "€", ThousandsSeparator: ".", DecimalSeparator: ",", DecimalDigits: 2}

	tests := []struct {
		name   string
		amount float64
		info   Info
		want   string
	}{
		{"small amount", 950, inr, "₹950"},
		{"thousands", 12500, inr, "₹12,500"},
		{"millions", 1234567, inr, "₹1,234,567"},
		{"rounds to whole", 4999.6, inr, "₹5,000"},
		{"negative", -4200, inr, "-₹4,200"},
		{"decimals right symbol", 1234.5, eur, "1.234,50 €"},
		{"no symbol falls back to code", 100, Info{Code: "XYZ"}, "100 XYZ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.amount, tt.info))
		})
	}
}
