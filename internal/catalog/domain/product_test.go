package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePriceCents(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"49,90", 4990},
		{"49.90", 4990},
		{"49,9", 4990},
		{"49", 4900},
		{"0,50", 50},
		{"150", 15000},
		{" 12,00 ", 1200},
	}
	for _, tc := range cases {
		got, err := ParsePriceCents(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestParsePriceCents_Invalid(t *testing.T) {
	for _, in := range []string{"", "abc", "49,999", "-5,00", "12,3x"} {
		_, err := ParsePriceCents(in)
		assert.ErrorIs(t, err, ErrInvalidProduct, "input %q", in)
	}
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "150.00", FormatCents(15000))
	assert.Equal(t, "49.90", FormatCents(4990))
	assert.Equal(t, "0.05", FormatCents(5))
	assert.Equal(t, "-1.50", FormatCents(-150))
}

func TestProductValidate(t *testing.T) {
	valid := Product{Name: "Caneca", Description: "Caneca pintada", PriceCents: 4990, LeadTimeDays: 7}
	require.NoError(t, valid.Validate())

	cases := map[string]Product{
		"missing name":        {Description: "x", PriceCents: 100},
		"blank name":          {Name: "  ", Description: "x", PriceCents: 100},
		"missing description": {Name: "Caneca", PriceCents: 100},
		"negative price":      {Name: "Caneca", Description: "x", PriceCents: -1},
		"negative lead time":  {Name: "Caneca", Description: "x", PriceCents: 100, LeadTimeDays: -1},
	}
	for name, p := range cases {
		assert.ErrorIs(t, p.Validate(), ErrInvalidProduct, name)
	}
}
