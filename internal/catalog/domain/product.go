package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Product is a sellable, made-to-order catalog entry. Prices are stored as
// integer cents; LeadTimeDays is the production lead time quoted to the
// customer.
type Product struct {
	ID           string
	Name         string
	Description  string
	PriceCents   int64
	ImageURL     string
	LeadTimeDays int
	Category     string
	Available    bool
	CreatedAt    time.Time
}

var ErrInvalidProduct = errors.New("invalid product")

func (p Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if strings.TrimSpace(p.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidProduct)
	}
	if p.PriceCents < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	}
	if p.LeadTimeDays < 0 {
		return fmt.Errorf("%w: lead time must not be negative", ErrInvalidProduct)
	}
	return nil
}

// ParsePriceCents converts a form-submitted decimal price ("49.90" or
// "49,90") into cents. At most two fractional digits are accepted.
func ParsePriceCents(s string) (int64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, fmt.Errorf("%w: empty price", ErrInvalidProduct)
	}
	whole, frac, found := strings.Cut(s, ".")
	if len(frac) > 2 {
		return 0, fmt.Errorf("%w: price %q has too many decimal places", ErrInvalidProduct, s)
	}
	if !found || frac == "" {
		frac = "0"
	} else if len(frac) == 1 {
		frac += "0"
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || w < 0 {
		return 0, fmt.Errorf("%w: price %q", ErrInvalidProduct, s)
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: price %q", ErrInvalidProduct, s)
	}
	return w*100 + f, nil
}

// FormatCents renders cents as a plain decimal string ("150.00").
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
