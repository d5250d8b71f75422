package record

import (
	"fmt"
	"math/big"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Fields accumulates column level problems for one entity.
type Fields struct {
	errs ValidationErrors
}

func (f *Fields) add(field, message string) {
	f.errs = append(f.errs, Invalid(field, message))
}

func (f *Fields) Required(field, value string) {
	if strings.TrimSpace(value) == "" {
		f.add(field, "This field may not be blank.")
	}
}

func (f *Fields) MaxLength(field, value string, max int) {
	if utf8.RuneCountInString(value) > max {
		f.add(field, fmt.Sprintf("Ensure this field has no more than %d characters.", max))
	}
}

func (f *Fields) MaxLengthPtr(field string, value *string, max int) {
	if value != nil {
		f.MaxLength(field, *value, max)
	}
}

func (f *Fields) OneOf(field, value string, allowed ...string) {
	for _, candidate := range allowed {
		if value == candidate {
			return
		}
	}
	f.add(field, fmt.Sprintf("%q is not a valid choice.", value))
}

// Decimal enforces a numeric(digits, scale) column.
func (f *Fields) Decimal(field string, d decimal.Decimal, maxDigits, scale int32) {
	digits, decimals := decimalShape(d)
	switch {
	case digits > maxDigits:
		f.add(field, fmt.Sprintf("Ensure that there are no more than %d digits in total.", maxDigits))
	case decimals > scale:
		f.add(field, fmt.Sprintf("Ensure that there are no more than %d decimal places.", scale))
	case digits-decimals > maxDigits-scale:
		f.add(field, fmt.Sprintf("Ensure that there are no more than %d digits before the decimal point.", maxDigits-scale))
	}
}

func (f *Fields) NullDecimal(field string, d decimal.NullDecimal, maxDigits, scale int32) {
	if d.Valid {
		f.Decimal(field, d.Decimal, maxDigits, scale)
	}
}

func (f *Fields) Err() error {
	return f.errs.OrNil()
}

// decimalShape counts significant digits and decimal places the way the
// value was written, so 1.50 has three digits and two places.
func decimalShape(d decimal.Decimal) (digits, decimals int32) {
	coef := new(big.Int).Abs(d.Coefficient()).String()
	exp := d.Exponent()
	n := int32(len(coef))
	if exp >= 0 {
		if coef == "0" {
			return 0, 0
		}
		return n + exp, 0
	}
	decimals = -exp
	if decimals > n {
		return decimals, decimals
	}
	return n, decimals
}
