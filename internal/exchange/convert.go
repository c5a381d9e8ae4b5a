package exchange

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/marvic-cr/backend-caja/internal/pricing"
)

var (
	// ErrUnsupportedPair is returned for any direction other than base→foreign or foreign→base.
	ErrUnsupportedPair = errors.New("unsupported conversion pair")
	// ErrNonPositiveRate is returned when the exchange rate is zero or negative.
	ErrNonPositiveRate = errors.New("exchange rate must be greater than zero")
)

// Conversion is the outcome of a currency conversion.
type Conversion struct {
	OriginalAmount  decimal.Decimal
	ConvertedAmount decimal.Decimal
	Rate            decimal.Decimal
	From            string
	To              string
}

// Converter converts between exactly two currencies. The rate is expressed in
// base units per foreign unit, so base→foreign divides and foreign→base
// multiplies.
type Converter struct {
	Base    string
	Foreign string
}

// NewConverter builds a converter for the given currency pair, defaulting to
// CRC as base and USD as foreign.
func NewConverter(base, foreign string) Converter {
	b := strings.ToUpper(strings.TrimSpace(base))
	f := strings.ToUpper(strings.TrimSpace(foreign))
	if b == "" {
		b = "CRC"
	}
	if f == "" {
		f = "USD"
	}
	return Converter{Base: b, Foreign: f}
}

// Convert translates amount between the two configured currencies at the given
// rate, rounding the result to 2 decimals.
func (c Converter) Convert(amount, rate decimal.Decimal, from, to string) (Conversion, error) {
	if !rate.IsPositive() {
		return Conversion{}, ErrNonPositiveRate
	}
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))

	var converted decimal.Decimal
	switch {
	case from == c.Base && to == c.Foreign:
		converted = amount.Div(rate)
	case from == c.Foreign && to == c.Base:
		converted = amount.Mul(rate)
	default:
		return Conversion{}, ErrUnsupportedPair
	}
	return Conversion{
		OriginalAmount:  amount,
		ConvertedAmount: pricing.Round2(converted),
		Rate:            rate,
		From:            from,
		To:              to,
	}, nil
}
