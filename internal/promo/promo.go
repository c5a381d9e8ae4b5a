package promo

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/marvic-cr/backend-caja/internal/pricing"
)

// ErrUnknownKind is returned when a promotion carries a kind this engine does not implement.
var ErrUnknownKind = errors.New("unknown promotion kind")

// Kind discriminates the promotion variants.
type Kind string

const (
	// KindPercentage discounts a percentage of each applicable line's net amount.
	KindPercentage Kind = "percentage"
	// KindFixedAmount discounts a fixed amount, capped at the applicable subtotal.
	KindFixedAmount Kind = "fixed_amount"
)

var hundred = decimal.NewFromInt(100)

// Promotion describes a discount campaign. An empty LineIDs scope means every
// line is applicable.
type Promotion struct {
	Kind    Kind
	Value   decimal.Decimal
	LineIDs []string
}

// Applicable reports whether the line falls inside the promotion scope.
func (p Promotion) Applicable(line pricing.Line) bool {
	if len(p.LineIDs) == 0 {
		return true
	}
	for _, id := range p.LineIDs {
		if id == line.ID {
			return true
		}
	}
	return false
}

// Apply computes the discount amount the promotion grants over the lines,
// rounded to 2 decimals. A fixed-amount discount never exceeds the applicable
// subtotal.
func Apply(lines []pricing.Line, p Promotion) (decimal.Decimal, error) {
	switch p.Kind {
	case KindPercentage:
		discount := decimal.Zero
		for _, l := range lines {
			if p.Applicable(l) {
				discount = discount.Add(l.Net().Mul(p.Value).Div(hundred))
			}
		}
		return pricing.Round2(discount), nil
	case KindFixedAmount:
		applicable := decimal.Zero
		for _, l := range lines {
			if p.Applicable(l) {
				applicable = applicable.Add(l.Net())
			}
		}
		discount := p.Value
		if discount.GreaterThan(applicable) {
			discount = applicable
		}
		return pricing.Round2(discount), nil
	default:
		return decimal.Zero, ErrUnknownKind
	}
}
