package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrTaxRateOutOfRange is returned when constructing a calculator with a rate outside [0, 1].
	ErrTaxRateOutOfRange = errors.New("tax rate must be between 0 and 1")
	// ErrDiscountPercentOutOfRange is returned for a general discount percentage outside [0, 100].
	ErrDiscountPercentOutOfRange = errors.New("discount percentage must be between 0 and 100")
	// ErrPaymentBelowTotal is returned by Change when the amount paid does not cover the total.
	ErrPaymentBelowTotal = errors.New("payment below total")
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// Line is one sale line as resolved by the caller (product lookup and stock
// checks happen upstream).
type Line struct {
	ID           string
	UnitPrice    decimal.Decimal
	Qty          decimal.Decimal
	LineDiscount decimal.Decimal
	// PriceOverride supersedes UnitPrice for this line when set.
	PriceOverride *decimal.Decimal
	TaxExempt     bool
}

// EffectiveUnitPrice returns the manual override when present, the unit price otherwise.
func (l Line) EffectiveUnitPrice() decimal.Decimal {
	if l.PriceOverride != nil {
		return *l.PriceOverride
	}
	return l.UnitPrice
}

// Extended is effective unit price times quantity, before any discount.
func (l Line) Extended() decimal.Decimal {
	return l.EffectiveUnitPrice().Mul(l.Qty)
}

// Net is the extended amount minus the line discount. A discount larger than
// the extended amount yields a negative net; that is not clamped here and
// carries through into the bases and the tax.
func (l Line) Net() decimal.Decimal {
	return l.Extended().Sub(l.LineDiscount)
}

// Bases holds the net subtotal split by tax treatment.
type Bases struct {
	Taxable  decimal.Decimal
	Exempt   decimal.Decimal
	Combined decimal.Decimal
}

// SaleTotals aggregates every monetary figure needed to settle a sale.
// Each field is independently rounded to 2 decimals.
type SaleTotals struct {
	GrossSubtotal     decimal.Decimal
	LineDiscountTotal decimal.Decimal
	NetSubtotal       decimal.Decimal
	GeneralDiscount   decimal.Decimal
	TaxableBase       decimal.Decimal
	ExemptBase        decimal.Decimal
	Tax               decimal.Decimal
	GrandTotal        decimal.Decimal
}

// Calculator computes sale totals under a fixed tax rate. It is an immutable
// value: build one per request with the rate in effect at that moment.
type Calculator struct {
	taxRate decimal.Decimal
}

// New constructs a calculator, rejecting rates outside [0, 1].
func New(taxRate decimal.Decimal) (Calculator, error) {
	if taxRate.IsNegative() || taxRate.GreaterThan(one) {
		return Calculator{}, ErrTaxRateOutOfRange
	}
	return Calculator{taxRate: taxRate}, nil
}

// TaxRate reports the configured rate.
func (c Calculator) TaxRate() decimal.Decimal {
	return c.taxRate
}

// Round2 rounds a monetary value to 2 decimals, halves away from zero.
// It is the single rounding rule of this package, applied as the last step
// of every public operation.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Subtotal sums effective unit price times quantity across lines, ignoring
// line discounts, rounded once at the end.
func (c Calculator) Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Extended())
	}
	return Round2(sum)
}

// LineDiscountTotal sums per-line discount amounts.
func (c Calculator) LineDiscountTotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.LineDiscount)
	}
	return Round2(sum)
}

// GeneralDiscount computes the whole-sale discount amount from the net
// subtotal and a percentage in [0, 100].
func (c Calculator) GeneralDiscount(netSubtotal, percent decimal.Decimal) (decimal.Decimal, error) {
	if percent.IsNegative() || percent.GreaterThan(hundred) {
		return decimal.Zero, ErrDiscountPercentOutOfRange
	}
	return Round2(netSubtotal.Mul(percent).Div(hundred)), nil
}

// SplitBases splits the line nets into taxable and exempt bases and allocates
// the general discount pro-rata across both. The allocation factor is kept at
// full precision; each base is rounded independently at the end.
func (c Calculator) SplitBases(lines []Line, generalDiscount decimal.Decimal) Bases {
	taxable := decimal.Zero
	exempt := decimal.Zero
	for _, l := range lines {
		if l.TaxExempt {
			exempt = exempt.Add(l.Net())
		} else {
			taxable = taxable.Add(l.Net())
		}
	}
	combined := taxable.Add(exempt)
	if generalDiscount.IsPositive() && combined.IsPositive() {
		factor := generalDiscount.Div(combined)
		taxable = taxable.Sub(taxable.Mul(factor))
		exempt = exempt.Sub(exempt.Mul(factor))
	}
	return Bases{
		Taxable:  Round2(taxable),
		Exempt:   Round2(exempt),
		Combined: Round2(combined),
	}
}

// Tax applies the configured rate to the taxable base.
func (c Calculator) Tax(taxableBase decimal.Decimal) decimal.Decimal {
	return Round2(taxableBase.Mul(c.taxRate))
}

// SaleTotals runs the whole computation: gross subtotal, line discounts, net
// subtotal, general discount on the net, pro-rata base split, tax, and grand
// total. The grand total is re-derived from the discounted bases plus tax
// rather than from net minus discount, so it can differ from a naive total by
// a cent under adversarial rounding.
func (c Calculator) SaleTotals(lines []Line, generalDiscountPercent decimal.Decimal) (SaleTotals, error) {
	gross := c.Subtotal(lines)
	lineDiscounts := c.LineDiscountTotal(lines)
	net := Round2(gross.Sub(lineDiscounts))

	generalDiscount, err := c.GeneralDiscount(net, generalDiscountPercent)
	if err != nil {
		return SaleTotals{}, err
	}

	bases := c.SplitBases(lines, generalDiscount)
	tax := c.Tax(bases.Taxable)
	total := Round2(bases.Taxable.Add(bases.Exempt).Add(tax))

	return SaleTotals{
		GrossSubtotal:     gross,
		LineDiscountTotal: lineDiscounts,
		NetSubtotal:       net,
		GeneralDiscount:   generalDiscount,
		TaxableBase:       bases.Taxable,
		ExemptBase:        bases.Exempt,
		Tax:               tax,
		GrandTotal:        total,
	}, nil
}

// Change returns the amount owed back to the customer. Unlike tender
// reconciliation, an underpayment here is an error.
func (c Calculator) Change(total, amountPaid decimal.Decimal) (decimal.Decimal, error) {
	if amountPaid.LessThan(total) {
		return decimal.Zero, ErrPaymentBelowTotal
	}
	return Round2(amountPaid.Sub(total)), nil
}

// ValidateLines reports every problem found across the lines as human-readable
// messages so callers can surface them in one batch. It never fails.
func ValidateLines(lines []Line) []string {
	var problems []string
	for i, l := range lines {
		ref := l.ID
		if ref == "" {
			ref = fmt.Sprintf("#%d", i+1)
		}
		if !l.UnitPrice.IsPositive() {
			problems = append(problems, fmt.Sprintf("line %s: unit price must be greater than zero", ref))
		}
		if !l.Qty.IsPositive() {
			problems = append(problems, fmt.Sprintf("line %s: quantity must be greater than zero", ref))
		}
		if l.PriceOverride != nil && !l.PriceOverride.IsPositive() {
			problems = append(problems, fmt.Sprintf("line %s: price override must be greater than zero", ref))
		}
	}
	return problems
}
