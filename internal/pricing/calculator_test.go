package pricing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return d
}

func mustCalculator(t *testing.T, rate string) Calculator {
	t.Helper()
	c, err := New(dec(rate))
	if err != nil {
		t.Fatalf("new calculator: %v", err)
	}
	return c
}

func TestNewRejectsRateOutOfRange(t *testing.T) {
	for _, rate := range []string{"-0.01", "1.01", "13"} {
		if _, err := New(dec(rate)); !errors.Is(err, ErrTaxRateOutOfRange) {
			t.Fatalf("rate %s: expected ErrTaxRateOutOfRange, got %v", rate, err)
		}
	}
	if _, err := New(dec("0")); err != nil {
		t.Fatalf("rate 0 should be valid: %v", err)
	}
	if _, err := New(dec("1")); err != nil {
		t.Fatalf("rate 1 should be valid: %v", err)
	}
}

func TestSaleTotalsSingleLine(t *testing.T) {
	c := mustCalculator(t, "0.13")
	lines := []Line{{ID: "a", UnitPrice: dec("1000"), Qty: dec("2")}}

	totals, err := c.SaleTotals(lines, decimal.Zero)
	if err != nil {
		t.Fatalf("sale totals: %v", err)
	}
	expect := map[string][2]decimal.Decimal{
		"gross subtotal": {totals.GrossSubtotal, dec("2000")},
		"net subtotal":   {totals.NetSubtotal, dec("2000")},
		"taxable base":   {totals.TaxableBase, dec("2000")},
		"tax":            {totals.Tax, dec("260")},
		"grand total":    {totals.GrandTotal, dec("2260")},
	}
	for name, pair := range expect {
		if !pair[0].Equal(pair[1]) {
			t.Fatalf("%s: expected %s, got %s", name, pair[1], pair[0])
		}
	}
}

func TestSaleTotalsGeneralDiscountProRata(t *testing.T) {
	c := mustCalculator(t, "0.13")
	lines := []Line{
		{ID: "taxable", UnitPrice: dec("1000"), Qty: dec("1")},
		{ID: "exempt", UnitPrice: dec("500"), Qty: dec("1"), TaxExempt: true},
	}

	totals, err := c.SaleTotals(lines, dec("10"))
	if err != nil {
		t.Fatalf("sale totals: %v", err)
	}
	if !totals.NetSubtotal.Equal(dec("1500")) {
		t.Fatalf("net subtotal: expected 1500, got %s", totals.NetSubtotal)
	}
	if !totals.GeneralDiscount.Equal(dec("150")) {
		t.Fatalf("general discount: expected 150, got %s", totals.GeneralDiscount)
	}
	if !totals.TaxableBase.Equal(dec("900")) {
		t.Fatalf("taxable base: expected 900, got %s", totals.TaxableBase)
	}
	if !totals.ExemptBase.Equal(dec("450")) {
		t.Fatalf("exempt base: expected 450, got %s", totals.ExemptBase)
	}
	if !totals.Tax.Equal(dec("117")) {
		t.Fatalf("tax: expected 117, got %s", totals.Tax)
	}
	if !totals.GrandTotal.Equal(dec("1467")) {
		t.Fatalf("grand total: expected 1467, got %s", totals.GrandTotal)
	}
}

// Both bases must shrink by the same factor, within a cent of rounding.
func TestSplitBasesSameReductionFactor(t *testing.T) {
	c := mustCalculator(t, "0.13")
	lines := []Line{
		{ID: "a", UnitPrice: dec("333.33"), Qty: dec("3")},
		{ID: "b", UnitPrice: dec("123.45"), Qty: dec("7"), TaxExempt: true},
	}
	bases := c.SplitBases(lines, dec("97.53"))

	taxable0 := dec("333.33").Mul(dec("3"))
	exempt0 := dec("123.45").Mul(dec("7"))
	factorTaxable := bases.Taxable.Div(taxable0)
	factorExempt := bases.Exempt.Div(exempt0)
	if factorTaxable.Sub(factorExempt).Abs().GreaterThan(dec("0.0001")) {
		t.Fatalf("reduction factors diverge: %s vs %s", factorTaxable, factorExempt)
	}
}

func TestSubtotalUsesPriceOverride(t *testing.T) {
	c := mustCalculator(t, "0.13")
	override := dec("750")
	lines := []Line{{ID: "a", UnitPrice: dec("1000"), Qty: dec("2"), PriceOverride: &override}}
	if got := c.Subtotal(lines); !got.Equal(dec("1500")) {
		t.Fatalf("expected 1500, got %s", got)
	}
}

func TestSubtotalFractionalQty(t *testing.T) {
	c := mustCalculator(t, "0.13")
	// weighted goods, e.g. 1.335 kg at 2359 per kg
	lines := []Line{{ID: "a", UnitPrice: dec("2359"), Qty: dec("1.335")}}
	if got := c.Subtotal(lines); !got.Equal(dec("3149.27")) {
		t.Fatalf("expected 3149.27, got %s", got)
	}
}

func TestGeneralDiscountRejectsPercentOutOfRange(t *testing.T) {
	c := mustCalculator(t, "0.13")
	for _, pct := range []string{"-1", "100.01"} {
		if _, err := c.GeneralDiscount(dec("1000"), dec(pct)); !errors.Is(err, ErrDiscountPercentOutOfRange) {
			t.Fatalf("percent %s: expected ErrDiscountPercentOutOfRange, got %v", pct, err)
		}
	}
}

func TestChangeFailsOnUnderpayment(t *testing.T) {
	c := mustCalculator(t, "0.13")
	if _, err := c.Change(dec("2260"), dec("2000")); !errors.Is(err, ErrPaymentBelowTotal) {
		t.Fatalf("expected ErrPaymentBelowTotal, got %v", err)
	}
	change, err := c.Change(dec("2260"), dec("3000"))
	if err != nil {
		t.Fatalf("change: %v", err)
	}
	if !change.Equal(dec("740")) {
		t.Fatalf("expected change 740, got %s", change)
	}
}

func TestRoundingIdempotent(t *testing.T) {
	values := []string{"0.00", "12.34", "-7.89", "1000000.01"}
	for _, v := range values {
		d := dec(v)
		if !Round2(d).Equal(d) {
			t.Fatalf("rounding %s changed the value to %s", v, Round2(d))
		}
	}
	// midpoint rounds away from zero
	if !Round2(dec("1.005")).Equal(dec("1.01")) {
		t.Fatalf("expected 1.005 to round to 1.01, got %s", Round2(dec("1.005")))
	}
	if !Round2(dec("-1.005")).Equal(dec("-1.01")) {
		t.Fatalf("expected -1.005 to round to -1.01, got %s", Round2(dec("-1.005")))
	}
}

func TestSubtotalAdditivityAcrossPartitions(t *testing.T) {
	c := mustCalculator(t, "0.13")
	lines := []Line{
		{ID: "a", UnitPrice: dec("10.333"), Qty: dec("1")},
		{ID: "b", UnitPrice: dec("20.333"), Qty: dec("2")},
		{ID: "c", UnitPrice: dec("0.07"), Qty: dec("3.5")},
	}
	whole := c.Subtotal(lines)
	parts := c.Subtotal(lines[:1]).Add(c.Subtotal(lines[1:]))
	if whole.Sub(parts).Abs().GreaterThan(dec("0.01")) {
		t.Fatalf("partitioned subtotal %s deviates from %s by more than a cent", parts, whole)
	}
}

// An oversized line discount is deliberately not clamped; the negative net
// propagates into the bases and the tax. This pins the current behavior.
func TestSaleTotalsNegativeLineNet(t *testing.T) {
	c := mustCalculator(t, "0.13")
	lines := []Line{{ID: "a", UnitPrice: dec("100"), Qty: dec("1"), LineDiscount: dec("150")}}

	totals, err := c.SaleTotals(lines, decimal.Zero)
	if err != nil {
		t.Fatalf("sale totals: %v", err)
	}
	if !totals.TaxableBase.Equal(dec("-50")) {
		t.Fatalf("taxable base: expected -50, got %s", totals.TaxableBase)
	}
	if !totals.Tax.Equal(dec("-6.5")) {
		t.Fatalf("tax: expected -6.50, got %s", totals.Tax)
	}
	if !totals.GrandTotal.Equal(dec("-56.5")) {
		t.Fatalf("grand total: expected -56.50, got %s", totals.GrandTotal)
	}
}

func TestValidateLines(t *testing.T) {
	override := dec("0")
	lines := []Line{
		{ID: "ok", UnitPrice: dec("10"), Qty: dec("1")},
		{ID: "bad-price", UnitPrice: dec("0"), Qty: dec("1")},
		{ID: "bad-qty", UnitPrice: dec("10"), Qty: dec("-2")},
		{UnitPrice: dec("10"), Qty: dec("1"), PriceOverride: &override},
	}
	problems := ValidateLines(lines)
	if len(problems) != 3 {
		t.Fatalf("expected 3 problems, got %d: %v", len(problems), problems)
	}
	if problems[2] != "line #4: price override must be greater than zero" {
		t.Fatalf("unexpected message: %q", problems[2])
	}
}
