package quote

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/marvic-cr/backend-caja/internal/common"
	"github.com/marvic-cr/backend-caja/internal/exchange"
	"github.com/marvic-cr/backend-caja/internal/obs"
	"github.com/marvic-cr/backend-caja/internal/pricing"
	"github.com/marvic-cr/backend-caja/internal/promo"
	"github.com/marvic-cr/backend-caja/internal/tender"
)

// Service orchestrates the calculation engines behind the quote API. A fresh
// pricing.Calculator is built per request from the request's tax-rate override
// or the configured default, so no calculation shares mutable state.
type Service struct {
	DefaultTaxRate decimal.Decimal
	Converter      exchange.Converter
	Rates          exchange.RateSource
}

// Result carries everything a caller needs to settle or present a sale.
type Result struct {
	Totals            pricing.SaleTotals
	PromotionDiscount *decimal.Decimal
	Reconciliation    *tender.Reconciliation
}

// LineInput mirrors pricing.Line for request construction.
type LineInput struct {
	ID            string
	UnitPrice     decimal.Decimal
	Qty           decimal.Decimal
	LineDiscount  decimal.Decimal
	PriceOverride *decimal.Decimal
	TaxExempt     bool
}

// QuoteInput is the full input of a quote computation.
type QuoteInput struct {
	Lines                  []LineInput
	GeneralDiscountPercent decimal.Decimal
	TaxRate                *decimal.Decimal
	Promotion              *promo.Promotion
	Tenders                []tender.Tender
}

func toPricingLines(inputs []LineInput) []pricing.Line {
	lines := make([]pricing.Line, 0, len(inputs))
	for _, in := range inputs {
		lines = append(lines, pricing.Line{
			ID:            in.ID,
			UnitPrice:     in.UnitPrice,
			Qty:           in.Qty,
			LineDiscount:  in.LineDiscount,
			PriceOverride: in.PriceOverride,
			TaxExempt:     in.TaxExempt,
		})
	}
	return lines
}

// Quote validates the lines, computes sale totals, and optionally applies a
// promotion and reconciles tenders against the grand total.
func (s *Service) Quote(ctx context.Context, in QuoteInput) (Result, error) {
	lines := toPricingLines(in.Lines)

	if problems := pricing.ValidateLines(lines); len(problems) > 0 {
		obs.QuoteTotal.WithLabelValues("invalid").Inc()
		return Result{}, &common.AppError{
			Code:       "VALIDATION",
			Message:    "invalid lines",
			HTTPStatus: http.StatusUnprocessableEntity,
			Details:    problems,
		}
	}

	rate := s.DefaultTaxRate
	if in.TaxRate != nil {
		rate = *in.TaxRate
	}
	calc, err := pricing.New(rate)
	if err != nil {
		obs.QuoteTotal.WithLabelValues("invalid").Inc()
		return Result{}, err
	}

	totals, err := calc.SaleTotals(lines, in.GeneralDiscountPercent)
	if err != nil {
		obs.QuoteTotal.WithLabelValues("invalid").Inc()
		return Result{}, err
	}

	result := Result{Totals: totals}

	if in.Promotion != nil {
		discount, err := promo.Apply(lines, *in.Promotion)
		if err != nil {
			obs.QuoteTotal.WithLabelValues("invalid").Inc()
			return Result{}, err
		}
		result.PromotionDiscount = &discount
	}

	if len(in.Tenders) > 0 {
		rec := tender.Reconcile(totals.GrandTotal, in.Tenders)
		obs.TenderReconciliationTotal.WithLabelValues(string(rec.Status)).Inc()
		result.Reconciliation = &rec
	}

	obs.QuoteTotal.WithLabelValues("ok").Inc()
	return result, nil
}

// ValidateLines exposes the non-throwing batch line check.
func (s *Service) ValidateLines(in []LineInput) []string {
	return pricing.ValidateLines(toPricingLines(in))
}

// Reconcile settles tenders against a total. Insufficient payment is a
// reported status, not an error.
func (s *Service) Reconcile(total decimal.Decimal, tenders []tender.Tender) tender.Reconciliation {
	rec := tender.Reconcile(total, tenders)
	obs.TenderReconciliationTotal.WithLabelValues(string(rec.Status)).Inc()
	return rec
}

// Convert performs a currency conversion. When the request carries no rate,
// the cached or configured rate is used; with neither available the request
// is rejected.
func (s *Service) Convert(ctx context.Context, amount decimal.Decimal, rate *decimal.Decimal, from, to string) (exchange.Conversion, error) {
	effective := decimal.Zero
	if rate != nil {
		effective = *rate
	} else {
		effective = s.Rates.Current(ctx)
	}
	direction := from + "-" + to
	conv, err := s.Converter.Convert(amount, effective, from, to)
	if err != nil {
		obs.CurrencyConversionTotal.WithLabelValues(direction, "error").Inc()
		return exchange.Conversion{}, err
	}
	obs.CurrencyConversionTotal.WithLabelValues(direction, "ok").Inc()
	return conv, nil
}
