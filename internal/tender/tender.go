package tender

import (
	"github.com/shopspring/decimal"

	"github.com/marvic-cr/backend-caja/internal/pricing"
)

// Status classifies the outcome of a reconciliation.
type Status string

const (
	// StatusComplete means the tenders cover the total.
	StatusComplete Status = "complete"
	// StatusInsufficient means more payment is needed before the sale can close.
	StatusInsufficient Status = "insufficient"
)

// Tender is one payment instrument contributing toward a sale.
type Tender struct {
	Method string
	Amount decimal.Decimal
}

// Reconciliation reports how a list of tenders settles against a total.
type Reconciliation struct {
	Status        Status
	TotalTendered decimal.Decimal
	Shortfall     decimal.Decimal
	Change        decimal.Decimal
}

// Reconcile sums the tenders against the total due. An underpayment is a
// normal, reportable outcome here, never an error; the cashier is expected to
// prompt for the shortfall and try again.
func Reconcile(total decimal.Decimal, tenders []Tender) Reconciliation {
	sum := decimal.Zero
	for _, t := range tenders {
		sum = sum.Add(t.Amount)
	}
	if sum.LessThan(total) {
		return Reconciliation{
			Status:        StatusInsufficient,
			TotalTendered: pricing.Round2(sum),
			Shortfall:     pricing.Round2(total.Sub(sum)),
			Change:        decimal.Zero,
		}
	}
	return Reconciliation{
		Status:        StatusComplete,
		TotalTendered: pricing.Round2(sum),
		Shortfall:     decimal.Zero,
		Change:        pricing.Round2(sum.Sub(total)),
	}
}
