package tender

import (
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

func TestReconcileInsufficient(t *testing.T) {
	rec := Reconcile(dec("2260"), []Tender{
		{Method: "efectivo", Amount: dec("1000")},
		{Method: "tarjeta", Amount: dec("1000")},
	})
	if rec.Status != StatusInsufficient {
		t.Fatalf("expected insufficient, got %s", rec.Status)
	}
	if !rec.Shortfall.Equal(dec("260")) {
		t.Fatalf("expected shortfall 260, got %s", rec.Shortfall)
	}
	if !rec.Change.IsZero() {
		t.Fatalf("expected zero change, got %s", rec.Change)
	}
	if !rec.TotalTendered.Equal(dec("2000")) {
		t.Fatalf("expected total tendered 2000, got %s", rec.TotalTendered)
	}
}

func TestReconcileComplete(t *testing.T) {
	rec := Reconcile(dec("2260"), []Tender{
		{Method: "efectivo", Amount: dec("2000")},
		{Method: "sinpe", Amount: dec("500")},
	})
	if rec.Status != StatusComplete {
		t.Fatalf("expected complete, got %s", rec.Status)
	}
	if !rec.Change.Equal(dec("240")) {
		t.Fatalf("expected change 240, got %s", rec.Change)
	}
	if !rec.Shortfall.IsZero() {
		t.Fatalf("expected zero shortfall, got %s", rec.Shortfall)
	}
}

func TestReconcileExactPayment(t *testing.T) {
	rec := Reconcile(dec("100"), []Tender{{Method: "efectivo", Amount: dec("100")}})
	if rec.Status != StatusComplete {
		t.Fatalf("expected complete, got %s", rec.Status)
	}
	if !rec.Change.IsZero() {
		t.Fatalf("expected zero change, got %s", rec.Change)
	}
}

func TestReconcileNoTenders(t *testing.T) {
	rec := Reconcile(dec("50"), nil)
	if rec.Status != StatusInsufficient {
		t.Fatalf("expected insufficient, got %s", rec.Status)
	}
	if !rec.Shortfall.Equal(dec("50")) {
		t.Fatalf("expected shortfall 50, got %s", rec.Shortfall)
	}
}
