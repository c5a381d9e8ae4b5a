package promo

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/marvic-cr/backend-caja/internal/pricing"
)

func dec(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return d
}

func TestApplyPercentage(t *testing.T) {
	lines := []pricing.Line{
		{ID: "1", UnitPrice: dec("1000"), Qty: dec("1")},
		{ID: "2", UnitPrice: dec("2000"), Qty: dec("1")},
	}
	discount, err := Apply(lines, Promotion{Kind: KindPercentage, Value: dec("10")})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !discount.Equal(dec("300")) {
		t.Fatalf("expected 300, got %s", discount)
	}
}

func TestApplyFixedAmountCappedAtApplicableSubtotal(t *testing.T) {
	lines := []pricing.Line{
		{ID: "1", UnitPrice: dec("1000"), Qty: dec("1")},
		{ID: "2", UnitPrice: dec("2000"), Qty: dec("1")},
	}
	discount, err := Apply(lines, Promotion{Kind: KindFixedAmount, Value: dec("5000"), LineIDs: []string{"1", "2"}})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !discount.Equal(dec("3000")) {
		t.Fatalf("expected cap at 3000, got %s", discount)
	}
}

func TestApplyScopedToLineIDs(t *testing.T) {
	lines := []pricing.Line{
		{ID: "in", UnitPrice: dec("500"), Qty: dec("2")},
		{ID: "out", UnitPrice: dec("9999"), Qty: dec("1")},
	}
	discount, err := Apply(lines, Promotion{Kind: KindPercentage, Value: dec("50"), LineIDs: []string{"in"}})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !discount.Equal(dec("500")) {
		t.Fatalf("expected 500, got %s", discount)
	}
}

func TestApplyPercentageUsesLineNet(t *testing.T) {
	lines := []pricing.Line{
		{ID: "1", UnitPrice: dec("1000"), Qty: dec("1"), LineDiscount: dec("100")},
	}
	discount, err := Apply(lines, Promotion{Kind: KindPercentage, Value: dec("10")})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !discount.Equal(dec("90")) {
		t.Fatalf("expected 90, got %s", discount)
	}
}

func TestApplyUnknownKind(t *testing.T) {
	if _, err := Apply(nil, Promotion{Kind: "bogo"}); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}
