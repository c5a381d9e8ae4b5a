package quote

import (
	"encoding/json"
	"errors"
	"net/http"

	validator "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/marvic-cr/backend-caja/internal/common"
	"github.com/marvic-cr/backend-caja/internal/exchange"
	"github.com/marvic-cr/backend-caja/internal/pricing"
	"github.com/marvic-cr/backend-caja/internal/promo"
	"github.com/marvic-cr/backend-caja/internal/tender"
)

// Handler wires the quote service to HTTP.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

// NewHandler constructs a handler with a ready validator.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc, Validate: validator.New()}
}

type lineRequest struct {
	ID            string           `json:"id"`
	UnitPrice     decimal.Decimal  `json:"unit_price"`
	Qty           decimal.Decimal  `json:"qty"`
	LineDiscount  decimal.Decimal  `json:"line_discount"`
	PriceOverride *decimal.Decimal `json:"price_override,omitempty"`
	TaxExempt     bool             `json:"tax_exempt"`
}

type promotionRequest struct {
	Kind    string          `json:"kind" validate:"required"`
	Value   decimal.Decimal `json:"value"`
	LineIDs []string        `json:"line_ids,omitempty"`
}

type tenderRequest struct {
	Method string          `json:"method" validate:"required"`
	Amount decimal.Decimal `json:"amount"`
}

type quoteRequest struct {
	Lines                  []lineRequest     `json:"lines" validate:"required,min=1,dive"`
	GeneralDiscountPercent decimal.Decimal   `json:"general_discount_percent"`
	TaxRate                *decimal.Decimal  `json:"tax_rate,omitempty"`
	Promotion              *promotionRequest `json:"promotion,omitempty"`
	Tenders                []tenderRequest   `json:"tenders,omitempty" validate:"omitempty,dive"`
}

type totalsResponse struct {
	GrossSubtotal     decimal.Decimal `json:"gross_subtotal"`
	LineDiscountTotal decimal.Decimal `json:"line_discount_total"`
	NetSubtotal       decimal.Decimal `json:"net_subtotal"`
	GeneralDiscount   decimal.Decimal `json:"general_discount"`
	TaxableBase       decimal.Decimal `json:"taxable_base"`
	ExemptBase        decimal.Decimal `json:"exempt_base"`
	Tax               decimal.Decimal `json:"tax"`
	GrandTotal        decimal.Decimal `json:"grand_total"`
}

type reconciliationResponse struct {
	Status        string          `json:"status"`
	TotalTendered decimal.Decimal `json:"total_tendered"`
	Shortfall     decimal.Decimal `json:"shortfall"`
	Change        decimal.Decimal `json:"change"`
}

type quoteResponse struct {
	Totals            totalsResponse          `json:"totals"`
	PromotionDiscount *decimal.Decimal        `json:"promotion_discount,omitempty"`
	Reconciliation    *reconciliationResponse `json:"reconciliation,omitempty"`
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed JSON body", nil)
		return false
	}
	if err := h.Validate.Struct(dst); err != nil {
		common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", err.Error(), nil)
		return false
	}
	return true
}

// Compute handles POST /api/v1/quotes.
func (h *Handler) Compute(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if !h.decode(w, r, &req) {
		return
	}

	input := QuoteInput{
		Lines:                  toLineInputs(req.Lines),
		GeneralDiscountPercent: req.GeneralDiscountPercent,
		TaxRate:                req.TaxRate,
		Tenders:                toTenders(req.Tenders),
	}
	if req.Promotion != nil {
		input.Promotion = &promo.Promotion{
			Kind:    promo.Kind(req.Promotion.Kind),
			Value:   req.Promotion.Value,
			LineIDs: req.Promotion.LineIDs,
		}
	}

	result, err := h.Svc.Quote(r.Context(), input)
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp := quoteResponse{
		Totals: totalsResponse{
			GrossSubtotal:     result.Totals.GrossSubtotal,
			LineDiscountTotal: result.Totals.LineDiscountTotal,
			NetSubtotal:       result.Totals.NetSubtotal,
			GeneralDiscount:   result.Totals.GeneralDiscount,
			TaxableBase:       result.Totals.TaxableBase,
			ExemptBase:        result.Totals.ExemptBase,
			Tax:               result.Totals.Tax,
			GrandTotal:        result.Totals.GrandTotal,
		},
		PromotionDiscount: result.PromotionDiscount,
	}
	if result.Reconciliation != nil {
		resp.Reconciliation = toReconciliationResponse(*result.Reconciliation)
	}
	common.JSONData(w, http.StatusOK, resp)
}

// ValidateLines handles POST /api/v1/quotes/validate.
func (h *Handler) ValidateLines(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Lines []lineRequest `json:"lines" validate:"required,min=1,dive"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	problems := h.Svc.ValidateLines(toLineInputs(req.Lines))
	if problems == nil {
		problems = []string{}
	}
	common.JSONData(w, http.StatusOK, map[string]any{"problems": problems})
}

// Reconcile handles POST /api/v1/tenders/reconcile.
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Total   decimal.Decimal `json:"total"`
		Tenders []tenderRequest `json:"tenders" validate:"required,min=1,dive"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	rec := h.Svc.Reconcile(req.Total, toTenders(req.Tenders))
	common.JSONData(w, http.StatusOK, toReconciliationResponse(rec))
}

// Convert handles POST /api/v1/exchange/convert.
func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount decimal.Decimal  `json:"amount"`
		Rate   *decimal.Decimal `json:"rate,omitempty"`
		From   string           `json:"from" validate:"required"`
		To     string           `json:"to" validate:"required"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	conv, err := h.Svc.Convert(r.Context(), req.Amount, req.Rate, req.From, req.To)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, map[string]any{
		"original_amount":  conv.OriginalAmount,
		"converted_amount": conv.ConvertedAmount,
		"rate":             conv.Rate,
		"from":             conv.From,
		"to":               conv.To,
	})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		common.JSONError(w, appErr.HTTPStatus, appErr.Code, appErr.Message, appErr.Details)
		return
	}
	switch {
	case errors.Is(err, pricing.ErrTaxRateOutOfRange),
		errors.Is(err, pricing.ErrDiscountPercentOutOfRange),
		errors.Is(err, pricing.ErrPaymentBelowTotal),
		errors.Is(err, promo.ErrUnknownKind),
		errors.Is(err, exchange.ErrUnsupportedPair),
		errors.Is(err, exchange.ErrNonPositiveRate):
		common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", err.Error(), nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to compute quote", nil)
	}
}

func toLineInputs(reqs []lineRequest) []LineInput {
	lines := make([]LineInput, 0, len(reqs))
	for _, l := range reqs {
		lines = append(lines, LineInput{
			ID:            l.ID,
			UnitPrice:     l.UnitPrice,
			Qty:           l.Qty,
			LineDiscount:  l.LineDiscount,
			PriceOverride: l.PriceOverride,
			TaxExempt:     l.TaxExempt,
		})
	}
	return lines
}

func toTenders(reqs []tenderRequest) []tender.Tender {
	tenders := make([]tender.Tender, 0, len(reqs))
	for _, t := range reqs {
		tenders = append(tenders, tender.Tender{Method: t.Method, Amount: t.Amount})
	}
	return tenders
}

func toReconciliationResponse(rec tender.Reconciliation) *reconciliationResponse {
	return &reconciliationResponse{
		Status:        string(rec.Status),
		TotalTendered: rec.TotalTendered,
		Shortfall:     rec.Shortfall,
		Change:        rec.Change,
	}
}
