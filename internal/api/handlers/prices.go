package handlers

import (
	"logistics-engine/internal/api/dto"
	"logistics-engine/internal/services"
	"net/http"
)

// PriceHandler exposes price multipliers and order quotes.
type PriceHandler struct {
	Pricing *services.PricingService
	Quotes  *services.OrderQuoter
	Router  *services.Router
}

func (h *PriceHandler) Multiplier(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	var ids [3]int64
	for i, name := range []string{"user", "product", "vendor"} {
		v, err := queryID(r, name)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		ids[i] = v
	}

	b, err := h.Pricing.Breakdown(r.Context(), ids[0], ids[1], ids[2])
	if err != nil {
		writeServiceError(w, r, "price multiplier", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.PriceMultiplierResponse{
		UserID:      ids[0],
		ProductID:   ids[1],
		VendorID:    ids[2],
		Multiplier:  b.Multiplier,
		Reliability: b.Reliability,
		Metrics:     b.Metrics,
		Spikes:      b.Spikes,
		Demand:      b.Demand,
	})
}

// Quote prices an order and reports why it could not be placed, if so.
func (h *PriceHandler) Quote(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.QuoteRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Quantity <= 0 {
		writeError(w, r, http.StatusBadRequest, "quantity must be positive")
		return
	}

	q, err := h.Quotes.Quote(r.Context(), services.QuoteRequest{
		UserID:    req.UserID,
		VendorID:  req.VendorID,
		ProductID: req.ProductID,
		SourceID:  req.SourceID,
		TargetID:  req.TargetID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		writeServiceError(w, r, "quote order", err)
		return
	}

	route := pathResponse(h.Router, req.SourceID, req.TargetID, q.Path)
	res := dto.QuoteResponse{
		OK:            q.OK(),
		Problems:      make([]string, 0, len(q.Problems)),
		Route:         &route,
		Capacity:      q.Capacity,
		Multiplier:    q.Multiplier,
		GoodsCents:    q.GoodsCents,
		ShippingCents: q.ShippingCents,
		TotalCents:    q.TotalCents,
	}
	for _, p := range q.Problems {
		res.Problems = append(res.Problems, string(p))
	}

	writeJSON(w, r, http.StatusOK, res)
}
