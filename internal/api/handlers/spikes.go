package handlers

import (
	"logistics-engine/internal/api/dto"
	"logistics-engine/internal/domain"
	"logistics-engine/internal/services"
	"net/http"
)

// SpikeHandler exposes spike event creation and manual apply/rollback.
type SpikeHandler struct {
	Spikes *services.SpikeEngine
	World  *services.World
}

func (h *SpikeHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.CreateSpikeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.ID <= 0 {
		writeError(w, r, http.StatusBadRequest, "id must be positive")
		return
	}

	e := domain.SpikeEvent{
		ID:                 req.ID,
		UserID:             req.UserID,
		Type:               domain.SpikeType(req.Type),
		Magnitude:          req.Magnitude,
		AffectedRouteID:    req.AffectedRouteID,
		AffectedLocationID: req.AffectedLocationID,
		AffectedProductID:  req.AffectedProductID,
		StartDay:           req.StartDay,
		EndDay:             req.EndDay,
		ParentID:           req.ParentID,
	}
	if err := h.Spikes.CreateEvent(r.Context(), e); err != nil {
		writeServiceError(w, r, "create spike", err)
		return
	}

	h.writeEvent(w, r, http.StatusCreated, e.ID)
}

func (h *SpikeHandler) Apply(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, true)
}

func (h *SpikeHandler) Rollback(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, false)
}

func (h *SpikeHandler) transition(w http.ResponseWriter, r *http.Request, apply bool) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if apply {
		err = h.Spikes.Apply(r.Context(), id)
	} else {
		err = h.Spikes.Rollback(r.Context(), id)
	}
	if err != nil {
		writeServiceError(w, r, "spike transition", err)
		return
	}

	h.writeEvent(w, r, http.StatusOK, id)
}

func (h *SpikeHandler) writeEvent(w http.ResponseWriter, r *http.Request, status int, id int64) {
	e, err := h.World.Event(id)
	if err != nil {
		writeServiceError(w, r, "load spike", err)
		return
	}
	writeJSON(w, r, status, dto.SpikeResponse{
		ID:                 e.ID,
		UserID:             e.UserID,
		Type:               string(e.Type),
		Magnitude:          e.Magnitude,
		AffectedRouteID:    e.AffectedRouteID,
		AffectedLocationID: e.AffectedLocationID,
		AffectedProductID:  e.AffectedProductID,
		StartDay:           e.StartDay,
		EndDay:             e.EndDay,
		IsActive:           e.IsActive,
		ParentID:           e.ParentID,
		Meta:               e.Meta,
	})
}
