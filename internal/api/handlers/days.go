package handlers

import (
	"logistics-engine/internal/api/dto"
	"logistics-engine/internal/domain"
	"logistics-engine/internal/ports"
	"logistics-engine/internal/services"
	"net/http"
	"strconv"
)

// DayHandler advances simulated days and manages isolation alerts.
type DayHandler struct {
	Days      *services.DayCycle
	Isolation *services.IsolationAlertGenerator
	Alerts    ports.AlertRepository
}

func (h *DayHandler) Advance(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	userID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	day, err := strconv.Atoi(r.PathValue("day"))
	if err != nil || day < 0 {
		writeError(w, r, http.StatusBadRequest, "day must be a non-negative integer")
		return
	}

	report, err := h.Days.Advance(r.Context(), userID, day)
	if err != nil {
		writeServiceError(w, r, "advance day", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.DayAdvanceResponse{
		UserID:     userID,
		Day:        report.Day,
		Applied:    nonNil(report.Spikes.Applied),
		RolledBack: nonNil(report.Spikes.RolledBack),
		Isolation:  isolationResponse(report.Isolation),
	})
}

// GenerateIsolation runs one isolation reconciliation pass for the user.
func (h *DayHandler) GenerateIsolation(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	userID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.Isolation.GenerateIsolationAlerts(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, "generate isolation alerts", err)
		return
	}

	writeJSON(w, r, http.StatusOK, isolationResponse(report))
}

// ListAlerts returns the user's unresolved alerts.
func (h *DayHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	userID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	alerts, err := h.Alerts.ListUnresolved(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, "list alerts", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ListAlertsResponse{Alerts: alertResponses(alerts)})
}

func isolationResponse(rep services.IsolationReport) dto.IsolationResponse {
	return dto.IsolationResponse{
		StoresChecked: rep.StoresChecked,
		Raised:        alertResponses(rep.Raised),
		Resolved:      alertResponses(rep.Resolved),
	}
}

func alertResponses(alerts []domain.Alert) []dto.AlertResponse {
	out := make([]dto.AlertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, dto.AlertResponse{
			ID:           a.ID,
			LocationID:   a.LocationID,
			Type:         string(a.Type),
			Severity:     string(a.Severity),
			Message:      a.Message,
			SpikeEventID: a.SpikeEventID,
			IsResolved:   a.IsResolved,
			CreatedAt:    a.CreatedAt,
			ResolvedAt:   a.ResolvedAt,
		})
	}
	return out
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
