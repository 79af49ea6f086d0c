package handlers

import (
	"logistics-engine/internal/api/dto"
	"logistics-engine/internal/domain"
	"logistics-engine/internal/services"
	"net/http"
)

// RouteHandler exposes path finding and reachability.
type RouteHandler struct {
	Router *services.Router
}

func (h *RouteHandler) Best(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	source, err := queryID(r, "source")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	target, err := queryID(r, "target")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	path, err := h.Router.FindBestRoute(r.Context(), source, target)
	if err != nil {
		writeServiceError(w, r, "find best route", err)
		return
	}

	writeJSON(w, r, http.StatusOK, pathResponse(h.Router, source, target, path))
}

func (h *RouteHandler) Reachability(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ok, err := h.Router.CheckReachability(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "check reachability", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ReachabilityResponse{LocationID: id, Reachable: ok})
}

func pathResponse(router *services.Router, source, target int64, path *domain.Path) dto.BestRouteResponse {
	res := dto.BestRouteResponse{
		SourceID: source,
		TargetID: target,
		Legs:     []dto.RouteLegResponse{},
	}
	if path == nil {
		return res
	}

	res.Found = true
	res.TotalCost = path.TotalCost
	res.TransitDays = path.TransitDays()
	res.Capacity = router.PathCapacity(path)
	for _, leg := range path.Routes {
		res.Legs = append(res.Legs, dto.RouteLegResponse{
			RouteID:       leg.ID,
			SourceID:      leg.SourceID,
			TargetID:      leg.TargetID,
			Mode:          string(leg.Mode),
			BaseCost:      leg.Cost,
			EffectiveCost: router.CalculateCost(leg),
			TransitDays:   leg.TransitDays,
			Capacity:      leg.Capacity,
		})
	}
	return res
}
