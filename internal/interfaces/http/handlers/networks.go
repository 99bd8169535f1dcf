package handlers

import (
	"net/http"

	"github.com/sawpanic/pairscreen/internal/domain/pairs"
)

// NetworksResponse lists the known networks and the dashboard defaults.
type NetworksResponse struct {
	Groups   []pairs.NetworkGroup `json:"groups"`
	Defaults pairs.Criteria       `json:"defaults"`
}

// Networks handles GET /api/networks
func (h *Handlers) Networks(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, NetworksResponse{
		Groups:   pairs.NetworkGroups(),
		Defaults: h.defaults,
	})
}
