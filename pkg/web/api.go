package web

import (
	"encoding/json"
	"net/http"

	"github.com/dbehnke/p25-cc/pkg/database"
	"github.com/dbehnke/p25-cc/pkg/logger"
	"github.com/dbehnke/p25-cc/pkg/p25/trunk"
)

// API handles REST API endpoints backed by the running trunk engine
// and the activity-log database.
type API struct {
	logger *logger.Logger
	engine *trunk.Engine
	grants *database.GrantEventRepository
}

// NewAPI creates a new API instance. engine and grants may be nil,
// in which case the corresponding handlers report an empty result.
func NewAPI(log *logger.Logger, engine *trunk.Engine, grants *database.GrantEventRepository) *API {
	return &API{
		logger: log,
		engine: engine,
		grants: grants,
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

// HandleStatus handles the /api/status endpoint
func (a *API) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if a.engine == nil {
		writeJSON(w, map[string]interface{}{"status": "starting", "service": "p25-cc"})
		return
	}

	writeJSON(w, map[string]interface{}{
		"status":  "running",
		"service": "p25-cc",
		"site":    a.engine.Status(),
	})
}

// HandleGrants handles the /api/grants endpoint, returning currently
// active voice channel grants.
func (a *API) HandleGrants(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if a.engine == nil {
		writeJSON(w, []interface{}{})
		return
	}

	writeJSON(w, a.engine.Status().Grants)
}

// HandleRegistrations handles the /api/registrations endpoint.
func (a *API) HandleRegistrations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if a.engine == nil {
		writeJSON(w, map[string]interface{}{"count": 0})
		return
	}

	status := a.engine.Status()
	writeJSON(w, map[string]interface{}{
		"count":         status.UnitRegCount,
		"affiliations":  status.AffCount,
		"free_channels": status.FreeChannels,
	})
}

// HandleActivity handles the /api/activity endpoint, returning the
// most recent grant events from the database.
func (a *API) HandleActivity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if a.grants == nil {
		writeJSON(w, []interface{}{})
		return
	}

	events, err := a.grants.GetRecent(50)
	if err != nil {
		a.logger.Warn("Failed to load recent activity", logger.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, events)
}
