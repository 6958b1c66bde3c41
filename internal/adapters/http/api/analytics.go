package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/okian/attrition/internal/domain/snapshot"
)

// AnalyticsHandler serves metric bundles.
type AnalyticsHandler struct {
	deps AnalyticsDependencies
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(deps AnalyticsDependencies) *AnalyticsHandler {
	return &AnalyticsHandler{deps: deps}
}

// HandleGetAnalytics handles GET /analytics requests. The filter is either
// ?department=NAME or ?dimension=COLUMN&value=V; neither means no filter.
func (h *AnalyticsHandler) HandleGetAnalytics(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_analytics"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	filter, err := h.parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Refresh(r.Context(), filter))
}

func (h *AnalyticsHandler) parseFilter(r *http.Request) (snapshot.Filter, error) {
	q := r.URL.Query()
	department := strings.TrimSpace(q.Get("department"))
	dimension := strings.TrimSpace(q.Get("dimension"))
	_, hasValue := q["value"]

	switch {
	case department != "" && dimension != "":
		return snapshot.NoFilter, errors.New("use either department or dimension, not both")
	case department != "":
		return h.deps.DepartmentFilter(department), nil
	case dimension != "" && !hasValue:
		return snapshot.NoFilter, errors.New("dimension requires value")
	case dimension == "" && hasValue:
		return snapshot.NoFilter, errors.New("value requires dimension")
	case dimension != "":
		return snapshot.Eq(dimension, q.Get("value")), nil
	default:
		return snapshot.NoFilter, nil
	}
}
