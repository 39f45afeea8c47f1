package httpx

import (
	"context"
	"net/http"
	"net/url"

	"github.com/angelcm/horizon-crm/internal/models"
)

// dashQuery loads the user's snapshot and runs one dashboard view over it.
func dashQuery[T any](a *api, q func(context.Context, models.Snapshot, url.Values) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := a.crm.Snapshot(r.Context(), userID(r))
		if err != nil {
			a.writeError(w, r, err)
			return
		}
		out, err := q(r.Context(), snap, r.URL.Query())
		if err != nil {
			a.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func (a *api) dashStats(w http.ResponseWriter, r *http.Request) {
	dashQuery(a, a.dash.Stats)(w, r)
}

func (a *api) dashChart(w http.ResponseWriter, r *http.Request) {
	dashQuery(a, a.dash.Chart)(w, r)
}

func (a *api) dashCalendar(w http.ResponseWriter, r *http.Request) {
	dashQuery(a, a.dash.Calendar)(w, r)
}

func (a *api) dashActivity(w http.ResponseWriter, r *http.Request) {
	dashQuery(a, a.dash.Activity)(w, r)
}

func (a *api) dashSeries(w http.ResponseWriter, r *http.Request) {
	dashQuery(a, a.dash.QuerySeries)(w, r)
}
