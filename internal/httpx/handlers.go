package httpx

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/angelcm/horizon-crm/internal/apperr"
	"github.com/angelcm/horizon-crm/internal/crm"
	"github.com/angelcm/horizon-crm/internal/models"
)

const maxUpload = 32 << 20

// --- campaigns ---

func (a *api) listCampaigns(w http.ResponseWriter, r *http.Request) {
	cs, err := a.crm.Campaigns(r.Context(), userID(r))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

// importCampaign takes a multipart form with "name" and a "file" upload.
func (a *api) importCampaign(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		a.writeError(w, r, apperr.Wrap(err, apperr.CodeValidation, "expected a multipart form with name and file"))
		return
	}
	var (
		file     io.Reader
		filename string
	)
	f, hdr, err := r.FormFile("file")
	switch {
	case err == nil:
		defer f.Close()
		file, filename = f, hdr.Filename
	case !errors.Is(err, http.ErrMissingFile):
		a.writeError(w, r, apperr.Wrap(err, apperr.CodeValidation, "could not read upload"))
		return
	}

	c, err := a.crm.ImportCampaign(r.Context(), userID(r), r.FormValue("name"), filename, file)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (a *api) renameCampaign(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := decode(r, &body); err != nil {
		a.writeError(w, r, err)
		return
	}
	c, err := a.crm.RenameCampaign(r.Context(), userID(r), chi.URLParam(r, "id"), body.Name)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (a *api) deleteCampaign(w http.ResponseWriter, r *http.Request) {
	if err := a.crm.DeleteCampaign(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) campaignLeads(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	p, err := a.crm.ListCampaignLeads(r.Context(), userID(r), chi.URLParam(r, "id"), q.Get("search"), page)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// --- leads ---

func (a *api) addLead(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CampaignID string `json:"campaignId"`
		crm.LeadInput
	}
	if err := decode(r, &body); err != nil {
		a.writeError(w, r, err)
		return
	}
	l, err := a.crm.AddLead(r.Context(), userID(r), body.CampaignID, body.LeadInput)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (a *api) updateLead(w http.ResponseWriter, r *http.Request) {
	var in crm.LeadInput
	if err := decode(r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	l, err := a.crm.UpdateLead(r.Context(), userID(r), chi.URLParam(r, "id"), in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (a *api) updateLeadStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if err := decode(r, &body); err != nil {
		a.writeError(w, r, err)
		return
	}
	l, err := a.crm.UpdateLeadStatus(r.Context(), userID(r), chi.URLParam(r, "id"), body.Status)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (a *api) deleteLead(w http.ResponseWriter, r *http.Request) {
	if err := a.crm.DeleteLead(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- clients ---

func (a *api) listClients(w http.ResponseWriter, r *http.Request) {
	cs, err := a.crm.Clients(r.Context(), userID(r))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

func (a *api) addClient(w http.ResponseWriter, r *http.Request) {
	var in crm.ClientInput
	if err := decode(r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	c, err := a.crm.AddClient(r.Context(), userID(r), in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (a *api) updateClient(w http.ResponseWriter, r *http.Request) {
	var in crm.ClientInput
	if err := decode(r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	c, err := a.crm.UpdateClient(r.Context(), userID(r), chi.URLParam(r, "id"), in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (a *api) deleteClient(w http.ResponseWriter, r *http.Request) {
	if err := a.crm.DeleteClient(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) demoEvents(w http.ResponseWriter, r *http.Request) {
	evs, err := a.crm.DemoEvents(r.Context(), userID(r))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, evs)
}

// --- navigation ---

func (a *api) navigation(w http.ResponseWriter, r *http.Request) {
	nav, err := a.crm.Navigation(r.Context(), userID(r))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nav)
}

func (a *api) navigate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		View       string `json:"view"`
		LeadID     string `json:"leadId"`
		CampaignID string `json:"campaignId"`
	}
	if err := decode(r, &body); err != nil {
		a.writeError(w, r, err)
		return
	}
	var nc *models.NavContext
	if body.LeadID != "" || body.CampaignID != "" {
		nc = &models.NavContext{LeadID: body.LeadID, CampaignID: body.CampaignID}
	}
	nav, err := a.crm.Navigate(r.Context(), userID(r), body.View, nc)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nav)
}

func (a *api) consumeNavigation(w http.ResponseWriter, r *http.Request) {
	c, ok, err := a.crm.ConsumeNavigation(r.Context(), userID(r))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	resp := map[string]any{"context": nil}
	if ok {
		resp["context"] = c
	}
	writeJSON(w, http.StatusOK, resp)
}
