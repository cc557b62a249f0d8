package handlers

import (
	"net/http"
	"strconv"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Mukhsinh/manajemenresiko-sub007/apperr"
	"github.com/Mukhsinh/manajemenresiko-sub007/reports"
	"github.com/Mukhsinh/manajemenresiko-sub007/utils"
)

// reportFilter reads the optional year and unitId query parameters.
func reportFilter(r *http.Request) (reports.Filter, error) {
	var f reports.Filter
	q := r.URL.Query()
	if s := q.Get("year"); s != "" {
		year, err := strconv.Atoi(s)
		if err != nil {
			return f, apperr.Validation("year must be an integer")
		}
		f.Year = year
	}
	if s := q.Get("unitId"); s != "" {
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			return f, apperr.Validation("invalid unitId")
		}
		f.WorkUnitID = id
	}
	return f, nil
}

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	f, err := reportFilter(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := withTimeout(r)
	defer cancel()

	d, err := h.reports.Dashboard(ctx, caller(r).OrgID, f)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, d)
}

// GetRiskProfile returns the inherent and residual heat maps side by side.
func (h *Handler) GetRiskProfile(w http.ResponseWriter, r *http.Request) {
	f, err := reportFilter(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := withTimeout(r)
	defer cancel()

	p, err := h.reports.RiskProfile(ctx, caller(r).OrgID, f)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, p)
}
