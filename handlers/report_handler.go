package handlers

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/m-mizutani/goerr/v2"

	"github.com/Mukhsinh/manajemenresiko-sub007/reports"
	"github.com/Mukhsinh/manajemenresiko-sub007/utils"
)

func (h *Handler) ListReportTypes(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"types": reports.Types})
}

// GetReport renders /reports/{type} as json (default), csv or xlsx.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	if err := oneOf("format", format, []string{"json", "csv", "xlsx"}); err != nil {
		h.fail(w, r, err)
		return
	}
	f, err := reportFilter(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	ctx, cancel := withTimeout(r)
	defer cancel()

	rep, err := h.reports.Build(ctx, caller(r).OrgID, mux.Vars(r)["type"], f)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var (
		buf         bytes.Buffer
		contentType string
	)
	switch format {
	case "json":
		utils.RespondWithJSON(w, http.StatusOK, rep)
		return
	case "csv":
		contentType = reports.ContentTypeCSV
		err = reports.WriteCSV(&buf, rep)
	case "xlsx":
		contentType = reports.ContentTypeXLSX
		err = reports.WriteXLSX(&buf, rep)
	}
	if err != nil {
		h.fail(w, r, goerr.Wrap(err, "render report", goerr.V("format", format), goerr.V("type", rep.Type)))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+rep.FileName(format)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
