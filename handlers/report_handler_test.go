package handlers_test

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Mukhsinh/manajemenresiko-sub007/models"
	"github.com/Mukhsinh/manajemenresiko-sub007/reports"
	"github.com/Mukhsinh/manajemenresiko-sub007/scoring"
)

func TestDashboardAndRiskProfile(t *testing.T) {
	e := newEnv(t)
	unitID, catID := e.masters()
	high := e.createRisk(unitID, catID, 5, 4)
	e.createRisk(unitID, catID, 2, 2)
	e.mustDo(http.MethodPut, "/api/risks/"+high.ID.Hex()+"/residual", models.RoleManager,
		map[string]interface{}{"probability": 2, "impact": 3, "status": models.RiskMitigated}, http.StatusOK, nil)

	var dash struct {
		TotalRisks      int                `json:"totalRisks"`
		RisksByStatus   map[string]int     `json:"risksByStatus"`
		InherentByLevel map[string]int     `json:"inherentByLevel"`
		ResidualByLevel map[string]int     `json:"residualByLevel"`
		WorkUnits       int64              `json:"workUnits"`
		TopRisks        []models.RiskInput `json:"topRisks"`
	}
	e.mustDo(http.MethodGet, "/api/dashboard?year=2025", models.RoleViewer, nil, http.StatusOK, &dash)
	assert.Equal(t, 2, dash.TotalRisks)
	assert.Equal(t, 1, dash.RisksByStatus[models.RiskMitigated])
	assert.Equal(t, 1, dash.InherentByLevel[scoring.LevelExtreme])
	assert.Equal(t, 1, dash.InherentByLevel[scoring.LevelLow])
	assert.EqualValues(t, 1, dash.WorkUnits)
	require.NotEmpty(t, dash.TopRisks)
	assert.Equal(t, high.ID, dash.TopRisks[0].ID)

	var profile struct {
		Inherent scoring.HeatMap `json:"inherent"`
		Residual scoring.HeatMap `json:"residual"`
		ByUnit   []struct {
			Code  string `json:"code"`
			Risks int    `json:"risks"`
		} `json:"byUnit"`
		Total int `json:"total"`
	}
	e.mustDo(http.MethodGet, "/api/risk-profile?unitId="+unitID, models.RoleViewer, nil, http.StatusOK, &profile)
	assert.Equal(t, 2, profile.Total)
	assert.Equal(t, 1, profile.Inherent.Cells[4][3])
	assert.Equal(t, 1, profile.Residual.Cells[1][2])
	require.Len(t, profile.ByUnit, 1)
	assert.Equal(t, "IGD", profile.ByUnit[0].Code)

	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodGet, "/api/dashboard?year=dua", models.RoleViewer, nil).Code)
}

func TestReports(t *testing.T) {
	e := newEnv(t)
	unitID, catID := e.masters()
	e.createRisk(unitID, catID, 4, 5)

	var types struct {
		Types []string `json:"types"`
	}
	e.mustDo(http.MethodGet, "/api/reports", models.RoleViewer, nil, http.StatusOK, &types)
	assert.Equal(t, reports.Types, types.Types)

	var rep reports.Report
	e.mustDo(http.MethodGet, "/api/reports/risk-register?year=2025", models.RoleViewer, nil, http.StatusOK, &rep)
	assert.Equal(t, reports.RiskRegister, rep.Type)
	require.Len(t, rep.Rows, 1)

	rec := e.do(http.MethodGet, "/api/reports/risk-register?format=csv", models.RoleViewer, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, reports.ContentTypeCSV, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "risk-register-")
	records, err := csv.NewReader(bytes.NewReader(rec.Body.Bytes())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, rep.Columns, records[0])
	assert.Equal(t, "20", records[1][10])

	rec = e.do(http.MethodGet, "/api/reports/risk-register?format=xlsx", models.RoleViewer, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, reports.ContentTypeXLSX, rec.Header().Get("Content-Type"))
	book, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer book.Close()
	sheet := book.GetSheetList()[0]
	score, err := book.GetCellValue(sheet, "K2")
	require.NoError(t, err)
	assert.Equal(t, "20", score)

	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/api/reports/neraca", models.RoleViewer, nil).Code)
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodGet, "/api/reports/swot?format=pdf", models.RoleViewer, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/api/reports/swot", "", nil).Code)
}
