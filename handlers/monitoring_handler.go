package handlers

import (
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Mukhsinh/manajemenresiko-sub007/apperr"
	"github.com/Mukhsinh/manajemenresiko-sub007/models"
	"github.com/Mukhsinh/manajemenresiko-sub007/utils"
)

var monitoringStatuses = []string{models.MonitoringOnTrack, models.MonitoringDelayed, models.MonitoringCompleted}

var monitoringFilter = listFilter{
	idParams:  map[string]string{"riskId": "riskId"},
	strParams: map[string]string{"status": "status", "level": "current.level"},
}

func (h *Handler) ListMonitoring(w http.ResponseWriter, r *http.Request) {
	list(h, w, r, h.store.Monitoring(), monitoringFilter, "-period")
}

func (h *Handler) GetMonitoring(w http.ResponseWriter, r *http.Request) {
	get(h, w, r, h.store.Monitoring())
}

type monitoringRequest struct {
	RiskID     string `json:"riskId"`
	Period     string `json:"period"`
	Progress   int    `json:"progress"`
	Current    rating `json:"current"`
	Evaluation string `json:"evaluation,omitempty"`
	Status     string `json:"status"`
}

type monitoringFields struct {
	risk    primitive.ObjectID
	period  time.Time
	current models.Assessment
}

func (req *monitoringRequest) validate() (monitoringFields, error) {
	var f monitoringFields
	var err error
	if f.risk, err = mustRef("riskId", req.RiskID); err != nil {
		return f, err
	}
	period, err := utils.ParseDate(req.Period)
	if err != nil {
		return f, apperr.Validation("invalid period, expected YYYY-MM-DD")
	}
	if period == nil {
		return f, apperr.Validation("period is required")
	}
	f.period = *period
	if req.Progress < 0 || req.Progress > 100 {
		return f, apperr.Validation("progress must be between 0 and 100")
	}
	if f.current, err = req.Current.assess(); err != nil {
		return f, err
	}
	if req.Status == "" {
		req.Status = models.MonitoringOnTrack
		if req.Progress == 100 {
			req.Status = models.MonitoringCompleted
		}
	}
	return f, oneOf("status", req.Status, monitoringStatuses)
}

func (h *Handler) CreateMonitoring(w http.ResponseWriter, r *http.Request) {
	var req monitoringRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	f, err := req.validate()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	ctx, cancel := withTimeout(r)
	defer cancel()

	who := caller(r)
	if err := exists(ctx, h.store.Risks(), who.OrgID, f.risk, "riskId"); err != nil {
		h.fail(w, r, err)
		return
	}

	now := time.Now().UTC()
	entry := models.MonitoringEvaluasi{
		ID:             primitive.NewObjectID(),
		OrganizationID: who.OrgID,
		RiskID:         f.risk,
		Period:         f.period,
		Progress:       req.Progress,
		Current:        f.current,
		Evaluation:     req.Evaluation,
		Status:         req.Status,
		EvaluatedBy:    who.UserID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := h.store.Monitoring().Insert(ctx, &entry); err != nil {
		h.fail(w, r, err)
		return
	}

	h.audit(ctx, r, "monitoring-evaluasi", "create", entry.ID, bson.M{"riskId": entry.RiskID, "progress": entry.Progress})
	utils.RespondWithJSON(w, http.StatusCreated, entry)
}

func (h *Handler) UpdateMonitoring(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req monitoringRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	f, err := req.validate()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	ctx, cancel := withTimeout(r)
	defer cancel()

	who := caller(r)
	entry, err := h.store.Monitoring().Get(ctx, who.OrgID, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := exists(ctx, h.store.Risks(), who.OrgID, f.risk, "riskId"); err != nil {
		h.fail(w, r, err)
		return
	}

	entry.RiskID = f.risk
	entry.Period = f.period
	entry.Progress = req.Progress
	entry.Current = f.current
	entry.Evaluation = req.Evaluation
	entry.Status = req.Status
	entry.EvaluatedBy = who.UserID
	entry.UpdatedAt = time.Now().UTC()

	if err := h.store.Monitoring().Replace(ctx, who.OrgID, id, entry); err != nil {
		h.fail(w, r, err)
		return
	}

	h.audit(ctx, r, "monitoring-evaluasi", "update", id, bson.M{"riskId": entry.RiskID, "progress": entry.Progress})
	utils.RespondWithJSON(w, http.StatusOK, entry)
}

func (h *Handler) DeleteMonitoring(w http.ResponseWriter, r *http.Request) {
	remove(h, w, r, h.store.Monitoring(), "monitoring-evaluasi", nil)
}
