package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Mukhsinh/manajemenresiko-sub007/apperr"
	"github.com/Mukhsinh/manajemenresiko-sub007/models"
	"github.com/Mukhsinh/manajemenresiko-sub007/scoring"
	"github.com/Mukhsinh/manajemenresiko-sub007/store"
	"github.com/Mukhsinh/manajemenresiko-sub007/utils"
)

var planStatuses = []string{models.PlanDraft, models.PlanActive, models.PlanFinished}

var rencanaFilter = listFilter{strParams: map[string]string{"status": "status"}}

func (h *Handler) ListRencanaStrategis(w http.ResponseWriter, r *http.Request) {
	list(h, w, r, h.store.RencanaStrategis(), rencanaFilter, "-startYear")
}

func (h *Handler) GetRencanaStrategis(w http.ResponseWriter, r *http.Request) {
	get(h, w, r, h.store.RencanaStrategis())
}

type rencanaRequest struct {
	Code      string `json:"code,omitempty"`
	Name      string `json:"name"`
	StartYear int    `json:"startYear"`
	EndYear   int    `json:"endYear"`
	Vision    string `json:"vision,omitempty"`
	Mission   string `json:"mission,omitempty"`
	Status    string `json:"status"`
}

func (req *rencanaRequest) validate() error {
	if err := requireTitle("name", req.Name); err != nil {
		return err
	}
	if req.StartYear < 2000 || req.StartYear > 2100 {
		return apperr.Validation("startYear must be between 2000 and 2100")
	}
	if req.EndYear < req.StartYear {
		return apperr.Validation("endYear must not be before startYear")
	}
	if req.Status == "" {
		req.Status = models.PlanDraft
	}
	return oneOf("status", req.Status, planStatuses)
}

func (h *Handler) CreateRencanaStrategis(w http.ResponseWriter, r *http.Request) {
	var req rencanaRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		h.fail(w, r, err)
		return
	}

	ctx, cancel := withTimeout(r)
	defer cancel()

	who := caller(r)
	code := strings.ToUpper(strings.TrimSpace(req.Code))

	now := time.Now().UTC()
	plan := models.RencanaStrategis{
		ID:             primitive.NewObjectID(),
		OrganizationID: who.OrgID,
		Code:           code,
		Name:           req.Name,
		StartYear:      req.StartYear,
		EndYear:        req.EndYear,
		Vision:         req.Vision,
		Mission:        req.Mission,
		Status:         req.Status,
		CreatedBy:      who.UserID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	var err error
	if code == "" {
		scope := store.Query{OrganizationID: who.OrgID, Filter: bson.M{"startYear": req.StartYear}}
		err = insertCoded(ctx, h.store.RencanaStrategis(), scope, &plan, "RS", req.StartYear, func(c string) { plan.Code = c })
	} else {
		err = h.store.RencanaStrategis().Insert(ctx, &plan)
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.audit(ctx, r, "rencana-strategis", "create", plan.ID, bson.M{"code": plan.Code, "name": plan.Name})
	utils.RespondWithJSON(w, http.StatusCreated, plan)
}

func (h *Handler) UpdateRencanaStrategis(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req rencanaRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		h.fail(w, r, err)
		return
	}

	ctx, cancel := withTimeout(r)
	defer cancel()

	orgID := caller(r).OrgID
	plan, err := h.store.RencanaStrategis().Get(ctx, orgID, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if code := strings.ToUpper(strings.TrimSpace(req.Code)); code != "" {
		plan.Code = code
	}
	plan.Name = req.Name
	plan.StartYear, plan.EndYear = req.StartYear, req.EndYear
	plan.Vision, plan.Mission = req.Vision, req.Mission
	plan.Status = req.Status
	plan.UpdatedAt = time.Now().UTC()

	if err := h.store.RencanaStrategis().Replace(ctx, orgID, id, plan); err != nil {
		h.fail(w, r, err)
		return
	}

	h.audit(ctx, r, "rencana-strategis", "update", id, bson.M{"code": plan.Code, "status": plan.Status})
	utils.RespondWithJSON(w, http.StatusOK, plan)
}

func (h *Handler) DeleteRencanaStrategis(w http.ResponseWriter, r *http.Request) {
	remove(h, w, r, h.store.RencanaStrategis(), "rencana-strategis", func(ctx context.Context, orgID, id primitive.ObjectID) error {
		if err := inUse(ctx, h.store.SasaranStrategi(), orgID, "rencanaStrategisId", id, "sasaran strategi"); err != nil {
			return err
		}
		if err := inUse(ctx, h.store.Tows(), orgID, "rencanaStrategisId", id, "tows"); err != nil {
			return err
		}
		return inUse(ctx, h.store.Swot(), orgID, "rencanaStrategisId", id, "swot")
	})
}

// PerspectiveWeight reports whether one perspective's sasaran weights total 100.
type PerspectiveWeight struct {
	Perspective string `json:"perspective"`
	Sasaran     int    `json:"sasaran"`
	WeightSum   int    `json:"weightSum"`
	Complete    bool   `json:"complete"`
}

type completenessResponse struct {
	RencanaStrategisID primitive.ObjectID  `json:"rencanaStrategisId"`
	Perspectives       []PerspectiveWeight `json:"perspectives"`
	TowsByType         map[string]int      `json:"towsByType"`
	Complete           bool                `json:"complete"`
}

// RencanaCompleteness checks that every perspective carries a full weight of
// sasaran strategi and that each TOWS quadrant has at least one strategy.
func (h *Handler) RencanaCompleteness(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	ctx, cancel := withTimeout(r)
	defer cancel()

	orgID := caller(r).OrgID
	if _, err := h.store.RencanaStrategis().Get(ctx, orgID, id); err != nil {
		h.fail(w, r, err)
		return
	}

	q := store.Query{OrganizationID: orgID, Filter: bson.M{"rencanaStrategisId": id}}
	sasaran, err := h.store.SasaranStrategi().List(ctx, q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	tows, err := h.store.Tows().List(ctx, q)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	resp := completenessResponse{RencanaStrategisID: id, TowsByType: map[string]int{}, Complete: true}
	for _, p := range models.Perspectives {
		pw := PerspectiveWeight{Perspective: p}
		for _, s := range sasaran {
			if s.Perspective == p {
				pw.Sasaran++
				pw.WeightSum += s.Weight
			}
		}
		pw.Complete = pw.WeightSum == scoring.WeightTotal
		resp.Complete = resp.Complete && pw.Complete
		resp.Perspectives = append(resp.Perspectives, pw)
	}
	for _, t := range models.TowsTypes {
		resp.TowsByType[t] = 0
	}
	for _, t := range tows {
		resp.TowsByType[t.Type]++
	}
	for _, n := range resp.TowsByType {
		if n == 0 {
			resp.Complete = false
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, resp)
}
