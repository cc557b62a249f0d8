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
	"github.com/Mukhsinh/manajemenresiko-sub007/store"
	"github.com/Mukhsinh/manajemenresiko-sub007/utils"
)

var peluangFilter = listFilter{
	idParams:  map[string]string{"unitId": "workUnitId", "categoryId": "categoryId"},
	intParams: map[string]string{"year": "year"},
	strParams: map[string]string{"status": "status", "level": "assessment.level"},
}

func (h *Handler) ListPeluang(w http.ResponseWriter, r *http.Request) {
	list(h, w, r, h.store.Peluang(), peluangFilter, "-assessment.score")
}

func (h *Handler) GetPeluang(w http.ResponseWriter, r *http.Request) {
	get(h, w, r, h.store.Peluang())
}

type peluangRequest struct {
	Code        string `json:"code,omitempty"`
	WorkUnitID  string `json:"workUnitId"`
	CategoryID  string `json:"categoryId"`
	Year        int    `json:"year"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Assessment  rating `json:"assessment"`
	ActionPlan  string `json:"actionPlan,omitempty"`
	Status      string `json:"status"`
}

type peluangFields struct {
	unit, category primitive.ObjectID
	assessment     models.Assessment
}

func (req *peluangRequest) validate() (peluangFields, error) {
	var f peluangFields
	var err error
	if f.unit, err = mustRef("workUnitId", req.WorkUnitID); err != nil {
		return f, err
	}
	if f.category, err = mustRef("categoryId", req.CategoryID); err != nil {
		return f, err
	}
	if req.Year < 2000 || req.Year > 2100 {
		return f, apperr.Validation("year must be between 2000 and 2100")
	}
	if err := requireTitle("title", req.Title); err != nil {
		return f, err
	}
	if req.Status == "" {
		req.Status = models.RiskOpen
	}
	if err := oneOf("status", req.Status, riskStatuses); err != nil {
		return f, err
	}
	f.assessment, err = req.Assessment.assess()
	return f, err
}

func (h *Handler) checkPeluangRefs(ctx context.Context, orgID primitive.ObjectID, f peluangFields) error {
	if err := exists(ctx, h.store.WorkUnits(), orgID, f.unit, "workUnitId"); err != nil {
		return err
	}
	return exists(ctx, h.store.RiskCategories(), orgID, f.category, "categoryId")
}

func (h *Handler) CreatePeluang(w http.ResponseWriter, r *http.Request) {
	var req peluangRequest
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

	orgID := caller(r).OrgID
	if err := h.checkPeluangRefs(ctx, orgID, f); err != nil {
		h.fail(w, r, err)
		return
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))

	now := time.Now().UTC()
	p := models.Peluang{
		ID:             primitive.NewObjectID(),
		OrganizationID: orgID,
		Code:           code,
		WorkUnitID:     f.unit,
		CategoryID:     f.category,
		Year:           req.Year,
		Title:          req.Title,
		Description:    req.Description,
		Assessment:     f.assessment,
		ActionPlan:     req.ActionPlan,
		Status:         req.Status,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if code == "" {
		scope := store.Query{OrganizationID: orgID, Filter: bson.M{"year": req.Year}}
		err = insertCoded(ctx, h.store.Peluang(), scope, &p, "PLG", req.Year, func(c string) { p.Code = c })
	} else {
		err = h.store.Peluang().Insert(ctx, &p)
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.audit(ctx, r, "peluang", "create", p.ID, bson.M{"code": p.Code, "level": p.Assessment.Level})
	utils.RespondWithJSON(w, http.StatusCreated, p)
}

func (h *Handler) UpdatePeluang(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req peluangRequest
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

	orgID := caller(r).OrgID
	p, err := h.store.Peluang().Get(ctx, orgID, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.checkPeluangRefs(ctx, orgID, f); err != nil {
		h.fail(w, r, err)
		return
	}

	if code := strings.ToUpper(strings.TrimSpace(req.Code)); code != "" {
		p.Code = code
	}
	p.WorkUnitID, p.CategoryID = f.unit, f.category
	p.Year = req.Year
	p.Title = req.Title
	p.Description = req.Description
	p.Assessment = f.assessment
	p.ActionPlan = req.ActionPlan
	p.Status = req.Status
	p.UpdatedAt = time.Now().UTC()

	if err := h.store.Peluang().Replace(ctx, orgID, id, p); err != nil {
		h.fail(w, r, err)
		return
	}

	h.audit(ctx, r, "peluang", "update", id, bson.M{"code": p.Code, "level": p.Assessment.Level})
	utils.RespondWithJSON(w, http.StatusOK, p)
}

func (h *Handler) DeletePeluang(w http.ResponseWriter, r *http.Request) {
	remove(h, w, r, h.store.Peluang(), "peluang", nil)
}
