package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Mukhsinh/manajemenresiko-sub007/models"
	"github.com/Mukhsinh/manajemenresiko-sub007/utils"
)

// ---- work units ----

var workUnitFilter = listFilter{strParams: map[string]string{"type": "type"}}

func (h *Handler) ListWorkUnits(w http.ResponseWriter, r *http.Request) {
	list(h, w, r, h.store.WorkUnits(), workUnitFilter, "code")
}

func (h *Handler) GetWorkUnit(w http.ResponseWriter, r *http.Request) {
	get(h, w, r, h.store.WorkUnits())
}

type workUnitRequest struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Type     string `json:"type,omitempty"`
	HeadName string `json:"headName,omitempty"`
}

func (req *workUnitRequest) validate() error {
	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	if err := requireText("code", req.Code); err != nil {
		return err
	}
	return requireTitle("name", req.Name)
}

func (h *Handler) CreateWorkUnit(w http.ResponseWriter, r *http.Request) {
	var req workUnitRequest
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

	now := time.Now().UTC()
	unit := models.WorkUnit{
		ID:             primitive.NewObjectID(),
		OrganizationID: caller(r).OrgID,
		Code:           req.Code,
		Name:           req.Name,
		Type:           req.Type,
		HeadName:       req.HeadName,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := h.store.WorkUnits().Insert(ctx, &unit); err != nil {
		h.fail(w, r, err)
		return
	}

	h.audit(ctx, r, "work-unit", "create", unit.ID, bson.M{"code": unit.Code, "name": unit.Name})
	utils.RespondWithJSON(w, http.StatusCreated, unit)
}

func (h *Handler) UpdateWorkUnit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req workUnitRequest
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
	unit, err := h.store.WorkUnits().Get(ctx, orgID, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	unit.Code, unit.Name, unit.Type, unit.HeadName = req.Code, req.Name, req.Type, req.HeadName
	unit.UpdatedAt = time.Now().UTC()

	if err := h.store.WorkUnits().Replace(ctx, orgID, id, unit); err != nil {
		h.fail(w, r, err)
		return
	}

	h.audit(ctx, r, "work-unit", "update", id, bson.M{"code": unit.Code, "name": unit.Name})
	utils.RespondWithJSON(w, http.StatusOK, unit)
}

func (h *Handler) DeleteWorkUnit(w http.ResponseWriter, r *http.Request) {
	remove(h, w, r, h.store.WorkUnits(), "work-unit", h.workUnitUnused)
}

func (h *Handler) workUnitUnused(ctx context.Context, orgID, id primitive.ObjectID) error {
	if err := inUse(ctx, h.store.Risks(), orgID, "workUnitId", id, "risk"); err != nil {
		return err
	}
	if err := inUse(ctx, h.store.Peluang(), orgID, "workUnitId", id, "peluang"); err != nil {
		return err
	}
	if err := inUse(ctx, h.store.Swot(), orgID, "workUnitId", id, "swot"); err != nil {
		return err
	}
	return inUse(ctx, h.store.Users(), orgID, "workUnitId", id, "user")
}

// ---- risk categories ----

func (h *Handler) ListRiskCategories(w http.ResponseWriter, r *http.Request) {
	list(h, w, r, h.store.RiskCategories(), listFilter{}, "code")
}

func (h *Handler) GetRiskCategory(w http.ResponseWriter, r *http.Request) {
	get(h, w, r, h.store.RiskCategories())
}

type riskCategoryRequest struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (req *riskCategoryRequest) validate() error {
	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	if err := requireText("code", req.Code); err != nil {
		return err
	}
	return requireTitle("name", req.Name)
}

func (h *Handler) CreateRiskCategory(w http.ResponseWriter, r *http.Request) {
	var req riskCategoryRequest
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

	now := time.Now().UTC()
	cat := models.RiskCategory{
		ID:             primitive.NewObjectID(),
		OrganizationID: caller(r).OrgID,
		Code:           req.Code,
		Name:           req.Name,
		Description:    req.Description,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := h.store.RiskCategories().Insert(ctx, &cat); err != nil {
		h.fail(w, r, err)
		return
	}

	h.audit(ctx, r, "risk-category", "create", cat.ID, bson.M{"code": cat.Code, "name": cat.Name})
	utils.RespondWithJSON(w, http.StatusCreated, cat)
}

func (h *Handler) UpdateRiskCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req riskCategoryRequest
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
	cat, err := h.store.RiskCategories().Get(ctx, orgID, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	cat.Code, cat.Name, cat.Description = req.Code, req.Name, req.Description
	cat.UpdatedAt = time.Now().UTC()

	if err := h.store.RiskCategories().Replace(ctx, orgID, id, cat); err != nil {
		h.fail(w, r, err)
		return
	}

	h.audit(ctx, r, "risk-category", "update", id, bson.M{"code": cat.Code, "name": cat.Name})
	utils.RespondWithJSON(w, http.StatusOK, cat)
}

func (h *Handler) DeleteRiskCategory(w http.ResponseWriter, r *http.Request) {
	remove(h, w, r, h.store.RiskCategories(), "risk-category", func(ctx context.Context, orgID, id primitive.ObjectID) error {
		if err := inUse(ctx, h.store.Risks(), orgID, "categoryId", id, "risk"); err != nil {
			return err
		}
		return inUse(ctx, h.store.Peluang(), orgID, "categoryId", id, "peluang")
	})
}
