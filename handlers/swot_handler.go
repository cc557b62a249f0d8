package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Mukhsinh/manajemenresiko-sub007/apperr"
	"github.com/Mukhsinh/manajemenresiko-sub007/models"
	"github.com/Mukhsinh/manajemenresiko-sub007/scoring"
	"github.com/Mukhsinh/manajemenresiko-sub007/store"
	"github.com/Mukhsinh/manajemenresiko-sub007/utils"
)

var swotFilter = listFilter{
	idParams:  map[string]string{"unitId": "workUnitId", "rencanaId": "rencanaStrategisId"},
	intParams: map[string]string{"year": "year"},
	strParams: map[string]string{"category": "category", "perspective": "perspective"},
}

func (h *Handler) ListSwot(w http.ResponseWriter, r *http.Request) {
	list(h, w, r, h.store.Swot(), swotFilter, "category")
}

func (h *Handler) GetSwot(w http.ResponseWriter, r *http.Request) {
	get(h, w, r, h.store.Swot())
}

type swotRequest struct {
	RencanaStrategisID string `json:"rencanaStrategisId,omitempty"`
	WorkUnitID         string `json:"workUnitId"`
	Year               int    `json:"year"`
	Category           string `json:"category"`
	Perspective        string `json:"perspective,omitempty"`
	Description        string `json:"description"`
	Weight             int    `json:"weight"`
	Rank               int    `json:"rank"`
}

type swotRefs struct {
	plan *primitive.ObjectID
	unit primitive.ObjectID
}

func (req swotRequest) validate() (swotRefs, error) {
	var refs swotRefs
	var err error
	if refs.unit, err = mustRef("workUnitId", req.WorkUnitID); err != nil {
		return refs, err
	}
	if refs.plan, err = parseRef("rencanaStrategisId", req.RencanaStrategisID, false); err != nil {
		return refs, err
	}
	if req.Year < 2000 || req.Year > 2100 {
		return refs, apperr.Validation("year must be between 2000 and 2100")
	}
	if err := oneOf("category", req.Category, models.SwotCategories); err != nil {
		return refs, err
	}
	if req.Perspective != "" {
		if err := oneOf("perspective", req.Perspective, models.Perspectives); err != nil {
			return refs, err
		}
	}
	if err := requireText("description", req.Description); err != nil {
		return refs, err
	}
	if err := scoring.CheckScale("rank", req.Rank); err != nil {
		return refs, err
	}
	return refs, nil
}

// swotWeightUsed sums the weights already spent in the item's (unit, year, category), skipping self.
func (h *Handler) swotWeightUsed(ctx context.Context, orgID, unit primitive.ObjectID, year int, category string, self primitive.ObjectID) (int, error) {
	items, err := h.store.Swot().List(ctx, store.Query{
		OrganizationID: orgID,
		Filter:         bson.M{"workUnitId": unit, "year": year, "category": category},
	})
	if err != nil {
		return 0, err
	}
	sum := 0
	for _, it := range items {
		if it.ID != self {
			sum += it.Weight
		}
	}
	return sum, nil
}

func (h *Handler) checkSwotRefs(ctx context.Context, orgID primitive.ObjectID, refs swotRefs) error {
	if err := exists(ctx, h.store.WorkUnits(), orgID, refs.unit, "workUnitId"); err != nil {
		return err
	}
	if refs.plan != nil {
		return exists(ctx, h.store.RencanaStrategis(), orgID, *refs.plan, "rencanaStrategisId")
	}
	return nil
}

func (h *Handler) CreateSwot(w http.ResponseWriter, r *http.Request) {
	var req swotRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	refs, err := req.validate()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	ctx, cancel := withTimeout(r)
	defer cancel()

	orgID := caller(r).OrgID
	if err := h.checkSwotRefs(ctx, orgID, refs); err != nil {
		h.fail(w, r, err)
		return
	}
	used, err := h.swotWeightUsed(ctx, orgID, refs.unit, req.Year, req.Category, primitive.NilObjectID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := scoring.CheckWeightBudget(req.Category+" "+strconv.Itoa(req.Year), used, req.Weight); err != nil {
		h.fail(w, r, err)
		return
	}

	now := time.Now().UTC()
	item := models.SwotItem{
		ID:                 primitive.NewObjectID(),
		OrganizationID:     orgID,
		RencanaStrategisID: refs.plan,
		WorkUnitID:         refs.unit,
		Year:               req.Year,
		Category:           req.Category,
		Perspective:        req.Perspective,
		Description:        req.Description,
		Weight:             req.Weight,
		Rank:               req.Rank,
		Score:              req.Weight * req.Rank,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := h.store.Swot().Insert(ctx, &item); err != nil {
		h.fail(w, r, err)
		return
	}

	h.audit(ctx, r, "swot", "create", item.ID, bson.M{"category": item.Category, "year": item.Year, "score": item.Score})
	utils.RespondWithJSON(w, http.StatusCreated, item)
}

func (h *Handler) UpdateSwot(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req swotRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	refs, err := req.validate()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	ctx, cancel := withTimeout(r)
	defer cancel()

	orgID := caller(r).OrgID
	item, err := h.store.Swot().Get(ctx, orgID, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.checkSwotRefs(ctx, orgID, refs); err != nil {
		h.fail(w, r, err)
		return
	}
	used, err := h.swotWeightUsed(ctx, orgID, refs.unit, req.Year, req.Category, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := scoring.CheckWeightBudget(req.Category+" "+strconv.Itoa(req.Year), used, req.Weight); err != nil {
		h.fail(w, r, err)
		return
	}

	item.RencanaStrategisID = refs.plan
	item.WorkUnitID = refs.unit
	item.Year = req.Year
	item.Category = req.Category
	item.Perspective = req.Perspective
	item.Description = req.Description
	item.Weight, item.Rank = req.Weight, req.Rank
	item.Score = req.Weight * req.Rank
	item.UpdatedAt = time.Now().UTC()

	if err := h.store.Swot().Replace(ctx, orgID, id, item); err != nil {
		h.fail(w, r, err)
		return
	}

	h.audit(ctx, r, "swot", "update", id, bson.M{"category": item.Category, "year": item.Year, "score": item.Score})
	utils.RespondWithJSON(w, http.StatusOK, item)
}

func (h *Handler) DeleteSwot(w http.ResponseWriter, r *http.Request) {
	remove(h, w, r, h.store.Swot(), "swot", nil)
}

type swotSummaryResponse struct {
	WorkUnitID primitive.ObjectID `json:"workUnitId"`
	Year       int                `json:"year"`
	scoring.SwotSummary
}

// SwotSummary totals one unit's SWOT factors for a year and places it on the diagram.
func (h *Handler) SwotSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	unit, err := mustRef("unitId", q.Get("unitId"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	year, err := strconv.Atoi(q.Get("year"))
	if err != nil {
		h.fail(w, r, apperr.Validation("year must be an integer"))
		return
	}

	ctx, cancel := withTimeout(r)
	defer cancel()

	items, err := h.store.Swot().List(ctx, store.Query{
		OrganizationID: caller(r).OrgID,
		Filter:         bson.M{"workUnitId": unit, "year": year},
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, swotSummaryResponse{
		WorkUnitID:  unit,
		Year:        year,
		SwotSummary: scoring.SummarizeSwot(items),
	})
}
