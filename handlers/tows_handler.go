package handlers

import (
	"context"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Mukhsinh/manajemenresiko-sub007/apperr"
	"github.com/Mukhsinh/manajemenresiko-sub007/models"
	"github.com/Mukhsinh/manajemenresiko-sub007/store"
	"github.com/Mukhsinh/manajemenresiko-sub007/utils"
)

var towsFilter = listFilter{
	idParams:  map[string]string{"rencanaId": "rencanaStrategisId"},
	strParams: map[string]string{"type": "type"},
}

func (h *Handler) ListTows(w http.ResponseWriter, r *http.Request) {
	list(h, w, r, h.store.Tows(), towsFilter, "type")
}

func (h *Handler) GetTows(w http.ResponseWriter, r *http.Request) {
	get(h, w, r, h.store.Tows())
}

type towsRequest struct {
	RencanaStrategisID string `json:"rencanaStrategisId"`
	Type               string `json:"type"`
	Statement          string `json:"statement"`
	Priority           int    `json:"priority,omitempty"`
}

func (req towsRequest) validate() (primitive.ObjectID, error) {
	plan, err := mustRef("rencanaStrategisId", req.RencanaStrategisID)
	if err != nil {
		return plan, err
	}
	if err := oneOf("type", req.Type, models.TowsTypes); err != nil {
		return plan, err
	}
	if err := requireText("statement", req.Statement); err != nil {
		return plan, err
	}
	if req.Priority < 0 {
		return plan, apperr.Validation("priority must not be negative")
	}
	return plan, nil
}

func (h *Handler) CreateTows(w http.ResponseWriter, r *http.Request) {
	var req towsRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	plan, err := req.validate()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	ctx, cancel := withTimeout(r)
	defer cancel()

	orgID := caller(r).OrgID
	if err := exists(ctx, h.store.RencanaStrategis(), orgID, plan, "rencanaStrategisId"); err != nil {
		h.fail(w, r, err)
		return
	}

	now := time.Now().UTC()
	strategy := models.TowsStrategy{
		ID:                 primitive.NewObjectID(),
		OrganizationID:     orgID,
		RencanaStrategisID: plan,
		Type:               req.Type,
		Statement:          req.Statement,
		Priority:           req.Priority,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := h.store.Tows().Insert(ctx, &strategy); err != nil {
		h.fail(w, r, err)
		return
	}

	h.audit(ctx, r, "tows", "create", strategy.ID, bson.M{"type": strategy.Type})
	utils.RespondWithJSON(w, http.StatusCreated, strategy)
}

func (h *Handler) UpdateTows(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req towsRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	plan, err := req.validate()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	ctx, cancel := withTimeout(r)
	defer cancel()

	orgID := caller(r).OrgID
	strategy, err := h.store.Tows().Get(ctx, orgID, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := exists(ctx, h.store.RencanaStrategis(), orgID, plan, "rencanaStrategisId"); err != nil {
		h.fail(w, r, err)
		return
	}

	strategy.RencanaStrategisID = plan
	strategy.Type = req.Type
	strategy.Statement = req.Statement
	strategy.Priority = req.Priority
	strategy.UpdatedAt = time.Now().UTC()

	if err := h.store.Tows().Replace(ctx, orgID, id, strategy); err != nil {
		h.fail(w, r, err)
		return
	}

	h.audit(ctx, r, "tows", "update", id, bson.M{"type": strategy.Type})
	utils.RespondWithJSON(w, http.StatusOK, strategy)
}

func (h *Handler) DeleteTows(w http.ResponseWriter, r *http.Request) {
	remove(h, w, r, h.store.Tows(), "tows", func(ctx context.Context, orgID, id primitive.ObjectID) error {
		return inUse(ctx, h.store.SasaranStrategi(), orgID, "towsStrategyId", id, "sasaran strategi")
	})
}

// TowsMatrix groups a plan's strategies by quadrant, highest priority first.
func (h *Handler) TowsMatrix(w http.ResponseWriter, r *http.Request) {
	plan, err := mustRef("rencanaId", r.URL.Query().Get("rencanaId"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	ctx, cancel := withTimeout(r)
	defer cancel()

	orgID := caller(r).OrgID
	if _, err := h.store.RencanaStrategis().Get(ctx, orgID, plan); err != nil {
		h.fail(w, r, err)
		return
	}
	strategies, err := h.store.Tows().List(ctx, store.Query{
		OrganizationID: orgID,
		Filter:         bson.M{"rencanaStrategisId": plan},
		Sort:           "-priority",
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	matrix := make(map[string][]models.TowsStrategy, len(models.TowsTypes))
	for _, t := range models.TowsTypes {
		matrix[t] = []models.TowsStrategy{}
	}
	for _, s := range strategies {
		matrix[s.Type] = append(matrix[s.Type], s)
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"rencanaStrategisId": plan,
		"matrix":             matrix,
	})
}
