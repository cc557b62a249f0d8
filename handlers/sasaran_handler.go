package handlers

import (
	"context"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Mukhsinh/manajemenresiko-sub007/apperr"
	"github.com/Mukhsinh/manajemenresiko-sub007/models"
	"github.com/Mukhsinh/manajemenresiko-sub007/scoring"
	"github.com/Mukhsinh/manajemenresiko-sub007/store"
	"github.com/Mukhsinh/manajemenresiko-sub007/utils"
)

var sasaranFilter = listFilter{
	idParams:  map[string]string{"rencanaId": "rencanaStrategisId", "towsId": "towsStrategyId"},
	strParams: map[string]string{"perspective": "perspective"},
}

func (h *Handler) ListSasaran(w http.ResponseWriter, r *http.Request) {
	list(h, w, r, h.store.SasaranStrategi(), sasaranFilter, "perspective")
}

func (h *Handler) GetSasaran(w http.ResponseWriter, r *http.Request) {
	get(h, w, r, h.store.SasaranStrategi())
}

type sasaranRequest struct {
	RencanaStrategisID string `json:"rencanaStrategisId"`
	TowsStrategyID     string `json:"towsStrategyId,omitempty"`
	Perspective        string `json:"perspective"`
	Statement          string `json:"statement"`
	Weight             int    `json:"weight"`
}

type sasaranRefs struct {
	plan primitive.ObjectID
	tows *primitive.ObjectID
}

func (req sasaranRequest) validate() (sasaranRefs, error) {
	var refs sasaranRefs
	var err error
	if refs.plan, err = mustRef("rencanaStrategisId", req.RencanaStrategisID); err != nil {
		return refs, err
	}
	if refs.tows, err = parseRef("towsStrategyId", req.TowsStrategyID, false); err != nil {
		return refs, err
	}
	if err := oneOf("perspective", req.Perspective, models.Perspectives); err != nil {
		return refs, err
	}
	return refs, requireText("statement", req.Statement)
}

// checkSasaranRefs verifies the plan and, when given, that the TOWS strategy belongs to the same plan.
func (h *Handler) checkSasaranRefs(ctx context.Context, orgID primitive.ObjectID, refs sasaranRefs) error {
	if err := exists(ctx, h.store.RencanaStrategis(), orgID, refs.plan, "rencanaStrategisId"); err != nil {
		return err
	}
	if refs.tows == nil {
		return nil
	}
	if err := exists(ctx, h.store.Tows(), orgID, *refs.tows, "towsStrategyId"); err != nil {
		return err
	}
	n, err := h.store.Tows().Count(ctx, store.Query{
		OrganizationID: orgID,
		Filter:         bson.M{"_id": *refs.tows, "rencanaStrategisId": refs.plan},
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.Validation("towsStrategyId belongs to another rencana strategis")
	}
	return nil
}

func (h *Handler) sasaranWeightUsed(ctx context.Context, orgID, plan primitive.ObjectID, perspective string, self primitive.ObjectID) (int, error) {
	items, err := h.store.SasaranStrategi().List(ctx, store.Query{
		OrganizationID: orgID,
		Filter:         bson.M{"rencanaStrategisId": plan, "perspective": perspective},
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

func (h *Handler) CreateSasaran(w http.ResponseWriter, r *http.Request) {
	var req sasaranRequest
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
	if err := h.checkSasaranRefs(ctx, orgID, refs); err != nil {
		h.fail(w, r, err)
		return
	}
	used, err := h.sasaranWeightUsed(ctx, orgID, refs.plan, req.Perspective, primitive.NilObjectID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := scoring.CheckWeightBudget("perspective "+req.Perspective, used, req.Weight); err != nil {
		h.fail(w, r, err)
		return
	}

	now := time.Now().UTC()
	sasaran := models.SasaranStrategi{
		ID:                 primitive.NewObjectID(),
		OrganizationID:     orgID,
		RencanaStrategisID: refs.plan,
		TowsStrategyID:     refs.tows,
		Perspective:        req.Perspective,
		Statement:          req.Statement,
		Weight:             req.Weight,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := h.store.SasaranStrategi().Insert(ctx, &sasaran); err != nil {
		h.fail(w, r, err)
		return
	}

	h.audit(ctx, r, "sasaran-strategi", "create", sasaran.ID, bson.M{"perspective": sasaran.Perspective, "weight": sasaran.Weight})
	utils.RespondWithJSON(w, http.StatusCreated, sasaran)
}

func (h *Handler) UpdateSasaran(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req sasaranRequest
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
	sasaran, err := h.store.SasaranStrategi().Get(ctx, orgID, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.checkSasaranRefs(ctx, orgID, refs); err != nil {
		h.fail(w, r, err)
		return
	}
	used, err := h.sasaranWeightUsed(ctx, orgID, refs.plan, req.Perspective, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := scoring.CheckWeightBudget("perspective "+req.Perspective, used, req.Weight); err != nil {
		h.fail(w, r, err)
		return
	}

	sasaran.RencanaStrategisID = refs.plan
	sasaran.TowsStrategyID = refs.tows
	sasaran.Perspective = req.Perspective
	sasaran.Statement = req.Statement
	sasaran.Weight = req.Weight
	sasaran.UpdatedAt = time.Now().UTC()

	if err := h.store.SasaranStrategi().Replace(ctx, orgID, id, sasaran); err != nil {
		h.fail(w, r, err)
		return
	}

	h.audit(ctx, r, "sasaran-strategi", "update", id, bson.M{"perspective": sasaran.Perspective, "weight": sasaran.Weight})
	utils.RespondWithJSON(w, http.StatusOK, sasaran)
}

func (h *Handler) DeleteSasaran(w http.ResponseWriter, r *http.Request) {
	remove(h, w, r, h.store.SasaranStrategi(), "sasaran-strategi", func(ctx context.Context, orgID, id primitive.ObjectID) error {
		return inUse(ctx, h.store.Risks(), orgID, "sasaranStrategiId", id, "risk")
	})
}
