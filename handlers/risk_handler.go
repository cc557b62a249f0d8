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

var riskStatuses = []string{models.RiskOpen, models.RiskMitigated, models.RiskClosed}

var riskFilter = listFilter{
	idParams: map[string]string{
		"unitId":     "workUnitId",
		"categoryId": "categoryId",
		"sasaranId":  "sasaranStrategiId",
	},
	intParams: map[string]string{"year": "year"},
	strParams: map[string]string{
		"status":        "status",
		"level":         "inherent.level",
		"residualLevel": "residual.level",
	},
}

func (h *Handler) ListRisks(w http.ResponseWriter, r *http.Request) {
	list(h, w, r, h.store.Risks(), riskFilter, "-inherent.score")
}

func (h *Handler) GetRisk(w http.ResponseWriter, r *http.Request) {
	get(h, w, r, h.store.Risks())
}

type rating struct {
	Probability int `json:"probability"`
	Impact      int `json:"impact"`
}

func (rt rating) assess() (models.Assessment, error) {
	return scoring.Assess(rt.Probability, rt.Impact)
}

type riskRequest struct {
	Code              string  `json:"code,omitempty"`
	WorkUnitID        string  `json:"workUnitId"`
	CategoryID        string  `json:"categoryId"`
	SasaranStrategiID string  `json:"sasaranStrategiId,omitempty"`
	Year              int     `json:"year"`
	Title             string  `json:"title"`
	Cause             string  `json:"cause"`
	ImpactDescription string  `json:"impactDescription"`
	Owner             string  `json:"owner,omitempty"`
	Status            string  `json:"status"`
	Inherent          rating  `json:"inherent"`
	ExistingControls  string  `json:"existingControls,omitempty"`
	MitigationPlan    string  `json:"mitigationPlan,omitempty"`
	Residual          *rating `json:"residual,omitempty"`
	ResidualNotes     string  `json:"residualNotes,omitempty"`
	ReviewDate        string  `json:"reviewDate,omitempty"`
}

// riskFields is a validated riskRequest.
type riskFields struct {
	unit, category primitive.ObjectID
	sasaran        *primitive.ObjectID
	inherent       models.Assessment
	residual       *models.Assessment
	reviewDate     *time.Time
}

func (req *riskRequest) validate() (riskFields, error) {
	var f riskFields
	var err error
	if f.unit, err = mustRef("workUnitId", req.WorkUnitID); err != nil {
		return f, err
	}
	if f.category, err = mustRef("categoryId", req.CategoryID); err != nil {
		return f, err
	}
	if f.sasaran, err = parseRef("sasaranStrategiId", req.SasaranStrategiID, false); err != nil {
		return f, err
	}
	if req.Year < 2000 || req.Year > 2100 {
		return f, apperr.Validation("year must be between 2000 and 2100")
	}
	if err := requireTitle("title", req.Title); err != nil {
		return f, err
	}
	if err := requireText("cause", req.Cause); err != nil {
		return f, err
	}
	if err := requireText("impactDescription", req.ImpactDescription); err != nil {
		return f, err
	}
	if req.Status == "" {
		req.Status = models.RiskOpen
	}
	if err := oneOf("status", req.Status, riskStatuses); err != nil {
		return f, err
	}
	if f.inherent, err = req.Inherent.assess(); err != nil {
		return f, err
	}
	if req.Residual != nil {
		residual, err := req.Residual.assess()
		if err != nil {
			return f, err
		}
		if err := scoring.CheckResidual(f.inherent, residual); err != nil {
			return f, err
		}
		f.residual = &residual
	}
	if f.reviewDate, err = utils.ParseDate(req.ReviewDate); err != nil {
		return f, apperr.Validation("invalid reviewDate, expected YYYY-MM-DD")
	}
	return f, nil
}

func (h *Handler) checkRiskRefs(ctx context.Context, orgID primitive.ObjectID, f riskFields) error {
	if err := exists(ctx, h.store.WorkUnits(), orgID, f.unit, "workUnitId"); err != nil {
		return err
	}
	if err := exists(ctx, h.store.RiskCategories(), orgID, f.category, "categoryId"); err != nil {
		return err
	}
	if f.sasaran != nil {
		return exists(ctx, h.store.SasaranStrategi(), orgID, *f.sasaran, "sasaranStrategiId")
	}
	return nil
}

func (h *Handler) CreateRisk(w http.ResponseWriter, r *http.Request) {
	var req riskRequest
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
	if err := h.checkRiskRefs(ctx, who.OrgID, f); err != nil {
		h.fail(w, r, err)
		return
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))

	now := time.Now().UTC()
	risk := models.RiskInput{
		ID:                primitive.NewObjectID(),
		OrganizationID:    who.OrgID,
		Code:              code,
		WorkUnitID:        f.unit,
		CategoryID:        f.category,
		SasaranStrategiID: f.sasaran,
		Year:              req.Year,
		Title:             req.Title,
		Cause:             req.Cause,
		ImpactDescription: req.ImpactDescription,
		Owner:             req.Owner,
		Status:            req.Status,
		Inherent:          f.inherent,
		ExistingControls:  req.ExistingControls,
		MitigationPlan:    req.MitigationPlan,
		Residual:          f.residual,
		ResidualNotes:     req.ResidualNotes,
		ReviewDate:        f.reviewDate,
		CreatedBy:         who.UserID,
		UpdatedBy:         who.UserID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if code == "" {
		scope := store.Query{OrganizationID: who.OrgID, Filter: bson.M{"year": req.Year}}
		err = insertCoded(ctx, h.store.Risks(), scope, &risk, "RSK", req.Year, func(c string) { risk.Code = c })
	} else {
		err = h.store.Risks().Insert(ctx, &risk)
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.audit(ctx, r, "risk", "create", risk.ID, bson.M{"code": risk.Code, "level": risk.Inherent.Level})
	utils.RespondWithJSON(w, http.StatusCreated, risk)
}

func (h *Handler) UpdateRisk(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req riskRequest
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
	risk, err := h.store.Risks().Get(ctx, who.OrgID, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.checkRiskRefs(ctx, who.OrgID, f); err != nil {
		h.fail(w, r, err)
		return
	}

	if code := strings.ToUpper(strings.TrimSpace(req.Code)); code != "" {
		risk.Code = code
	}
	risk.WorkUnitID, risk.CategoryID = f.unit, f.category
	risk.SasaranStrategiID = f.sasaran
	risk.Year = req.Year
	risk.Title = req.Title
	risk.Cause = req.Cause
	risk.ImpactDescription = req.ImpactDescription
	risk.Owner = req.Owner
	risk.Status = req.Status
	risk.Inherent = f.inherent
	risk.ExistingControls = req.ExistingControls
	risk.MitigationPlan = req.MitigationPlan
	risk.Residual = f.residual
	risk.ResidualNotes = req.ResidualNotes
	risk.ReviewDate = f.reviewDate
	risk.UpdatedBy = who.UserID
	risk.UpdatedAt = time.Now().UTC()

	if err := h.store.Risks().Replace(ctx, who.OrgID, id, risk); err != nil {
		h.fail(w, r, err)
		return
	}

	h.audit(ctx, r, "risk", "update", id, bson.M{"code": risk.Code, "level": risk.Inherent.Level})
	utils.RespondWithJSON(w, http.StatusOK, risk)
}

type residualRequest struct {
	Probability int    `json:"probability"`
	Impact      int    `json:"impact"`
	Notes       string `json:"notes,omitempty"`
	ReviewDate  string `json:"reviewDate,omitempty"`
	Status      string `json:"status,omitempty"`
}

// UpdateResidual records the risk's rating after controls are applied.
func (h *Handler) UpdateResidual(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req residualRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	residual, err := scoring.Assess(req.Probability, req.Impact)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	reviewDate, err := utils.ParseDate(req.ReviewDate)
	if err != nil {
		h.fail(w, r, apperr.Validation("invalid reviewDate, expected YYYY-MM-DD"))
		return
	}
	if req.Status != "" {
		if err := oneOf("status", req.Status, riskStatuses); err != nil {
			h.fail(w, r, err)
			return
		}
	}

	ctx, cancel := withTimeout(r)
	defer cancel()

	who := caller(r)
	risk, err := h.store.Risks().Get(ctx, who.OrgID, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := scoring.CheckResidual(risk.Inherent, residual); err != nil {
		h.fail(w, r, err)
		return
	}

	risk.Residual = &residual
	risk.ResidualNotes = req.Notes
	if reviewDate != nil {
		risk.ReviewDate = reviewDate
	}
	if req.Status != "" {
		risk.Status = req.Status
	}
	risk.UpdatedBy = who.UserID
	risk.UpdatedAt = time.Now().UTC()

	if err := h.store.Risks().Replace(ctx, who.OrgID, id, risk); err != nil {
		h.fail(w, r, err)
		return
	}

	h.audit(ctx, r, "risk", "residual", id, bson.M{
		"code":          risk.Code,
		"inherentScore": risk.Inherent.Score,
		"residualScore": residual.Score,
		"residualLevel": residual.Level,
	})
	utils.RespondWithJSON(w, http.StatusOK, risk)
}

func (h *Handler) DeleteRisk(w http.ResponseWriter, r *http.Request) {
	remove(h, w, r, h.store.Risks(), "risk", func(ctx context.Context, orgID, id primitive.ObjectID) error {
		return inUse(ctx, h.store.Monitoring(), orgID, "riskId", id, "monitoring evaluasi")
	})
}
