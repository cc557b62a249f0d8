package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Mukhsinh/manajemenresiko-sub007/apperr"
	"github.com/Mukhsinh/manajemenresiko-sub007/models"
	"github.com/Mukhsinh/manajemenresiko-sub007/scoring"
	"github.com/Mukhsinh/manajemenresiko-sub007/store"
	"github.com/Mukhsinh/manajemenresiko-sub007/utils"
)

type Options struct {
	// Year of the SWOT, risk and peluang rows; defaults to the plan's start year.
	Year int
	// Synthetic adds that many generated risks on top of the fixtures.
	Synthetic int
	// RandSeed makes the synthetic rows reproducible.
	RandSeed int64
}

// Result reports what was written.
type Result struct {
	OrganizationID primitive.ObjectID
	Counts         map[string]int
	// Passwords generated for fixture users that had none, by email.
	Passwords map[string]string
}

const generatedPasswordLength = 12

type Seeder struct {
	st  store.Store
	log *zap.Logger
}

func New(st store.Store, log *zap.Logger) *Seeder {
	return &Seeder{st: st, log: log}
}

// run holds the ids created so far, keyed the way fixtures reference them.
type run struct {
	orgID      primitive.ObjectID
	year       int
	now        time.Time
	createdBy  primitive.ObjectID
	units      map[string]primitive.ObjectID
	categories map[string]primitive.ObjectID
	planID     primitive.ObjectID
	tows       map[string]primitive.ObjectID
	sasaran    []primitive.ObjectID
	counts     map[string]int
	passwords  map[string]string
}

// Run writes fx into a new organization. It refuses to run twice for the same
// first user email.
func (s *Seeder) Run(ctx context.Context, fx *Fixtures, opts Options) (*Result, error) {
	first := strings.ToLower(fx.Users[0].Email)
	if _, err := s.st.Users().FindOne(ctx, store.Query{Filter: bson.M{"email": first}}); err == nil {
		return nil, apperr.Conflict("already seeded: user %s exists", first)
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	rn := &run{
		year:       opts.Year,
		now:        time.Now().UTC(),
		units:      map[string]primitive.ObjectID{},
		categories: map[string]primitive.ObjectID{},
		tows:       map[string]primitive.ObjectID{},
		counts:     map[string]int{},
		passwords:  map[string]string{},
	}
	if rn.year == 0 {
		rn.year = fx.RencanaStrategis.StartYear
	}
	if rn.year == 0 {
		rn.year = rn.now.Year()
	}

	steps := []struct {
		name string
		fn   func(context.Context, *Fixtures, *run) error
	}{
		{"organization", s.organization},
		{"users", s.users},
		{"master", s.master},
		{"rencana strategis", s.plan},
		{"swot", s.swot},
		{"tows", s.towsAndSasaran},
		{"risks", s.risks},
		{"peluang", s.peluang},
	}
	for _, step := range steps {
		if err := step.fn(ctx, fx, rn); err != nil {
			return nil, goerr.Wrap(err, "seed step failed", goerr.V("step", step.name))
		}
	}

	if opts.Synthetic > 0 {
		units := make([]primitive.ObjectID, 0, len(rn.units))
		for _, u := range fx.WorkUnits {
			units = append(units, rn.units[u.Code])
		}
		cats := make([]primitive.ObjectID, 0, len(rn.categories))
		for _, c := range fx.RiskCategories {
			cats = append(cats, rn.categories[c.Code])
		}
		rng := rand.New(rand.NewSource(opts.RandSeed))
		for _, r := range Generate(rng, opts.Synthetic, rn.orgID, units, cats, rn.year) {
			r := r
			r.CreatedBy, r.UpdatedBy = rn.createdBy, rn.createdBy
			if err := s.st.Risks().Insert(ctx, &r); err != nil {
				return nil, goerr.Wrap(err, "insert synthetic risk", goerr.V("code", r.Code))
			}
			rn.counts["risks"]++
		}
	}

	s.log.Info("seed completed",
		zap.String("organizationId", rn.orgID.Hex()),
		zap.Any("counts", rn.counts),
	)
	return &Result{OrganizationID: rn.orgID, Counts: rn.counts, Passwords: rn.passwords}, nil
}

func (s *Seeder) organization(ctx context.Context, fx *Fixtures, rn *run) error {
	o := fx.Organization
	org := models.Organization{
		ID:        primitive.NewObjectID(),
		Name:      o.Name,
		Type:      o.Type,
		Address:   o.Address,
		Phone:     o.Phone,
		CreatedAt: rn.now,
		UpdatedAt: rn.now,
	}
	if err := s.st.Organizations().Insert(ctx, &org); err != nil {
		return err
	}
	rn.orgID = org.ID
	rn.counts["organizations"]++
	return nil
}

func (s *Seeder) users(ctx context.Context, fx *Fixtures, rn *run) error {
	for i, u := range fx.Users {
		if !models.ValidRole(u.Role) {
			return apperr.Validation("user %s has invalid role %q", u.Email, u.Role)
		}
		password := u.Password
		if password == "" {
			password = utils.GenerateRandomPassword(generatedPasswordLength)
			rn.passwords[strings.ToLower(u.Email)] = password
		}
		hash, err := utils.HashPassword(password)
		if err != nil {
			return err
		}
		user := models.User{
			ID:             primitive.NewObjectID(),
			FullName:       u.FullName,
			Email:          strings.ToLower(u.Email),
			JobTitle:       u.JobTitle,
			PasswordHash:   hash,
			Role:           u.Role,
			OrganizationID: rn.orgID,
			CreatedAt:      rn.now,
			UpdatedAt:      rn.now,
		}
		if err := s.st.Users().Insert(ctx, &user); err != nil {
			return err
		}
		if i == 0 {
			rn.createdBy = user.ID
		}
		rn.counts["users"]++
	}
	return nil
}

func (s *Seeder) master(ctx context.Context, fx *Fixtures, rn *run) error {
	for _, u := range fx.WorkUnits {
		unit := models.WorkUnit{
			ID:             primitive.NewObjectID(),
			OrganizationID: rn.orgID,
			Code:           u.Code,
			Name:           u.Name,
			Type:           u.Type,
			HeadName:       u.HeadName,
			CreatedAt:      rn.now,
			UpdatedAt:      rn.now,
		}
		if err := s.st.WorkUnits().Insert(ctx, &unit); err != nil {
			return err
		}
		rn.units[u.Code] = unit.ID
		rn.counts["workUnits"]++
	}
	for _, c := range fx.RiskCategories {
		cat := models.RiskCategory{
			ID:             primitive.NewObjectID(),
			OrganizationID: rn.orgID,
			Code:           c.Code,
			Name:           c.Name,
			Description:    c.Description,
			CreatedAt:      rn.now,
			UpdatedAt:      rn.now,
		}
		if err := s.st.RiskCategories().Insert(ctx, &cat); err != nil {
			return err
		}
		rn.categories[c.Code] = cat.ID
		rn.counts["riskCategories"]++
	}
	return nil
}

func (s *Seeder) plan(ctx context.Context, fx *Fixtures, rn *run) error {
	p := fx.RencanaStrategis
	if p.Name == "" {
		return nil
	}
	status := p.Status
	if status == "" {
		status = models.PlanDraft
	}
	plan := models.RencanaStrategis{
		ID:             primitive.NewObjectID(),
		OrganizationID: rn.orgID,
		Code:           p.Code,
		Name:           p.Name,
		StartYear:      p.StartYear,
		EndYear:        p.EndYear,
		Vision:         p.Vision,
		Mission:        p.Mission,
		Status:         status,
		CreatedBy:      rn.createdBy,
		CreatedAt:      rn.now,
		UpdatedAt:      rn.now,
	}
	if err := s.st.RencanaStrategis().Insert(ctx, &plan); err != nil {
		return err
	}
	rn.planID = plan.ID
	rn.counts["rencanaStrategis"]++
	return nil
}

func (s *Seeder) unit(rn *run, code string) (primitive.ObjectID, error) {
	id, ok := rn.units[code]
	if !ok {
		return id, apperr.Validation("unknown work unit %q", code)
	}
	return id, nil
}

func (s *Seeder) category(rn *run, code string) (primitive.ObjectID, error) {
	id, ok := rn.categories[code]
	if !ok {
		return id, apperr.Validation("unknown risk category %q", code)
	}
	return id, nil
}

func (s *Seeder) swot(ctx context.Context, fx *Fixtures, rn *run) error {
	used := map[string]int{}
	for _, it := range fx.Swot {
		unit, err := s.unit(rn, it.Unit)
		if err != nil {
			return err
		}
		if err := scoring.CheckScale("rank", it.Rank); err != nil {
			return err
		}
		key := it.Unit + "/" + it.Category
		if err := scoring.CheckWeightBudget(key, used[key], it.Weight); err != nil {
			return err
		}
		used[key] += it.Weight

		item := models.SwotItem{
			ID:             primitive.NewObjectID(),
			OrganizationID: rn.orgID,
			WorkUnitID:     unit,
			Year:           rn.year,
			Category:       it.Category,
			Perspective:    it.Perspective,
			Description:    it.Description,
			Weight:         it.Weight,
			Rank:           it.Rank,
			Score:          it.Weight * it.Rank,
			CreatedAt:      rn.now,
			UpdatedAt:      rn.now,
		}
		if !rn.planID.IsZero() {
			plan := rn.planID
			item.RencanaStrategisID = &plan
		}
		if err := s.st.Swot().Insert(ctx, &item); err != nil {
			return err
		}
		rn.counts["swot"]++
	}
	return nil
}

func (s *Seeder) towsAndSasaran(ctx context.Context, fx *Fixtures, rn *run) error {
	if rn.planID.IsZero() {
		return nil
	}
	for _, t := range fx.Tows {
		strategy := models.TowsStrategy{
			ID:                 primitive.NewObjectID(),
			OrganizationID:     rn.orgID,
			RencanaStrategisID: rn.planID,
			Type:               t.Type,
			Statement:          t.Statement,
			Priority:           t.Priority,
			CreatedAt:          rn.now,
			UpdatedAt:          rn.now,
		}
		if err := s.st.Tows().Insert(ctx, &strategy); err != nil {
			return err
		}
		if _, ok := rn.tows[t.Type]; !ok {
			rn.tows[t.Type] = strategy.ID
		}
		rn.counts["tows"]++
	}

	used := map[string]int{}
	for _, sa := range fx.Sasaran {
		if err := scoring.CheckWeightBudget("perspective "+sa.Perspective, used[sa.Perspective], sa.Weight); err != nil {
			return err
		}
		used[sa.Perspective] += sa.Weight

		sasaran := models.SasaranStrategi{
			ID:                 primitive.NewObjectID(),
			OrganizationID:     rn.orgID,
			RencanaStrategisID: rn.planID,
			Perspective:        sa.Perspective,
			Statement:          sa.Statement,
			Weight:             sa.Weight,
			CreatedAt:          rn.now,
			UpdatedAt:          rn.now,
		}
		if id, ok := rn.tows[sa.Tows]; ok {
			sasaran.TowsStrategyID = &id
		}
		if err := s.st.SasaranStrategi().Insert(ctx, &sasaran); err != nil {
			return err
		}
		rn.sasaran = append(rn.sasaran, sasaran.ID)
		rn.counts["sasaranStrategi"]++
	}
	return nil
}

func (s *Seeder) risks(ctx context.Context, fx *Fixtures, rn *run) error {
	for i, r := range fx.Risks {
		unit, err := s.unit(rn, r.Unit)
		if err != nil {
			return err
		}
		cat, err := s.category(rn, r.Category)
		if err != nil {
			return err
		}
		inherent, err := scoring.Assess(r.Probability, r.Impact)
		if err != nil {
			return err
		}

		risk := models.RiskInput{
			ID:                primitive.NewObjectID(),
			OrganizationID:    rn.orgID,
			Code:              fmt.Sprintf("RSK-%d-%04d", rn.year, i+1),
			WorkUnitID:        unit,
			CategoryID:        cat,
			Year:              rn.year,
			Title:             r.Title,
			Cause:             r.Cause,
			ImpactDescription: r.ImpactDescription,
			Owner:             r.Owner,
			Status:            models.RiskOpen,
			Inherent:          inherent,
			ExistingControls:  r.Controls,
			MitigationPlan:    r.Mitigation,
			CreatedBy:         rn.createdBy,
			UpdatedBy:         rn.createdBy,
			CreatedAt:         rn.now,
			UpdatedAt:         rn.now,
		}
		if r.Sasaran > 0 && r.Sasaran <= len(rn.sasaran) {
			id := rn.sasaran[r.Sasaran-1]
			risk.SasaranStrategiID = &id
		}
		if r.Residual != nil {
			residual, err := scoring.Assess(r.Residual.Probability, r.Residual.Impact)
			if err != nil {
				return err
			}
			if err := scoring.CheckResidual(inherent, residual); err != nil {
				return err
			}
			risk.Residual = &residual
			risk.Status = models.RiskMitigated
		}
		if err := s.st.Risks().Insert(ctx, &risk); err != nil {
			return err
		}
		rn.counts["risks"]++
	}
	return nil
}

func (s *Seeder) peluang(ctx context.Context, fx *Fixtures, rn *run) error {
	for i, p := range fx.Peluang {
		unit, err := s.unit(rn, p.Unit)
		if err != nil {
			return err
		}
		cat, err := s.category(rn, p.Category)
		if err != nil {
			return err
		}
		a, err := scoring.Assess(p.Probability, p.Impact)
		if err != nil {
			return err
		}
		doc := models.Peluang{
			ID:             primitive.NewObjectID(),
			OrganizationID: rn.orgID,
			Code:           fmt.Sprintf("PLG-%d-%04d", rn.year, i+1),
			WorkUnitID:     unit,
			CategoryID:     cat,
			Year:           rn.year,
			Title:          p.Title,
			Description:    p.Description,
			Assessment:     a,
			ActionPlan:     p.ActionPlan,
			Status:         models.RiskOpen,
			CreatedAt:      rn.now,
			UpdatedAt:      rn.now,
		}
		if err := s.st.Peluang().Insert(ctx, &doc); err != nil {
			return err
		}
		rn.counts["peluang"]++
	}
	return nil
}
