package reports

import (
	"context"
	"math"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"github.com/Mukhsinh/manajemenresiko-sub007/models"
	"github.com/Mukhsinh/manajemenresiko-sub007/scoring"
	"github.com/Mukhsinh/manajemenresiko-sub007/store"
)

type UnitProfile struct {
	WorkUnitID    primitive.ObjectID `json:"workUnitId"`
	Code          string             `json:"code"`
	Name          string             `json:"name"`
	Risks         int                `json:"risks"`
	AvgInherent   float64            `json:"avgInherent"`
	AvgResidual   float64            `json:"avgResidual"`
	HighOrExtreme int                `json:"highOrExtreme"`
}

// Profile compares the inherent and residual heat maps of a set of risks.
type Profile struct {
	Inherent *scoring.HeatMap `json:"inherent"`
	Residual *scoring.HeatMap `json:"residual"`
	ByUnit   []UnitProfile    `json:"byUnit"`
	Total    int              `json:"total"`
	// Unmitigated counts risks without a residual rating.
	Unmitigated int `json:"unmitigated"`
}

func (b *Builder) RiskProfile(ctx context.Context, orgID primitive.ObjectID, f Filter) (*Profile, error) {
	ds, err := b.load(ctx, orgID, f, parts{risks: true})
	if err != nil {
		return nil, err
	}

	p := &Profile{
		Inherent: scoring.NewHeatMap(),
		Residual: scoring.NewHeatMap(),
		ByUnit:   profileByUnit(ds),
		Total:    len(ds.risks),
	}
	for _, r := range ds.risks {
		p.Inherent.Add(r.Inherent)
		if r.Residual != nil {
			p.Residual.Add(*r.Residual)
		} else {
			p.Unmitigated++
		}
	}
	return p, nil
}

// profileByUnit averages risk scores per work unit, worst first. A risk without a
// residual rating counts at its inherent score.
func profileByUnit(ds *dataset) []UnitProfile {
	type acc struct {
		UnitProfile
		inherent, residual int
	}
	byUnit := map[primitive.ObjectID]*acc{}
	for _, r := range ds.risks {
		a, ok := byUnit[r.WorkUnitID]
		if !ok {
			u := ds.units[r.WorkUnitID]
			a = &acc{UnitProfile: UnitProfile{WorkUnitID: r.WorkUnitID, Code: u.Code, Name: u.Name}}
			byUnit[r.WorkUnitID] = a
		}
		a.Risks++
		a.inherent += r.Inherent.Score
		effective := r.Inherent.Score
		if r.Residual != nil {
			effective = r.Residual.Score
		}
		a.residual += effective
		if highOrExtreme(effective) {
			a.HighOrExtreme++
		}
	}

	out := make([]UnitProfile, 0, len(byUnit))
	for _, a := range byUnit {
		a.AvgInherent = round2(float64(a.inherent) / float64(a.Risks))
		a.AvgResidual = round2(float64(a.residual) / float64(a.Risks))
		out = append(out, a.UnitProfile)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgResidual != out[j].AvgResidual {
			return out[i].AvgResidual > out[j].AvgResidual
		}
		return out[i].Code < out[j].Code
	})
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Dashboard is the landing-page summary of one organization.
type Dashboard struct {
	Year              int                `json:"year,omitempty"`
	TotalRisks        int                `json:"totalRisks"`
	RisksByStatus     map[string]int     `json:"risksByStatus"`
	InherentByLevel   map[string]int     `json:"inherentByLevel"`
	ResidualByLevel   map[string]int     `json:"residualByLevel"`
	TotalPeluang      int                `json:"totalPeluang"`
	MonitoringByState map[string]int     `json:"monitoringByStatus"`
	WorkUnits         int64              `json:"workUnits"`
	ActivePlans       int64              `json:"activePlans"`
	TopRisks          []models.RiskInput `json:"topRisks"`
}

const topRiskCount = 5

func (b *Builder) Dashboard(ctx context.Context, orgID primitive.ObjectID, f Filter) (*Dashboard, error) {
	var (
		risks      []models.RiskInput
		peluang    int64
		monitoring []models.MonitoringEvaluasi
		units      int64
		plans      int64
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		risks, err = b.st.Risks().List(ctx, store.Query{OrganizationID: orgID, Filter: f.bson(), Sort: "-inherent.score"})
		return err
	})
	g.Go(func() error {
		var err error
		peluang, err = b.st.Peluang().Count(ctx, store.Query{OrganizationID: orgID, Filter: f.bson()})
		return err
	})
	g.Go(func() error {
		var err error
		monitoring, err = b.st.Monitoring().List(ctx, store.Query{OrganizationID: orgID})
		return err
	})
	g.Go(func() error {
		var err error
		units, err = b.st.WorkUnits().Count(ctx, store.Query{OrganizationID: orgID})
		return err
	})
	g.Go(func() error {
		var err error
		plans, err = b.st.RencanaStrategis().Count(ctx, store.Query{
			OrganizationID: orgID,
			Filter:         bson.M{"status": models.PlanActive},
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	d := &Dashboard{
		Year:              f.Year,
		TotalRisks:        len(risks),
		RisksByStatus:     map[string]int{models.RiskOpen: 0, models.RiskMitigated: 0, models.RiskClosed: 0},
		InherentByLevel:   scoring.NewHeatMap().ByLevel,
		ResidualByLevel:   scoring.NewHeatMap().ByLevel,
		TotalPeluang:      int(peluang),
		MonitoringByState: map[string]int{models.MonitoringOnTrack: 0, models.MonitoringDelayed: 0, models.MonitoringCompleted: 0},
		WorkUnits:         units,
		ActivePlans:       plans,
		TopRisks:          []models.RiskInput{},
	}

	inScope := make(map[primitive.ObjectID]bool, len(risks))
	for _, r := range risks {
		inScope[r.ID] = true
		d.RisksByStatus[r.Status]++
		d.InherentByLevel[r.Inherent.Level]++
		if r.Residual != nil {
			d.ResidualByLevel[r.Residual.Level]++
		}
		if len(d.TopRisks) < topRiskCount && r.Status != models.RiskClosed {
			d.TopRisks = append(d.TopRisks, r)
		}
	}

	// Latest evaluation per risk decides its monitoring state.
	latest := map[primitive.ObjectID]models.MonitoringEvaluasi{}
	for _, m := range monitoring {
		if !inScope[m.RiskID] {
			continue
		}
		if cur, ok := latest[m.RiskID]; !ok || m.Period.After(cur.Period) {
			latest[m.RiskID] = m
		}
	}
	for _, m := range latest {
		d.MonitoringByState[m.Status]++
	}
	return d, nil
}
