// Package reports assembles tabular report datasets and renders them as JSON, CSV or XLSX.
package reports

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"github.com/Mukhsinh/manajemenresiko-sub007/apperr"
	"github.com/Mukhsinh/manajemenresiko-sub007/models"
	"github.com/Mukhsinh/manajemenresiko-sub007/scoring"
	"github.com/Mukhsinh/manajemenresiko-sub007/store"
)

const (
	RiskRegister       = "risk-register"
	ResidualRisk       = "residual-risk"
	RiskProfileReport  = "risk-profile"
	MonitoringEvaluasi = "monitoring-evaluasi"
	Swot               = "swot"
	Peluang            = "peluang"
)

// Types lists the report types in menu order.
var Types = []string{RiskRegister, ResidualRisk, RiskProfileReport, MonitoringEvaluasi, Swot, Peluang}

var titles = map[string]string{
	RiskRegister:       "Risk Register",
	ResidualRisk:       "Residual Risk",
	RiskProfileReport:  "Risk Profile",
	MonitoringEvaluasi: "Monitoring Evaluasi",
	Swot:               "Analisis SWOT",
	Peluang:            "Peluang",
}

// Filter narrows report rows. Zero values mean no restriction.
type Filter struct {
	Year       int
	WorkUnitID primitive.ObjectID
}

func (f Filter) bson() bson.M {
	m := bson.M{}
	if f.Year != 0 {
		m["year"] = f.Year
	}
	if !f.WorkUnitID.IsZero() {
		m["workUnitId"] = f.WorkUnitID
	}
	return m
}

// Report is a rendered-ready table. Cells hold strings or numbers.
type Report struct {
	Type        string          `json:"type"`
	Title       string          `json:"title"`
	GeneratedAt time.Time       `json:"generatedAt"`
	Columns     []string        `json:"columns"`
	Rows        [][]interface{} `json:"rows"`
}

type Builder struct {
	st store.Store
}

func NewBuilder(st store.Store) *Builder {
	return &Builder{st: st}
}

// dataset holds what a report needs; only the requested parts are loaded.
type dataset struct {
	units      map[primitive.ObjectID]models.WorkUnit
	categories map[primitive.ObjectID]models.RiskCategory
	risks      []models.RiskInput
	monitoring []models.MonitoringEvaluasi
	swot       []models.SwotItem
	peluang    []models.Peluang
}

type parts struct {
	risks, monitoring, swot, peluang bool
}

func (b *Builder) load(ctx context.Context, orgID primitive.ObjectID, f Filter, p parts) (*dataset, error) {
	ds := &dataset{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		units, err := b.st.WorkUnits().List(ctx, store.Query{OrganizationID: orgID})
		if err != nil {
			return err
		}
		ds.units = make(map[primitive.ObjectID]models.WorkUnit, len(units))
		for _, u := range units {
			ds.units[u.ID] = u
		}
		return nil
	})
	g.Go(func() error {
		cats, err := b.st.RiskCategories().List(ctx, store.Query{OrganizationID: orgID})
		if err != nil {
			return err
		}
		ds.categories = make(map[primitive.ObjectID]models.RiskCategory, len(cats))
		for _, c := range cats {
			ds.categories[c.ID] = c
		}
		return nil
	})
	if p.risks || p.monitoring {
		g.Go(func() error {
			var err error
			ds.risks, err = b.st.Risks().List(ctx, store.Query{OrganizationID: orgID, Filter: f.bson(), Sort: "code"})
			return err
		})
	}
	if p.monitoring {
		g.Go(func() error {
			var err error
			ds.monitoring, err = b.st.Monitoring().List(ctx, store.Query{OrganizationID: orgID, Sort: "period"})
			return err
		})
	}
	if p.swot {
		g.Go(func() error {
			var err error
			ds.swot, err = b.st.Swot().List(ctx, store.Query{OrganizationID: orgID, Filter: f.bson(), Sort: "category"})
			return err
		})
	}
	if p.peluang {
		g.Go(func() error {
			var err error
			ds.peluang, err = b.st.Peluang().List(ctx, store.Query{OrganizationID: orgID, Filter: f.bson(), Sort: "code"})
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ds, nil
}

func (ds *dataset) unitName(id primitive.ObjectID) string {
	if u, ok := ds.units[id]; ok {
		return u.Name
	}
	return ""
}

func (ds *dataset) categoryName(id primitive.ObjectID) string {
	if c, ok := ds.categories[id]; ok {
		return c.Name
	}
	return ""
}

// Build loads and tabulates the report of the given type.
func (b *Builder) Build(ctx context.Context, orgID primitive.ObjectID, kind string, f Filter) (*Report, error) {
	var p parts
	switch kind {
	case RiskRegister, ResidualRisk, RiskProfileReport:
		p.risks = true
	case MonitoringEvaluasi:
		p.monitoring = true
	case Swot:
		p.swot = true
	case Peluang:
		p.peluang = true
	default:
		return nil, apperr.NotFound("unknown report type %q", kind)
	}

	ds, err := b.load(ctx, orgID, f, p)
	if err != nil {
		return nil, err
	}

	rep := &Report{Type: kind, Title: titles[kind], GeneratedAt: time.Now().UTC()}
	switch kind {
	case RiskRegister:
		riskRegister(rep, ds)
	case ResidualRisk:
		residualRisk(rep, ds)
	case RiskProfileReport:
		riskProfile(rep, ds)
	case MonitoringEvaluasi:
		monitoring(rep, ds)
	case Swot:
		swot(rep, ds)
	case Peluang:
		peluang(rep, ds)
	}
	if rep.Rows == nil {
		rep.Rows = [][]interface{}{}
	}
	return rep, nil
}

func riskRegister(rep *Report, ds *dataset) {
	rep.Columns = []string{"Kode", "Unit Kerja", "Kategori", "Tahun", "Risiko", "Penyebab", "Dampak",
		"Pemilik", "Probabilitas", "Dampak (1-5)", "Skor", "Level", "Pengendalian", "Rencana Mitigasi", "Status"}
	for _, r := range ds.risks {
		rep.Rows = append(rep.Rows, []interface{}{
			r.Code, ds.unitName(r.WorkUnitID), ds.categoryName(r.CategoryID), r.Year, r.Title, r.Cause,
			r.ImpactDescription, r.Owner, r.Inherent.Probability, r.Inherent.Impact, r.Inherent.Score,
			r.Inherent.Level, r.ExistingControls, r.MitigationPlan, r.Status,
		})
	}
}

func residualRisk(rep *Report, ds *dataset) {
	rep.Columns = []string{"Kode", "Unit Kerja", "Risiko", "Skor Inheren", "Level Inheren",
		"Probabilitas Residual", "Dampak Residual", "Skor Residual", "Level Residual", "Penurunan", "Catatan"}
	for _, r := range ds.risks {
		if r.Residual == nil {
			continue
		}
		rep.Rows = append(rep.Rows, []interface{}{
			r.Code, ds.unitName(r.WorkUnitID), r.Title, r.Inherent.Score, r.Inherent.Level,
			r.Residual.Probability, r.Residual.Impact, r.Residual.Score, r.Residual.Level,
			r.Inherent.Score - r.Residual.Score, r.ResidualNotes,
		})
	}
}

func riskProfile(rep *Report, ds *dataset) {
	rep.Columns = []string{"Kode Unit", "Unit Kerja", "Jumlah Risiko", "Rata-rata Skor Inheren",
		"Rata-rata Skor Residual", "High/Extreme"}
	for _, u := range profileByUnit(ds) {
		rep.Rows = append(rep.Rows, []interface{}{
			u.Code, u.Name, u.Risks, u.AvgInherent, u.AvgResidual, u.HighOrExtreme,
		})
	}
}

func monitoring(rep *Report, ds *dataset) {
	rep.Columns = []string{"Periode", "Kode Risiko", "Risiko", "Unit Kerja", "Progress (%)",
		"Skor Saat Ini", "Level Saat Ini", "Evaluasi", "Status"}
	risks := make(map[primitive.ObjectID]models.RiskInput, len(ds.risks))
	for _, r := range ds.risks {
		risks[r.ID] = r
	}
	for _, m := range ds.monitoring {
		r, ok := risks[m.RiskID]
		if !ok {
			// outside the year/unit filter
			continue
		}
		rep.Rows = append(rep.Rows, []interface{}{
			m.Period.Format("2006-01-02"), r.Code, r.Title, ds.unitName(r.WorkUnitID), m.Progress,
			m.Current.Score, m.Current.Level, m.Evaluation, m.Status,
		})
	}
}

func swot(rep *Report, ds *dataset) {
	rep.Columns = []string{"Unit Kerja", "Tahun", "Kategori", "Perspektif", "Faktor", "Bobot", "Rating", "Skor"}
	items := append([]models.SwotItem(nil), ds.swot...)
	order := make(map[string]int, len(models.SwotCategories))
	for i, c := range models.SwotCategories {
		order[c] = i
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Year != items[j].Year {
			return items[i].Year < items[j].Year
		}
		if a, b := ds.unitName(items[i].WorkUnitID), ds.unitName(items[j].WorkUnitID); a != b {
			return a < b
		}
		return order[items[i].Category] < order[items[j].Category]
	})
	for _, it := range items {
		rep.Rows = append(rep.Rows, []interface{}{
			ds.unitName(it.WorkUnitID), it.Year, it.Category, it.Perspective, it.Description,
			it.Weight, it.Rank, it.Score,
		})
	}
}

func peluang(rep *Report, ds *dataset) {
	rep.Columns = []string{"Kode", "Unit Kerja", "Kategori", "Tahun", "Peluang", "Probabilitas",
		"Dampak", "Skor", "Level", "Rencana Tindak Lanjut", "Status"}
	for _, p := range ds.peluang {
		rep.Rows = append(rep.Rows, []interface{}{
			p.Code, ds.unitName(p.WorkUnitID), ds.categoryName(p.CategoryID), p.Year, p.Title,
			p.Assessment.Probability, p.Assessment.Impact, p.Assessment.Score, p.Assessment.Level,
			p.ActionPlan, p.Status,
		})
	}
}

// highOrExtreme reports whether a score falls in the two upper bands.
func highOrExtreme(score int) bool {
	l := scoring.Level(score)
	return l == scoring.LevelHigh || l == scoring.LevelExtreme
}
