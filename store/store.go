// Package store defines the persistence boundary used by the handlers. Every
// collection is organization-scoped except organizations themselves.
package store

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Mukhsinh/manajemenresiko-sub007/models"
)

// Collection names.
const (
	CollOrganizations    = "organizations"
	CollUsers            = "users"
	CollWorkUnits        = "master_work_units"
	CollRiskCategories   = "master_risk_categories"
	CollRencanaStrategis = "rencana_strategis"
	CollSwot             = "swot_analisis"
	CollTows             = "tows_strategi"
	CollSasaranStrategi  = "sasaran_strategi"
	CollRisks            = "risk_inputs"
	CollMonitoring       = "monitoring_evaluasi"
	CollPeluang          = "peluang"
	CollAuditLogs        = "audit_logs"
)

// Query selects documents by equality. A zero OrganizationID disables org
// scoping; Filter keys may use dotted paths into embedded documents.
type Query struct {
	OrganizationID primitive.ObjectID
	Filter         bson.M
	// Sort is a field name, prefixed with "-" for descending order.
	Sort  string
	Skip  int64
	Limit int64
}

// SortField splits Sort into field name and direction (1 or -1).
func (q Query) SortField() (string, int) {
	if strings.HasPrefix(q.Sort, "-") {
		return strings.TrimPrefix(q.Sort, "-"), -1
	}
	return q.Sort, 1
}

// Repository is a typed collection. Inserted documents must carry their ID.
type Repository[T any] interface {
	Insert(ctx context.Context, doc *T) error
	Get(ctx context.Context, orgID, id primitive.ObjectID) (*T, error)
	FindOne(ctx context.Context, q Query) (*T, error)
	List(ctx context.Context, q Query) ([]T, error)
	Count(ctx context.Context, q Query) (int64, error)
	Replace(ctx context.Context, orgID, id primitive.ObjectID, doc *T) error
	Delete(ctx context.Context, orgID, id primitive.ObjectID) error
}

type Store interface {
	Organizations() Repository[models.Organization]
	Users() Repository[models.User]
	WorkUnits() Repository[models.WorkUnit]
	RiskCategories() Repository[models.RiskCategory]
	RencanaStrategis() Repository[models.RencanaStrategis]
	Swot() Repository[models.SwotItem]
	Tows() Repository[models.TowsStrategy]
	SasaranStrategi() Repository[models.SasaranStrategi]
	Risks() Repository[models.RiskInput]
	Monitoring() Repository[models.MonitoringEvaluasi]
	Peluang() Repository[models.Peluang]
	AuditLogs() Repository[models.AuditLog]
	Ping(ctx context.Context) error
}

// Index describes a collection index. Both store implementations honour Unique.
type Index struct {
	Collection string
	Keys       []string
	Unique     bool
}

var Indexes = []Index{
	{Collection: CollUsers, Keys: []string{"email"}, Unique: true},
	{Collection: CollUsers, Keys: []string{"organizationId"}},
	{Collection: CollWorkUnits, Keys: []string{"organizationId", "code"}, Unique: true},
	{Collection: CollRiskCategories, Keys: []string{"organizationId", "code"}, Unique: true},
	{Collection: CollRencanaStrategis, Keys: []string{"organizationId", "code"}, Unique: true},
	{Collection: CollSwot, Keys: []string{"organizationId", "workUnitId", "year", "category"}},
	{Collection: CollTows, Keys: []string{"organizationId", "rencanaStrategisId"}},
	{Collection: CollSasaranStrategi, Keys: []string{"organizationId", "rencanaStrategisId", "perspective"}},
	{Collection: CollRisks, Keys: []string{"organizationId", "code"}, Unique: true},
	{Collection: CollRisks, Keys: []string{"organizationId", "workUnitId"}},
	{Collection: CollRisks, Keys: []string{"organizationId", "categoryId"}},
	{Collection: CollMonitoring, Keys: []string{"organizationId", "riskId"}},
	{Collection: CollPeluang, Keys: []string{"organizationId", "code"}, Unique: true},
	{Collection: CollAuditLogs, Keys: []string{"organizationId", "createdAt"}},
}

// IndexesFor returns the indexes declared for one collection.
func IndexesFor(collection string) []Index {
	var out []Index
	for _, idx := range Indexes {
		if idx.Collection == collection {
			out = append(out, idx)
		}
	}
	return out
}

var labels = map[string]string{
	CollOrganizations:    "organization",
	CollUsers:            "user",
	CollWorkUnits:        "work unit",
	CollRiskCategories:   "risk category",
	CollRencanaStrategis: "rencana strategis",
	CollSwot:             "swot item",
	CollTows:             "tows strategy",
	CollSasaranStrategi:  "sasaran strategi",
	CollRisks:            "risk",
	CollMonitoring:       "monitoring record",
	CollPeluang:          "peluang",
	CollAuditLogs:        "audit log",
}

// Label is the human name of a collection used in error messages.
func Label(collection string) string {
	if l, ok := labels[collection]; ok {
		return l
	}
	return collection
}
