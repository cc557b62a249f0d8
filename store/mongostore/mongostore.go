// Package mongostore implements store.Store on MongoDB.
package mongostore

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/Mukhsinh/manajemenresiko-sub007/apperr"
	"github.com/Mukhsinh/manajemenresiko-sub007/models"
	"github.com/Mukhsinh/manajemenresiko-sub007/store"
)

type Store struct {
	db *mongo.Database

	orgs       *collection[models.Organization]
	users      *collection[models.User]
	workUnits  *collection[models.WorkUnit]
	categories *collection[models.RiskCategory]
	plans      *collection[models.RencanaStrategis]
	swot       *collection[models.SwotItem]
	tows       *collection[models.TowsStrategy]
	sasaran    *collection[models.SasaranStrategi]
	risks      *collection[models.RiskInput]
	monitoring *collection[models.MonitoringEvaluasi]
	peluang    *collection[models.Peluang]
	audit      *collection[models.AuditLog]
}

var _ store.Store = (*Store)(nil)

func New(db *mongo.Database) *Store {
	return &Store{
		db:         db,
		orgs:       newCollection[models.Organization](db, store.CollOrganizations, false),
		users:      newCollection[models.User](db, store.CollUsers, true),
		workUnits:  newCollection[models.WorkUnit](db, store.CollWorkUnits, true),
		categories: newCollection[models.RiskCategory](db, store.CollRiskCategories, true),
		plans:      newCollection[models.RencanaStrategis](db, store.CollRencanaStrategis, true),
		swot:       newCollection[models.SwotItem](db, store.CollSwot, true),
		tows:       newCollection[models.TowsStrategy](db, store.CollTows, true),
		sasaran:    newCollection[models.SasaranStrategi](db, store.CollSasaranStrategi, true),
		risks:      newCollection[models.RiskInput](db, store.CollRisks, true),
		monitoring: newCollection[models.MonitoringEvaluasi](db, store.CollMonitoring, true),
		peluang:    newCollection[models.Peluang](db, store.CollPeluang, true),
		audit:      newCollection[models.AuditLog](db, store.CollAuditLogs, true),
	}
}

func (s *Store) Organizations() store.Repository[models.Organization]        { return s.orgs }
func (s *Store) Users() store.Repository[models.User]                        { return s.users }
func (s *Store) WorkUnits() store.Repository[models.WorkUnit]                { return s.workUnits }
func (s *Store) RiskCategories() store.Repository[models.RiskCategory]       { return s.categories }
func (s *Store) RencanaStrategis() store.Repository[models.RencanaStrategis] { return s.plans }
func (s *Store) Swot() store.Repository[models.SwotItem]                     { return s.swot }
func (s *Store) Tows() store.Repository[models.TowsStrategy]                 { return s.tows }
func (s *Store) SasaranStrategi() store.Repository[models.SasaranStrategi]   { return s.sasaran }
func (s *Store) Risks() store.Repository[models.RiskInput]                   { return s.risks }
func (s *Store) Monitoring() store.Repository[models.MonitoringEvaluasi]     { return s.monitoring }
func (s *Store) Peluang() store.Repository[models.Peluang]                   { return s.peluang }
func (s *Store) AuditLogs() store.Repository[models.AuditLog]                { return s.audit }

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, readpref.Primary())
}

// EnsureIndexes creates every index declared in store.Indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	for _, idx := range store.Indexes {
		keys := bson.D{}
		for _, k := range idx.Keys {
			keys = append(keys, bson.E{Key: k, Value: 1})
		}
		model := mongo.IndexModel{Keys: keys, Options: options.Index().SetUnique(idx.Unique)}
		if _, err := s.db.Collection(idx.Collection).Indexes().CreateOne(ctx, model); err != nil {
			return goerr.Wrap(err, "failed to create index", goerr.V("collection", idx.Collection), goerr.V("keys", idx.Keys))
		}
	}
	return nil
}

type collection[T any] struct {
	coll      *mongo.Collection
	orgScoped bool
}

func newCollection[T any](db *mongo.Database, name string, orgScoped bool) *collection[T] {
	return &collection[T]{coll: db.Collection(name), orgScoped: orgScoped}
}

func (c *collection[T]) scope(orgID primitive.ObjectID, f bson.M) bson.M {
	out := bson.M{}
	for k, v := range f {
		out[k] = v
	}
	if c.orgScoped && !orgID.IsZero() {
		out["organizationId"] = orgID
	}
	return out
}

func (c *collection[T]) Insert(ctx context.Context, doc *T) error {
	if _, err := c.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return goerr.Wrap(apperr.Conflict("%s already exists", store.Label(c.coll.Name())), "duplicate key", goerr.V("collection", c.coll.Name()))
		}
		return goerr.Wrap(err, "insert failed", goerr.V("collection", c.coll.Name()))
	}
	return nil
}

func (c *collection[T]) Get(ctx context.Context, orgID, id primitive.ObjectID) (*T, error) {
	return c.findOne(ctx, c.scope(orgID, bson.M{"_id": id}))
}

func (c *collection[T]) FindOne(ctx context.Context, q store.Query) (*T, error) {
	return c.findOne(ctx, c.scope(q.OrganizationID, q.Filter))
}

func (c *collection[T]) findOne(ctx context.Context, filter bson.M) (*T, error) {
	var doc T
	if err := c.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, goerr.Wrap(apperr.NotFound("%s not found", store.Label(c.coll.Name())), "lookup")
		}
		return nil, goerr.Wrap(err, "find failed", goerr.V("collection", c.coll.Name()))
	}
	return &doc, nil
}

func (c *collection[T]) List(ctx context.Context, q store.Query) ([]T, error) {
	opts := options.Find()
	if field, dir := q.SortField(); field != "" {
		opts.SetSort(bson.D{{Key: field, Value: dir}, {Key: "_id", Value: 1}})
	}
	if q.Skip > 0 {
		opts.SetSkip(q.Skip)
	}
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}

	cursor, err := c.coll.Find(ctx, c.scope(q.OrganizationID, q.Filter), opts)
	if err != nil {
		return nil, goerr.Wrap(err, "find failed", goerr.V("collection", c.coll.Name()))
	}
	defer cursor.Close(ctx)

	docs := []T{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, goerr.Wrap(err, "cursor decode failed", goerr.V("collection", c.coll.Name()))
	}
	return docs, nil
}

func (c *collection[T]) Count(ctx context.Context, q store.Query) (int64, error) {
	n, err := c.coll.CountDocuments(ctx, c.scope(q.OrganizationID, q.Filter))
	if err != nil {
		return 0, goerr.Wrap(err, "count failed", goerr.V("collection", c.coll.Name()))
	}
	return n, nil
}

func (c *collection[T]) Replace(ctx context.Context, orgID, id primitive.ObjectID, doc *T) error {
	res, err := c.coll.ReplaceOne(ctx, c.scope(orgID, bson.M{"_id": id}), doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return goerr.Wrap(apperr.Conflict("%s already exists", store.Label(c.coll.Name())), "duplicate key", goerr.V("collection", c.coll.Name()))
		}
		return goerr.Wrap(err, "replace failed", goerr.V("collection", c.coll.Name()))
	}
	if res.MatchedCount == 0 {
		return goerr.Wrap(apperr.NotFound("%s not found", store.Label(c.coll.Name())), "lookup", goerr.V("id", id.Hex()))
	}
	return nil
}

func (c *collection[T]) Delete(ctx context.Context, orgID, id primitive.ObjectID) error {
	res, err := c.coll.DeleteOne(ctx, c.scope(orgID, bson.M{"_id": id}))
	if err != nil {
		return goerr.Wrap(err, "delete failed", goerr.V("collection", c.coll.Name()))
	}
	if res.DeletedCount == 0 {
		return goerr.Wrap(apperr.NotFound("%s not found", store.Label(c.coll.Name())), "lookup", goerr.V("id", id.Hex()))
	}
	return nil
}
