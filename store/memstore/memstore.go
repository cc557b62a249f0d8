// Package memstore is an in-memory store.Store. Documents are kept in their
// BSON form so that filtering, sorting and decoding behave like MongoDB.
package memstore

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Mukhsinh/manajemenresiko-sub007/apperr"
	"github.com/Mukhsinh/manajemenresiko-sub007/models"
	"github.com/Mukhsinh/manajemenresiko-sub007/store"
)

type Store struct {
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

func New() *Store {
	return &Store{
		orgs:       newCollection[models.Organization](store.CollOrganizations, false),
		users:      newCollection[models.User](store.CollUsers, true),
		workUnits:  newCollection[models.WorkUnit](store.CollWorkUnits, true),
		categories: newCollection[models.RiskCategory](store.CollRiskCategories, true),
		plans:      newCollection[models.RencanaStrategis](store.CollRencanaStrategis, true),
		swot:       newCollection[models.SwotItem](store.CollSwot, true),
		tows:       newCollection[models.TowsStrategy](store.CollTows, true),
		sasaran:    newCollection[models.SasaranStrategi](store.CollSasaranStrategi, true),
		risks:      newCollection[models.RiskInput](store.CollRisks, true),
		monitoring: newCollection[models.MonitoringEvaluasi](store.CollMonitoring, true),
		peluang:    newCollection[models.Peluang](store.CollPeluang, true),
		audit:      newCollection[models.AuditLog](store.CollAuditLogs, true),
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

func (s *Store) Ping(ctx context.Context) error { return nil }

type collection[T any] struct {
	name      string
	orgScoped bool
	unique    [][]string

	mu    sync.RWMutex
	docs  map[primitive.ObjectID]bson.M
	order []primitive.ObjectID
}

func newCollection[T any](name string, orgScoped bool) *collection[T] {
	c := &collection[T]{
		name:      name,
		orgScoped: orgScoped,
		docs:      make(map[primitive.ObjectID]bson.M),
	}
	for _, idx := range store.IndexesFor(name) {
		if idx.Unique {
			c.unique = append(c.unique, idx.Keys)
		}
	}
	return c
}

func toM(v any) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode document")
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, goerr.Wrap(err, "failed to normalise document")
	}
	return m, nil
}

func fromM[T any](m bson.M) (*T, error) {
	raw, err := bson.Marshal(m)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode document")
	}
	var doc T
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode document")
	}
	return &doc, nil
}

func (c *collection[T]) notFound(id primitive.ObjectID) error {
	return goerr.Wrap(apperr.NotFound("%s not found", store.Label(c.name)), "lookup", goerr.V("id", id.Hex()))
}

// lookup resolves a dotted path inside a document.
func lookup(doc bson.M, path string) (any, bool) {
	var cur any = doc
	for _, part := range strings.Split(path, ".") {
		switch m := cur.(type) {
		case bson.M:
			v, ok := m[part]
			if !ok {
				return nil, false
			}
			cur = v
		case primitive.D:
			found := false
			for _, e := range m {
				if e.Key == part {
					cur, found = e.Value, true
					break
				}
			}
			if !found {
				return nil, false
			}
		default:
			return nil, false
		}
	}
	return cur, true
}

func (c *collection[T]) matches(doc bson.M, orgID primitive.ObjectID, filter bson.M) bool {
	if c.orgScoped && !orgID.IsZero() {
		if v, ok := doc["organizationId"]; !ok || v != orgID {
			return false
		}
	}
	for k, want := range filter {
		got, ok := lookup(doc, k)
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

func (c *collection[T]) violatesUnique(doc bson.M, self primitive.ObjectID) bool {
	for _, keys := range c.unique {
		for id, other := range c.docs {
			if id == self {
				continue
			}
			same := true
			for _, k := range keys {
				a, _ := lookup(doc, k)
				b, _ := lookup(other, k)
				if !reflect.DeepEqual(a, b) {
					same = false
					break
				}
			}
			if same {
				return true
			}
		}
	}
	return false
}

func (c *collection[T]) Insert(ctx context.Context, doc *T) error {
	m, err := toM(doc)
	if err != nil {
		return err
	}
	id, ok := m["_id"].(primitive.ObjectID)
	if !ok || id.IsZero() {
		return goerr.New("document has no _id", goerr.V("collection", c.name))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.docs[id]; exists || c.violatesUnique(m, id) {
		return goerr.Wrap(apperr.Conflict("%s already exists", store.Label(c.name)), "duplicate key", goerr.V("collection", c.name))
	}
	c.docs[id] = m
	c.order = append(c.order, id)
	return nil
}

func (c *collection[T]) Get(ctx context.Context, orgID, id primitive.ObjectID) (*T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	m, ok := c.docs[id]
	if !ok || !c.matches(m, orgID, nil) {
		return nil, c.notFound(id)
	}
	return fromM[T](m)
}

func (c *collection[T]) FindOne(ctx context.Context, q store.Query) (*T, error) {
	q.Limit = 1
	docs, err := c.List(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, goerr.Wrap(apperr.NotFound("%s not found", store.Label(c.name)), "lookup")
	}
	return &docs[0], nil
}

func (c *collection[T]) selectDocs(q store.Query) ([]bson.M, error) {
	filter := bson.M{}
	if len(q.Filter) > 0 {
		var err error
		if filter, err = toM(q.Filter); err != nil {
			return nil, err
		}
	}

	var out []bson.M
	for _, id := range c.order {
		if m := c.docs[id]; c.matches(m, q.OrganizationID, filter) {
			out = append(out, m)
		}
	}

	if field, dir := q.SortField(); field != "" {
		sort.SliceStable(out, func(i, j int) bool {
			a, _ := lookup(out[i], field)
			b, _ := lookup(out[j], field)
			return compare(a, b)*dir < 0
		})
	}
	return out, nil
}

func (c *collection[T]) List(ctx context.Context, q store.Query) ([]T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	selected, err := c.selectDocs(q)
	if err != nil {
		return nil, err
	}

	if q.Skip > 0 {
		if q.Skip >= int64(len(selected)) {
			selected = nil
		} else {
			selected = selected[q.Skip:]
		}
	}
	if q.Limit > 0 && q.Limit < int64(len(selected)) {
		selected = selected[:q.Limit]
	}

	docs := make([]T, 0, len(selected))
	for _, m := range selected {
		doc, err := fromM[T](m)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}

func (c *collection[T]) Count(ctx context.Context, q store.Query) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	selected, err := c.selectDocs(store.Query{OrganizationID: q.OrganizationID, Filter: q.Filter})
	if err != nil {
		return 0, err
	}
	return int64(len(selected)), nil
}

func (c *collection[T]) Replace(ctx context.Context, orgID, id primitive.ObjectID, doc *T) error {
	m, err := toM(doc)
	if err != nil {
		return err
	}
	if docID, ok := m["_id"].(primitive.ObjectID); ok && docID != id {
		return goerr.New("replacement changes _id", goerr.V("collection", c.name))
	}
	m["_id"] = id

	c.mu.Lock()
	defer c.mu.Unlock()

	existing, ok := c.docs[id]
	if !ok || !c.matches(existing, orgID, nil) {
		return c.notFound(id)
	}
	if c.violatesUnique(m, id) {
		return goerr.Wrap(apperr.Conflict("%s already exists", store.Label(c.name)), "duplicate key", goerr.V("collection", c.name))
	}
	c.docs[id] = m
	return nil
}

func (c *collection[T]) Delete(ctx context.Context, orgID, id primitive.ObjectID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.docs[id]
	if !ok || !c.matches(m, orgID, nil) {
		return c.notFound(id)
	}
	delete(c.docs, id)
	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

// compare orders the BSON value types the models produce.
func compare(a, b any) int {
	switch av := a.(type) {
	case primitive.DateTime:
		if bv, ok := b.(primitive.DateTime); ok {
			return cmpOrdered(av, bv)
		}
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	case primitive.ObjectID:
		if bv, ok := b.(primitive.ObjectID); ok {
			return strings.Compare(av.Hex(), bv.Hex())
		}
	}
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return cmpOrdered(af, bf)
		}
	}
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func cmpOrdered[N ~int64 | ~float64](a, b N) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
