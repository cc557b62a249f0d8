package memstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Mukhsinh/manajemenresiko-sub007/apperr"
	"github.com/Mukhsinh/manajemenresiko-sub007/models"
	"github.com/Mukhsinh/manajemenresiko-sub007/store"
	"github.com/Mukhsinh/manajemenresiko-sub007/store/memstore"
)

func newRisk(orgID primitive.ObjectID, code string, year, p, i int, created time.Time) *models.RiskInput {
	return &models.RiskInput{
		ID:             primitive.NewObjectID(),
		OrganizationID: orgID,
		Code:           code,
		Year:           year,
		Title:          "Risiko " + code,
		Status:         models.RiskOpen,
		Inherent:       models.Assessment{Probability: p, Impact: i, Score: p * i, Level: "x"},
		CreatedAt:      created,
	}
}

func TestInsertGetScopedByOrganization(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	orgA, orgB := primitive.NewObjectID(), primitive.NewObjectID()

	r := newRisk(orgA, "R-1", 2025, 3, 3, time.Now())
	require.NoError(t, s.Risks().Insert(ctx, r))

	got, err := s.Risks().Get(ctx, orgA, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "R-1", got.Code)
	assert.Equal(t, 9, got.Inherent.Score)

	_, err = s.Risks().Get(ctx, orgB, r.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestInsertRequiresID(t *testing.T) {
	s := memstore.New()
	err := s.WorkUnits().Insert(context.Background(), &models.WorkUnit{Code: "IGD"})
	assert.Error(t, err)
}

func TestUniqueIndexes(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	orgA, orgB := primitive.NewObjectID(), primitive.NewObjectID()

	require.NoError(t, s.WorkUnits().Insert(ctx, &models.WorkUnit{ID: primitive.NewObjectID(), OrganizationID: orgA, Code: "IGD"}))
	err := s.WorkUnits().Insert(ctx, &models.WorkUnit{ID: primitive.NewObjectID(), OrganizationID: orgA, Code: "IGD"})
	assert.ErrorIs(t, err, apperr.ErrConflict)
	require.NoError(t, s.WorkUnits().Insert(ctx, &models.WorkUnit{ID: primitive.NewObjectID(), OrganizationID: orgB, Code: "IGD"}))

	u1 := &models.User{ID: primitive.NewObjectID(), OrganizationID: orgA, Email: "a@rs.id"}
	require.NoError(t, s.Users().Insert(ctx, u1))
	err = s.Users().Insert(ctx, &models.User{ID: primitive.NewObjectID(), OrganizationID: orgB, Email: "a@rs.id"})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestListFilterSortPaginate(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	org := primitive.NewObjectID()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.Risks().Insert(ctx, newRisk(org, "R-1", 2024, 1, 1, base)))
	require.NoError(t, s.Risks().Insert(ctx, newRisk(org, "R-2", 2025, 5, 5, base.Add(time.Hour))))
	require.NoError(t, s.Risks().Insert(ctx, newRisk(org, "R-3", 2025, 2, 3, base.Add(2*time.Hour))))
	require.NoError(t, s.Risks().Insert(ctx, newRisk(primitive.NewObjectID(), "R-9", 2025, 2, 3, base)))

	all, err := s.Risks().List(ctx, store.Query{OrganizationID: org, Sort: "-createdAt"})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"R-3", "R-2", "R-1"}, []string{all[0].Code, all[1].Code, all[2].Code})

	y2025, err := s.Risks().List(ctx, store.Query{OrganizationID: org, Filter: bson.M{"year": 2025}, Sort: "inherent.score"})
	require.NoError(t, err)
	require.Len(t, y2025, 2)
	assert.Equal(t, "R-3", y2025[0].Code)

	page, err := s.Risks().List(ctx, store.Query{OrganizationID: org, Sort: "code", Skip: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "R-2", page[0].Code)

	n, err := s.Risks().Count(ctx, store.Query{OrganizationID: org, Filter: bson.M{"inherent.probability": 5}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	empty, err := s.Risks().List(ctx, store.Query{OrganizationID: org, Skip: 10})
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestReplaceAndDelete(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	org := primitive.NewObjectID()
	r := newRisk(org, "R-1", 2025, 3, 3, time.Now())
	require.NoError(t, s.Risks().Insert(ctx, r))

	r.Title = "Updated"
	require.NoError(t, s.Risks().Replace(ctx, org, r.ID, r))
	got, err := s.Risks().Get(ctx, org, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Updated", got.Title)

	assert.ErrorIs(t, s.Risks().Replace(ctx, primitive.NewObjectID(), r.ID, r), apperr.ErrNotFound)
	assert.ErrorIs(t, s.Risks().Delete(ctx, primitive.NewObjectID(), r.ID), apperr.ErrNotFound)

	require.NoError(t, s.Risks().Delete(ctx, org, r.ID))
	_, err = s.Risks().Get(ctx, org, r.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestFindOneAndOrganizations(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	org := &models.Organization{ID: primitive.NewObjectID(), Name: "RSUD Contoh"}
	require.NoError(t, s.Organizations().Insert(ctx, org))

	got, err := s.Organizations().Get(ctx, primitive.NilObjectID, org.ID)
	require.NoError(t, err)
	assert.Equal(t, "RSUD Contoh", got.Name)

	u := &models.User{ID: primitive.NewObjectID(), OrganizationID: org.ID, Email: "admin@rs.id"}
	require.NoError(t, s.Users().Insert(ctx, u))
	found, err := s.Users().FindOne(ctx, store.Query{Filter: bson.M{"email": "admin@rs.id"}})
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	_, err = s.Users().FindOne(ctx, store.Query{Filter: bson.M{"email": "none@rs.id"}})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
