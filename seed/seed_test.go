package seed_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Mukhsinh/manajemenresiko-sub007/apperr"
	"github.com/Mukhsinh/manajemenresiko-sub007/models"
	"github.com/Mukhsinh/manajemenresiko-sub007/seed"
	"github.com/Mukhsinh/manajemenresiko-sub007/store"
	"github.com/Mukhsinh/manajemenresiko-sub007/store/memstore"
	"github.com/Mukhsinh/manajemenresiko-sub007/utils"
)

func init() {
	utils.SetBcryptCost(4)
}

func TestDefaultFixtures(t *testing.T) {
	fx, err := seed.Default()
	require.NoError(t, err)
	assert.Equal(t, "RSUD Bendan", fx.Organization.Name)
	assert.Equal(t, models.RoleSuperAdmin, fx.Users[0].Role)
	assert.NotEmpty(t, fx.WorkUnits)
	assert.NotEmpty(t, fx.Risks)
}

func TestParseRejectsEmpty(t *testing.T) {
	_, err := seed.Parse([]byte("users: []\n"))
	assert.Error(t, err)

	_, err = seed.Parse([]byte("organization: [broken"))
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	fx, err := seed.Default()
	require.NoError(t, err)

	res, err := seed.New(st, zap.NewNop()).Run(ctx, fx, seed.Options{Synthetic: 10, RandSeed: 7})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Counts["organizations"])
	assert.Equal(t, len(fx.Users), res.Counts["users"])
	assert.Equal(t, len(fx.Risks)+10, res.Counts["risks"])
	assert.Empty(t, res.Passwords)

	q := store.Query{OrganizationID: res.OrganizationID}
	n, err := st.Risks().Count(ctx, q)
	require.NoError(t, err)
	assert.EqualValues(t, len(fx.Risks)+10, n)

	admin, err := st.Users().FindOne(ctx, store.Query{Filter: bson.M{"email": "admin@rsud-bendan.go.id"}})
	require.NoError(t, err)
	assert.True(t, utils.CheckPasswordHash(fx.Users[0].Password, admin.PasswordHash))

	risks, err := st.Risks().List(ctx, q)
	require.NoError(t, err)
	for _, r := range risks {
		assert.Equal(t, 2025, r.Year)
		if r.Residual != nil {
			assert.LessOrEqual(t, r.Residual.Score, r.Inherent.Score, r.Code)
		}
	}

	first, err := st.Risks().FindOne(ctx, store.Query{
		OrganizationID: res.OrganizationID,
		Filter:         bson.M{"code": "RSK-2025-0001"},
	})
	require.NoError(t, err)
	assert.NotNil(t, first.SasaranStrategiID)
	require.NotNil(t, first.Residual)
	assert.Equal(t, models.RiskMitigated, first.Status)

	_, err = seed.New(st, zap.NewNop()).Run(ctx, fx, seed.Options{})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestRunGeneratesMissingPasswords(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	fx, err := seed.Parse([]byte(`
organization: {name: Klinik Uji}
users:
  - {fullName: Admin, email: Admin@Klinik.test, role: admin}
`))
	require.NoError(t, err)

	res, err := seed.New(st, zap.NewNop()).Run(ctx, fx, seed.Options{Year: 2025})
	require.NoError(t, err)

	password := res.Passwords["admin@klinik.test"]
	require.Len(t, password, 12)
	admin, err := st.Users().FindOne(ctx, store.Query{Filter: bson.M{"email": "admin@klinik.test"}})
	require.NoError(t, err)
	assert.True(t, utils.CheckPasswordHash(password, admin.PasswordHash))
}

func TestRunRejectsUnknownUnit(t *testing.T) {
	fx, err := seed.Parse([]byte(`
organization: {name: Klinik Uji}
users:
  - {fullName: Admin, email: admin@klinik.test, password: secret123, role: admin}
risks:
  - {unit: XXX, category: KLN, title: Uji, probability: 2, impact: 2}
`))
	require.NoError(t, err)

	_, err = seed.New(memstore.New(), zap.NewNop()).Run(context.Background(), fx, seed.Options{Year: 2025})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestGenerate(t *testing.T) {
	org := primitive.NewObjectID()
	units := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID()}
	cats := []primitive.ObjectID{primitive.NewObjectID()}

	a := seed.Generate(rand.New(rand.NewSource(1)), 25, org, units, cats, 2026)
	b := seed.Generate(rand.New(rand.NewSource(1)), 25, org, units, cats, 2026)
	require.Len(t, a, 25)

	for i := range a {
		assert.Equal(t, a[i].Title, b[i].Title)
		assert.Equal(t, a[i].Inherent, b[i].Inherent)
		assert.Equal(t, org, a[i].OrganizationID)
		assert.Contains(t, units, a[i].WorkUnitID)
		assert.Equal(t, a[i].Inherent.Probability*a[i].Inherent.Impact, a[i].Inherent.Score)
		if a[i].Residual != nil {
			assert.LessOrEqual(t, a[i].Residual.Score, a[i].Inherent.Score)
		}
	}

	assert.Nil(t, seed.Generate(rand.New(rand.NewSource(1)), 5, org, nil, cats, 2026))
}
