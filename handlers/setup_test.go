package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Mukhsinh/manajemenresiko-sub007/handlers"
	"github.com/Mukhsinh/manajemenresiko-sub007/middleware"
	"github.com/Mukhsinh/manajemenresiko-sub007/models"
	"github.com/Mukhsinh/manajemenresiko-sub007/routes"
	"github.com/Mukhsinh/manajemenresiko-sub007/store/memstore"
	"github.com/Mukhsinh/manajemenresiko-sub007/utils"
	"github.com/Mukhsinh/manajemenresiko-sub007/websocket"
)

const testPassword = "rahasia123"

var bgCtx = context.Background()

func init() {
	utils.SetBcryptCost(4)
}

type published struct {
	org primitive.ObjectID
	ev  websocket.Event
}

type recorder struct {
	mu     sync.Mutex
	events []published
}

func (r *recorder) Publish(orgID primitive.ObjectID, ev websocket.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, published{orgID, ev})
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, p := range r.events {
		out[i] = p.ev.Type
	}
	return out
}

type testEnv struct {
	t      *testing.T
	st     *memstore.Store
	signer *utils.TokenSigner
	events *recorder
	router http.Handler
	org    primitive.ObjectID
	tokens map[string]string
	users  map[string]primitive.ObjectID
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html><body>app</body></html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log('app')"), 0o644))

	e := &testEnv{
		t:      t,
		st:     memstore.New(),
		signer: utils.NewTokenSigner([]byte("test-secret"), time.Hour),
		events: &recorder{},
		tokens: map[string]string{},
		users:  map[string]primitive.ObjectID{},
	}
	log := zap.NewNop()
	h := handlers.New(e.st, e.signer, e.events, log)
	e.router = routes.NewRouter(routes.Options{
		Handler: h,
		WebSocket: func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("ws"))
		},
		Auth:      middleware.Auth(e.st, e.signer, log),
		StaticDir: dir,
		Log:       log,
	})

	e.org = e.addOrg("RSUD Uji")
	for _, role := range []string{models.RoleSuperAdmin, models.RoleAdmin, models.RoleManager, models.RoleViewer} {
		e.users[role], e.tokens[role] = e.addUser(e.org, role+"@rs.test", role)
	}
	return e
}

func (e *testEnv) addOrg(name string) primitive.ObjectID {
	e.t.Helper()
	org := models.Organization{ID: primitive.NewObjectID(), Name: name, Type: "rumah_sakit"}
	require.NoError(e.t, e.st.Organizations().Insert(bgCtx, &org))
	return org.ID
}

func (e *testEnv) addUser(org primitive.ObjectID, email, role string) (primitive.ObjectID, string) {
	e.t.Helper()
	hash, err := utils.HashPassword(testPassword)
	require.NoError(e.t, err)
	u := models.User{
		ID:             primitive.NewObjectID(),
		FullName:       "User " + role,
		Email:          email,
		PasswordHash:   hash,
		Role:           role,
		OrganizationID: org,
	}
	require.NoError(e.t, e.st.Users().Insert(bgCtx, &u))
	token, err := e.signer.Generate(u.ID.Hex(), u.FullName, u.Role, org.Hex())
	require.NoError(e.t, err)
	return u.ID, token
}

// do sends body (marshalled unless nil) with the token of role; an empty role sends no token.
func (e *testEnv) do(method, path, role string, body interface{}) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		token, ok := e.tokens[role]
		if !ok {
			token = role
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// mustDo is do plus a status assertion and JSON decoding into out.
func (e *testEnv) mustDo(method, path, role string, body interface{}, status int, out interface{}) {
	e.t.Helper()
	rec := e.do(method, path, role, body)
	require.Equal(e.t, status, rec.Code, "%s %s: %s", method, path, rec.Body.String())
	if out != nil {
		require.NoError(e.t, json.Unmarshal(rec.Body.Bytes(), out))
	}
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body["error"]
}

type idOnly struct {
	ID string `json:"id"`
}

// masters creates one work unit and one risk category as the manager.
func (e *testEnv) masters() (unitID, categoryID string) {
	e.t.Helper()
	var unit, cat idOnly
	e.mustDo(http.MethodPost, "/api/master/work-units", models.RoleManager,
		map[string]string{"code": "igd", "name": "Instalasi Gawat Darurat", "type": "medis"}, http.StatusCreated, &unit)
	e.mustDo(http.MethodPost, "/api/master/risk-categories", models.RoleManager,
		map[string]string{"code": "KLN", "name": "Klinis"}, http.StatusCreated, &cat)
	return unit.ID, cat.ID
}

func (e *testEnv) createRisk(unitID, categoryID string, p, i int) models.RiskInput {
	e.t.Helper()
	var risk models.RiskInput
	e.mustDo(http.MethodPost, "/api/risks", models.RoleManager, map[string]interface{}{
		"workUnitId":        unitID,
		"categoryId":        categoryID,
		"year":              2025,
		"title":             "Pasien jatuh",
		"cause":             "Lantai licin",
		"impactDescription": "Cedera pasien",
		"inherent":          map[string]int{"probability": p, "impact": i},
	}, http.StatusCreated, &risk)
	return risk
}
