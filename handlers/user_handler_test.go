package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mukhsinh/manajemenresiko-sub007/models"
)

type userPage struct {
	Data  []models.User `json:"data"`
	Total int64         `json:"total"`
}

func TestUserManagementRequiresAdmin(t *testing.T) {
	e := newEnv(t)
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodGet, "/api/users", models.RoleManager, nil).Code)
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodGet, "/api/users", models.RoleViewer, nil).Code)

	var page userPage
	e.mustDo(http.MethodGet, "/api/users?role=viewer", models.RoleAdmin, nil, http.StatusOK, &page)
	assert.EqualValues(t, 1, page.Total)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "viewer@rs.test", page.Data[0].Email)
}

func TestCreateUser(t *testing.T) {
	e := newEnv(t)
	unitID, _ := e.masters()

	var u models.User
	e.mustDo(http.MethodPost, "/api/users", models.RoleAdmin, map[string]string{
		"fullName":   "Perawat IGD",
		"email":      "Perawat@RS.test",
		"role":       models.RoleManager,
		"workUnitId": unitID,
		"password":   "perawat-123",
	}, http.StatusCreated, &u)
	assert.Equal(t, "perawat@rs.test", u.Email)
	require.NotNil(t, u.WorkUnitID)
	assert.Equal(t, unitID, u.WorkUnitID.Hex())

	var login authBody
	e.mustDo(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "perawat@rs.test", "password": "perawat-123",
	}, http.StatusOK, &login)

	rec := e.do(http.MethodPost, "/api/users", models.RoleAdmin, map[string]string{
		"fullName": "Lagi", "email": "perawat@rs.test", "role": models.RoleViewer, "password": "perawat-123",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = e.do(http.MethodPost, "/api/users", models.RoleAdmin, map[string]string{
		"fullName": "Super", "email": "super@rs.test", "role": models.RoleSuperAdmin, "password": "perawat-123",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(http.MethodPost, "/api/users", models.RoleAdmin, map[string]string{
		"fullName": "Tanpa Sandi", "email": "x@rs.test", "role": models.RoleViewer,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// A work unit referenced by a user cannot be removed.
	rec = e.do(http.MethodDelete, "/api/master/work-units/"+unitID, models.RoleManager, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUpdateAndDeleteUser(t *testing.T) {
	e := newEnv(t)
	viewer := e.users[models.RoleViewer].Hex()

	var u models.User
	e.mustDo(http.MethodPut, "/api/users/"+viewer, models.RoleAdmin, map[string]string{
		"fullName": "Direktur Utama", "email": "viewer@rs.test", "role": models.RoleManager,
	}, http.StatusOK, &u)
	assert.Equal(t, models.RoleManager, u.Role)

	// Stored role wins over the token claim.
	assert.Equal(t, http.StatusCreated, e.do(http.MethodPost, "/api/master/risk-categories", models.RoleViewer,
		map[string]string{"code": "OPR", "name": "Operasional"}).Code)

	self := e.users[models.RoleAdmin].Hex()
	rec := e.do(http.MethodPut, "/api/users/"+self, models.RoleAdmin, map[string]string{
		"fullName": "Admin", "email": "admin@rs.test", "role": models.RoleSuperAdmin,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(http.MethodDelete, "/api/users/"+self, models.RoleAdmin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	super := e.users[models.RoleSuperAdmin].Hex()
	rec = e.do(http.MethodDelete, "/api/users/"+super, models.RoleAdmin, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	e.mustDo(http.MethodDelete, "/api/users/"+viewer, models.RoleAdmin, nil, http.StatusOK, nil)
	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/api/auth/me", models.RoleViewer, nil).Code)
}

func TestUsersAreScopedToOrganization(t *testing.T) {
	e := newEnv(t)
	other := e.addOrg("RS Lain")
	id, _ := e.addUser(other, "orang@lain.test", models.RoleViewer)

	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/api/users/"+id.Hex(), models.RoleAdmin, nil).Code)
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodGet, "/api/users/bukan-id", models.RoleAdmin, nil).Code)
}
