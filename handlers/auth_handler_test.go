package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mukhsinh/manajemenresiko-sub007/models"
)

type authBody struct {
	Token        string              `json:"token"`
	User         models.User         `json:"user"`
	Organization models.Organization `json:"organization"`
}

func TestLogin(t *testing.T) {
	e := newEnv(t)

	var resp authBody
	e.mustDo(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "  Manager@RS.test ", "password": testPassword,
	}, http.StatusOK, &resp)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, models.RoleManager, resp.User.Role)
	assert.Equal(t, "RSUD Uji", resp.Organization.Name)

	claims, err := e.signer.Validate(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, e.org.Hex(), claims.OrganizationID)

	rec := e.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "manager@rs.test", "password": "salah"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "manager@rs.test"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginResponseHidesPasswordHash(t *testing.T) {
	e := newEnv(t)
	rec := e.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "admin@rs.test", "password": testPassword})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "passwordHash")
	assert.NotContains(t, rec.Body.String(), "$2a$")
}

func TestMe(t *testing.T) {
	e := newEnv(t)
	var me models.User
	e.mustDo(http.MethodGet, "/api/auth/me", models.RoleViewer, nil, http.StatusOK, &me)
	assert.Equal(t, "viewer@rs.test", me.Email)
}

func TestAuthRequired(t *testing.T) {
	e := newEnv(t)
	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/api/risks", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/api/risks", "not-a-jwt", nil).Code)
}

func TestViewerIsReadOnly(t *testing.T) {
	e := newEnv(t)
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/api/master/work-units", models.RoleViewer, nil).Code)

	rec := e.do(http.MethodPost, "/api/master/work-units", models.RoleViewer, map[string]string{"code": "IGD", "name": "IGD"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRegisterOrganization(t *testing.T) {
	e := newEnv(t)

	body := map[string]string{
		"name":          "RS Sehat",
		"type":          "rumah_sakit",
		"adminName":     "Dr. Sehat",
		"adminEmail":    "Direktur@RSSehat.test",
		"adminPassword": "sangat-rahasia",
	}
	var resp authBody
	e.mustDo(http.MethodPost, "/api/organizations", "", body, http.StatusCreated, &resp)
	assert.Equal(t, models.RoleSuperAdmin, resp.User.Role)
	assert.Equal(t, "direktur@rssehat.test", resp.User.Email)
	assert.NotEqual(t, e.org, resp.Organization.ID)

	e.tokens["other"] = resp.Token
	var org models.Organization
	e.mustDo(http.MethodGet, "/api/organization", "other", nil, http.StatusOK, &org)
	assert.Equal(t, "RS Sehat", org.Name)

	rec := e.do(http.MethodPost, "/api/organizations", "", body)
	assert.Equal(t, http.StatusConflict, rec.Code)

	body["adminEmail"] = "baru@rssehat.test"
	body["adminPassword"] = "pendek"
	rec = e.do(http.MethodPost, "/api/organizations", "", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateOrganization(t *testing.T) {
	e := newEnv(t)
	var org models.Organization
	e.mustDo(http.MethodPut, "/api/organization", models.RoleAdmin, map[string]string{
		"name": "RSUD Uji Baru", "type": "rumah_sakit", "address": "Jl. Merdeka 1",
	}, http.StatusOK, &org)
	assert.Equal(t, "RSUD Uji Baru", org.Name)
	assert.Equal(t, "Jl. Merdeka 1", org.Address)

	rec := e.do(http.MethodPut, "/api/organization", models.RoleManager, map[string]string{"name": "X"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
