// handlers/auth_handler.go
package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Mukhsinh/manajemenresiko-sub007/apperr"
	"github.com/Mukhsinh/manajemenresiko-sub007/models"
	"github.com/Mukhsinh/manajemenresiko-sub007/store"
	"github.com/Mukhsinh/manajemenresiko-sub007/utils"
)

const minPasswordLength = 8

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token        string               `json:"token"`
	User         *models.User         `json:"user"`
	Organization *models.Organization `json:"organization,omitempty"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	ctx, cancel := withTimeout(r)
	defer cancel()

	user, err := h.store.Users().FindOne(ctx, store.Query{Filter: bson.M{"email": normalizeEmail(req.Email)}})
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		h.fail(w, r, err)
		return
	}
	if user == nil || !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		utils.RespondWithError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := h.signer.Generate(user.ID.Hex(), user.FullName, user.Role, user.OrganizationID.Hex())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	org, err := h.store.Organizations().Get(ctx, primitive.NilObjectID, user.OrganizationID)
	if err != nil {
		h.log.Warn("login: organization lookup failed", zap.String("userId", user.ID.Hex()), zap.Error(err))
		org = nil
	}

	h.log.Info("user logged in", zap.String("userId", user.ID.Hex()), zap.String("role", user.Role))
	utils.RespondWithJSON(w, http.StatusOK, authResponse{Token: token, User: user, Organization: org})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r)
	defer cancel()

	user, err := h.store.Users().Get(ctx, primitive.NilObjectID, caller(r).UserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, user)
}

type registerOrganizationRequest struct {
	Name          string `json:"name"`
	Type          string `json:"type"`
	Address       string `json:"address,omitempty"`
	Phone         string `json:"phone,omitempty"`
	AdminName     string `json:"adminName"`
	AdminEmail    string `json:"adminEmail"`
	AdminJobTitle string `json:"adminJobTitle,omitempty"`
	AdminPassword string `json:"adminPassword"`
}

func (req registerOrganizationRequest) validate() error {
	for field, v := range map[string]string{
		"name":          req.Name,
		"type":          req.Type,
		"adminName":     req.AdminName,
		"adminEmail":    req.AdminEmail,
		"adminPassword": req.AdminPassword,
	} {
		if err := requireText(field, v); err != nil {
			return err
		}
	}
	if !strings.Contains(req.AdminEmail, "@") {
		return apperr.Validation("adminEmail is not a valid email address")
	}
	if len(req.AdminPassword) < minPasswordLength {
		return apperr.Validation("adminPassword must be at least %d characters", minPasswordLength)
	}
	return nil
}

// RegisterOrganization creates an organization with its first superadmin and logs them in.
func (h *Handler) RegisterOrganization(w http.ResponseWriter, r *http.Request) {
	var req registerOrganizationRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		h.fail(w, r, err)
		return
	}

	ctx, cancel := withTimeout(r)
	defer cancel()

	email := normalizeEmail(req.AdminEmail)
	n, err := h.store.Users().Count(ctx, store.Query{Filter: bson.M{"email": email}})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if n > 0 {
		utils.RespondWithError(w, http.StatusConflict, "admin email already exists")
		return
	}

	hash, err := utils.HashPassword(req.AdminPassword)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	now := time.Now().UTC()
	org := models.Organization{
		ID:        primitive.NewObjectID(),
		Name:      req.Name,
		Type:      req.Type,
		Address:   req.Address,
		Phone:     req.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.store.Organizations().Insert(ctx, &org); err != nil {
		h.fail(w, r, err)
		return
	}

	user := models.User{
		ID:             primitive.NewObjectID(),
		FullName:       req.AdminName,
		Email:          email,
		JobTitle:       req.AdminJobTitle,
		PasswordHash:   hash,
		Role:           models.RoleSuperAdmin,
		OrganizationID: org.ID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := h.store.Users().Insert(ctx, &user); err != nil {
		_ = h.store.Organizations().Delete(ctx, primitive.NilObjectID, org.ID)
		h.fail(w, r, err)
		return
	}

	token, err := h.signer.Generate(user.ID.Hex(), user.FullName, user.Role, org.ID.Hex())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.log.Info("organization registered", zap.String("orgId", org.ID.Hex()), zap.String("name", org.Name))
	utils.RespondWithJSON(w, http.StatusCreated, authResponse{Token: token, User: &user, Organization: &org})
}
