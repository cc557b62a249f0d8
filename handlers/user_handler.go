// handlers/user_handler.go
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Mukhsinh/manajemenresiko-sub007/apperr"
	"github.com/Mukhsinh/manajemenresiko-sub007/models"
	"github.com/Mukhsinh/manajemenresiko-sub007/utils"
)

var userFilter = listFilter{
	idParams:  map[string]string{"unitId": "workUnitId"},
	strParams: map[string]string{"role": "role"},
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	list(h, w, r, h.store.Users(), userFilter, "fullName")
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	get(h, w, r, h.store.Users())
}

type userRequest struct {
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	JobTitle   string `json:"jobTitle,omitempty"`
	Role       string `json:"role"`
	WorkUnitID string `json:"workUnitId,omitempty"`
	Password   string `json:"password,omitempty"`
}

func (req userRequest) validate(creating bool) error {
	if err := requireText("fullName", req.FullName); err != nil {
		return err
	}
	if !strings.Contains(req.Email, "@") {
		return apperr.Validation("email is not a valid email address")
	}
	if !models.ValidRole(req.Role) {
		return apperr.Validation("role must be one of superadmin, admin, manager, viewer")
	}
	if creating || req.Password != "" {
		if len(req.Password) < minPasswordLength {
			return apperr.Validation("password must be at least %d characters", minPasswordLength)
		}
	}
	return nil
}

// assignable keeps admins from granting a role above their own.
func assignable(callerRole, role string) bool {
	if role == models.RoleSuperAdmin {
		return callerRole == models.RoleSuperAdmin
	}
	return true
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := req.validate(true); err != nil {
		h.fail(w, r, err)
		return
	}
	who := caller(r)
	if !assignable(who.Role, req.Role) {
		utils.RespondWithError(w, http.StatusForbidden, "only a superadmin can create a superadmin")
		return
	}
	unitID, err := parseRef("workUnitId", req.WorkUnitID, false)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	ctx, cancel := withTimeout(r)
	defer cancel()

	if unitID != nil {
		if err := exists(ctx, h.store.WorkUnits(), who.OrgID, *unitID, "workUnitId"); err != nil {
			h.fail(w, r, err)
			return
		}
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	now := time.Now().UTC()
	user := models.User{
		ID:             primitive.NewObjectID(),
		FullName:       req.FullName,
		Email:          normalizeEmail(req.Email),
		JobTitle:       req.JobTitle,
		PasswordHash:   hash,
		Role:           req.Role,
		WorkUnitID:     unitID,
		OrganizationID: who.OrgID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := h.store.Users().Insert(ctx, &user); err != nil {
		h.fail(w, r, err)
		return
	}

	h.audit(ctx, r, "user", "create", user.ID, bson.M{"email": user.Email, "role": user.Role})
	utils.RespondWithJSON(w, http.StatusCreated, user)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req userRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := req.validate(false); err != nil {
		h.fail(w, r, err)
		return
	}
	who := caller(r)
	unitID, err := parseRef("workUnitId", req.WorkUnitID, false)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	ctx, cancel := withTimeout(r)
	defer cancel()

	user, err := h.store.Users().Get(ctx, who.OrgID, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !assignable(who.Role, req.Role) || !assignable(who.Role, user.Role) {
		utils.RespondWithError(w, http.StatusForbidden, "only a superadmin can manage a superadmin")
		return
	}
	if user.ID == who.UserID && req.Role != user.Role {
		utils.RespondWithError(w, http.StatusBadRequest, "you cannot change your own role")
		return
	}
	if unitID != nil {
		if err := exists(ctx, h.store.WorkUnits(), who.OrgID, *unitID, "workUnitId"); err != nil {
			h.fail(w, r, err)
			return
		}
	}

	user.FullName = req.FullName
	user.Email = normalizeEmail(req.Email)
	user.JobTitle = req.JobTitle
	user.Role = req.Role
	user.WorkUnitID = unitID
	if req.Password != "" {
		if user.PasswordHash, err = utils.HashPassword(req.Password); err != nil {
			h.fail(w, r, err)
			return
		}
	}
	user.UpdatedAt = time.Now().UTC()

	if err := h.store.Users().Replace(ctx, who.OrgID, id, user); err != nil {
		h.fail(w, r, err)
		return
	}

	h.audit(ctx, r, "user", "update", id, bson.M{"email": user.Email, "role": user.Role})
	utils.RespondWithJSON(w, http.StatusOK, user)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	who := caller(r)
	remove(h, w, r, h.store.Users(), "user", func(ctx context.Context, orgID, id primitive.ObjectID) error {
		if id == who.UserID {
			return apperr.Validation("you cannot delete your own account")
		}
		target, err := h.store.Users().Get(ctx, orgID, id)
		if err != nil {
			return err
		}
		if !assignable(who.Role, target.Role) {
			return apperr.Forbidden("only a superadmin can manage a superadmin")
		}
		return nil
	})
}
