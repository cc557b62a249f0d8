// handlers/organization_handler.go
package handlers

import (
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Mukhsinh/manajemenresiko-sub007/utils"
)

func (h *Handler) GetOrganization(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r)
	defer cancel()

	org, err := h.store.Organizations().Get(ctx, primitive.NilObjectID, caller(r).OrgID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, org)
}

type updateOrganizationRequest struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

func (h *Handler) UpdateOrganization(w http.ResponseWriter, r *http.Request) {
	var req updateOrganizationRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := requireText("name", req.Name); err != nil {
		h.fail(w, r, err)
		return
	}

	ctx, cancel := withTimeout(r)
	defer cancel()

	orgID := caller(r).OrgID
	org, err := h.store.Organizations().Get(ctx, primitive.NilObjectID, orgID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	org.Name = req.Name
	if req.Type != "" {
		org.Type = req.Type
	}
	org.Address = req.Address
	org.Phone = req.Phone
	org.UpdatedAt = time.Now().UTC()

	if err := h.store.Organizations().Replace(ctx, primitive.NilObjectID, orgID, org); err != nil {
		h.fail(w, r, err)
		return
	}

	h.audit(ctx, r, "organization", "update", orgID, bson.M{"name": org.Name})
	utils.RespondWithJSON(w, http.StatusOK, org)
}
