package handlers

import (
	"net/http"

	"github.com/Mukhsinh/manajemenresiko-sub007/models"
)

var auditFilter = listFilter{
	idParams:  map[string]string{"userId": "userId", "entityId": "entityId"},
	strParams: map[string]string{"entityType": "entityType", "action": "action"},
}

// ListAuditLogs returns the organization's audit trail, newest first.
func (h *Handler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("entityType") == "all" {
		q := r.URL.Query()
		q.Del("entityType")
		r.URL.RawQuery = q.Encode()
	}
	list[models.AuditLog](h, w, r, h.store.AuditLogs(), auditFilter, "-createdAt")
}
