package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Mukhsinh/manajemenresiko-sub007/handlers"
	"github.com/Mukhsinh/manajemenresiko-sub007/middleware"
	"github.com/Mukhsinh/manajemenresiko-sub007/models"
)

var (
	MethodsGetOnly    = []string{http.MethodGet, http.MethodOptions}
	MethodsPostOnly   = []string{http.MethodPost, http.MethodOptions}
	MethodsPutOnly    = []string{http.MethodPut, http.MethodOptions}
	MethodsDeleteOnly = []string{http.MethodDelete, http.MethodOptions}
)

const (
	PathAPI    = "/api"
	PathHealth = "/health"
	PathWS     = "/ws/audit"

	// idPattern keeps /swot/summary and friends from matching /{id}.
	idPattern = "{id:[0-9a-fA-F]{24}}"
)

// crud registers the five standard handlers of one resource under prefix.
type crud struct {
	list, get, create, update, remove http.HandlerFunc
}

func (c crud) register(r *mux.Router, prefix string) {
	r.HandleFunc(prefix, c.list).Methods(MethodsGetOnly...)
	r.HandleFunc(prefix, c.create).Methods(MethodsPostOnly...)
	r.HandleFunc(prefix+"/"+idPattern, c.get).Methods(MethodsGetOnly...)
	r.HandleFunc(prefix+"/"+idPattern, c.update).Methods(MethodsPutOnly...)
	r.HandleFunc(prefix+"/"+idPattern, c.remove).Methods(MethodsDeleteOnly...)
}

// RegisterRoutes wires the public endpoints, the authenticated /api tree and
// the audit websocket. auth must populate the caller identity.
func RegisterRoutes(r *mux.Router, h *handlers.Handler, ws http.HandlerFunc, auth func(http.Handler) http.Handler) {
	// Public
	r.HandleFunc(PathHealth, h.HealthCheck).Methods(MethodsGetOnly...)
	r.HandleFunc("/api/auth/login", h.Login).Methods(MethodsPostOnly...)
	r.HandleFunc("/api/organizations", h.RegisterOrganization).Methods(MethodsPostOnly...)

	// Websocket, token may come as ?token=
	r.Handle(PathWS, auth(ws)).Methods(http.MethodGet)

	api := r.PathPrefix(PathAPI).Subrouter()
	api.Use(auth)
	api.Use(middleware.WriteGuard)

	api.HandleFunc("/auth/me", h.Me).Methods(MethodsGetOnly...)
	api.HandleFunc("/organization", h.GetOrganization).Methods(MethodsGetOnly...)
	adminOnly := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin)
	api.Handle("/organization", adminOnly(http.HandlerFunc(h.UpdateOrganization))).Methods(MethodsPutOnly...)

	users := api.PathPrefix("/users").Subrouter()
	users.Use(adminOnly)
	crud{h.ListUsers, h.GetUser, h.CreateUser, h.UpdateUser, h.DeleteUser}.register(users, "")

	// Master data
	crud{h.ListWorkUnits, h.GetWorkUnit, h.CreateWorkUnit, h.UpdateWorkUnit, h.DeleteWorkUnit}.register(api, "/master/work-units")
	crud{h.ListRiskCategories, h.GetRiskCategory, h.CreateRiskCategory, h.UpdateRiskCategory, h.DeleteRiskCategory}.register(api, "/master/risk-categories")

	// Strategic planning
	crud{h.ListRencanaStrategis, h.GetRencanaStrategis, h.CreateRencanaStrategis, h.UpdateRencanaStrategis, h.DeleteRencanaStrategis}.register(api, "/rencana-strategis")
	api.HandleFunc("/rencana-strategis/"+idPattern+"/completeness", h.RencanaCompleteness).Methods(MethodsGetOnly...)

	api.HandleFunc("/swot/summary", h.SwotSummary).Methods(MethodsGetOnly...)
	crud{h.ListSwot, h.GetSwot, h.CreateSwot, h.UpdateSwot, h.DeleteSwot}.register(api, "/swot")

	api.HandleFunc("/tows/matrix", h.TowsMatrix).Methods(MethodsGetOnly...)
	crud{h.ListTows, h.GetTows, h.CreateTows, h.UpdateTows, h.DeleteTows}.register(api, "/tows")

	crud{h.ListSasaran, h.GetSasaran, h.CreateSasaran, h.UpdateSasaran, h.DeleteSasaran}.register(api, "/sasaran-strategi")

	// Risk management
	crud{h.ListRisks, h.GetRisk, h.CreateRisk, h.UpdateRisk, h.DeleteRisk}.register(api, "/risks")
	api.HandleFunc("/risks/"+idPattern+"/residual", h.UpdateResidual).Methods(MethodsPutOnly...)

	crud{h.ListMonitoring, h.GetMonitoring, h.CreateMonitoring, h.UpdateMonitoring, h.DeleteMonitoring}.register(api, "/monitoring-evaluasi")
	crud{h.ListPeluang, h.GetPeluang, h.CreatePeluang, h.UpdatePeluang, h.DeletePeluang}.register(api, "/peluang")

	// Views
	api.HandleFunc("/dashboard", h.GetDashboard).Methods(MethodsGetOnly...)
	api.HandleFunc("/risk-profile", h.GetRiskProfile).Methods(MethodsGetOnly...)
	api.HandleFunc("/reports", h.ListReportTypes).Methods(MethodsGetOnly...)
	api.HandleFunc("/reports/{type}", h.GetReport).Methods(MethodsGetOnly...)
	api.HandleFunc("/audit", h.ListAuditLogs).Methods(MethodsGetOnly...)
}
