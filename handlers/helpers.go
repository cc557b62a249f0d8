package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Mukhsinh/manajemenresiko-sub007/apperr"
	"github.com/Mukhsinh/manajemenresiko-sub007/middleware"
	"github.com/Mukhsinh/manajemenresiko-sub007/models"
	"github.com/Mukhsinh/manajemenresiko-sub007/store"
	"github.com/Mukhsinh/manajemenresiko-sub007/utils"
	"github.com/Mukhsinh/manajemenresiko-sub007/websocket"
)

const (
	requestTimeout = 10 * time.Second
	defaultLimit   = 50
	maxLimit       = 500
	maxTitleLength = 200
)

func withTimeout(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), requestTimeout)
}

func caller(r *http.Request) middleware.Identity {
	id, _ := middleware.IdentityFrom(r.Context())
	return id
}

// fail writes err as a JSON error, hiding the details of unexpected failures.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		h.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("requestId", middleware.RequestIDFrom(r.Context())),
			zap.Error(err),
		)
		utils.RespondWithError(w, status, "internal server error")
		return
	}
	utils.RespondWithError(w, status, apperr.PublicMessage(err, http.StatusText(status)))
}

func decode(r *http.Request, v interface{}) error {
	if err := utils.ParseJSON(r, v); err != nil {
		return apperr.Validation("invalid payload")
	}
	return nil
}

func pathID(r *http.Request, key string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)[key])
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("invalid %s", key)
	}
	return id, nil
}

// parseRef parses a hex ObjectID named field; empty input is an error only when required.
func parseRef(field, hex string, required bool) (*primitive.ObjectID, error) {
	if hex == "" {
		if required {
			return nil, apperr.Validation("%s is required", field)
		}
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return nil, apperr.Validation("invalid %s", field)
	}
	return &id, nil
}

func mustRef(field, hex string) (primitive.ObjectID, error) {
	id, err := parseRef(field, hex, true)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return *id, nil
}

func requireText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperr.Validation("%s is required", field)
	}
	return nil
}

func requireTitle(field, value string) error {
	if err := requireText(field, value); err != nil {
		return err
	}
	if len(value) > maxTitleLength {
		return apperr.Validation("%s must be less than %d characters", field, maxTitleLength)
	}
	return nil
}

func oneOf(field, value string, allowed []string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return apperr.Validation("%s must be one of %s", field, strings.Join(allowed, ", "))
}

// exists verifies a referenced record belongs to the caller's organization.
func exists[T any](ctx context.Context, repo store.Repository[T], orgID, id primitive.ObjectID, field string) error {
	if _, err := repo.Get(ctx, orgID, id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.Validation("%s does not exist", field)
		}
		return err
	}
	return nil
}

// inUse rejects deletion while other records reference id through field.
func inUse[T any](ctx context.Context, repo store.Repository[T], orgID primitive.ObjectID, field string, id primitive.ObjectID, what string) error {
	n, err := repo.Count(ctx, store.Query{OrganizationID: orgID, Filter: bson.M{field: id}})
	if err != nil {
		return err
	}
	if n > 0 {
		return apperr.Conflict("still referenced by %d %s record(s)", n, what)
	}
	return nil
}

// Page is the envelope of list endpoints.
type Page[T any] struct {
	Data  []T   `json:"data"`
	Total int64 `json:"total"`
	Page  int64 `json:"page"`
	Limit int64 `json:"limit"`
}

func pagination(r *http.Request) (page, limit int64, err error) {
	page, limit = 1, defaultLimit
	q := r.URL.Query()
	if s := q.Get("page"); s != "" {
		if page, err = strconv.ParseInt(s, 10, 64); err != nil || page < 1 {
			return 0, 0, apperr.Validation("page must be a positive integer")
		}
	}
	if s := q.Get("limit"); s != "" {
		if limit, err = strconv.ParseInt(s, 10, 64); err != nil || limit < 1 {
			return 0, 0, apperr.Validation("limit must be a positive integer")
		}
		if limit > maxLimit {
			limit = maxLimit
		}
	}
	return page, limit, nil
}

// listFilter copies the allowed query parameters into an equality filter.
// idParams are parsed as ObjectIDs, intParams as integers, the rest as strings.
type listFilter struct {
	idParams  map[string]string // query param -> bson field
	intParams map[string]string
	strParams map[string]string
}

func (f listFilter) build(r *http.Request) (bson.M, error) {
	q := r.URL.Query()
	out := bson.M{}
	for param, field := range f.idParams {
		if v := q.Get(param); v != "" {
			id, err := primitive.ObjectIDFromHex(v)
			if err != nil {
				return nil, apperr.Validation("invalid %s", param)
			}
			out[field] = id
		}
	}
	for param, field := range f.intParams {
		if v := q.Get(param); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, apperr.Validation("%s must be an integer", param)
			}
			out[field] = n
		}
	}
	for param, field := range f.strParams {
		if v := q.Get(param); v != "" {
			out[field] = v
		}
	}
	return out, nil
}

// list serves a paginated, filtered list of one collection.
func list[T any](h *Handler, w http.ResponseWriter, r *http.Request, repo store.Repository[T], f listFilter, sort string) {
	page, limit, err := pagination(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	filter, err := f.build(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	ctx, cancel := withTimeout(r)
	defer cancel()

	q := store.Query{OrganizationID: caller(r).OrgID, Filter: filter, Sort: sort}
	total, err := repo.Count(ctx, q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	q.Skip, q.Limit = (page-1)*limit, limit
	items, err := repo.List(ctx, q)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, Page[T]{Data: items, Total: total, Page: page, Limit: limit})
}

// get serves one record by its {id} path variable.
func get[T any](h *Handler, w http.ResponseWriter, r *http.Request, repo store.Repository[T]) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := withTimeout(r)
	defer cancel()

	doc, err := repo.Get(ctx, caller(r).OrgID, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, doc)
}

// remove deletes the {id} record after guard approves it.
func remove[T any](h *Handler, w http.ResponseWriter, r *http.Request, repo store.Repository[T], entity string, guard func(ctx context.Context, orgID, id primitive.ObjectID) error) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := withTimeout(r)
	defer cancel()

	orgID := caller(r).OrgID
	if _, err := repo.Get(ctx, orgID, id); err != nil {
		h.fail(w, r, err)
		return
	}
	if guard != nil {
		if err := guard(ctx, orgID, id); err != nil {
			h.fail(w, r, err)
			return
		}
	}
	if err := repo.Delete(ctx, orgID, id); err != nil {
		h.fail(w, r, err)
		return
	}

	h.audit(ctx, r, entity, "delete", id, nil)
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": entity + " deleted"})
}

var eventVerbs = map[string]string{
	"create": "CREATED",
	"update": "UPDATED",
	"delete": "DELETED",
}

// audit records a mutation and publishes it; failures are logged only.
func (h *Handler) audit(ctx context.Context, r *http.Request, entity, verb string, entityID primitive.ObjectID, details bson.M) {
	who := caller(r)
	now := time.Now().UTC()
	entry := models.AuditLog{
		ID:             primitive.NewObjectID(),
		OrganizationID: who.OrgID,
		UserID:         who.UserID,
		UserName:       who.Name,
		Action:         entity + "_" + verb,
		EntityType:     entity,
		EntityID:       entityID,
		Details:        details,
		IPAddress:      clientIP(r),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := h.store.AuditLogs().Insert(ctx, &entry); err != nil {
		h.log.Warn("failed to write audit log", zap.String("action", entry.Action), zap.Error(err))
	}

	if h.events == nil {
		return
	}
	suffix, ok := eventVerbs[verb]
	if !ok {
		suffix = strings.ToUpper(verb)
	}
	h.events.Publish(who.OrgID, websocket.Event{
		Type:       strings.ToUpper(strings.ReplaceAll(entity, "-", "_")) + "_" + suffix,
		EntityType: entity,
		EntityID:   entityID.Hex(),
		Data:       details,
		UserID:     who.UserID.Hex(),
		UserName:   who.Name,
		Timestamp:  now,
	})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i > 0 {
		host = host[:i]
	}
	return host
}

const codeAttempts = 25

// insertCoded inserts doc under a generated PREFIX-YEAR-NNNN code. Numbering starts
// after the rows already in scope and moves on while the code is taken.
func insertCoded[T any](ctx context.Context, repo store.Repository[T], scope store.Query, doc *T, prefix string, year int, setCode func(string)) error {
	n, err := repo.Count(ctx, scope)
	if err != nil {
		return err
	}
	for i := 1; i <= codeAttempts; i++ {
		setCode(utils.GenerateCode(prefix, year, int(n)+i))
		if err = repo.Insert(ctx, doc); !errors.Is(err, apperr.ErrConflict) {
			return err
		}
	}
	return err
}
