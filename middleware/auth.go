package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Mukhsinh/manajemenresiko-sub007/models"
	"github.com/Mukhsinh/manajemenresiko-sub007/store"
	"github.com/Mukhsinh/manajemenresiko-sub007/utils"
)

// BearerToken extracts the token from the Authorization header, falling back
// to the "token" query parameter used by websocket clients.
func BearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

// Auth validates the JWT and loads the user so that deleted accounts and role
// changes take effect before the token expires.
func Auth(st store.Store, signer *utils.TokenSigner, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := BearerToken(r)
			if tokenString == "" {
				utils.RespondWithError(w, http.StatusUnauthorized, "Missing or invalid Authorization header")
				return
			}

			claims, err := signer.Validate(tokenString)
			if err != nil {
				log.Debug("jwt validation failed", zap.Error(err))
				utils.RespondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			userID, err := primitive.ObjectIDFromHex(claims.UserID)
			if err != nil {
				utils.RespondWithError(w, http.StatusUnauthorized, "Invalid token subject")
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
			defer cancel()

			user, err := st.Users().Get(ctx, primitive.NilObjectID, userID)
			if err != nil {
				log.Debug("auth user lookup failed", zap.String("userId", claims.UserID), zap.Error(err))
				utils.RespondWithError(w, http.StatusUnauthorized, "User not found")
				return
			}
			if user.OrganizationID.IsZero() {
				utils.RespondWithError(w, http.StatusForbidden, "User has no organization")
				return
			}

			id := Identity{
				UserID: user.ID,
				OrgID:  user.OrganizationID,
				Name:   user.FullName,
				Role:   user.Role,
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// RequireRoles rejects callers whose role is not listed.
func RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFrom(r.Context())
			if !ok {
				utils.RespondWithError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			for _, role := range roles {
				if id.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			utils.RespondWithError(w, http.StatusForbidden, "insufficient permissions")
		})
	}
}

// CanWrite reports whether the role may create, update or delete records.
func CanWrite(role string) bool {
	switch role {
	case models.RoleSuperAdmin, models.RoleAdmin, models.RoleManager:
		return true
	}
	return false
}

// WriteGuard lets safe methods through and requires a writer role for the rest.
func WriteGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}
		id, ok := IdentityFrom(r.Context())
		if !ok || !CanWrite(id.Role) {
			utils.RespondWithError(w, http.StatusForbidden, "insufficient permissions")
			return
		}
		next.ServeHTTP(w, r)
	})
}
