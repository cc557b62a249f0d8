// models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleSuperAdmin = "superadmin"
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleViewer     = "viewer"
)

func ValidRole(role string) bool {
	switch role {
	case RoleSuperAdmin, RoleAdmin, RoleManager, RoleViewer:
		return true
	}
	return false
}

type User struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	FullName       string              `bson:"fullName" json:"fullName"`
	Email          string              `bson:"email" json:"email"`
	JobTitle       string              `bson:"jobTitle,omitempty" json:"jobTitle,omitempty"`
	PasswordHash   string              `bson:"passwordHash" json:"-"`
	Role           string              `bson:"role" json:"role"`
	WorkUnitID     *primitive.ObjectID `bson:"workUnitId,omitempty" json:"workUnitId,omitempty"`
	OrganizationID primitive.ObjectID  `bson:"organizationId" json:"organizationId"`
	CreatedAt      time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time           `bson:"updatedAt" json:"updatedAt"`
}
